package adapters

import (
	"bytes"
	"encoding/xml"
	"io"
	"os"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"launchgraph/internal/ports"
	"launchgraph/internal/types"
)

// LaunchXMLAdapter parses roslaunch XML into a launch tree.  Attribute
// values stay unresolved; conditional attributes become (polarity,
// expression) pairs; tags the parser does not recognize degrade to error
// nodes instead of failing the whole file.
type LaunchXMLAdapter struct{}

func NewLaunchXMLAdapter() LaunchXMLAdapter {
	return LaunchXMLAdapter{}
}

var tagKinds = map[string]types.TagKind{
	"node":     types.TagNode,
	"include":  types.TagInclude,
	"group":    types.TagGroup,
	"remap":    types.TagRemap,
	"param":    types.TagParam,
	"rosparam": types.TagRosparam,
	"arg":      types.TagArg,
	"env":      types.TagEnv,
	"machine":  types.TagMachine,
	"test":     types.TagTest,
}

func (a LaunchXMLAdapter) Parse(path string) (*types.LaunchNode, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("failed to read launch file").
			WithCause(err)
	}
	return a.parse(path, content)
}

func (a LaunchXMLAdapter) parse(file string, content []byte) (*types.LaunchNode, error) {
	decoder := xml.NewDecoder(bytes.NewReader(content))
	var root *types.LaunchNode
	var stack []*types.LaunchNode
	line := 1
	offset := int64(0)

	advance := func() int {
		next := decoder.InputOffset()
		line += bytes.Count(content[offset:next], []byte("\n"))
		offset = next
		return line
	}

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("failed to parse launch file: " + file).
				WithCause(err)
		}
		switch tok := token.(type) {
		case xml.StartElement:
			at := advance()
			if len(stack) == 0 {
				if tok.Name.Local != "launch" {
					return nil, errbuilder.New().
						WithCode(errbuilder.CodeInvalidArgument).
						WithMsg("launch file root must be <launch>: " + file)
				}
				root = &types.LaunchNode{
					Kind:       types.TagLaunch,
					Attributes: attributeMap(tok.Attr),
					File:       file,
					Line:       at,
				}
				stack = append(stack, root)
				continue
			}
			node := convertElement(tok, file, at)
			parent := stack[len(stack)-1]
			parent.Children = append(parent.Children, node)
			stack = append(stack, node)
		case xml.EndElement:
			advance()
			top := stack[len(stack)-1]
			top.Text = strings.TrimSpace(top.Text)
			stack = stack[:len(stack)-1]
		case xml.CharData:
			advance()
			if len(stack) > 0 {
				stack[len(stack)-1].Text += string(tok)
			}
		default:
			advance()
		}
	}
	if root == nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("empty launch file: " + file)
	}
	return root, nil
}

func convertElement(element xml.StartElement, file string, line int) *types.LaunchNode {
	kind, known := tagKinds[element.Name.Local]
	if !known {
		return &types.LaunchNode{
			Kind: types.TagError,
			Text: "unknown tag: <" + element.Name.Local + ">",
			File: file,
			Line: line,
		}
	}
	attributes := attributeMap(element.Attr)
	node := &types.LaunchNode{
		Kind:       kind,
		Attributes: attributes,
		File:       file,
		Line:       line,
	}
	ifExpr, hasIf := attributes["if"]
	unlessExpr, hasUnless := attributes["unless"]
	if hasIf && hasUnless {
		return &types.LaunchNode{
			Kind: types.TagError,
			Text: "tag cannot carry both if and unless: <" + element.Name.Local + ">",
			File: file,
			Line: line,
		}
	}
	if hasIf {
		node.Condition = &types.TagCondition{Polarity: true, Expression: ifExpr}
		delete(attributes, "if")
	}
	if hasUnless {
		node.Condition = &types.TagCondition{Polarity: false, Expression: unlessExpr}
		delete(attributes, "unless")
	}
	return node
}

func attributeMap(attrs []xml.Attr) map[string]string {
	out := make(map[string]string, len(attrs))
	for _, attr := range attrs {
		out[attr.Name.Local] = attr.Value
	}
	return out
}

var _ ports.TreeParserPort = LaunchXMLAdapter{}
