package adapters

import (
	"context"
	"encoding/xml"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"launchgraph/internal/ports"
	"launchgraph/internal/types"
)

// SourceIndexAdapter indexes a source workspace: packages found via their
// package.xml manifest, launch files parsed eagerly into trees, and node
// templates loaded from an extraction database.
type SourceIndexAdapter struct {
	packages    map[string]*types.Package
	templates   map[string]*types.NodeTemplate
	launchFiles map[string]*types.LaunchFile
}

func NewSourceIndexAdapter() *SourceIndexAdapter {
	return &SourceIndexAdapter{
		packages:    map[string]*types.Package{},
		templates:   map[string]*types.NodeTemplate{},
		launchFiles: map[string]*types.LaunchFile{},
	}
}

type packageManifest struct {
	Name string `xml:"name"`
}

// ScanWorkspace walks the given roots, registering every package.xml as a
// package and parsing every .launch file.  A launch file that fails to
// parse is registered without a tree, so references to it surface as
// configuration errors instead of lookups that silently miss.
func (a *SourceIndexAdapter) ScanWorkspace(ctx context.Context, roots []string, parser ports.TreeParserPort) error {
	for _, root := range roots {
		err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if entry.IsDir() {
				return nil
			}
			switch {
			case entry.Name() == "package.xml":
				return a.registerPackage(path)
			case strings.HasSuffix(entry.Name(), ".launch"):
				a.registerLaunchFile(ctx, path, parser)
			}
			return nil
		})
		if err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeNotFound).
				WithMsg("failed to scan workspace: " + root).
				WithCause(err)
		}
	}
	log.Ctx(ctx).Debug().
		Int("packages", len(a.packages)).
		Int("launch_files", len(a.launchFiles)).
		Msg("workspace scanned")
	return nil
}

func (a *SourceIndexAdapter) registerPackage(manifestPath string) error {
	content, err := os.ReadFile(manifestPath)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("failed to read package.xml").
			WithCause(err)
	}
	var manifest packageManifest
	if err := xml.Unmarshal(content, &manifest); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to parse package.xml: " + manifestPath).
			WithCause(err)
	}
	name := strings.TrimSpace(manifest.Name)
	if name == "" {
		return nil
	}
	a.packages[name] = &types.Package{Name: name, Path: filepath.Dir(manifestPath)}
	return nil
}

func (a *SourceIndexAdapter) registerLaunchFile(ctx context.Context, path string, parser ports.TreeParserPort) {
	cleaned := filepath.Clean(path)
	launch := &types.LaunchFile{Path: cleaned, Dir: filepath.Dir(cleaned)}
	tree, err := parser.Parse(cleaned)
	if err != nil {
		log.Ctx(ctx).Warn().Str("launch", cleaned).Err(err).Msg("launch file not parsable")
	} else {
		launch.Tree = tree
	}
	a.launchFiles[cleaned] = launch
}

// extractionDB is the on-disk format of the node extraction database: the
// communication call sites recorded per executable by an upstream static
// extraction pass.
type extractionDB struct {
	Nodes []extractionNode `yaml:"nodes"`
}

type extractionNode struct {
	Package    string           `yaml:"package"`
	Executable string           `yaml:"executable"`
	Advertise  []types.CallSite `yaml:"advertise,omitempty"`
	Subscribe  []types.CallSite `yaml:"subscribe,omitempty"`
	Service    []types.CallSite `yaml:"service,omitempty"`
	Client     []types.CallSite `yaml:"client,omitempty"`
}

// LoadExtractionDB registers node templates from a YAML extraction database.
func (a *SourceIndexAdapter) LoadExtractionDB(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg("failed to read extraction database").
			WithCause(err)
	}
	var db extractionDB
	if err := yaml.Unmarshal(content, &db); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to parse extraction database").
			WithCause(err)
	}
	for _, node := range db.Nodes {
		pkg, ok := a.packages[node.Package]
		if !ok {
			pkg = &types.Package{Name: node.Package}
		}
		template := &types.NodeTemplate{
			Name:      node.Executable,
			Package:   pkg,
			Advertise: node.Advertise,
			Subscribe: node.Subscribe,
			Service:   node.Service,
			Client:    node.Client,
		}
		a.templates[templateKey(node.Package, node.Executable)] = template
	}
	return nil
}

func (a *SourceIndexAdapter) NodeTemplate(pkg, executable string) (*types.NodeTemplate, bool) {
	template, ok := a.templates[templateKey(pkg, executable)]
	return template, ok
}

func (a *SourceIndexAdapter) Package(name string) (*types.Package, bool) {
	pkg, ok := a.packages[name]
	return pkg, ok
}

func (a *SourceIndexAdapter) LaunchFile(path string) (*types.LaunchFile, bool) {
	launch, ok := a.launchFiles[filepath.Clean(path)]
	return launch, ok
}

func templateKey(pkg, executable string) string {
	return pkg + "/" + executable
}

var _ ports.SourceIndexPort = (*SourceIndexAdapter)(nil)
