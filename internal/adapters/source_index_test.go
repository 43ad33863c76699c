package adapters

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func testWorkspace(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "demo", "package.xml"),
		`<?xml version="1.0"?>
<package format="2">
  <name>demo</name>
  <version>0.1.0</version>
</package>
`)
	writeFile(t, filepath.Join(root, "demo", "launch", "app.launch"),
		`<launch>
  <node pkg="demo" type="talker" name="n"/>
</launch>
`)
	writeFile(t, filepath.Join(root, "demo", "launch", "broken.launch"),
		`<launch><node></launch>
`)
	return root
}

func TestScanWorkspace(t *testing.T) {
	root := testWorkspace(t)
	index := NewSourceIndexAdapter()
	require.NoError(t, index.ScanWorkspace(context.Background(), []string{root}, NewLaunchXMLAdapter()))

	pkg, ok := index.Package("demo")
	require.True(t, ok)
	require.Equal(t, filepath.Join(root, "demo"), pkg.Path)

	launch, ok := index.LaunchFile(filepath.Join(root, "demo", "launch", "app.launch"))
	require.True(t, ok)
	require.NotNil(t, launch.Tree)
	require.Equal(t, filepath.Join(root, "demo", "launch"), launch.Dir)

	// Unparsable launch files stay registered without a tree, so references
	// to them surface as configuration errors.
	broken, ok := index.LaunchFile(filepath.Join(root, "demo", "launch", "broken.launch"))
	require.True(t, ok)
	require.Nil(t, broken.Tree)

	_, ok = index.Package("nope")
	require.False(t, ok)
}

func TestScanWorkspaceMissingRoot(t *testing.T) {
	index := NewSourceIndexAdapter()
	err := index.ScanWorkspace(context.Background(), []string{filepath.Join(t.TempDir(), "missing")}, NewLaunchXMLAdapter())
	require.Error(t, err)
}

func TestLoadExtractionDB(t *testing.T) {
	root := testWorkspace(t)
	dbPath := filepath.Join(root, "extraction.yaml")
	writeFile(t, dbPath, `nodes:
  - package: demo
    executable: talker
    advertise:
      - name: chatter
        type: std_msgs/String
        queue_size: 10
  - package: external
    executable: relay
    subscribe:
      - name: chatter
        type: std_msgs/String
`)

	index := NewSourceIndexAdapter()
	require.NoError(t, index.ScanWorkspace(context.Background(), []string{root}, NewLaunchXMLAdapter()))
	require.NoError(t, index.LoadExtractionDB(dbPath))

	template, ok := index.NodeTemplate("demo", "talker")
	require.True(t, ok)
	require.Len(t, template.Advertise, 1)
	require.Equal(t, "chatter", template.Advertise[0].Name)
	require.Equal(t, 10, template.Advertise[0].QueueSize)
	require.Equal(t, "demo", template.Package.Name)

	// Templates for packages outside the workspace get a synthetic package.
	external, ok := index.NodeTemplate("external", "relay")
	require.True(t, ok)
	require.Equal(t, "external", external.Package.Name)
	require.Empty(t, external.Package.Path)

	_, ok = index.NodeTemplate("demo", "listener")
	require.False(t, ok)
}

func TestLoadExtractionDBErrors(t *testing.T) {
	index := NewSourceIndexAdapter()
	require.Error(t, index.LoadExtractionDB(filepath.Join(t.TempDir(), "nope.yaml")))

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	writeFile(t, bad, "nodes: {broken")
	require.Error(t, index.LoadExtractionDB(bad))
}
