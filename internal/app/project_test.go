package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"launchgraph/internal/types"
)

func writeProjectFile(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "project.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadProject(t *testing.T) {
	dir := t.TempDir()
	path := writeProjectFile(t, dir, `project: demo
configurations:
  main:
    launch:
      - launch/app.launch
  minimal:
    launch:
      - /abs/minimal.launch
`)
	project, err := LoadProject(path)
	require.NoError(t, err)
	require.Equal(t, "demo", project.Project)
	require.Equal(t, []string{"main", "minimal"}, project.ConfigurationNames())
	require.Equal(t, filepath.Join(dir, "launch", "app.launch"), project.LaunchPath("launch/app.launch"))
	require.Equal(t, "/abs/minimal.launch", project.LaunchPath("/abs/minimal.launch"))
}

func TestLoadProjectErrors(t *testing.T) {
	_, err := LoadProject(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)

	dir := t.TempDir()
	path := writeProjectFile(t, dir, "configurations: {}\n")
	_, err = LoadProject(path)
	require.Error(t, err)
}

func TestMergeHints(t *testing.T) {
	base := types.ConfigurationHints{
		"/a": {Advertise: map[string]string{"x": "std_msgs/String"}},
		"/b": {Subscribe: map[string]string{"y": "std_msgs/String"}},
	}
	overlay := types.ConfigurationHints{
		"/b": {Subscribe: map[string]string{"z": "std_msgs/Int32"}},
	}
	merged := mergeHints(base, overlay)

	require.Len(t, merged, 2)
	require.Equal(t, base["/a"], merged["/a"])
	// Overlay entries replace base entries wholesale.
	require.Equal(t, overlay["/b"], merged["/b"])
}
