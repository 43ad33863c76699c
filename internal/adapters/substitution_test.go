package adapters

import (
	"testing"

	"github.com/stretchr/testify/require"

	"launchgraph/internal/types"
)

type stubSources struct {
	packages map[string]*types.Package
}

func (s stubSources) NodeTemplate(string, string) (*types.NodeTemplate, bool) { return nil, false }

func (s stubSources) Package(name string) (*types.Package, bool) {
	pkg, ok := s.packages[name]
	return pkg, ok
}

func (s stubSources) LaunchFile(string) (*types.LaunchFile, bool) { return nil, false }

func testSubstitution(env map[string]string) (*SubstitutionAdapter, types.DependencySet) {
	deps := types.DependencySet{
		Packages:    types.NewStringSet(),
		Environment: types.NewStringSet(),
	}
	sources := stubSources{packages: map[string]*types.Package{
		"demo": {Name: "demo", Path: "/ws/src/demo"},
	}}
	return NewSubstitutionAdapter(env, sources, "/ws/launch", deps), deps
}

func TestResolvePlainText(t *testing.T) {
	sub, _ := testSubstitution(nil)
	resolution, err := sub.Resolve("hello world", nil, true)
	require.NoError(t, err)
	require.True(t, resolution.Known)
	require.Equal(t, "hello world", resolution.Value)
}

func TestResolveArg(t *testing.T) {
	sub, _ := testSubstitution(nil)
	args := map[string]string{"rate": "10"}

	resolution, err := sub.Resolve("$(arg rate) Hz", args, true)
	require.NoError(t, err)
	require.Equal(t, "10 Hz", resolution.Value)

	// Unbound arg: error in strict mode, unresolved otherwise.
	_, err = sub.Resolve("$(arg missing)", args, true)
	require.Error(t, err)

	resolution, err = sub.Resolve("$(arg missing)", args, false)
	require.NoError(t, err)
	require.False(t, resolution.Known)
}

func TestResolveEnvRecordsDependency(t *testing.T) {
	sub, deps := testSubstitution(map[string]string{"ROBOT": "r2d2"})

	resolution, err := sub.Resolve("$(env ROBOT)", nil, true)
	require.NoError(t, err)
	require.Equal(t, "r2d2", resolution.Value)
	require.True(t, deps.Environment.Has("ROBOT"))

	_, err = sub.Resolve("$(env MISSING)", nil, true)
	require.Error(t, err)
	require.True(t, deps.Environment.Has("MISSING"))
}

func TestResolveOptenvDefault(t *testing.T) {
	sub, deps := testSubstitution(map[string]string{"SET": "yes"})

	resolution, err := sub.Resolve("$(optenv SET fallback)", nil, true)
	require.NoError(t, err)
	require.Equal(t, "yes", resolution.Value)

	resolution, err = sub.Resolve("$(optenv UNSET a b c)", nil, true)
	require.NoError(t, err)
	require.Equal(t, "a b c", resolution.Value)
	require.True(t, deps.Environment.Has("UNSET"))
}

func TestResolveFindRecordsPackage(t *testing.T) {
	sub, deps := testSubstitution(nil)

	resolution, err := sub.Resolve("$(find demo)/launch/app.launch", nil, true)
	require.NoError(t, err)
	require.Equal(t, "/ws/src/demo/launch/app.launch", resolution.Value)
	require.True(t, deps.Packages.Has("demo"))

	_, err = sub.Resolve("$(find nope)", nil, true)
	require.Error(t, err)
	require.True(t, deps.Packages.Has("nope"))
}

func TestResolveDirname(t *testing.T) {
	sub, _ := testSubstitution(nil)
	resolution, err := sub.Resolve("$(dirname)/sibling.launch", nil, true)
	require.NoError(t, err)
	require.Equal(t, "/ws/launch/sibling.launch", resolution.Value)

	forked := sub.ForFile("/other")
	resolution, err = forked.Resolve("$(dirname)", nil, true)
	require.NoError(t, err)
	require.Equal(t, "/other", resolution.Value)
}

func TestResolveAnonIsStable(t *testing.T) {
	sub, _ := testSubstitution(nil)

	first, err := sub.Resolve("$(anon probe)", nil, true)
	require.NoError(t, err)
	second, err := sub.Resolve("$(anon probe)", nil, true)
	require.NoError(t, err)
	require.Equal(t, first.Value, second.Value)

	other, err := sub.Resolve("$(anon other)", nil, true)
	require.NoError(t, err)
	require.NotEqual(t, first.Value, other.Value)

	// Forked evaluators share the anon table.
	forked, err := sub.ForFile("/x").Resolve("$(anon probe)", nil, true)
	require.NoError(t, err)
	require.Equal(t, first.Value, forked.Value)
}

func TestResolveEvalIsUnresolvable(t *testing.T) {
	sub, _ := testSubstitution(nil)

	resolution, err := sub.Resolve("$(eval 1 + 1)", nil, false)
	require.NoError(t, err)
	require.False(t, resolution.Known)

	_, err = sub.Resolve("$(eval 1 + 1)", nil, true)
	require.Error(t, err)
}

func TestResolveMalformed(t *testing.T) {
	sub, _ := testSubstitution(nil)

	_, err := sub.Resolve("$(arg unterminated", nil, false)
	require.Error(t, err)

	_, err = sub.Resolve("$(frobnicate x)", nil, false)
	require.Error(t, err)
}
