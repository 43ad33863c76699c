package cli

import (
	"errors"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestExitCodeForError(t *testing.T) {
	tests := []struct {
		code errbuilder.ErrCode
		want int
	}{
		{code: errbuilder.CodeInvalidArgument, want: 2},
		{code: errbuilder.CodeFailedPrecondition, want: 3},
		{code: errbuilder.CodeNotFound, want: 4},
		{code: errbuilder.CodeInternal, want: 5},
	}
	for _, tt := range tests {
		err := errbuilder.New().WithCode(tt.code).WithMsg("boom")
		require.Equal(t, tt.want, exitCodeForError(err), tt.code)
	}
	require.Equal(t, 1, exitCodeForError(errors.New("plain")))
}

func TestErrorMessage(t *testing.T) {
	err := errbuilder.New().
		WithCode(errbuilder.CodeNotFound).
		WithMsg("cannot find launch file").
		WithCause(errors.New("open: no such file"))
	require.Equal(t, "cannot find launch file", errorMessage(err))
	require.Equal(t, "plain", errorMessage(errors.New("plain")))
}

func TestResolveStringFallsBackToViper(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("project", "from-config")

	require.Equal(t, "explicit", resolveString(nil, "explicit", "project", "project"))
	require.Equal(t, "from-config", resolveString(nil, "", "project", "project"))
}

func TestResolveStringsFallsBackToViper(t *testing.T) {
	t.Cleanup(viper.Reset)
	viper.Set("workspace", []string{"/ws"})

	require.Equal(t, []string{"/custom"}, resolveStrings(nil, []string{"/custom"}, "workspace", "workspace"))
	require.Equal(t, []string{"/ws"}, resolveStrings(nil, nil, "workspace", "workspace"))
}

func TestFlagChanged(t *testing.T) {
	cmd := newBuildCommand()
	require.False(t, flagChanged(cmd, "project"))
	require.NoError(t, cmd.Flags().Set("project", "p.yaml"))
	require.True(t, flagChanged(cmd, "project"))
	require.False(t, flagChanged(cmd, "no-such-flag"))
	require.False(t, flagChanged(nil, "project"))
}
