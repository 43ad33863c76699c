package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveName(t *testing.T) {
	tests := []struct {
		name      string
		given     string
		ns        string
		privateNS string
		want      string
	}{
		{name: "global stays", given: "/diag", ns: "/robot", privateNS: "/robot/node", want: "/diag"},
		{name: "relative joins namespace", given: "chatter", ns: "/robot", privateNS: "/robot/node", want: "/robot/chatter"},
		{name: "private joins private namespace", given: "~rate", ns: "/robot", privateNS: "/robot/node", want: "/robot/node/rate"},
		{name: "empty is the namespace", given: "", ns: "/robot", privateNS: "/robot/node", want: "/robot"},
		{name: "empty namespace defaults to root", given: "chatter", ns: "", privateNS: "", want: "/chatter"},
		{name: "nested relative", given: "a/b", ns: "/", privateNS: "/", want: "/a/b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ResolveName(tt.given, tt.ns, tt.privateNS))
		})
	}
}

func TestNsJoin(t *testing.T) {
	tests := []struct {
		name string
		ns   string
		want string
	}{
		{name: "x", ns: "/a", want: "/a/x"},
		{name: "x", ns: "/a/", want: "/a/x"},
		{name: "x", ns: "", want: "x"},
		{name: "x", ns: "~", want: "~x"},
		{name: "/x", ns: "/a", want: "/x"},
		{name: "~x", ns: "/a", want: "~x"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, NsJoin(tt.name, tt.ns), "NsJoin(%q, %q)", tt.name, tt.ns)
	}
}

func TestNewRosNameAppliesRemaps(t *testing.T) {
	remaps := map[string]string{"/robot/chatter": "/loud"}

	name := NewRosName("chatter", "/robot", "/robot/node", remaps)
	require.Equal(t, "/loud", name.Full)
	require.Equal(t, "chatter", name.Given)
	require.Equal(t, "/robot", name.Namespace)

	// Remaps match resolved names only.
	unmapped := NewRosName("chatter", "/other", "/other/node", remaps)
	require.Equal(t, "/other/chatter", unmapped.Full)
}

func TestRosNameParts(t *testing.T) {
	name := NewRosName("~rate", "/robot", "/robot/node", nil)
	require.True(t, name.IsPrivate())
	require.Equal(t, "rate", name.Own())

	plain := NewRosName("chatter", "/", "/", nil)
	require.False(t, plain.IsPrivate())
	require.Equal(t, "chatter", plain.Own())
}
