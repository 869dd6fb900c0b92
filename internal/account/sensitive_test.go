package account_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oidcd/oidcd/internal/account"
)

func TestSensitiveBufferWipeClearsContent(t *testing.T) {
	s := account.SensitiveString("hunter2")
	require.True(t, s.Present())
	require.Equal(t, "hunter2", s.String())

	s.Wipe()
	require.False(t, s.Present())
	require.Equal(t, "", s.String())
}

func TestSensitiveBufferGoStringRedacts(t *testing.T) {
	s := account.SensitiveString("hunter2")
	require.NotContains(t, s.GoString(), "hunter2")

	var empty account.SensitiveBuffer
	require.Contains(t, empty.GoString(), "empty")
}

func TestSensitiveBufferEqual(t *testing.T) {
	a := account.SensitiveString("same")
	b := account.SensitiveString("same")
	c := account.SensitiveString("different")

	require.True(t, a.Equal(b))
	require.False(t, a.Equal(c))
}
