package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCleanAndExpandPath(t *testing.T) {
	require.Empty(t, cleanAndExpandPath(""))

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	require.Equal(
		t, filepath.Join(home, "bmultisig"), cleanAndExpandPath("~/bmultisig"),
	)

	t.Setenv("BMULTISIG_TEST_DIR", "/tmp/bmultisig")
	require.Equal(
		t, filepath.Join("/tmp/bmultisig", "data"),
		cleanAndExpandPath("$BMULTISIG_TEST_DIR/data"),
	)

	require.Equal(t, "/a/b", cleanAndExpandPath("/a//b/"))
}
