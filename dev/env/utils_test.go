package devenv

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolvePath(t *testing.T) {
	plain, err := ResolvePath("some/file.db")
	require.NoError(t, err)
	require.Equal(t, "some/file.db", plain)

	root, err := GetWorkspaceRoot()
	require.NoError(t, err)

	resolved, err := ResolvePath("<dev_state>/evidence.db")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(root, "dev", ".state", "evidence.db"), resolved)
}
