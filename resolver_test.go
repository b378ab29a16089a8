package nufs_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nakulcr7/nufs"
	"github.com/nakulcr7/nufs/testutil"
)

func TestResolve_ComponentThroughFileIsNotFound(t *testing.T) {
	fs := testutil.NewFS(t)
	_, err := fs.Mknod("/f", 0o644, 0)
	require.NoError(t, err)

	_, err = fs.Stat("/f/nested")
	require.Error(t, err)
	assert.True(t, errors.Is(err, nufs.ErrNotFound))
}

func TestResolveParent_MissingParentDirectoryFails(t *testing.T) {
	fs := testutil.NewFS(t)
	_, err := fs.Mknod("/missing/f", 0o644, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, nufs.ErrNotFound))
}

func TestResolveParent_ParentIsFileFails(t *testing.T) {
	fs := testutil.NewFS(t)
	_, err := fs.Mknod("/f", 0o644, 0)
	require.NoError(t, err)

	_, err = fs.Mknod("/f/child", 0o644, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, nufs.ErrNotADirectory))
}
