// Package testutil provides disk-free fixtures for exercising nufs without
// touching a real file, mirroring the role dargueta-disko/testing plays for
// disko's drivers.
package testutil

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/bytesextra"

	"github.com/nakulcr7/nufs"
	"github.com/nakulcr7/nufs/internal/store"
)

// NewFS builds a freshly formatted, in-memory-backed Fs for t. The backing
// bytes live entirely in the test process; nothing is written to disk.
//
// The image is sourced through a bytesextra.ReadWriteSeeker rather than
// handed to store.NewInMemory directly, the same stream seam
// dargueta-disko's LoadDiskImage hands callers instead of a bare slice.
func NewFS(t *testing.T) *nufs.Fs {
	t.Helper()

	stream := bytesextra.NewReadWriteSeeker(make([]byte, store.ImageSize))

	buf := make([]byte, store.ImageSize)
	_, err := stream.Seek(0, io.SeekStart)
	require.NoError(t, err)
	_, err = io.ReadFull(stream, buf)
	require.NoError(t, err)

	img, err := store.NewInMemory(buf)
	require.NoError(t, err)

	return nufs.MountImage(img)
}
