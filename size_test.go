package nufs_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nakulcr7/nufs/testutil"
)

func TestTruncateShrink(t *testing.T) {
	fs := testutil.NewFS(t)
	_, err := fs.Write("/f", []byte("0123456789"), 0)
	require.NoError(t, err)

	require.NoError(t, fs.Truncate("/f", 4))

	st, err := fs.Stat("/f")
	require.NoError(t, err)
	assert.Equal(t, int64(4), st.Size)

	buf := make([]byte, 4)
	n, err := fs.Read("/f", buf, 0)
	require.NoError(t, err)
	assert.Equal(t, "0123", string(buf[:n]))
}

func TestTruncateGrowZeroFills(t *testing.T) {
	fs := testutil.NewFS(t)
	_, err := fs.Write("/f", []byte("ab"), 0)
	require.NoError(t, err)

	require.NoError(t, fs.Truncate("/f", 10))

	st, err := fs.Stat("/f")
	require.NoError(t, err)
	assert.Equal(t, int64(10), st.Size)

	buf := make([]byte, 10)
	n, err := fs.Read("/f", buf, 0)
	require.NoError(t, err)
	assert.Equal(t, "ab", string(buf[0:2]))
	for _, b := range buf[2:n] {
		assert.Equal(t, byte(0), b)
	}
}

func TestTruncateToSameSizeIsNoop(t *testing.T) {
	fs := testutil.NewFS(t)
	_, err := fs.Write("/f", []byte("abcd"), 0)
	require.NoError(t, err)

	require.NoError(t, fs.Truncate("/f", 4))

	st, err := fs.Stat("/f")
	require.NoError(t, err)
	assert.Equal(t, int64(4), st.Size)
}

func TestTruncateToZeroFreesAllBlocks(t *testing.T) {
	fs := testutil.NewFS(t)
	_, err := fs.Write("/f", make([]byte, 5000), 0)
	require.NoError(t, err)

	require.NoError(t, fs.Truncate("/f", 0))

	st, err := fs.Stat("/f")
	require.NoError(t, err)
	assert.Equal(t, int64(0), st.Size)
	assert.Equal(t, int64(0), st.Blocks)
}

func TestTruncateShrinkAcrossIndirectBoundaryFreesIndirectBlock(t *testing.T) {
	fs := testutil.NewFS(t)
	// 10 direct blocks hold 40960 bytes; one byte more forces the indirect
	// block into existence.
	_, err := fs.Write("/f", make([]byte, 40961), 0)
	require.NoError(t, err)

	stBefore, err := fs.Stat("/f")
	require.NoError(t, err)
	assert.Equal(t, int64(11), stBefore.Blocks)

	require.NoError(t, fs.Truncate("/f", 100))

	stAfter, err := fs.Stat("/f")
	require.NoError(t, err)
	assert.Equal(t, int64(1), stAfter.Blocks)

	// 249 blocks are allocatable; the root directory and /f now hold one
	// each, leaving 247 only if the indirect block went back to the pool.
	// 246 data blocks plus their indirect block need exactly those 247.
	_, err = fs.Write("/g", make([]byte, 246*4096), 0)
	assert.NoError(t, err, "the indirect block must be freed once /f shrinks back to direct blocks")
}
