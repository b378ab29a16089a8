package nufs_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nakulcr7/nufs"
	"github.com/nakulcr7/nufs/testutil"
)

// expectedErrors maps a boundaries.csv expect_errno column to the sentinel
// the operation surface actually returns. "ok" means no error at all.
var expectedErrors = map[string]error{
	"ok":           nil,
	"ENAMETOOLONG": nufs.ErrNameTooLong,
	"ENOSPC":       nufs.ErrNoSpace,
	"ENOTEMPTY":    nufs.ErrNotEmpty,
	"ENOENT":       nufs.ErrNotFound,
}

// runBoundary executes the named operation from boundaries.csv against a
// fresh Fs and returns whatever error the last step in that operation
// produced.
func runBoundary(t *testing.T, op string) error {
	t.Helper()
	fs := testutil.NewFS(t)

	switch op {
	case "mknod-59-byte-name":
		_, err := fs.Mknod("/"+strings.Repeat("x", 59), 0o644, 0)
		return err

	case "mknod-60-byte-name":
		_, err := fs.Mknod("/"+strings.Repeat("x", 60), 0o644, 0)
		return err

	case "mknod-64th-entry":
		var err error
		for i := 0; i < 64; i++ {
			_, err = fs.Mknod("/f"+string(rune('a'+i%26))+string(rune('0'+i/26)), 0o644, 0)
			if err != nil {
				return err
			}
		}
		return nil

	case "write-past-block-10":
		_, err := fs.Write("/f", []byte("boundary"), 40960-4)
		return err

	case "rmdir-with-child":
		_, err := fs.Mkdir("/d", 0o755)
		require.NoError(t, err)
		_, err = fs.Mknod("/d/f", 0o644, 0)
		require.NoError(t, err)
		return fs.Rmdir("/d")

	case "unlink-absent-name":
		return fs.Unlink("/does-not-exist")

	default:
		t.Fatalf("runBoundary: unrecognized operation %q", op)
		return nil
	}
}

// TestBoundaries drives every named edge case in boundaries.csv through the
// operation surface and checks it lands on the errno (or success) the table
// declares, the same table-driven shape dargueta-disko's disks.go tests
// drive off DiskGeometry rows.
func TestBoundaries(t *testing.T) {
	for name, b := range testutil.Boundaries {
		b := b
		t.Run(name, func(t *testing.T) {
			want, ok := expectedErrors[b.ExpectErrno]
			require.True(t, ok, "unrecognized expect_errno %q in boundaries.csv", b.ExpectErrno)

			err := runBoundary(t, b.Operation)
			if want == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, want), "operation %q: want %v, got %v", b.Operation, want, err)
		})
	}
}
