// Command nufs creates, checks, and mounts images of the filesystem
// implemented by github.com/nakulcr7/nufs.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/noxer/bytewriter"
	"github.com/urfave/cli/v2"

	"github.com/nakulcr7/nufs"
	"github.com/nakulcr7/nufs/fuseadapter"
	"github.com/nakulcr7/nufs/internal/store"
)

func main() {
	app := cli.App{
		Name:  "nufs",
		Usage: "create, check, and mount nufs disk images",
		Commands: []*cli.Command{
			{
				Name:      "format",
				Usage:     "create a new image file (an existing file is never overwritten)",
				ArgsUsage: "IMAGE_FILE",
				Action:    formatImage,
			},
			{
				Name:      "check",
				Usage:     "verify an image's on-disk invariants",
				ArgsUsage: "IMAGE_FILE",
				Action:    checkImage,
			},
			{
				Name:      "mount",
				Usage:     "mount an image at a directory via FUSE",
				ArgsUsage: "IMAGE_FILE MOUNT_POINT",
				Action:    mountImage,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatalf("nufs: %s", err.Error())
	}
}

// formatImage creates IMAGE_FILE if absent and forces the root directory
// into existence. It builds the whole image region-by-region in memory --
// bitmaps, inode table (with the root inode already encoded into it), data
// blocks -- and streams those regions out through a bytewriter.Writer before
// the single write to disk, the same sequential field-by-field assembly
// dargueta-disko's own format.go uses to lay down a fresh image.
func formatImage(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return cli.Exit("format requires an IMAGE_FILE argument", 1)
	}

	if _, err := os.Stat(path); err == nil {
		return cli.Exit(fmt.Sprintf("%s already exists; refusing to overwrite a live image", path), 1)
	}

	blank := make([]byte, store.ImageSize)
	if _, err := store.NewInMemory(blank); err != nil {
		return cli.Exit(err.Error(), 1)
	}

	out := make([]byte, store.ImageSize)
	zw := bytewriter.New(out)
	regions := [][]byte{
		blank[:store.InodeTableOffset],                       // inode + block bitmaps, root bit set
		blank[store.InodeTableOffset:store.DataBlocksOffset], // inode table, root inode encoded
		blank[store.DataBlocksOffset:],                       // data block pool, untouched
	}
	for _, region := range regions {
		if _, err := zw.Write(region); err != nil {
			return cli.Exit(err.Error(), 1)
		}
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	if _, err := f.Write(out); err != nil {
		f.Close()
		return cli.Exit(err.Error(), 1)
	}
	f.Close()

	fs, err := nufs.Mount(path)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	defer fs.Unmount()

	fmt.Printf("formatted %s (%d bytes)\n", path, store.ImageSize)
	return nil
}

// checkImage mounts IMAGE_FILE read-write (no other lock is taken -- this
// tool assumes it has the image to itself) and reports every invariant
// violation CheckInvariants finds.
func checkImage(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return cli.Exit("check requires an IMAGE_FILE argument", 1)
	}

	fs, err := nufs.Mount(path)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	defer fs.Unmount()
	log.Printf("nufs: mount %s: checking invariants", fs.MountID)

	if err := fs.CheckInvariants(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return cli.Exit("invariant check failed", 1)
	}

	fmt.Println("ok")
	return nil
}

// mountImage mounts IMAGE_FILE at MOUNT_POINT via FUSE and blocks until the
// mount is unmounted (by the user, or by signal).
func mountImage(c *cli.Context) error {
	if c.NArg() < 2 {
		return cli.Exit("mount requires IMAGE_FILE and MOUNT_POINT arguments", 1)
	}
	imagePath := c.Args().Get(0)
	mountPoint := c.Args().Get(1)

	fs, err := nufs.Mount(imagePath)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	defer fs.Unmount()
	log.Printf("nufs: mount %s: serving %s at %s", fs.MountID, imagePath, mountPoint)

	return fuseadapter.Serve(fs, mountPoint)
}
