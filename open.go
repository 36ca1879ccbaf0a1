package wesscdrs

import (
	"io"
	"log"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/carbocation/pfx"
)

// Open opens path for reading, transparently decompressing gzip-, zip-,
// bzip2-, zlib- or xz-compressed files. The caller must Close the result,
// which also closes the underlying file.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(ExpandHome(path))
	if err != nil {
		return nil, pfx.Err(err)
	}

	r, err := MaybeDecompressReadCloserFromFile(f)
	if err != nil {
		f.Close()
		return nil, pfx.Err(err)
	}

	if r == io.ReadCloser(f) {
		return f, nil
	}

	return &fileReadCloser{ReadCloser: r, f: f}, nil
}

// fileReadCloser closes both the decompressor and the file beneath it.
type fileReadCloser struct {
	io.ReadCloser
	f *os.File
}

func (c *fileReadCloser) Close() error {
	err := c.ReadCloser.Close()
	if ferr := c.f.Close(); err == nil {
		err = ferr
	}
	return err
}

// ExpandHome expands ~ to its proper path, where appropriate.
func ExpandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		usr, err := user.Current()
		if err != nil {
			log.Fatalln(pfx.Err(err))
		}
		path = filepath.Join(usr.HomeDir, (path)[2:])
	}

	return path
}
