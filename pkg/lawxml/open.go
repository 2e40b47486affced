package lawxml

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// File is an opened law XML file. Close releases the decompressor and the
// underlying file.
type File struct {
	io.Reader
	closers []func() error
}

// Close implements io.Closer.
func (f *File) Close() error {
	var firstErr error
	for i := len(f.closers) - 1; i >= 0; i-- {
		if err := f.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Open opens a law XML file. Files ending in .gz or .zst, in any case, are
// decompressed transparently.
func Open(path string) (*File, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open law file: %w", err)
	}

	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".gz"):
		gzipReader, err := gzip.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to read gzip header of %s: %w", path, err)
		}
		return &File{Reader: gzipReader, closers: []func() error{file.Close, gzipReader.Close}}, nil
	case strings.HasSuffix(lower, ".zst"):
		zstdReader, err := zstd.NewReader(file)
		if err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to create zstd reader for %s: %w", path, err)
		}
		return &File{Reader: zstdReader, closers: []func() error{
			file.Close,
			func() error { zstdReader.Close(); return nil },
		}}, nil
	default:
		return &File{Reader: file, closers: []func() error{file.Close}}, nil
	}
}
