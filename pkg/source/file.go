package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/matzehuels/schematic/pkg/collection"
)

// File reads collections from a .json or .toml schema file.
type File struct {
	Path string
}

// NewFile returns a file source.
func NewFile(path string) *File { return &File{Path: path} }

// Name returns "file:<path>".
func (f *File) Name() string { return "file:" + f.Path }

// List reads and decodes the file on every call.
func (f *File) List(ctx context.Context) ([]collection.Collection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cs, err := collection.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, f.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Path, err)
	}
	return cs, nil
}
