package sink

import (
	"context"
	"os"
	"path/filepath"
)

// FSSink stores artifacts under a local directory, mirroring the
// storage key layout as a directory tree. It exists for local runs
// where no bucket is configured.
type FSSink struct {
	dir string
}

// NewFSSink creates an FSSink rooted at dir. The directory is created
// lazily on first Put.
func NewFSSink(dir string) *FSSink {
	return &FSSink{dir: dir}
}

// Dir returns the sink's root directory.
func (f *FSSink) Dir() string {
	return f.dir
}

// Put writes body to dir/key, creating parent directories as needed.
// The content type is implied by the file extension and ignored here.
func (f *FSSink) Put(_ context.Context, key, _ string, body []byte) error {
	dst := filepath.Join(f.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o750); err != nil {
		return err
	}
	return os.WriteFile(dst, body, 0o600)
}
