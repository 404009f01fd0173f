package cosv4

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
)

// TempFileError reports a failure to create, fill or remove the local temp
// file an upload is spooled through.
type TempFileError struct {
	Op   string
	Path string
	Err  error
}

func (e *TempFileError) Error() string {
	return fmt.Sprintf("cosv4: %s temp file %s: %v", e.Op, e.Path, e.Err)
}

func (e *TempFileError) Unwrap() error {
	return e.Err
}

type tempFile struct {
	path string
}

// spool 将内容写入临时文件，调用方负责 remove
func spool(dir string, r io.Reader) (*tempFile, error) {
	f, err := os.CreateTemp(dir, "cosfs-*")
	if err != nil {
		return nil, &TempFileError{Op: "create", Path: dir, Err: err}
	}

	_, err = io.Copy(f, r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(f.Name())
		return nil, &TempFileError{Op: "write", Path: f.Name(), Err: err}
	}
	return &tempFile{path: f.Name()}, nil
}

func (t *tempFile) remove() error {
	if err := os.Remove(t.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &TempFileError{Op: "remove", Path: t.path, Err: err}
	}
	return nil
}
