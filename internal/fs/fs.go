package fs

import (
	"io"
	"os"
)

// File is a random-access view over a whole file's content.
type File interface {
	io.ReaderAt
	io.Closer
	Len() int
}

// FS abstracts filesystem operations.
type FS interface {
	Open(path string) (File, error)
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte, perm os.FileMode) error
	MkdirAll(path string, perm os.FileMode) error
	Remove(path string) error
	Rename(oldPath, newPath string) error
	Stat(path string) (os.FileInfo, error)
	ReadDir(path string) ([]os.DirEntry, error)
	CreateTempFile(dir, pattern string) (io.WriteCloser, string, error)
	IsNotExist(err error) bool
	Exists(path string) bool
	IsDir(path string) bool
	CanRead(path string) bool
}
