// Package fsprim is the OS primitive boundary. The dispatcher performs
// every real filesystem touch through the Provider interface so tests can
// substitute a recording fake and so policy code stays free of direct os
// calls. The OS implementation is a thin passthrough; errors come back raw
// and are tagged with the failing primitive at the dispatch layer.
package fsprim

import (
	"io"
	"os"
)

// File is one open descriptor as the handle registry consumes it.
type File interface {
	io.Reader
	io.Writer
	io.Seeker
	io.Closer
	Truncate(size int64) error
	Stat() (os.FileInfo, error)
	Sync() error
}

// Provider supplies the primitive filesystem calls.
type Provider interface {
	OpenFile(name string, flag int, perm os.FileMode) (File, error)
	Stat(name string) (os.FileInfo, error)
	Lstat(name string) (os.FileInfo, error)
	Rename(oldpath, newpath string) error
	Remove(name string) error
	RemoveAll(name string) error
	Mkdir(name string, perm os.FileMode) error
	MkdirAll(name string, perm os.FileMode) error
	ReadDir(name string) ([]os.DirEntry, error)
	Truncate(name string, size int64) error
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm os.FileMode) error
	CopyFile(src, dst string) (int64, error)
}

// OS is the production Provider backed by the real filesystem.
type OS struct{}

// NewOS returns the os-backed provider.
func NewOS() *OS {
	return &OS{}
}

func (*OS) OpenFile(name string, flag int, perm os.FileMode) (File, error) {
	f, err := os.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (*OS) Stat(name string) (os.FileInfo, error)  { return os.Stat(name) }
func (*OS) Lstat(name string) (os.FileInfo, error) { return os.Lstat(name) }

func (*OS) Rename(oldpath, newpath string) error { return os.Rename(oldpath, newpath) }
func (*OS) Remove(name string) error             { return os.Remove(name) }
func (*OS) RemoveAll(name string) error          { return os.RemoveAll(name) }

func (*OS) Mkdir(name string, perm os.FileMode) error    { return os.Mkdir(name, perm) }
func (*OS) MkdirAll(name string, perm os.FileMode) error { return os.MkdirAll(name, perm) }

func (*OS) ReadDir(name string) ([]os.DirEntry, error) { return os.ReadDir(name) }

func (*OS) Truncate(name string, size int64) error { return os.Truncate(name, size) }

func (*OS) ReadFile(name string) ([]byte, error) { return os.ReadFile(name) }

func (*OS) WriteFile(name string, data []byte, perm os.FileMode) error {
	return os.WriteFile(name, data, perm)
}

// CopyFile copies a regular file's contents and permission bits. The
// destination is created fresh; a failed copy removes the partial file so
// a rejected or interrupted call leaves no half-written artifact.
func (*OS) CopyFile(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return 0, err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return 0, err
	}

	written, err := io.Copy(out, in)
	if err != nil {
		out.Close()
		os.Remove(dst)
		return written, err
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return written, err
	}
	return written, nil
}
