package fsprim

import (
	"os"
	"time"
)

// Info is the file metadata shape returned to callers. Platform-specific
// fields are pointers so the front-end sees null where the OS has nothing
// to report.
type Info struct {
	Name        string     `json:"name"`
	Path        string     `json:"path"`
	IsFile      bool       `json:"is_file"`
	IsDirectory bool       `json:"is_directory"`
	IsSymlink   bool       `json:"is_symlink"`
	Size        int64      `json:"size"`
	Readonly    bool       `json:"readonly"`
	Modified    *time.Time `json:"modified,omitempty"`
	Accessed    *time.Time `json:"accessed,omitempty"`
	Created     *time.Time `json:"created,omitempty"`
	Permissions *uint32    `json:"permissions,omitempty"`
	UID         *uint32    `json:"uid,omitempty"`
	GID         *uint32    `json:"gid,omitempty"`
	Nlink       *uint64    `json:"nlink,omitempty"`
	Dev         *uint64    `json:"dev,omitempty"`
	Ino         *uint64    `json:"ino,omitempty"`
}

// InfoFrom builds an Info from an os.FileInfo, filling platform fields
// where the underlying stat structure provides them.
func InfoFrom(path string, fi os.FileInfo) Info {
	mode := fi.Mode()
	info := Info{
		Name:        fi.Name(),
		Path:        path,
		IsFile:      mode.IsRegular(),
		IsDirectory: mode.IsDir(),
		IsSymlink:   mode&os.ModeSymlink != 0,
		Size:        fi.Size(),
		Readonly:    mode.Perm()&0o200 == 0,
	}
	if mod := fi.ModTime(); !mod.IsZero() {
		info.Modified = &mod
	}
	fillPlatform(&info, fi)
	return info
}

// DirEntry is one directory-listing row.
type DirEntry struct {
	Name        string `json:"name"`
	Path        string `json:"path"`
	IsDirectory bool   `json:"is_directory"`
	IsFile      bool   `json:"is_file"`
	IsSymlink   bool   `json:"is_symlink"`
}
