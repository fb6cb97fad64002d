//go:build darwin

package fsprim

import (
	"os"
	"syscall"
	"time"
)

func fillPlatform(info *Info, fi os.FileInfo) {
	st, ok := fi.Sys().(*syscall.Stat_t)
	if !ok {
		return
	}

	perm := uint32(fi.Mode().Perm())
	uid, gid := st.Uid, st.Gid
	nlink := uint64(st.Nlink)
	dev := uint64(st.Dev)
	ino := st.Ino
	info.Permissions = &perm
	info.UID = &uid
	info.GID = &gid
	info.Nlink = &nlink
	info.Dev = &dev
	info.Ino = &ino

	if st.Atimespec.Sec != 0 {
		atime := time.Unix(st.Atimespec.Sec, st.Atimespec.Nsec)
		info.Accessed = &atime
	}
	if st.Birthtimespec.Sec != 0 {
		btime := time.Unix(st.Birthtimespec.Sec, st.Birthtimespec.Nsec)
		info.Created = &btime
	}
}
