//go:build linux

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

	if st.Atim.Sec != 0 {
		atime := time.Unix(st.Atim.Sec, st.Atim.Nsec)
		info.Accessed = &atime
	}
	// Linux has no birth time in Stat_t; ctime is the closest available.
	if st.Ctim.Sec != 0 {
		ctime := time.Unix(st.Ctim.Sec, st.Ctim.Nsec)
		info.Created = &ctime
	}
}
