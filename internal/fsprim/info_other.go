//go:build !linux && !darwin

package fsprim

import "os"

// Other platforms report the portable fields only; the pointer fields stay
// null as the wire contract allows.
func fillPlatform(info *Info, fi os.FileInfo) {}
