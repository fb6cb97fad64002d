// Command fsbridge runs the trusted filesystem bridge for the desktop
// front-end: a loopback HTTP/WebSocket surface whose every operation is
// path-validated and scope-checked before it touches the OS.
package main
