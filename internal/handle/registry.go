// Package handle owns every open file the plugin holds on behalf of the
// front-end. Handles are keyed by a monotonically issued uint64 that is
// never reused for the life of the process, so a stale identifier from a
// closed file can never alias a live one. All cursor-mutating operations on
// one handle serialize under that handle's own lock; unrelated handles
// never contend.
package handle

import (
	"bufio"
	"io"
	"sync"
	"sync/atomic"

	"github.com/glimmerdesk/fsbridge/internal/fsprim"
	"github.com/glimmerdesk/fsbridge/internal/shared/fserr"
)

// ID is an opaque file-handle identifier.
type ID uint64

// OpenOptions records the flags a handle was opened with.
type OpenOptions struct {
	Read      bool   `json:"read"`
	Write     bool   `json:"write"`
	Append    bool   `json:"append"`
	Truncate  bool   `json:"truncate"`
	Create    bool   `json:"create"`
	CreateNew bool   `json:"create_new"`
	Mode      uint32 `json:"mode,omitempty"`
}

// Whence selects the seek origin.
type Whence int

const (
	SeekStart   Whence = io.SeekStart
	SeekCurrent Whence = io.SeekCurrent
	SeekEnd     Whence = io.SeekEnd
)

type entry struct {
	mu   sync.Mutex // serializes all cursor-touching ops on this handle
	file fsprim.File
	path string
	opts OpenOptions

	// lines is the pending line-reader cursor, created on the first
	// ReadLine and invalidated by Seek and Truncate since buffered
	// lookahead would no longer match the OS position.
	lines *bufio.Reader
}

// Registry is the concurrent handle table.
type Registry struct {
	mu      sync.RWMutex
	entries map[ID]*entry
	next    atomic.Uint64 // next id; 0 is never issued
	closed  bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[ID]*entry)}
}

// Register adds an open file and issues its identifier.
func (r *Registry) Register(file fsprim.File, path string, opts OpenOptions) (ID, error) {
	id := ID(r.next.Add(1))

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return 0, fserr.Newf(fserr.KindNotFound, "handle registry is shut down")
	}
	r.entries[id] = &entry{file: file, path: path, opts: opts}
	return id, nil
}

func (r *Registry) get(id ID) (*entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[id]
	if !ok {
		return nil, fserr.Newf(fserr.KindNotFound, "unknown file handle %d", id)
	}
	return e, nil
}

// Release closes the handle and removes it from the table. Releasing an
// unknown or already-released identifier fails with NotFound; since ids are
// never reused a double release cannot touch another handle.
func (r *Registry) Release(id ID) error {
	r.mu.Lock()
	e, ok := r.entries[id]
	if ok {
		delete(r.entries, id)
	}
	r.mu.Unlock()

	if !ok {
		return fserr.Newf(fserr.KindNotFound, "unknown file handle %d", id)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.file.Close(); err != nil {
		return fserr.Wrap("close", err)
	}
	return nil
}

// Read returns up to size bytes from the handle's cursor. A zero-length
// request short-circuits before the OS is consulted. EOF is reported as an
// explicit flag distinct from a zero-length read of a non-empty remainder.
func (r *Registry) Read(id ID, size int) (data []byte, eof bool, err error) {
	if size < 0 {
		return nil, false, fserr.Newf(fserr.KindInvalidPath, "negative read size %d", size)
	}
	e, err := r.get(id)
	if err != nil {
		return nil, false, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if size == 0 {
		return []byte{}, false, nil
	}

	if err := e.dropLineReader(); err != nil {
		return nil, false, fserr.Wrap("seek", err)
	}

	buf := make([]byte, size)
	n, rerr := e.file.Read(buf)
	switch {
	case rerr == nil:
		return buf[:n], false, nil
	case rerr == io.EOF && n > 0:
		return buf[:n], false, nil
	case rerr == io.EOF:
		return []byte{}, true, nil
	default:
		return nil, false, fserr.Wrap("read", rerr)
	}
}

// ReadLine returns the next line without its terminator. eof is reported
// once the stream is exhausted and no partial line remains.
func (r *Registry) ReadLine(id ID) (line string, eof bool, err error) {
	e, err := r.get(id)
	if err != nil {
		return "", false, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	text, rerr := e.reader().ReadString('\n')
	if rerr != nil && rerr != io.EOF {
		return "", false, fserr.Wrap("read", rerr)
	}
	if text == "" && rerr == io.EOF {
		return "", true, nil
	}
	text = trimLineEnding(text)
	return text, false, nil
}

// Write writes the whole buffer at the handle's cursor. A short write is an
// error, never a silent partial success; the byte count written so far is
// still returned for diagnostics.
func (r *Registry) Write(id ID, data []byte) (int, error) {
	e, err := r.get(id)
	if err != nil {
		return 0, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if len(data) == 0 {
		return 0, nil
	}

	if err := e.dropLineReader(); err != nil {
		return 0, fserr.Wrap("seek", err)
	}

	n, werr := e.file.Write(data)
	if werr != nil {
		return n, fserr.Wrap("write", werr)
	}
	if n < len(data) {
		return n, fserr.Newf(fserr.KindShortWrite, "wrote %d of %d bytes", n, len(data))
	}
	return n, nil
}

// Seek moves the handle's cursor and returns the new absolute offset.
// Seeking to a negative absolute position fails.
func (r *Registry) Seek(id ID, offset int64, whence Whence) (int64, error) {
	switch whence {
	case SeekStart, SeekCurrent, SeekEnd:
	default:
		return 0, fserr.Newf(fserr.KindInvalidPath, "invalid seek whence %d", whence)
	}
	if whence == SeekStart && offset < 0 {
		return 0, fserr.Newf(fserr.KindInvalidPath, "negative seek offset %d", offset)
	}

	e, err := r.get(id)
	if err != nil {
		return 0, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	// Rewind any buffered lookahead first so SeekCurrent is relative to the
	// logical cursor, not the descriptor position the line reader ran ahead to.
	if err := e.dropLineReader(); err != nil {
		return 0, fserr.Wrap("seek", err)
	}

	pos, serr := e.file.Seek(offset, int(whence))
	if serr != nil {
		return 0, fserr.Wrap("seek", serr)
	}
	return pos, nil
}

// Truncate resizes the open file. A nil length truncates to zero.
func (r *Registry) Truncate(id ID, length *int64) error {
	var size int64
	if length != nil {
		if *length < 0 {
			return fserr.Newf(fserr.KindInvalidPath, "negative truncate length %d", *length)
		}
		size = *length
	}

	e, err := r.get(id)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.dropLineReader(); err != nil {
		return fserr.Wrap("seek", err)
	}
	if terr := e.file.Truncate(size); terr != nil {
		return fserr.Wrap("ftruncate", terr)
	}
	return nil
}

// Stat returns metadata for the open file.
func (r *Registry) Stat(id ID) (fsprim.Info, error) {
	e, err := r.get(id)
	if err != nil {
		return fsprim.Info{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	fi, serr := e.file.Stat()
	if serr != nil {
		return fsprim.Info{}, fserr.Wrap("fstat", serr)
	}
	return fsprim.InfoFrom(e.path, fi), nil
}

// Sync flushes the file to stable storage.
func (r *Registry) Sync(id ID) error {
	e, err := r.get(id)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if serr := e.file.Sync(); serr != nil {
		return fserr.Wrap("fsync", serr)
	}
	return nil
}

// Path reports the resolved path a handle was opened on.
func (r *Registry) Path(id ID) (string, error) {
	e, err := r.get(id)
	if err != nil {
		return "", err
	}
	return e.path, nil
}

// Len reports the number of live handles.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// CloseAll releases every handle at process teardown. Further Register
// calls fail.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	entries := r.entries
	r.entries = make(map[ID]*entry)
	r.closed = true
	r.mu.Unlock()

	for _, e := range entries {
		e.mu.Lock()
		e.file.Close()
		e.mu.Unlock()
	}
}

// reader returns the pending line-reader cursor, creating it on first use.
func (e *entry) reader() *bufio.Reader {
	if e.lines == nil {
		e.lines = bufio.NewReader(e.file)
	}
	return e.lines
}

// dropLineReader discards the line reader after rewinding the descriptor by
// the unconsumed lookahead, so raw reads, writes, and seeks observe the
// logical cursor the caller last saw.
func (e *entry) dropLineReader() error {
	if e.lines == nil {
		return nil
	}
	if n := e.lines.Buffered(); n > 0 {
		if _, err := e.file.Seek(-int64(n), io.SeekCurrent); err != nil {
			return err
		}
	}
	e.lines = nil
	return nil
}

func trimLineEnding(line string) string {
	if n := len(line); n > 0 && line[n-1] == '\n' {
		line = line[:n-1]
	}
	if n := len(line); n > 0 && line[n-1] == '\r' {
		line = line[:n-1]
	}
	return line
}
