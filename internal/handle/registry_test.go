package handle

import (
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/glimmerdesk/fsbridge/internal/fsprim"
	"github.com/glimmerdesk/fsbridge/internal/shared/fserr"
)

func openTemp(t *testing.T, contents string) (fsprim.File, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "f.txt")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		t.Fatal(err)
	}
	return f, path
}

func register(t *testing.T, r *Registry, contents string) ID {
	t.Helper()
	f, path := openTemp(t, contents)
	id, err := r.Register(f, path, OpenOptions{Read: true, Write: true})
	if err != nil {
		t.Fatal(err)
	}
	return id
}

func TestIDsAreNeverReused(t *testing.T) {
	r := NewRegistry()

	first := register(t, r, "a")
	if err := r.Release(first); err != nil {
		t.Fatal(err)
	}

	second := register(t, r, "b")
	if second == first {
		t.Error("released identifier must not be reissued")
	}
	if second <= first {
		t.Errorf("ids must be monotonic: %d after %d", second, first)
	}
}

func TestReleaseUnknownHandle(t *testing.T) {
	r := NewRegistry()
	id := register(t, r, "x")

	if err := r.Release(id); err != nil {
		t.Fatal(err)
	}
	err := r.Release(id)
	if !fserr.IsKind(err, fserr.KindNotFound) {
		t.Errorf("double release = %v, want NotFound", err)
	}
	if err := r.Release(ID(9999)); !fserr.IsKind(err, fserr.KindNotFound) {
		t.Errorf("unknown release = %v, want NotFound", err)
	}
}

func TestReadZeroLength(t *testing.T) {
	r := NewRegistry()
	id := register(t, r, "hello")

	data, eof, err := r.Read(id, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 0 || eof {
		t.Errorf("zero-length read = (%q, eof=%v), want empty and no eof", data, eof)
	}

	// The cursor must not have moved.
	data, _, err = r.Read(id, 5)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "hello" {
		t.Errorf("read after zero-length read = %q, want %q", data, "hello")
	}
}

func TestReadEOFFlag(t *testing.T) {
	r := NewRegistry()
	id := register(t, r, "ab")

	data, eof, err := r.Read(id, 10)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "ab" || eof {
		t.Errorf("partial read = (%q, eof=%v)", data, eof)
	}

	data, eof, err = r.Read(id, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 0 || !eof {
		t.Errorf("exhausted read = (%q, eof=%v), want empty with eof", data, eof)
	}
}

func TestReadNegativeSize(t *testing.T) {
	r := NewRegistry()
	id := register(t, r, "x")

	if _, _, err := r.Read(id, -1); err == nil {
		t.Error("negative read size should fail")
	}
}

func TestWriteAndReadBack(t *testing.T) {
	r := NewRegistry()
	id := register(t, r, "")

	n, err := r.Write(id, []byte("payload"))
	if err != nil {
		t.Fatal(err)
	}
	if n != 7 {
		t.Errorf("wrote %d, want 7", n)
	}

	if _, err := r.Seek(id, 0, SeekStart); err != nil {
		t.Fatal(err)
	}
	data, _, err := r.Read(id, 7)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "payload" {
		t.Errorf("read back %q", data)
	}
}

func TestWriteEmptyBuffer(t *testing.T) {
	r := NewRegistry()
	id := register(t, r, "")

	n, err := r.Write(id, nil)
	if err != nil || n != 0 {
		t.Errorf("empty write = (%d, %v), want (0, nil)", n, err)
	}
}

func TestReadLine(t *testing.T) {
	r := NewRegistry()
	id := register(t, r, "first\nsecond\r\nthird")

	for i, want := range []string{"first", "second", "third"} {
		line, eof, err := r.ReadLine(id)
		if err != nil {
			t.Fatal(err)
		}
		if line != want || eof {
			t.Errorf("line %d = (%q, eof=%v), want %q", i, line, eof, want)
		}
	}

	_, eof, err := r.ReadLine(id)
	if err != nil {
		t.Fatal(err)
	}
	if !eof {
		t.Error("exhausted ReadLine should report eof")
	}
}

func TestSeekAfterReadLine(t *testing.T) {
	r := NewRegistry()
	id := register(t, r, "one\ntwo\nthree\n")

	if _, _, err := r.ReadLine(id); err != nil {
		t.Fatal(err)
	}

	// The line reader buffered ahead; SeekCurrent must still be relative
	// to the logical cursor just past "one\n".
	pos, err := r.Seek(id, 0, SeekCurrent)
	if err != nil {
		t.Fatal(err)
	}
	if pos != 4 {
		t.Errorf("cursor after one line = %d, want 4", pos)
	}

	data, _, err := r.Read(id, 3)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "two" {
		t.Errorf("read after ReadLine = %q, want %q", data, "two")
	}
}

func TestSeekRejectsNegativeStart(t *testing.T) {
	r := NewRegistry()
	id := register(t, r, "abc")

	if _, err := r.Seek(id, -1, SeekStart); err == nil {
		t.Error("negative absolute seek should fail")
	}
	if _, err := r.Seek(id, 0, Whence(42)); err == nil {
		t.Error("unknown whence should fail")
	}
}

func TestTruncate(t *testing.T) {
	r := NewRegistry()
	id := register(t, r, "0123456789")

	length := int64(4)
	if err := r.Truncate(id, &length); err != nil {
		t.Fatal(err)
	}
	info, err := r.Stat(id)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size != 4 {
		t.Errorf("size after truncate = %d, want 4", info.Size)
	}

	// nil length truncates to zero
	if err := r.Truncate(id, nil); err != nil {
		t.Fatal(err)
	}
	info, err = r.Stat(id)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size != 0 {
		t.Errorf("size after nil truncate = %d, want 0", info.Size)
	}
}

func TestTruncateRejectsNegative(t *testing.T) {
	r := NewRegistry()
	id := register(t, r, "abc")

	bad := int64(-1)
	if err := r.Truncate(id, &bad); err == nil {
		t.Error("negative truncate length should fail")
	}
}

func TestStat(t *testing.T) {
	r := NewRegistry()
	id := register(t, r, "12345")

	info, err := r.Stat(id)
	if err != nil {
		t.Fatal(err)
	}
	if !info.IsFile || info.Size != 5 {
		t.Errorf("info = %+v", info)
	}
}

func TestOperationsOnUnknownHandle(t *testing.T) {
	r := NewRegistry()
	missing := ID(12345)

	if _, _, err := r.Read(missing, 1); !fserr.IsKind(err, fserr.KindNotFound) {
		t.Errorf("Read = %v, want NotFound", err)
	}
	if _, err := r.Write(missing, []byte("x")); !fserr.IsKind(err, fserr.KindNotFound) {
		t.Errorf("Write = %v, want NotFound", err)
	}
	if _, err := r.Seek(missing, 0, SeekStart); !fserr.IsKind(err, fserr.KindNotFound) {
		t.Errorf("Seek = %v, want NotFound", err)
	}
	if err := r.Sync(missing); !fserr.IsKind(err, fserr.KindNotFound) {
		t.Errorf("Sync = %v, want NotFound", err)
	}
}

func TestConcurrentRegisterIssuesUniqueIDs(t *testing.T) {
	r := NewRegistry()
	const workers = 16

	ids := make([]ID, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			ids[slot] = register(t, r, "x")
		}(i)
	}
	wg.Wait()

	seen := make(map[ID]bool, workers)
	for _, id := range ids {
		if seen[id] {
			t.Fatalf("duplicate id %d", id)
		}
		seen[id] = true
	}
	if r.Len() != workers {
		t.Errorf("Len = %d, want %d", r.Len(), workers)
	}
}

func TestCloseAll(t *testing.T) {
	r := NewRegistry()
	register(t, r, "a")
	register(t, r, "b")

	r.CloseAll()
	if r.Len() != 0 {
		t.Errorf("Len after CloseAll = %d", r.Len())
	}

	f, path := openTemp(t, "c")
	if _, err := r.Register(f, path, OpenOptions{}); err == nil {
		t.Error("Register after CloseAll should fail")
	}
	f.Close()
}

// stuntedFile accepts at most limit bytes per write and succeeds anyway,
// the shape of a device or quota boundary cutting a write short.
type stuntedFile struct {
	limit int
	data  []byte
}

func (f *stuntedFile) Read(p []byte) (int, error) { return 0, io.EOF }

func (f *stuntedFile) Write(p []byte) (int, error) {
	if len(p) > f.limit {
		p = p[:f.limit]
	}
	f.data = append(f.data, p...)
	return len(p), nil
}

func (f *stuntedFile) Seek(offset int64, whence int) (int64, error) { return 0, nil }
func (f *stuntedFile) Close() error                                 { return nil }
func (f *stuntedFile) Truncate(size int64) error                    { return nil }
func (f *stuntedFile) Stat() (os.FileInfo, error)                   { return nil, nil }
func (f *stuntedFile) Sync() error                                  { return nil }

func TestWriteCutShortIsShortWrite(t *testing.T) {
	r := NewRegistry()
	file := &stuntedFile{limit: 3}
	id, err := r.Register(file, "/dev/stunted", OpenOptions{Write: true})
	if err != nil {
		t.Fatal(err)
	}

	n, err := r.Write(id, []byte("abcdef"))
	if !fserr.IsKind(err, fserr.KindShortWrite) {
		t.Fatalf("short write = %v, want ShortWrite", err)
	}
	if n != 3 {
		t.Errorf("reported %d bytes written, want 3", n)
	}
	if string(file.data) != "abc" {
		t.Errorf("landed %q, want the truncated prefix", file.data)
	}
}
