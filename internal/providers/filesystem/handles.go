package filesystem

import (
	"context"
	"encoding/base64"
	"os"

	"github.com/glimmerdesk/fsbridge/internal/handle"
	"github.com/glimmerdesk/fsbridge/internal/scope"
	"github.com/glimmerdesk/fsbridge/internal/types"
)

// HandleOps handles open-file descriptor operations
type HandleOps struct {
	*FsOps
}

// GetTools returns handle operation tool definitions
func (h *HandleOps) GetTools() []types.Tool {
	return []types.Tool{
		{
			ID:          "fs.open",
			Name:        "Open File",
			Description: "Open a file and return a handle identifier",
			Parameters: []types.Parameter{
				{Name: "path", Type: "string", Description: "Logical file path", Required: true},
				{Name: "base_dir", Type: "string", Description: "Base directory token", Required: false},
				{Name: "read", Type: "boolean", Description: "Open for reading", Required: false},
				{Name: "write", Type: "boolean", Description: "Open for writing", Required: false},
				{Name: "append", Type: "boolean", Description: "Append on write", Required: false},
				{Name: "truncate", Type: "boolean", Description: "Truncate on open", Required: false},
				{Name: "create", Type: "boolean", Description: "Create if absent", Required: false},
				{Name: "create_new", Type: "boolean", Description: "Create, failing if present", Required: false},
				{Name: "mode", Type: "number", Description: "Unix mode for created files", Required: false},
			},
			Returns: "number",
		},
		{
			ID:          "fs.close",
			Name:        "Close Handle",
			Description: "Close a file handle",
			Parameters: []types.Parameter{
				{Name: "handle", Type: "number", Description: "Handle identifier", Required: true},
			},
			Returns: "boolean",
		},
		{
			ID:          "fs.read",
			Name:        "Read From Handle",
			Description: "Read up to len bytes at the handle cursor",
			Parameters: []types.Parameter{
				{Name: "handle", Type: "number", Description: "Handle identifier", Required: true},
				{Name: "len", Type: "number", Description: "Maximum bytes to read", Required: true},
			},
			Returns: "bytes",
		},
		{
			ID:          "fs.read_line",
			Name:        "Read Line",
			Description: "Read the next line at the handle cursor",
			Parameters: []types.Parameter{
				{Name: "handle", Type: "number", Description: "Handle identifier", Required: true},
			},
			Returns: "string",
		},
		{
			ID:          "fs.write",
			Name:        "Write To Handle",
			Description: "Write bytes at the handle cursor",
			Parameters: []types.Parameter{
				{Name: "handle", Type: "number", Description: "Handle identifier", Required: true},
				{Name: "data", Type: "bytes", Description: "Base64 data", Required: true},
			},
			Returns: "number",
		},
		{
			ID:          "fs.seek",
			Name:        "Seek",
			Description: "Move the handle cursor",
			Parameters: []types.Parameter{
				{Name: "handle", Type: "number", Description: "Handle identifier", Required: true},
				{Name: "offset", Type: "number", Description: "Offset in bytes", Required: true},
				{Name: "whence", Type: "string", Description: "One of start, current, end", Required: false},
			},
			Returns: "number",
		},
		{
			ID:          "fs.ftruncate",
			Name:        "Truncate Handle",
			Description: "Resize the open file (default zero)",
			Parameters: []types.Parameter{
				{Name: "handle", Type: "number", Description: "Handle identifier", Required: true},
				{Name: "len", Type: "number", Description: "New length in bytes", Required: false},
			},
			Returns: "boolean",
		},
		{
			ID:          "fs.fstat",
			Name:        "Stat Handle",
			Description: "Stat the open file by handle",
			Parameters: []types.Parameter{
				{Name: "handle", Type: "number", Description: "Handle identifier", Required: true},
			},
			Returns: "json",
		},
		{
			ID:          "fs.fsync",
			Name:        "Sync Handle",
			Description: "Flush the open file to stable storage",
			Parameters: []types.Parameter{
				{Name: "handle", Type: "number", Description: "Handle identifier", Required: true},
			},
			Returns: "boolean",
		},
	}
}

// Open resolves, authorizes, and opens a file, registering a handle for it.
// Write intent anywhere in the flags authorizes against the write class.
func (h *HandleOps) Open(ctx context.Context, params map[string]interface{}, callCtx *types.Context) (*types.Result, error) {
	path, baseDir, ok := pathParams(params)
	if !ok {
		return Failuref("path parameter required")
	}

	opts := optionsFromParams(params)
	if !opts.Read && !opts.Write && !opts.Append {
		opts.Read = true
	}

	class := scope.ClassRead
	if opts.Write || opts.Append || opts.Truncate || opts.Create || opts.CreateNew {
		class = scope.ClassWrite
	}

	resolved, err := h.resolveAuthorized(path, baseDir, class)
	if err != nil {
		return Failure(err)
	}

	hid, err := h.openRegistered(resolved, opts)
	if err != nil {
		return Failure(err)
	}

	return Success(map[string]interface{}{
		"handle": uint64(hid),
		"path":   path,
	})
}

// Close releases a handle
func (h *HandleOps) Close(ctx context.Context, params map[string]interface{}, callCtx *types.Context) (*types.Result, error) {
	hid, ok := handleParam(params)
	if !ok {
		return Failuref("handle parameter required")
	}

	if err := h.Handles.Release(hid); err != nil {
		return Failure(err)
	}
	return Success(map[string]interface{}{"closed": true, "handle": uint64(hid)})
}

// Read reads up to len bytes from the handle cursor
func (h *HandleOps) Read(ctx context.Context, params map[string]interface{}, callCtx *types.Context) (*types.Result, error) {
	hid, ok := handleParam(params)
	if !ok {
		return Failuref("handle parameter required")
	}
	size, ok := intParam(params, "len")
	if !ok {
		return Failuref("len parameter required")
	}

	data, eof, err := h.Handles.Read(hid, int(size))
	if err != nil {
		return Failure(err)
	}

	return Success(map[string]interface{}{
		"data": base64.StdEncoding.EncodeToString(data),
		"len":  len(data),
		"eof":  eof,
	})
}

// ReadLine reads the next line from the handle cursor
func (h *HandleOps) ReadLine(ctx context.Context, params map[string]interface{}, callCtx *types.Context) (*types.Result, error) {
	hid, ok := handleParam(params)
	if !ok {
		return Failuref("handle parameter required")
	}

	line, eof, err := h.Handles.ReadLine(hid)
	if err != nil {
		return Failure(err)
	}

	return Success(map[string]interface{}{"line": line, "eof": eof})
}

// Write writes the whole buffer at the handle cursor
func (h *HandleOps) Write(ctx context.Context, params map[string]interface{}, callCtx *types.Context) (*types.Result, error) {
	hid, ok := handleParam(params)
	if !ok {
		return Failuref("handle parameter required")
	}

	var data []byte
	switch v := params["data"].(type) {
	case []byte:
		data = v
	case string:
		decoded, err := base64.StdEncoding.DecodeString(v)
		if err != nil {
			return Failuref("data parameter must be base64: %v", err)
		}
		data = decoded
	default:
		return Failuref("data parameter must be bytes or base64 string")
	}

	n, err := h.Handles.Write(hid, data)
	if err != nil {
		return Failure(err)
	}
	return Success(map[string]interface{}{"written": n})
}

// Seek moves the handle cursor and reports the new absolute offset
func (h *HandleOps) Seek(ctx context.Context, params map[string]interface{}, callCtx *types.Context) (*types.Result, error) {
	hid, ok := handleParam(params)
	if !ok {
		return Failuref("handle parameter required")
	}
	offset, ok := intParam(params, "offset")
	if !ok {
		return Failuref("offset parameter required")
	}

	whence := handle.SeekStart
	if name, present := params["whence"].(string); present {
		switch name {
		case "start", "":
			whence = handle.SeekStart
		case "current":
			whence = handle.SeekCurrent
		case "end":
			whence = handle.SeekEnd
		default:
			return Failuref("whence must be start, current, or end")
		}
	}

	pos, err := h.Handles.Seek(hid, offset, whence)
	if err != nil {
		return Failure(err)
	}
	return Success(map[string]interface{}{"position": pos})
}

// Ftruncate resizes the open file; omitted length means zero
func (h *HandleOps) Ftruncate(ctx context.Context, params map[string]interface{}, callCtx *types.Context) (*types.Result, error) {
	hid, ok := handleParam(params)
	if !ok {
		return Failuref("handle parameter required")
	}

	var length *int64
	if n, present := intParam(params, "len"); present {
		length = &n
	}

	if err := h.Handles.Truncate(hid, length); err != nil {
		return Failure(err)
	}
	return Success(map[string]interface{}{"truncated": true, "handle": uint64(hid)})
}

// Fstat stats the open file by handle
func (h *HandleOps) Fstat(ctx context.Context, params map[string]interface{}, callCtx *types.Context) (*types.Result, error) {
	hid, ok := handleParam(params)
	if !ok {
		return Failuref("handle parameter required")
	}

	info, err := h.Handles.Stat(hid)
	if err != nil {
		return Failure(err)
	}
	return Success(infoMap(info))
}

// Fsync flushes the open file to stable storage
func (h *HandleOps) Fsync(ctx context.Context, params map[string]interface{}, callCtx *types.Context) (*types.Result, error) {
	hid, ok := handleParam(params)
	if !ok {
		return Failuref("handle parameter required")
	}

	if err := h.Handles.Sync(hid); err != nil {
		return Failure(err)
	}
	return Success(map[string]interface{}{"synced": true, "handle": uint64(hid)})
}

// openRegistered opens the resolved path with the mapped flags and registers
// the result, closing the file if registration loses the race with shutdown.
func (h *HandleOps) openRegistered(resolved string, opts handle.OpenOptions) (handle.ID, error) {
	file, err := h.Prim.OpenFile(resolved, openFlags(opts), openMode(opts))
	if err != nil {
		return 0, wrapOpen(err)
	}
	hid, err := h.Handles.Register(file, resolved, opts)
	if err != nil {
		file.Close()
		return 0, err
	}
	return hid, nil
}

func optionsFromParams(params map[string]interface{}) handle.OpenOptions {
	opts := handle.OpenOptions{}
	opts.Read, _ = params["read"].(bool)
	opts.Write, _ = params["write"].(bool)
	opts.Append, _ = params["append"].(bool)
	opts.Truncate, _ = params["truncate"].(bool)
	opts.Create, _ = params["create"].(bool)
	opts.CreateNew, _ = params["create_new"].(bool)
	if mode, ok := intParam(params, "mode"); ok && mode > 0 {
		opts.Mode = uint32(mode)
	}
	return opts
}

func openFlags(opts handle.OpenOptions) int {
	var flags int
	switch {
	case opts.Read && (opts.Write || opts.Append):
		flags = os.O_RDWR
	case opts.Write || opts.Append:
		flags = os.O_WRONLY
	default:
		flags = os.O_RDONLY
	}
	if opts.Append {
		flags |= os.O_APPEND
	}
	if opts.Truncate {
		flags |= os.O_TRUNC
	}
	if opts.CreateNew {
		flags |= os.O_CREATE | os.O_EXCL
	} else if opts.Create {
		flags |= os.O_CREATE
	}
	return flags
}

func openMode(opts handle.OpenOptions) os.FileMode {
	if opts.Mode != 0 {
		return os.FileMode(opts.Mode)
	}
	return 0o644
}

func appendFlags() int {
	return os.O_WRONLY | os.O_APPEND | os.O_CREATE
}

func createFlags() int {
	return os.O_RDWR | os.O_CREATE | os.O_TRUNC
}

func defaultCreateOptions() handle.OpenOptions {
	return handle.OpenOptions{Read: true, Write: true, Create: true, Truncate: true}
}
