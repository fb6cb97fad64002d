package filesystem

import (
	"context"
	"encoding/base64"
	"errors"
	"io/fs"

	"github.com/glimmerdesk/fsbridge/internal/scope"
	"github.com/glimmerdesk/fsbridge/internal/shared/fserr"
	"github.com/glimmerdesk/fsbridge/internal/types"
)

// FileOps handles whole-file operations
type FileOps struct {
	*FsOps
}

// GetTools returns whole-file operation tool definitions
func (f *FileOps) GetTools() []types.Tool {
	return []types.Tool{
		{
			ID:          "fs.read_text_file",
			Name:        "Read Text File",
			Description: "Read entire file as UTF-8 text",
			Parameters: []types.Parameter{
				{Name: "path", Type: "string", Description: "Logical file path", Required: true},
				{Name: "base_dir", Type: "string", Description: "Base directory token", Required: false},
			},
			Returns: "string",
		},
		{
			ID:          "fs.read_file",
			Name:        "Read File",
			Description: "Read entire file as base64 binary",
			Parameters: []types.Parameter{
				{Name: "path", Type: "string", Description: "Logical file path", Required: true},
				{Name: "base_dir", Type: "string", Description: "Base directory token", Required: false},
			},
			Returns: "bytes",
		},
		{
			ID:          "fs.write_text_file",
			Name:        "Write Text File",
			Description: "Write UTF-8 text, replacing existing contents",
			Parameters: []types.Parameter{
				{Name: "path", Type: "string", Description: "Logical file path", Required: true},
				{Name: "base_dir", Type: "string", Description: "Base directory token", Required: false},
				{Name: "data", Type: "string", Description: "Text to write", Required: true},
				{Name: "append", Type: "boolean", Description: "Append instead of replace", Required: false},
			},
			Returns: "boolean",
		},
		{
			ID:          "fs.write_file",
			Name:        "Write File",
			Description: "Write base64 binary data, replacing existing contents",
			Parameters: []types.Parameter{
				{Name: "path", Type: "string", Description: "Logical file path", Required: true},
				{Name: "base_dir", Type: "string", Description: "Base directory token", Required: false},
				{Name: "data", Type: "bytes", Description: "Base64 data", Required: true},
				{Name: "append", Type: "boolean", Description: "Append instead of replace", Required: false},
			},
			Returns: "boolean",
		},
		{
			ID:          "fs.create",
			Name:        "Create File",
			Description: "Create or truncate a file",
			Parameters: []types.Parameter{
				{Name: "path", Type: "string", Description: "Logical file path", Required: true},
				{Name: "base_dir", Type: "string", Description: "Base directory token", Required: false},
			},
			Returns: "number",
		},
		{
			ID:          "fs.remove",
			Name:        "Remove",
			Description: "Remove a file or directory",
			Parameters: []types.Parameter{
				{Name: "path", Type: "string", Description: "Logical path", Required: true},
				{Name: "base_dir", Type: "string", Description: "Base directory token", Required: false},
				{Name: "recursive", Type: "boolean", Description: "Remove directories recursively", Required: false},
			},
			Returns: "boolean",
		},
		{
			ID:          "fs.exists",
			Name:        "Check Existence",
			Description: "Check if a path exists",
			Parameters: []types.Parameter{
				{Name: "path", Type: "string", Description: "Logical path", Required: true},
				{Name: "base_dir", Type: "string", Description: "Base directory token", Required: false},
			},
			Returns: "boolean",
		},
		{
			ID:          "fs.truncate",
			Name:        "Truncate",
			Description: "Truncate a file to a length (default zero)",
			Parameters: []types.Parameter{
				{Name: "path", Type: "string", Description: "Logical file path", Required: true},
				{Name: "base_dir", Type: "string", Description: "Base directory token", Required: false},
				{Name: "len", Type: "number", Description: "New length in bytes", Required: false},
			},
			Returns: "boolean",
		},
	}
}

// ReadTextFile reads a whole file as text
func (f *FileOps) ReadTextFile(ctx context.Context, params map[string]interface{}, callCtx *types.Context) (*types.Result, error) {
	path, baseDir, ok := pathParams(params)
	if !ok {
		return Failuref("path parameter required")
	}

	resolved, err := f.resolveAuthorized(path, baseDir, scope.ClassRead)
	if err != nil {
		return Failure(err)
	}

	data, err := f.Prim.ReadFile(resolved)
	if err != nil {
		return Failure(fserr.Wrap("read", err))
	}

	return Success(map[string]interface{}{
		"path":    path,
		"content": string(data),
		"size":    len(data),
	})
}

// ReadFile reads a whole file as base64 binary
func (f *FileOps) ReadFile(ctx context.Context, params map[string]interface{}, callCtx *types.Context) (*types.Result, error) {
	path, baseDir, ok := pathParams(params)
	if !ok {
		return Failuref("path parameter required")
	}

	resolved, err := f.resolveAuthorized(path, baseDir, scope.ClassRead)
	if err != nil {
		return Failure(err)
	}

	data, err := f.Prim.ReadFile(resolved)
	if err != nil {
		return Failure(fserr.Wrap("read", err))
	}

	return Success(map[string]interface{}{
		"path": path,
		"data": base64.StdEncoding.EncodeToString(data),
		"size": len(data),
	})
}

// WriteTextFile writes text, replacing or appending
func (f *FileOps) WriteTextFile(ctx context.Context, params map[string]interface{}, callCtx *types.Context) (*types.Result, error) {
	data, ok := params["data"].(string)
	if !ok {
		return Failuref("data parameter required")
	}
	return f.write(params, []byte(data))
}

// WriteFile writes base64 binary data, replacing or appending
func (f *FileOps) WriteFile(ctx context.Context, params map[string]interface{}, callCtx *types.Context) (*types.Result, error) {
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
	return f.write(params, data)
}

func (f *FileOps) write(params map[string]interface{}, data []byte) (*types.Result, error) {
	path, baseDir, ok := pathParams(params)
	if !ok {
		return Failuref("path parameter required")
	}
	appendMode, _ := params["append"].(bool)

	resolved, err := f.resolveAuthorized(path, baseDir, scope.ClassWrite)
	if err != nil {
		return Failure(err)
	}

	if appendMode {
		if err := f.appendFile(resolved, data); err != nil {
			return Failure(err)
		}
	} else if err := f.Prim.WriteFile(resolved, data, 0o644); err != nil {
		return Failure(fserr.Wrap("write", err))
	}

	return Success(map[string]interface{}{
		"written": true,
		"path":    path,
		"size":    len(data),
	})
}

func (f *FileOps) appendFile(resolved string, data []byte) error {
	file, err := f.Prim.OpenFile(resolved, appendFlags(), 0o644)
	if err != nil {
		return fserr.Wrap("open", err)
	}
	defer file.Close()

	n, err := file.Write(data)
	if err != nil {
		return fserr.Wrap("write", err)
	}
	if n < len(data) {
		return fserr.Newf(fserr.KindShortWrite, "wrote %d of %d bytes", n, len(data))
	}
	return nil
}

// Create creates (or truncates) a file and returns an open handle for it
func (f *FileOps) Create(ctx context.Context, params map[string]interface{}, callCtx *types.Context) (*types.Result, error) {
	path, baseDir, ok := pathParams(params)
	if !ok {
		return Failuref("path parameter required")
	}

	resolved, err := f.resolveAuthorized(path, baseDir, scope.ClassWrite)
	if err != nil {
		return Failure(err)
	}

	file, err := f.Prim.OpenFile(resolved, createFlags(), 0o644)
	if err != nil {
		return Failure(fserr.Wrap("create", err))
	}

	hid, err := f.Handles.Register(file, resolved, defaultCreateOptions())
	if err != nil {
		file.Close()
		return Failure(err)
	}

	return Success(map[string]interface{}{
		"created": true,
		"path":    path,
		"handle":  uint64(hid),
	})
}

// Remove deletes a file or directory
func (f *FileOps) Remove(ctx context.Context, params map[string]interface{}, callCtx *types.Context) (*types.Result, error) {
	path, baseDir, ok := pathParams(params)
	if !ok {
		return Failuref("path parameter required")
	}
	recursive, _ := params["recursive"].(bool)

	resolved, err := f.resolveAuthorized(path, baseDir, scope.ClassWrite)
	if err != nil {
		return Failure(err)
	}

	if recursive {
		err = f.Prim.RemoveAll(resolved)
	} else {
		err = f.Prim.Remove(resolved)
	}
	if err != nil {
		return Failure(fserr.Wrap("remove", err))
	}

	return Success(map[string]interface{}{"removed": true, "path": path})
}

// Exists checks whether a path exists. A scope denial surfaces as
// ScopeViolation, never as "does not exist".
func (f *FileOps) Exists(ctx context.Context, params map[string]interface{}, callCtx *types.Context) (*types.Result, error) {
	path, baseDir, ok := pathParams(params)
	if !ok {
		return Failuref("path parameter required")
	}

	resolved, err := f.resolveAuthorized(path, baseDir, scope.ClassRead)
	if err != nil {
		return Failure(err)
	}

	_, err = f.Prim.Lstat(resolved)
	switch {
	case err == nil:
		return Success(map[string]interface{}{"exists": true, "path": path})
	case errors.Is(err, fs.ErrNotExist):
		return Success(map[string]interface{}{"exists": false, "path": path})
	default:
		return Failure(fserr.Wrap("lstat", err))
	}
}

// Truncate truncates a file by path; omitted length means zero
func (f *FileOps) Truncate(ctx context.Context, params map[string]interface{}, callCtx *types.Context) (*types.Result, error) {
	path, baseDir, ok := pathParams(params)
	if !ok {
		return Failuref("path parameter required")
	}

	var length int64
	if n, ok := intParam(params, "len"); ok {
		if n < 0 {
			return Failuref("len must not be negative")
		}
		length = n
	}

	resolved, err := f.resolveAuthorized(path, baseDir, scope.ClassWrite)
	if err != nil {
		return Failure(err)
	}

	if err := f.Prim.Truncate(resolved, length); err != nil {
		return Failure(fserr.Wrap("truncate", err))
	}

	return Success(map[string]interface{}{"truncated": true, "path": path, "len": length})
}
