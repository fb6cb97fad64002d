package filesystem

import (
	"context"
	"io/fs"
	"path/filepath"
	"sync/atomic"

	"github.com/charlievieth/fastwalk"

	"github.com/glimmerdesk/fsbridge/internal/fsprim"
	"github.com/glimmerdesk/fsbridge/internal/scope"
	"github.com/glimmerdesk/fsbridge/internal/shared/fserr"
	"github.com/glimmerdesk/fsbridge/internal/types"
)

// DirOps handles directory operations
type DirOps struct {
	*FsOps
}

// GetTools returns directory operation tool definitions
func (d *DirOps) GetTools() []types.Tool {
	return []types.Tool{
		{
			ID:          "fs.mkdir",
			Name:        "Make Directory",
			Description: "Create a directory, optionally with parents",
			Parameters: []types.Parameter{
				{Name: "path", Type: "string", Description: "Logical directory path", Required: true},
				{Name: "base_dir", Type: "string", Description: "Base directory token", Required: false},
				{Name: "recursive", Type: "boolean", Description: "Create missing parents", Required: false},
				{Name: "mode", Type: "number", Description: "Unix mode for created directories", Required: false},
			},
			Returns: "boolean",
		},
		{
			ID:          "fs.read_dir",
			Name:        "Read Directory",
			Description: "List directory entries",
			Parameters: []types.Parameter{
				{Name: "path", Type: "string", Description: "Logical directory path", Required: true},
				{Name: "base_dir", Type: "string", Description: "Base directory token", Required: false},
			},
			Returns: "array",
		},
		{
			ID:          "fs.size",
			Name:        "Size",
			Description: "Total size in bytes of a file or directory tree",
			Parameters: []types.Parameter{
				{Name: "path", Type: "string", Description: "Logical path", Required: true},
				{Name: "base_dir", Type: "string", Description: "Base directory token", Required: false},
			},
			Returns: "number",
		},
	}
}

// Mkdir creates a directory
func (d *DirOps) Mkdir(ctx context.Context, params map[string]interface{}, callCtx *types.Context) (*types.Result, error) {
	path, baseDir, ok := pathParams(params)
	if !ok {
		return Failuref("path parameter required")
	}
	recursive, _ := params["recursive"].(bool)

	perm := fs.FileMode(0o755)
	if mode, present := intParam(params, "mode"); present && mode > 0 {
		perm = fs.FileMode(mode)
	}

	resolved, err := d.resolveAuthorized(path, baseDir, scope.ClassWrite)
	if err != nil {
		return Failure(err)
	}

	if recursive {
		err = d.Prim.MkdirAll(resolved, perm)
	} else {
		err = d.Prim.Mkdir(resolved, perm)
	}
	if err != nil {
		return Failure(fserr.Wrap("mkdir", err))
	}

	return Success(map[string]interface{}{"created": true, "path": path})
}

// ReadDir lists a directory's entries
func (d *DirOps) ReadDir(ctx context.Context, params map[string]interface{}, callCtx *types.Context) (*types.Result, error) {
	path, baseDir, ok := pathParams(params)
	if !ok {
		return Failuref("path parameter required")
	}

	resolved, err := d.resolveAuthorized(path, baseDir, scope.ClassRead)
	if err != nil {
		return Failure(err)
	}

	raw, err := d.Prim.ReadDir(resolved)
	if err != nil {
		return Failure(fserr.Wrap("readdir", err))
	}

	entries := make([]fsprim.DirEntry, 0, len(raw))
	for _, de := range raw {
		entries = append(entries, fsprim.DirEntry{
			Name:        de.Name(),
			Path:        filepath.Join(resolved, de.Name()),
			IsDirectory: de.IsDir(),
			IsFile:      de.Type().IsRegular(),
			IsSymlink:   de.Type()&fs.ModeSymlink != 0,
		})
	}

	return Success(map[string]interface{}{
		"path":    path,
		"entries": entries,
		"count":   len(entries),
	})
}

// Size reports the byte size of a file, or the recursive total for a
// directory. Symlinks are counted by their own size, never followed.
func (d *DirOps) Size(ctx context.Context, params map[string]interface{}, callCtx *types.Context) (*types.Result, error) {
	path, baseDir, ok := pathParams(params)
	if !ok {
		return Failuref("path parameter required")
	}

	resolved, err := d.resolveAuthorized(path, baseDir, scope.ClassRead)
	if err != nil {
		return Failure(err)
	}

	fi, err := d.Prim.Lstat(resolved)
	if err != nil {
		return Failure(fserr.Wrap("lstat", err))
	}
	if !fi.IsDir() {
		return Success(map[string]interface{}{"path": path, "size": fi.Size()})
	}

	total, err := treeSize(ctx, resolved)
	if err != nil {
		return Failure(err)
	}
	return Success(map[string]interface{}{"path": path, "size": total})
}

// treeSize walks the directory concurrently, summing regular-file sizes.
func treeSize(ctx context.Context, root string) (int64, error) {
	var total atomic.Int64
	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, root, func(p string, de fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if de.Type().IsRegular() {
			fi, ierr := de.Info()
			if ierr != nil {
				return ierr
			}
			total.Add(fi.Size())
		}
		return nil
	})
	if err != nil {
		return 0, fserr.Wrap("walk", err)
	}
	return total.Load(), nil
}
