package filesystem

import (
	"context"

	"github.com/glimmerdesk/fsbridge/internal/fsprim"
	"github.com/glimmerdesk/fsbridge/internal/scope"
	"github.com/glimmerdesk/fsbridge/internal/shared/fserr"
	"github.com/glimmerdesk/fsbridge/internal/types"
)

// MetaOps handles metadata queries
type MetaOps struct {
	*FsOps
}

// GetTools returns metadata tool definitions
func (m *MetaOps) GetTools() []types.Tool {
	return []types.Tool{
		{
			ID:          "fs.stat",
			Name:        "Stat",
			Description: "Stat a path, following symlinks",
			Parameters: []types.Parameter{
				{Name: "path", Type: "string", Description: "Logical path", Required: true},
				{Name: "base_dir", Type: "string", Description: "Base directory token", Required: false},
			},
			Returns: "json",
		},
		{
			ID:          "fs.lstat",
			Name:        "Lstat",
			Description: "Stat a path without following symlinks",
			Parameters: []types.Parameter{
				{Name: "path", Type: "string", Description: "Logical path", Required: true},
				{Name: "base_dir", Type: "string", Description: "Base directory token", Required: false},
			},
			Returns: "json",
		},
	}
}

// Stat stats a path, following symlinks
func (m *MetaOps) Stat(ctx context.Context, params map[string]interface{}, callCtx *types.Context) (*types.Result, error) {
	return m.stat(params, false)
}

// Lstat stats a path without following symlinks
func (m *MetaOps) Lstat(ctx context.Context, params map[string]interface{}, callCtx *types.Context) (*types.Result, error) {
	return m.stat(params, true)
}

func (m *MetaOps) stat(params map[string]interface{}, nofollow bool) (*types.Result, error) {
	path, baseDir, ok := pathParams(params)
	if !ok {
		return Failuref("path parameter required")
	}

	resolved, err := m.resolveAuthorized(path, baseDir, scope.ClassRead)
	if err != nil {
		return Failure(err)
	}

	if nofollow {
		fi, lerr := m.Prim.Lstat(resolved)
		if lerr != nil {
			return Failure(fserr.Wrap("lstat", lerr))
		}
		return Success(infoMap(fsprim.InfoFrom(resolved, fi)))
	}

	fi, serr := m.Prim.Stat(resolved)
	if serr != nil {
		return Failure(fserr.Wrap("stat", serr))
	}
	return Success(infoMap(fsprim.InfoFrom(resolved, fi)))
}
