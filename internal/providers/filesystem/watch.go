package filesystem

import (
	"context"
	"time"

	"github.com/glimmerdesk/fsbridge/internal/scope"
	"github.com/glimmerdesk/fsbridge/internal/shared/id"
	"github.com/glimmerdesk/fsbridge/internal/types"
)

// WatchOps handles change-notification sessions
type WatchOps struct {
	*FsOps
}

// GetTools returns watch tool definitions
func (w *WatchOps) GetTools() []types.Tool {
	return []types.Tool{
		{
			ID:          "fs.watch",
			Name:        "Watch",
			Description: "Subscribe to change notifications for one or more paths",
			Parameters: []types.Parameter{
				{Name: "paths", Type: "array", Description: "Logical paths to watch", Required: true},
				{Name: "base_dir", Type: "string", Description: "Base directory token for every path", Required: false},
				{Name: "recursive", Type: "boolean", Description: "Descend into subdirectories", Required: false},
				{Name: "debounce_ms", Type: "number", Description: "Coalescing window in milliseconds", Required: false},
			},
			Returns: "string",
		},
		{
			ID:          "fs.unwatch",
			Name:        "Unwatch",
			Description: "Stop a watch session",
			Parameters: []types.Parameter{
				{Name: "id", Type: "string", Description: "Watch session identifier", Required: true},
			},
			Returns: "boolean",
		},
	}
}

// Watch resolves and authorizes every requested root, then starts a
// session. Authorization is all-or-nothing: one rejected root fails the
// whole request and no subscription exists afterwards.
func (w *WatchOps) Watch(ctx context.Context, params map[string]interface{}, callCtx *types.Context) (*types.Result, error) {
	logical, ok := stringSlice(params["paths"])
	if !ok || len(logical) == 0 {
		return Failuref("paths parameter required")
	}
	baseDir, _ := params["base_dir"].(string)
	recursive, _ := params["recursive"].(bool)

	debounce := w.Debounce
	if ms, present := intParam(params, "debounce_ms"); present {
		if ms < 0 {
			return Failuref("debounce_ms must not be negative")
		}
		debounce = time.Duration(ms) * time.Millisecond
	}

	roots := make([]string, 0, len(logical))
	for _, p := range logical {
		resolved, err := w.resolveAuthorized(p, baseDir, scope.ClassWatch)
		if err != nil {
			return Failure(err)
		}
		roots = append(roots, resolved)
	}

	session, err := w.Watches.Watch(roots, recursive, debounce)
	if err != nil {
		return Failure(err)
	}

	if w.Sink != nil {
		w.Sink.Attach(session.ID, session.Events())
	}

	return Success(map[string]interface{}{
		"id":        session.ID.String(),
		"paths":     logical,
		"recursive": recursive,
	})
}

// Unwatch stops a session. Unknown or already-stopped identifiers succeed,
// since the front-end may race a close against a terminal watcher error.
func (w *WatchOps) Unwatch(ctx context.Context, params map[string]interface{}, callCtx *types.Context) (*types.Result, error) {
	raw, ok := params["id"].(string)
	if !ok || raw == "" {
		return Failuref("id parameter required")
	}

	w.Watches.Unwatch(id.WatchID(raw))
	return Success(map[string]interface{}{"stopped": true, "id": raw})
}

// stringSlice accepts both []string and the []interface{} JSON decoding.
func stringSlice(v interface{}) ([]string, bool) {
	switch vs := v.(type) {
	case []string:
		return vs, true
	case []interface{}:
		out := make([]string, 0, len(vs))
		for _, e := range vs {
			s, ok := e.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	case string:
		if vs == "" {
			return nil, false
		}
		return []string{vs}, true
	default:
		return nil, false
	}
}
