package filesystem

import (
	"time"

	"go.uber.org/zap"

	"github.com/glimmerdesk/fsbridge/internal/basedir"
	"github.com/glimmerdesk/fsbridge/internal/fsprim"
	"github.com/glimmerdesk/fsbridge/internal/handle"
	"github.com/glimmerdesk/fsbridge/internal/resolve"
	"github.com/glimmerdesk/fsbridge/internal/scope"
	"github.com/glimmerdesk/fsbridge/internal/shared/fserr"
	"github.com/glimmerdesk/fsbridge/internal/shared/id"
	"github.com/glimmerdesk/fsbridge/internal/types"
	"github.com/glimmerdesk/fsbridge/internal/watch"
)

// EventSink receives a started watch session's outbound channel. The host
// transport implements it to pump batches to the front-end; the sink owns
// draining the channel until it closes.
type EventSink interface {
	Attach(sid id.WatchID, events <-chan watch.Batch)
}

// FsOps bundles the collaborators every operation group dispatches through.
type FsOps struct {
	Resolver *resolve.Resolver
	Scope    *scope.Policy
	Prim     fsprim.Provider
	Handles  *handle.Registry
	Watches  *watch.Manager
	Sink     EventSink
	Logger   *zap.Logger

	// Debounce is the coalescing window a watch request gets when it does
	// not name one.
	Debounce time.Duration
}

// resolveAuthorized runs the shared front half of the pipeline: parse the
// base-directory token, resolve the logical path, authorize the result.
func (o *FsOps) resolveAuthorized(logical, baseDirName string, class scope.Class) (string, error) {
	dir, err := basedir.Parse(baseDirName)
	if err != nil {
		return "", err
	}
	resolved, err := o.Resolver.Resolve(logical, dir)
	if err != nil {
		return "", err
	}
	if err := o.Scope.Authorize(resolved, class); err != nil {
		return "", err
	}
	return resolved, nil
}

// Success helper
func Success(data map[string]interface{}) (*types.Result, error) {
	return &types.Result{Success: true, Data: data}, nil
}

// Failure converts a pipeline error into a failed result carrying the
// stable error kind tag.
func Failure(err error) (*types.Result, error) {
	msg := err.Error()
	kind := string(fserr.KindOf(err))
	return &types.Result{Success: false, Error: &msg, ErrorKind: &kind}, nil
}

// Failuref builds a failed result for an argument-shape problem.
func Failuref(format string, args ...interface{}) (*types.Result, error) {
	return Failure(fserr.Newf(fserr.KindInvalidPath, format, args...))
}

// wrapOpen tags an open(2) failure with its primitive.
func wrapOpen(err error) error {
	return fserr.Wrap("open", err)
}

// infoMap shapes file metadata for a result payload.
func infoMap(info fsprim.Info) map[string]interface{} {
	return map[string]interface{}{"info": info}
}

// pathParams pulls the conventional (path, base_dir) argument pair.
func pathParams(params map[string]interface{}) (path, baseDir string, ok bool) {
	path, ok = params["path"].(string)
	if !ok || path == "" {
		return "", "", false
	}
	baseDir, _ = params["base_dir"].(string)
	return path, baseDir, true
}

// intParam reads a JSON number as int64.
func intParam(params map[string]interface{}, key string) (int64, bool) {
	switch v := params[key].(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case int:
		return int64(v), true
	default:
		return 0, false
	}
}

// handleParam reads the conventional handle identifier argument.
func handleParam(params map[string]interface{}) (handle.ID, bool) {
	n, ok := intParam(params, "handle")
	if !ok || n < 0 {
		return 0, false
	}
	return handle.ID(n), true
}
