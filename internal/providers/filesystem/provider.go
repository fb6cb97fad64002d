package filesystem

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/glimmerdesk/fsbridge/internal/fsprim"
	"github.com/glimmerdesk/fsbridge/internal/handle"
	"github.com/glimmerdesk/fsbridge/internal/resolve"
	"github.com/glimmerdesk/fsbridge/internal/scope"
	"github.com/glimmerdesk/fsbridge/internal/types"
	"github.com/glimmerdesk/fsbridge/internal/watch"
)

// Provider implements the filesystem service
type Provider struct {
	ops      *FsOps
	files    *FileOps
	handles  *HandleOps
	dirs     *DirOps
	meta     *MetaOps
	transfer *TransferOps
	watches  *WatchOps
}

// NewProvider creates the filesystem provider. debounce is the default
// coalescing window for watch requests that omit one; zero or negative
// selects 100ms.
func NewProvider(resolver *resolve.Resolver, policy *scope.Policy, prim fsprim.Provider, handles *handle.Registry, watches *watch.Manager, sink EventSink, debounce time.Duration, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	if debounce <= 0 {
		debounce = 100 * time.Millisecond
	}
	ops := &FsOps{
		Resolver: resolver,
		Scope:    policy,
		Prim:     prim,
		Handles:  handles,
		Watches:  watches,
		Sink:     sink,
		Logger:   logger,
		Debounce: debounce,
	}
	return &Provider{
		ops:      ops,
		files:    &FileOps{FsOps: ops},
		handles:  &HandleOps{FsOps: ops},
		dirs:     &DirOps{FsOps: ops},
		meta:     &MetaOps{FsOps: ops},
		transfer: &TransferOps{FsOps: ops},
		watches:  &WatchOps{FsOps: ops},
	}
}

// Definition returns service metadata
func (p *Provider) Definition() types.Service {
	tools := []types.Tool{}
	tools = append(tools, p.files.GetTools()...)
	tools = append(tools, p.handles.GetTools()...)
	tools = append(tools, p.dirs.GetTools()...)
	tools = append(tools, p.meta.GetTools()...)
	tools = append(tools, p.transfer.GetTools()...)
	tools = append(tools, p.watches.GetTools()...)

	return types.Service{
		ID:          "fs",
		Name:        "Filesystem",
		Description: "Scope-enforced filesystem access for the untrusted front-end",
		Category:    types.CategoryFilesystem,
		Capabilities: []string{
			"read", "write", "create", "remove", "mkdir", "read_dir",
			"stat", "copy", "rename", "handles", "watch",
		},
		Tools: tools,
	}
}

// Execute runs a filesystem operation
func (p *Provider) Execute(ctx context.Context, toolID string, params map[string]interface{}, callCtx *types.Context) (*types.Result, error) {
	switch toolID {
	// Whole-file operations
	case "fs.read_text_file":
		return p.files.ReadTextFile(ctx, params, callCtx)
	case "fs.read_file":
		return p.files.ReadFile(ctx, params, callCtx)
	case "fs.write_text_file":
		return p.files.WriteTextFile(ctx, params, callCtx)
	case "fs.write_file":
		return p.files.WriteFile(ctx, params, callCtx)
	case "fs.create":
		return p.files.Create(ctx, params, callCtx)
	case "fs.remove":
		return p.files.Remove(ctx, params, callCtx)
	case "fs.exists":
		return p.files.Exists(ctx, params, callCtx)
	case "fs.truncate":
		return p.files.Truncate(ctx, params, callCtx)

	// Handle-based streaming I/O
	case "fs.open":
		return p.handles.Open(ctx, params, callCtx)
	case "fs.close":
		return p.handles.Close(ctx, params, callCtx)
	case "fs.read":
		return p.handles.Read(ctx, params, callCtx)
	case "fs.read_line":
		return p.handles.ReadLine(ctx, params, callCtx)
	case "fs.write":
		return p.handles.Write(ctx, params, callCtx)
	case "fs.seek":
		return p.handles.Seek(ctx, params, callCtx)
	case "fs.ftruncate":
		return p.handles.Ftruncate(ctx, params, callCtx)
	case "fs.fstat":
		return p.handles.Fstat(ctx, params, callCtx)
	case "fs.fsync":
		return p.handles.Fsync(ctx, params, callCtx)

	// Directory operations
	case "fs.mkdir":
		return p.dirs.Mkdir(ctx, params, callCtx)
	case "fs.read_dir":
		return p.dirs.ReadDir(ctx, params, callCtx)
	case "fs.size":
		return p.dirs.Size(ctx, params, callCtx)

	// Metadata
	case "fs.stat":
		return p.meta.Stat(ctx, params, callCtx)
	case "fs.lstat":
		return p.meta.Lstat(ctx, params, callCtx)

	// Two-path operations
	case "fs.copy_file":
		return p.transfer.CopyFile(ctx, params, callCtx)
	case "fs.rename":
		return p.transfer.Rename(ctx, params, callCtx)

	// Watch sessions
	case "fs.watch":
		return p.watches.Watch(ctx, params, callCtx)
	case "fs.unwatch":
		return p.watches.Unwatch(ctx, params, callCtx)

	default:
		return Failuref("unknown tool: %s", toolID)
	}
}

// Close releases every handle and watch session at teardown.
func (p *Provider) Close() {
	p.ops.Watches.CloseAll()
	p.ops.Handles.CloseAll()
}
