package filesystem

import (
	"context"

	"github.com/glimmerdesk/fsbridge/internal/scope"
	"github.com/glimmerdesk/fsbridge/internal/shared/fserr"
	"github.com/glimmerdesk/fsbridge/internal/types"
)

// TransferOps handles two-path operations. Both paths are resolved and
// authorized before the OS is touched, so a rejected destination can never
// leave a half-applied mutation behind.
type TransferOps struct {
	*FsOps
}

// GetTools returns two-path operation tool definitions
func (t *TransferOps) GetTools() []types.Tool {
	return []types.Tool{
		{
			ID:          "fs.copy_file",
			Name:        "Copy File",
			Description: "Copy a regular file",
			Parameters: []types.Parameter{
				{Name: "from_path", Type: "string", Description: "Source logical path", Required: true},
				{Name: "from_base_dir", Type: "string", Description: "Source base directory token", Required: false},
				{Name: "to_path", Type: "string", Description: "Destination logical path", Required: true},
				{Name: "to_base_dir", Type: "string", Description: "Destination base directory token", Required: false},
			},
			Returns: "number",
		},
		{
			ID:          "fs.rename",
			Name:        "Rename",
			Description: "Rename or move a file or directory",
			Parameters: []types.Parameter{
				{Name: "from_path", Type: "string", Description: "Source logical path", Required: true},
				{Name: "from_base_dir", Type: "string", Description: "Source base directory token", Required: false},
				{Name: "to_path", Type: "string", Description: "Destination logical path", Required: true},
				{Name: "to_base_dir", Type: "string", Description: "Destination base directory token", Required: false},
			},
			Returns: "boolean",
		},
	}
}

// CopyFile copies a regular file. The source authorizes against the read
// class and the destination against the write class.
func (t *TransferOps) CopyFile(ctx context.Context, params map[string]interface{}, callCtx *types.Context) (*types.Result, error) {
	from, to, err := t.resolvePair(params)
	if err != nil {
		return Failure(err)
	}

	written, cerr := t.Prim.CopyFile(from, to)
	if cerr != nil {
		return Failure(fserr.Wrap("copy", cerr))
	}

	return Success(map[string]interface{}{"copied": true, "bytes": written})
}

// Rename moves a file or directory. Both endpoints authorize against the
// write class since the source disappears.
func (t *TransferOps) Rename(ctx context.Context, params map[string]interface{}, callCtx *types.Context) (*types.Result, error) {
	fromPath, fromDir, toPath, toDir, ok := pairParams(params)
	if !ok {
		return Failuref("from_path and to_path parameters required")
	}

	from, err := t.resolveAuthorized(fromPath, fromDir, scope.ClassWrite)
	if err != nil {
		return Failure(err)
	}
	to, err := t.resolveAuthorized(toPath, toDir, scope.ClassWrite)
	if err != nil {
		return Failure(err)
	}

	if rerr := t.Prim.Rename(from, to); rerr != nil {
		return Failure(fserr.Wrap("rename", rerr))
	}

	return Success(map[string]interface{}{"renamed": true})
}

// resolvePair resolves and authorizes a read-class source and write-class
// destination, failing before any mutation if either is out of scope.
func (t *TransferOps) resolvePair(params map[string]interface{}) (from, to string, err error) {
	fromPath, fromDir, toPath, toDir, ok := pairParams(params)
	if !ok {
		return "", "", fserr.Newf(fserr.KindInvalidPath, "from_path and to_path parameters required")
	}

	from, err = t.resolveAuthorized(fromPath, fromDir, scope.ClassRead)
	if err != nil {
		return "", "", err
	}
	to, err = t.resolveAuthorized(toPath, toDir, scope.ClassWrite)
	if err != nil {
		return "", "", err
	}
	return from, to, nil
}

func pairParams(params map[string]interface{}) (fromPath, fromDir, toPath, toDir string, ok bool) {
	fromPath, ok = params["from_path"].(string)
	if !ok || fromPath == "" {
		return "", "", "", "", false
	}
	toPath, ok = params["to_path"].(string)
	if !ok || toPath == "" {
		return "", "", "", "", false
	}
	fromDir, _ = params["from_base_dir"].(string)
	toDir, _ = params["to_base_dir"].(string)
	return fromPath, fromDir, toPath, toDir, true
}
