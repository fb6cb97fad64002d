// Package filesystem is the operation dispatcher for the plugin core: the
// single façade every front-end filesystem call passes through.
//
// This package is organized into specialized modules:
//   - files: whole-file operations (read, write, create, remove, exists, truncate)
//   - handles: stateful streaming I/O through the open-handle registry
//   - dirs: directory operations (mkdir, readDir, recursive size)
//   - metadata: stat and lstat
//   - transfer: two-path operations (copyFile, rename)
//   - watch: watch session lifecycle (watch, unwatch)
//
// Every operation follows the same pipeline: validate argument shape,
// resolve the logical path against its base-directory token, authorize the
// resolved path against the scope policy, then perform the OS primitive.
// Failures stop the pipeline at the first stage and surface with a stable
// error kind; two-path operations resolve and authorize both paths before
// any OS mutation happens.
package filesystem
