// Package basedir defines the symbolic base-directory tokens the front-end
// may reference and the host-side resolution of those tokens to concrete
// absolute paths. Tokens are a closed enum so every switch over them is
// exhaustively checkable; the concrete paths are looked up fresh on each
// call because the underlying directories can move between application runs.
package basedir

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/glimmerdesk/fsbridge/internal/shared/fserr"
)

// BaseDirectory is a symbolic named root.
type BaseDirectory int

const (
	// None means the logical path resolves against no symbolic root.
	None BaseDirectory = iota
	AppConfig
	AppData
	AppCache
	AppLog
	Config
	Data
	Cache
	Home
	Desktop
	Document
	Download
	Picture
	Video
	Audio
	Temp
	Resource
)

var names = map[BaseDirectory]string{
	None:      "none",
	AppConfig: "appConfig",
	AppData:   "appData",
	AppCache:  "appCache",
	AppLog:    "appLog",
	Config:    "config",
	Data:      "data",
	Cache:     "cache",
	Home:      "home",
	Desktop:   "desktop",
	Document:  "document",
	Download:  "download",
	Picture:   "picture",
	Video:     "video",
	Audio:     "audio",
	Temp:      "temp",
	Resource:  "resource",
}

var byName = func() map[string]BaseDirectory {
	m := make(map[string]BaseDirectory, len(names))
	for dir, name := range names {
		m[name] = dir
	}
	return m
}()

// String returns the wire name of the token.
func (d BaseDirectory) String() string {
	if name, ok := names[d]; ok {
		return name
	}
	return fmt.Sprintf("baseDirectory(%d)", int(d))
}

// Parse maps a wire name to its token. Unknown names fail with InvalidPath
// since they arrive from the untrusted side.
func Parse(name string) (BaseDirectory, error) {
	if name == "" {
		return None, nil
	}
	if dir, ok := byName[name]; ok {
		return dir, nil
	}
	return None, fserr.Newf(fserr.KindInvalidPath, "unknown base directory %q", name)
}

// All returns every token except None, in declaration order.
func All() []BaseDirectory {
	out := make([]BaseDirectory, 0, len(names)-1)
	for d := AppConfig; d <= Resource; d++ {
		out = append(out, d)
	}
	return out
}

// Resolver supplies the concrete absolute path for a token. Implemented by
// the host platform layer; the core only consumes it.
type Resolver interface {
	Resolve(dir BaseDirectory) (string, error)
}

// HostResolver resolves tokens against the OS user directories. App-scoped
// tokens nest under the vendor/app identifier the plugin host hands us.
type HostResolver struct {
	// AppIdentifier namespaces appConfig/appData/appCache/appLog
	// (e.g. "com.glimmerdesk.app").
	AppIdentifier string

	// ResourceDir is where the host unpacked bundled resources. Empty means
	// the token is unresolvable on this install.
	ResourceDir string
}

// Resolve implements Resolver. It consults the OS on every call rather than
// caching: user directories can be reconfigured between runs and the lookup
// is a handful of env reads.
func (r *HostResolver) Resolve(dir BaseDirectory) (string, error) {
	path, err := r.lookup(dir)
	if err != nil {
		return "", fserr.New(fserr.KindUnresolvableBaseDirectory,
			fmt.Errorf("resolve %s: %w", dir, err))
	}
	if path == "" {
		return "", fserr.Newf(fserr.KindUnresolvableBaseDirectory,
			"base directory %s is not available on this platform", dir)
	}
	return filepath.Clean(path), nil
}

func (r *HostResolver) lookup(dir BaseDirectory) (string, error) {
	switch dir {
	case None:
		return "", fmt.Errorf("token none has no root")
	case AppConfig:
		base, err := os.UserConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(base, r.AppIdentifier), nil
	case AppData:
		base, err := userDataDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(base, r.AppIdentifier), nil
	case AppCache:
		base, err := os.UserCacheDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(base, r.AppIdentifier), nil
	case AppLog:
		base, err := userDataDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(base, r.AppIdentifier, "logs"), nil
	case Config:
		return os.UserConfigDir()
	case Data:
		return userDataDir()
	case Cache:
		return os.UserCacheDir()
	case Home:
		return os.UserHomeDir()
	case Desktop:
		return userSubdir("Desktop")
	case Document:
		return userSubdir("Documents")
	case Download:
		return userSubdir("Downloads")
	case Picture:
		return userSubdir("Pictures")
	case Video:
		return userSubdir("Videos")
	case Audio:
		return userSubdir("Music")
	case Temp:
		return os.TempDir(), nil
	case Resource:
		return r.ResourceDir, nil
	default:
		return "", fmt.Errorf("unhandled token %d", int(dir))
	}
}

// userDataDir approximates XDG_DATA_HOME and its platform equivalents.
// os.UserConfigDir is the closest stdlib anchor on macOS and Windows;
// on Linux XDG_DATA_HOME takes precedence.
func userDataDir() (string, error) {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return xdg, nil
	}
	return os.UserConfigDir()
}

func userSubdir(name string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, name), nil
}
