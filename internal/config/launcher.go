package config

import (
	"fmt"
	"path/filepath"
	"time"

	"dario.cat/mergo"
	"github.com/kirsle/configdir"

	"llamalaunch/internal/common/fsutil"
)

// AppName names the per-user configuration directory.
const AppName = "llamalaunch"

// Defaults returns the launcher defaults applied beneath any file or flag values.
func Defaults() File {
	return File{
		UpstreamHost:        "127.0.0.1",
		ReadyTimeoutSeconds: 60,
		LogLevel:            "info",
		LogFormat:           "console",
		MaxBodyBytes:        1 << 20,
	}
}

// ReadyTimeout returns the runtime readiness deadline as a duration.
func (f File) ReadyTimeout() time.Duration {
	return time.Duration(f.ReadyTimeoutSeconds) * time.Second
}

// DefaultPath returns the per-user launcher file location
// (e.g. ~/.config/llamalaunch/config.yaml on Linux).
func DefaultPath() string {
	return filepath.Join(configdir.LocalConfig(AppName), "config.yaml")
}

// Merge layers the given sources over Defaults; later sources win for
// non-zero fields.
func Merge(sources ...File) (File, error) {
	out := Defaults()
	for _, src := range sources {
		if err := mergo.Merge(&out, src, mergo.WithOverride); err != nil {
			return File{}, fmt.Errorf("error merging configs: %w", err)
		}
	}
	return out, nil
}

// LoadLayered loads the launcher file at path (or DefaultPath when path is
// empty and that file exists) and merges overrides on top of it.
func LoadLayered(path string, overrides File) (File, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	p, err := fsutil.ExpandHome(path)
	if err != nil {
		return File{}, err
	}
	var fromFile File
	if explicit || fsutil.PathExists(p) {
		fromFile, err = Load(p)
		if err != nil {
			return File{}, fmt.Errorf("load config %s: %w", p, err)
		}
	}
	return Merge(fromFile, overrides)
}
