// Package config loads process-level settings (PIPELINE_ROOT,
// PIPELINE_STORAGE_ROOT) via viper/env, matching the teacher's
// configfile/viper split, and watches the lock-override file with fsnotify.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Environment variable names, per §6.
const (
	EnvPipelineRoot    = "PIPELINE_ROOT"
	EnvStorageRoot     = "PIPELINE_STORAGE_ROOT"
	EnvLockedVersions  = "LBATTR_locked_asset_versions"
)

// Settings are the process-level paths the registry needs.
type Settings struct {
	// Root is the directory holding the SQLite database file.
	Root string
	// StorageRoot is the root under which render/, geo/, source/ are
	// exposed to external collaborators; the core never writes there
	// itself (source-file staging is out of scope).
	StorageRoot string
}

// DBPath is the conventional location of the embedded database file under
// Root.
func (s Settings) DBPath() string {
	return filepath.Join(s.Root, "pipeline.db")
}

// Load reads PIPELINE_ROOT/PIPELINE_STORAGE_ROOT from the environment,
// falling back to .pipeline/config.yaml if present, and finally to the
// current directory.
func Load() (Settings, error) {
	v := viper.New()
	v.SetEnvPrefix("PIPELINE")
	v.AutomaticEnv()
	v.SetDefault("root", ".")
	v.SetDefault("storage_root", ".")

	if path := ".pipeline/config.yaml"; fileExists(path) {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Settings{}, fmt.Errorf("read %s: %w", path, err)
		}
	}

	s := Settings{
		Root:        v.GetString("root"),
		StorageRoot: v.GetString("storage_root"),
	}
	if s.Root == "" {
		s.Root = "."
	}
	if s.StorageRoot == "" {
		s.StorageRoot = s.Root
	}
	return s, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
