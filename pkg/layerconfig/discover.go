package layerconfig

import (
	"os"
	"path/filepath"
	"runtime"
)

// Discover returns the layers in merge order: the system layer, the user
// layer, then every project layer found walking from startDir up to the
// filesystem root (one per directory, highest directory first so a nearer
// file naturally outranks a farther ancestor once merged), and, last, an
// explicit local override file -- matching spec component A's four-tier
// precedence (system < user < project < local).
//
// This generalizes the teacher's findProjectRoot (cmd/root.go), which
// stopped at the first ".mvx" directory and read a single file there --
// rote instead merges every ancestor's layer, the way direnv/mise climb a
// tree of .envrc/.tool-versions files.
func Discover(startDir string) ([]*Layer, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	var projectDirs []string
	dir := abs
	for {
		projectDirs = append(projectDirs, dir)
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	var layers []*Layer
	if sysFile := FindLayerFile(SystemConfigDir()); sysFile != "" {
		l, err := ParseFile(sysFile, TierSystem)
		if err == nil {
			layers = append(layers, l)
		}
	}

	if userFile := FindLayerFile(UserConfigDir()); userFile != "" {
		l, err := ParseFile(userFile, TierUser)
		if err == nil {
			layers = append(layers, l)
		}
	}

	for i := len(projectDirs) - 1; i >= 0; i-- {
		d := projectDirs[i]
		f := FindLayerFile(d)
		if f == "" {
			continue
		}
		l, err := ParseFile(f, TierProject)
		if err != nil {
			return nil, err
		}
		layers = append(layers, l)
	}

	if localFile := filepath.Join(abs, ".rote.local.toml"); fileExists(localFile) {
		l, err := ParseFile(localFile, TierLocal)
		if err != nil {
			return nil, err
		}
		layers = append(layers, l)
	}

	return layers, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// UserConfigDir returns the per-user config directory, honoring
// ROTE_CONFIG_DIR the same way the teacher's global.go honored a settable
// override for testability.
func UserConfigDir() string {
	if d := os.Getenv("ROTE_CONFIG_DIR"); d != "" {
		return d
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	if runtime.GOOS == "windows" {
		return filepath.Join(home, "AppData", "Roaming", "rote")
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "rote")
	}
	return filepath.Join(home, ".config", "rote")
}

// SystemConfigDir returns the machine-wide config directory (e.g. for
// org-managed defaults baked into an image), honoring ROTE_SYSTEM_CONFIG_DIR.
func SystemConfigDir() string {
	if d := os.Getenv("ROTE_SYSTEM_CONFIG_DIR"); d != "" {
		return d
	}
	if runtime.GOOS == "windows" {
		return `C:\ProgramData\rote`
	}
	return "/etc/rote"
}
