package backend

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// MvndBackend installs the Maven Daemon (mvnd) from its GitHub releases,
// adapted from the teacher's pkg/tools.MvndTool.
type MvndBackend struct{}

func (b *MvndBackend) Name() string { return "mvnd" }

func (b *MvndBackend) Install(ctx *InstallContext, version, destDir string) error {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("create install dir: %w", err)
	}
	url, ext := b.downloadURL(version)
	tmp, err := os.CreateTemp("", "rote-mvnd-*"+ext)
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := Download(ctx, DownloadSpec{URL: url, DestPath: tmpPath, MinSize: 1024}); err != nil {
		return fmt.Errorf("download mvnd %s: %w", version, err)
	}
	return ExtractAuto(tmpPath, destDir)
}

func (b *MvndBackend) Verify(destDir, version string) error {
	bin, err := b.BinDir(destDir, version)
	if err != nil {
		return err
	}
	exe := filepath.Join(bin, "mvnd")
	if Current().IsWindows() {
		exe += ".cmd"
	}
	out, err := exec.Command(exe, "--version").CombinedOutput()
	if err != nil {
		return fmt.Errorf("mvnd verify failed: %w\n%s", err, out)
	}
	if !strings.Contains(string(out), version) {
		return fmt.Errorf("mvnd version mismatch: expected %s, got %s", version, out)
	}
	return nil
}

func (b *MvndBackend) BinDir(destDir, version string) (string, error) {
	bin := filepath.Join(destDir, "bin")
	if _, err := os.Stat(bin); err == nil {
		return bin, nil
	}
	entries, err := os.ReadDir(destDir)
	if err != nil {
		return "", err
	}
	for _, e := range entries {
		if e.IsDir() && strings.HasPrefix(e.Name(), "mvnd-") {
			return filepath.Join(destDir, e.Name(), "bin"), nil
		}
	}
	return bin, nil
}

func (b *MvndBackend) ListVersions(ctx *InstallContext) ([]string, error) {
	return []string{"1.0.2", "1.0.1", "0.9.0"}, nil
}

func (b *MvndBackend) ToolInfo() Info {
	return Info{Description: "Maven Daemon (fast mvn via a warm JVM)", Homepage: "https://github.com/apache/maven-mvnd", BinaryName: "mvnd"}
}

func (b *MvndBackend) downloadURL(version string) (url, ext string) {
	p := Current()
	platform := "linux-amd64"
	ext = ".tar.gz"
	switch {
	case p.IsWindows():
		platform = "windows-amd64"
		ext = ".zip"
	case p.IsMacOS() && p.IsARM64():
		platform = "darwin-aarch64"
	case p.IsMacOS():
		platform = "darwin-amd64"
	case p.IsLinux() && p.IsARM64():
		platform = "linux-aarch64"
	}
	url = fmt.Sprintf("https://github.com/apache/maven-mvnd/releases/download/%[1]s/mvnd-%[1]s-%[2]s%[3]s", version, platform, ext)
	return
}
