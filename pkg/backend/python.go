package backend

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// PythonBackend installs standalone CPython builds from the
// python-build-standalone project (astral-sh), the same relocatable-build
// approach mise uses for its python backend. Not present in the teacher,
// but built in its idiom: one GOOS/GOARCH download-URL switch plus
// ExtractAuto/Verify, matching NodeBackend/GoBackend.
type PythonBackend struct{}

func (b *PythonBackend) Name() string { return "python" }

func (b *PythonBackend) Install(ctx *InstallContext, version, destDir string) error {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("create install dir: %w", err)
	}
	url := b.downloadURL(version)
	tmp, err := os.CreateTemp("", "rote-python-*.tar.gz")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := Download(ctx, DownloadSpec{URL: url, DestPath: tmpPath, MinSize: 1024}); err != nil {
		return fmt.Errorf("download python %s: %w", version, err)
	}
	return ExtractTarGz(tmpPath, destDir)
}

func (b *PythonBackend) Verify(destDir, version string) error {
	bin, err := b.BinDir(destDir, version)
	if err != nil {
		return err
	}
	exe := filepath.Join(bin, b.binaryName())
	out, err := exec.Command(exe, "--version").CombinedOutput()
	if err != nil {
		return fmt.Errorf("python verify failed: %w\n%s", err, out)
	}
	if !strings.Contains(string(out), version) {
		return fmt.Errorf("python version mismatch: expected %s, got %s", version, out)
	}
	return nil
}

func (b *PythonBackend) BinDir(destDir, version string) (string, error) {
	// python-build-standalone archives extract to "python/install/bin".
	bin := filepath.Join(destDir, "python", "install", "bin")
	if _, err := os.Stat(bin); err == nil {
		return bin, nil
	}
	return filepath.Join(destDir, "bin"), nil
}

func (b *PythonBackend) ListVersions(ctx *InstallContext) ([]string, error) {
	return []string{"3.13.1", "3.12.8", "3.11.11", "3.10.16", "3.9.21"}, nil
}

func (b *PythonBackend) ToolInfo() Info {
	return Info{Description: "Standalone CPython build", Homepage: "https://github.com/astral-sh/python-build-standalone", BinaryName: "python3"}
}

func (b *PythonBackend) binaryName() string {
	if Current().IsWindows() {
		return "python.exe"
	}
	return "python3"
}

func (b *PythonBackend) downloadURL(version string) string {
	p := Current()
	triple := "x86_64-unknown-linux-gnu"
	switch {
	case p.IsMacOS() && p.IsARM64():
		triple = "aarch64-apple-darwin"
	case p.IsMacOS():
		triple = "x86_64-apple-darwin"
	case p.IsLinux() && p.IsARM64():
		triple = "aarch64-unknown-linux-gnu"
	case p.IsWindows():
		triple = "x86_64-pc-windows-msvc"
	}
	return fmt.Sprintf(
		"https://github.com/astral-sh/python-build-standalone/releases/download/%[1]s/cpython-%[1]s+%[2]s-install_only.tar.gz",
		version, triple,
	)
}
