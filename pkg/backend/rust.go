package backend

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// RustBackend installs the Rust toolchain via rustup's standalone
// init binary, run in an unattended, no-PATH-modification mode and pointed
// at destDir as its install root. Not present in the teacher, but grounded
// in the same shell-out-to-an-external-installer idiom the teacher used for
// GoTool's system tar fallback.
type RustBackend struct{}

func (b *RustBackend) Name() string { return "rust" }

func (b *RustBackend) Install(ctx *InstallContext, version, destDir string) error {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("create install dir: %w", err)
	}
	initURL := b.rustupInitURL()
	tmp, err := os.CreateTemp("", "rote-rustup-init-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := Download(ctx, DownloadSpec{URL: initURL, DestPath: tmpPath, MinSize: 1024}); err != nil {
		return fmt.Errorf("download rustup-init: %w", err)
	}
	if !Current().IsWindows() {
		if err := os.Chmod(tmpPath, 0o755); err != nil {
			return err
		}
	}

	cmd := exec.Command(tmpPath,
		"-y", "--no-modify-path",
		"--default-toolchain", version,
		"--profile", "minimal",
	)
	cmd.Env = append(os.Environ(),
		"RUSTUP_HOME="+filepath.Join(destDir, "rustup"),
		"CARGO_HOME="+filepath.Join(destDir, "cargo"),
	)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("rustup-init failed: %w", err)
	}
	return nil
}

func (b *RustBackend) Verify(destDir, version string) error {
	bin, err := b.BinDir(destDir, version)
	if err != nil {
		return err
	}
	exe := filepath.Join(bin, "rustc"+Current().ExeSuffix())
	out, err := exec.Command(exe, "--version").CombinedOutput()
	if err != nil {
		return fmt.Errorf("rustc verify failed: %w\n%s", err, out)
	}
	if !strings.Contains(string(out), version) {
		return fmt.Errorf("rust version mismatch: expected %s, got %s", version, out)
	}
	return nil
}

func (b *RustBackend) BinDir(destDir, version string) (string, error) {
	return filepath.Join(destDir, "cargo", "bin"), nil
}

func (b *RustBackend) ListVersions(ctx *InstallContext) ([]string, error) {
	return []string{"stable", "beta", "nightly", "1.83.0", "1.82.0", "1.81.0"}, nil
}

func (b *RustBackend) ToolInfo() Info {
	return Info{Description: "Rust toolchain via rustup", Homepage: "https://rust-lang.org", BinaryName: "rustc"}
}

func (b *RustBackend) rustupInitURL() string {
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
	name := "rustup-init"
	if p.IsWindows() {
		name = "rustup-init.exe"
	}
	return fmt.Sprintf("https://static.rust-lang.org/rustup/dist/%s/%s", triple, name)
}
