package backend

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// GoBackend installs the Go toolchain from https://go.dev/dl/, adapted from
// the teacher's pkg/tools.GoTool.
type GoBackend struct{}

func (b *GoBackend) Name() string { return "go" }

func (b *GoBackend) Install(ctx *InstallContext, version, destDir string) error {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("create install dir: %w", err)
	}
	url := b.downloadURL(version)
	ext := ".tar.gz"
	if Current().IsWindows() {
		ext = ".zip"
	}
	tmp, err := os.CreateTemp("", "rote-go-*"+ext)
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	// Go distributions are 50-200MB; fail fast on a truncated/HTML error page.
	if err := Download(ctx, DownloadSpec{URL: url, DestPath: tmpPath, MinSize: 10 * 1024 * 1024}); err != nil {
		return fmt.Errorf("download go %s: %w", version, err)
	}
	return ExtractAuto(tmpPath, destDir)
}

func (b *GoBackend) Verify(destDir, version string) error {
	bin, err := b.BinDir(destDir, version)
	if err != nil {
		return err
	}
	exe := filepath.Join(bin, "go"+Current().ExeSuffix())
	out, err := exec.Command(exe, "version").CombinedOutput()
	if err != nil {
		return fmt.Errorf("go verify failed: %w\n%s", err, out)
	}
	if !strings.Contains(string(out), version) {
		return fmt.Errorf("go version mismatch: expected %s, got %s", version, out)
	}
	return nil
}

func (b *GoBackend) BinDir(destDir, version string) (string, error) {
	// go.dev archives extract to a "go/" subdirectory.
	goRoot := filepath.Join(destDir, "go")
	if _, err := os.Stat(goRoot); err == nil {
		return filepath.Join(goRoot, "bin"), nil
	}
	return filepath.Join(destDir, "bin"), nil
}

func (b *GoBackend) ListVersions(ctx *InstallContext) ([]string, error) {
	client := ctx.HTTPClient
	if client == nil {
		client = defaultHTTPClient()
	}
	resp, err := client.Get("https://go.dev/dl/?mode=json&include=all")
	if err != nil {
		return nil, fmt.Errorf("fetch go release index: %w", err)
	}
	defer resp.Body.Close()
	var releases []struct {
		Version string `json:"version"`
	}
	if err := decodeJSON(resp, &releases); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(releases))
	for _, r := range releases {
		out = append(out, strings.TrimPrefix(r.Version, "go"))
	}
	return out, nil
}

func (b *GoBackend) ToolInfo() Info {
	return Info{Description: "Go programming language toolchain", Homepage: "https://go.dev", BinaryName: "go"}
}

func (b *GoBackend) downloadURL(version string) string {
	p := Current()
	arch := p.Arch
	var filename string
	if p.IsWindows() {
		filename = fmt.Sprintf("go%s.%s-%s.zip", version, p.OS, arch)
	} else {
		filename = fmt.Sprintf("go%s.%s-%s.tar.gz", version, p.OS, arch)
	}
	return fmt.Sprintf("https://go.dev/dl/%s", filename)
}
