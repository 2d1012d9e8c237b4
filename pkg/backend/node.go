package backend

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// NodeBackend installs Node.js from https://nodejs.org/dist/, adapted from
// the teacher's pkg/tools.NodeTool.
type NodeBackend struct{}

func (b *NodeBackend) Name() string { return "node" }

func (b *NodeBackend) Install(ctx *InstallContext, version, destDir string) error {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("create install dir: %w", err)
	}
	url := b.downloadURL(version)
	tmp, err := os.CreateTemp("", "rote-node-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	tmp.Close()
	os.Remove(tmpPath)
	if strings.HasSuffix(url, ".zip") {
		tmpPath += ".zip"
	} else {
		tmpPath += ".tar.xz"
	}
	defer os.Remove(tmpPath)

	if err := Download(ctx, DownloadSpec{URL: url, DestPath: tmpPath, MinSize: 1024}); err != nil {
		return fmt.Errorf("download node %s: %w", version, err)
	}
	return ExtractAuto(tmpPath, destDir)
}

func (b *NodeBackend) Verify(destDir, version string) error {
	bin, err := b.BinDir(destDir, version)
	if err != nil {
		return err
	}
	exe := filepath.Join(bin, "node"+Current().ExeSuffix())
	out, err := exec.Command(exe, "--version").CombinedOutput()
	if err != nil {
		return fmt.Errorf("node verify failed: %w\n%s", err, out)
	}
	if !strings.Contains(string(out), version) {
		return fmt.Errorf("node version mismatch: expected %s, got %s", version, out)
	}
	return nil
}

func (b *NodeBackend) BinDir(destDir, version string) (string, error) {
	bin := filepath.Join(destDir, "bin")
	if info, err := os.Stat(bin); err == nil && info.IsDir() {
		return bin, nil
	}
	// Node's Windows distribution puts binaries at the archive root.
	return destDir, nil
}

func (b *NodeBackend) ListVersions(ctx *InstallContext) ([]string, error) {
	return fetchNodeIndexVersions(ctx)
}

func (b *NodeBackend) ToolInfo() Info {
	return Info{Description: "Node.js JavaScript runtime", Homepage: "https://nodejs.org", BinaryName: "node"}
}

func (b *NodeBackend) downloadURL(version string) string {
	p := Current()
	platform := ""
	switch p.OS {
	case "linux":
		if p.IsARM64() {
			platform = "linux-arm64"
		} else {
			platform = "linux-x64"
		}
	case "darwin":
		if p.IsARM64() {
			platform = "darwin-arm64"
		} else {
			platform = "darwin-x64"
		}
	case "windows":
		platform = "win-x64"
	}
	if p.IsWindows() {
		return fmt.Sprintf("https://nodejs.org/dist/v%[1]s/node-v%[1]s-%[2]s.zip", version, platform)
	}
	return fmt.Sprintf("https://nodejs.org/dist/v%[1]s/node-v%[1]s-%[2]s.tar.xz", version, platform)
}

// fetchNodeIndexVersions fetches https://nodejs.org/dist/index.json, the
// same endpoint the teacher's registry.fetchNodeIndex used.
func fetchNodeIndexVersions(ctx *InstallContext) ([]string, error) {
	client := ctx.HTTPClient
	if client == nil {
		client = defaultHTTPClient()
	}
	resp, err := client.Get("https://nodejs.org/dist/index.json")
	if err != nil {
		return nil, fmt.Errorf("fetch node index: %w", err)
	}
	defer resp.Body.Close()
	var entries []struct {
		Version string `json:"version"`
	}
	if err := decodeJSON(resp, &entries); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, strings.TrimPrefix(e.Version, "v"))
	}
	return out, nil
}
