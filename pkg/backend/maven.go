package backend

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// MavenBackend installs Apache Maven from archive.apache.org/repo.maven.apache.org,
// adapted from the teacher's pkg/tools.MavenTool.
type MavenBackend struct{}

func (b *MavenBackend) Name() string { return "maven" }

func (b *MavenBackend) Install(ctx *InstallContext, version, destDir string) error {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("create install dir: %w", err)
	}
	tmp, err := os.CreateTemp("", "rote-maven-*.zip")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := Download(ctx, DownloadSpec{URL: b.downloadURL(version), DestPath: tmpPath, MinSize: 1024}); err != nil {
		return fmt.Errorf("download maven %s: %w", version, err)
	}
	return ExtractZip(tmpPath, destDir)
}

func (b *MavenBackend) Verify(destDir, version string) error {
	bin, err := b.BinDir(destDir, version)
	if err != nil {
		return err
	}
	exe := filepath.Join(bin, "mvn")
	if Current().IsWindows() {
		exe += ".cmd"
	}
	out, err := exec.Command(exe, "--version").CombinedOutput()
	if err != nil {
		return fmt.Errorf("maven verify failed: %w\n%s", err, out)
	}
	if !strings.Contains(string(out), version) {
		return fmt.Errorf("maven version mismatch: expected %s, got %s", version, out)
	}
	return nil
}

func (b *MavenBackend) BinDir(destDir, version string) (string, error) {
	// With ExtractZip's single-top-level-dir stripping, "apache-maven-X.Y.Z/"
	// collapses away and binaries land directly under destDir/bin.
	bin := filepath.Join(destDir, "bin")
	if _, err := os.Stat(bin); err == nil {
		return bin, nil
	}
	entries, err := os.ReadDir(destDir)
	if err != nil {
		return "", err
	}
	for _, e := range entries {
		if e.IsDir() && strings.HasPrefix(e.Name(), "apache-maven-") {
			return filepath.Join(destDir, e.Name(), "bin"), nil
		}
	}
	return bin, nil
}

func (b *MavenBackend) ListVersions(ctx *InstallContext) ([]string, error) {
	// Apache Maven's archive directory listing has no machine-readable
	// index; the teacher's registry.go scraped HTML for href="X.Y.Z/". We
	// keep a maintained fallback list the way getFallbackMavenVersions did,
	// since scraping belongs in the registry layer, not a single backend.
	return []string{"3.9.9", "3.9.6", "3.8.8", "4.0.0"}, nil
}

func (b *MavenBackend) ToolInfo() Info {
	return Info{Description: "Apache Maven build tool", Homepage: "https://maven.apache.org", BinaryName: "mvn"}
}

func (b *MavenBackend) downloadURL(version string) string {
	if strings.HasPrefix(version, "4.") {
		return fmt.Sprintf("https://repo.maven.apache.org/maven2/org/apache/maven/apache-maven/%[1]s/apache-maven-%[1]s-bin.zip", version)
	}
	return fmt.Sprintf("https://archive.apache.org/dist/maven/maven-3/%[1]s/binaries/apache-maven-%[1]s-bin.zip", version)
}
