package backend

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

// JavaBackend installs OpenJDK builds via the Foojay Disco API
// (https://api.foojay.io/disco/v3.0), adapted from the teacher's
// pkg/tools.JavaTool + pkg/tools.ToolRegistry's Disco client.
type JavaBackend struct {
	Distribution string // e.g. "temurin"; defaults to "temurin" when empty
}

const defaultJavaDistribution = "temurin"

func (b *JavaBackend) distribution() string {
	if b.Distribution != "" {
		return b.Distribution
	}
	return defaultJavaDistribution
}

func (b *JavaBackend) Name() string { return "java" }

func (b *JavaBackend) Install(ctx *InstallContext, version, destDir string) error {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("create install dir: %w", err)
	}
	url, ext, err := b.resolveDiscoPackageURL(ctx, version)
	if err != nil {
		return fmt.Errorf("resolve java %s download: %w", version, err)
	}
	tmp, err := os.CreateTemp("", "rote-java-*"+ext)
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := Download(ctx, DownloadSpec{URL: url, DestPath: tmpPath, MinSize: 1024}); err != nil {
		return fmt.Errorf("download java %s: %w", version, err)
	}
	return ExtractAuto(tmpPath, destDir)
}

func (b *JavaBackend) Verify(destDir, version string) error {
	bin, err := b.BinDir(destDir, version)
	if err != nil {
		return err
	}
	exe := filepath.Join(bin, "java"+Current().ExeSuffix())
	out, err := exec.Command(exe, "-version").CombinedOutput()
	if err != nil {
		return fmt.Errorf("java verify failed: %w\n%s", err, out)
	}
	return nil
}

// BinDir walks the extracted tree for a JDK home, since Disco archives
// nest under distribution-specific directory names (e.g.
// "jdk-21.0.5+11/", "temurin-21-jdk/") rather than one fixed pattern --
// the same reason the teacher's MavenTool walked its tree instead of
// assuming a directory name.
func (b *JavaBackend) BinDir(destDir, version string) (string, error) {
	javaExe := "java" + Current().ExeSuffix()
	var found string
	filepath.Walk(destDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || found != "" {
			return nil
		}
		if !info.IsDir() && info.Name() == javaExe && filepath.Base(filepath.Dir(path)) == "bin" {
			found = filepath.Dir(path)
			return filepath.SkipDir
		}
		return nil
	})
	if found == "" {
		return "", fmt.Errorf("java binary not found under %s", destDir)
	}
	return found, nil
}

func (b *JavaBackend) ListVersions(ctx *InstallContext) ([]string, error) {
	client := ctx.HTTPClient
	if client == nil {
		client = defaultHTTPClient()
	}
	url := fmt.Sprintf("https://api.foojay.io/disco/v3.0/major_versions?distribution=%s", b.distribution())
	resp, err := client.Get(url)
	if err != nil {
		return b.fallbackVersions(), nil
	}
	defer resp.Body.Close()
	var body struct {
		Result []struct {
			MajorVersion int `json:"major_version"`
		} `json:"result"`
	}
	if err := decodeJSON(resp, &body); err != nil {
		return b.fallbackVersions(), nil
	}
	out := make([]string, 0, len(body.Result))
	for _, r := range body.Result {
		out = append(out, strconv.Itoa(r.MajorVersion))
	}
	if len(out) == 0 {
		return b.fallbackVersions(), nil
	}
	return out, nil
}

func (b *JavaBackend) fallbackVersions() []string {
	return []string{"21", "17", "11", "8"}
}

func (b *JavaBackend) ToolInfo() Info {
	return Info{Description: fmt.Sprintf("OpenJDK (%s distribution)", b.distribution()), Homepage: "https://foojay.io", BinaryName: "java"}
}

// resolveDiscoPackageURL queries Disco's /packages endpoint once and takes
// the download link from the response's pkg_download_redirect field; no
// second request for an ephemeral_id's direct_download_uri is made.
func (b *JavaBackend) resolveDiscoPackageURL(ctx *InstallContext, version string) (url, ext string, err error) {
	client := ctx.HTTPClient
	if client == nil {
		client = defaultHTTPClient()
	}
	osName := runtime.GOOS
	arch := runtime.GOARCH
	if arch == "amd64" {
		arch = "x64"
	}
	archiveType := "tar.gz"
	ext = ".tar.gz"
	if osName == "windows" {
		archiveType = "zip"
		ext = ".zip"
	}

	q := fmt.Sprintf(
		"https://api.foojay.io/disco/v3.0/packages?version=%s&distribution=%s&operating_system=%s&architecture=%s&archive_type=%s&package_type=jdk&latest=available",
		version, b.distribution(), osName, arch, archiveType,
	)
	resp, err := client.Get(q)
	if err != nil {
		return "", "", err
	}
	defer resp.Body.Close()
	var body struct {
		Result []struct {
			Links struct {
				PkgDownloadRedirect string `json:"pkg_download_redirect"`
			} `json:"links"`
		} `json:"result"`
	}
	if err := decodeJSON(resp, &body); err != nil {
		return "", "", err
	}
	if len(body.Result) == 0 {
		return "", "", fmt.Errorf("no Disco package found for java %s (%s/%s)", version, osName, arch)
	}
	return body.Result[0].Links.PkgDownloadRedirect, ext, nil
}

// DetectSystemHome implements backend.SystemDetector for `version = "system"`
// requests, adapted from the teacher's JavaSystemDetector.
func (b *JavaBackend) DetectSystemHome() (string, error) {
	home := os.Getenv("JAVA_HOME")
	if home == "" {
		return "", fmt.Errorf("JAVA_HOME not set")
	}
	exe := filepath.Join(home, "bin", "java"+Current().ExeSuffix())
	if _, err := os.Stat(exe); err != nil {
		return "", fmt.Errorf("no java executable at %s", exe)
	}
	return home, nil
}

func (b *JavaBackend) DetectSystemVersion(home string) (string, error) {
	exe := filepath.Join(home, "bin", "java"+Current().ExeSuffix())
	out, err := exec.Command(exe, "-version").CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("run java -version: %w", err)
	}
	line := strings.SplitN(string(out), "\n", 2)[0]
	start := strings.Index(line, "\"")
	if start < 0 {
		return "", fmt.Errorf("could not parse java -version output: %s", line)
	}
	end := strings.Index(line[start+1:], "\"")
	if end < 0 {
		return "", fmt.Errorf("could not parse java -version output: %s", line)
	}
	raw := line[start+1 : start+1+end]
	parts := strings.Split(raw, ".")
	if strings.HasPrefix(raw, "1.") && len(parts) >= 2 {
		return parts[1], nil // old format: "1.8.0_391" -> "8"
	}
	return parts[0], nil // new format: "21.0.1" -> "21"
}
