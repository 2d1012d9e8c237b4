package backend

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// detectSingleTopLevelDir and ExtractZip/ExtractTarGz/ExtractTarXz are
// adapted from the teacher's pkg/tools/extraction.go: same zip-slip guard,
// same single-top-level-directory stripping (most tool archives wrap their
// whole payload in "apache-maven-3.9.6/" or "node-v20.11.0-linux-x64/"), but
// merged into one file per archive format instead of duplicated per tool
// the way node.go/go.go/maven.go each carried their own copy.
func detectSingleTopLevelDirZip(files []*zip.File) string {
	var top string
	for _, f := range files {
		if f.Name == "" {
			continue
		}
		first := strings.SplitN(f.Name, "/", 2)[0]
		if first == "" {
			return ""
		}
		if top == "" {
			top = first
		} else if top != first {
			return ""
		}
	}
	if top == "" {
		return ""
	}
	return top + "/"
}

func detectSingleTopLevelDirTar(headers []*tar.Header) string {
	var top string
	for _, h := range headers {
		if h.Name == "" {
			continue
		}
		first := strings.SplitN(h.Name, "/", 2)[0]
		if first == "" {
			return ""
		}
		if top == "" {
			top = first
		} else if top != first {
			return ""
		}
	}
	if top == "" {
		return ""
	}
	return top + "/"
}

func safeJoin(dest, name string) (string, error) {
	target := filepath.Join(dest, name)
	if !strings.HasPrefix(target, filepath.Clean(dest)+string(os.PathSeparator)) && target != filepath.Clean(dest) {
		return "", fmt.Errorf("refusing to extract outside destination: %s", name)
	}
	return target, nil
}

// ExtractZip extracts a zip archive into dest, stripping a single shared
// top-level directory if the archive has one.
func ExtractZip(src, dest string) error {
	r, err := zip.OpenReader(src)
	if err != nil {
		return fmt.Errorf("open zip: %w", err)
	}
	defer r.Close()

	if err := os.MkdirAll(dest, 0o755); err != nil {
		return err
	}
	strip := detectSingleTopLevelDirZip(r.File)

	for _, f := range r.File {
		rel := f.Name
		if strip != "" {
			if !strings.HasPrefix(rel, strip) {
				continue
			}
			rel = strings.TrimPrefix(rel, strip)
			if rel == "" {
				continue
			}
		}
		target, err := safeJoin(dest, rel)
		if err != nil {
			return err
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, f.Mode()); err != nil {
				return err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		rc, err := f.Open()
		if err != nil {
			return err
		}
		mode := f.Mode()
		if mode&0o200 == 0 {
			mode |= 0o200
		}
		out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
		if err != nil {
			rc.Close()
			return err
		}
		_, err = io.Copy(out, rc)
		rc.Close()
		out.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

// ExtractTarGz extracts a gzip-compressed tar archive into dest.
func ExtractTarGz(src, dest string) error {
	headers, err := readTarHeaders(src)
	if err != nil {
		return err
	}
	strip := detectSingleTopLevelDirTar(headers)

	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()
	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("open gzip: %w", err)
	}
	defer gz.Close()

	if err := os.MkdirAll(dest, 0o755); err != nil {
		return err
	}
	tr := tar.NewReader(gz)
	for {
		h, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if err := extractTarEntry(tr, h, dest, strip); err != nil {
			return err
		}
	}
	return nil
}

func readTarHeaders(src string) ([]*tar.Header, error) {
	f, err := os.Open(src)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("open gzip: %w", err)
	}
	defer gz.Close()
	tr := tar.NewReader(gz)
	var headers []*tar.Header
	for {
		h, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		headers = append(headers, h)
	}
	return headers, nil
}

func extractTarEntry(tr *tar.Reader, h *tar.Header, dest, strip string) error {
	rel := h.Name
	if strip != "" {
		if !strings.HasPrefix(rel, strip) {
			return nil
		}
		rel = strings.TrimPrefix(rel, strip)
		if rel == "" {
			return nil
		}
	}
	target, err := safeJoin(dest, rel)
	if err != nil {
		return err
	}
	switch h.Typeflag {
	case tar.TypeDir:
		return os.MkdirAll(target, os.FileMode(h.Mode))
	case tar.TypeReg:
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		mode := os.FileMode(h.Mode)
		if mode&0o200 == 0 {
			mode |= 0o200
		}
		out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
		if err != nil {
			return err
		}
		defer out.Close()
		_, err = io.Copy(out, tr)
		return err
	case tar.TypeSymlink:
		if _, err := os.Lstat(target); err == nil {
			os.RemoveAll(target)
		}
		return os.Symlink(h.Linkname, target)
	default:
		return nil // skip device/fifo entries
	}
}

// ExtractTarXz shells out to the system `tar` binary, matching the
// teacher's approach in node.go/extraction.go -- Go's standard library has
// no xz decompressor, and no example repo in the corpus imports one.
func ExtractTarXz(src, dest string) error {
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return err
	}
	cmd := exec.Command("tar", "-xJf", src, "-C", dest)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("tar -xJf failed: %w", err)
	}
	// tar cannot strip a top-level directory only when there is exactly
	// one, so that stripping is done here after extraction.
	entries, err := os.ReadDir(dest)
	if err != nil || len(entries) != 1 || !entries[0].IsDir() {
		return err
	}
	top := filepath.Join(dest, entries[0].Name())
	children, err := os.ReadDir(top)
	if err != nil {
		return err
	}
	for _, c := range children {
		if err := os.Rename(filepath.Join(top, c.Name()), filepath.Join(dest, c.Name())); err != nil {
			return err
		}
	}
	return os.Remove(top)
}

// ExtractAuto picks the extractor by filename suffix.
func ExtractAuto(src, dest string) error {
	lower := strings.ToLower(src)
	switch {
	case strings.HasSuffix(lower, ".zip"):
		return ExtractZip(src, dest)
	case strings.HasSuffix(lower, ".tar.xz"):
		return ExtractTarXz(src, dest)
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		return ExtractTarGz(src, dest)
	default:
		return fmt.Errorf("unsupported archive format: %s", src)
	}
}
