package backend

import (
	"fmt"
	"runtime"
)

// Platform describes the current OS/architecture pair, adapted from the
// teacher's pkg/tools.PlatformInfo/PlatformMapper, collapsed from a mapper
// object into plain functions since none of the backends need per-call
// mapping-table injection beyond what GOOS/GOARCH already expose.
type Platform struct {
	OS   string
	Arch string
}

func Current() Platform {
	return Platform{OS: runtime.GOOS, Arch: runtime.GOARCH}
}

func (p Platform) String() string {
	return fmt.Sprintf("%s-%s", p.OS, p.Arch)
}

func (p Platform) IsWindows() bool { return p.OS == "windows" }
func (p Platform) IsMacOS() bool   { return p.OS == "darwin" }
func (p Platform) IsLinux() bool   { return p.OS == "linux" }
func (p Platform) IsARM64() bool   { return p.Arch == "arm64" }
func (p Platform) IsAMD64() bool   { return p.Arch == "amd64" }

// ExeSuffix returns ".exe" on Windows, "" elsewhere -- used by every
// backend's BinDir/Verify to locate the right executable name.
func (p Platform) ExeSuffix() string {
	if p.IsWindows() {
		return ".exe"
	}
	return ""
}
