package version

import (
	"fmt"
	"strings"
)

// RequestKind enumerates the version request grammar a config layer can
// write for a tool, matching spec component D's VersionRequest model.
type RequestKind string

const (
	KindLiteral RequestKind = "literal" // "21.0.5"
	KindPrefix  RequestKind = "prefix"  // "21", "3.11"
	KindLatest  RequestKind = "latest"  // "latest"
	KindSystem  RequestKind = "system"  // "system"
	KindPath    RequestKind = "path" // "path:/opt/tools/jdk-21"
	KindRef     RequestKind = "ref"  // "ref:v1.2.3-rc1" (VCS-style backends, e.g. rust toolchains)
)

// KindAlias is assigned conceptually to any raw string present as a key in
// a tool's [alias.*] table; ParseRequest itself never returns it, because
// Resolver.Resolve always calls ResolveAlias against the raw string first
// and only classifies what that resolves to.
const KindAlias RequestKind = "alias"

// Request is a parsed VersionRequest, still unresolved against any catalog.
type Request struct {
	Kind RequestKind
	Raw  string
	Path string // populated for KindPath
	Ref  string // populated for "ref:" requests
}

// ParseRequest classifies a raw request string from config without
// consulting aliases or a backend's version catalog -- that happens in
// Resolver.Resolve, which needs the alias table to detect KindAlias.
func ParseRequest(raw string) Request {
	trimmed := strings.TrimSpace(raw)
	switch {
	case trimmed == "" || trimmed == "latest":
		return Request{Kind: KindLatest, Raw: trimmed}
	case trimmed == "system":
		return Request{Kind: KindSystem, Raw: trimmed}
	case strings.HasPrefix(trimmed, "path:"):
		return Request{Kind: KindPath, Raw: trimmed, Path: strings.TrimPrefix(trimmed, "path:")}
	case strings.HasPrefix(trimmed, "ref:"):
		return Request{Kind: KindRef, Raw: trimmed, Ref: strings.TrimPrefix(trimmed, "ref:")}
	default:
		spec, err := ParseSpec(trimmed)
		if err == nil && spec.Constraint == "exact" {
			return Request{Kind: KindLiteral, Raw: trimmed}
		}
		return Request{Kind: KindPrefix, Raw: trimmed}
	}
}

// maxAliasDepth bounds alias chain resolution so a cyclical or
// self-referential [alias.*] table fails fast instead of looping forever.
const maxAliasDepth = 8

// ResolveAlias follows an alias table (tool -> alias name -> target request
// string) up to maxAliasDepth hops, returning the first non-alias request
// string it reaches.
func ResolveAlias(aliases map[string]string, start string) (string, error) {
	seen := make(map[string]bool, maxAliasDepth)
	cur := start
	for i := 0; i < maxAliasDepth; i++ {
		target, ok := aliases[cur]
		if !ok {
			return cur, nil
		}
		if seen[cur] {
			return "", fmt.Errorf("alias cycle detected at %q", cur)
		}
		seen[cur] = true
		cur = target
	}
	return "", fmt.Errorf("alias chain exceeded %d hops starting at %q", maxAliasDepth, start)
}
