package backend

import (
	"regexp"
	"sort"
	"strings"
)

// URLReplacer applies enterprise-mirror URL rewrites, adapted from the
// teacher's pkg/tools.URLReplacer: same "regex:" prefix convention and
// first-match-wins semantics, but sourced from the merged
// layerconfig.EffectiveConfig.URLReplacements instead of a global-config-only
// file, so a project layer can add mirrors on top of a user's.
type URLReplacer struct {
	replacements map[string]string
}

func NewURLReplacer(replacements map[string]string) *URLReplacer {
	return &URLReplacer{replacements: replacements}
}

func (r *URLReplacer) Apply(original string) string {
	if len(r.replacements) == 0 {
		return original
	}

	patterns := make([]string, 0, len(r.replacements))
	for p := range r.replacements {
		patterns = append(patterns, p)
	}
	sort.Slice(patterns, func(i, j int) bool {
		iRegex := strings.HasPrefix(patterns[i], "regex:")
		jRegex := strings.HasPrefix(patterns[j], "regex:")
		if iRegex != jRegex {
			return !iRegex
		}
		return patterns[i] < patterns[j]
	})

	for _, pattern := range patterns {
		replacement := r.replacements[pattern]
		next := r.applyOne(original, pattern, replacement)
		if next != original {
			return next
		}
	}
	return original
}

func (r *URLReplacer) applyOne(url, pattern, replacement string) string {
	if strings.HasPrefix(pattern, "regex:") {
		re, err := regexp.Compile(strings.TrimPrefix(pattern, "regex:"))
		if err != nil {
			return url
		}
		return re.ReplaceAllString(url, replacement)
	}
	return strings.ReplaceAll(url, pattern, replacement)
}
