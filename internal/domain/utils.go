package domain

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Path replacement scopes. Endpoint rules rewrite the paths emitted into the
// document; group rules rewrite only the derived group labels.
const (
	ReplaceInEndpoints = "endpoints"
	ReplaceInGroups    = "groups"
	ReplaceInAll       = "all"
)

// PathReplacement is one rewrite rule applied to route paths.
type PathReplacement struct {
	Pattern     string `json:"searchString"`
	Replacement string `json:"replacement"`
	ReplaceIn   string `json:"replaceIn,omitempty"`
}

// ApplyPathReplacements rewrites path with every rule whose scope matches.
// Patterns are regular expressions; invalid patterns are skipped.
func ApplyPathReplacements(path string, rules []PathReplacement, scope string) string {
	for _, rule := range rules {
		in := rule.ReplaceIn
		if in == "" {
			in = ReplaceInAll
		}
		if in != scope && in != ReplaceInAll {
			continue
		}
		re, err := regexp.Compile(rule.Pattern)
		if err != nil {
			continue
		}
		path = re.ReplaceAllString(path, rule.Replacement)
	}
	return path
}

// StripBasePath removes the configured base path prefix from path. The root
// base path strips nothing, and the prefix only matches on a segment
// boundary.
func StripBasePath(path, basePath string) string {
	if basePath == "" || basePath == "/" {
		return path
	}
	if !strings.HasPrefix(path, basePath) {
		return path
	}
	stripped := strings.TrimPrefix(path, basePath)
	if stripped == "" {
		return "/"
	}
	if !strings.HasPrefix(stripped, "/") {
		return path
	}
	return stripped
}

// TemplateRequiresParam reports whether the path template contains a
// mandatory placeholder for name, i.e. "{name}" followed by a separator or
// the end of the template. An optional placeholder "{name?}" does not match.
func TemplateRequiresParam(template, name string) bool {
	re, err := regexp.Compile(`\{` + regexp.QuoteMeta(name) + `\}(/|$)`)
	if err != nil {
		return false
	}
	return re.MatchString(template)
}

// StripOptionalMarkers rewrites optional placeholders "{name?}" into plain
// placeholders, which is the only form the output grammar knows.
func StripOptionalMarkers(path string) string {
	return strings.ReplaceAll(path, "?}", "}")
}

var titleCaser = cases.Title(language.English, cases.NoLower)

// GenerateOperationID derives a deterministic identifier from an HTTP method
// and a path template: lowercased method followed by the title-cased path
// segments with placeholder braces and separators removed.
//
// The derivation is a pure function of its inputs; uniqueness across a route
// set is enforced by the caller.
func GenerateOperationID(method, path string) string {
	var b strings.Builder
	b.WriteString(strings.ToLower(method))

	for _, segment := range strings.Split(path, "/") {
		segment = strings.TrimSuffix(strings.TrimPrefix(segment, "{"), "}")
		segment = strings.TrimSuffix(segment, "?")
		for _, word := range splitWords(segment) {
			b.WriteString(titleCaser.String(word))
		}
	}

	return b.String()
}

// splitWords breaks a path segment on non-alphanumeric characters.
func splitWords(segment string) []string {
	return strings.FieldsFunc(segment, func(r rune) bool {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return false
		}
		return true
	})
}

// PreferredFirst reorders values so that preferred (if present) comes first,
// preserving the relative order of the rest.
func PreferredFirst(values []string, preferred string) []string {
	if preferred == "" {
		return values
	}
	out := make([]string, 0, len(values))
	found := false
	for _, v := range values {
		if v == preferred && !found {
			found = true
			continue
		}
		out = append(out, v)
	}
	if !found {
		return values
	}
	return append([]string{preferred}, out...)
}

// DeriveGroups returns the group labels for a path: the first prefixSize
// non-empty segments, after group-scope replacement rules are applied.
// Placeholder segments never contribute to a group.
func DeriveGroups(path string, prefixSize int, rules []PathReplacement) []string {
	if prefixSize < 1 {
		prefixSize = 1
	}
	grouped := ApplyPathReplacements(path, rules, ReplaceInGroups)

	var parts []string
	for _, segment := range strings.Split(grouped, "/") {
		if segment == "" || strings.HasPrefix(segment, "{") {
			continue
		}
		parts = append(parts, segment)
		if len(parts) == prefixSize {
			break
		}
	}
	if len(parts) == 0 {
		return nil
	}
	return []string{strings.Join(parts, "/")}
}
