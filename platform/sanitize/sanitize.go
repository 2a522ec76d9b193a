// Package sanitize cleans visitor-supplied text before it is stored or echoed
// back to the tracking snippet and chat widget.
// This is part of the platform layer and contains no business logic.
package sanitize

import (
	"regexp"
	"strings"
)

var (
	htmlTag    = regexp.MustCompile(`<[^>]*>`)
	whitespace = regexp.MustCompile(`\s+`)
	entities   = strings.NewReplacer(
		"&lt;", "<",
		"&gt;", ">",
		"&amp;", "&",
		"&quot;", `"`,
		"&#39;", "'",
		"&nbsp;", " ",
	)
)

// Text strips markup, decodes common entities and collapses whitespace runs
// into single spaces.
func Text(s string) string {
	out := htmlTag.ReplaceAllString(s, "")
	out = entities.Replace(out)
	// decoded entities can form new tags
	out = htmlTag.ReplaceAllString(out, "")
	return strings.TrimSpace(whitespace.ReplaceAllString(out, " "))
}

// Texts applies Text to every entry and drops the ones left empty.
func Texts(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if clean := Text(s); clean != "" {
			out = append(out, clean)
		}
	}
	return out
}
