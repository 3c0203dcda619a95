package deps

import (
	"fmt"
	"regexp"
)

// Rewriter removes dependency declarations from build script text.
type Rewriter interface {
	RemoveDeclaration(text string, dep Dependency) string
}

// Dialect describes how a quoted coordinate follows the declaration verb.
// Format receives the quoted coordinate expression and returns the regular
// expression for everything after the verb.
type Dialect struct {
	Name   string
	Format func(coordinate string) string
}

// DefaultDialects covers the Kotlin DSL call form (either quote style) and the
// Groovy command form.
var DefaultDialects = []Dialect{
	{
		Name:   "call",
		Format: func(c string) string { return `\s*\(\s*` + c + `\s*\)` },
	},
	{
		Name:   "command",
		Format: func(c string) string { return `[ \t]+` + c },
	},
}

// LineRewriter deletes whole lines that consist of a single matching
// declaration, optionally followed by a semicolon or a line comment.
// Everything else in the text is preserved byte for byte. A declaration
// sharing its line with other code (an exclusion block, a one-line
// dependencies block) is left in place.
type LineRewriter struct {
	dialects []Dialect
}

// NewRewriter creates a LineRewriter over the given dialects; none selects
// DefaultDialects.
func NewRewriter(dialects ...Dialect) *LineRewriter {
	if len(dialects) == 0 {
		dialects = DefaultDialects
	}
	return &LineRewriter{dialects: dialects}
}

// RemoveDeclaration removes every line declaring dep with its configuration
// (or with any recognised configuration when dep has none). Versions are not
// compared: "g:a" removes "g:a", "g:a:1.0" and "g:a:$v" but not "g:ab".
func (r *LineRewriter) RemoveDeclaration(text string, dep Dependency) string {
	verbs := Configurations
	if dep.Configuration != "" {
		verbs = []string{dep.Configuration}
	}

	coordinate := `["']` + regexp.QuoteMeta(dep.Name) + `(?::[^"'\n]*)?["']`

	for _, verb := range verbs {
		for _, d := range r.dialects {
			re := regexp.MustCompile(fmt.Sprintf(
				`(?m)^[ \t]*\b%s%s[ \t]*;?[ \t]*(?://[^\n]*)?(?:\r?\n|\z)`,
				regexp.QuoteMeta(verb), d.Format(coordinate),
			))
			text = re.ReplaceAllLiteralString(text, "")
		}
	}
	return text
}
