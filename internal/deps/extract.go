// Package deps finds dependency declarations in Gradle build scripts, counts
// how often their namespaces are imported by module sources, and removes
// declarations from build script text.
//
// Build scripts are never parsed as Groovy or Kotlin. Declarations are
// recognised textually in both the Kotlin DSL form
//
//	implementation("group:artifact:version")
//
// and the Groovy form
//
//	implementation 'group:artifact:version'
//
// whichever file they appear in.
package deps

import (
	"regexp"
	"strings"
)

// Configurations lists the declaration verbs that are recognised.
var Configurations = []string{
	"implementation",
	"api",
	"testImplementation",
	"androidTestImplementation",
	"compileOnly",
	"runtimeOnly",
}

// UnknownVersion is recorded when a coordinate has no version segment.
const UnknownVersion = "unknown"

// Dependency is a single declaration found in a module's build file.
type Dependency struct {
	Name          string `json:"name" yaml:"name"`
	Version       string `json:"version" yaml:"version"`
	Configuration string `json:"configuration" yaml:"configuration"`
	Module        string `json:"module" yaml:"module"`
	ModulePath    string `json:"module_path,omitempty" yaml:"module_path,omitempty"` // module directory, set by the scanner
	Line          int    `json:"line" yaml:"line"`
	UsageCount    int    `json:"usage_count" yaml:"usage_count"`
	Excluded      bool   `json:"excluded" yaml:"excluded"`
}

// Unused reports whether the dependency can be removed.
func (d Dependency) Unused() bool {
	return !d.Excluded && d.UsageCount == 0
}

// Group returns the group segment of the coordinate.
func (d Dependency) Group() string {
	group, _, _ := strings.Cut(d.Name, ":")
	return group
}

// Coordinate returns name:version.
func (d Dependency) Coordinate() string {
	return d.Name + ":" + d.Version
}

// A declaration is a verb followed either by a parenthesised quoted string
// (Kotlin DSL, and the Groovy call form) or by whitespace and a quoted string
// (Groovy). \b keeps "implementation" from matching inside
// "testImplementation".
var declarationRe = regexp.MustCompile(
	`\b(` + strings.Join(Configurations, "|") + `)` +
		`(?:\s*\(\s*["']([^"'\n]+)["']\s*\)|[ \t]+["']([^"'\n]+)["'])`,
)

// Extract returns every dependency declared in content, in file order.
// Duplicates are kept as separate records. Coordinates with fewer than two
// segments are ignored.
func Extract(content, module string) []Dependency {
	var result []Dependency

	for _, m := range declarationRe.FindAllStringSubmatchIndex(content, -1) {
		verb := content[m[2]:m[3]]

		var coord string
		switch {
		case m[4] >= 0:
			coord = content[m[4]:m[5]]
		case m[6] >= 0:
			coord = content[m[6]:m[7]]
		default:
			continue
		}

		dep, ok := parseCoordinate(coord)
		if !ok {
			continue
		}
		dep.Configuration = verb
		dep.Module = module
		dep.Line = 1 + strings.Count(content[:m[0]], "\n")
		result = append(result, dep)
	}

	return result
}

func parseCoordinate(coord string) (Dependency, bool) {
	parts := strings.Split(strings.TrimSpace(coord), ":")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return Dependency{}, false
	}

	version := UnknownVersion
	if len(parts) > 2 && parts[2] != "" {
		version = parts[2]
	}

	return Dependency{
		Name:    parts[0] + ":" + parts[1],
		Version: version,
	}, true
}
