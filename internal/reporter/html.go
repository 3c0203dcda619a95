package reporter

import (
	"fmt"
	"html/template"
	"time"

	"github.com/fenilsonani/codeclean/internal/cleaner"
	"github.com/fenilsonani/codeclean/internal/deps"
	"github.com/fenilsonani/codeclean/internal/scanner"
	"github.com/fenilsonani/codeclean/pkg/utils"
)

type card struct {
	Label string
	Value string
}

type statRow struct {
	Label string
	Value string
	Class string
	Mark  string
}

type item struct {
	Path   string
	Detail string
}

type section struct {
	Title string
	Empty string
	Items []item
}

type comparison struct {
	Label  string
	Before string
	After  string
}

type page struct {
	Title        string
	ProjectPath  string
	GeneratedAt  string
	Cards        []card
	Stats        []statRow
	Sections     []section
	Dependencies []deps.Dependency
	DepsTitle    string
	Comparison   []comparison
	Warnings     []string
	Errors       []string
	BackupPath   string
}

var pageTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<style>
body { font-family: -apple-system, 'Segoe UI', Helvetica, Arial, sans-serif; margin: 0; padding: 20px; background: #f5f5f5; }
.container { max-width: 1200px; margin: 0 auto; background: white; padding: 30px; border-radius: 10px; box-shadow: 0 2px 10px rgba(0,0,0,0.1); }
h1 { color: #1f2937; text-align: center; }
h2 { color: #374151; border-bottom: 2px solid #7c3aed; padding-bottom: 8px; }
.summary { display: grid; grid-template-columns: repeat(auto-fit, minmax(220px, 1fr)); gap: 16px; margin-bottom: 24px; }
.card { background: #f3f4f6; padding: 16px; border-radius: 8px; text-align: center; }
.card .value { font-size: 2em; font-weight: bold; color: #7c3aed; }
.item { background: #f9fafb; margin: 4px 0; padding: 8px; border-left: 4px solid #7c3aed; }
.path { font-family: monospace; color: #1f2937; }
.detail { color: #6b7280; font-size: 0.9em; }
.error { color: #b91c1c; background: #fef2f2; padding: 8px; border-left: 4px solid #ef4444; margin: 4px 0; }
.warning { color: #b45309; }
.success { color: #047857; }
table { width: 100%; border-collapse: collapse; margin: 16px 0; }
th, td { padding: 10px; text-align: left; border-bottom: 1px solid #e5e7eb; }
th { background: #7c3aed; color: white; }
footer { text-align: center; margin-top: 30px; color: #6b7280; }
</style>
</head>
<body>
<div class="container">
<h1>{{.Title}}</h1>
<div class="summary">
{{- range .Cards}}
<div class="card"><h3>{{.Label}}</h3><div class="value">{{.Value}}</div></div>
{{- end}}
</div>
{{- if .Stats}}
<h2>Statistics</h2>
<table>
<tr><th>Item</th><th>Value</th><th>Status</th></tr>
{{- range .Stats}}
<tr><td>{{.Label}}</td><td>{{.Value}}</td><td class="{{.Class}}">{{.Mark}}</td></tr>
{{- end}}
</table>
{{- end}}
{{- if .Comparison}}
<h2>Before and after</h2>
<table>
<tr><th></th><th>Before</th><th>After</th></tr>
{{- range .Comparison}}
<tr><td>{{.Label}}</td><td>{{.Before}}</td><td>{{.After}}</td></tr>
{{- end}}
</table>
{{- end}}
{{- range .Sections}}
<h2>{{.Title}}</h2>
{{- if .Items}}
<div class="list">
{{- range .Items}}
<div class="item"><div class="path">{{.Path}}</div><div class="detail">{{.Detail}}</div></div>
{{- end}}
</div>
{{- else}}
<p>{{.Empty}}</p>
{{- end}}
{{- end}}
{{- if .DepsTitle}}
<h2>{{.DepsTitle}}</h2>
{{- if .Dependencies}}
<table>
<tr><th>Dependency</th><th>Version</th><th>Configuration</th><th>Module</th></tr>
{{- range .Dependencies}}
<tr><td>{{.Name}}</td><td>{{.Version}}</td><td>{{.Configuration}}</td><td>{{.Module}}</td></tr>
{{- end}}
</table>
{{- else}}
<p>No dependencies</p>
{{- end}}
{{- end}}
{{- if .Warnings}}
<h2>Warnings</h2>
{{- range .Warnings}}
<div class="item warning">{{.}}</div>
{{- end}}
{{- end}}
{{- if .Errors}}
<h2>Errors</h2>
{{- range .Errors}}
<div class="error">{{.}}</div>
{{- end}}
{{- end}}
{{- if .BackupPath}}
<h2>Backup</h2>
<p>Deleted files were copied to <span class="path">{{.BackupPath}}</span> before removal.</p>
{{- end}}
<footer>
<p>Generated {{.GeneratedAt}}</p>
<p>Project: {{.ProjectPath}}</p>
</footer>
</div>
</body>
</html>
`))

func (r *Reporter) renderHTML(p page) error {
	return pageTemplate.Execute(r.writer, p)
}

func (r *Reporter) entrySection(root, title, empty string, entries []scanner.Entry) section {
	s := section{Title: title, Empty: empty}
	for _, e := range entries {
		detail := fmt.Sprintf("Type: %s | Reason: %s", e.Category.Label(), e.Reason)
		if r.options.IncludeFileSizes {
			detail = fmt.Sprintf("Size: %s | ", utils.FormatBytes(e.Size)) + detail
		}
		if e.IsDir {
			detail += fmt.Sprintf(" | Files: %d", e.FileCount)
		}
		s.Items = append(s.Items, item{Path: relTo(root, e.Path), Detail: detail})
	}
	return s
}

func (r *Reporter) scanPage(result *scanner.ScanResult) page {
	stats := result.Stats
	p := page{
		Title:       "Project Scan Report",
		ProjectPath: result.ProjectPath,
		GeneratedAt: r.now().Format(time.DateTime),
		Cards: []card{
			{"Cleanable files", fmt.Sprint(stats.TotalFiles)},
			{"Cleanable directories", fmt.Sprint(stats.TotalDirectories)},
			{"Unused dependencies", fmt.Sprint(stats.UnusedDependencies)},
			{"Reclaimable", utils.FormatBytes(stats.TotalSize)},
		},
		Warnings: result.Warnings,
	}

	for _, c := range allCategories() {
		entries := result.Entries[c]
		if len(entries) == 0 {
			continue
		}
		p.Sections = append(p.Sections, r.entrySection(result.ProjectPath, c.Label(), "", entries))
	}

	if len(result.HighRisk) > 0 {
		p.Sections = append(p.Sections, r.entrySection(result.ProjectPath, "High-risk entries", "", result.HighRisk))
	}

	if r.options.IncludeDependencyTree {
		p.DepsTitle = "Unused dependencies"
		p.Dependencies = result.UnusedDependencies
	}

	return p
}

func (r *Reporter) cleanupPage(res *cleaner.CleanupResult) page {
	root := projectPath(res)

	title := "Project Cleanup Report"
	verb := "Deleted"
	if res.DryRun {
		title = "Project Cleanup Report (dry run)"
		verb = "Would delete"
	}

	failedClass, failedMark := "success", "✓"
	if res.Failed > 0 {
		failedClass, failedMark = "error", "✗"
	}

	p := page{
		Title:       title,
		ProjectPath: root,
		GeneratedAt: r.now().Format(time.DateTime),
		Cards: []card{
			{verb + " files", fmt.Sprint(len(res.DeletedFiles))},
			{verb + " directories", fmt.Sprint(len(res.DeletedDirectories))},
			{"Removed dependencies", fmt.Sprint(len(res.RemovedDependencies))},
			{"Freed", utils.FormatBytes(res.FreedBytes())},
		},
		Stats: []statRow{
			{"Succeeded", fmt.Sprint(res.Succeeded), "success", "✓"},
			{"Failed", fmt.Sprint(res.Failed), failedClass, failedMark},
			{"Skipped", fmt.Sprint(res.Skipped), "warning", "⚠"},
			{"Duration", fmt.Sprintf("%.2f s", res.Duration.Seconds()), "success", "⏱"},
			{"Final state", res.State.String(), "", ""},
		},
		Sections: []section{
			r.entrySection(root, verb+" files", "No files deleted", res.DeletedFiles),
			r.entrySection(root, verb+" directories", "No directories deleted", res.DeletedDirectories),
		},
		DepsTitle:    "Removed dependencies",
		Dependencies: res.RemovedDependencies,
		Warnings:     res.Warnings,
		Errors:       res.Errors,
		BackupPath:   res.BackupPath,
	}

	if r.options.IncludeBeforeAfterComparison && res.ScanResult != nil {
		stats := res.ScanResult.Stats
		removedFiles := len(res.DeletedFiles)
		removedDirs := len(res.DeletedDirectories)
		p.Comparison = []comparison{
			{"Cleanable files", fmt.Sprint(stats.TotalFiles), fmt.Sprint(stats.TotalFiles - removedFiles)},
			{"Cleanable directories", fmt.Sprint(stats.TotalDirectories), fmt.Sprint(stats.TotalDirectories - removedDirs)},
			{"Unused dependencies", fmt.Sprint(stats.UnusedDependencies), fmt.Sprint(stats.UnusedDependencies - len(res.RemovedDependencies))},
			{"Cleanable size", utils.FormatBytes(stats.TotalSize), utils.FormatBytes(stats.TotalSize - filesSize(res.DeletedFiles))},
		}
	}

	return p
}

func filesSize(entries []scanner.Entry) int64 {
	var total int64
	for _, e := range entries {
		total += e.Size
	}
	return total
}
