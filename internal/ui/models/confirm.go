package models

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fenilsonani/codeclean/internal/scanner"
	"github.com/fenilsonani/codeclean/internal/ui/styles"
	uiutils "github.com/fenilsonani/codeclean/internal/ui/utils"
	"github.com/fenilsonani/codeclean/pkg/utils"
)

// RiskLevel represents the risk level of a cleanup run
type RiskLevel int

const (
	RiskLow RiskLevel = iota
	RiskMedium
	RiskHigh
)

// AssessRisk grades a scan for the confirmation prompt
func AssessRisk(result *scanner.ScanResult) RiskLevel {
	count := result.CleanableCount()

	// HIGH: flagged entries or a very large run
	if len(result.HighRisk) > 0 || count > 500 {
		return RiskHigh
	}

	// MEDIUM: build files get rewritten, whole directories go, or many files
	if len(result.UnusedDependencies) > 0 || len(result.Directories()) > 0 || count >= 50 {
		return RiskMedium
	}

	return RiskLow
}

const (
	buttonYes = iota
	buttonCancel
)

// ConfirmModel asks whether to go ahead with a cleanup
type ConfirmModel struct {
	result    *scanner.ScanResult
	dryRun    bool
	risk      RiskLevel
	cursor    int
	confirmed bool
	width     int
	height    int
}

// NewConfirmModel creates the prompt; high-risk runs default to Cancel
func NewConfirmModel(result *scanner.ScanResult, dryRun bool) *ConfirmModel {
	risk := AssessRisk(result)
	cursor := buttonYes
	if risk == RiskHigh {
		cursor = buttonCancel
	}

	return &ConfirmModel{
		result: result,
		dryRun: dryRun,
		risk:   risk,
		cursor: cursor,
	}
}

// Confirmed reports the answer once the program has exited
func (m *ConfirmModel) Confirmed() bool {
	return m.confirmed
}

// Risk returns the assessed risk level
func (m *ConfirmModel) Risk() RiskLevel {
	return m.risk
}

// Init initializes the confirm view
func (m *ConfirmModel) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m *ConfirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "left", "h":
			m.cursor = buttonYes
		case "right", "l":
			m.cursor = buttonCancel
		case "tab":
			m.cursor = (m.cursor + 1) % 2
		case "enter":
			m.confirmed = m.cursor == buttonYes
			return m, tea.Quit
		case "y", "Y":
			m.confirmed = true
			return m, tea.Quit
		case "n", "N", "q", "esc", "ctrl+c":
			m.confirmed = false
			return m, tea.Quit
		}
	}

	return m, nil
}

// View renders the confirmation view
func (m *ConfirmModel) View() string {
	var b strings.Builder

	b.WriteString(uiutils.GetSizeWarningBanner(m.width, m.height))

	title := "⚠️  Confirm Cleanup"
	if m.dryRun {
		title = "Confirm Dry Run"
	}
	b.WriteString(styles.TitleStyle.Render(title))
	b.WriteString("\n\n")

	files := m.result.Files()
	b.WriteString(styles.BoldStyle.Render(fmt.Sprintf("About to remove %d files (%s), %d directories and %d dependency declarations",
		len(files), utils.FormatBytes(m.result.CleanableSize()), len(m.result.Directories()), len(m.result.UnusedDependencies))))
	b.WriteString("\n\n")

	b.WriteString(styles.SubtitleStyle.Render("Breakdown:"))
	b.WriteString("\n")
	var breakdown []string
	for _, c := range append(append([]scanner.Category{}, scanner.FileCategories...), scanner.DirectoryCategories...) {
		entries := m.result.Entries[c]
		if len(entries) == 0 {
			continue
		}
		var size int64
		for _, e := range entries {
			size += e.Size
		}
		breakdown = append(breakdown, fmt.Sprintf("%-20s %4d (%s)",
			styles.CategoryStyle.Render(c.Label()+":"),
			len(entries),
			styles.FileSizeStyle.Render(utils.FormatBytes(size))))
	}
	if len(breakdown) > 0 {
		b.WriteString(styles.PanelStyle.Render(strings.Join(breakdown, "\n")))
		b.WriteString("\n")
	}

	if len(m.result.UnusedDependencies) > 0 {
		b.WriteString("\n")
		b.WriteString(styles.SubtitleStyle.Render("Dependencies:"))
		b.WriteString("\n")
		for _, d := range m.result.UnusedDependencies {
			b.WriteString(fmt.Sprintf("  %s %s\n", uiutils.TruncateString(d.Name, 60), styles.DimStyle.Render("("+d.Module+")")))
		}
	}

	b.WriteString("\n")
	riskText, render, icon := m.riskDisplay()
	b.WriteString(fmt.Sprintf("Risk Level: %s %s\n", icon, render(riskText)))

	if m.risk == RiskHigh {
		b.WriteString("\n")
		b.WriteString(styles.ErrorStyle.Render(fmt.Sprintf("⚠️  %d entries need manual review", len(m.result.HighRisk))))
		b.WriteString("\n")
		for _, e := range m.result.HighRisk {
			b.WriteString("  " + styles.FilePathStyle.Render(uiutils.TruncatePath(relPath(m.result.ProjectPath, e.Path), 70)) + "\n")
		}
	}

	if !m.dryRun {
		b.WriteString("\n")
		b.WriteString(styles.WarningStyle.Render("Files are backed up first; restoring them is manual."))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	yesBtn := "[ Yes, clean ]"
	cancelBtn := "[ Cancel ]"
	switch m.cursor {
	case buttonYes:
		yesBtn = styles.HighlightStyle.Render(yesBtn)
	case buttonCancel:
		cancelBtn = styles.HighlightStyle.Render(cancelBtn)
	}
	b.WriteString(yesBtn + "  " + cancelBtn)
	b.WriteString("\n\n")

	helpText := "y:confirm  n:cancel  ←/→:navigate  enter:select"
	if m.width > 0 && m.width < 60 {
		helpText = "y:yes  n:no  ←/→"
	}
	b.WriteString(styles.HelpStyle.Render(helpText))
	b.WriteString("\n")

	return b.String()
}

func (m *ConfirmModel) riskDisplay() (string, func(...string) string, string) {
	switch m.risk {
	case RiskHigh:
		return "HIGH (flagged entries or a very large run)", styles.ErrorStyle.Render, "🔴"
	case RiskMedium:
		return "MEDIUM (directories or build files change)", styles.WarningStyle.Render, "⚠️"
	default:
		return "LOW (leftover files only)", styles.SuccessStyle.Render, "✓"
	}
}

func relPath(root, path string) string {
	if rel, ok := strings.CutPrefix(path, root); ok {
		return strings.TrimLeft(strings.ReplaceAll(rel, "\\", "/"), "/")
	}
	return path
}
