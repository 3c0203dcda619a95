package models

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/fenilsonani/codeclean/internal/progress"
	"github.com/fenilsonani/codeclean/internal/scanner"
	"github.com/fenilsonani/codeclean/internal/ui/styles"
	uiutils "github.com/fenilsonani/codeclean/internal/ui/utils"
	"github.com/fenilsonani/codeclean/pkg/utils"
)

// ScanFunc runs a scan, reporting progress to sink
type ScanFunc func(ctx context.Context, sink progress.Sink) (*scanner.ScanResult, error)

// ScanEventMsg carries one scanner progress event into the program
type ScanEventMsg progress.Event

// ScanCompleteMsg is sent when the scan returns
type ScanCompleteMsg struct {
	Result *scanner.ScanResult
	Err    error
}

// ScanModel shows a spinner with live scan progress
type ScanModel struct {
	ctx      context.Context
	cancel   context.CancelFunc
	run      ScanFunc
	reporter *progress.Reporter
	events   <-chan progress.Event

	spinner   spinner.Model
	startTime time.Time
	current   string
	visited   int
	warnings  int

	done   bool
	result *scanner.ScanResult
	err    error
}

// NewScanModel creates a scan view that runs fn when started
func NewScanModel(ctx context.Context, fn ScanFunc) *ScanModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.SelectedStyle

	ctx, cancel := context.WithCancel(ctx)
	reporter := progress.NewReporter()

	return &ScanModel{
		ctx:       ctx,
		cancel:    cancel,
		run:       fn,
		reporter:  reporter,
		events:    reporter.Subscribe(),
		spinner:   s,
		startTime: time.Now(),
	}
}

// Result returns the scan outcome once the program has exited
func (m *ScanModel) Result() (*scanner.ScanResult, error) {
	if !m.done {
		return nil, context.Canceled
	}
	return m.result, m.err
}

// Init starts the spinner, the scan and the event pump
func (m *ScanModel) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.performScan,
		m.waitForEvent,
	)
}

func (m *ScanModel) performScan() tea.Msg {
	result, err := m.run(m.ctx, m.reporter)
	m.reporter.Unsubscribe(m.events)
	return ScanCompleteMsg{Result: result, Err: err}
}

func (m *ScanModel) waitForEvent() tea.Msg {
	e, ok := <-m.events
	if !ok {
		return nil
	}
	return ScanEventMsg(e)
}

// Update handles messages
func (m *ScanModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case ScanEventMsg:
		switch msg.Kind {
		case progress.KindProgress:
			m.current = msg.Path
			if msg.Done > m.visited {
				m.visited = msg.Done
			}
		case progress.KindWarning:
			m.warnings++
		}
		return m, m.waitForEvent

	case ScanCompleteMsg:
		m.done = true
		m.result = msg.Result
		m.err = msg.Err
		m.cancel()
		return m, tea.Quit

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" || msg.String() == "q" {
			m.cancel()
		}
	}

	return m, nil
}

// View renders the scan view
func (m *ScanModel) View() string {
	var b strings.Builder

	if m.done {
		if m.err != nil {
			b.WriteString(styles.ErrorStyle.Render("✗ Scan failed: " + m.err.Error()))
		} else if m.result != nil {
			b.WriteString(styles.SuccessStyle.Render("✓ Scan complete"))
			b.WriteString(fmt.Sprintf(" %d files (%s), %d directories, %d unused dependencies\n",
				m.result.CleanableCount(),
				styles.FileSizeStyle.Render(utils.FormatBytes(m.result.CleanableSize())),
				len(m.result.Directories()),
				len(m.result.UnusedDependencies)))
		}
		return b.String()
	}

	b.WriteString(m.spinner.View())
	b.WriteString(" Scanning project... ")
	b.WriteString(styles.DimStyle.Render(fmt.Sprintf("(%s, %d paths)", time.Since(m.startTime).Round(time.Second), m.visited)))
	b.WriteString("\n")

	if m.current != "" {
		b.WriteString(styles.DimStyle.Render("Current: "))
		b.WriteString(styles.FilePathStyle.Render(uiutils.TruncatePath(m.current, 60)))
		b.WriteString("\n")
	}
	if m.warnings > 0 {
		b.WriteString(styles.WarningStyle.Render(fmt.Sprintf("%d warnings", m.warnings)))
		b.WriteString("\n")
	}

	b.WriteString(styles.HelpStyle.Render("Press ctrl+c to cancel"))
	b.WriteString("\n")
	return b.String()
}
