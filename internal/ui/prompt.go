// Package ui holds the terminal front end: the confirmation prompt, the scan
// spinner and the live cleanup progress line.
package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"github.com/fenilsonani/codeclean/internal/scanner"
	"github.com/fenilsonani/codeclean/internal/ui/models"
)

// IsTerminal reports whether f is attached to a terminal
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// IsInteractive reports whether both ends of a prompt are terminals
func IsInteractive(in io.Reader, out io.Writer) bool {
	inFile, ok := in.(*os.File)
	if !ok {
		return false
	}
	outFile, ok := out.(*os.File)
	if !ok {
		return false
	}
	return IsTerminal(inFile) && IsTerminal(outFile)
}

// PromptYesNo asks question on w and reads one line from r. An empty answer
// or end of input yields def.
func PromptYesNo(r io.Reader, w io.Writer, question string, def bool) (bool, error) {
	hint := "[y/N]"
	if def {
		hint = "[Y/n]"
	}

	reader := bufio.NewReader(r)
	for {
		fmt.Fprintf(w, "%s %s: ", question, hint)

		line, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return false, fmt.Errorf("failed to read answer: %w", err)
		}

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "":
			if err == io.EOF {
				fmt.Fprintln(w)
			}
			return def, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}

		if err == io.EOF {
			return def, nil
		}
		fmt.Fprintln(w, "Please answer y or n.")
	}
}

// ConfirmCleanup asks the user to approve a cleanup of result. On a terminal
// it runs the interactive prompt, otherwise it falls back to a line prompt.
func ConfirmCleanup(ctx context.Context, result *scanner.ScanResult, dryRun bool, in io.Reader, out io.Writer) (bool, error) {
	if !IsInteractive(in, out) {
		question := fmt.Sprintf("Clean %d files, %d directories and %d dependencies?",
			result.CleanableCount(), len(result.Directories()), len(result.UnusedDependencies))
		return PromptYesNo(in, out, question, false)
	}

	m := models.NewConfirmModel(result, dryRun)
	p := tea.NewProgram(m, tea.WithContext(ctx), tea.WithInput(in), tea.WithOutput(out))
	final, err := p.Run()
	if err != nil {
		return false, fmt.Errorf("error running confirmation prompt: %w", err)
	}
	return final.(*models.ConfirmModel).Confirmed(), nil
}

// RunScan runs fn behind a spinner when out is a terminal, and directly
// otherwise
func RunScan(ctx context.Context, out io.Writer, fn models.ScanFunc) (*scanner.ScanResult, error) {
	outFile, ok := out.(*os.File)
	if !ok || !IsTerminal(outFile) {
		return fn(ctx, nil)
	}

	m := models.NewScanModel(ctx, fn)
	p := tea.NewProgram(m, tea.WithContext(ctx), tea.WithOutput(out))
	if _, err := p.Run(); err != nil {
		return nil, fmt.Errorf("error running scan view: %w", err)
	}
	return m.Result()
}
