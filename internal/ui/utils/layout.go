package utils

import (
	"fmt"
	"strings"

	"github.com/fenilsonani/codeclean/internal/ui/styles"
)

const (
	// MinTerminalWidth is the minimum recommended terminal width
	MinTerminalWidth = 60
	// MinTerminalHeight is the minimum recommended terminal height
	MinTerminalHeight = 16
)

// TruncatePath shortens a slash-separated path to maxWidth, keeping the
// file name and as many trailing directories as fit
func TruncatePath(path string, maxWidth int) string {
	if len(path) <= maxWidth {
		return path
	}
	if maxWidth < 10 {
		return "..."
	}

	parts := strings.Split(path, "/")
	file := parts[len(parts)-1]
	if len(file)+4 > maxWidth {
		return "..." + file[len(file)-(maxWidth-3):]
	}

	kept := file
	for i := len(parts) - 2; i >= 0; i-- {
		next := parts[i] + "/" + kept
		if len(next)+4 > maxWidth {
			break
		}
		kept = next
	}
	return ".../" + kept
}

// TruncateString truncates a string to maxLen, adding ellipsis if needed
func TruncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen < 3 {
		return "..."
	}
	return s[:maxLen-3] + "..."
}

// IsTerminalTooSmall checks if the terminal is below minimum recommended size
func IsTerminalTooSmall(width, height int) bool {
	return width < MinTerminalWidth || height < MinTerminalHeight
}

// GetSizeWarningBanner returns a warning banner if terminal is too small.
// Unknown sizes (zero) produce no banner.
func GetSizeWarningBanner(width, height int) string {
	if width == 0 || height == 0 || !IsTerminalTooSmall(width, height) {
		return ""
	}

	warning := fmt.Sprintf("⚠️  Terminal too small! Recommended: %dx%d or larger", MinTerminalWidth, MinTerminalHeight)
	warning += styles.DimStyle.Render(" (current: ") +
		styles.WarningStyle.Render(fmt.Sprintf("%dx%d", width, height)) +
		styles.DimStyle.Render(")")

	return styles.WarningStyle.Render(warning) + "\n\n"
}
