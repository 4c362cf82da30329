package common

import (
	"fmt"
	"strings"
)

const (
	// Default separator widths
	DefaultWidth = 80
	WideWidth    = 100
)

// ANSI color helpers for console output.
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorCyan   = "\033[36m"
	ColorGray   = "\033[90m"
)

// PrintSeparator prints a separator line with the specified character and width
func PrintSeparator(char string, width int) {
	fmt.Println(strings.Repeat(char, width))
}

// PrintHeader prints a formatted header with title and separators
func PrintHeader(title string, width int) {
	fmt.Println("\n" + strings.Repeat("=", width))
	fmt.Println(title)
	PrintSeparator("=", width)
}

// PrintFooter prints a formatted footer with message and separators
func PrintFooter(message string, width int) {
	fmt.Println("\n" + strings.Repeat("=", width))
	fmt.Println(message)
	fmt.Println(strings.Repeat("=", width) + "\n")
}

// PrintBoxSeparator prints a box-drawing separator line (for sub-sections)
func PrintBoxSeparator(width int) {
	fmt.Println("├" + strings.Repeat("─", width))
}

// BoxPrefix returns the appropriate box-drawing prefix for list items
func BoxPrefix(isLast bool) string {
	if isLast {
		return "└  "
	}
	return "│  "
}

// StatusColor picks a console color for a license status.
func StatusColor(status string) string {
	switch status {
	case "active":
		return ColorGreen
	case "expired", "cancelled":
		return ColorRed
	case "suspended":
		return ColorYellow
	default:
		return ColorGray
	}
}

// LogTypeColor picks a console color for an EA action-log category.
func LogTypeColor(logType string) string {
	switch logType {
	case "ERROR":
		return ColorRed
	case "WARNING":
		return ColorYellow
	case "OPEN_BUY", "CLOSE_BUY", "BREAKEVEN":
		return ColorGreen
	case "OPEN_SELL", "CLOSE_SELL", "RECOVERY":
		return ColorCyan
	case "CONNECT", "DISCONNECT", "MODE":
		return ColorGray
	default:
		return ColorReset
	}
}
