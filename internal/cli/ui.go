package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// stdout receives user-facing status lines. Tests swap it for a buffer.
var stdout io.Writer = os.Stdout

// =============================================================================
// Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // primary
	colorGreen  = lipgloss.Color("35")  // success
	colorYellow = lipgloss.Color("220") // warnings
	colorBlue   = lipgloss.Color("75")  // commands
	colorWhite  = lipgloss.Color("255") // values
	colorGray   = lipgloss.Color("245") // secondary text
	colorDim    = lipgloss.Color("240") // muted text
)

var (
	// StyleTitle for headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleDim for secondary text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for paths and values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleSuccess and StyleWarning color status text.
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)

	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	styleCommand     = lipgloss.NewStyle().Foreground(colorBlue)
	styleKey         = lipgloss.NewStyle().Foreground(colorGray).Width(12)
)

// status icons
var (
	iconSuccess = lipgloss.NewStyle().Foreground(colorGreen).Render("✓")
	iconWarning = lipgloss.NewStyle().Foreground(colorYellow).Render("!")
	iconInfo    = lipgloss.NewStyle().Foreground(colorGray).Render("›")
	iconArrow   = StyleDim.Render("→")
)

// =============================================================================
// Status lines
// =============================================================================

func printSuccess(format string, args ...any) {
	fmt.Fprintln(stdout, iconSuccess+" "+fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	fmt.Fprintln(stdout, iconWarning+" "+StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	fmt.Fprintln(stdout, iconInfo+" "+fmt.Sprintf(format, args...))
}

// printDetail prints an indented secondary line.
func printDetail(format string, args ...any) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a generated file.
func printFile(path string) {
	fmt.Fprintln(stdout, "  "+iconArrow+" "+StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Fprintln(stdout, styleKey.Render(key)+" "+StyleValue.Render(value))
}

// printStats prints summary figures on one line, separated by dots.
func printStats(parts ...string) {
	line := " "
	for i, part := range parts {
		if i > 0 {
			line += StyleDim.Render(" ·")
		}
		line += " " + StyleDim.Render(part)
	}
	fmt.Fprintln(stdout, line)
}

// printNextStep suggests a follow-up command.
func printNextStep(description, cmd string) {
	fmt.Fprintln(stdout, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

func printNewline() {
	fmt.Fprintln(stdout)
}
