// Package ui renders dashboard frames and status lines for the terminal.
package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

var (
	// Color definitions for terminal output
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgCyan)
)

// PrintSuccess prints a success message
func PrintSuccess(format string, args ...interface{}) {
	FprintSuccess(os.Stdout, format, args...)
}

// PrintError prints an error message
func PrintError(format string, args ...interface{}) {
	FprintError(os.Stderr, format, args...)
}

// PrintWarning prints a warning message
func PrintWarning(format string, args ...interface{}) {
	FprintWarning(os.Stdout, format, args...)
}

// PrintInfo prints an info message
func PrintInfo(format string, args ...interface{}) {
	FprintInfo(os.Stdout, format, args...)
}

// FprintSuccess writes a success line to w.
func FprintSuccess(w io.Writer, format string, args ...interface{}) {
	successColor.Fprintf(w, "✓ %s\n", fmt.Sprintf(format, args...))
}

// FprintError writes an error line to w.
func FprintError(w io.Writer, format string, args ...interface{}) {
	errorColor.Fprintf(w, "✗ %s\n", fmt.Sprintf(format, args...))
}

// FprintWarning writes a warning line to w.
func FprintWarning(w io.Writer, format string, args ...interface{}) {
	warningColor.Fprintf(w, "⚠ %s\n", fmt.Sprintf(format, args...))
}

// FprintInfo writes an info line to w.
func FprintInfo(w io.Writer, format string, args ...interface{}) {
	infoColor.Fprintf(w, "ℹ %s\n", fmt.Sprintf(format, args...))
}

// ClearScreen clears the terminal screen
func ClearScreen() {
	fmt.Print("\033[H\033[2J")
}
