package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
)

var (
	in  = bufio.NewReader(os.Stdin)
	out io.Writer = color.Output

	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
	successColor = color.New(color.FgGreen)
	infoColor    = color.New(color.FgBlue)
)

// SetIO replaces stdin and stdout, mostly for tests.
func SetIO(r io.Reader, w io.Writer) {
	in = bufio.NewReader(r)
	out = w
}

// PrintWarning displays a warning message with consistent formatting
func PrintWarning(message string) {
	warnColor.Fprintln(out, "\nWarning:")
	warnColor.Fprintln(out, message)
}

// PrintError displays an error message with consistent formatting
func PrintError(message string) {
	errorColor.Fprintf(out, "\nError: %s\n", message)
}

// PrintSuccess displays a success message with consistent formatting
func PrintSuccess(message string) {
	successColor.Fprintf(out, "\n%s\n", message)
}

// PrintInfo displays an info message with consistent formatting
func PrintInfo(message string) {
	infoColor.Fprint(out, message)
}

func PrintList(title string, items []string) {
	successColor.Fprintf(out, "\n%s\n", title)
	for _, item := range items {
		successColor.Fprintf(out, "- %s\n", item)
	}
}

// ReadString reads a line from stdin with trimming
func ReadString(prompt string) string {
	PrintInfo(prompt)
	input, _ := in.ReadString('\n')
	return strings.TrimSpace(input)
}

// ReadInt reads an integer from stdin with validation
func ReadInt(prompt string, min, max int) (int, error) {
	input := ReadString(prompt)
	value, err := strconv.Atoi(input)
	if err != nil {
		return 0, fmt.Errorf("invalid number: %s", input)
	}
	if value < min || value > max {
		return 0, fmt.Errorf("value must be between %d and %d", min, max)
	}
	return value, nil
}

// ReadFloat reads a number, returning def on an empty line.
func ReadFloat(prompt string, def, min, max float64) (float64, error) {
	input := ReadString(prompt)
	if input == "" {
		return def, nil
	}
	value, err := strconv.ParseFloat(strings.Replace(input, ",", ".", 1), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number: %s", input)
	}
	if value < min || value > max {
		return 0, fmt.Errorf("value must be between %.1f and %.1f", min, max)
	}
	return value, nil
}

// SelectYear lists the years and returns the chosen one.
func SelectYear(prompt string, years []string) (string, error) {
	if len(years) == 0 {
		return "", fmt.Errorf("no year available")
	}
	for i, y := range years {
		successColor.Fprintf(out, "%d. %s\n", i+1, y)
	}
	choice, err := ReadInt(prompt, 1, len(years))
	if err != nil {
		return "", err
	}
	return years[choice-1], nil
}
