package prompter

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jeffreymutethia/Seattle-Pulse-sub000/pkg/output"
	"golang.org/x/term"
)

var reader = bufio.NewReader(os.Stdin)

// SetInput replaces stdin as the prompt source; nil restores stdin
func SetInput(r io.Reader) {
	if r == nil {
		r = os.Stdin
	}
	reader = bufio.NewReader(r)
}

func readLine() (string, error) {
	line, err := reader.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// PromptString prompts user for a string input
func PromptString(label string) (string, error) {
	fmt.Fprint(output.Writer(), label)
	line, err := readLine()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// PromptRequired repeats the prompt until the answer is not blank
func PromptRequired(label string) (string, error) {
	for {
		s, err := PromptString(label)
		if err != nil {
			return "", err
		}
		if s != "" {
			return s, nil
		}
		output.PrintWarning("a value is required")
	}
}

// PromptPassword prompts for a password without echo when stdin is a
// terminal
func PromptPassword(label string) (string, error) {
	fmt.Fprint(output.Writer(), label)

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		pw, err := term.ReadPassword(fd)
		fmt.Fprintln(output.Writer())
		if err != nil {
			return "", err
		}
		return string(pw), nil
	}
	return readLine()
}

// PromptConfirm prompts user for yes/no confirmation
func PromptConfirm(label string) (bool, error) {
	fmt.Fprint(output.Writer(), label+" (y/n) ")
	line, err := readLine()
	if err != nil {
		return false, err
	}

	response := strings.TrimSpace(strings.ToLower(line))
	return response == "y" || response == "yes", nil
}

// PromptSelect prompts user to select from options and returns the index
func PromptSelect(label string, options []string) (int, error) {
	w := output.Writer()
	fmt.Fprintln(w, label)
	for i, opt := range options {
		fmt.Fprintf(w, "%d) %s\n", i+1, opt)
	}

	fmt.Fprint(w, "Select option: ")
	line, err := readLine()
	if err != nil {
		return -1, err
	}

	selection, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		return -1, fmt.Errorf("invalid selection: %w", err)
	}
	if selection < 1 || selection > len(options) {
		return -1, fmt.Errorf("invalid selection")
	}
	return selection - 1, nil
}

// PromptMultilineString reads lines until an empty one or maxLines
func PromptMultilineString(label string, maxLines int) (string, error) {
	fmt.Fprintf(output.Writer(), "%s (empty line to finish):\n", label)

	var lines []string
	for i := 0; i < maxLines; i++ {
		line, err := readLine()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		if line == "" {
			break
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n"), nil
}
