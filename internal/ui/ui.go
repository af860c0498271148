// Package ui drives fzf for the interactive reading flow. Items reach fzf
// on stdin as plain text; no preview commands or shell strings are built
// from remote data.
package ui

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// ErrCancelled is returned when the user aborts a prompt.
var ErrCancelled = errors.New("selection cancelled")

// Select presents items to the user via fzf and returns the selected item's index.
func Select(prompt string, items []string) (int, error) {
	if len(items) == 0 {
		return -1, fmt.Errorf("no items to select from")
	}

	fzfPath, err := exec.LookPath("fzf")
	if err != nil {
		return -1, fmt.Errorf("fzf not found in PATH: %w", err)
	}

	cmd := exec.Command(fzfPath,
		"--prompt", prompt+" > ",
		"--height", "40%",
		"--reverse",
		"--with-nth", "2..", // Hide the index column
		"--delimiter", "\t",
		"--no-multi",
		"--cycle",
	)

	cmd.Stdin = strings.NewReader(numbered(items))
	cmd.Stderr = os.Stderr

	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 130 {
			return -1, ErrCancelled
		}
		return -1, fmt.Errorf("fzf failed: %w", err)
	}

	return parseSelection(stdout.String(), len(items))
}

// Pick presents items rendered by label and returns the chosen one.
func Pick[T any](prompt string, items []T, label func(T) string) (T, error) {
	var zero T
	labels := make([]string, len(items))
	for i, item := range items {
		labels[i] = label(item)
	}
	idx, err := Select(prompt, labels)
	if err != nil {
		return zero, err
	}
	return items[idx], nil
}

// Confirm asks the user a yes/no question via fzf.
func Confirm(prompt string) (bool, error) {
	idx, err := Select(prompt, []string{"Yes", "No"})
	if err != nil {
		return false, err
	}
	return idx == 0, nil
}

// Input prompts the user for free-text input via fzf's --print-query.
func Input(prompt string) (string, error) {
	fzfPath, err := exec.LookPath("fzf")
	if err != nil {
		return "", fmt.Errorf("fzf not found in PATH: %w", err)
	}

	cmd := exec.Command(fzfPath,
		"--prompt", prompt+" > ",
		"--height", "10%",
		"--reverse",
		"--print-query",
		"--no-info",
	)

	cmd.Stdin = strings.NewReader("")
	cmd.Stderr = os.Stderr

	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	// fzf exits 1 when using --print-query with no match, which is expected
	_ = cmd.Run()

	query := strings.TrimSpace(strings.Split(stdout.String(), "\n")[0])
	if query == "" {
		return "", fmt.Errorf("no input provided")
	}

	return query, nil
}

// numbered prefixes each item with its index and a tab. Tabs and newlines
// inside items would break the columns, so they become spaces.
func numbered(items []string) string {
	clean := strings.NewReplacer("\t", " ", "\n", " ", "\r", " ")
	var b strings.Builder
	for i, item := range items {
		fmt.Fprintf(&b, "%d\t%s\n", i, clean.Replace(item))
	}
	return b.String()
}

// parseSelection extracts the index from a line written by fzf.
func parseSelection(out string, n int) (int, error) {
	selected := strings.TrimSpace(out)
	if selected == "" {
		return -1, fmt.Errorf("no selection made")
	}

	field, _, _ := strings.Cut(selected, "\t")
	idx, err := strconv.Atoi(field)
	if err != nil {
		return -1, fmt.Errorf("parsing selection index: %w", err)
	}

	if idx < 0 || idx >= n {
		return -1, fmt.Errorf("selection index %d out of range", idx)
	}

	return idx, nil
}
