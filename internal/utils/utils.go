package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// --- 1. Error Reporting ---

// ShowError prints the formatted error box used by every command.
func ShowError(w io.Writer, context string, err error) {
	fmt.Fprintf(w, "\n---------------------------------------------------------\n")
	fmt.Fprintf(w, "🚨 FACEREC ERROR: %s\n", context)
	if err != nil {
		fmt.Fprintf(w, "DETAILS: %v\n", err)
	}
	fmt.Fprintf(w, "---------------------------------------------------------\n")
}

// Die is the unified exit strategy for fatal setup errors.
// It prints the error box to stderr and exits with status 1.
func Die(context string, err error) {
	ShowError(os.Stderr, context, err)
	os.Exit(1)
}

// --- 2. Interactive Prompts ---

// Confirm asks a yes/no question and defaults to no.
func Confirm(r *bufio.Reader, w io.Writer, prompt string) bool {
	fmt.Fprintf(w, "%s [y/N]: ", prompt)
	res, _ := r.ReadString('\n')
	res = strings.TrimSpace(strings.ToLower(res))
	return res == "y" || res == "yes"
}

// Prompt prints a question and returns the trimmed answer. io.EOF is returned
// when the input is closed before any answer.
func Prompt(r *bufio.Reader, w io.Writer, prompt string) (string, error) {
	fmt.Fprint(w, prompt)
	res, err := r.ReadString('\n')
	if err != nil && (err != io.EOF || res == "") {
		return "", err
	}
	return strings.TrimSpace(res), nil
}

// --- 3. Filesystem ---

// RemoveDir deletes a directory tree, reporting failures without aborting.
func RemoveDir(w io.Writer, path string) bool {
	if err := os.RemoveAll(path); err != nil {
		fmt.Fprintf(w, "⚠️  Failed to remove %s: %v\n", path, err)
		return false
	}
	return true
}
