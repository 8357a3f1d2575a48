// Package prompt asks the operator to pick groups, projects, authors and file names.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/huangsam/glexport/internal/contract"
	"golang.org/x/term"
)

// allKeyword selects every choice.
const allKeyword = "all"

// Terminal is a line-oriented Selector over a reader and writer.
type Terminal struct {
	in          *bufio.Reader
	out         io.Writer
	interactive bool
}

var _ contract.Selector = &Terminal{} // Compile-time check

// NewTerminal reads from stdin and writes prompts to stderr.
// Selection fails fast when stdin is not a terminal.
func NewTerminal() *Terminal {
	return New(os.Stdin, os.Stderr, term.IsTerminal(int(os.Stdin.Fd())))
}

// New creates a selector over the given streams.
func New(in io.Reader, out io.Writer, interactive bool) *Terminal {
	return &Terminal{in: bufio.NewReader(in), out: out, interactive: interactive}
}

// Select prints a numbered list and reads indexes, ranges or "all".
// An empty choice re-prompts.
func (t *Terminal) Select(label string, choices []string) ([]string, error) {
	if !t.interactive || len(choices) == 0 {
		return nil, &contract.SelectionError{Label: label}
	}

	for {
		_, _ = contract.HeaderColor.Fprintf(t.out, "Select %s:\n", label)
		for i, c := range choices {
			_, _ = fmt.Fprintf(t.out, "  %3d) %s\n", i+1, c)
		}
		_, _ = fmt.Fprintf(t.out, "Enter numbers, ranges (1-3) or %q: ", allKeyword)

		line, err := t.readLine()
		if err != nil {
			return nil, &contract.SelectionError{Label: label}
		}

		indexes, err := parseSelection(line, len(choices))
		if err != nil {
			_, _ = contract.WarnColor.Fprintln(t.out, err)
			continue
		}
		if len(indexes) == 0 {
			_, _ = contract.WarnColor.Fprintln(t.out, &contract.SelectionError{Label: label})
			continue
		}

		selected := make([]string, len(indexes))
		for i, idx := range indexes {
			selected[i] = choices[idx]
		}
		return selected, nil
	}
}

// Input reads one non-empty line of text.
func (t *Terminal) Input(label string) (string, error) {
	if !t.interactive {
		return "", &contract.SelectionError{Label: label}
	}
	for {
		_, _ = fmt.Fprintf(t.out, "%s: ", label)
		line, err := t.readLine()
		if err != nil {
			return "", &contract.SelectionError{Label: label}
		}
		if line != "" {
			return line, nil
		}
	}
}

// readLine returns the next trimmed line. A final line without a newline is returned as is.
func (t *Terminal) readLine() (string, error) {
	line, err := t.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// parseSelection converts operator input into sorted, distinct zero-based indexes.
func parseSelection(input string, n int) ([]int, error) {
	input = strings.TrimSpace(input)
	if strings.EqualFold(input, allKeyword) {
		all := make([]int, n)
		for i := range all {
			all[i] = i
		}
		return all, nil
	}

	seen := make(map[int]struct{})
	for token := range strings.SplitSeq(input, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		lo, hi, err := parseToken(token, n)
		if err != nil {
			return nil, err
		}
		for i := lo; i <= hi; i++ {
			seen[i-1] = struct{}{}
		}
	}

	indexes := make([]int, 0, len(seen))
	for idx := range seen {
		indexes = append(indexes, idx)
	}
	slices.Sort(indexes)
	return indexes, nil
}

// parseToken parses "3" or "1-4" into an inclusive one-based range.
func parseToken(token string, n int) (int, int, error) {
	first, last, isRange := strings.Cut(token, "-")
	lo, err := strconv.Atoi(strings.TrimSpace(first))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid choice %q", token)
	}
	hi := lo
	if isRange {
		if hi, err = strconv.Atoi(strings.TrimSpace(last)); err != nil {
			return 0, 0, fmt.Errorf("invalid range %q", token)
		}
	}
	if lo < 1 || hi > n || lo > hi {
		return 0, 0, fmt.Errorf("choice %q is out of range 1-%d", token, n)
	}
	return lo, hi, nil
}
