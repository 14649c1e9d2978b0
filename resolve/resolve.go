// Package resolve offers one file of a group for deletion and carries out the
// user's choice.
package resolve

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/luinbytes/same-size-finder/grouping"
	"github.com/luinbytes/same-size-finder/trash"
)

// Prompt is shown before reading the user's choice
const Prompt = "Enter the number of the file to delete, or anything else to keep all: "

// nameGateLen is how many leading filename characters the size mode gate
// compares.
const nameGateLen = 8

// ErrInterrupted is returned by a LineReader when the user asked to stop the
// whole run rather than answer this prompt.
var ErrInterrupted = errors.New("interrupted")

// LineReader blocks until the user supplies one line for prompt
type LineReader interface {
	ReadLine(prompt string, group grouping.Group) (string, error)
}

// LineReaderFunc adapts a function to LineReader
type LineReaderFunc func(prompt string, group grouping.Group) (string, error)

// ReadLine calls f
func (f LineReaderFunc) ReadLine(prompt string, group grouping.Group) (string, error) {
	return f(prompt, group)
}

// Outcome is what happened to a group
type Outcome int

const (
	Skipped  Outcome = iota // Not offered: prompting off or group ineligible
	Declined                // Offered, but no valid number was entered
	Deleted                 // The chosen file was moved to the trash
	Failed                  // The chosen file could not be moved
	Aborted                 // The user stopped the run at this prompt
)

func (o Outcome) String() string {
	switch o {
	case Skipped:
		return "skipped"
	case Declined:
		return "declined"
	case Deleted:
		return "deleted"
	case Failed:
		return "failed"
	case Aborted:
		return "aborted"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Resolver decides whether a group is offered, prompts and trashes at most
// one file.
type Resolver struct {
	Enabled  bool
	Strategy grouping.Strategy
	Input    LineReader
	Trasher  trash.Trasher
	Out      io.Writer
}

// Eligible reports whether group may be offered for deletion under strategy.
//
// In size mode the first eight characters of the filenames must differ across
// at least two members. Edited-pair groups are already gated by their prefix
// and are always eligible.
func Eligible(group grouping.Group, strategy grouping.Strategy) bool {
	if strategy == grouping.ByEditedPair {
		return true
	}

	seen := make(map[string]struct{}, len(group.Files))
	for _, f := range group.Files {
		seen[grouping.Prefix(f.Name, nameGateLen)] = struct{}{}
	}
	return len(seen) > 1
}

// Resolve offers group for deletion when enabled and eligible. A failed
// deletion is reported to Out and returned as Failed, never as an error.
func (r *Resolver) Resolve(group grouping.Group) Outcome {
	if !r.Enabled || !Eligible(group, r.Strategy) {
		return Skipped
	}

	response, err := r.Input.ReadLine(Prompt, group)
	if errors.Is(err, ErrInterrupted) {
		return Aborted
	}
	if err != nil {
		// No input to act on, e.g. stdin closed.
		return Declined
	}

	choice, err := strconv.Atoi(strings.TrimSpace(response))
	if err != nil || choice < 1 || choice > len(group.Files) {
		return Declined
	}

	path := group.Files[choice-1].Path
	if err := r.Trasher.Trash(path); err != nil {
		fmt.Fprintf(r.Out, "Error deleting %s: %v\n", path, err)
		return Failed
	}
	fmt.Fprintf(r.Out, "Deleted %s\n", path)
	return Deleted
}

// Stdin reads choices line by line from a reader, printing the prompt to out
type Stdin struct {
	scanner *bufio.Scanner
	out     io.Writer
}

// NewStdin returns a LineReader over in
func NewStdin(in io.Reader, out io.Writer) *Stdin {
	return &Stdin{scanner: bufio.NewScanner(in), out: out}
}

// ReadLine prints prompt and blocks for one line. io.EOF is returned once in
// is exhausted.
func (s *Stdin) ReadLine(prompt string, _ grouping.Group) (string, error) {
	fmt.Fprint(s.out, prompt)
	if !s.scanner.Scan() {
		if err := s.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return s.scanner.Text(), nil
}
