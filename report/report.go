// Package report renders groups and the run summary as line-oriented text.
package report

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/luinbytes/same-size-finder/grouping"
)

const (
	mebibyte = 1024 * 1024
	gibibyte = 1024 * 1024 * 1024
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4"))

	summaryStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#04B575"))
)

// Summary is the aggregate printed once at the end of a run
type Summary struct {
	Groups          int
	DuplicatedBytes int64
}

// Formatter writes groups to an io.Writer. With Styled unset the output is
// plain and deterministic.
type Formatter struct {
	Out      io.Writer
	Strategy grouping.Strategy
	Styled   bool
}

// Header writes the line introducing the ordinal-th group (1-based)
func (f *Formatter) Header(ordinal int, group grouping.Group) {
	var line string
	if f.Strategy == grouping.ByEditedPair {
		line = fmt.Sprintf("%d: Files with prefix %s:", ordinal, group.Key)
	} else {
		line = fmt.Sprintf("%d: Files with size %s bytes:", ordinal, humanize.Comma(group.Size))
	}
	fmt.Fprintln(f.Out, f.render(headerStyle, line))
}

// Members writes each file of group with its 1-based in-group index
func (f *Formatter) Members(group grouping.Group) {
	for i, file := range group.Files {
		if f.Strategy == grouping.ByEditedPair {
			fmt.Fprintf(f.Out, "  %d: %s (%s)\n", i+1, file.Path, FormatMiB(file.Size))
			continue
		}
		fmt.Fprintf(f.Out, "  %d: %s\n", i+1, file.Path)
	}
}

// Group writes the header and members of a group
func (f *Formatter) Group(ordinal int, group grouping.Group) {
	f.Header(ordinal, group)
	f.Members(group)
}

// Separator ends a group's block
func (f *Formatter) Separator() {
	fmt.Fprintln(f.Out)
}

// Summary writes the duplicated storage total. It is only meaningful for
// size grouping.
func (f *Formatter) Summary(s Summary) {
	line := fmt.Sprintf("Total duplicated storage: %s in %d groups", FormatGiB(s.DuplicatedBytes), s.Groups)
	fmt.Fprintln(f.Out, f.render(summaryStyle, line))
}

func (f *Formatter) render(style lipgloss.Style, s string) string {
	if !f.Styled {
		return s
	}
	return style.Render(s)
}

// FormatMiB renders bytes in mebibytes with one decimal place
func FormatMiB(bytes int64) string {
	return fmt.Sprintf("%.1f MB", float64(bytes)/mebibyte)
}

// FormatGiB renders bytes in gibibytes with one decimal place
func FormatGiB(bytes int64) string {
	return fmt.Sprintf("%.1f GB", float64(bytes)/gibibyte)
}
