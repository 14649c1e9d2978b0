package main

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/afero"

	"github.com/luinbytes/same-size-finder/catalog"
	"github.com/luinbytes/same-size-finder/grouping"
	"github.com/luinbytes/same-size-finder/report"
	"github.com/luinbytes/same-size-finder/resolve"
)

// runResult tallies a finished run
type runResult struct {
	Summary  report.Summary
	Outcomes map[resolve.Outcome]int
}

// runner sequences catalog, grouping, presentation and resolution
type runner struct {
	cfg       Config
	fs        afero.Fs
	formatter *report.Formatter
	resolver  *resolve.Resolver
}

// run processes every group even when a deletion fails. It returns an error
// for a failed walk, or resolve.ErrInterrupted when the user stopped at a
// prompt.
func (r *runner) run(ctx context.Context) (runResult, error) {
	result := runResult{Outcomes: make(map[resolve.Outcome]int)}

	records, stats, err := catalog.Build(ctx, r.fs, r.cfg.Dir)
	if err != nil {
		return result, fmt.Errorf("failed to scan %s: %w", r.cfg.Dir, err)
	}
	if r.cfg.Verbose {
		log.Printf("%sFound %d files", r.cfg.emoji("📊"), len(records))
		if stats.Skipped > 0 {
			log.Printf("%sSkipped %d unreadable entries", r.cfg.emoji("⚠️"), stats.Skipped)
		}
	}

	groups := grouping.Partition(records, r.cfg.Strategy)
	if r.cfg.Verbose {
		log.Printf("%sFound %d groups", r.cfg.emoji("👯"), len(groups))
	}

	for i, group := range groups {
		r.formatter.Group(i+1, group)
		outcome := r.resolver.Resolve(group)
		result.Outcomes[outcome]++
		if outcome == resolve.Aborted {
			return result, resolve.ErrInterrupted
		}
		r.formatter.Separator()
	}

	result.Summary = report.Summary{Groups: len(groups)}
	if r.cfg.Strategy == grouping.BySize {
		result.Summary.DuplicatedBytes = grouping.DuplicatedBytes(groups)
		r.formatter.Summary(result.Summary)
	}

	if r.cfg.Verbose && r.resolver.Enabled {
		log.Printf("%sTrashed %d files, %d failed",
			r.cfg.emoji("✅"), result.Outcomes[resolve.Deleted], result.Outcomes[resolve.Failed])
	}

	return result, nil
}
