// Package grouping partitions a file catalog into candidate groups.
package grouping

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/luinbytes/same-size-finder/catalog"
)

// Strategy selects the grouping key
type Strategy int

const (
	// BySize groups files of identical byte size
	BySize Strategy = iota
	// ByEditedPair groups an original capture with its edited counterpart
	// through a shared four letter prefix, e.g. AAAA1111.MP4 and AAAAE1111.MOV
	ByEditedPair
)

const prefixLen = 4

var editedPrefix = regexp.MustCompile(`^[A-Z]{4}$`)

// String returns the flag spelling of s
func (s Strategy) String() string {
	switch s {
	case BySize:
		return "size"
	case ByEditedPair:
		return "edited"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// ParseStrategy parses the flag spelling of a strategy
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "size":
		return BySize, nil
	case "edited", "edited-pair":
		return ByEditedPair, nil
	default:
		return 0, fmt.Errorf("unknown grouping mode %q (want size or edited)", name)
	}
}

// Group is a set of at least two records sharing a key. Files are sorted by
// full path so that the numbering shown to the user is reproducible.
type Group struct {
	Key   string
	Size  int64 // Shared size; only meaningful for BySize
	Files []catalog.FileRecord
}

// Partition splits records under strategy, drops singletons and returns the
// kept groups in key order: ascending size, or lexical prefix.
func Partition(records []catalog.FileRecord, strategy Strategy) []Group {
	switch strategy {
	case ByEditedPair:
		return groupByPrefix(records)
	default:
		return groupBySize(records)
	}
}

func groupBySize(records []catalog.FileRecord) []Group {
	sizeMap := make(map[int64][]catalog.FileRecord)
	for _, r := range records {
		sizeMap[r.Size] = append(sizeMap[r.Size], r)
	}

	sizes := make([]int64, 0, len(sizeMap))
	for size, files := range sizeMap {
		if len(files) > 1 {
			sizes = append(sizes, size)
		}
	}
	sort.Slice(sizes, func(i, j int) bool { return sizes[i] < sizes[j] })

	groups := make([]Group, 0, len(sizes))
	for _, size := range sizes {
		groups = append(groups, Group{
			Key:   strconv.FormatInt(size, 10),
			Size:  size,
			Files: sortByPath(sizeMap[size]),
		})
	}
	return groups
}

func groupByPrefix(records []catalog.FileRecord) []Group {
	prefixMap := make(map[string][]catalog.FileRecord)
	for _, r := range records {
		key := Prefix(r.Name, prefixLen)
		prefixMap[key] = append(prefixMap[key], r)
	}

	keys := make([]string, 0, len(prefixMap))
	for key, files := range prefixMap {
		// Rejects accidental prefix collisions on non-media names.
		if len(files) > 1 && editedPrefix.MatchString(key) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	groups := make([]Group, 0, len(keys))
	for _, key := range keys {
		groups = append(groups, Group{
			Key:   key,
			Files: sortByPath(prefixMap[key]),
		})
	}
	return groups
}

// Prefix returns the first n characters of name, or all of it when shorter.
func Prefix(name string, n int) string {
	runes := []rune(name)
	if len(runes) <= n {
		return name
	}
	return string(runes[:n])
}

func sortByPath(files []catalog.FileRecord) []catalog.FileRecord {
	sorted := make([]catalog.FileRecord, len(files))
	copy(sorted, files)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })
	return sorted
}

// DuplicatedBytes sums size × (count − 1) over size groups: the bytes held
// by the extra copies.
func DuplicatedBytes(groups []Group) int64 {
	var total int64
	for _, g := range groups {
		total += g.Size * int64(len(g.Files)-1)
	}
	return total
}
