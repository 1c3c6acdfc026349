package executor

import (
	"fmt"
	"regexp"
	"strings"
)

// Filter selects tests by name pattern and tags.
type Filter struct {
	Pattern     *regexp.Regexp
	IncludeTags []string
	ExcludeTags []string
}

// NewFilter compiles pattern (empty matches everything).
func NewFilter(pattern string, include, exclude []string) (Filter, error) {
	f := Filter{IncludeTags: cleanTags(include), ExcludeTags: cleanTags(exclude)}
	if pattern != "" {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return Filter{}, fmt.Errorf("invalid --run pattern %q: %w", pattern, err)
		}
		f.Pattern = re
	}
	return f, nil
}

// Match reports whether tc passes the filter. A test must carry at least
// one include tag (when any are given) and none of the exclude tags.
func (f Filter) Match(tc Test) bool {
	if f.Pattern != nil && !f.Pattern.MatchString(tc.Name) {
		return false
	}
	for _, tag := range f.ExcludeTags {
		if tc.HasTag(tag) {
			return false
		}
	}
	if len(f.IncludeTags) == 0 {
		return true
	}
	for _, tag := range f.IncludeTags {
		if tc.HasTag(tag) {
			return true
		}
	}
	return false
}

// Select returns the tests that match, preserving order.
func (f Filter) Select(tests []Test) []Test {
	var out []Test
	for _, tc := range tests {
		if f.Match(tc) {
			out = append(out, tc)
		}
	}
	return out
}

// cleanTags splits comma-separated values and drops blanks.
func cleanTags(tags []string) []string {
	var out []string
	for _, t := range tags {
		for _, part := range strings.Split(t, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
