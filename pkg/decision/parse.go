package decision

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/archview/pkg/errors"
)

// ParseSelections parses selection expressions of the form "group=0,1".
// Each argument names one group; repeated groups accumulate. Indices are
// sorted and deduplicated. An empty index list ("group=") clears the group.
func ParseSelections(args ...string) (Selections, error) {
	sel := make(Selections)
	for _, arg := range args {
		group, list, ok := strings.Cut(strings.TrimSpace(arg), "=")
		group = strings.TrimSpace(group)
		if !ok || group == "" {
			return nil, errors.New(errors.ErrCodeInvalidSelection, "expected group=index[,index...], got %q", arg)
		}
		idx := sel[group]
		for _, s := range strings.Split(list, ",") {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			i, err := strconv.Atoi(s)
			if err != nil || i < 0 {
				return nil, errors.New(errors.ErrCodeInvalidSelection, "invalid choice index %q for group %s", s, group)
			}
			idx = append(idx, i)
		}
		slices.Sort(idx)
		sel[group] = slices.Compact(idx)
	}
	for g, idx := range sel {
		if len(idx) == 0 {
			delete(sel, g)
		}
	}
	return sel, nil
}

// String formats sel in the form accepted by ParseSelections, groups sorted.
func (sel Selections) String() string {
	groups := make([]string, 0, len(sel))
	for g := range sel {
		groups = append(groups, g)
	}
	slices.Sort(groups)

	parts := make([]string, 0, len(groups))
	for _, g := range groups {
		idx := make([]string, len(sel[g]))
		for i, v := range sel[g] {
			idx[i] = strconv.Itoa(v)
		}
		parts = append(parts, fmt.Sprintf("%s=%s", g, strings.Join(idx, ",")))
	}
	return strings.Join(parts, " ")
}

// Validate checks sel against points: every group must exist and every
// index must address a choice. Visibility itself tolerates both; callers at
// the CLI and API boundary use Validate to report typos.
func (sel Selections) Validate(points []Point) error {
	byID := make(map[string]Point, len(points))
	for _, p := range points {
		byID[p.GroupID] = p
	}
	for g, idx := range sel {
		p, ok := byID[g]
		if !ok {
			return errors.New(errors.ErrCodeInvalidSelection, "unknown decision group %q", g)
		}
		for _, i := range idx {
			if i < 0 || i >= len(p.Choices) {
				return errors.New(errors.ErrCodeInvalidSelection, "choice %d out of range for %s (%d choices)", i, g, len(p.Choices))
			}
		}
	}
	return nil
}
