package dash

import (
	"fmt"

	"dashseek/internal/manifest"
)

// PeriodMatch is the Period selected for a playback position.
type PeriodMatch struct {
	Node manifest.NodeID
	// Index is the Period's position among its siblings.
	Index int
	// Start is the Period's start on the asset timeline, in seconds.
	Start float64
}

// PresentationDuration returns the MPD's mediaPresentationDuration in
// seconds, or 0 when the attribute is absent.
func PresentationDuration(tree *manifest.Tree, root manifest.NodeID) float64 {
	value, ok := tree.Attr(root, "mediaPresentationDuration")
	if !ok {
		return 0
	}
	return ParseDuration(value)
}

// ValidatePosition reports whether position lies before the end of the
// presentation. A manifest without mediaPresentationDuration accepts no
// position at all. Negative positions are the caller's concern.
func ValidatePosition(tree *manifest.Tree, root manifest.NodeID, position float64) bool {
	return position < PresentationDuration(tree, root)
}

// FindPeriod returns the Period containing position.
//
// Each Period covers [start, end). A Period starts at its start attribute
// or, without one, where the previous Period ended. It ends where the next
// Period explicitly starts, or else after its own duration. The first
// Period whose end lies past position wins, and when none does the last
// Period is returned.
func FindPeriod(tree *manifest.Tree, root manifest.NodeID, position float64) (PeriodMatch, error) {
	periods := tree.ChildrenByTag(root, "Period")
	if len(periods) == 0 {
		return PeriodMatch{Node: manifest.None}, fmt.Errorf("%w: manifest has no Period element", ErrNoPeriod)
	}

	var running float64
	var match PeriodMatch
	for i, period := range periods {
		start := running
		if value, ok := explicitStart(tree, period); ok {
			start = value
		}
		match = PeriodMatch{Node: period, Index: i, Start: start}

		end := start + periodDuration(tree, period)
		if i+1 < len(periods) {
			if next, ok := explicitStart(tree, periods[i+1]); ok {
				end = next
			}
		}

		if position < end {
			return match, nil
		}
		running = end
	}

	return match, nil
}

func explicitStart(tree *manifest.Tree, period manifest.NodeID) (float64, bool) {
	value, ok := tree.Attr(period, "start")
	if !ok {
		return 0, false
	}
	return ParseDuration(value), true
}

func periodDuration(tree *manifest.Tree, period manifest.NodeID) float64 {
	value, ok := tree.Attr(period, "duration")
	if !ok {
		return 0
	}
	return ParseDuration(value)
}
