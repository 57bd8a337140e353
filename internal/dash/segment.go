package dash

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"dashseek/internal/manifest"
	"dashseek/internal/models"
)

// Template identifiers substituted in SegmentTemplate@media.
const (
	RepresentationIDToken = "$RepresentationID$"
	BandwidthToken        = "$Bandwidth$"
	NumberToken           = "$Number$"
)

// SegmentIndex returns the number of the segment that covers position, a
// time in seconds relative to the start of the Period.
//
// startNumber defaults to 0 and timescale to 1. duration has no default.
func SegmentIndex(tree *manifest.Tree, template manifest.NodeID, position float64) (uint64, error) {
	var startNumber uint64
	if value, ok := tree.Attr(template, "startNumber"); ok {
		n, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: SegmentTemplate@startNumber %q: %v", ErrAttributeParse, value, err)
		}
		startNumber = n
	}

	timescale := 1.0
	if value, ok := tree.Attr(template, "timescale"); ok {
		ts, err := parsePositive(value)
		if err != nil {
			return 0, fmt.Errorf("%w: SegmentTemplate@timescale %q: %v", ErrAttributeParse, value, err)
		}
		timescale = ts
	}

	value, ok := tree.Attr(template, "duration")
	if !ok {
		return 0, fmt.Errorf("%w: SegmentTemplate has no duration attribute", ErrNoSegmentDuration)
	}
	duration, err := parsePositive(value)
	if err != nil {
		return 0, fmt.Errorf("%w: SegmentTemplate@duration %q: %v", ErrAttributeParse, value, err)
	}

	if position < 0 {
		position = 0
	}
	index := math.Floor(position / (duration / timescale))
	if math.IsInf(index, 0) || math.IsNaN(index) || index >= maxSegmentIndex ||
		uint64(index) > math.MaxUint64-startNumber {
		return 0, fmt.Errorf("%w: segment index for position %v overflows (duration %v, timescale %v, startNumber %d)",
			ErrAttributeParse, position, duration, timescale, startNumber)
	}
	return uint64(index) + startNumber, nil
}

// maxSegmentIndex is 2^64, the first float64 that no longer fits a uint64.
const maxSegmentIndex = float64(1 << 64)

func parsePositive(value string) (float64, error) {
	n, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(n) || math.IsInf(n, 0) || n <= 0 {
		return 0, fmt.Errorf("must be a positive finite number")
	}
	return n, nil
}

// FindRepresentation returns the id of the first Representation of aset whose
// bandwidth equals bandwidth exactly. A Representation without a bandwidth
// attribute has bandwidth 0.
func FindRepresentation(tree *manifest.Tree, aset manifest.NodeID, bandwidth uint64) (string, error) {
	for _, rep := range tree.ChildrenByTag(aset, "Representation") {
		var repBandwidth uint64
		if value, ok := tree.Attr(rep, "bandwidth"); ok {
			n, err := strconv.ParseUint(value, 10, 64)
			if err != nil {
				return "", fmt.Errorf("%w: Representation@bandwidth %q: %v", ErrAttributeParse, value, err)
			}
			repBandwidth = n
		}
		if repBandwidth != bandwidth {
			continue
		}

		id, ok := tree.Attr(rep, "id")
		if !ok {
			return "", fmt.Errorf("%w: Representation with bandwidth %d has no id", ErrNoRepresentation, bandwidth)
		}
		return id, nil
	}
	return "", fmt.Errorf("%w: no Representation with bandwidth %d", ErrNoRepresentation, bandwidth)
}

// ExpandTemplate replaces every occurrence of the representation id,
// bandwidth and number identifiers in media, in that order.
func ExpandTemplate(media, repID string, bandwidth, number uint64) string {
	out := strings.ReplaceAll(media, RepresentationIDToken, repID)
	out = strings.ReplaceAll(out, BandwidthToken, strconv.FormatUint(bandwidth, 10))
	return strings.ReplaceAll(out, NumberToken, strconv.FormatUint(number, 10))
}

// ResolveMedia builds the media segment of aset for bandwidth at position,
// a time in seconds relative to the start of the Period.
func ResolveMedia(tree *manifest.Tree, aset manifest.NodeID, bandwidth uint64, position float64) (models.Segment, error) {
	template := tree.FirstChild(aset, "SegmentTemplate")
	if template == manifest.None {
		return models.Segment{}, fmt.Errorf("%w: AdaptationSet has no SegmentTemplate", ErrNoSegmentTemplate)
	}

	number, err := SegmentIndex(tree, template, position)
	if err != nil {
		return models.Segment{}, err
	}

	repID, err := FindRepresentation(tree, aset, bandwidth)
	if err != nil {
		return models.Segment{}, err
	}

	media, ok := tree.Attr(template, "media")
	if !ok {
		return models.Segment{}, fmt.Errorf("%w: SegmentTemplate has no media attribute", ErrNoSegmentTemplate)
	}

	return models.Segment{
		URL:           ExpandTemplate(media, repID, bandwidth, number),
		Number:        number,
		RepID:         repID,
		Bandwidth:     bandwidth,
		LocalPosition: position,
	}, nil
}
