package dash

import (
	"errors"

	"dashseek/internal/manifest"
)

// Resolution failures. Errors returned by this package wrap exactly one of
// these and can be tested with errors.Is.
var (
	ErrMalformedDocument = manifest.ErrMalformed
	ErrNoPeriod          = errors.New("no period found")
	ErrInvalidPosition   = errors.New("invalid position")
	ErrNoAdaptationSet   = errors.New("no matching adaptation set")
	ErrNoSegmentTemplate = errors.New("no segment template")
	ErrNoSegmentDuration = errors.New("no segment duration")
	ErrNoRepresentation  = errors.New("no matching representation")
	ErrAttributeParse    = errors.New("attribute parse failure")
)

// Kind classifies a resolution failure.
type Kind string

const (
	KindNone              Kind = ""
	KindMalformedDocument Kind = "MalformedDocument"
	KindNoPeriod          Kind = "NoPeriodFound"
	KindInvalidPosition   Kind = "InvalidPosition"
	KindNoAdaptationSet   Kind = "NoAdaptationSet"
	KindNoSegmentTemplate Kind = "NoSegmentTemplate"
	KindNoSegmentDuration Kind = "NoSegmentDuration"
	KindNoRepresentation  Kind = "NoRepresentation"
	KindAttributeParse    Kind = "AttributeParseFailure"
	KindUnknown           Kind = "Unknown"
)

var kinds = []struct {
	err  error
	kind Kind
}{
	{ErrMalformedDocument, KindMalformedDocument},
	{ErrNoPeriod, KindNoPeriod},
	{ErrInvalidPosition, KindInvalidPosition},
	{ErrNoAdaptationSet, KindNoAdaptationSet},
	{ErrNoSegmentTemplate, KindNoSegmentTemplate},
	{ErrNoSegmentDuration, KindNoSegmentDuration},
	{ErrNoRepresentation, KindNoRepresentation},
	{ErrAttributeParse, KindAttributeParse},
}

// KindOf reports which failure err wraps. A nil error is KindNone and an
// error from outside this package is KindUnknown.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindUnknown
}
