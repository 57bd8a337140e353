package dash

import (
	"fmt"
	"math"

	"dashseek/internal/logger"
	"dashseek/internal/manifest"
	"dashseek/internal/models"
)

// Stage names the step of a resolution, used in diagnostics.
type Stage string

const (
	StageParse               Stage = "Parse"
	StageValidatePosition    Stage = "ValidatePosition"
	StageLocatePeriod        Stage = "LocatePeriod"
	StageLocateAdaptationSet Stage = "LocateAdaptationSet"
	StageResolveSegment      Stage = "ResolveSegment"
)

// Request selects the segment to resolve.
type Request struct {
	// Position is the playback position in seconds from the start of the asset.
	Position  float64
	MimeType  string
	Role      string
	Bandwidth uint64
}

// Resolver turns a manifest and a Request into a media segment URL. It holds
// no per-call state and may be shared between goroutines.
type Resolver struct {
	logger logger.Logger
}

// NewResolver creates a Resolver that reports diagnostics to log.
func NewResolver(log logger.Logger) *Resolver {
	if log == nil {
		log = logger.Nop()
	}
	return &Resolver{logger: log}
}

// Resolve parses document and resolves req against it.
func (r *Resolver) Resolve(document string, req Request) (models.Segment, error) {
	tree, err := manifest.Parse(document)
	if err != nil {
		return models.Segment{}, r.fail(StageParse, err)
	}
	return r.ResolveTree(tree, req)
}

// ResolveTree resolves req against an already parsed manifest. Stages run
// in order and the first failure ends the resolution.
func (r *Resolver) ResolveTree(tree *manifest.Tree, req Request) (models.Segment, error) {
	r.logger.Debugf("Resolving position %v for %s/%s at %d bps", req.Position, req.MimeType, req.Role, req.Bandwidth)
	root := tree.Root()

	if req.Position < 0 || math.IsNaN(req.Position) || !ValidatePosition(tree, root, req.Position) {
		err := fmt.Errorf("%w: requested position %v is outside [0, %v)",
			ErrInvalidPosition, req.Position, PresentationDuration(tree, root))
		return models.Segment{}, r.fail(StageValidatePosition, err)
	}

	period, err := FindPeriod(tree, root, req.Position)
	if err != nil {
		return models.Segment{}, r.fail(StageLocatePeriod, err)
	}
	r.logger.Debugf("Selected period %d starting at %vs", period.Index, period.Start)

	aset, ok := FindAdaptationSet(tree, period.Node, req.MimeType, req.Role)
	if !ok {
		err := fmt.Errorf("%w: no AdaptationSet for mimeType %q and role %q in period %d",
			ErrNoAdaptationSet, req.MimeType, req.Role, period.Index)
		return models.Segment{}, r.fail(StageLocateAdaptationSet, err)
	}

	local := math.Max(0, req.Position-period.Start)
	segment, err := ResolveMedia(tree, aset, req.Bandwidth, local)
	if err != nil {
		return models.Segment{}, r.fail(StageResolveSegment, err)
	}
	segment.PeriodIndex = period.Index
	segment.PeriodStart = period.Start

	r.logger.Infof("Resolved segment %d of representation %s: %s", segment.Number, segment.RepID, segment.URL)
	return segment, nil
}

// ResolveURL is Resolve reduced to a URL and a success flag. Failures are
// only visible through the logger.
func (r *Resolver) ResolveURL(document string, position float64, mimeType, role string, bandwidth uint64) (string, bool) {
	segment, err := r.Resolve(document, Request{
		Position:  position,
		MimeType:  mimeType,
		Role:      role,
		Bandwidth: bandwidth,
	})
	if err != nil {
		return "", false
	}
	return segment.URL, true
}

func (r *Resolver) fail(stage Stage, err error) error {
	r.logger.Errorf("Resolution failed at %s (%s): %v", stage, KindOf(err), err)
	return fmt.Errorf("%s: %w", stage, err)
}
