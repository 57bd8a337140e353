package models

// Segment represents a resolved media segment.
// This struct is shared by the resolver, the CLI and the HTTP API.
type Segment struct {
	// URL is the media template with every placeholder substituted.
	// It is relative unless the caller asked for an absolute URL.
	URL string `json:"url"`
	// Number is the segment index, already offset by the template's startNumber.
	Number uint64 `json:"number"`
	// RepID is the ID of the representation this segment belongs to.
	RepID string `json:"representationId"`
	// Bandwidth is the bandwidth of the selected representation in bits per second.
	Bandwidth uint64 `json:"bandwidth"`
	// PeriodIndex is the zero-based document position of the selected Period.
	PeriodIndex int `json:"period"`
	// PeriodStart is the start of the selected Period on the asset timeline, in seconds.
	PeriodStart float64 `json:"periodStart"`
	// LocalPosition is the requested position relative to PeriodStart, in seconds.
	LocalPosition float64 `json:"localPosition"`
}

// Stream describes one selectable stream kind of a manifest.
type Stream struct {
	MimeType   string   `json:"mimeType"`
	Role       string   `json:"role"`
	Bandwidths []uint64 `json:"bandwidths"`
}
