package dash

import (
	"fmt"
	"strconv"

	"dashseek/internal/manifest"
	"dashseek/internal/models"
)

// ListStreams returns every distinct (mimeType, role) pair offered by the
// manifest's AdaptationSets together with the distinct bandwidths of their
// Representations. Streams and bandwidths keep document order.
func ListStreams(tree *manifest.Tree) ([]models.Stream, error) {
	type key struct{ mimeType, role string }

	var streams []models.Stream
	index := make(map[key]int)
	seen := make(map[key]map[uint64]struct{})

	root := tree.Root()
	for _, period := range tree.ChildrenByTag(root, "Period") {
		for _, aset := range tree.ChildrenByTag(period, "AdaptationSet") {
			mimeType, _ := tree.Attr(aset, "mimeType")
			k := key{mimeType, AdaptationSetRole(tree, aset)}

			i, ok := index[k]
			if !ok {
				i = len(streams)
				index[k] = i
				seen[k] = make(map[uint64]struct{})
				streams = append(streams, models.Stream{MimeType: k.mimeType, Role: k.role})
			}

			for _, rep := range tree.ChildrenByTag(aset, "Representation") {
				value, ok := tree.Attr(rep, "bandwidth")
				if !ok {
					continue
				}
				bw, err := strconv.ParseUint(value, 10, 64)
				if err != nil {
					return nil, fmt.Errorf("%w: Representation@bandwidth %q: %v", ErrAttributeParse, value, err)
				}
				if _, dup := seen[k][bw]; dup {
					continue
				}
				seen[k][bw] = struct{}{}
				streams[i].Bandwidths = append(streams[i].Bandwidths, bw)
			}
		}
	}
	return streams, nil
}
