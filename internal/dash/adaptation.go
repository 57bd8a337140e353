package dash

import "dashseek/internal/manifest"

// DefaultRole is the role of an AdaptationSet without a Role/@value.
const DefaultRole = "main"

// FindAdaptationSet returns the first AdaptationSet of period whose mimeType
// and role both match. The boolean is false when nothing matches.
func FindAdaptationSet(tree *manifest.Tree, period manifest.NodeID, mimeType, role string) (manifest.NodeID, bool) {
	for _, aset := range tree.ChildrenByTag(period, "AdaptationSet") {
		foundMimeType, _ := tree.Attr(aset, "mimeType")
		if foundMimeType == mimeType && AdaptationSetRole(tree, aset) == role {
			return aset, true
		}
	}
	return manifest.None, false
}

// AdaptationSetRole returns the value of the first Role child of aset,
// falling back to DefaultRole.
func AdaptationSetRole(tree *manifest.Tree, aset manifest.NodeID) string {
	role := tree.FirstChild(aset, "Role")
	if role == manifest.None {
		return DefaultRole
	}
	if value, ok := tree.Attr(role, "value"); ok {
		return value
	}
	return DefaultRole
}
