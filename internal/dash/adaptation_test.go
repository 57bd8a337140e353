package dash_test

import (
	"testing"

	"dashseek/internal/dash"
	"dashseek/internal/manifest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func firstPeriod(t *testing.T, tree *manifest.Tree) manifest.NodeID {
	t.Helper()
	period := tree.FirstChild(tree.Root(), "Period")
	require.NotEqual(t, manifest.None, period)
	return period
}

func TestFindAdaptationSet_MimeTypeMismatch(t *testing.T) {
	tree := mustParse(t, singlePeriodMPD(`mimeType="audio/mp4"`, ""))

	_, ok := dash.FindAdaptationSet(tree, firstPeriod(t, tree), "video/mp4", "main")
	assert.False(t, ok)
}

func TestFindAdaptationSet_DefaultRole(t *testing.T) {
	tree := mustParse(t, singlePeriodMPD(`mimeType="video/mp4"`, ""))

	aset, ok := dash.FindAdaptationSet(tree, firstPeriod(t, tree), "video/mp4", "main")
	assert.True(t, ok)
	assert.Equal(t, "AdaptationSet", tree.Tag(aset))

	_, ok = dash.FindAdaptationSet(tree, firstPeriod(t, tree), "video/mp4", "alternate")
	assert.False(t, ok)
}

func TestFindAdaptationSet_RoleWithoutValueIsMain(t *testing.T) {
	tree := mustParse(t, singlePeriodMPD(`mimeType="video/mp4"`, `<Role schemeIdUri="urn:mpeg:dash:role:2011"/>`))

	_, ok := dash.FindAdaptationSet(tree, firstPeriod(t, tree), "video/mp4", "main")
	assert.True(t, ok)
}

func TestFindAdaptationSet_MissingMimeTypeMatchesEmpty(t *testing.T) {
	tree := mustParse(t, singlePeriodMPD(`id="1"`, ""))

	_, ok := dash.FindAdaptationSet(tree, firstPeriod(t, tree), "", "main")
	assert.True(t, ok)
}

func TestFindAdaptationSet_FirstMatchInDocumentOrder(t *testing.T) {
	tree := mustParse(t, twoPeriodMPD)
	periods := tree.ChildrenByTag(tree.Root(), "Period")
	require.Len(t, periods, 2)

	main, ok := dash.FindAdaptationSet(tree, periods[1], "video/mp4", "main")
	require.True(t, ok)
	alt, ok := dash.FindAdaptationSet(tree, periods[1], "video/mp4", "alternate")
	require.True(t, ok)
	assert.NotEqual(t, main, alt)
	assert.Equal(t, "alternate", dash.AdaptationSetRole(tree, alt))

	audio, ok := dash.FindAdaptationSet(tree, periods[1], "audio/mp4", "main")
	require.True(t, ok)
	assert.Equal(t, tree.ChildrenByTag(periods[1], "AdaptationSet")[0], audio)
}
