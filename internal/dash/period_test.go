package dash_test

import (
	"testing"

	"dashseek/internal/dash"
	"dashseek/internal/manifest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const durationsOnlyMPD = `<MPD mediaPresentationDuration="PT30S">
  <Period id="first" duration="PT10S"/>
  <Period id="second" duration="PT20S"/>
</MPD>`

func periodID(t *testing.T, tree *manifest.Tree, match dash.PeriodMatch) string {
	t.Helper()
	id, ok := tree.Attr(match.Node, "id")
	require.True(t, ok)
	return id
}

func TestValidatePosition(t *testing.T) {
	tree := mustParse(t, durationsOnlyMPD)
	root := tree.Root()

	assert.True(t, dash.ValidatePosition(tree, root, 0))
	assert.True(t, dash.ValidatePosition(tree, root, 29.999))
	assert.False(t, dash.ValidatePosition(tree, root, 30))
	assert.False(t, dash.ValidatePosition(tree, root, 31))
}

func TestValidatePosition_MissingDurationRejectsEverything(t *testing.T) {
	tree := mustParse(t, `<MPD><Period/></MPD>`)
	assert.False(t, dash.ValidatePosition(tree, tree.Root(), 0))
	assert.Equal(t, 0.0, dash.PresentationDuration(tree, tree.Root()))
}

func TestFindPeriod_Boundary(t *testing.T) {
	tree := mustParse(t, durationsOnlyMPD)

	match, err := dash.FindPeriod(tree, tree.Root(), 9.999)
	require.NoError(t, err)
	assert.Equal(t, "first", periodID(t, tree, match))
	assert.Equal(t, 0, match.Index)
	assert.Equal(t, 0.0, match.Start)

	match, err = dash.FindPeriod(tree, tree.Root(), 10.0)
	require.NoError(t, err)
	assert.Equal(t, "second", periodID(t, tree, match))
	assert.Equal(t, 1, match.Index)
	assert.Equal(t, 10.0, match.Start)
}

func TestFindPeriod_PastEndReturnsLast(t *testing.T) {
	tree := mustParse(t, durationsOnlyMPD)

	match, err := dash.FindPeriod(tree, tree.Root(), 45)
	require.NoError(t, err)
	assert.Equal(t, "second", periodID(t, tree, match))
}

func TestFindPeriod_ExplicitStart(t *testing.T) {
	tree := mustParse(t, `<MPD mediaPresentationDuration="PT30S">
  <Period id="a" start="PT0S"/>
  <Period id="b" start="PT10S"/>
</MPD>`)

	tests := []struct {
		position float64
		id       string
		start    float64
	}{
		{0, "a", 0},
		{5, "a", 0},
		{9.9, "a", 0},
		{10, "b", 10},
		{14, "b", 10},
	}

	for _, tt := range tests {
		match, err := dash.FindPeriod(tree, tree.Root(), tt.position)
		require.NoError(t, err)
		assert.Equal(t, tt.id, periodID(t, tree, match), "position %v", tt.position)
		assert.Equal(t, tt.start, match.Start, "position %v", tt.position)
	}
}

func TestFindPeriod_MixedStartAndDuration(t *testing.T) {
	tree := mustParse(t, `<MPD mediaPresentationDuration="PT40S">
  <Period id="a" duration="PT10S"/>
  <Period id="b" start="PT15S" duration="PT10S"/>
  <Period id="c"/>
</MPD>`)

	tests := []struct {
		position float64
		id       string
		start    float64
	}{
		{12, "a", 0},
		{15, "b", 15},
		{24.5, "b", 15},
		{25, "c", 25},
		{39, "c", 25},
	}

	for _, tt := range tests {
		match, err := dash.FindPeriod(tree, tree.Root(), tt.position)
		require.NoError(t, err)
		assert.Equal(t, tt.id, periodID(t, tree, match), "position %v", tt.position)
		assert.Equal(t, tt.start, match.Start, "position %v", tt.position)
	}
}

func TestFindPeriod_MissingDurationCountsAsZero(t *testing.T) {
	tree := mustParse(t, `<MPD mediaPresentationDuration="PT30S">
  <Period id="a"/>
  <Period id="b" duration="PT30S"/>
</MPD>`)

	match, err := dash.FindPeriod(tree, tree.Root(), 0)
	require.NoError(t, err)
	assert.Equal(t, "b", periodID(t, tree, match))
	assert.Equal(t, 0.0, match.Start)
}

func TestFindPeriod_SkipsOtherElements(t *testing.T) {
	tree := mustParse(t, `<MPD mediaPresentationDuration="PT30S">
  <ProgramInformation><Title>t</Title></ProgramInformation>
  <Period id="only" duration="PT30S"/>
</MPD>`)

	match, err := dash.FindPeriod(tree, tree.Root(), 5)
	require.NoError(t, err)
	assert.Equal(t, "only", periodID(t, tree, match))
	assert.Equal(t, 0, match.Index)
}

func TestFindPeriod_NoPeriod(t *testing.T) {
	tree := mustParse(t, `<MPD mediaPresentationDuration="PT30S"><BaseURL>x/</BaseURL></MPD>`)

	match, err := dash.FindPeriod(tree, tree.Root(), 5)
	assert.ErrorIs(t, err, dash.ErrNoPeriod)
	assert.Equal(t, manifest.None, match.Node)
}
