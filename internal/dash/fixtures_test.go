package dash_test

import (
	"fmt"
	"sync"
	"testing"

	"dashseek/internal/manifest"

	"github.com/stretchr/testify/require"
)

// twoPeriodMPD is a VOD manifest whose second Period starts at 10s.
const twoPeriodMPD = `<?xml version="1.0" encoding="UTF-8"?>
<MPD xmlns="urn:mpeg:dash:schema:mpd:2011" type="static" mediaPresentationDuration="PT30S">
  <Period id="intro" duration="PT10S">
    <AdaptationSet mimeType="video/mp4">
      <SegmentTemplate media="intro-$RepresentationID$-$Number$.m4s" duration="2" timescale="1" startNumber="1"/>
      <Representation id="i1" bandwidth="500000"/>
    </AdaptationSet>
  </Period>
  <Period id="main" duration="PT20S">
    <AdaptationSet mimeType="audio/mp4">
      <Role schemeIdUri="urn:mpeg:dash:role:2011" value="main"/>
      <SegmentTemplate media="audio-$Number$.m4s" duration="4" startNumber="1"/>
      <Representation id="a1" bandwidth="128000"/>
    </AdaptationSet>
    <AdaptationSet mimeType="video/mp4">
      <SegmentTemplate media="seg-$RepresentationID$-$Number$.m4s" duration="4" timescale="1" startNumber="1"/>
      <Representation id="v1" bandwidth="500000"/>
      <Representation id="v2" bandwidth="1500000"/>
    </AdaptationSet>
    <AdaptationSet mimeType="video/mp4">
      <Role schemeIdUri="urn:mpeg:dash:role:2011" value="alternate"/>
      <SegmentTemplate media="alt/$Bandwidth$/$Number$.m4s" duration="360000" timescale="90000"/>
      <Representation id="alt1" bandwidth="800000"/>
    </AdaptationSet>
  </Period>
</MPD>`

// singlePeriodMPD wraps one AdaptationSet body in a 60s single-Period manifest.
func singlePeriodMPD(asetAttrs, asetBody string) string {
	return fmt.Sprintf(`<MPD mediaPresentationDuration="PT60S">
  <Period>
    <AdaptationSet %s>%s</AdaptationSet>
  </Period>
</MPD>`, asetAttrs, asetBody)
}

func mustParse(t *testing.T, doc string) *manifest.Tree {
	t.Helper()
	tree, err := manifest.Parse(doc)
	require.NoError(t, err)
	return tree
}

// recordingLogger keeps every message so tests can assert on diagnostics.
type recordingLogger struct {
	mu     sync.Mutex
	infos  []string
	errors []string
}

func (l *recordingLogger) Debugf(format string, v ...interface{}) {}
func (l *recordingLogger) Warnf(format string, v ...interface{})  {}

func (l *recordingLogger) Infof(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.infos = append(l.infos, fmt.Sprintf(format, v...))
}

func (l *recordingLogger) Errorf(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, fmt.Sprintf(format, v...))
}
