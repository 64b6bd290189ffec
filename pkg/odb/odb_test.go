package odb

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/skyplan/core/canonical"
	"github.com/kilianp07/skyplan/core/model"
)

const observationsJSON = `{"observations": [{
  "observationId": "GS-2024A-Q-1-1",
  "site": "GS",
  "band": 1,
  "score": 2.5,
  "sequence": [{
    "instrument:instrument": "GMOS-S",
    "instrument:disperser": "B600_G5323",
    "instrument:filter": "None",
    "instrument:fpu": "1.0arcsec",
    "instrument:observingWavelength": "0.52",
    "telescope:q": 2,
    "observe:exposureTime": 300,
    "observe:class": "science",
    "observe:observeType": "OBJECT",
    "observe:dataLabel": "GS-2024A-Q-1-1-001",
    "totalTime": 330000
  }],
  "obsLog": [{"label": "GS-2024A-Q-1-1-001", "qaState": "PASS"}]
}]}`

const observationsYAML = `observations:
  - observationId: GN-2024A-Q-2-1
    site: GN
    sequence:
      - "instrument:instrument": NIRI
        "instrument:disperser": NONE
        "instrument:filter": K
        "instrument:mask": MASK_IMAGING
        "instrument:observingWavelength": 2.2
        "observe:exposureTime": 30
        "observe:coadds": 2
        "observe:class": SCIENCE
        "observe:observeType": OBJECT
        "observe:dataLabel": GN-001
        totalTime: 45000
`

func TestDecodeObservationsJSON(t *testing.T) {
	obs, err := DecodeObservations(strings.NewReader(observationsJSON), "json")
	require.NoError(t, err)
	require.Len(t, obs, 1)
	assert.Equal(t, model.GeminiSouth, obs[0].Site)
	assert.Equal(t, 2.5, obs[0].Score)

	seq, err := canonical.Build(obs[0])
	require.NoError(t, err)
	require.Len(t, seq.Steps, 1)
	st := seq.Steps[0]
	assert.Equal(t, 0.52, st.Wavelength)
	assert.Equal(t, 2.0, st.Q)
	assert.Equal(t, model.ClassScience, st.Class)
	assert.Equal(t, 330*time.Second, st.TotalTime)
	assert.Equal(t, model.QAPass, seq.Log.State(st.DataLabel))
}

func TestLoadObservationsYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "obs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(observationsYAML), 0o644))

	obs, err := LoadObservations(path)
	require.NoError(t, err)
	require.Len(t, obs, 1)
	seq, err := canonical.Build(obs[0])
	require.NoError(t, err)
	assert.Equal(t, model.NIRI, seq.Instrument)
	assert.Equal(t, 2, seq.Steps[0].Coadds)
	assert.Equal(t, "MASK_IMAGING", seq.Steps[0].FPU)
}

func TestLoadNightEvents(t *testing.T) {
	doc := `sites:
  - site: GS
    slot_minutes: 1
    nights:
      - start: 2024-03-01T23:00:00Z
        end: 2024-03-02T09:00:00Z
        slots: 600
`
	path := filepath.Join(t.TempDir(), "nights.yml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	ev, err := LoadNightEvents(path)
	require.NoError(t, err)
	require.Len(t, ev, 1)
	assert.Equal(t, model.GeminiSouth, ev[0].Site)
	assert.Equal(t, time.Minute, ev[0].SlotLength())
	require.Len(t, ev[0].Nights, 1)
	assert.Equal(t, 600, ev[0].Nights[0].Slots)
	assert.Equal(t, 10*time.Hour, ev[0].Nights[0].End.Sub(ev[0].Nights[0].Start))
}

func TestUnsupportedFormat(t *testing.T) {
	_, err := LoadObservations("obs.txt")
	assert.Error(t, err)
	_, err = DecodeNightEvents(strings.NewReader("{}"), "toml")
	assert.Error(t, err)
}
