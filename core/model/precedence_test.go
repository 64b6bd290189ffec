package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveQAState(t *testing.T) {
	cases := []struct {
		name   string
		states []QAState
		want   QAState
	}{
		{"lowest present wins", []QAState{QAPass, QAUsable, QANone}, QANone},
		{"fail before pass", []QAState{QAPass, QAFail}, QAFail},
		{"undefined before usable", []QAState{QAUsable, QAUndefined}, QAUndefined},
		{"single pass", []QAState{QAPass}, QAPass},
		{"empty", nil, QANone},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, ResolveQAState(c.states))
		})
	}
}

func TestResolveObsClass(t *testing.T) {
	assert.Equal(t, ClassScience, ResolveObsClass([]ObsClass{ClassAcq, ClassScience}))
	assert.Equal(t, ClassPartnerCal, ResolveObsClass([]ObsClass{ClassDayCal, ClassPartnerCal, ClassAcqCal}))
	assert.Equal(t, ClassNone, ResolveObsClass([]ObsClass{"SOMETHING"}))
}

func TestParseQAStateDegrades(t *testing.T) {
	assert.Equal(t, QAPass, ParseQAState("pass"))
	assert.Equal(t, QAUsable, ParseQAState(" Usable "))
	assert.Equal(t, QANone, ParseQAState("CHECK"))
}

func TestObsClassPartner(t *testing.T) {
	assert.True(t, ParseObsClass("partnerCal").Partner())
	assert.False(t, ParseObsClass("progCal").Partner())
}

func TestParseInstrument(t *testing.T) {
	inst, err := ParseInstrument("GMOS-S")
	assert.NoError(t, err)
	assert.Equal(t, GMOSSouth, inst)
	assert.True(t, inst.GMOS())

	_, err = ParseInstrument("Michelle")
	var cfgErr *ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "Michelle", cfgErr.Value)
}

func TestStepSky(t *testing.T) {
	assert.True(t, Step{ObserveType: "OBJECT"}.Sky())
	assert.False(t, Step{ObserveType: "flat"}.Sky())
	assert.False(t, Step{ObserveType: "BIAS"}.Sky())
}
