// Package mode derives the coarse acquisition mode of a sequence from its
// per-step instrument configuration.
package mode

import (
	"strings"

	"github.com/kilianp07/skyplan/core/model"
)

// Mode is a coarse observation mode.
type Mode string

const (
	Imaging        Mode = "imaging"
	Longslit       Mode = "longslit"
	IFU            Mode = "ifu"
	MOS            Mode = "mos"
	CrossDispersed Mode = "xd"
	Coronagraphic  Mode = "coron"
	NonRedundant   Mode = "nrm"
	Unknown        Mode = "unknown"
)

func anyContains(values []string, sub string) bool {
	for _, v := range values {
		if strings.Contains(v, sub) {
			return true
		}
	}
	return false
}

func anyEqual(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}

// Classify returns the mode for inst given the per-step disperser and
// focal plane unit arrays.
func Classify(inst model.Instrument, dispersers, fpus []string) Mode {
	switch inst {
	case model.GMOSNorth, model.GMOSSouth:
		switch {
		case anyEqual(dispersers, "MIRROR"):
			return Imaging
		case anyContains(fpus, "arcsec"):
			return Longslit
		case anyContains(fpus, "IFU"):
			return IFU
		case anyEqual(fpus, "CUSTOM_MASK"):
			return MOS
		}
	case model.GSAOI, model.Alopeke, model.Zorro:
		return Imaging
	case model.IGRINS, model.MaroonX:
		return Longslit
	case model.GHOST, model.GRACES, model.Phoenix:
		return CrossDispersed
	case model.Flamingos2:
		m := Unknown
		if anyContains(fpus, "LONGSLIT") {
			m = Longslit
		}
		if anyContains(fpus, "FPU_NONE") && anyContains(dispersers, "IMAGING") {
			m = Imaging
		}
		return m
	case model.NIRI:
		if anyContains(dispersers, "NONE") && anyContains(fpus, "MASK_IMAGING") {
			return Imaging
		}
	case model.NIFS:
		return IFU
	case model.GNIRS:
		switch {
		case anyContains(dispersers, "mirror"):
			return Imaging
		case anyContains(dispersers, "XD"):
			return CrossDispersed
		default:
			return Longslit
		}
	case model.GPI:
		switch {
		case anyContains(fpus, "CORON"):
			return Coronagraphic
		case anyContains(fpus, "NRM"):
			return NonRedundant
		case anyContains(fpus, "DIRECT"):
			return Imaging
		default:
			return IFU
		}
	}
	return Unknown
}

// ClassifySequence classifies the steps of seq.
func ClassifySequence(seq model.Sequence) Mode {
	dispersers := make([]string, len(seq.Steps))
	fpus := make([]string, len(seq.Steps))
	for i, st := range seq.Steps {
		dispersers[i] = st.Disperser
		fpus[i] = st.FPU
	}
	return Classify(seq.Instrument, dispersers, fpus)
}
