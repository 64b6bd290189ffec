package canonical

import (
	"fmt"
	"strings"
	"time"

	"github.com/kilianp07/skyplan/core/model"
)

const (
	fieldInstrument     = "instrument:instrument"
	fieldVisitorName    = "instrument:name"
	fieldDisperser      = "instrument:disperser"
	fieldFilter         = "instrument:filter"
	fieldWavelength     = "instrument:observingWavelength"
	fieldAcqMirror      = "instrument:acquisitionMirror"
	fieldDecker         = "instrument:decker"
	fieldCrossDispersed = "instrument:crossDispersed"
	fieldP              = "telescope:p"
	fieldQ              = "telescope:q"
	fieldExposure       = "observe:exposureTime"
	fieldCoadds         = "observe:coadds"
	fieldClass          = "observe:class"
	fieldObserveType    = "observe:observeType"
	fieldDataLabel      = "observe:dataLabel"
	fieldTotalTime      = "totalTime"
	guideKeyMarker      = "guideWith"
	guideOn             = "guide"
)

type filterWavelength struct {
	name       string
	wavelength float64
}

// Ordered: matching takes the first filter contained in the mode name.
var gpiFilters = []filterWavelength{
	{"Y", 1.05}, {"J", 1.25}, {"H", 1.65}, {"K1", 2.05}, {"K2", 2.25},
}

var nifsFilters = []string{"ZJ", "JH", "HK"}

// fpuField returns the field holding the focal plane unit of inst. Visitor
// instruments have no such field.
func fpuField(inst model.Instrument) (string, bool) {
	switch inst {
	case model.GSAOI:
		return "instrument:utilityWheel", true
	case model.GPI:
		return "instrument:observingMode", true
	case model.Flamingos2, model.GMOSNorth, model.GMOSSouth:
		return "instrument:fpu", true
	case model.NIFS, model.NIRI:
		return "instrument:mask", true
	case model.GNIRS:
		return "instrument:slitWidth", true
	case model.Alopeke, model.Zorro, model.IGRINS, model.MaroonX, model.GHOST, model.GRACES, model.Phoenix:
		return "", false
	default:
		return "", false
	}
}

// instrument resolves the instrument of a step, including visitor names.
func instrument(raw RawStep) (model.Instrument, error) {
	name, err := raw.requireStr(fieldInstrument)
	if err != nil {
		return model.InstrumentUnknown, err
	}
	if name == model.VisitorInstrumentName {
		full, err := raw.requireStr(fieldVisitorName)
		if err != nil {
			return model.InstrumentUnknown, err
		}
		name, _, _ = strings.Cut(strings.TrimSpace(full), " ")
		inst, err := model.ParseInstrument(name)
		if err != nil {
			return inst, err
		}
		if !inst.Visitor() {
			return model.InstrumentUnknown, &model.ConfigurationError{Field: fieldVisitorName, Value: full, Reason: "not a visitor instrument"}
		}
		return inst, nil
	}
	inst, err := model.ParseInstrument(name)
	if err != nil {
		return inst, err
	}
	if inst.Visitor() {
		return model.InstrumentUnknown, &model.ConfigurationError{Field: fieldInstrument, Value: name, Reason: "visitor instrument must use " + model.VisitorInstrumentName}
	}
	return inst, nil
}

func fpu(inst model.Instrument, raw RawStep) (string, error) {
	if inst.Visitor() {
		if inst == model.Alopeke || inst == model.Zorro {
			return "None", nil
		}
		return inst.String(), nil
	}
	field, ok := fpuField(inst)
	if !ok {
		return "", &model.ConfigurationError{Field: fieldInstrument, Value: inst.String(), Reason: "no focal plane unit field"}
	}
	return raw.requireStr(field)
}

func disperser(inst model.Instrument, fpu string, raw RawStep) (string, error) {
	d, ok := raw.str(fieldDisperser)
	if !ok {
		switch inst {
		case model.IGRINS, model.MaroonX:
			d = inst.String()
		default:
			d = "None"
		}
	}
	switch inst {
	case model.GNIRS:
		mirror, err := raw.requireStr(fieldAcqMirror)
		if err != nil {
			return "", err
		}
		decker, err := raw.requireStr(fieldDecker)
		if err != nil {
			return "", err
		}
		if mirror == "in" && decker == "acquisition" {
			return "mirror", nil
		}
		xd, err := raw.requireStr(fieldCrossDispersed)
		if err != nil {
			return "", err
		}
		return strings.Trim(d, "grating") + xd, nil
	case model.Flamingos2:
		if fpu == "FPU_NONE" {
			if decker, ok := raw.str(fieldDecker); ok && decker == "IMAGING" {
				return decker, nil
			}
		}
	}
	return d, nil
}

func filter(inst model.Instrument, fpu, disperser string, raw RawStep) string {
	f, ok := raw.str(fieldFilter)
	if !ok {
		switch inst {
		case model.GPI:
			f = ""
			for _, fw := range gpiFilters {
				if strings.Contains(fpu, fw.name) {
					f = fw.name
					break
				}
			}
		case model.GNIRS:
			f = "None"
		default:
			f = "Unknown"
		}
	}
	if inst == model.NIFS && strings.Contains(f, "Same as Disperser") && disperser != "" {
		for _, nf := range nifsFilters {
			if strings.Contains(nf, disperser[:1]) {
				return nf
			}
		}
	}
	return f
}

func wavelength(inst model.Instrument, filter string, raw RawStep) (float64, error) {
	if inst == model.GPI {
		for _, fw := range gpiFilters {
			if fw.name == filter {
				return fw.wavelength, nil
			}
		}
		return 0, &model.ConfigurationError{Field: fieldFilter, Value: filter, Reason: "no GPI wavelength for filter"}
	}
	return raw.requireNum(fieldWavelength)
}

func guided(raw RawStep) bool {
	for k := range raw {
		if !strings.Contains(k, guideKeyMarker) {
			continue
		}
		if v, ok := raw.str(k); ok && v == guideOn {
			return true
		}
	}
	return false
}

// Step converts one raw step to its canonical form.
func Step(raw RawStep) (model.Step, error) {
	inst, err := instrument(raw)
	if err != nil {
		return model.Step{}, err
	}
	st := model.Step{Instrument: inst, Coadds: 1, Guided: guided(raw)}

	if st.FPU, err = fpu(inst, raw); err != nil {
		return model.Step{}, err
	}
	if st.Disperser, err = disperser(inst, st.FPU, raw); err != nil {
		return model.Step{}, err
	}
	st.Filter = filter(inst, st.FPU, st.Disperser, raw)
	if st.Wavelength, err = wavelength(inst, st.Filter, raw); err != nil {
		return model.Step{}, err
	}

	if st.P, _, err = raw.num(fieldP); err != nil {
		return model.Step{}, err
	}
	if st.Q, _, err = raw.num(fieldQ); err != nil {
		return model.Step{}, err
	}
	if st.ExposureTime, err = raw.requireNum(fieldExposure); err != nil {
		return model.Step{}, err
	}
	coadds, ok, err := raw.num(fieldCoadds)
	if err != nil {
		return model.Step{}, err
	}
	if ok {
		st.Coadds = int(coadds)
	}

	class, err := raw.requireStr(fieldClass)
	if err != nil {
		return model.Step{}, err
	}
	st.Class = model.ParseObsClass(class)
	if st.ObserveType, err = raw.requireStr(fieldObserveType); err != nil {
		return model.Step{}, err
	}
	st.ObserveType = strings.ToUpper(st.ObserveType)
	if st.DataLabel, err = raw.requireStr(fieldDataLabel); err != nil {
		return model.Step{}, err
	}
	ms, err := raw.requireNum(fieldTotalTime)
	if err != nil {
		return model.Step{}, err
	}
	st.TotalTime = time.Duration(ms * float64(time.Millisecond))
	return st, nil
}

// Build converts a raw observation into a canonical sequence.
func Build(obs RawObservation) (model.Sequence, error) {
	if len(obs.Sequence) == 0 {
		return model.Sequence{}, &model.MalformedSequenceError{ObservationID: obs.ID, Reason: "empty sequence"}
	}
	seq := model.Sequence{ObservationID: obs.ID, Steps: make([]model.Step, 0, len(obs.Sequence))}
	for i, raw := range obs.Sequence {
		st, err := Step(raw)
		if err != nil {
			return model.Sequence{}, fmt.Errorf("observation %s step %d: %w", obs.ID, i+1, err)
		}
		if i == 0 {
			seq.Instrument = st.Instrument
		} else if st.Instrument != seq.Instrument {
			return model.Sequence{}, &model.MalformedSequenceError{ObservationID: obs.ID, Reason: fmt.Sprintf("step %d uses %s, sequence uses %s", i+1, st.Instrument, seq.Instrument)}
		}
		seq.Steps = append(seq.Steps, st)
	}
	if len(obs.ObsLog) > 0 {
		seq.Log = make(model.ObsLog, len(obs.ObsLog))
		for _, e := range obs.ObsLog {
			seq.Log[e.Label] = model.ParseQAState(e.QAState)
		}
	}
	return seq, nil
}
