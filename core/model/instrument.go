package model

import (
	"fmt"
	"strings"
)

// Instrument identifies a supported instrument.
type Instrument int

const (
	InstrumentUnknown Instrument = iota
	GMOSNorth
	GMOSSouth
	GSAOI
	GPI
	Flamingos2
	NIFS
	GNIRS
	NIRI
	Alopeke
	Zorro
	IGRINS
	MaroonX
	GHOST
	GRACES
	Phoenix
)

// VisitorInstrumentName is the ODB value used for all visitor instruments.
// The real name is carried in a free-text field.
const VisitorInstrumentName = "Visitor Instrument"

var instrumentNames = map[Instrument]string{
	GMOSNorth:  "GMOS-N",
	GMOSSouth:  "GMOS-S",
	GSAOI:      "GSAOI",
	GPI:        "GPI",
	Flamingos2: "Flamingos2",
	NIFS:       "NIFS",
	GNIRS:      "GNIRS",
	NIRI:       "NIRI",
	Alopeke:    "'Alopeke",
	Zorro:      "Zorro",
	IGRINS:     "IGRINS",
	MaroonX:    "MAROON-X",
	GHOST:      "GHOST",
	GRACES:     "GRACES",
	Phoenix:    "Phoenix",
}

// String returns the ODB name of the instrument.
func (i Instrument) String() string {
	if n, ok := instrumentNames[i]; ok {
		return n
	}
	return "unknown"
}

// ParseInstrument maps an ODB instrument name to an Instrument.
func ParseInstrument(name string) (Instrument, error) {
	name = strings.TrimSpace(name)
	for inst, n := range instrumentNames {
		if n == name {
			return inst, nil
		}
	}
	return InstrumentUnknown, &ConfigurationError{Field: "instrument", Value: name, Reason: "unsupported instrument"}
}

// Visitor reports whether the instrument is only reachable through the
// visitor instrument entry.
func (i Instrument) Visitor() bool {
	switch i {
	case Alopeke, Zorro, IGRINS, MaroonX, GHOST, GRACES, Phoenix:
		return true
	}
	return false
}

// GMOS reports whether the instrument belongs to the GMOS family.
func (i Instrument) GMOS() bool { return i == GMOSNorth || i == GMOSSouth }

// MarshalText encodes the instrument by name.
func (i Instrument) MarshalText() ([]byte, error) {
	if i == InstrumentUnknown {
		return nil, fmt.Errorf("cannot encode unknown instrument")
	}
	return []byte(i.String()), nil
}

// UnmarshalText decodes an instrument name.
func (i *Instrument) UnmarshalText(b []byte) error {
	v, err := ParseInstrument(string(b))
	if err != nil {
		return err
	}
	*i = v
	return nil
}
