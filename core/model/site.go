package model

import (
	"fmt"
	"strings"
)

// Site is an observatory site.
type Site int

const (
	SiteUnknown Site = iota
	GeminiNorth
	GeminiSouth
)

// Sites lists the supported sites in a stable order.
var Sites = []Site{GeminiNorth, GeminiSouth}

func (s Site) String() string {
	switch s {
	case GeminiNorth:
		return "GN"
	case GeminiSouth:
		return "GS"
	default:
		return "unknown"
	}
}

// ParseSite accepts the short site code, case-insensitive.
func ParseSite(v string) (Site, error) {
	switch strings.ToUpper(strings.TrimSpace(v)) {
	case "GN":
		return GeminiNorth, nil
	case "GS":
		return GeminiSouth, nil
	}
	return SiteUnknown, fmt.Errorf("unknown site %q", v)
}

func (s Site) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Site) UnmarshalText(b []byte) error {
	v, err := ParseSite(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
