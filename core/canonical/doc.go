// Package canonical turns raw ODB extractor steps into the canonical step
// schema used by segmentation.
//
// Field names follow the extractor export ("instrument:filter",
// "observe:exposureTime", ...). Each instrument reads its focal plane unit
// from its own field, and a few instruments need special handling to
// recover the disperser, filter or wavelength.
package canonical
