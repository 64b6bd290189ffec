// Package atoms splits a canonical sequence into atoms, the indivisible
// units placed by the scheduler.
//
// Segmentation is a single forward pass. A new atom starts on the first
// step, on a wavelength change, on an exposure time or coadds change of a
// science step, and at the end of each repeating offset pattern found by
// package offsets. Each atom's QA state and class are then resolved from
// the precedence tables in package model.
package atoms
