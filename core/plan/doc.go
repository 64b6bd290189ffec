// Package plan holds the per-site night plans and the allocator placing
// contiguous atom ranges into their time-slot grid.
package plan
