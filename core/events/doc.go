// Package events defines the scheduling events emitted on the event bus.
//
// Available event types:
//   - SegmentedEvent: an observation was split into atoms, or failed to
//   - VisitEvent: a placement was accepted or rejected by a site plan
//   - PlanEvent: a site plan was completed
package events
