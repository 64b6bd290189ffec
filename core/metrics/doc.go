// Package metrics defines the sinks recording scheduling activity.
//
// Every sink records segmentation runs. Sinks may also implement
// VisitRecorder and PlanRecorder; callers type-assert for them. The
// factory helpers build sinks from configuration and combine several of
// them with a MultiSink.
package metrics
