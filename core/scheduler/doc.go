// Package scheduler runs the pipeline around segmentation and allocation.
// Segmenter atomizes raw observations on a bounded worker pool and
// GreedyOptimizer fills the site plans of a night from scored candidates.
package scheduler
