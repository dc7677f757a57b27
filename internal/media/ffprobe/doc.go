// Package ffprobe wraps the ffprobe binary to inspect media containers.
//
// The pipeline uses it to read authoritative durations for narration audio,
// source clip lengths before loop+trim normalization, and the frame layout
// of rendered artifacts in validation.
package ffprobe
