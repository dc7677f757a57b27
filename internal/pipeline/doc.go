// Package pipeline sequences the five stages that turn a movie name into
// a finished short video: metadata and script acquisition, per-scene asset
// fetching, transcription, caption synthesis, and the final render. Each
// run delivers ordered progress events and a terminal result; scene-level
// failures drop the scene while the run continues.
package pipeline
