// Package assets acquires per-scene narration audio and footage through
// the provider collaborators and persists the results in a per-job JSON
// cache, so a finished run can be replayed fully offline.
package assets
