// Package script defines the narration/visual script consumed by the
// pipeline and the migration path for the deprecated timeline.beats cache
// shape.
package script
