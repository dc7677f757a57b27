// Package services defines the shared error taxonomy and context plumbing
// used by every external collaborator client (TTS, stock footage, metadata,
// transcription) and by the pipeline when classifying failures as fatal or
// scene-local.
package services
