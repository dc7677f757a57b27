// Package subtitles turns the globally-timed word list into styled caption
// events and serializes them as an ASS document for ffmpeg burn-in.
package subtitles
