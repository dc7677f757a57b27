// Package render drives ffmpeg and ffprobe to turn per-scene assets into a
// finished vertical video: duration-locked scene normalization, lossless
// concatenation, caption burn-in, and a ducked music mix.
package render
