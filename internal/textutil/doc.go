// Package textutil provides text normalization helpers shared across the
// pipeline: filesystem-safe job-name sanitization, caption word cleaning,
// and display-title casing.
package textutil
