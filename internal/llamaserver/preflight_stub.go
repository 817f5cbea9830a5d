//go:build !llama

package llamaserver

import "llamalaunch/internal/settings"

// PreflightAvailable reports whether this binary links llama.cpp in-process.
const PreflightAvailable = false

// Preflight is unavailable without the 'llama' build tag.
func Preflight(settings.ModelSettings) error {
	return ErrDependencyUnavailable("in-process preflight not built (missing 'llama' build tag)")
}
