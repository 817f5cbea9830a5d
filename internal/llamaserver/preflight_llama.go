//go:build llama

package llamaserver

import (
	"fmt"

	llama "github.com/go-skynet/go-llama.cpp"

	"llamalaunch/internal/settings"
)

// PreflightAvailable reports whether this binary links llama.cpp in-process.
const PreflightAvailable = true

// Preflight loads the model in-process with its context and batch sizes and
// frees it again, so load failures surface before a runtime is spawned.
func Preflight(ms settings.ModelSettings) error {
	m, err := llama.New(ms.Model, llama.SetContext(ms.NCtx), llama.SetNBatch(ms.NBatch))
	if err != nil {
		return fmt.Errorf("preflight load %s: %w", ms.Model, err)
	}
	m.Free()
	return nil
}
