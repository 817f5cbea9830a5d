package settings

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// DefaultBatchSize is the prompt-processing batch size passed to the runtime.
const DefaultBatchSize = 512

var (
	// ErrInvalidSettings marks a field that fails validation.
	ErrInvalidSettings = errors.New("invalid model settings")
	// ErrUnsupportedChatFormat marks a chat format that is unknown or that the
	// runtime cannot apply.
	ErrUnsupportedChatFormat = errors.New("unsupported chat format")
)

// ModelParams are the inputs to a Builder.
type ModelParams struct {
	Model      string
	Alias      string
	NCtx       int
	NThreads   int
	NBatch     int
	ChatFormat string
	Verbose    bool
}

// ModelSettings describes how to load and configure a model.
type ModelSettings struct {
	Model      string `json:"model"`
	Alias      string `json:"model_alias"`
	NCtx       int    `json:"n_ctx"`
	NThreads   int    `json:"n_threads"`
	NBatch     int    `json:"n_batch"`
	ChatFormat string `json:"chat_format,omitempty"`
	Verbose    bool   `json:"verbose"`
}

// Builder constructs ModelSettings, rejecting parameters it cannot honor.
type Builder func(ModelParams) (ModelSettings, error)

// NewModelSettings is the default Builder. An empty Alias defaults to the
// model file's base name and a zero NBatch to DefaultBatchSize.
func NewModelSettings(p ModelParams) (ModelSettings, error) {
	ms := ModelSettings{
		Model:      p.Model,
		Alias:      p.Alias,
		NCtx:       p.NCtx,
		NThreads:   p.NThreads,
		NBatch:     p.NBatch,
		ChatFormat: p.ChatFormat,
		Verbose:    p.Verbose,
	}
	if ms.Alias == "" && ms.Model != "" {
		ms.Alias = filepath.Base(ms.Model)
	}
	if ms.NBatch == 0 {
		ms.NBatch = DefaultBatchSize
	}
	if err := ms.Validate(); err != nil {
		return ModelSettings{}, err
	}
	return ms, nil
}

// Validate reports the first field that is out of range.
func (ms ModelSettings) Validate() error {
	if strings.TrimSpace(ms.Model) == "" {
		return fmt.Errorf("%w: model path is empty", ErrInvalidSettings)
	}
	if ms.NCtx <= 0 {
		return fmt.Errorf("%w: n_ctx must be positive, got %d", ErrInvalidSettings, ms.NCtx)
	}
	if ms.NThreads <= 0 {
		return fmt.Errorf("%w: n_threads must be positive, got %d", ErrInvalidSettings, ms.NThreads)
	}
	if ms.NBatch <= 0 {
		return fmt.Errorf("%w: n_batch must be positive, got %d", ErrInvalidSettings, ms.NBatch)
	}
	if ms.ChatFormat != "" {
		if _, ok := LookupChatFormat(ms.ChatFormat); !ok {
			return fmt.Errorf("%w: %q", ErrUnsupportedChatFormat, ms.ChatFormat)
		}
	}
	return nil
}

// ChatTemplate returns the runtime template for ChatFormat, or "" when no
// chat format is set.
func (ms ModelSettings) ChatTemplate() string {
	t, _ := LookupChatFormat(ms.ChatFormat)
	return t
}

// Capabilities describes what the runtime binary supports.
type Capabilities struct {
	ChatTemplate bool     `json:"chat_template"`
	Templates    []string `json:"templates,omitempty"`
}

// SupportsTemplate reports whether the runtime can apply the named built-in
// template. An empty Templates list means any template is accepted.
func (c Capabilities) SupportsTemplate(name string) bool {
	if !c.ChatTemplate {
		return false
	}
	if len(c.Templates) == 0 {
		return true
	}
	for _, t := range c.Templates {
		if t == name {
			return true
		}
	}
	return false
}

// WithCapabilities returns a Builder that also rejects chat formats the
// runtime cannot apply.
func WithCapabilities(c Capabilities) Builder {
	return func(p ModelParams) (ModelSettings, error) {
		ms, err := NewModelSettings(p)
		if err != nil {
			return ModelSettings{}, err
		}
		if ms.ChatFormat == "" {
			return ms, nil
		}
		if !c.ChatTemplate {
			return ModelSettings{}, fmt.Errorf("%w: runtime has no --chat-template support", ErrUnsupportedChatFormat)
		}
		if tmpl := ms.ChatTemplate(); !c.SupportsTemplate(tmpl) {
			return ModelSettings{}, fmt.Errorf("%w: runtime does not provide template %q", ErrUnsupportedChatFormat, tmpl)
		}
		return ms, nil
	}
}
