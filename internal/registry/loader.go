// Package registry discovers GGUF model files on disk.
package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"llamalaunch/internal/common/fsutil"
	"llamalaunch/pkg/types"
)

// quantPattern matches llama.cpp quantization tags such as Q4_K_M, Q8_0, IQ3_XXS or F16.
var quantPattern = regexp.MustCompile(`(?i)(?:^|[._-])((?:I?Q[0-9]+(?:_[A-Z0-9]+)*)|F16|F32|BF16)(?:[._-]|$)`)

// GGUFScanner scans a directory for *.gguf files.
type GGUFScanner struct{}

// NewGGUFScanner returns a scanner.
func NewGGUFScanner() *GGUFScanner { return &GGUFScanner{} }

// Scan lists the *.gguf files directly inside dir, sorted by ID. ID is the
// file name (including extension); Path is absolute.
func (s *GGUFScanner) Scan(dir string) ([]types.Model, error) {
	base, err := fsutil.ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var models []types.Model
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(strings.ToLower(name), ".gguf") {
			continue
		}
		p := filepath.Join(abs, name)
		models = append(models, types.Model{
			ID:        name,
			Path:      p,
			Quant:     ParseQuant(name),
			SizeBytes: fsutil.FileSize(p),
		})
	}
	sort.Slice(models, func(i, j int) bool { return models[i].ID < models[j].ID })
	return models, nil
}

// LoadDir is a convenience wrapper around GGUFScanner.Scan.
func LoadDir(dir string) ([]types.Model, error) {
	return NewGGUFScanner().Scan(dir)
}

// ParseQuant extracts the quantization tag from a model file name, upper-cased.
// It returns "" when the name carries none.
func ParseQuant(name string) string {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	m := quantPattern.FindAllStringSubmatch(stem, -1)
	if len(m) == 0 {
		return ""
	}
	return strings.ToUpper(m[len(m)-1][1])
}
