package llamaserver

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"llamalaunch/internal/settings"
)

// helpProbeTimeout bounds the `llama-server --help` call.
const helpProbeTimeout = 10 * time.Second

var templateName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// Probe runs `bin --help` and reports which chat templates the binary can
// apply. Older builds exit non-zero on --help; their output is still parsed.
func Probe(ctx context.Context, bin string) (settings.Capabilities, error) {
	ctx, cancel := context.WithTimeout(ctx, helpProbeTimeout)
	defer cancel()
	out, err := exec.CommandContext(ctx, bin, "--help").CombinedOutput()
	if err != nil && len(out) == 0 {
		return settings.Capabilities{}, fmt.Errorf("probe %s --help: %w", bin, err)
	}
	return ParseCapabilities(string(out)), nil
}

// ParseCapabilities extracts chat template support from llama-server help
// text: whether --chat-template exists and, if listed, the built-in templates.
func ParseCapabilities(help string) settings.Capabilities {
	var c settings.Capabilities
	if !strings.Contains(help, "--chat-template") {
		return c
	}
	c.ChatTemplate = true

	const marker = "list of built-in templates:"
	idx := strings.Index(help, marker)
	if idx < 0 {
		return c
	}
	sc := bufio.NewScanner(strings.NewReader(help[idx+len(marker):]))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			if len(c.Templates) > 0 {
				break
			}
			continue
		}
		if strings.HasPrefix(line, "(env:") || strings.HasPrefix(line, "-") {
			break
		}
		for _, tok := range strings.Split(line, ",") {
			tok = strings.TrimSpace(tok)
			if templateName.MatchString(tok) {
				c.Templates = append(c.Templates, tok)
			}
		}
	}
	return c
}
