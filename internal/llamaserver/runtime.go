package llamaserver

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"llamalaunch/internal/common/fsutil"
)

// BinaryName is the llama.cpp server executable looked up on PATH.
const BinaryName = "llama-server"

// DiscoverBin resolves the llama-server binary. A configured path wins and
// must point at a file; otherwise common install locations are tried, then PATH.
func DiscoverBin(configured string) (string, error) {
	if p := strings.TrimSpace(configured); p != "" {
		exp, err := fsutil.ExpandHome(p)
		if err != nil {
			return "", err
		}
		if !fsutil.IsRegularFile(exp) {
			return "", ErrDependencyUnavailable(fmt.Sprintf("llama-server not found or not a file: %s", exp))
		}
		return exp, nil
	}
	for _, p := range candidateBins() {
		if fsutil.IsRegularFile(p) {
			return p, nil
		}
	}
	if lp, err := exec.LookPath(BinaryName); err == nil {
		return lp, nil
	}
	return "", ErrDependencyUnavailable("llama-server not found: set --llama-bin or install llama.cpp")
}

func candidateBins() []string {
	var out []string
	if home, err := os.UserHomeDir(); err == nil {
		out = append(out,
			filepath.Join(home, "apps", "llama.cpp", "build", "bin", BinaryName),
			filepath.Join(home, "llama.cpp", "build", "bin", BinaryName),
			filepath.Join(home, ".local", "bin", BinaryName),
		)
	}
	return append(out, "/usr/local/bin/"+BinaryName, "/opt/homebrew/bin/"+BinaryName)
}
