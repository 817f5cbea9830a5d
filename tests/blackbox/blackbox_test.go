package blackbox

import (
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"testing"
	"time"
)

const frontURL = "http://127.0.0.1:12000"

func projectRootFromThisFile(t *testing.T) string {
	t.Helper()
	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("runtime.Caller failed")
	}
	// this file: <root>/tests/blackbox/blackbox_test.go
	return filepath.Dir(filepath.Dir(filepath.Dir(thisFile)))
}

func goBuild(t *testing.T, name, pkg string) string {
	t.Helper()
	binPath := filepath.Join(t.TempDir(), name)
	cmd := exec.Command("go", "build", "-o", binPath, pkg)
	cmd.Dir = projectRootFromThisFile(t)
	cmd.Env = append(os.Environ(), "CGO_ENABLED=0")
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("go build %s failed: %v\n%s", pkg, err, string(out))
	}
	return binPath
}

func buildBinary(t *testing.T) string {
	return goBuild(t, "llamalaunch", "./cmd/llamalaunch")
}

func buildFakeRuntime(t *testing.T) string {
	return goBuild(t, "llama-server", "./internal/llamaserver/testdata/fake_llama_server.go")
}

// cleanEnv returns the process environment without the model variables.
func cleanEnv(extra ...string) []string {
	var env []string
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, "MODEL_PATH=") || strings.HasPrefix(kv, "N_CTX=") || strings.HasPrefix(kv, "N_THREADS=") {
			continue
		}
		env = append(env, kv)
	}
	return append(env, extra...)
}

func exitCode(t *testing.T, err error) int {
	t.Helper()
	if err == nil {
		return 0
	}
	var ee *exec.ExitError
	if !errors.As(err, &ee) {
		t.Fatalf("run: %v", err)
	}
	return ee.ExitCode()
}

func TestBlackbox_ValidationFailuresExitOne(t *testing.T) {
	if testing.Short() {
		t.Skip("short mode")
	}
	bin := buildBinary(t)
	dir := t.TempDir()
	model := filepath.Join(dir, "tiny.gguf")
	if err := os.WriteFile(model, []byte("GGUF"), 0o644); err != nil {
		t.Fatal(err)
	}
	cases := []struct {
		name string
		env  []string
		want string
	}{
		{"missing", nil, "MODEL_PATH is not set"},
		{"no file", []string{"MODEL_PATH=" + filepath.Join(dir, "nope.gguf")}, "does not exist"},
		{"parse", []string{"MODEL_PATH=" + model, "N_THREADS=four"}, "not a valid integer"},
		{"range", []string{"MODEL_PATH=" + model, "N_CTX=0"}, "must be positive"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cmd := exec.Command(bin, "--env-file", filepath.Join(dir, "none.env"), "--config", writeConfig(t))
			cmd.Env = cleanEnv(tc.env...)
			out, err := cmd.CombinedOutput()
			if got := exitCode(t, err); got != 1 {
				t.Fatalf("exit code = %d, want 1; output:\n%s", got, out)
			}
			if !strings.Contains(string(out), tc.want) {
				t.Fatalf("output %q does not contain %q", out, tc.want)
			}
		})
	}
}

func writeConfig(t *testing.T, lines ...string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	body := "log_level: error\n" + strings.Join(lines, "\n")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestBlackbox_CheckJSON(t *testing.T) {
	if testing.Short() {
		t.Skip("short mode")
	}
	bin := buildBinary(t)
	model := filepath.Join(t.TempDir(), "tiny.gguf")
	if err := os.WriteFile(model, []byte("GGUF"), 0o644); err != nil {
		t.Fatal(err)
	}
	cmd := exec.Command(bin, "check", "--json", "--config", writeConfig(t), "--llama-bin", filepath.Join(t.TempDir(), "absent"))
	cmd.Env = cleanEnv("MODEL_PATH="+model, "N_CTX=2048", "N_THREADS=8")
	out, err := cmd.Output()
	if code := exitCode(t, err); code != 0 {
		t.Fatalf("exit code %d", code)
	}
	var plan struct {
		Model struct {
			NCtx       int    `json:"n_ctx"`
			NThreads   int    `json:"n_threads"`
			NBatch     int    `json:"n_batch"`
			ChatFormat string `json:"chat_format"`
			Alias      string `json:"model_alias"`
		} `json:"model_settings"`
		Server struct {
			Host string `json:"host"`
			Port int    `json:"port"`
		} `json:"server_settings"`
	}
	if err := json.Unmarshal(out, &plan); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if plan.Model.NCtx != 2048 || plan.Model.NThreads != 8 || plan.Model.NBatch != 512 || plan.Model.ChatFormat != "chatml" || plan.Model.Alias != "tiny.gguf" {
		t.Fatalf("unexpected model settings %+v", plan.Model)
	}
	if plan.Server.Host != "0.0.0.0" || plan.Server.Port != 12000 {
		t.Fatalf("unexpected server settings %+v", plan.Server)
	}
}

func TestBlackbox_ServeAndShutdown(t *testing.T) {
	if testing.Short() {
		t.Skip("short mode")
	}
	if ln, err := net.Listen("tcp", "0.0.0.0:12000"); err != nil {
		t.Skipf("port 12000 unavailable: %v", err)
	} else {
		_ = ln.Close()
	}
	bin := buildBinary(t)
	fake := buildFakeRuntime(t)
	model := filepath.Join(t.TempDir(), "tiny.gguf")
	if err := os.WriteFile(model, []byte("GGUF"), 0o644); err != nil {
		t.Fatal(err)
	}

	cmd := exec.Command(bin, "serve", "--config", writeConfig(t, "ready_timeout_seconds: 10"), "--llama-bin", fake)
	cmd.Env = cleanEnv("MODEL_PATH="+model, "N_CTX=1024", "N_THREADS=2")
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(func() { _ = cmd.Process.Kill() })

	deadline := time.Now().Add(15 * time.Second)
	for {
		resp, err := http.Get(frontURL + "/readyz")
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				break
			}
		}
		if time.Now().After(deadline) {
			t.Fatalf("front did not become ready in time")
		}
		time.Sleep(50 * time.Millisecond)
	}

	resp, err := http.Post(frontURL+"/v1/chat/completions", "application/json",
		strings.NewReader(`{"model":"tiny.gguf","messages":[{"role":"user","content":"hi"}]}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "hello") {
		t.Fatalf("completion: %d %s", resp.StatusCode, body)
	}

	resp, err = http.Get(frontURL + "/status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	var st struct {
		State  string `json:"state"`
		Models []struct {
			ID         string `json:"id"`
			ChatFormat string `json:"chat_format"`
			NCtx       int    `json:"n_ctx"`
		} `json:"models"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&st)
	_ = resp.Body.Close()
	if st.State != "ready" || len(st.Models) != 1 || st.Models[0].ChatFormat != "chatml" || st.Models[0].NCtx != 1024 {
		t.Fatalf("unexpected status %+v", st)
	}

	if err := cmd.Process.Signal(syscall.SIGINT); err != nil {
		t.Fatalf("signal: %v", err)
	}
	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()
	select {
	case err := <-done:
		if code := exitCode(t, err); code != 0 {
			t.Fatalf("exit code after SIGINT = %d", code)
		}
	case <-time.After(15 * time.Second):
		t.Fatal("llamalaunch did not exit after SIGINT")
	}
}
