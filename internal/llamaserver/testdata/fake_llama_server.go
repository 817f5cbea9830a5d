package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"
)

const helpText = `----- common params -----

-h,    --help, --usage                  print usage and exit
-t,    --threads N                      number of threads to use during generation (default: -1)
-c,    --ctx-size N                     size of the prompt context (default: 4096)
-b,    --batch-size N                   logical maximum batch size (default: 2048)
-m,    --model FNAME                    model path
`

const chatTemplateHelp = `--chat-template JINJA_TEMPLATE           set custom jinja chat template (default: template taken from model's
                                        metadata)
                                        list of built-in templates:
                                        chatglm3, chatglm4, chatml, command-r, deepseek, deepseek2, gemma,
                                        llama2, llama3, mistral-v1, openchat, phi3, vicuna, zephyr
                                        (env: LLAMA_ARG_CHAT_TEMPLATE)
--host HOST                             ip address to listen (default: 127.0.0.1)
--port PORT                             port to listen (default: 8080)
`

func main() {
	for _, a := range os.Args[1:] {
		if a == "--help" || a == "-h" {
			fmt.Print(helpText)
			if os.Getenv("FAKE_LLAMA_NO_CHAT_TEMPLATE") != "1" {
				fmt.Print(chatTemplateHelp)
			}
			return
		}
	}
	if msg := os.Getenv("FAKE_LLAMA_EXIT"); msg != "" {
		fmt.Fprintln(os.Stderr, msg)
		os.Exit(3)
	}

	var (
		model, host, port, alias, tmpl string
		ctxSize, threads, batch, ngl   int
		verbose                        bool
	)
	// Accept the subset of llama-server flags passed by the launcher.
	flag.StringVar(&model, "m", "", "model path")
	flag.StringVar(&host, "host", "127.0.0.1", "host")
	flag.StringVar(&port, "port", "0", "port")
	flag.StringVar(&alias, "alias", "", "model alias")
	flag.StringVar(&tmpl, "chat-template", "", "chat template")
	flag.IntVar(&ctxSize, "c", 0, "context size")
	flag.IntVar(&threads, "t", 0, "threads")
	flag.IntVar(&batch, "b", 0, "batch size")
	flag.IntVar(&ngl, "ngl", 0, "gpu layers")
	flag.BoolVar(&verbose, "verbose", false, "verbose")
	flag.Parse()
	if alias == "" {
		alias = model
	}
	fmt.Fprintf(os.Stderr, "fake llama-server loading %s\n", model)

	loadDelay, _ := strconv.Atoi(os.Getenv("FAKE_LLAMA_LOAD_DELAY_MS"))
	loadedAt := time.Now().Add(time.Duration(loadDelay) * time.Millisecond)

	mux := http.NewServeMux()
	if os.Getenv("FAKE_LLAMA_NO_HEALTH") != "1" {
		mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			if time.Now().Before(loadedAt) {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"error":{"message":"Loading model"}}`))
				return
			}
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})
	}
	mux.HandleFunc("/v1/models", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"object": "list", "data": []map[string]any{{"id": alias, "object": "model"}}})
	})
	mux.HandleFunc("/props", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"model": model, "alias": alias, "chat_template": tmpl,
			"n_ctx": ctxSize, "n_threads": threads, "n_batch": batch, "ngl": ngl,
		})
	})
	completion := func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Stream bool `json:"stream"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if !req.Stream {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{"model": alias, "choices": []map[string]any{{"text": "hello", "finish_reason": "stop"}}})
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		f := w.(http.Flusher)
		for _, tok := range []string{"hel", "lo"} {
			fmt.Fprintf(w, "data: {\"model\":%q,\"choices\":[{\"text\":%q}]}\n\n", alias, tok)
			f.Flush()
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
		f.Flush()
	}
	mux.HandleFunc("/v1/completions", completion)
	mux.HandleFunc("/v1/chat/completions", completion)

	srv := &http.Server{Addr: host + ":" + port, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Wait for SIGTERM then shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	<-sigCh
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
}
