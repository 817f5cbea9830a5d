package types

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: unknown model "gpt-4"
	Error string `json:"error" example:"unknown model \"gpt-4\""`
	// HTTP status code.
	// example: 404
	Code int `json:"code" example:"404"`
}

// ModelStatus summarizes one served model for /status.
type ModelStatus struct {
	// Alias the model is served under (the OpenAI "model" field).
	// example: tinyllama.Q4_K_M.gguf
	ID string `json:"id" example:"tinyllama.Q4_K_M.gguf"`
	// Path to the model file on disk.
	// example: /home/user/models/tinyllama.Q4_K_M.gguf
	Path string `json:"path" example:"/home/user/models/tinyllama.Q4_K_M.gguf"`
	// Lifecycle state of the backing runtime (starting, ready, exited, stopped).
	// example: ready
	State string `json:"state" example:"ready"`
	// Chat format applied by the runtime, empty when none.
	// example: chatml
	ChatFormat string `json:"chat_format,omitempty" example:"chatml"`
	// Context window size in tokens.
	// example: 4096
	NCtx int `json:"n_ctx" example:"4096"`
	// Number of CPU threads.
	// example: 16
	NThreads int `json:"n_threads" example:"16"`
	// Prompt-processing batch size.
	// example: 512
	NBatch int `json:"n_batch" example:"512"`
	// Size of the model file in bytes.
	// example: 668788096
	SizeBytes uint64 `json:"size_bytes" example:"668788096"`
	// Loopback port of the backing runtime.
	// example: 30001
	Port int `json:"port,omitempty" example:"30001"`
	// Process ID of the backing runtime.
	// example: 12345
	PID int `json:"pid,omitempty" example:"12345"`
	// Last runtime error, if the runtime exited.
	LastError string `json:"last_error,omitempty"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Identifier of this server run.
	// example: 5f0c6c8e-8d0c-4e59-9d1f-3b8a0e2c7a11
	RunID string `json:"run_id" example:"5f0c6c8e-8d0c-4e59-9d1f-3b8a0e2c7a11"`
	// Overall state: ready when every runtime is ready, degraded otherwise.
	// example: ready
	State string `json:"state" example:"ready"`
	// Bind host of the HTTP front.
	// example: 0.0.0.0
	Host string `json:"host" example:"0.0.0.0"`
	// Bind port of the HTTP front.
	// example: 12000
	Port int `json:"port" example:"12000"`
	// Whether a new completion interrupts the one in flight.
	// example: true
	InterruptRequests bool `json:"interrupt_requests" example:"true"`
	// Whether idle event streams receive ping comments.
	// example: true
	PingEvents bool `json:"ping_events" example:"true"`
	// Uptime of the server in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
	// Served models.
	Models []ModelStatus `json:"models"`
}

// ModelCard is one entry of the OpenAI-compatible model list.
type ModelCard struct {
	// example: tinyllama.Q4_K_M.gguf
	ID string `json:"id" example:"tinyllama.Q4_K_M.gguf"`
	// example: model
	Object string `json:"object" example:"model"`
	// example: 1700000000
	Created int64 `json:"created" example:"1700000000"`
	// example: llamalaunch
	OwnedBy string `json:"owned_by" example:"llamalaunch"`
}

// ModelList is returned by GET /v1/models.
type ModelList struct {
	// example: list
	Object string      `json:"object" example:"list"`
	Data   []ModelCard `json:"data"`
}
