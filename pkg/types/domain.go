package types

// Model represents a GGUF model file discovered on disk.
type Model struct {
	// Stable identifier for the model (the file name).
	// example: tinyllama.Q4_K_M.gguf
	ID string `json:"id" example:"tinyllama.Q4_K_M.gguf"`
	// Absolute path to the model file on disk.
	// example: /home/user/models/tinyllama.Q4_K_M.gguf
	Path string `json:"path" example:"/home/user/models/tinyllama.Q4_K_M.gguf"`
	// Quantization level parsed from the file name, if any.
	// example: Q4_K_M
	Quant string `json:"quant,omitempty" example:"Q4_K_M"`
	// Size of the file in bytes.
	// example: 668788096
	SizeBytes uint64 `json:"size_bytes" example:"668788096"`
}
