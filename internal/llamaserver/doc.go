// Package llamaserver is the server application factory: it runs one
// llama.cpp llama-server subprocess per model on loopback, waits for each to
// become ready, and fronts them with the HTTP API on the configured address.
package llamaserver
