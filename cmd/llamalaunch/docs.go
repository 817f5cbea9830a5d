package main

// General API documentation for swaggo. Regenerate internal/docs with
// `swag init -g cmd/llamalaunch/docs.go -o internal/docs`.
//
// @title           llamalaunch API
// @version         1.0
// @description     OpenAI-compatible front for a llama.cpp model server.
//
// @contact.name   llamalaunch maintainers
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
