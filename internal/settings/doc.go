// Package settings holds the records handed to the server application
// factory: ModelSettings (how to load and configure a model) and
// ServerSettings (how the HTTP front binds and behaves), plus the chat-format
// registry and the Builder that decides whether a chat format can be honored.
package settings
