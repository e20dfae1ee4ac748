// Package driving holds the service interfaces the front ends call into.
// The CLI, the HTTP API, the MCP server and the chat TUI only ever see
// AskService, IngestService and SettingsService; internal/core/services
// provides the implementations.
package driving
