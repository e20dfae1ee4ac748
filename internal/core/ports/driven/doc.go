// Package driven holds the interfaces the core services reach out through:
// model providers, snapshot and session storage, settings persistence, and
// the ingestion stages (Connector, Normaliser, PostProcessor).
//
// Adapters under internal/adapters/driven, internal/connectors,
// internal/normalisers and internal/postprocessors implement them. This
// package depends on domain and nothing else.
package driven
