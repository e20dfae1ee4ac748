// Package services holds the question-answering core: ingestion builds
// snapshots, AskService serves them, SettingsService edits configuration.
//
// Services only see driven ports. Providers, storage and session backends
// are chosen by the composition root.
package services
