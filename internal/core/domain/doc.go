// Package domain holds the event QA vocabulary shared by every layer.
//
// An Event is one normalised agenda record. Ingestion splits its text into
// Chunks whose order matches the vectors in the index, and a SnapshotInfo
// names the (index, metadata) pair written together. Questions come back as
// an Answer carrying the response and the chunk texts it was grounded on.
//
// Only the standard library may be imported here.
package domain
