// Package api exposes the ask pipeline over HTTP using gin.
//
// Routes:
//
//	POST /ask          {question, session_id} -> {question, response, context}
//	GET|POST /rebuild  reload the persisted snapshot
//	GET /health        serving state
//	GET /metadata      context texts of the most recent ask
//
// Errors use the envelope {"error": {"message", "code"}}.
package api
