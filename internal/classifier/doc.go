// Package classifier is the HTTP client of the remote vegan classifier.
//
// The service exposes two endpoints:
//
//	POST {endpoint}/api/analyze   PageContent + user_avoided_ingredients -> AnalysisResult
//	GET  {endpoint}/health        liveness probe
//
// Any non-2xx response from /api/analyze is a hard failure. The client never
// retries: a failed analysis is simply absent, and the next click or manual
// trigger starts over.
package classifier
