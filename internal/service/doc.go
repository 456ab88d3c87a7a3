// Package service runs idguard's checks end to end.
//
// A Service takes one user request (an exposure check, a batch of them, or
// a submitted questionnaire), runs the core components, assembles the
// persisted report shape and stores it. Storage is best effort: a report
// that could not be saved is still returned, with Outcome.SaveErr set.
//
// The CLI and the HTTP API are both thin wrappers around a Service.
package service
