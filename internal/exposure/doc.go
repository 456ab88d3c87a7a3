// Package exposure checks how exposed an e-mail address or a username is.
//
// The Aggregator fans a query out to the providers of a provider.Registry,
// merges their answers into one model.ExposureResult, optionally drops dead
// links through a validator, and derives the risk level from what survived.
// A failing or panicking provider only costs its own signal; the check as a
// whole never fails once the input is accepted.
//
// Risk rules live in risk.go as pure functions so they can be tested
// without any provider.
package exposure
