// Package provider wraps the external data sources behind a uniform contract.
//
// Every adapter returns a Result: a list of items on success, or the reason
// the provider could not answer. Adapters never return errors or panic past
// their boundary, so the aggregator treats "found nothing" and "failed" as
// ordinary outcomes.
//
// The HTTP adapters share one transport (client.go) carrying a per-adapter
// rate limiter, a RetryPolicy and a request timeout. The asynchronous leak
// index is split into Submit and Poll, and AsyncPoller drives the two phases
// with a bounded number of polls.
package provider
