// Package model defines the data structures shared by idguard's packages.
//
// The main types are:
//   - Finding, Breach and PlatformMention: normalized evidence from providers
//   - ExposureResult and CombinedReport: the output of an exposure check
//   - HygieneScore and HygieneReport: the scored questionnaire and its advice
//   - Report: the shape persisted in the report store
//
// Models live in their own package so providers, the aggregator, the report
// writers and the store can share them without import cycles. Every type is
// JSON serializable; the JSON form is what the store keeps and the API returns.
package model
