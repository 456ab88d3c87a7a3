// Package validator drops findings whose links are dead or malformed.
//
// Search engine dorks in particular surface stale and unrelated links, and
// a dead link in an exposure report is worse than no link. Validate probes
// every distinct URL of a result once (HEAD, then a ranged GET when HEAD is
// refused) and returns a copy holding only the findings that survived.
// Findings without a URL, such as onion references and leak index ids,
// always survive.
package validator
