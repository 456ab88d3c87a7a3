// Package tor connects idguard's dark-web search to the Tor network.
//
// A Session is either an external SOCKS5 proxy (checked with a SOCKS5
// handshake before use) or a private daemon started through tornago. Its
// HTTP client is handed to the dark-web search adapter.
//
// The package also validates v3 onion addresses (checksum included), which
// the dark-web search uses to drop malformed result references.
package tor
