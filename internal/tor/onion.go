package tor

import (
	"encoding/base32"
	"regexp"
	"strings"

	"golang.org/x/crypto/sha3"
)

const (
	// OnionSuffix ends every onion address.
	OnionSuffix = ".onion"

	// onionV3Version is the last byte of a decoded v3 address.
	onionV3Version = 0x03

	// onionV3DecodedLength is pubkey (32) + checksum (2) + version (1).
	onionV3DecodedLength = 35
)

var (
	// onionV3Pattern matches a whole v3 address: 56 base32 characters and the suffix.
	onionV3Pattern = regexp.MustCompile(`^[a-z2-7]{56}\.onion$`)

	// onionV3InText finds v3 addresses inside arbitrary text.
	onionV3InText = regexp.MustCompile(`[a-z2-7]{56}\.onion`)

	// checksumPrefix starts the hashed data of the v3 address checksum.
	checksumPrefix = []byte(".onion checksum")
)

// IsValidV3Address reports whether address is a well-formed v3 onion
// address with a correct checksum. Case is ignored.
//
// The checksum is the first two bytes of
// SHA3-256(".onion checksum" || pubkey || version).
func IsValidV3Address(address string) bool {
	address = strings.ToLower(address)
	if !onionV3Pattern.MatchString(address) {
		return false
	}

	decoded, err := base32.StdEncoding.DecodeString(strings.ToUpper(strings.TrimSuffix(address, OnionSuffix)))
	if err != nil || len(decoded) != onionV3DecodedLength {
		return false
	}

	pubkey, checksum, version := decoded[:32], decoded[32:34], decoded[34]
	if version != onionV3Version {
		return false
	}
	want := v3Checksum(pubkey)
	return checksum[0] == want[0] && checksum[1] == want[1]
}

func v3Checksum(pubkey []byte) [2]byte {
	data := make([]byte, 0, len(checksumPrefix)+len(pubkey)+1)
	data = append(data, checksumPrefix...)
	data = append(data, pubkey...)
	data = append(data, onionV3Version)
	sum := sha3.Sum256(data)
	return [2]byte{sum[0], sum[1]}
}

// ExtractV3Addresses returns the distinct valid v3 addresses found in text,
// in order of first appearance. Strings that look like addresses but fail
// the checksum are skipped.
func ExtractV3Addresses(text string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range onionV3InText.FindAllString(strings.ToLower(text), -1) {
		if seen[m] || !IsValidV3Address(m) {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	return out
}

// NormalizeAddress lower-cases address, strips a URL scheme, path and query,
// appends the suffix when missing, and validates the result.
func NormalizeAddress(address string) (string, error) {
	address = strings.ToLower(strings.TrimSpace(address))
	address = strings.TrimPrefix(address, "https://")
	address = strings.TrimPrefix(address, "http://")
	if i := strings.IndexAny(address, "/?#"); i != -1 {
		address = address[:i]
	}
	if !strings.HasSuffix(address, OnionSuffix) {
		address += OnionSuffix
	}
	if !IsValidV3Address(address) {
		return "", ErrInvalidOnionAddress
	}
	return address, nil
}

// AddressFromPublicKey builds the v3 onion address of a 32-byte ed25519 public key.
func AddressFromPublicKey(pubkey []byte) (string, error) {
	if len(pubkey) != 32 {
		return "", ErrInvalidOnionAddress
	}
	sum := v3Checksum(pubkey)
	data := make([]byte, 0, onionV3DecodedLength)
	data = append(data, pubkey...)
	data = append(data, sum[0], sum[1], onionV3Version)
	return strings.ToLower(base32.StdEncoding.EncodeToString(data)) + OnionSuffix, nil
}
