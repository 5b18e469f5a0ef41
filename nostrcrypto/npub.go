// Package nostrcrypto implements the challenge/payload signing discipline
// shared by every request-signing surface in bcr-relay: bech32 npub
// decoding, BIP-340 Schnorr verification, and the canonical payload
// encoding that the two signed payload shapes share.
package nostrcrypto

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcd/btcutil/bech32"
)

// npubHRP is the bech32 human-readable part for a nostr public key.
const npubHRP = "npub"

// DecodeNpub decodes a bech32-encoded "npub1…" string into its 32-byte
// x-only secp256k1 public key.
func DecodeNpub(npub string) ([32]byte, error) {
	var xonly [32]byte

	hrp, data, err := bech32.Decode(npub)
	if err != nil {
		return xonly, fmt.Errorf("nostrcrypto: invalid bech32 npub: %w", err)
	}
	if hrp != npubHRP {
		return xonly, fmt.Errorf("nostrcrypto: unexpected bech32 prefix %q", hrp)
	}

	raw, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return xonly, fmt.Errorf("nostrcrypto: invalid bech32 data: %w", err)
	}
	if len(raw) != 32 {
		return xonly, fmt.Errorf("nostrcrypto: npub decodes to %d bytes, want 32", len(raw))
	}

	copy(xonly[:], raw)

	// ParsePubKey validates that this is actually a point on the curve,
	// not just 32 arbitrary bytes.
	if _, err := schnorr.ParsePubKey(xonly[:]); err != nil {
		return xonly, fmt.Errorf("nostrcrypto: npub is not a valid secp256k1 x-only key: %w", err)
	}

	return xonly, nil
}

// EncodeNpub encodes a 32-byte x-only public key as a bech32 "npub1…"
// string. Used only by tests to build fixtures; production code only
// ever verifies npubs supplied by callers.
func EncodeNpub(xonly [32]byte) (string, error) {
	data, err := bech32.ConvertBits(xonly[:], 8, 5, true)
	if err != nil {
		return "", fmt.Errorf("nostrcrypto: converting bits: %w", err)
	}
	return bech32.Encode(npubHRP, data)
}

// AnonymizeNpub masks the middle of a bech32 npub for log/page display,
// keeping the "npub1" prefix and the last 3 characters.
func AnonymizeNpub(npub string) string {
	const tailLen = 3
	if len(npub) < tailLen {
		return "npub1*******"
	}
	return "npub1*******" + npub[len(npub)-tailLen:]
}
