package nostrcrypto

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2/schnorr"
)

// decodeSignature hex-decodes a 128-character BIP-340 Schnorr signature,
// trimming surrounding whitespace first.
func decodeSignature(sig string) (*schnorr.Signature, error) {
	raw, err := hex.DecodeString(strings.TrimSpace(sig))
	if err != nil {
		return nil, fmt.Errorf("nostrcrypto: signature is not valid hex: %w", err)
	}
	parsed, err := schnorr.ParseSignature(raw)
	if err != nil {
		return nil, fmt.Errorf("nostrcrypto: malformed schnorr signature: %w", err)
	}
	return parsed, nil
}

// VerifyChallenge verifies a Schnorr signature over a hex-encoded 32-byte
// challenge. The message digest is the raw challenge bytes, no further
// hashing.
func VerifyChallenge(challengeHex string, sig string, xonly [32]byte) (bool, error) {
	challenge, err := hex.DecodeString(challengeHex)
	if err != nil {
		return false, fmt.Errorf("nostrcrypto: challenge is not valid hex: %w", err)
	}
	if len(challenge) != 32 {
		return false, fmt.Errorf("nostrcrypto: challenge must be 32 bytes, got %d", len(challenge))
	}

	parsedSig, err := decodeSignature(sig)
	if err != nil {
		return false, err
	}

	pubKey, err := schnorr.ParsePubKey(xonly[:])
	if err != nil {
		return false, fmt.Errorf("nostrcrypto: invalid x-only public key: %w", err)
	}

	return parsedSig.Verify(challenge, pubKey), nil
}

// VerifyPayload canonically serializes payload, SHA-256 hashes it, and
// verifies the Schnorr signature over that digest.
func VerifyPayload(payload CanonicalPayload, sig string, xonly [32]byte) (bool, error) {
	digest := sha256.Sum256(canonicalBytes(payload))

	parsedSig, err := decodeSignature(sig)
	if err != nil {
		return false, err
	}

	pubKey, err := schnorr.ParsePubKey(xonly[:])
	if err != nil {
		return false, fmt.Errorf("nostrcrypto: invalid x-only public key: %w", err)
	}

	return parsedSig.Verify(digest[:], pubKey), nil
}
