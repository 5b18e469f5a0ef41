package nostrcrypto

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
)

// signChallenge signs a hex-encoded 32-byte challenge with priv.
func signChallenge(challengeHex string, priv *btcec.PrivateKey) (string, error) {
	challenge, err := hex.DecodeString(challengeHex)
	if err != nil {
		return "", err
	}
	sig, err := schnorr.Sign(priv, challenge)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(sig.Serialize()), nil
}

// signPayload signs the canonical encoding of payload with priv.
func signPayload(payload CanonicalPayload, priv *btcec.PrivateKey) (string, error) {
	digest := sha256.Sum256(canonicalBytes(payload))
	sig, err := schnorr.Sign(priv, digest[:])
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(sig.Serialize()), nil
}

// xonlyOf returns the 32-byte x-only public key for priv.
func xonlyOf(priv *btcec.PrivateKey) [32]byte {
	var out [32]byte
	copy(out[:], schnorr.SerializePubKey(priv.PubKey()))
	return out
}
