package nostrcrypto

import (
	"crypto/rand"
	"encoding/hex"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/stretchr/testify/require"
)

func randChallenge(t *testing.T) string {
	t.Helper()
	var b [32]byte
	_, err := rand.Read(b[:])
	require.NoError(t, err)
	return hex.EncodeToString(b[:])
}

func TestVerifyChallenge(t *testing.T) {
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	xonly := xonlyOf(priv)

	challenge := randChallenge(t)
	sig, err := signChallenge(challenge, priv)
	require.NoError(t, err)

	ok, err := VerifyChallenge(challenge, sig, xonly)
	require.NoError(t, err)
	require.True(t, ok)

	// altering the challenge must invalidate the signature
	other := randChallenge(t)
	ok, err = VerifyChallenge(other, sig, xonly)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestVerifyChallengeRejectsMalformedInput(t *testing.T) {
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	xonly := xonlyOf(priv)

	_, err = VerifyChallenge("not-hex", "deadbeef", xonly)
	require.Error(t, err)

	_, err = VerifyChallenge(randChallenge(t), "not-hex-sig", xonly)
	require.Error(t, err)
}

func TestVerifyPayloadRoundTrip(t *testing.T) {
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	xonly := xonlyOf(priv)

	payload := NotificationSendPayload{
		Kind:     "BillAccepted",
		ID:       "bitcrtB7nSVpa37KKGZvcz1Qz7TRRC3MvLp38FMJXbXiGaUQYt",
		Receiver: "npub1ypdcmmqjhj0g086m29a2xgvj5f2saz9dem372nkzcu55sqjk3lhsu057p8",
		Sender:   "npub1ypdcmmqjhj0g086m29a2xgvj5f2saz9dem372nkzcu55sqjk3lhsu057p8",
	}

	sig, err := signPayload(payload, priv)
	require.NoError(t, err)

	ok, err := VerifyPayload(payload, sig, xonly)
	require.NoError(t, err)
	require.True(t, ok)

	// altering any field must invalidate the signature
	altered := payload
	altered.ID = altered.ID + "x"
	ok, err = VerifyPayload(altered, sig, xonly)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCanonicalBytesFieldOrderAndLengthPrefix(t *testing.T) {
	payload := ProxyReqPayload{Npub: "ab", URL: "https://x"}
	got := canonicalBytes(payload)

	// "ab" (len 2) then "https://x" (len 9), little-endian uint32 prefixes.
	want := []byte{2, 0, 0, 0, 'a', 'b', 9, 0, 0, 0}
	want = append(want, "https://x"...)
	require.Equal(t, want, got)
}

func TestNpubRoundTrip(t *testing.T) {
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	xonly := xonlyOf(priv)

	encoded, err := EncodeNpub(xonly)
	require.NoError(t, err)
	require.Contains(t, encoded, "npub1")

	decoded, err := DecodeNpub(encoded)
	require.NoError(t, err)
	require.Equal(t, xonly, decoded)
}

func TestDecodeNpubRejectsWrongPrefix(t *testing.T) {
	// "npub1..." encoded as "nsec1..." should be rejected.
	_, err := DecodeNpub("nsec1qqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqqh5mq8d")
	require.Error(t, err)
}

func TestAnonymizeNpub(t *testing.T) {
	require.Equal(t,
		"npub1*******7p8",
		AnonymizeNpub("npub1ypdcmmqjhj0g086m29a2xgvj5f2saz9dem372nkzcu55sqjk3lhsu057p8"))
	require.Equal(t, "npub1*******0g0", AnonymizeNpub("npub1ypdcmmqjhj0g0"))
	require.Equal(t, "npub1*******", AnonymizeNpub(""))
}

func TestAnonymizeEmail(t *testing.T) {
	require.Equal(t, "al***@***com", AnonymizeEmail("alice@example.com"))
	require.Equal(t, "***@***.at", AnonymizeEmail("ae@ee.at"))
	require.Equal(t, "****@*****", AnonymizeEmail(""))
}
