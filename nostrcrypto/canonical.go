package nostrcrypto

import "encoding/binary"

// CanonicalPayload is implemented by every request shape that gets
// Schnorr-signed as a unit (rather than as a bare hex challenge).
// canonicalFields returns the payload's string fields in declaration
// order — the only thing the wire contract cares about.
type CanonicalPayload interface {
	canonicalFields() []string
}

// NotificationSendPayload is the payload signed by the sender of a
// notification (POST /notifications/v1/send).
type NotificationSendPayload struct {
	Kind     string `json:"kind"`
	ID       string `json:"id"`
	Receiver string `json:"receiver"`
	Sender   string `json:"sender"`
}

func (p NotificationSendPayload) canonicalFields() []string {
	return []string{p.Kind, p.ID, p.Receiver, p.Sender}
}

// ProxyReqPayload is the payload signed by the caller of the safe proxy
// (POST /proxy/v1/req).
type ProxyReqPayload struct {
	Npub string `json:"npub"`
	URL  string `json:"url"`
}

func (p ProxyReqPayload) canonicalFields() []string {
	return []string{p.Npub, p.URL}
}

// canonicalBytes serializes payload the only way verifier and signer are
// ever allowed to agree on it: each field as a 4-byte little-endian
// length prefix followed by its raw UTF-8 bytes, fields concatenated in
// declaration order, no padding and no separators.
func canonicalBytes(payload CanonicalPayload) []byte {
	fields := payload.canonicalFields()

	size := 0
	for _, f := range fields {
		size += 4 + len(f)
	}

	buf := make([]byte, 0, size)
	var lenBuf [4]byte
	for _, f := range fields {
		binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(f)))
		buf = append(buf, lenBuf[:]...)
		buf = append(buf, f...)
	}
	return buf
}
