package blossom

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/stretchr/testify/require"

	"github.com/bitcredit-protocol/bcr-relay/store"
)

func uncompressedPubKeyBytes(t *testing.T) []byte {
	t.Helper()
	priv, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	return priv.PubKey().SerializeUncompressed()
}

func TestUploadRejectsEmptyBody(t *testing.T) {
	h := NewHandler(newFakeFileStore(), "https://relay.example")
	req := httptest.NewRequest(http.MethodPut, "/upload", bytes.NewReader(nil))
	rec := httptest.NewRecorder()
	h.Upload(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadRejectsTooSmallBody(t *testing.T) {
	h := NewHandler(newFakeFileStore(), "https://relay.example")
	req := httptest.NewRequest(http.MethodPut, "/upload", bytes.NewReader(make([]byte, 64)))
	rec := httptest.NewRecorder()
	h.Upload(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadRejectsInvalidPubKeyPrefix(t *testing.T) {
	h := NewHandler(newFakeFileStore(), "https://relay.example")
	body := make([]byte, 65)
	body[0] = 0xFF // not a valid pubkey prefix
	req := httptest.NewRequest(http.MethodPut, "/upload", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.Upload(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadRejectsOversizedBody(t *testing.T) {
	h := NewHandler(newFakeFileStore(), "https://relay.example")
	body := append(uncompressedPubKeyBytes(t), make([]byte, maxFileSizeBytes)...)
	req := httptest.NewRequest(http.MethodPut, "/upload", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.Upload(rec, req)
	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestUploadAcceptsValidBody(t *testing.T) {
	st := newFakeFileStore()
	h := NewHandler(st, "https://relay.example")

	body := append(uncompressedPubKeyBytes(t), []byte("encrypted payload")...)
	req := httptest.NewRequest(http.MethodPut, "/upload", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.Upload(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var desc blobDescriptor
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &desc))

	wantHash := sha256.Sum256(body)
	require.Equal(t, hex.EncodeToString(wantHash[:]), desc.SHA256)
	require.Equal(t, len(body), desc.Size)
	require.True(t, strings.HasSuffix(desc.URL, desc.SHA256))
	require.Contains(t, st.files, wantHash)
}

func TestGetReturnsStoredFile(t *testing.T) {
	st := newFakeFileStore()
	hash := sha256.Sum256([]byte("content"))
	st.files[hash] = store.File{Hash: hash, Bytes: []byte("content"), Size: 7}
	h := NewHandler(st, "https://relay.example")

	req := httptest.NewRequest(http.MethodGet, "/"+hex.EncodeToString(hash[:]), nil)
	rec := httptest.NewRecorder()
	h.Get(rec, req, hex.EncodeToString(hash[:]))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/octet-stream", rec.Header().Get("Content-Type"))
	require.Equal(t, "content", rec.Body.String())
}

func TestGetReturns404ForUnknownHash(t *testing.T) {
	h := NewHandler(newFakeFileStore(), "https://relay.example")
	hash := sha256.Sum256([]byte("nope"))
	req := httptest.NewRequest(http.MethodGet, "/"+hex.EncodeToString(hash[:]), nil)
	rec := httptest.NewRecorder()
	h.Get(rec, req, hex.EncodeToString(hash[:]))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetReturns404ForMalformedHash(t *testing.T) {
	h := NewHandler(newFakeFileStore(), "https://relay.example")
	req := httptest.NewRequest(http.MethodGet, "/not-a-hash", nil)
	rec := httptest.NewRecorder()
	h.Get(rec, req, "not-a-hash")
	require.Equal(t, http.StatusNotFound, rec.Code)
}
