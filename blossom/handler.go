// Package blossom implements the relay's content-addressed blob store:
// PUT /upload and GET /{hash}, plus the unimplemented Blossom BUD-01
// surface the upstream protocol expects a server to at least answer.
package blossom

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"

	"github.com/bitcredit-protocol/bcr-relay/store"
)

const (
	maxFileSizeBytes  = 1_000_000
	encryptionKeyLen  = 65
	tooBigMsg         = "File too big - max 1000000 bytes"
	emptyBodyMsg      = "Empty body"
	invalidBodyMsg    = "Invalid body"
	notFoundMsg       = "NOT_FOUND"
	internalServerMsg = "INTERNAL_SERVER_ERROR"
)

// Handler serves the blob store endpoints.
type Handler struct {
	Store   store.FileStore
	HostURL string
}

// NewHandler builds a Handler.
func NewHandler(st store.FileStore, hostURL string) *Handler {
	return &Handler{Store: st, HostURL: hostURL}
}

type blobDescriptor struct {
	SHA256   string `json:"sha256"`
	URL      string `json:"url"`
	Size     int    `json:"size"`
	Uploaded int64  `json:"uploaded"`
}

// Upload handles PUT /upload: checks the size bound, the leading
// uncompressed-secp256k1-pubkey structural heuristic, hashes the body,
// and persists it.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxFileSizeBytes+1))
	if err != nil {
		http.Error(w, internalServerMsg, http.StatusInternalServerError)
		return
	}

	size := len(body)
	if size > maxFileSizeBytes {
		http.Error(w, tooBigMsg, http.StatusRequestEntityTooLarge)
		return
	}
	if size == 0 {
		http.Error(w, emptyBodyMsg, http.StatusBadRequest)
		return
	}
	if size < encryptionKeyLen {
		http.Error(w, invalidBodyMsg, http.StatusBadRequest)
		return
	}
	if _, err := btcec.ParsePubKey(body[:encryptionKeyLen]); err != nil {
		http.Error(w, invalidBodyMsg, http.StatusBadRequest)
		return
	}

	hash := sha256.Sum256(body)
	if err := h.Store.Insert(r.Context(), store.File{Hash: hash, Bytes: body, Size: int32(size)}); err != nil {
		slog.Error("blossom: upstream error", "op", "Insert", "error", err)
		http.Error(w, internalServerMsg, http.StatusInternalServerError)
		return
	}

	hashHex := hex.EncodeToString(hash[:])
	desc := blobDescriptor{
		SHA256:   hashHex,
		URL:      strings.TrimRight(h.HostURL, "/") + "/" + hashHex,
		Size:     size,
		Uploaded: time.Now().Unix(),
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(desc)
}

// Get handles GET /{hash}, returning the stored blob as
// application/octet-stream.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request, hashHex string) {
	raw, err := hex.DecodeString(hashHex)
	if err != nil || len(raw) != 32 {
		http.Error(w, notFoundMsg, http.StatusNotFound)
		return
	}
	var hash [32]byte
	copy(hash[:], raw)

	file, err := h.Store.Get(r.Context(), hash)
	if err != nil {
		slog.Error("blossom: upstream error", "op", "Get", "error", err)
		http.Error(w, internalServerMsg, http.StatusInternalServerError)
		return
	}
	if file == nil {
		http.Error(w, notFoundMsg, http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(file.Bytes)
}

// notImplemented answers any Blossom BUD-01 operation this relay does
// not implement, matching the upstream protocol's own stub responses.
func notImplemented(w http.ResponseWriter, _ *http.Request) {
	http.Error(w, "NOT_IMPLEMENTED", http.StatusNotImplemented)
}

// List, Mirror, Media, Report, Delete, UploadHead, and GetHead are the
// unimplemented Blossom BUD-01 surface: present for protocol
// completeness, each returning 501.
func (h *Handler) List(w http.ResponseWriter, r *http.Request)       { notImplemented(w, r) }
func (h *Handler) Mirror(w http.ResponseWriter, r *http.Request)     { notImplemented(w, r) }
func (h *Handler) Media(w http.ResponseWriter, r *http.Request)      { notImplemented(w, r) }
func (h *Handler) Report(w http.ResponseWriter, r *http.Request)     { notImplemented(w, r) }
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request)     { notImplemented(w, r) }
func (h *Handler) UploadHead(w http.ResponseWriter, r *http.Request) { notImplemented(w, r) }
func (h *Handler) GetHead(w http.ResponseWriter, r *http.Request)    { notImplemented(w, r) }
