// Package proxy implements the safe outbound fetch proxy: it takes an
// inbound signed request, validates and resolves the target URL against
// an SSRF blocklist, and forwards the request manually following a
// bounded number of redirects.
package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/bitcredit-protocol/bcr-relay/netsafety"
	"github.com/bitcredit-protocol/bcr-relay/nostrcrypto"
	"github.com/bitcredit-protocol/bcr-relay/ratelimit"
)

const (
	fetchTimeout  = 5 * time.Second
	maxRedirects  = 2
	maxBodyBytes  = 2 * 1024 * 1024
	errInvalidURL = "proxy_invalid_url"
	errInvalid    = "proxy_invalid_request"
)

// Handler serves POST /proxy/v1/req: a signature-gated, SSRF-safe HTTP
// fetch on the caller's behalf.
type Handler struct {
	Limiter  *ratelimit.Limiter
	Resolver *netsafety.Resolver
	Client   *http.Client
}

// NewHandler builds a Handler. A nil resolver uses the system default
// DNS resolver.
func NewHandler(limiter *ratelimit.Limiter, resolver *netsafety.Resolver) *Handler {
	if resolver == nil {
		resolver = netsafety.NewResolver(nil)
	}
	return &Handler{
		Limiter:  limiter,
		Resolver: resolver,
		Client: &http.Client{
			Timeout: fetchTimeout,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

type proxyRequest struct {
	Payload   nostrcrypto.ProxyReqPayload `json:"payload"`
	Signature string                      `json:"signature"`
}

func writeProxyError(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(struct {
		Msg string `json:"msg"`
	}{Msg: code})
}

// ServeHTTP implements the seven-step safe-fetch flow: validate the npub,
// rate-limit, validate and resolve the target URL, verify the signature,
// then fetch with manual, re-validated redirect following and a capped
// response body.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req proxyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeProxyError(w, http.StatusBadRequest, errInvalid)
		return
	}

	senderKey, err := nostrcrypto.DecodeNpub(req.Payload.Npub)
	if err != nil {
		writeProxyError(w, http.StatusBadRequest, errInvalidURL)
		return
	}

	target, err := url.Parse(req.Payload.URL)
	if err != nil {
		writeProxyError(w, http.StatusBadRequest, errInvalidURL)
		return
	}

	ip := clientIP(r)
	if !h.Limiter.Check(ip, nil, &req.Payload.Npub, nil) {
		writeProxyError(w, http.StatusTooManyRequests, "proxy_rate_limit")
		return
	}

	ctx := r.Context()
	if err := h.validateAndResolve(ctx, target); err != nil {
		writeProxyError(w, http.StatusBadRequest, errInvalidURL)
		return
	}

	ok, err := nostrcrypto.VerifyPayload(req.Payload, req.Signature, senderKey)
	if err != nil || !ok {
		writeProxyError(w, http.StatusBadRequest, errInvalidURL)
		return
	}

	status, body, err := h.fetch(ctx, target)
	if err != nil {
		logProxyError(err)
		writeProxyError(w, http.StatusInternalServerError, errInvalid)
		return
	}

	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func (h *Handler) validateAndResolve(ctx context.Context, u *url.URL) error {
	if err := netsafety.ValidateURL(u); err != nil {
		return err
	}
	return h.Resolver.ResolveAndCheck(ctx, u.Hostname())
}

// fetch performs the GET against target, following up to maxRedirects
// hops manually, re-validating the URL on every hop, and capping the
// collected response body at maxBodyBytes.
func (h *Handler) fetch(ctx context.Context, target *url.URL) (int, []byte, error) {
	current := target
	for hop := 0; ; hop++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, current.String(), nil)
		if err != nil {
			return 0, nil, fmt.Errorf("proxy: building request: %w", err)
		}

		resp, err := h.Client.Do(req)
		if err != nil {
			return 0, nil, fmt.Errorf("proxy: fetching %s: %w", current, err)
		}

		if resp.StatusCode >= 300 && resp.StatusCode < 400 {
			location := resp.Header.Get("Location")
			resp.Body.Close()
			if location == "" {
				return 0, nil, errors.New("proxy: redirect without Location")
			}
			if hop >= maxRedirects {
				return 0, nil, errors.New("proxy: too many redirects")
			}
			next, err := current.Parse(location)
			if err != nil {
				return 0, nil, fmt.Errorf("proxy: parsing redirect location: %w", err)
			}
			if err := h.validateAndResolve(ctx, next); err != nil {
				return 0, nil, fmt.Errorf("proxy: redirect target rejected: %w", err)
			}
			current = next
			continue
		}

		body, err := readCapped(resp.Body, maxBodyBytes)
		resp.Body.Close()
		if err != nil {
			return 0, nil, err
		}
		return resp.StatusCode, body, nil
	}
}

// readCapped reads up to limit+1 bytes from r, returning an error if the
// stream exceeds limit rather than silently truncating it.
func readCapped(r io.Reader, limit int64) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("proxy: reading response body: %w", err)
	}
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("proxy: response body exceeds %d bytes", limit)
	}
	return body, nil
}

func logProxyError(err error) {
	slog.Error("proxy: upstream error", "error", err)
}
