package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/bitcredit-protocol/bcr-relay/blossom"
	"github.com/bitcredit-protocol/bcr-relay/config"
	"github.com/bitcredit-protocol/bcr-relay/mailer"
	"github.com/bitcredit-protocol/bcr-relay/netsafety"
	"github.com/bitcredit-protocol/bcr-relay/notify"
	"github.com/bitcredit-protocol/bcr-relay/proxy"
	"github.com/bitcredit-protocol/bcr-relay/ratelimit"
	"github.com/bitcredit-protocol/bcr-relay/relay"
	"github.com/bitcredit-protocol/bcr-relay/store"
)

func main() {
	logLevel := slog.LevelInfo
	if os.Getenv("LOG_LEVEL") == "debug" {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config error", "err", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	db, err := store.Connect(ctx, cfg.DBConnString())
	if err != nil {
		slog.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		slog.Error("db migrate failed", "err", err)
		os.Exit(1)
	}

	mux := buildMux(cfg, db)

	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      withRequestID(mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "err", err)
		}
	}()

	slog.Info("relay starting", "addr", cfg.ListenAddr, "host_url", cfg.HostURL)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "err", err)
		os.Exit(1)
	}
}

func buildMux(cfg *config.Config, db *store.Postgres) *http.ServeMux {
	limiter := ratelimit.NewLimiter()
	sender := mailer.NewMailjetSender(cfg.MailjetBaseURL, cfg.MailjetAPIKey, cfg.MailjetAPISecret)

	notifyHandler := notify.NewHandler(db, limiter, sender, cfg.HostURL, cfg.MailFrom)
	proxyHandler := proxy.NewHandler(limiter, netsafety.NewResolver(nil))
	blossomHandler := blossom.NewHandler(db, cfg.HostURL)
	writePolicy := relay.NewWritePolicy(cfg.ChainRateLimit, cfg.ChainRateWindow, cfg.RelayChains)

	mux := http.NewServeMux()

	mux.HandleFunc("PUT /upload", blossomHandler.Upload)
	mux.HandleFunc("GET /{hash}", func(w http.ResponseWriter, r *http.Request) {
		blossomHandler.Get(w, r, r.PathValue("hash"))
	})
	mux.HandleFunc("HEAD /upload", blossomHandler.UploadHead)
	mux.HandleFunc("HEAD /{hash}", blossomHandler.GetHead)
	mux.HandleFunc("GET /list/{pubkey}", blossomHandler.List)
	mux.HandleFunc("PUT /mirror", blossomHandler.Mirror)
	mux.HandleFunc("PUT /media", blossomHandler.Media)
	mux.HandleFunc("PUT /report", blossomHandler.Report)
	mux.HandleFunc("DELETE /{hash}", blossomHandler.Delete)

	mux.HandleFunc("POST /notifications/v1/start", notifyHandler.Start)
	mux.HandleFunc("POST /notifications/v1/register", notifyHandler.Register)
	mux.HandleFunc("POST /notifications/v1/send", notifyHandler.Send)
	mux.HandleFunc("GET /notifications/confirm_email", notifyHandler.ConfirmEmail)
	mux.HandleFunc("GET /notifications/preferences/{token}", func(w http.ResponseWriter, r *http.Request) {
		notifyHandler.Preferences(w, r, r.PathValue("token"))
	})
	mux.HandleFunc("POST /notifications/update_preferences", notifyHandler.UpdatePreferences)

	mux.HandleFunc("POST /proxy/v1/req", proxyHandler.ServeHTTP)

	mux.HandleFunc("GET /relay_features", relayFeaturesHandler(cfg))

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if !isWebsocketUpgrade(r) {
			http.NotFound(w, r)
			return
		}
		if err := relay.AttachConnection(writePolicy, w, r); err != nil {
			slog.Error("relay: connection error", "error", err)
		}
	})

	return mux
}

func isWebsocketUpgrade(r *http.Request) bool {
	return r.Header.Get("Upgrade") == "websocket"
}

// withRequestID stamps every request with a correlation ID, echoed back
// in X-Request-Id and logged once at debug level alongside the method and
// path. The handlers' own log lines do not carry the ID.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.New().String()
		w.Header().Set("X-Request-Id", id)
		slog.Debug("request", "request_id", id, "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

// relayFeaturesHandler answers GET /relay_features with the relay's
// static NIP-11-adjacent capability list: which extensions this relay
// speaks on top of bare event relay, for clients that want to probe
// before connecting.
func relayFeaturesHandler(cfg *config.Config) http.HandlerFunc {
	chains := make([]string, 0, len(cfg.RelayChains))
	for chain := range cfg.RelayChains {
		chains = append(chains, chain)
	}
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(struct {
			Name          string   `json:"name"`
			Notifications bool     `json:"notifications"`
			BlobStore     bool     `json:"blob_store"`
			SafeProxy     bool     `json:"safe_proxy"`
			Chains        []string `json:"rate_limited_chains"`
		}{
			Name:          "bcr-relay",
			Notifications: true,
			BlobStore:     true,
			SafeProxy:     true,
			Chains:        chains,
		})
	}
}
