// candidate-bot — start-date reminder service
//
// Polls the recruiting spreadsheet for upcoming candidate start dates and
// pings the assigned recruiter on Telegram one day before each start,
// exactly once per candidate. Recruiters register themselves through the
// bot's /start flow.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/beluccky/candidate-bot/internal/bot"
	"github.com/beluccky/candidate-bot/internal/config"
	"github.com/beluccky/candidate-bot/internal/db"
	"github.com/beluccky/candidate-bot/internal/directory"
	"github.com/beluccky/candidate-bot/internal/notify"
	"github.com/beluccky/candidate-bot/internal/reconcile"
	"github.com/beluccky/candidate-bot/internal/remind"
	"github.com/beluccky/candidate-bot/internal/resolve"
	"github.com/beluccky/candidate-bot/internal/scheduler"
	"github.com/beluccky/candidate-bot/internal/sheets"
	"github.com/beluccky/candidate-bot/internal/store"
)

const version = "1.0.0"

func main() {
	// ── Config ──────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[candidate-bot] Config error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── PostgreSQL ───────────────────────────────────────────────────────────
	log.Println("[candidate-bot] Connecting to PostgreSQL…")
	pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("[candidate-bot] PostgreSQL: %v", err)
	}
	defer pool.Close()
	log.Println("[candidate-bot] PostgreSQL connected ✓")

	st := store.New(pool)
	if err := st.EnsureSchema(ctx); err != nil {
		log.Fatalf("[candidate-bot] Schema: %v", err)
	}

	// ── Redis ────────────────────────────────────────────────────────────────
	log.Println("[candidate-bot] Connecting to Redis…")
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		log.Fatalf("[candidate-bot] Redis: %v", err)
	}
	defer rdb.Close()
	log.Println("[candidate-bot] Redis connected ✓")

	// ── Google Sheets ────────────────────────────────────────────────────────
	fetcher, err := sheets.NewFetcher(ctx, cfg.SpreadsheetID, cfg.CredentialsJSON, cfg.CredentialsFile)
	if err != nil {
		log.Fatalf("[candidate-bot] Google Sheets: %v", err)
	}

	// ── Telegram ─────────────────────────────────────────────────────────────
	tg := notify.NewClient(cfg.TelegramToken)
	if username, err := tg.TestConnectivity(ctx); err != nil {
		log.Printf("[candidate-bot] Telegram connectivity check failed: %v — continuing", err)
	} else {
		log.Printf("[candidate-bot] Telegram bot connected: @%s", username)
	}

	logStartupCounts(ctx, st)

	// ── Wiring ───────────────────────────────────────────────────────────────
	dir := directory.New(rdb)
	reconciler := reconcile.New(fetcher, st)
	resolver := resolve.New(st, cfg.DefaultChatID)
	engine := remind.NewEngine(st, resolver, tg)
	sched := scheduler.New(reconciler, dir, engine, cfg.CheckIntervalHours)

	// ── Health endpoint ──────────────────────────────────────────────────────
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HealthPort),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	go func() {
		log.Printf("[candidate-bot] v%s health endpoint on :%s", version, cfg.HealthPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[candidate-bot] HTTP server error: %v", err)
		}
	}()

	// ── Command listener + poll loop ─────────────────────────────────────────
	go bot.New(tg, st, dir).Listen(ctx)

	if err := sched.Start(ctx); err != nil {
		log.Fatalf("[candidate-bot] Scheduler: %v", err)
	}
	log.Printf("[candidate-bot] Running — poll every %dh", cfg.CheckIntervalHours)

	// ── Graceful shutdown ────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[candidate-bot] Shutting down…")
	sched.Stop()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[candidate-bot] Shutdown error: %v", err)
	}
	log.Println("[candidate-bot] Stopped.")
}

// logStartupCounts reports what the store already tracks; failures here are
// informational only.
func logStartupCounts(ctx context.Context, st *store.Store) {
	if all, err := st.ListAll(ctx); err == nil {
		log.Printf("[candidate-bot] Tracking %d candidate(s)", len(all))
	} else {
		log.Printf("[candidate-bot] ListAll failed: %v", err)
	}
	if regs, err := st.ListRegistrations(ctx); err == nil {
		log.Printf("[candidate-bot] %d recruiter registration(s)", len(regs))
	} else {
		log.Printf("[candidate-bot] ListRegistrations failed: %v", err)
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"service": "candidate-bot",
		"version": version,
	})
}
