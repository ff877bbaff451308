package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/shukatsu-kanri/api/internal/admin"
	"github.com/shukatsu-kanri/api/internal/broker"
	"github.com/shukatsu-kanri/api/internal/config"
	"github.com/shukatsu-kanri/api/internal/db"
	"github.com/shukatsu-kanri/api/internal/enrich"
	"github.com/shukatsu-kanri/api/internal/handlers"
	"github.com/shukatsu-kanri/api/internal/repository"
)

func main() {
	cfg := config.Load() // env + .env

	// global JSON logger; slog.Info/Error work anywhere after this
	_ = config.InitLogger(cfg.LogLevel)
	slog.Info("starting", "port", cfg.Port, "mongo_db", cfg.MongoDB)

	// one-off admin job
	task := flag.String("task", "", "admin task: seed")
	flag.Parse()
	if *task != "" {
		switch *task {
		case "seed":
			client, err := db.NewMongoClient(cfg.MongoURI)
			if err != nil {
				slog.Error("mongo_connect_error", "err", err)
				os.Exit(1)
			}
			defer func() { _ = client.Disconnect(context.Background()) }()

			repo := repository.NewCompanyRepository(client.Database(cfg.MongoDB))
			if err := admin.SeedCompanies(context.Background(), repo, slog.Default()); err != nil {
				slog.Error("seed_failed", "err", err)
				os.Exit(1)
			}
			slog.Info("seed_done")
			return
		default:
			slog.Error("unknown_admin_task", "task", *task)
			os.Exit(2)
		}
	}

	client, err := db.NewMongoClient(cfg.MongoURI)
	if err != nil {
		log.Fatalf("mongo connect error: %v", err)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	repo := repository.NewCompanyRepository(client.Database(cfg.MongoDB))
	if err := repo.EnsureIndexes(context.Background()); err != nil {
		slog.Warn("ensure_indexes_failed", "err", err)
	}

	pub, err := broker.NewPublisher(cfg.RabbitURI, cfg.RabbitQueue)
	if err != nil {
		log.Fatalf("rabbitmq connect error: %v", err)
	}
	defer pub.Close()

	// The gateway is built here and injected; with no API key it reports
	// Unavailable instead of failing startup.
	gw, err := enrich.NewGateway(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel, cfg.AITimeout, slog.Default())
	if err != nil {
		log.Fatalf("enrichment gateway error: %v", err)
	}
	if !gw.Available() {
		slog.Warn("ai_enrichment_unavailable", "hint", "set GEMINI_API_KEY to enable")
	}

	h := handlers.NewCompanyHandler(repo, pub, gw)
	h.PingDB = func(ctx context.Context) error {
		return client.Ping(ctx, readpref.Primary())
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", h.Health)
	mux.HandleFunc("/api/companies", h.Companies)
	mux.HandleFunc("/api/companies/search", h.Search)
	mux.HandleFunc("/api/companies/", h.CompanyByID)
	mux.HandleFunc("/api/statistics", h.Statistics)
	mux.HandleFunc("/api/ai/company-info", h.CompanyInfo)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           logMiddleware(mux),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("graceful shutdown error", "err", err)
	}
}

func logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Info("request", "method", r.Method, "path", r.URL.Path, "dur", fmtDuration(time.Since(start)))
	})
}

func fmtDuration(d time.Duration) string {
	return fmt.Sprintf("%dms", d.Milliseconds())
}
