package main

import (
	"encoding/json"
	"fmt"
	stdlog "log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/username/extratodb/src/config"
	"github.com/username/extratodb/src/database"
	"github.com/username/extratodb/src/handlers"
	"github.com/username/extratodb/src/logger"
	"github.com/username/extratodb/src/processors"
	"github.com/username/extratodb/src/services"
	"golang.org/x/time/rate"
)

var limiter = rate.NewLimiter(rate.Every(100*time.Millisecond), 30)

func rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
			logger.L.Warn("Rate limit exceeded",
				"method", r.Method,
				"path", r.URL.Path,
				"remoteAddr", r.RemoteAddr)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		allowedOrigins := map[string]bool{
			"http://localhost:3000": true,
		}

		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, If-None-Match")
			w.Header().Set("Access-Control-Expose-Headers", "ETag")
		} else if origin == "" {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func main() {
	config.LoadConfig()
	logger.InitLogger(config.Cfg.LogLevel)
	logger.L.Info("Extrato backend starting...")

	logger.L.Info("Initializing database...", "path", config.Cfg.DatabasePath)
	database.InitDB(config.Cfg.DatabasePath)

	store := database.NewStore(database.DB)
	reportCache := cache.New(services.DefaultCacheExpiration, services.CacheCleanupInterval)
	classifier := processors.NewClassifier()
	ingestService := services.NewIngestService(store, classifier, reportCache)

	// Argv subcommands for local/offline use; no args runs the HTTP server.
	if len(os.Args) > 1 {
		runCommand(os.Args[1:], store, ingestService)
		return
	}

	uploadHandler := handlers.NewUploadHandler(ingestService)
	txHandler := handlers.NewTransactionHandler(ingestService)
	balanceHandler := handlers.NewBalanceHandler(ingestService)
	sqlHandler := handlers.NewSQLHandler(database.DB)

	logger.L.Info("Configuring routes...")
	rootMux := http.NewServeMux()
	apiRouter := http.NewServeMux()

	apiRouter.HandleFunc("POST /api/upload", uploadHandler.HandleUpload)
	apiRouter.HandleFunc("GET /api/transactions", txHandler.HandleGetTransactions)
	apiRouter.HandleFunc("GET /api/balances", balanceHandler.HandleGetDailyBalances)
	apiRouter.HandleFunc("POST /api/sql", sqlHandler.HandleQuery)

	rootMux.Handle("/api/", apiRouter)

	rootMux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" && r.Method == http.MethodGet {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{"message": "Extrato backend is running"})
		} else if !strings.HasPrefix(r.URL.Path, "/api/") {
			logger.L.Warn("Root level path not found", "method", r.Method, "path", r.URL.Path)
			http.NotFound(w, r)
		}
	})

	finalHandler := enableCORS(rateLimitMiddleware(rootMux))

	serverAddr := ":" + config.Cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      finalHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	logger.L.Info("Server starting", "address", serverAddr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.L.Error("Failed to start server", "error", err)
		stdlog.Fatalf("Failed to start server: %v", err)
	}
}

func runCommand(args []string, store *database.Store, ingestService services.IngestService) {
	switch args[0] {
	case "initdb":
		// InitDB already ran; reaching here means the schema exists.
		fmt.Println("OK: database schema created/updated.")
	case "ingest":
		if len(args) < 2 {
			fmt.Println("Usage: extratodb ingest <pdf-path>")
			os.Exit(1)
		}
		file, err := os.Open(args[1])
		if err != nil {
			logger.L.Error("Failed to open statement file", "path", args[1], "error", err)
			os.Exit(1)
		}
		defer file.Close()
		result, err := ingestService.IngestStatement(file, config.Cfg.DefaultSource)
		if err != nil {
			logger.L.Error("Ingestion failed", "path", args[1], "error", err)
			os.Exit(1)
		}
		fmt.Printf("OK: ingested %s (%d parsed, %d inserted, %d duplicates, %d balances)\n",
			args[1], result.RecordsParsed, result.TransactionsInserted,
			result.DuplicatesSkipped, result.BalancesUpserted)
	case "balances":
		balances, err := store.ListDailyBalances()
		if err != nil {
			logger.L.Error("Failed to list daily balances", "error", err)
			os.Exit(1)
		}
		for _, b := range balances {
			fmt.Println(b.Date, b.Balance.StringFixed(2))
		}
	default:
		fmt.Println("Usage:")
		fmt.Println("  extratodb            (run HTTP server)")
		fmt.Println("  extratodb initdb")
		fmt.Println("  extratodb ingest <pdf-path>")
		fmt.Println("  extratodb balances")
		os.Exit(1)
	}
}
