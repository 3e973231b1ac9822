/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the interest-accrual engine server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Initialize SQLite store
  3. Optionally seed a default agreement from a YAML file
  4. Create API handler with dependencies
  5. Configure HTTP router
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port       HTTP server port (default: 8080)
  -db         SQLite database path (default: accrual.db)
              Use ":memory:" for in-memory database
  -agreement  Optional YAML agreement file applied to -account on startup
  -account    Account ID the -agreement flag applies to

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/accrual.db"

  # Run with in-memory database
  ./server -db=":memory:"

  # Seed an agreement at startup
  ./server -agreement=./agreements/standard.yaml -account=acct-1

ENVIRONMENT:
  NOW_UTC  Override "now" (RFC 3339) for deterministic demos and replay.

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/accrual-engine/account"
	"github.com/warp/accrual-engine/api"
	"github.com/warp/accrual-engine/factory"
	"github.com/warp/accrual-engine/store/sqlite"
)

func main() {
	// Flags
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "accrual.db", "SQLite database path")
	agreementPath := flag.String("agreement", "", "YAML agreement file to apply on startup")
	agreementAccount := flag.String("account", "", "account ID the -agreement flag applies to")
	flag.Parse()

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Seed a default agreement when asked
	if *agreementPath != "" {
		if *agreementAccount == "" {
			log.Fatal("-agreement requires -account")
		}
		if err := seedAgreement(context.Background(), store, *agreementPath, *agreementAccount); err != nil {
			log.Fatalf("Failed to seed agreement: %v", err)
		}
		log.Printf("Applied agreement %s to account %s", *agreementPath, *agreementAccount)
	}

	// Initialize handler
	handler := api.NewHandler(store, account.SystemClock, func() error {
		return store.Reset(context.Background())
	})

	// Create router
	router := api.NewRouter(handler)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("🚀 Server starting on http://localhost:%d", *port)
		log.Printf("📊 API available at http://localhost:%d/api", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// seedAgreement loads a YAML agreement file and applies it to accountID.
// Agreements hang off an account row, so a fresh database gets a minimal
// account record first; an existing account is left untouched.
func seedAgreement(ctx context.Context, store *sqlite.Store, path, accountID string) error {
	agreement, err := factory.LoadAgreementYAML(path)
	if err != nil {
		return fmt.Errorf("loading agreement %s: %w", path, err)
	}
	if _, err := store.Summary(ctx, accountID); err != nil {
		if !errors.Is(err, account.ErrAccountNotFound) {
			return err
		}
		summary := account.Summary{AccountID: accountID, Status: "OPEN"}
		if err := store.PutAccount(ctx, summary, nil); err != nil {
			return fmt.Errorf("creating account %s: %w", accountID, err)
		}
	}
	return store.PutAgreement(ctx, accountID, agreement)
}
