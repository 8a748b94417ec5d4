package entrypoint

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nmhoang/libshelf/internal/auth"
	"github.com/nmhoang/libshelf/internal/catalog"
	"github.com/nmhoang/libshelf/internal/config"
	http_controllers "github.com/nmhoang/libshelf/internal/http"
	"github.com/nmhoang/libshelf/internal/sessionstore"
	"github.com/nmhoang/libshelf/internal/shelf"
	"github.com/nmhoang/libshelf/internal/transport"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs the HTTP server until an interrupt or termination signal
// arrives, then shuts it down within the configured timeout.
func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop background jobs before the listener so in-flight checks
	// finish against a live session store.
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

// Run wires every component and serves until shutdown.
func Run(cfg *config.Config, version string) {
	log.Printf("Starting libshelf v%s", version)

	// Session persistence. Without a database path the session lives
	// in memory only and dies with the process.
	var persistence *sessionstore.SQLiteStore
	if cfg.Session.DatabasePath != "" {
		var err error
		persistence, err = sessionstore.NewSQLiteStore(sessionstore.SQLiteConfig{
			DatabasePath:  cfg.Session.DatabasePath,
			EncryptionKey: cfg.Session.EncryptionKey,
			Passphrase:    cfg.Session.Passphrase,
			KeyFilePath:   cfg.Session.KeyFilePath,
		})
		if err != nil {
			log.Fatalf("Failed to initialize session database: %v", err)
		}
		defer func() {
			if err := persistence.Close(); err != nil {
				log.Printf("Error closing session database: %v", err)
			}
		}()
	} else {
		log.Printf("WARNING: No session database path configured. Sessions will not survive restarts.")
	}

	var store *sessionstore.Store
	if persistence != nil {
		store = sessionstore.New(persistence)
	} else {
		store = sessionstore.New(nil)
	}
	store.Restore()
	if store.Get().IsAuthenticated {
		log.Printf("Restored session for %s", store.Get().User.Email)
	}

	// One client for the backend; both the auth and shelf endpoints
	// live behind the same base URL. A 401 anywhere clears the
	// session.
	backend, err := transport.New(transport.Config{
		BaseURL: cfg.Backend.BaseURL,
		Timeout: cfg.Backend.Timeout,
		Tokens:  store,
	})
	if err != nil {
		log.Fatalf("Failed to create backend client: %v", err)
	}
	backend.SetUnauthorizedHook(store.Clear)

	catalogClient := catalog.NewClient(cfg.Catalog.BaseURL, cfg.Catalog.Timeout)

	authService := auth.NewService(store, backend)
	shelfService := shelf.NewService(store, backend)

	introspector := auth.NewIntrospector(store, backend)
	if cfg.Introspect.Enabled {
		if err := introspector.Start(cfg.Introspect.Schedule); err != nil {
			log.Fatalf("Failed to start token introspection: %v", err)
		}
	}

	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		SessionStore: store,
		AuthService:  authService,
		ShelfService: shelfService,
		Catalog:      catalogClient,
		Persistence:  persistence,
		Version:      version,
	})

	Serve(router, cfg, func(ctx context.Context) {
		introspector.Stop()
	})
}
