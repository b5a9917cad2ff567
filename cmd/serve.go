package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"adlauncher/config"
	"adlauncher/launcher"
	"adlauncher/storage"
	"adlauncher/web"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	servePort   int
	serveDBPath string
	serveNoOpen bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local launch API",
	Long: `Start a local HTTP server exposing the CSV parse, template and launch endpoints.

Facebook and media storage endpoints are only enabled when their configuration
sections are complete; otherwise they answer 503 while CSV parsing keeps working.`,
	Example: `
  # Start local server on the configured port
  adlauncher serve

  # Custom port and database, without opening a browser
  adlauncher serve --port 9090 --db ./adlauncher.db --no-open
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}
		port := resolveServePort(servePort, cfg)

		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		store, err := storage.OpenSQLite(serveDBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		deps, err := serveDependencies(commandContext(cmd), cfg, store, logger)
		if err != nil {
			return err
		}

		server := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           web.NewServer(*cfg, deps),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			errCh <- server.ListenAndServe()
		}()

		listenURL := fmt.Sprintf("http://localhost:%d", port)
		fmt.Printf("Listening on %s\n", listenURL)
		if !serveNoOpen {
			if openErr := openURLInBrowser(listenURL + "/health"); openErr != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to open browser: %v\n", openErr)
			}
		}

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sigCh)

		select {
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case <-sigCh:
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(ctx); err != nil {
				return fmt.Errorf("shutdown server: %w", err)
			}
			err := <-errCh
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVar(&servePort, "port", 0, "HTTP port for the local web server (default: server.port from config)")
	serveCmd.Flags().StringVar(&serveDBPath, "db", defaultDBPath, "Path to local SQLite database")
	serveCmd.Flags().BoolVar(&serveNoOpen, "no-open", false, "Do not open browser automatically")
}

func resolveServePort(flagPort int, cfg *config.Config) int {
	if flagPort > 0 {
		return flagPort
	}
	if cfg != nil && cfg.Server.Port > 0 {
		return cfg.Server.Port
	}
	return 8080
}

// serveDependencies wires the optional collaborators. Incomplete sections
// leave the matching dependency nil instead of failing startup.
func serveDependencies(ctx context.Context, cfg *config.Config, store *storage.SQLiteStore, logger *zap.Logger) (web.Dependencies, error) {
	deps := web.Dependencies{Store: store, Copy: store, Logger: logger}

	if cfg.RequireFacebook() == nil {
		client, err := newFacebookClient(cfg)
		if err != nil {
			return deps, err
		}
		deps.Client = client
		deps.Launcher = launcher.NewService(client, store, launchDefaults(cfg), logger)
	} else {
		logger.Info("facebook section incomplete, launch endpoints disabled")
	}

	if cfg.RequireStorage() == nil {
		if ctx == nil {
			ctx = context.Background()
		}
		mediaStore, err := newMediaStore(ctx, cfg)
		if err != nil {
			return deps, err
		}
		deps.Media = mediaStore
	} else {
		logger.Info("storage section incomplete, media endpoints disabled")
	}

	return deps, nil
}

func openURLInBrowser(rawURL string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", rawURL)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", rawURL)
	default:
		cmd = exec.Command("xdg-open", rawURL)
	}
	return cmd.Start()
}
