// =============================================================================
// ASYCUDA Converter - Serve Command
// =============================================================================
//
// This file defines the 'serve' command, which runs the HTTP upload service.
//
// COMMAND USAGE:
//   asycuda-converter serve [--addr :5000]
//
// ROUTES:
//   POST /convert               multipart "files" + optional "sessionId"
//   GET  /progress/{sessionID}  progress of a running conversion
//   GET  /health                liveness probe
//
// The server shuts down gracefully on SIGINT/SIGTERM.
//
// =============================================================================

package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ginjaninja78/asycuda-converter/internal/batch"
	"github.com/ginjaninja78/asycuda-converter/internal/converter"
	"github.com/ginjaninja78/asycuda-converter/internal/web"
	"github.com/spf13/cobra"
)

// serveAddr overrides server.addr.
var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP conversion service",
	Long: `The serve command starts an HTTP service that accepts workbook uploads and
returns a ZIP archive holding one ASYCUDA XML document (or error report) per
uploaded file. Progress of a running upload can be polled by session ID.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(
		&serveAddr,
		"addr",
		"",
		"Listen address (overrides server.addr)",
	)
}

// runServe builds the service from the configuration and runs it until a
// shutdown signal arrives.
func runServe(ctx context.Context) error {
	constants, err := loadConstants()
	if err != nil {
		return err
	}

	addr := mainConfig.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	logger := slog.Default()
	runner := batch.NewRunner(converter.New(constants, logger), mainConfig.MaxConcurrency, logger)
	tracker := batch.NewTracker(mainConfig.Server.ProgressTTL)

	srv := web.NewServer(runner, tracker, web.Options{
		MaxUploadSize:     mainConfig.Server.MaxUploadSize,
		RequestTimeout:    mainConfig.Server.RequestTimeout,
		ArchiveNameFormat: mainConfig.ArchiveNameFormat,
	})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	slog.Info("server stopped")
	return nil
}
