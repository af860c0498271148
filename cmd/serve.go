package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"mangadventure/internal/api"
)

var flagListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the sites as a JSON API",
	Args:  cobra.NoArgs,
	RunE:  serveRun,
}

func init() {
	serveCmd.Flags().StringVar(&flagListen, "listen", "", "Address to listen on (default from config)")
}

func serveRun(cmd *cobra.Command, args []string) error {
	addr := cfg.Listen
	if flagListen != "" {
		addr = flagListen
	}

	registry, err := openRegistry()
	if err != nil {
		return err
	}
	defer registry.Close()

	srv := &http.Server{
		Addr:              addr,
		Handler:           api.NewServer(registry).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving: %w", err)
		}
		return nil
	case <-cmd.Context().Done():
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	log.Printf("shutting down")
	return srv.Shutdown(ctx)
}
