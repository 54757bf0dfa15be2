package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/universa-network/clientendpoint/internal/config"
	"github.com/universa-network/clientendpoint/internal/cryptoutil"
	"github.com/universa-network/clientendpoint/internal/endpoint"
	"github.com/universa-network/clientendpoint/internal/localnode"
)

func serveCmd() *cobra.Command {
	var (
		configPath string
		keyPath    string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the client authentication endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadFile(configPath)
			if err != nil {
				return err
			}
			rst, err := cfg.Roster()
			if err != nil {
				return err
			}

			node, err := loadOrGenerateIdentity(keyPath)
			if err != nil {
				return fmt.Errorf("loading node identity: %w", err)
			}

			log := logger.GetLogger("endpoint")

			ep := endpoint.New(endpoint.Config{
				Addr:        cfg.Addr,
				ThreadLimit: cfg.ThreadLimit,
				Node:        node,
				Backend:     localnode.Stub{},
				Roster:      rst,
				Logger:      log,
			})

			errCh := make(chan error, 1)
			go func() { errCh <- ep.Start() }()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return err
			case <-sigCh:
				log.Notice("shutting down")
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return ep.Shutdown(ctx)
			}
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to the endpoint TOML config file")
	cmd.Flags().StringVar(&keyPath, "key", "", "path to the node's signing key file (generated if absent)")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}

func loadOrGenerateIdentity(path string) (*cryptoutil.NodeIdentity, error) {
	if path == "" {
		return cryptoutil.GenerateNodeIdentity()
	}
	raw, err := os.ReadFile(path)
	if err == nil {
		return cryptoutil.NodeIdentityFromBytes(raw)
	}
	if !os.IsNotExist(err) {
		return nil, err
	}
	id, err := cryptoutil.GenerateNodeIdentity()
	if err != nil {
		return nil, err
	}
	if writeErr := os.WriteFile(path, id.SignPriv[:], 0o600); writeErr != nil {
		return nil, writeErr
	}
	return id, nil
}
