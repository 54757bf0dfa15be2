// Package commands implements the universanode CLI.
package commands

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/universa-network/clientendpoint/internal/applog"
)

var (
	home     string
	logLevel string
	logger   *applog.Backend
)

// Execute runs the universanode CLI.
func Execute() error {
	root := &cobra.Command{
		Use:   "universanode",
		Short: "Universa client authentication endpoint",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if home == "" {
				dir, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				home = filepath.Join(dir, ".universanode")
			}
			if err := os.MkdirAll(home, 0o700); err != nil {
				return err
			}
			backend, err := applog.New(os.Stdout, logLevel)
			if err != nil {
				return err
			}
			logger = backend
			return nil
		},
	}

	root.PersistentFlags().StringVar(&home, "home", "", "config dir (default ~/.universanode)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "NOTICE", "log level: ERROR, WARNING, NOTICE, INFO, DEBUG")

	root.AddCommand(serveCmd(), keygenCmd())
	return root.Execute()
}
