package commands

import (
	"encoding/base64"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/universa-network/clientendpoint/internal/cryptoutil"
)

func keygenCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a node signing identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := cryptoutil.GenerateNodeIdentity()
			if err != nil {
				return err
			}
			if out != "" {
				if err := os.WriteFile(out, id.SignPriv[:], 0o600); err != nil {
					return err
				}
			}
			fmt.Printf("public key: %s\n", base64.StdEncoding.EncodeToString(id.SignPub[:]))
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "path to write the private key to")
	return cmd
}
