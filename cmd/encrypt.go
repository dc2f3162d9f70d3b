package cmd

import (
	"encoding/base64"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/tma-autoreserve/internal/crypto"
)

func newEncryptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "encrypt <password>",
		Short: "Encrypt a portal password with CRED_ENC_KEY for use as TMA_PASSWORD_ENC",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := os.Getenv("CRED_ENC_KEY")
			if raw == "" {
				return fmt.Errorf("CRED_ENC_KEY is not set; run 'tmaresv keys' first")
			}
			key, err := base64.StdEncoding.DecodeString(raw)
			if err != nil {
				key, err = base64.RawStdEncoding.DecodeString(raw)
			}
			if err != nil {
				return fmt.Errorf("decode CRED_ENC_KEY: %w", err)
			}
			aead, err := crypto.New(key)
			if err != nil {
				return err
			}
			enc, err := aead.EncryptToString(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "export TMA_PASSWORD_ENC=%s\n", enc)
			return nil
		},
	}
}
