package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"ciphera-lobby/internal/crypto"
)

func fingerprintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fingerprint",
		Short: "Print identity key and fingerprint",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			id, err := appCtx.Identity.LoadIdentity(passphrase)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Public key: %s\nFingerprint: %s\n", id.PublicKey(), crypto.FingerprintKey(id.PublicKey()))
			return nil
		},
	}
	return cmd
}
