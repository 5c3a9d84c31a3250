package commands

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"ciphera-lobby/internal/crypto"
)

func onlineCmd() *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "online",
		Short: "List identities currently in the lobby",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			c, roster, err := appCtx.Connect(ctx, passphrase)
			if err != nil {
				return err
			}
			defer c.Close()

			sort.Slice(roster, func(i, j int) bool { return roster[i] < roster[j] })
			out := cmd.OutOrStdout()
			for _, k := range roster {
				marker := " "
				if k == c.Key() {
					marker = "*"
				}
				fmt.Fprintf(out, "%s %s  %s\n", marker, crypto.FingerprintKey(k), k)
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "connect and auth timeout")
	return cmd
}
