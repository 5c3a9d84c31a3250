package commands

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/spf13/cobra"

	"ciphera-lobby/internal/domain"
	"ciphera-lobby/internal/protocol/wire"
	"ciphera-lobby/internal/relay"
)

// send <peer-key> <message>: sign and send a message to an online peer.
func sendCmd() *cobra.Command {
	var wait time.Duration
	cmd := &cobra.Command{
		Use:   "send <peer-key> <message>",
		Short: "Sign and send a message to an online peer",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			peer, err := domain.ParseIdentityKey(args[0])
			if err != nil {
				return fmt.Errorf("peer: %w", err)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()
			c, _, err := appCtx.Connect(ctx, passphrase)
			if err != nil {
				return err
			}
			defer c.Close()

			if err := c.Send(peer, args[1]); err != nil {
				return err
			}
			if err := awaitRejection(cmd.Context(), c, wait); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "sent")
			return nil
		},
	}
	cmd.Flags().DurationVar(&wait, "wait", time.Second, "how long to wait for a rejection from the relay")
	return cmd
}

// awaitRejection reads frames for up to wait. Delivery is never acknowledged,
// so silence means the relay accepted the message.
func awaitRejection(ctx context.Context, c *relay.Client, wait time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()
	for {
		f, err := c.Next(ctx)
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			return nil
		}
		if err != nil {
			return err
		}
		if e, ok := f.(*wire.Error); ok {
			return &relay.RemoteError{Reason: e.Reason, Details: e.Details, PublicKey: e.PublicKey}
		}
	}
}
