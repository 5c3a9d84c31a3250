package commands

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"ciphera-lobby/internal/crypto"
	"ciphera-lobby/internal/domain"
	"ciphera-lobby/internal/protocol/wire"
	"ciphera-lobby/internal/relay"
)

func listenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "listen",
		Short: "Stay online and print lobby events and messages",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := requirePassphrase(); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			c, roster, err := appCtx.Connect(ctx, passphrase)
			if err != nil {
				return err
			}
			go func() {
				<-ctx.Done()
				_ = c.Close()
			}()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "online as %s (%d present)\n", crypto.FingerprintKey(c.Key()), len(roster))
			for {
				f, err := c.Next(context.Background())
				if err != nil {
					if ctx.Err() != nil {
						return nil
					}
					return err
				}
				printFrame(out, f)
			}
		},
	}
}

func printFrame(out io.Writer, f domain.Frame) {
	switch f := f.(type) {
	case *wire.Message:
		tag := ""
		if !relay.VerifyMessage(f) {
			tag = " (UNVERIFIED)"
		}
		fmt.Fprintf(out, "[%s %s]%s %s\n", f.Timestamp, crypto.FingerprintKey(domain.IdentityKey(f.Sender)), tag, f.Message)
	case *wire.LobbyUpdate:
		d := f.Delta()
		for _, k := range d.Left {
			fmt.Fprintf(out, "- %s left\n", crypto.FingerprintKey(k))
		}
		for _, k := range d.Joined {
			fmt.Fprintf(out, "+ %s joined (%s)\n", crypto.FingerprintKey(k), k)
		}
	case *wire.Error:
		fmt.Fprintf(out, "! %s %s\n", f.Reason, f.Details)
	}
}
