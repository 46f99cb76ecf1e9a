package commands

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/TheusHen/chaoskey/chaoskey"
)

// send [message...]: synchronize with the peer once per message.
func sendCmd() *cobra.Command {
	var peer string
	cmd := &cobra.Command{
		Use:   "send [message...]",
		Short: "Send messages to a listening peer",
		Long:  "Send each argument as its own message. Without arguments every line of stdin is sent.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("peer") {
				cfg.Peer = peer
			}
			msgs := args
			if len(msgs) == 0 {
				lines, err := readLines()
				if err != nil {
					return err
				}
				msgs = lines
			}
			if len(msgs) == 0 {
				return fmt.Errorf("nothing to send")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			p := chaoskey.NewPeer(sessionConfig())
			in, err := p.Dial(ctx, cfg.Peer)
			if err != nil {
				return err
			}
			logger.Info().Str("peer", cfg.Peer).Str("session", in.ID()).Msg("connected")

			for _, m := range msgs {
				ct, err := in.Send(ctx, []byte(m))
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), ct)
			}
			return in.Close()
		},
	}
	cmd.Flags().StringVar(&peer, "peer", "", "peer UDP address (default from config)")
	return cmd
}

func readLines() ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines, sc.Err()
}
