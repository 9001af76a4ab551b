package main

import (
	"context"
	"fmt"
	"strings"

	"supportbot/internal/chatclient"

	"github.com/spf13/cobra"
)

// sendCmd performs one exchange without the widget.
var sendCmd = &cobra.Command{
	Use:   "send [message]",
	Short: "Send one message and print the reply",
	Long: `Sends a single message to the chat endpoint and prints the reply.

A failed exchange prints the same text the widget shows and still exits 0.

Example:
  supportbot send "What are your opening hours?"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSend,
}

func runSend(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")
	if text == "" {
		return nil
	}

	ctx := commandContext(cmd)
	if d := cfg.GetClientTimeout(); d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	res := newClient().Do(ctx, text)
	fmt.Fprintln(cmd.OutOrStdout(), chatclient.BotText(res))
	return nil
}
