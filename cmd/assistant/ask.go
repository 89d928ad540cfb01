package main

import (
	"strings"

	"github.com/spf13/cobra"

	"voice-assistant/internal/session"
)

func newAskCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <command...>",
		Short: "Run a single command and print the reply",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a.selectVoice(cmd.Context())
			text := strings.Join(args, " ")
			reply := a.dispatcher().Dispatch(cmd.Context(), text)
			renderEntry(cmd.OutOrStdout(), session.Entry{Speaker: session.Assistant, Text: reply})
			return nil
		},
	}
}
