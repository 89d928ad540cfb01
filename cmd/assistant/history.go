package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"voice-assistant/internal/session"
	"voice-assistant/internal/types"
)

func newHistoryCmd(a *app) *cobra.Command {
	var remote bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the conversation transcript",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if remote {
				if a.cfg.ServerURL == "" {
					return errors.New("--remote needs --server")
				}
				chats, err := a.relay().History(cmd.Context())
				if err != nil {
					return err
				}
				entries := remoteEntries(chats)
				if len(entries) == 0 {
					fmt.Fprintln(out, dimStyle.Render("No conversation yet."))
				}
				for _, e := range entries {
					renderEntry(out, e)
				}
				return nil
			}

			entries := a.store.Transcript()
			if len(entries) == 0 {
				fmt.Fprintln(out, dimStyle.Render("No conversation yet."))
				return nil
			}
			for _, e := range entries {
				renderEntry(out, e)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&remote, "remote", false, "Show the history kept by the assistant server")

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Clear the conversation transcript",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.store.ClearTranscript(); err != nil {
				return fmt.Errorf("clearing history: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), dimStyle.Render("Chat history cleared."))
			return nil
		},
	})
	return cmd
}

func remoteEntries(chats []types.Chat) []session.Entry {
	var entries []session.Entry
	for _, c := range chats {
		for _, m := range c.Messages {
			entries = append(entries, session.Entry{Speaker: session.Speaker(m.Sender), Text: m.Text, Timestamp: m.Timestamp})
		}
	}
	return entries
}
