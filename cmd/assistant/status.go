package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newVoicesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "voices",
		Short: "List installed synthesizer voices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.espeak == nil {
				return errors.New("speech synthesis is not available; install " + a.cfg.SpeechBinary + " or drop --mute")
			}
			voices, err := a.espeak.Voices(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, headerStyle.Render("Voices"))
			for _, v := range voices {
				fmt.Fprintf(out, "%s %s\n", v.Name, dimStyle.Render("("+v.Language+")"))
			}
			return nil
		},
	}
}

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show battery, voice and saved items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			a.selectVoice(cmd.Context())
			battery := "unknown"
			if pct := a.store.Battery(); pct >= 0 {
				battery = strconv.Itoa(pct) + "%"
			}
			voice := a.store.Voice()
			if voice == "" {
				voice = "default"
			}
			fmt.Fprintln(out, headerStyle.Render("Status"))
			fmt.Fprintf(out, "Battery:   %s\n", battery)
			fmt.Fprintf(out, "Voice:     %s\n", voice)
			fmt.Fprintf(out, "Reminders: %d\n", len(a.store.Reminders()))
			fmt.Fprintf(out, "Tasks:     %d\n", len(a.store.Tasks()))
			fmt.Fprintf(out, "Messages:  %d\n", len(a.store.Transcript()))
			return nil
		},
	}
}
