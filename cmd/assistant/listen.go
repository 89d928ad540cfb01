package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"voice-assistant/internal/dispatch"
	"voice-assistant/internal/session"
	"voice-assistant/internal/speech"
)

func newListenCmd(a *app) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Greet and answer commands until the session times out",
		Long: `Greet the user, then answer commands as they are recognized. Each
line read from standard input counts as one final transcript. Listening
stops after --timeout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			a.selectVoice(cmd.Context())
			if !cmd.Flags().Changed("timeout") {
				timeout = a.cfg.ListenTimeout
			}

			greeting := dispatch.Greeting(time.Now())
			fmt.Fprintln(out, assistantStyle.Render(greeting))
			a.speaker.Speak(greeting)

			d := a.dispatcher()
			var rec speech.Recognizer
			if a.in != nil {
				rec = speech.NewLineRecognizer(a.in)
			}
			l := speech.NewListener(rec, timeout, func(ctx context.Context, text string) {
				reply := d.Dispatch(ctx, text)
				renderEntry(out, session.Entry{Speaker: session.User, Text: text})
				renderEntry(out, session.Entry{Speaker: session.Assistant, Text: reply})
			}, a.log)
			l.OnStateChange(func(s speech.State) {
				a.store.SetListening(s == speech.Listening || s == speech.Processing)
			})

			err := l.Listen(cmd.Context())
			if errors.Is(err, speech.ErrUnsupported) {
				fmt.Fprintln(out, dimStyle.Render("Speech recognition is not supported on this device."))
				return nil
			}
			return err
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", speech.DefaultListenTimeout, "Stop listening after this long")
	return cmd
}
