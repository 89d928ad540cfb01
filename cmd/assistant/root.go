package main

import (
	"io"

	"github.com/spf13/cobra"

	"voice-assistant/internal/device"
)

func newRootCmd(in io.Reader) *cobra.Command {
	a := &app{in: in, batteryDir: device.DefaultPowerSupplyRoot}

	root := &cobra.Command{
		Use:   "assistant",
		Short: "A voice assistant for the terminal",
		Long: `A voice assistant that answers spoken or typed commands.

Built-in commands:
  search for <query>       open a web search
  weather                  current weather for the configured city
  news                     top headlines
  set a reminder <text>    remember something
  add task <text>          add a task
  show tasks               read the task list

Anything else is answered by the language model, or by the assistant
server when --server is set.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.teardown()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.envFile, "env", "e", ".env", "Env file path")
	pf.StringVar(&a.dataDir, "data-dir", "", "Directory holding the session state")
	pf.StringVar(&a.storage, "storage", "", "Session storage driver: file or sqlite")
	pf.StringVar(&a.voice, "voice", "", "Preferred synthesizer voice")
	pf.StringVarP(&a.logLevel, "log-level", "l", "", "Log level")
	pf.StringVar(&a.serverURL, "server", "", "Assistant server URL; free-text questions go through it")
	pf.StringVar(&a.token, "token", "", "Bearer token for the assistant server")
	pf.BoolVar(&a.mute, "mute", false, "Do not speak replies")
	pf.BoolVar(&a.noBrowser, "no-browser", false, "Do not open search results in a browser")

	root.AddCommand(
		newListenCmd(a),
		newAskCmd(a),
		newHistoryCmd(a),
		newRemindersCmd(a),
		newTasksCmd(a),
		newVoicesCmd(a),
		newStatusCmd(a),
	)
	return root
}
