package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"voice-assistant/internal/config"
	"voice-assistant/internal/device"
	"voice-assistant/internal/dispatch"
	"voice-assistant/internal/logger"
	"voice-assistant/internal/services"
	"voice-assistant/internal/session"
	"voice-assistant/internal/speech"
)

// app carries flag values and the dependencies built from them for one
// command invocation.
type app struct {
	envFile   string
	dataDir   string
	storage   string
	voice     string
	logLevel  string
	serverURL string
	token     string
	mute      bool
	noBrowser bool

	in  io.Reader
	cfg config.Config
	log *logrus.Logger

	store      *session.Store
	closeKV    func() error
	httpClient *http.Client
	speaker    speech.Synthesizer
	espeak     *speech.ESpeak
	opener     dispatch.Opener
	batteryDir string
}

func (a *app) setup(cmd *cobra.Command) error {
	a.cfg = config.Load(a.envFile)
	flags := cmd.Flags()
	if flags.Changed("data-dir") {
		a.cfg.DataDir = a.dataDir
	}
	if flags.Changed("storage") {
		a.cfg.StorageDriver = a.storage
	}
	if flags.Changed("voice") {
		a.cfg.Voice = a.voice
	}
	if flags.Changed("log-level") {
		a.cfg.LogLevel = a.logLevel
	}
	if flags.Changed("server") {
		a.cfg.ServerURL = a.serverURL
	}
	if flags.Changed("token") {
		a.cfg.Token = a.token
	}
	a.log = logger.NewWithOutput(cmd.ErrOrStderr(), a.cfg.LogLevel, a.cfg.LogFormat)

	kv, closeKV, err := openKV(a.cfg.StorageDriver, a.cfg.DataDir)
	if err != nil {
		return err
	}
	a.closeKV = closeKV
	a.store, err = session.Open(kv)
	if err != nil {
		return fmt.Errorf("restoring session: %w", err)
	}

	a.httpClient, err = services.NewHTTPClient(a.cfg.SOCKSProxy, a.cfg.HTTPTimeout)
	if err != nil {
		return fmt.Errorf("building http client: %w", err)
	}

	if pct, err := device.ReadBattery(a.batteryDir); err == nil {
		a.store.SetBattery(pct)
	} else if !errors.Is(err, device.ErrNoBattery) {
		a.log.WithError(err).Debug("reading battery")
	}

	a.speaker = speech.Mute{}
	if !a.mute {
		if es, err := speech.NewESpeak(a.cfg.SpeechBinary, a.log); err == nil {
			a.espeak = es
			a.speaker = es
		} else {
			a.log.WithError(err).Debug("speech output disabled")
		}
	}
	if a.opener == nil && !a.noBrowser {
		a.opener = dispatch.BrowserOpener{}
	}
	return nil
}

func (a *app) teardown() error {
	if a.closeKV == nil {
		return nil
	}
	return a.closeKV()
}

func openKV(driver, dataDir string) (session.KV, func() error, error) {
	switch driver {
	case "", "file":
		return session.NewFileKV(dataDir), func() error { return nil }, nil
	case "sqlite":
		kv, err := session.OpenSQLiteKV(dataDir)
		if err != nil {
			return nil, nil, err
		}
		return kv, kv.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q (want file or sqlite)", driver)
	}
}

func (a *app) relay() *services.RelayClient {
	return services.NewRelayClient(a.httpClient, a.cfg.ServerURL, a.cfg.Token, a.log)
}

func (a *app) completer() dispatch.Completer {
	if a.cfg.ServerURL != "" {
		return a.relay()
	}
	prompt, err := services.LoadPromptSpec(a.cfg.PromptFile)
	if err != nil {
		a.log.WithError(err).Warn("ignoring prompt file")
	}
	return services.NewLLMClient(a.httpClient, a.cfg.LLMAPIKey, a.cfg.LLMBaseURL, a.cfg.Model, prompt, a.log)
}

func (a *app) dispatcher() *dispatch.Dispatcher {
	return dispatch.New(dispatch.Options{
		Store:     a.store,
		Speaker:   a.speaker,
		Weather:   services.NewWeatherClient(a.httpClient, a.cfg.WeatherBaseURL, a.cfg.WeatherAPIKey, a.cfg.WeatherUnits, a.log),
		News:      services.NewNewsClient(a.httpClient, a.cfg.NewsBaseURL, a.cfg.NewsAPIKey, a.cfg.NewsCountry, a.cfg.NewsLimit, a.log),
		Completer: a.completer(),
		Opener:    a.opener,
		City:      a.cfg.WeatherCity,
		SearchURL: a.cfg.SearchURL,
		Log:       a.log,
	})
}

// selectVoice applies the configured voice to the local synthesizer.
func (a *app) selectVoice(ctx context.Context) {
	if a.espeak == nil {
		return
	}
	v, err := a.espeak.UseVoice(ctx, a.cfg.Voice)
	if err != nil {
		a.log.WithError(err).Warn("selecting voice")
		return
	}
	a.store.SetVoice(v.Name)
}
