package dispatch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voice-assistant/internal/logger"
	"voice-assistant/internal/services"
	"voice-assistant/internal/session"
)

type fakeWeather struct {
	calls  int
	loaded bool
	store  *session.Store
}

func (f *fakeWeather) Current(_ context.Context, city string) string {
	f.calls++
	f.loaded = f.store.Loading()
	return "The current temperature in " + city + " is 31°C with clear sky."
}

type fakeNews struct{ calls int }

func (f *fakeNews) Headlines(context.Context) string {
	f.calls++
	return "Here are the top news headlines: a; b"
}

type fakeCompleter struct {
	calls []string
	// transcript length observed while the remote call is in flight
	seen  int
	store *session.Store
}

func (f *fakeCompleter) Complete(_ context.Context, msg string) string {
	f.calls = append(f.calls, msg)
	f.seen = len(f.store.Transcript())
	return "completion: " + msg
}

type recordingSpeaker struct {
	mu    sync.Mutex
	spoke []string
}

func (r *recordingSpeaker) Speak(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.spoke = append(r.spoke, text)
}

type recordingOpener struct {
	urls []string
	err  error
}

func (o *recordingOpener) Open(u string) error {
	o.urls = append(o.urls, u)
	return o.err
}

type fixture struct {
	d         *Dispatcher
	store     *session.Store
	weather   *fakeWeather
	news      *fakeNews
	completer *fakeCompleter
	speaker   *recordingSpeaker
	opener    *recordingOpener
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, err := session.Open(session.NewFileKV(t.TempDir()))
	require.NoError(t, err)
	f := &fixture{
		store:     store,
		weather:   &fakeWeather{store: store},
		news:      &fakeNews{},
		completer: &fakeCompleter{store: store},
		speaker:   &recordingSpeaker{},
		opener:    &recordingOpener{},
	}
	f.d = New(Options{
		Store:     store,
		Speaker:   f.speaker,
		Weather:   f.weather,
		News:      f.news,
		Completer: f.completer,
		Opener:    f.opener,
		City:      "Mumbai",
		Log:       logger.Discard(),
	})
	return f
}

func TestClassify_PriorityOrder(t *testing.T) {
	d := newFixture(t).d
	cases := map[string]Intent{
		"search for the weather":            IntentSearch,
		"Search For golang":                 IntentSearch,
		"news about the WEATHER":            IntentWeather,
		"what's the weather like":           IntentWeather,
		"read me the news":                  IntentNews,
		"set a reminder to check the news":  IntentNews,
		"set a reminder call mom":           IntentReminder,
		"add task set a reminder":           IntentReminder,
		"add task buy milk":                 IntentAddTask,
		"show tasks":                        IntentShowTasks,
		"add task show tasks":               IntentAddTask,
		"tell me a joke":                    IntentFallback,
		"":                                  IntentFallback,
		"the newspaper is late":             IntentNews,
	}
	for text, want := range cases {
		assert.Equal(t, want, d.Classify(text), text)
	}
}

func TestDispatch_WeatherWinsRegardlessOfPosition(t *testing.T) {
	f := newFixture(t)
	for _, text := range []string{
		"add task check weather",
		"show tasks and weather",
		"set a reminder about the Weather",
		"WEATHER news please",
	} {
		f.d.Dispatch(context.Background(), text)
	}
	assert.Equal(t, 4, f.weather.calls)
	assert.Zero(t, f.news.calls)
	assert.Empty(t, f.store.Tasks())
	assert.Empty(t, f.store.Reminders())
}

func TestDispatch_Reminder(t *testing.T) {
	f := newFixture(t)

	reply := f.d.Dispatch(context.Background(), "set a reminder call mom")

	assert.Equal(t, []string{"call mom"}, f.store.Reminders())
	entries := f.store.Transcript()
	require.Len(t, entries, 2)
	assert.Equal(t, session.User, entries[0].Speaker)
	assert.Equal(t, "set a reminder call mom", entries[0].Text)
	assert.Equal(t, session.Assistant, entries[1].Speaker)
	assert.Contains(t, entries[1].Text, "call mom")
	assert.Equal(t, reply, entries[1].Text)
	assert.Equal(t, []string{reply}, f.speaker.spoke)
}

func TestDispatch_AddThenShowTasks(t *testing.T) {
	f := newFixture(t)

	f.d.Dispatch(context.Background(), "add task buy milk")
	reply := f.d.Dispatch(context.Background(), "show tasks")

	assert.Contains(t, reply, "buy milk")
	assert.Equal(t, []string{"buy milk"}, f.store.Tasks())
	assert.Empty(t, f.store.Reminders())
	entries := f.store.Transcript()
	require.Len(t, entries, 4)
	assert.Equal(t, reply, entries[3].Text)
	assert.Empty(t, f.completer.calls)
}

func TestDispatch_ShowTasksJoinsWithComma(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, "You have no tasks.", f.d.Dispatch(context.Background(), "show tasks"))

	f.d.Dispatch(context.Background(), "add task buy milk")
	f.d.Dispatch(context.Background(), "Add Task walk the dog")
	assert.Equal(t, "Your tasks are: buy milk, walk the dog", f.d.Dispatch(context.Background(), "show tasks"))
}

func TestDispatch_Search(t *testing.T) {
	f := newFixture(t)

	reply := f.d.Dispatch(context.Background(), "please search for  go generics ")

	assert.Equal(t, `Searching for "go generics" on Google.`, reply)
	assert.Equal(t, []string{"https://www.google.com/search?q=go+generics"}, f.opener.urls)
}

func TestDispatch_SearchOpenFailureStillAnswers(t *testing.T) {
	f := newFixture(t)
	f.opener.err = errors.New("no display")

	reply := f.d.Dispatch(context.Background(), "search for cats")
	assert.Equal(t, `Searching for "cats" on Google.`, reply)
	assert.Len(t, f.store.Transcript(), 2)
}

func TestDispatch_FallbackGetsRawTextAfterUserEntry(t *testing.T) {
	f := newFixture(t)

	reply := f.d.Dispatch(context.Background(), "Tell me a joke")

	assert.Equal(t, []string{"Tell me a joke"}, f.completer.calls)
	assert.Equal(t, 1, f.completer.seen, "user entry must be recorded before the remote call")
	assert.Equal(t, "completion: Tell me a joke", reply)
	assert.Len(t, f.store.Transcript(), 2)
}

func TestDispatch_LoadingFlagAroundRemoteCalls(t *testing.T) {
	f := newFixture(t)

	f.d.Dispatch(context.Background(), "weather")
	assert.True(t, f.weather.loaded)
	assert.False(t, f.store.Loading())
	assert.Equal(t, "The current temperature in Mumbai is 31°C with clear sky.", f.store.Weather())
}

func TestDispatch_MissingKeyMakesNoNetworkCall(t *testing.T) {
	store, err := session.Open(session.NewFileKV(t.TempDir()))
	require.NoError(t, err)

	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { hits++ }))
	defer srv.Close()

	d := New(Options{
		Store:     store,
		Completer: services.NewLLMClient(srv.Client(), "", srv.URL, "m", services.PromptSpec{}, logger.Discard()),
		Log:       logger.Discard(),
	})

	reply := d.Dispatch(context.Background(), "tell me a joke")
	assert.Equal(t, "API Key is missing. Please check your environment variables.", reply)
	assert.Zero(t, hits)
}

func TestDispatch_WeatherFailureFallback(t *testing.T) {
	store, err := session.Open(session.NewFileKV(t.TempDir()))
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	base := srv.URL
	srv.Close()

	d := New(Options{
		Store:   store,
		Weather: services.NewWeatherClient(&http.Client{Timeout: time.Second}, base, "k", "metric", logger.Discard()),
		City:    "Mumbai",
		Log:     logger.Discard(),
	})

	var reply string
	require.NotPanics(t, func() { reply = d.Dispatch(context.Background(), "weather today?") })
	assert.Equal(t, "I couldn't fetch the weather data. Please try again later.", reply)
	assert.False(t, store.Loading())
	entries := store.Transcript()
	require.Len(t, entries, 2)
	assert.Equal(t, reply, entries[1].Text)
}

func TestDispatch_TranscriptSurvivesRestart(t *testing.T) {
	dir := t.TempDir()
	store, err := session.Open(session.NewFileKV(dir))
	require.NoError(t, err)
	d := New(Options{Store: store, Log: logger.Discard()})
	d.Dispatch(context.Background(), "add task water plants")
	d.Dispatch(context.Background(), "show tasks")
	before := store.Transcript()

	reopened, err := session.Open(session.NewFileKV(dir))
	require.NoError(t, err)
	after := reopened.Transcript()
	require.Len(t, after, len(before))
	for i := range before {
		assert.Equal(t, before[i].Speaker, after[i].Speaker)
		assert.Equal(t, before[i].Text, after[i].Text)
		assert.True(t, before[i].Timestamp.Equal(after[i].Timestamp))
	}
}

func TestAfter(t *testing.T) {
	arg, ok := after("Please SET A REMINDER  Call Mom ", "set a reminder")
	require.True(t, ok)
	assert.Equal(t, "Call Mom", arg)

	_, ok = after("remind me", "set a reminder")
	assert.False(t, ok)

	arg, ok = after("İstanbul weather forecast", "weather")
	require.True(t, ok)
	assert.True(t, strings.HasSuffix(arg, "forecast"))
}

func TestGreeting(t *testing.T) {
	at := func(h int) time.Time { return time.Date(2024, 1, 1, h, 0, 0, 0, time.UTC) }
	assert.Equal(t, "Good morning!", Greeting(at(8)))
	assert.Equal(t, "Good afternoon!", Greeting(at(12)))
	assert.Equal(t, "Good evening!", Greeting(at(18)))
	assert.Equal(t, "Good evening!", Greeting(at(23)))
}
