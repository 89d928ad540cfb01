// Package dispatch routes free-text commands to their handlers.
package dispatch

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"voice-assistant/internal/session"
	"voice-assistant/internal/speech"
)

type Intent string

const (
	IntentSearch    Intent = "search"
	IntentWeather   Intent = "weather"
	IntentNews      Intent = "news"
	IntentReminder  Intent = "reminder"
	IntentAddTask   Intent = "add_task"
	IntentShowTasks Intent = "show_tasks"
	IntentFallback  Intent = "fallback"
)

type WeatherService interface {
	Current(ctx context.Context, city string) string
}

type NewsService interface {
	Headlines(ctx context.Context) string
}

type Completer interface {
	Complete(ctx context.Context, message string) string
}

// Opener shows a URL to the user, typically in a browser.
type Opener interface {
	Open(url string) error
}

// Rule pairs a trigger phrase with its handler. arg is the trimmed text
// following the phrase.
type Rule struct {
	Intent Intent
	Phrase string
	Remote bool
	Handle func(ctx context.Context, raw, arg string) string
}

type Options struct {
	Store     *session.Store
	Speaker   speech.Synthesizer
	Weather   WeatherService
	News      NewsService
	Completer Completer
	Opener    Opener
	City      string
	SearchURL string
	Log       logrus.FieldLogger
}

// Dispatcher classifies a command against an ordered rule list, first match
// wins, and records both sides of the exchange in the session transcript.
type Dispatcher struct {
	opts  Options
	rules []Rule
	log   logrus.FieldLogger
}

func New(opts Options) *Dispatcher {
	if opts.Speaker == nil {
		opts.Speaker = speech.Mute{}
	}
	if opts.SearchURL == "" {
		opts.SearchURL = "https://www.google.com/search?q="
	}
	d := &Dispatcher{opts: opts, log: opts.Log.WithField("component", "dispatcher")}
	d.rules = []Rule{
		{Intent: IntentSearch, Phrase: "search for", Handle: d.search},
		{Intent: IntentWeather, Phrase: "weather", Remote: true, Handle: d.weather},
		{Intent: IntentNews, Phrase: "news", Remote: true, Handle: d.news},
		{Intent: IntentReminder, Phrase: "set a reminder", Handle: d.reminder},
		{Intent: IntentAddTask, Phrase: "add task", Handle: d.addTask},
		{Intent: IntentShowTasks, Phrase: "show tasks", Handle: d.showTasks},
	}
	return d
}

// Rules returns the classification order.
func (d *Dispatcher) Rules() []Rule {
	return append([]Rule(nil), d.rules...)
}

func (d *Dispatcher) match(text string) (Rule, string, bool) {
	for _, r := range d.rules {
		if arg, ok := after(text, r.Phrase); ok {
			return r, arg, true
		}
	}
	return Rule{}, "", false
}

// Classify reports which intent text would be routed to.
func (d *Dispatcher) Classify(text string) Intent {
	if r, _, ok := d.match(text); ok {
		return r.Intent
	}
	return IntentFallback
}

// Dispatch handles one command and returns the assistant's answer. The user
// entry is recorded before any remote call and the assistant entry after it
// resolves. Dispatch never fails; handler failures surface as apology text.
func (d *Dispatcher) Dispatch(ctx context.Context, raw string) string {
	d.record(session.User, raw)

	rule, arg, ok := d.match(raw)
	if !ok {
		rule = Rule{Intent: IntentFallback, Remote: true, Handle: d.fallback}
	}
	log := d.log.WithField("intent", rule.Intent)
	log.Debug("dispatching command")

	var reply string
	if rule.Remote {
		reply = d.remote(ctx, rule, raw, arg)
	} else {
		reply = rule.Handle(ctx, raw, arg)
	}

	d.record(session.Assistant, reply)
	d.opts.Speaker.Speak(reply)
	return reply
}

func (d *Dispatcher) remote(ctx context.Context, rule Rule, raw, arg string) string {
	d.opts.Store.SetLoading(true)
	defer d.opts.Store.SetLoading(false)
	return rule.Handle(ctx, raw, arg)
}

func (d *Dispatcher) record(speaker session.Speaker, text string) {
	if _, err := d.opts.Store.Append(speaker, text); err != nil {
		d.log.WithError(err).WithField("speaker", speaker).Error("persisting transcript")
	}
}

func (d *Dispatcher) search(_ context.Context, _, query string) string {
	if d.opts.Opener != nil {
		if err := d.opts.Opener.Open(d.opts.SearchURL + url.QueryEscape(query)); err != nil {
			d.log.WithError(err).Warn("opening search results")
		}
	}
	return fmt.Sprintf("Searching for %q on Google.", query)
}

func (d *Dispatcher) weather(ctx context.Context, _, _ string) string {
	report := d.opts.Weather.Current(ctx, d.opts.City)
	d.opts.Store.SetWeather(report)
	return report
}

func (d *Dispatcher) news(ctx context.Context, _, _ string) string {
	return d.opts.News.Headlines(ctx)
}

func (d *Dispatcher) reminder(_ context.Context, _, text string) string {
	if err := d.opts.Store.AddReminder(text); err != nil {
		d.log.WithError(err).Error("persisting reminder")
	}
	return "Reminder set: " + text
}

func (d *Dispatcher) addTask(_ context.Context, _, text string) string {
	if err := d.opts.Store.AddTask(text); err != nil {
		d.log.WithError(err).Error("persisting task")
	}
	return "Task added: " + text
}

func (d *Dispatcher) showTasks(context.Context, string, string) string {
	tasks := d.opts.Store.Tasks()
	if len(tasks) == 0 {
		return "You have no tasks."
	}
	return "Your tasks are: " + strings.Join(tasks, ", ")
}

func (d *Dispatcher) fallback(ctx context.Context, raw, _ string) string {
	return d.opts.Completer.Complete(ctx, raw)
}

// after reports whether text contains phrase, ignoring case, and returns the
// trimmed text following its first occurrence.
func after(text, phrase string) (string, bool) {
	lower := strings.ToLower(text)
	i := strings.Index(lower, strings.ToLower(phrase))
	if i < 0 {
		return "", false
	}
	rest := lower[i+len(phrase):]
	// lowering can change byte lengths outside ASCII; slice the original only
	// when offsets still line up
	if len(lower) == len(text) {
		rest = text[i+len(phrase):]
	}
	return strings.TrimSpace(rest), true
}

// Greeting returns the salutation spoken when listening starts.
func Greeting(t time.Time) string {
	switch h := t.Hour(); {
	case h < 12:
		return "Good morning!"
	case h < 18:
		return "Good afternoon!"
	default:
		return "Good evening!"
	}
}
