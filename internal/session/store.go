package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Storage keys; each holds a JSON-encoded ordered list.
const (
	KeyChatHistory = "chatHistory"
	KeyReminders   = "reminders"
	KeyTasks       = "tasks"
)

var ErrIndexOutOfRange = errors.New("index out of range")

type Speaker string

const (
	User      Speaker = "User"
	Assistant Speaker = "Assistant"
)

// Entry is one line of the transcript.
type Entry struct {
	Speaker   Speaker   `json:"speaker"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

func (e Entry) String() string {
	return string(e.Speaker) + ": " + e.Text
}

// Store holds the transcript, reminders and tasks mirrored to a KV, plus
// transient state that lives only as long as the process.
type Store struct {
	mu  sync.RWMutex
	kv  KV
	now func() time.Time

	transcript []Entry
	reminders  []string
	tasks      []string

	voice     string
	listening bool
	loading   bool
	battery   int
	weather   string
}

// Open restores the persisted collections from kv.
func Open(kv KV) (*Store, error) {
	s := &Store{kv: kv, now: time.Now, battery: -1}
	if err := s.load(KeyChatHistory, &s.transcript); err != nil {
		return nil, err
	}
	if err := s.load(KeyReminders, &s.reminders); err != nil {
		return nil, err
	}
	if err := s.load(KeyTasks, &s.tasks); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load(key string, into any) error {
	b, ok, err := s.kv.Get(key)
	if err != nil {
		return fmt.Errorf("loading %s: %w", key, err)
	}
	if !ok || len(b) == 0 {
		return nil
	}
	if err := json.Unmarshal(b, into); err != nil {
		return fmt.Errorf("decoding %s: %w", key, err)
	}
	return nil
}

func (s *Store) persistLocked(key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	if err := s.kv.Set(key, b); err != nil {
		return fmt.Errorf("persisting %s: %w", key, err)
	}
	return nil
}

// Append adds an entry to the transcript and persists the whole transcript.
// The entry is kept in memory even when persisting fails.
func (s *Store) Append(speaker Speaker, text string) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := Entry{Speaker: speaker, Text: text, Timestamp: s.now()}
	s.transcript = append(s.transcript, e)
	return e, s.persistLocked(KeyChatHistory, s.transcript)
}

func (s *Store) Transcript() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Entry(nil), s.transcript...)
}

// ClearTranscript empties the transcript and removes it from storage.
func (s *Store) ClearTranscript() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript = nil
	if err := s.kv.Delete(KeyChatHistory); err != nil {
		return fmt.Errorf("clearing %s: %w", KeyChatHistory, err)
	}
	return nil
}

func (s *Store) AddReminder(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reminders = append(s.reminders, text)
	return s.persistLocked(KeyReminders, s.reminders)
}

func (s *Store) Reminders() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.reminders...)
}

// DeleteReminder removes the reminder at index i of the current list.
func (s *Store) DeleteReminder(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	out, err := removeAt(s.reminders, i)
	if err != nil {
		return err
	}
	s.reminders = out
	return s.persistLocked(KeyReminders, s.reminders)
}

func (s *Store) AddTask(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append(s.tasks, text)
	return s.persistLocked(KeyTasks, s.tasks)
}

func (s *Store) Tasks() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.tasks...)
}

// DeleteTask removes the task at index i of the current list.
func (s *Store) DeleteTask(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	out, err := removeAt(s.tasks, i)
	if err != nil {
		return err
	}
	s.tasks = out
	return s.persistLocked(KeyTasks, s.tasks)
}

func removeAt(items []string, i int) ([]string, error) {
	if i < 0 || i >= len(items) {
		return nil, fmt.Errorf("%w: %d (have %d)", ErrIndexOutOfRange, i, len(items))
	}
	out := make([]string, 0, len(items)-1)
	out = append(out, items[:i]...)
	return append(out, items[i+1:]...), nil
}

// Transient state

func (s *Store) SetListening(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listening = v
}

func (s *Store) Listening() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listening
}

func (s *Store) SetLoading(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = v
}

func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *Store) SetVoice(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.voice = name
}

func (s *Store) Voice() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.voice
}

// SetBattery records the battery percentage; -1 means unknown.
func (s *Store) SetBattery(percent int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.battery = percent
}

func (s *Store) Battery() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.battery
}

func (s *Store) SetWeather(report string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.weather = report
}

func (s *Store) Weather() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.weather
}
