package speech

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// ESpeak drives the espeak-ng command line synthesizer.
type ESpeak struct {
	bin string
	log logrus.FieldLogger

	mu    sync.Mutex
	voice string
}

// NewESpeak looks bin up on PATH and fails when it is not installed.
func NewESpeak(bin string, log logrus.FieldLogger) (*ESpeak, error) {
	path, err := exec.LookPath(bin)
	if err != nil {
		return nil, fmt.Errorf("speech synthesizer %q: %w", bin, err)
	}
	return &ESpeak{bin: path, log: log.WithField("component", "espeak")}, nil
}

// UseVoice picks the installed voice named name, falling back to the default
// voice. It returns the voice actually selected.
func (e *ESpeak) UseVoice(ctx context.Context, name string) (Voice, error) {
	voices, err := e.Voices(ctx)
	if err != nil {
		return Voice{}, err
	}
	v, ok := SelectVoice(voices, name)
	if !ok {
		return Voice{}, fmt.Errorf("no voices installed")
	}
	if v.Name != name {
		e.log.WithFields(logrus.Fields{"wanted": name, "using": v.Name}).Warn("voice not found, using default")
	}
	e.mu.Lock()
	e.voice = v.Name
	e.mu.Unlock()
	return v, nil
}

func (e *ESpeak) Speak(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	e.mu.Lock()
	voice := e.voice
	e.mu.Unlock()

	args := []string{}
	if voice != "" {
		args = append(args, "-v", voice)
	}
	// "--" keeps text starting with "-" from being read as a flag
	args = append(args, "--", text)
	cmd := exec.Command(e.bin, args...)
	if err := cmd.Start(); err != nil {
		e.log.WithError(err).Error("starting synthesizer")
		return
	}
	go func() {
		if err := cmd.Wait(); err != nil {
			e.log.WithError(err).Warn("synthesizer exited")
		}
	}()
}

// Voices lists installed voices via `espeak-ng --voices`.
func (e *ESpeak) Voices(ctx context.Context) ([]Voice, error) {
	out, err := exec.CommandContext(ctx, e.bin, "--voices").Output()
	if err != nil {
		return nil, fmt.Errorf("listing voices: %w", err)
	}
	return parseVoices(out), nil
}

// parseVoices reads the table printed by --voices:
//
//	Pty Language       Age/Gender VoiceName          File                 Other Languages
//	 5  af              --/M      Afrikaans          gmw/af
func parseVoices(out []byte) []Voice {
	var voices []Voice
	sc := bufio.NewScanner(bytes.NewReader(out))
	header := true
	for sc.Scan() {
		if header {
			header = false
			continue
		}
		fields := strings.Fields(sc.Text())
		if len(fields) < 4 {
			continue
		}
		voices = append(voices, Voice{Name: fields[3], Language: fields[1]})
	}
	return voices
}
