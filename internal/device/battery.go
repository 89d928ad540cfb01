// Package device reads host status shown alongside the assistant.
package device

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultPowerSupplyRoot is where Linux exposes batteries and adapters.
const DefaultPowerSupplyRoot = "/sys/class/power_supply"

var ErrNoBattery = errors.New("no battery found")

// ReadBattery returns the charge of the first battery under root as a
// percentage in [0, 100].
func ReadBattery(root string) (int, error) {
	entries, err := os.ReadDir(root)
	if errors.Is(err, os.ErrNotExist) {
		return 0, ErrNoBattery
	}
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", root, err)
	}
	for _, e := range entries {
		dir := filepath.Join(root, e.Name())
		kind, err := readTrimmed(filepath.Join(dir, "type"))
		if err != nil || !strings.EqualFold(kind, "Battery") {
			continue
		}
		raw, err := readTrimmed(filepath.Join(dir, "capacity"))
		if err != nil {
			return 0, fmt.Errorf("reading capacity of %s: %w", e.Name(), err)
		}
		pct, err := strconv.Atoi(raw)
		if err != nil {
			return 0, fmt.Errorf("parsing capacity of %s: %w", e.Name(), err)
		}
		return min(max(pct, 0), 100), nil
	}
	return 0, ErrNoBattery
}

func readTrimmed(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}
