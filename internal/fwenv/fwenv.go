// Package fwenv resolves the LED's GPIO pin and polarity from the bootloader
// environment. The real implementation shells out to fw_printenv; a Dumper
// fake allows testing without U-Boot tooling.
package fwenv

import (
	"errors"
	"fmt"
	"os/exec"
	"sort"
	"strings"

	"github.com/sweeney/bootled/internal/blink"
)

// KeyPrefix selects the environment variables that describe LED pins.
const KeyPrefix = "gpio_led_"

// DefaultCommand dumps the full bootloader environment as key=value lines.
const DefaultCommand = "fw_printenv"

// ErrNotFound is returned when no gpio_led_ entry carries a usable pin.
var ErrNotFound = errors.New("fwenv: no gpio_led_ entries found")

// Dumper produces the bootloader environment as key=value lines.
type Dumper interface {
	Dump() (string, error)
}

// ExecDumper runs an external environment-dump command.
type ExecDumper struct {
	// Command is the program to run; defaults to fw_printenv when empty.
	Command string
	// Args are passed to the command verbatim.
	Args []string
}

// Dump runs the command and returns its combined key=value output.
func (d *ExecDumper) Dump() (string, error) {
	command := d.Command
	if command == "" {
		command = DefaultCommand
	}
	out, err := exec.Command(command, d.Args...).Output()
	if err != nil {
		return "", fmt.Errorf("run %s: %w", command, err)
	}
	return string(out), nil
}

// StaticDumper returns a fixed dump, for tests.
type StaticDumper struct {
	Output string
	Err    error
}

// Dump returns the configured output.
func (d *StaticDumper) Dump() (string, error) {
	return d.Output, d.Err
}

// Resolve queries the dumper and returns the first usable LED line.
//
// Matching keys are sorted so the result does not depend on the dump order.
// The value's leading digits are the pin number; the remainder selects
// polarity: a lowercase 'o' marks the LED active-low (idle level 1), an
// uppercase 'O' active-high, and no marker defaults to active-high.
func Resolve(dumper Dumper) (blink.Line, error) {
	dump, err := dumper.Dump()
	if err != nil {
		return blink.Line{}, err
	}

	var candidates []string
	for _, raw := range strings.Split(dump, "\n") {
		line := strings.TrimSpace(raw)
		if strings.HasPrefix(line, KeyPrefix) && strings.Contains(line, "=") {
			candidates = append(candidates, line)
		}
	}
	sort.Strings(candidates)

	for _, line := range candidates {
		value := line[strings.Index(line, "=")+1:]
		pin, rest, ok := splitPin(value)
		if !ok {
			continue
		}
		return lineForPolarity(pin, rest), nil
	}

	return blink.Line{}, ErrNotFound
}

// splitPin parses the leading non-negative integer of the value. At least one
// digit is required; a digitless value never resolves to pin 0.
func splitPin(value string) (pin int, rest string, ok bool) {
	i := 0
	for i < len(value) && value[i] >= '0' && value[i] <= '9' {
		pin = pin*10 + int(value[i]-'0')
		i++
	}
	if i == 0 {
		return 0, "", false
	}
	return pin, value[i:], true
}

func lineForPolarity(pin int, marker string) blink.Line {
	if strings.Contains(marker, "o") {
		return blink.Line{Pin: pin, Idle: 1, Active: 0, ActiveLow: true}
	}
	// Uppercase 'O' and the no-marker default are both active-high.
	return blink.Line{Pin: pin, Idle: 0, Active: 1}
}
