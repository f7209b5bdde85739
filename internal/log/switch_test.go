package log

import (
	"bytes"
	"strings"
	"sync"
	"testing"
)

// TestSwitch tests the state transitions.
func TestSwitch(t *testing.T) {
	t.Parallel()

	var s Switch
	if s.Enabled() {
		t.Fatal("zero Switch must be off")
	}
	if !s.Toggle() || !s.Enabled() {
		t.Error("Toggle should turn the switch on")
	}
	if s.Toggle() || s.Enabled() {
		t.Error("second Toggle should turn the switch off")
	}
	if !s.Set(true) || !s.Enabled() {
		t.Error("Set(true) should turn the switch on")
	}
	if !NewSwitch(true).Enabled() {
		t.Error("NewSwitch(true) should start on")
	}
}

// TestSwitch_ConcurrentToggle tests that toggles are not lost.
func TestSwitch_ConcurrentToggle(t *testing.T) {
	t.Parallel()

	var (
		s  Switch
		wg sync.WaitGroup
	)
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Toggle()
		}()
	}
	wg.Wait()

	if s.Enabled() {
		t.Error("an even number of toggles must leave the switch off")
	}
}

// TestSwitchHandler tests that records are dropped while the switch is off.
func TestSwitchHandler(t *testing.T) {
	t.Parallel()

	var (
		buf bytes.Buffer
		sw  Switch
	)
	logger := NewLogger(&buf, Options{Verbose: true, Switch: &sw}).With("context", "page")

	logger.Warn("silent")
	if buf.Len() != 0 {
		t.Fatalf("expected no output while off, got %q", buf.String())
	}

	sw.Set(true)
	logger.Info("cart button armed", "api_key", "abc")

	output := buf.String()
	if !strings.Contains(output, "cart button armed") {
		t.Errorf("expected output while on, got %q", output)
	}
	if !strings.Contains(output, "context=page") {
		t.Errorf("bound attributes should survive, got %q", output)
	}
	if strings.Contains(output, "abc") {
		t.Errorf("switch must not bypass sanitizing: %q", output)
	}
}
