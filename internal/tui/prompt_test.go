package tui

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func expectQuit(t *testing.T, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected tea.QuitMsg")
	}
}

func TestPromptHotkeys(t *testing.T) {
	cases := map[string]Destination{
		"y": DestinationSource,
		"Y": DestinationSource,
		"n": DestinationSeparate,
		"q": DestinationNone,
	}
	for k, want := range cases {
		p := NewPrompt("in/slcsp.csv", "Output_slcsp.csv")
		_, cmd := p.Update(runes(k))
		expectQuit(t, cmd)
		if !p.Done() {
			t.Fatalf("%s: expected prompt to be done", k)
		}
		if p.Choice() != want {
			t.Fatalf("%s: expected %s, got %s", k, want, p.Choice())
		}
	}
}

func TestPromptEnterChoosesHighlighted(t *testing.T) {
	p := NewPrompt("in/slcsp.csv", "Output_slcsp.csv")
	if _, cmd := p.Update(tea.KeyMsg{Type: tea.KeyDown}); p.Done() {
		t.Fatalf("cursor movement must not finish the prompt (cmd %v)", cmd)
	}
	_, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	expectQuit(t, cmd)
	if p.Choice() != DestinationSeparate {
		t.Fatalf("expected separate after moving down, got %s", p.Choice())
	}
}

func TestPromptEnterDefaultsToSource(t *testing.T) {
	p := NewPrompt("in/slcsp.csv", "Output_slcsp.csv")
	_, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	expectQuit(t, cmd)
	if p.Choice() != DestinationSource {
		t.Fatalf("expected source, got %s", p.Choice())
	}
}

func TestPromptInvalidKeyKeepsWaiting(t *testing.T) {
	p := NewPrompt("in/slcsp.csv", "Output_slcsp.csv")
	_, cmd := p.Update(runes("x"))
	if cmd != nil {
		t.Fatalf("invalid key must not quit")
	}
	if p.Done() {
		t.Fatalf("prompt should still be waiting")
	}
	if !strings.Contains(p.View(), "Invalid key entered") {
		t.Fatalf("expected invalid key notice in view")
	}
	_, cmd = p.Update(runes("n"))
	expectQuit(t, cmd)
	if p.Choice() != DestinationSeparate {
		t.Fatalf("expected separate, got %s", p.Choice())
	}
}

func TestPromptEscapeCancels(t *testing.T) {
	p := NewPrompt("in/slcsp.csv", "Output_slcsp.csv")
	_, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEsc})
	expectQuit(t, cmd)
	if p.Choice() != DestinationNone {
		t.Fatalf("expected none, got %s", p.Choice())
	}
	if p.View() != "" {
		t.Fatalf("finished prompt should render nothing")
	}
}

func TestPromptViewShowsPaths(t *testing.T) {
	p := NewPrompt("in/slcsp.csv", "Output_slcsp.csv")
	p.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	view := p.View()
	for _, want := range []string{"in/slcsp.csv", "Output_slcsp.csv", "overwrite original"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected view to contain %q", want)
		}
	}
}

func TestParseDestination(t *testing.T) {
	for in, want := range map[string]Destination{
		"source":   DestinationSource,
		"y":        DestinationSource,
		"separate": DestinationSeparate,
		"n":        DestinationSeparate,
		"none":     DestinationNone,
	} {
		got, err := ParseDestination(in)
		if err != nil || got != want {
			t.Fatalf("%s: expected %s, got %s (%v)", in, want, got, err)
		}
	}
	if _, err := ParseDestination("elsewhere"); err == nil {
		t.Fatalf("expected error for unknown destination")
	}
}

func TestPromptIgnoresKeysAfterChoice(t *testing.T) {
	p := NewPrompt("in/slcsp.csv", "Output_slcsp.csv")
	p.Update(runes("n"))
	_, cmd := p.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Fatalf("finished prompt must not emit commands")
	}
	if p.Choice() != DestinationSeparate {
		t.Fatalf("expected choice to stay separate, got %s", p.Choice())
	}
}

func TestPromptInputClosedFinishes(t *testing.T) {
	p := NewPrompt("in/slcsp.csv", "Output_slcsp.csv")
	_, cmd := p.Update(inputClosedMsg{})
	expectQuit(t, cmd)
	if p.Choice() != DestinationNone {
		t.Fatalf("expected none, got %s", p.Choice())
	}
}

func TestAskReadsPipedInput(t *testing.T) {
	cases := map[string]Destination{
		"":    DestinationNone,
		"y\n": DestinationSource,
		"n\n": DestinationSeparate,
	}
	for input, want := range cases {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		start := time.Now()
		got, err := Ask(ctx, strings.NewReader(input), &bytes.Buffer{}, "in/slcsp.csv", "Output_slcsp.csv")
		cancel()
		if err != nil {
			t.Fatalf("%q: Ask returned error after %s: %v", input, time.Since(start), err)
		}
		if got != want {
			t.Fatalf("%q: expected %s, got %s", input, want, got)
		}
	}
}
