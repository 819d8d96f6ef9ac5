// internal/tui/prompt.go
//
// The destination prompt asks where the complete output table should go.
// It uses bubbletea, which follows The Elm Architecture:
//
// 1. Model: the highlighted option and the final choice
// 2. Update: key presses move the cursor or pick an option
// 3. View: the question, the options, and a key hint

package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Destination is where the complete output table is written.
type Destination int

const (
	DestinationNone     Destination = iota // Nothing is written
	DestinationSource                      // Overwrite the target ZIP table
	DestinationSeparate                    // Write the separate output table
)

func (d Destination) String() string {
	switch d {
	case DestinationSource:
		return "source"
	case DestinationSeparate:
		return "separate"
	default:
		return "none"
	}
}

// ParseDestination converts a -write flag value into a Destination.
func ParseDestination(value string) (Destination, error) {
	switch value {
	case "source", "y":
		return DestinationSource, nil
	case "separate", "n":
		return DestinationSeparate, nil
	case "none":
		return DestinationNone, nil
	default:
		return DestinationNone, fmt.Errorf("write must be 'source', 'separate' or 'none', got %q", value)
	}
}

const (
	promptWidth  = 72
	promptHeight = 12
)

type keyMap struct {
	Source   key.Binding
	Separate key.Binding
	Choose   key.Binding
	Cancel   key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Source:   key.NewBinding(key.WithKeys("y", "Y"), key.WithHelp("y", "overwrite original")),
		Separate: key.NewBinding(key.WithKeys("n", "N"), key.WithHelp("n", "separate file")),
		Choose:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "choose")),
		Cancel:   key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "skip")),
	}
}

// destinationItem implements list.Item for the prompt options
type destinationItem struct {
	title string
	desc  string
	dest  Destination
}

func (i destinationItem) Title() string       { return i.title }
func (i destinationItem) Description() string { return i.desc }
func (i destinationItem) FilterValue() string { return i.title }

// Prompt is the destination question model.
type Prompt struct {
	options list.Model
	keys    keyMap
	choice  Destination
	status  string
	done    bool
}

// NewPrompt builds a prompt offering sourcePath (the target ZIP table) and
// separatePath (the standalone output table).
func NewPrompt(sourcePath, separatePath string) *Prompt {
	items := []list.Item{
		destinationItem{
			title: "y · Write to the original SLCSP file",
			desc:  sourcePath,
			dest:  DestinationSource,
		},
		destinationItem{
			title: "n · Write to a separate output file",
			desc:  separatePath,
			dest:  DestinationSeparate,
		},
	}
	options := list.New(items, list.NewDefaultDelegate(), promptWidth, promptHeight)
	options.Title = "Do you wish to write the complete output to the original SLCSP file?"
	options.SetShowStatusBar(false)
	options.SetFilteringEnabled(false)
	options.SetShowHelp(false)
	return &Prompt{options: options, keys: defaultKeyMap()}
}

// Choice returns the selected destination once the prompt has finished.
func (p *Prompt) Choice() Destination { return p.choice }

// Done reports whether the user picked an option or cancelled.
func (p *Prompt) Done() bool { return p.done }

// Init implements tea.Model.
func (p *Prompt) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (p *Prompt) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if p.done {
		return p, nil
	}
	switch msg := msg.(type) {
	case inputClosedMsg:
		return p.finish(DestinationNone)
	case tea.WindowSizeMsg:
		p.options.SetSize(min(msg.Width, promptWidth), promptHeight)
		return p, nil
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, p.keys.Source):
			return p.finish(DestinationSource)
		case key.Matches(msg, p.keys.Separate):
			return p.finish(DestinationSeparate)
		case key.Matches(msg, p.keys.Cancel):
			return p.finish(DestinationNone)
		case key.Matches(msg, p.keys.Choose):
			if item, ok := p.options.SelectedItem().(destinationItem); ok {
				return p.finish(item.dest)
			}
			return p, nil
		case key.Matches(msg, p.options.KeyMap.CursorUp, p.options.KeyMap.CursorDown):
			p.status = ""
			var cmd tea.Cmd
			p.options, cmd = p.options.Update(msg)
			return p, cmd
		default:
			p.status = "Invalid key entered! Press y or n."
			return p, nil
		}
	}
	return p, nil
}

func (p *Prompt) finish(dest Destination) (tea.Model, tea.Cmd) {
	p.choice = dest
	p.done = true
	return p, tea.Quit
}

// View implements tea.Model.
func (p *Prompt) View() string {
	if p.done {
		return ""
	}
	sections := []string{p.options.View()}
	if p.status != "" {
		sections = append(sections, lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Render(p.status))
	}
	hint := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#AAAAAA")).
		Render(helpLine(p.keys.Source, p.keys.Separate, p.keys.Choose, p.keys.Cancel))
	sections = append(sections, hint)
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(0, 1).
		Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func helpLine(bindings ...key.Binding) string {
	out := ""
	for i, b := range bindings {
		if i > 0 {
			out += " · "
		}
		h := b.Help()
		out += h.Key + " " + h.Desc
	}
	return out
}

// inputClosedMsg reports that the prompt's input reached end of file, so no
// answer can ever arrive.
type inputClosedMsg struct{}

// eofReader calls onEOF the first time the wrapped reader is exhausted.
type eofReader struct {
	r     io.Reader
	once  sync.Once
	onEOF func()
}

func (e *eofReader) Read(b []byte) (int, error) {
	n, err := e.r.Read(b)
	if errors.Is(err, io.EOF) && e.onEOF != nil {
		e.once.Do(e.onEOF)
	}
	return n, err
}

// Ask runs the prompt on in/out and returns the chosen destination. Closed
// input (a pipe or /dev/null) ends the prompt with DestinationNone.
func Ask(ctx context.Context, in io.Reader, out io.Writer, sourcePath, separatePath string) (Destination, error) {
	prompt := NewPrompt(sourcePath, separatePath)
	input := &eofReader{r: in}
	program := tea.NewProgram(prompt,
		tea.WithContext(ctx),
		tea.WithInput(input),
		tea.WithOutput(out),
	)
	input.onEOF = func() {
		go program.Send(inputClosedMsg{})
	}
	final, err := program.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return DestinationNone, ctx.Err()
		}
		return DestinationNone, fmt.Errorf("tui: run prompt: %w", err)
	}
	if p, ok := final.(*Prompt); ok {
		return p.Choice(), nil
	}
	return DestinationNone, fmt.Errorf("tui: unexpected model type %T", final)
}
