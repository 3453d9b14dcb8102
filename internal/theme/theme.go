package theme

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Mode is the persisted theme preference.
type Mode string

const (
	ModeLight  Mode = "light"
	ModeDark   Mode = "dark"
	ModeSystem Mode = "system"
)

var Modes = []Mode{ModeSystem, ModeLight, ModeDark}

// ParseMode maps a stored value to a Mode. Unknown values mean system.
func ParseMode(s string) Mode {
	switch Mode(s) {
	case ModeLight, ModeDark:
		return Mode(s)
	}
	return ModeSystem
}

// Palette holds the colors every view draws with.
type Palette struct {
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color
	Muted     lipgloss.Color
	Success   lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color
	Bg        lipgloss.Color
	Fg        lipgloss.Color
	Subtle    lipgloss.Color
	Highlight lipgloss.Color
}

var darkPalette = Palette{
	Primary:   lipgloss.Color("#6C63FF"),
	Secondary: lipgloss.Color("#2EC4B6"),
	Accent:    lipgloss.Color("#FF6B6B"),
	Muted:     lipgloss.Color("#666666"),
	Success:   lipgloss.Color("#2ECC71"),
	Warning:   lipgloss.Color("#F39C12"),
	Error:     lipgloss.Color("#E74C3C"),
	Bg:        lipgloss.Color("#1A1B26"),
	Fg:        lipgloss.Color("#C0CAF5"),
	Subtle:    lipgloss.Color("#414868"),
	Highlight: lipgloss.Color("#7AA2F7"),
}

var lightPalette = Palette{
	Primary:   lipgloss.Color("#4B3FD9"),
	Secondary: lipgloss.Color("#168F84"),
	Accent:    lipgloss.Color("#D64545"),
	Muted:     lipgloss.Color("#8A8A8A"),
	Success:   lipgloss.Color("#1E8E4E"),
	Warning:   lipgloss.Color("#B86E00"),
	Error:     lipgloss.Color("#C0392B"),
	Bg:        lipgloss.Color("#FAFAFA"),
	Fg:        lipgloss.Color("#24283B"),
	Subtle:    lipgloss.Color("#C8CCE0"),
	Highlight: lipgloss.Color("#2E5CC8"),
}

// Theme is an immutable resolved theme.
type Theme struct {
	Mode    Mode
	Dark    bool
	Palette Palette
}

// Resolve picks the palette for mode. systemDark is only consulted in
// ModeSystem.
func Resolve(mode Mode, systemDark bool) Theme {
	dark := systemDark
	switch mode {
	case ModeLight:
		dark = false
	case ModeDark:
		dark = true
	default:
		mode = ModeSystem
	}
	p := lightPalette
	if dark {
		p = darkPalette
	}
	return Theme{Mode: mode, Dark: dark, Palette: p}
}

// ModeStore persists the theme preference. *store.Store satisfies it.
type ModeStore interface {
	ThemeMode() (string, error)
	SetThemeMode(mode string) error
}

// Provider owns the current theme and pushes changes to subscribers.
type Provider struct {
	mu      sync.RWMutex
	store   ModeStore
	dark    bool
	current Theme
	subs    map[int]chan Theme
	next    int
}

// NewProvider loads the persisted mode. detect reports the OS appearance; a
// nil detect uses lipgloss.HasDarkBackground.
func NewProvider(store ModeStore, detect func() bool) (*Provider, error) {
	if detect == nil {
		detect = lipgloss.HasDarkBackground
	}
	raw, err := store.ThemeMode()
	if err != nil {
		return nil, fmt.Errorf("load theme mode: %w", err)
	}
	dark := detect()
	return &Provider{
		store:   store,
		dark:    dark,
		current: Resolve(ParseMode(raw), dark),
		subs:    make(map[int]chan Theme),
	}, nil
}

// Current returns the current theme.
func (p *Provider) Current() Theme {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

// Set persists mode, recomputes the theme and publishes it.
func (p *Provider) Set(mode Mode) (Theme, error) {
	mode = ParseMode(string(mode))
	if err := p.store.SetThemeMode(string(mode)); err != nil {
		return p.Current(), fmt.Errorf("save theme mode: %w", err)
	}

	p.mu.Lock()
	p.current = Resolve(mode, p.dark)
	t := p.current
	p.mu.Unlock()

	p.publish(t)
	return t, nil
}

func (p *Provider) publish(t Theme) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, ch := range p.subs {
		select {
		case ch <- t:
		default:
			// Drop if the subscriber is full.
		}
	}
}

// Subscribe returns a channel of theme changes and an unsubscribe function.
func (p *Provider) Subscribe(bufSize int) (<-chan Theme, func()) {
	ch := make(chan Theme, bufSize)
	p.mu.Lock()
	id := p.next
	p.next++
	p.subs[id] = ch
	p.mu.Unlock()

	return ch, func() {
		p.mu.Lock()
		delete(p.subs, id)
		p.mu.Unlock()
	}
}
