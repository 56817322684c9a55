// Package tray provides the system tray menu for handmouse.
package tray

import (
	"sync"

	"github.com/getlantern/systray"
)

// Tray is the system tray menu: an enable toggle, the last dispatched
// gesture, a hand swap and quit.
type Tray struct {
	onToggle func(enabled bool)
	onSwap   func()
	onQuit   func()
	enabled  bool
	dominant string
	mu       sync.RWMutex

	menuToggle      *systray.MenuItem
	menuLastGesture *systray.MenuItem
	menuDominant    *systray.MenuItem
}

// New creates a Tray showing the enabled state and dominant hand.
func New(enabled bool, dominant string) *Tray {
	return &Tray{
		enabled:  enabled,
		dominant: dominant,
	}
}

// OnToggle sets the callback called when the enabled state is toggled.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnSwapHands sets the callback called when the user swaps the dominant hand.
func (t *Tray) OnSwapHands(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onSwap = fn
}

// OnQuit sets the callback called when Quit is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the tray. It must be called from the main goroutine and blocks
// until Quit.
func (t *Tray) Run() {
	systray.Run(t.onReady, func() {})
}

// Quit closes the tray and makes Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetTitle("handmouse")
	systray.SetTooltip("handmouse gesture control")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.enabled), "Pause or resume gesture control")
	systray.AddSeparator()
	t.menuLastGesture = systray.AddMenuItem("Last: none", "Last dispatched gesture")
	t.menuLastGesture.Disable()
	t.menuDominant = systray.AddMenuItem(dominantTitle(t.dominant), "Swap the cursor hand")
	t.mu.Unlock()
	systray.AddSeparator()
	menuQuit := systray.AddMenuItem("Quit", "Quit handmouse")

	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-t.menuDominant.ClickedCh:
				t.handleSwap()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Enabled"
	}
	return "○ Disabled"
}

func dominantTitle(hand string) string {
	return "Cursor hand: " + hand
}

func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}
	callback := t.onToggle
	t.mu.Unlock()

	// outside the lock: the callback may call back into the tray
	if callback != nil {
		callback(enabled)
	}
}

func (t *Tray) handleSwap() {
	t.mu.RLock()
	callback := t.onSwap
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
	systray.Quit()
}

// SetLastGesture updates the last gesture line.
func (t *Tray) SetLastGesture(name string) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuLastGesture == nil {
		return
	}
	if name == "" {
		t.menuLastGesture.SetTitle("Last: none")
	} else {
		t.menuLastGesture.SetTitle("Last: " + name)
	}
}

// SetDominant updates the cursor hand line.
func (t *Tray) SetDominant(hand string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.dominant = hand
	if t.menuDominant != nil {
		t.menuDominant.SetTitle(dominantTitle(hand))
	}
}

// Dominant returns the hand shown in the menu.
func (t *Tray) Dominant() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.dominant
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}
