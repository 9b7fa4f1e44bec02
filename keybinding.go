package main

import (
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// KeyState answers key queries for the current frame.
type KeyState interface {
	IsKeyJustPressed(key ebiten.Key) bool
	IsKeyPressed(key ebiten.Key) bool
}

// ebitenKeys reads the real keyboard through ebiten
type ebitenKeys struct{}

func (ebitenKeys) IsKeyJustPressed(key ebiten.Key) bool { return inpututil.IsKeyJustPressed(key) }
func (ebitenKeys) IsKeyPressed(key ebiten.Key) bool     { return ebiten.IsKeyPressed(key) }

// KeybindingManager resolves configured key strings to actions
type KeybindingManager struct {
	keybindings map[string][]string
	keyMapping  map[string]ebiten.Key
	keys        KeyState
}

// NewKeybindingManager creates a KeybindingManager reading the real keyboard
func NewKeybindingManager(keybindings map[string][]string) *KeybindingManager {
	return &KeybindingManager{
		keybindings: keybindings,
		keyMapping:  getKeyMapping(),
		keys:        ebitenKeys{},
	}
}

// getKeyMapping returns a mapping from configuration key names to ebiten keys
func getKeyMapping() map[string]ebiten.Key {
	m := map[string]ebiten.Key{
		"Space":      ebiten.KeySpace,
		"Backspace":  ebiten.KeyBackspace,
		"Enter":      ebiten.KeyEnter,
		"Escape":     ebiten.KeyEscape,
		"Tab":        ebiten.KeyTab,
		"Home":       ebiten.KeyHome,
		"End":        ebiten.KeyEnd,
		"PageUp":     ebiten.KeyPageUp,
		"PageDown":   ebiten.KeyPageDown,
		"ArrowUp":    ebiten.KeyArrowUp,
		"ArrowDown":  ebiten.KeyArrowDown,
		"ArrowLeft":  ebiten.KeyArrowLeft,
		"ArrowRight": ebiten.KeyArrowRight,
		"F1":         ebiten.KeyF1,
		"F10":        ebiten.KeyF10,
		"F12":        ebiten.KeyF12,
	}
	letters := []ebiten.Key{
		ebiten.KeyA, ebiten.KeyB, ebiten.KeyC, ebiten.KeyD, ebiten.KeyE, ebiten.KeyF, ebiten.KeyG,
		ebiten.KeyH, ebiten.KeyI, ebiten.KeyJ, ebiten.KeyK, ebiten.KeyL, ebiten.KeyM, ebiten.KeyN,
		ebiten.KeyO, ebiten.KeyP, ebiten.KeyQ, ebiten.KeyR, ebiten.KeyS, ebiten.KeyT, ebiten.KeyU,
		ebiten.KeyV, ebiten.KeyW, ebiten.KeyX, ebiten.KeyY, ebiten.KeyZ,
	}
	for i, k := range letters {
		m["Key"+string(rune('A'+i))] = k
	}
	digits := []ebiten.Key{
		ebiten.Key0, ebiten.Key1, ebiten.Key2, ebiten.Key3, ebiten.Key4,
		ebiten.Key5, ebiten.Key6, ebiten.Key7, ebiten.Key8, ebiten.Key9,
	}
	for i, k := range digits {
		m["Key"+string(rune('0'+i))] = k
	}
	return m
}

// KeyCombination represents a key with optional modifiers
type KeyCombination struct {
	Key   ebiten.Key
	Shift bool
	Ctrl  bool
	Alt   bool
}

// parseKeyString parses a key string like "Shift+KeyQ" into a KeyCombination
func (km *KeybindingManager) parseKeyString(keyStr string) (*KeyCombination, bool) {
	parts := strings.Split(keyStr, "+")

	key, exists := km.keyMapping[parts[len(parts)-1]]
	if !exists {
		return nil, false
	}
	combination := &KeyCombination{Key: key}

	for _, modifier := range parts[:len(parts)-1] {
		switch strings.ToLower(modifier) {
		case "shift":
			combination.Shift = true
		case "ctrl":
			combination.Ctrl = true
		case "alt":
			combination.Alt = true
		default:
			return nil, false
		}
	}

	return combination, true
}

// ignoresExtraModifiers lists actions that fire while unrelated modifiers
// are held. exit is the only way out of the slideshow.
var ignoresExtraModifiers = map[string]bool{"exit": true}

// isTriggered reports whether the combination was pressed this frame. Its own
// modifiers must be held; others must be released unless exact is false.
func (km *KeybindingManager) isTriggered(combination *KeyCombination, exact bool) bool {
	if !km.keys.IsKeyJustPressed(combination.Key) {
		return false
	}

	matches := func(want bool, key ebiten.Key) bool {
		held := km.keys.IsKeyPressed(key)
		if want {
			return held
		}
		return !exact || !held
	}
	return matches(combination.Shift, ebiten.KeyShift) &&
		matches(combination.Ctrl, ebiten.KeyControl) &&
		matches(combination.Alt, ebiten.KeyAlt)
}

// CheckAction checks if any keybinding for the given action was pressed
func (km *KeybindingManager) CheckAction(action string) bool {
	exact := !ignoresExtraModifiers[action]
	for _, keyStr := range km.keybindings[action] {
		combination, valid := km.parseKeyString(keyStr)
		if valid && km.isTriggered(combination, exact) {
			return true
		}
	}
	return false
}

// ExecuteAction runs action if one of its keys was pressed
func (km *KeybindingManager) ExecuteAction(action string, inputActions InputActions) bool {
	if !km.CheckAction(action) {
		return false
	}

	return globalActionExecutor.ExecuteAction(action, inputActions)
}
