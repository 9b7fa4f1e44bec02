package main

// InputHandler handles all keyboard input processing
type InputHandler struct {
	inputActions      InputActions
	keybindingManager *KeybindingManager
}

// NewInputHandler creates a new InputHandler
func NewInputHandler(inputActions InputActions, keybindingManager *KeybindingManager) *InputHandler {
	return &InputHandler{
		inputActions:      inputActions,
		keybindingManager: keybindingManager,
	}
}

// HandleInput processes all input for the current frame.
// Returns true if any input was processed.
func (h *InputHandler) HandleInput() bool {
	// Exit wins over everything else pressed in the same frame
	if h.keybindingManager.ExecuteAction("exit", h.inputActions) {
		return true
	}
	return h.keybindingManager.ExecuteAction("show_path", h.inputActions)
}
