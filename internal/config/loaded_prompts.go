package config

import (
	"sync"
)

var (
	loadedPrompts     LoadedPrompts
	loadedPromptsOnce sync.Once
)

// LoadedPrompts holds the tailoring prompt content resolved at load time.
// A value loaded from a file overrides the inline config value; empty
// fields fall through to the built-in defaults in the ai package.
type LoadedPrompts struct {
	SystemPrompt string
	UserPrompt   string
}

// GetPrompts returns a copy of the resolved tailoring prompts
func GetPrompts() LoadedPrompts {
	return loadedPrompts
}
