// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem.
//
// Adapters:
//   - SettingsStore: TOML auto-reply settings with hot reload
//   - PromptStore: user-editable LLM prompt templates
package file
