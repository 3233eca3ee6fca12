package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	Reload()
}

// Well-known prompt names.
const (
	// PromptAutoReply drafts a reply to an inbound lead. The template is a
	// text/template over ReplyRequest (.Content, .Subject, .Sender, .Tone,
	// .Length).
	PromptAutoReply = "auto_reply"
)

// PromptStoreAware is implemented by generators whose prompts can be
// customised after construction.
type PromptStoreAware interface {
	SetPromptStore(store PromptStore)
}
