package port

import "context"

// Attachment is a binary payload sent alongside a prompt.
type Attachment struct {
	Data     []byte
	MIMEType string
}

// CompletionInput is a fully rendered prompt plus an optional attachment.
type CompletionInput struct {
	Prompt     string
	Attachment *Attachment
}

// CompletionOutput is the raw model text. It carries no format guarantee.
type CompletionOutput struct {
	Text  string
	Model string
}

// CompletionProvider sends a prompt to a generative completion endpoint.
type CompletionProvider interface {
	Complete(ctx context.Context, input CompletionInput) (*CompletionOutput, error)
}

// TextExtractor pulls embedded text out of a document.
type TextExtractor interface {
	ExtractText(data []byte) (string, error)
}
