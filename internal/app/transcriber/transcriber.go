package transcriber

import "context"

// Transcriber converts one audio file to a raw transcript string.
type Transcriber interface {
	Transcribe(ctx context.Context, inputFilePath string, language string) (string, error)
}
