// Package recognize is the text-recognition boundary: adapters that turn
// an uploaded receipt image or PDF into raw text. Structure is deliberately
// not extracted here: the recognizers return the transcription as-is and
// the extraction engine owns making sense of it.
package recognize

import "context"

// Recognizer turns a receipt document into raw recognized text.
type Recognizer interface {
	// Recognize transcribes the document. The returned string carries no
	// structural guarantees beyond UTF-8 text; it may contain
	// misrecognized characters and arbitrary line breaks.
	Recognize(ctx context.Context, data []byte, contentType string) (string, error)

	// Close releases any resources held by the recognizer.
	Close() error
}
