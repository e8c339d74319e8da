// Package notification delivers one-shot messages to users. Its only caller
// is the password-reset flow, which discloses the plaintext reset token once.
package notification

import "context"

// Sink sends a plain-text message to a recipient. Implementations must honor
// the context deadline.
type Sink interface {
	Send(ctx context.Context, to, subject, body string) error
}
