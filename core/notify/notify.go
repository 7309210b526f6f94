// Package notify defines the delivery contract between the dispatcher and the
// chat transport.
package notify

import "context"

// Notifier delivers one rendered message to one recipient. Implementations
// must treat every call as independent: a failed send is reported through the
// error return and must not affect other recipients.
type Notifier interface {
	Send(ctx context.Context, chatID int64, text string) error
}
