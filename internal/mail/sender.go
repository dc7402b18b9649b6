package mail

import (
	"context"

	"github.com/rs/zerolog"
)

// Message is one outbound email.
type Message struct {
	From    string
	To      []string
	Subject string
	Body    string
}

// Sender delivers messages. Implementations must be safe for concurrent use.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender writes messages to the log instead of delivering them. Used when
// no SMTP host is configured (local development).
type LogSender struct {
	Logger zerolog.Logger
}

func (s LogSender) Send(_ context.Context, msg Message) error {
	s.Logger.Info().
		Strs("to", msg.To).
		Str("subject", msg.Subject).
		Str("body", msg.Body).
		Msg("mail delivery skipped (no SMTP configured)")
	return nil
}
