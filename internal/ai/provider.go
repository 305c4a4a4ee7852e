package ai

import "context"

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Provider produces one complete reply from a message history.
type Provider interface {
	Chat(ctx context.Context, messages []Message) (string, error)
}

// StreamProvider is implemented by every provider in this package. The
// returned channels are both closed when the stream ends; at most one error
// is sent. A stream is consumed once per turn and is not restartable.
type StreamProvider interface {
	StreamChat(ctx context.Context, messages []Message) (<-chan string, <-chan error)
}

// DoneSignaler marks providers whose streams end with an explicit [DONE]
// event on the outbound wire (those that synthesize completion rather than
// relaying an upstream's).
type DoneSignaler interface {
	SignalsDone() bool
}
