package ai

import (
	"context"
	"strings"
	"time"
)

const mockReply = "Hi! This is the mock provider. Switch PROVIDER=openai or PROVIDER=openrouter for real responses."

// MockProvider returns a fixed reply, re-emitted token by token with an
// artificial delay so the streaming path can be exercised without a network
// dependency.
type MockProvider struct {
	Reply string
	Delay time.Duration
}

func NewMockProvider() *MockProvider {
	return &MockProvider{Reply: mockReply, Delay: 30 * time.Millisecond}
}

func (p *MockProvider) Chat(ctx context.Context, messages []Message) (string, error) {
	_ = ctx
	_ = messages
	return p.Reply, nil
}

func (p *MockProvider) StreamChat(ctx context.Context, messages []Message) (<-chan string, <-chan error) {
	_ = messages

	chunks := make(chan string, 16)
	errs := make(chan error, 1)

	go func() {
		defer close(chunks)
		defer close(errs)

		tokens := strings.Split(p.Reply, " ")
		for i, tok := range tokens {
			// separators stay attached so the fragments concatenate back
			// to the reply exactly
			frag := tok
			if i < len(tokens)-1 {
				frag += " "
			}
			select {
			case chunks <- frag:
			case <-ctx.Done():
				return
			}
			if p.Delay > 0 {
				select {
				case <-time.After(p.Delay):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return chunks, errs
}
