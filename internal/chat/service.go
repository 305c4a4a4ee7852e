package chat

import (
	"context"
	"errors"
	"log"
	"strings"
	"unicode/utf8"

	"github.com/brainfish/brainfish-chat/internal/ai"
)

// UploadNoticePrefix marks the system meta-notice written for each upload;
// the clear endpoint purges transcript rows by this prefix.
const UploadNoticePrefix = "📎"

// Summarizer condenses oversized uploaded file content.
type Summarizer interface {
	Summarize(ctx context.Context, text string, maxTokens int) (string, error)
}

type Service struct {
	repo            *Repo
	registry        *ai.Registry
	provider        string
	uploadThreshold int
	summarizer      Summarizer
}

// NewService wires the transcript store, the provider registry and the
// configured provider name. summarizer may be nil when no batch provider
// is configured.
func NewService(repo *Repo, registry *ai.Registry, provider string, uploadThreshold int, summarizer Summarizer) *Service {
	if uploadThreshold <= 0 {
		uploadThreshold = 2000
	}
	return &Service{
		repo:            repo,
		registry:        registry,
		provider:        provider,
		uploadThreshold: uploadThreshold,
		summarizer:      summarizer,
	}
}

// TurnStream is the outbound side of one streaming turn. Chunks and Errs
// are closed when the turn is finalized; the assistant row is persisted
// before they close.
type TurnStream struct {
	Chunks <-chan string
	Errs   <-chan error

	// SignalsDone is set for providers that synthesize an explicit [DONE]
	// event at end of stream.
	SignalsDone bool
}

// StreamTurn runs one chat turn. The synchronous phase persists every
// inbound message, injects the file context, and resolves the provider;
// any error here fails the whole request before a byte is streamed and no
// assistant row is written. The streaming phase forwards fragments until
// the provider finishes or ctx is canceled, then persists the accumulated
// reply as exactly one assistant row — empty content if no fragment ever
// arrived.
func (s *Service) StreamTurn(ctx context.Context, sessionID string, inbound []ai.Message) (*TurnStream, error) {
	for _, m := range inbound {
		if err := s.repo.InsertMessage(ctx, &Message{
			SessionID: sessionID,
			Role:      m.Role,
			Content:   m.Content,
		}); err != nil {
			return nil, err
		}
	}

	history := inbound
	contextText, err := s.BuildContext(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if contextText != "" {
		// per-call augmentation only; the synthetic system message is
		// never persisted
		history = append([]ai.Message{{
			Role:    RoleSystem,
			Content: "Use the following uploaded file contents as context for this conversation.\n\n" + contextText,
		}}, inbound...)
	}

	provider, err := s.registry.Get(ctx, s.provider)
	if err != nil {
		return nil, err
	}
	sp, ok := provider.(ai.StreamProvider)
	if !ok {
		return nil, &ai.ConfigError{Provider: s.provider, Reason: "provider does not support streaming"}
	}

	signalsDone := false
	if ds, ok := provider.(ai.DoneSignaler); ok {
		signalsDone = ds.SignalsDone()
	}

	outChunks := make(chan string, 16)
	outErrs := make(chan error, 2)

	go func() {
		defer close(outChunks)
		defer close(outErrs)

		pChunks, pErrs := sp.StreamChat(ctx, history)

		var b strings.Builder
		streaming := true
		for streaming {
			select {
			case c, ok := <-pChunks:
				if !ok {
					streaming = false
					continue
				}
				b.WriteString(c)
				select {
				case outChunks <- c:
				case <-ctx.Done():
					streaming = false
				}

			case err, ok := <-pErrs:
				if !ok {
					// closed without error; keep draining chunks
					pErrs = nil
					continue
				}
				if err != nil {
					// mid-turn upstream failure: stop pulling, keep what
					// already streamed
					outErrs <- err
					streaming = false
				}

			case <-ctx.Done():
				// client went away; finalize with fragments 1..k
				streaming = false
			}
		}

		// the request context may already be canceled; the transcript
		// write must still land
		wctx := context.WithoutCancel(ctx)
		assistant := &Message{
			SessionID: sessionID,
			Role:      RoleAssistant,
			Content:   b.String(),
		}
		if err := s.repo.InsertMessage(wctx, assistant); err != nil {
			log.Printf("[chat] persist assistant reply failed session_id=%s err=%v", sessionID, err)
			outErrs <- err
		}
	}()

	return &TurnStream{Chunks: outChunks, Errs: outErrs, SignalsDone: signalsDone}, nil
}

// History returns the session transcript in chronological order.
func (s *Service) History(ctx context.Context, sessionID string) ([]Message, error) {
	return s.repo.ListMessages(ctx, sessionID)
}

// SaveFileContext stores extracted file text for the session, summarizing
// (or truncating, when no summarizer is available or it fails) content over
// the raw threshold, and records the upload meta-notice in the transcript.
// It returns the notice text.
func (s *Service) SaveFileContext(ctx context.Context, sessionID, filename, content string) (string, error) {
	processed := content
	notice := UploadNoticePrefix + " " + filename + " uploaded and added to context."

	if utf8.RuneCountInString(content) > s.uploadThreshold {
		summary, err := s.summarize(ctx, content)
		if err != nil {
			processed = truncateRunes(content, s.uploadThreshold)
			notice = UploadNoticePrefix + " " + filename + " uploaded (partial content stored, summarisation failed)."
		} else {
			processed = summary
			notice = UploadNoticePrefix + " " + filename + " uploaded — summarised and added to context."
		}
	}

	if err := s.repo.InsertMessage(ctx, &Message{
		SessionID: sessionID,
		Role:      RoleSystem,
		Content:   notice,
	}); err != nil {
		return "", err
	}
	if err := s.repo.InsertFileContext(ctx, &FileContext{
		SessionID: sessionID,
		Filename:  filename,
		Content:   processed,
	}); err != nil {
		return "", err
	}
	return notice, nil
}

func (s *Service) summarize(ctx context.Context, text string) (string, error) {
	if s.summarizer == nil {
		return "", errors.New("no summarizer configured")
	}
	return s.summarizer.Summarize(ctx, text, 500)
}

// ClearFileContexts removes every stored file for the session along with
// the upload meta-notices. Safe to call when nothing matches.
func (s *Service) ClearFileContexts(ctx context.Context, sessionID string) error {
	if err := s.repo.PurgeByRolePrefix(ctx, sessionID, RoleSystem, UploadNoticePrefix); err != nil {
		return err
	}
	return s.repo.DeleteFileContexts(ctx, sessionID)
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
