package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode"
)

// batchChunkSize is the fragment width used when a full batch response is
// re-chunked into a fake stream.
const batchChunkSize = 50

// HFProvider calls the Hugging Face Inference API. The API has no
// incremental mode, so StreamChat performs one blocking call and re-chunks
// the full text to present the same streaming surface as the other
// providers.
type HFProvider struct {
	BaseURL string
	APIKey  string
	Model   string
	Client  *http.Client
}

type hfRequest struct {
	Inputs     string         `json:"inputs"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

type hfResult struct {
	GeneratedText string `json:"generated_text"`
	SummaryText   string `json:"summary_text"`
}

func NewHFProvider(apiKey, model string) (*HFProvider, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, &ConfigError{Provider: "huggingface", Reason: "HF_API_KEY is required"}
	}
	if model == "" {
		model = "google/flan-t5-base"
	}
	return &HFProvider{
		BaseURL: "https://api-inference.huggingface.co",
		APIKey:  apiKey,
		Model:   model,
		Client:  &http.Client{Timeout: 60 * time.Second},
	}, nil
}

func (p *HFProvider) SignalsDone() bool { return true }

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// buildPrompt flattens the history into a plain-text transcript, since the
// inference API takes a single input string rather than a message list.
func buildPrompt(messages []Message) string {
	var b strings.Builder
	for _, m := range messages {
		fmt.Fprintf(&b, "%s: %s\n", capitalize(m.Role), m.Content)
	}
	b.WriteString("Assistant:")
	return b.String()
}

func (p *HFProvider) call(ctx context.Context, body hfRequest) ([]hfResult, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/models/%s", strings.TrimRight(p.BaseURL, "/"), p.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.APIKey)

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, upstreamError("huggingface", resp)
	}

	var results []hfResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("huggingface: decode response: %w", err)
	}
	return results, nil
}

func (p *HFProvider) Chat(ctx context.Context, messages []Message) (string, error) {
	prompt := buildPrompt(messages)

	results, err := p.call(ctx, hfRequest{
		Inputs: prompt,
		Parameters: map[string]any{
			"max_new_tokens": 512,
			"temperature":    0.7,
		},
	})
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return "", &UpstreamError{Provider: "huggingface", Status: http.StatusOK, Body: "empty result list"}
	}

	// generative models echo the prompt; summarization models use summary_text
	if results[0].GeneratedText != "" {
		return strings.TrimSpace(strings.Replace(results[0].GeneratedText, prompt, "", 1)), nil
	}
	return strings.TrimSpace(results[0].SummaryText), nil
}

// Summarize condenses large uploaded file content before it enters the
// chat context.
func (p *HFProvider) Summarize(ctx context.Context, text string, maxTokens int) (string, error) {
	if maxTokens <= 0 {
		maxTokens = 300
	}
	results, err := p.call(ctx, hfRequest{
		Inputs:     "Summarize the following text:\n\n" + text,
		Parameters: map[string]any{"max_new_tokens": maxTokens},
	})
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return "", &UpstreamError{Provider: "huggingface", Status: http.StatusOK, Body: "empty result list"}
	}
	if results[0].GeneratedText != "" {
		return strings.TrimSpace(results[0].GeneratedText), nil
	}
	return strings.TrimSpace(results[0].SummaryText), nil
}

// StreamChat fakes a stream: one blocking call, then fixed-size fragments.
func (p *HFProvider) StreamChat(ctx context.Context, messages []Message) (<-chan string, <-chan error) {
	chunks := make(chan string, 16)
	errs := make(chan error, 1)

	go func() {
		defer close(chunks)
		defer close(errs)

		text, err := p.Chat(ctx, messages)
		if err != nil {
			errs <- err
			return
		}

		for _, frag := range chunkText(text, batchChunkSize) {
			select {
			case chunks <- frag:
			case <-ctx.Done():
				return
			}
		}
	}()

	return chunks, errs
}

// chunkText splits s into rune-safe pieces of at most n runes.
func chunkText(s string, n int) []string {
	if s == "" {
		return nil
	}
	runes := []rune(s)
	out := make([]string, 0, (len(runes)+n-1)/n)
	for i := 0; i < len(runes); i += n {
		end := i + n
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[i:end]))
	}
	return out
}
