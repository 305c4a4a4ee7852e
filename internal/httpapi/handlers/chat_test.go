package handlers_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"github.com/brainfish/brainfish-chat/internal/ai"
	"github.com/brainfish/brainfish-chat/internal/chat"
	"github.com/brainfish/brainfish-chat/internal/config"
	"github.com/brainfish/brainfish-chat/internal/httpapi"
)

const testReply = "Hi! This is the mock provider."

func newTestRouter(t *testing.T, providerName string) (*gin.Engine, *chat.Repo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&chat.Message{}, &chat.FileContext{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}

	reg := ai.NewRegistry()
	reg.Register("mock", func(ctx context.Context) (ai.Provider, error) {
		_ = ctx
		return &ai.MockProvider{Reply: testReply, Delay: 0}, nil
	})

	cfg := config.Config{
		Provider:    providerName,
		CORSOrigins: []string{"http://localhost:5173"},
	}
	repo := chat.NewRepo(db)
	svc := chat.NewService(repo, reg, providerName, 0, nil)

	return httpapi.NewRouter(cfg, svc), repo
}

// parseSSE extracts the content field of every data frame in an SSE body.
func parseSSE(t *testing.T, body string) []string {
	t.Helper()
	var out []string
	for _, frame := range strings.Split(body, "\n\n") {
		frame = strings.TrimSpace(frame)
		if frame == "" {
			continue
		}
		if !strings.HasPrefix(frame, "data: ") {
			t.Fatalf("malformed frame %q", frame)
		}
		data := strings.TrimPrefix(frame, "data: ")
		if data == "[DONE]" {
			out = append(out, data)
			continue
		}
		var payload struct {
			Content string `json:"content"`
		}
		if err := json.Unmarshal([]byte(data), &payload); err != nil {
			t.Fatalf("frame body not JSON: %q: %v", data, err)
		}
		out = append(out, payload.Content)
	}
	return out
}

func TestChat_EndToEnd(t *testing.T) {
	r, _ := newTestRouter(t, "mock")

	body := `{"messages":[{"role":"user","content":"hi"}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status %d body %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Fatalf("content type %q", ct)
	}
	sessionID := w.Header().Get("X-Session-ID")
	if sessionID == "" {
		t.Fatal("missing X-Session-ID header")
	}

	frags := parseSSE(t, w.Body.String())
	if got := strings.Join(frags, ""); got != testReply {
		t.Fatalf("streamed content mismatch:\n got %q\nwant %q", got, testReply)
	}
	// the mock relays an upstream-shaped stream; it does not synthesize [DONE]
	for _, f := range frags {
		if f == "[DONE]" {
			t.Fatal("unexpected [DONE] for mock provider")
		}
	}

	// the transcript now holds the inbound turn and the full reply
	req = httptest.NewRequest(http.MethodGet, "/api/history/"+sessionID, nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("history status %d", w.Code)
	}

	var hist []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &hist); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(hist) != 2 {
		t.Fatalf("expected 2 history rows, got %d", len(hist))
	}
	if hist[0].Role != "user" || hist[0].Content != "hi" {
		t.Fatalf("unexpected first row %+v", hist[0])
	}
	if hist[1].Role != "assistant" || hist[1].Content != testReply {
		t.Fatalf("unexpected second row %+v", hist[1])
	}
}

func TestChat_ReusesCallerSessionID(t *testing.T) {
	r, _ := newTestRouter(t, "mock")

	body := `{"session_id":"11111111-2222-3333-4444-555555555555","messages":[{"role":"user","content":"hi"}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := w.Header().Get("X-Session-ID"); got != "11111111-2222-3333-4444-555555555555" {
		t.Fatalf("caller session id not used verbatim, got %q", got)
	}
}

func TestChat_UnknownProviderRejectedBeforeStreaming(t *testing.T) {
	r, repo := newTestRouter(t, "no-such-provider")

	body := `{"session_id":"sess-1","messages":[{"role":"user","content":"hi"}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body %s", w.Code, w.Body.String())
	}
	if strings.Contains(w.Header().Get("Content-Type"), "text/event-stream") {
		t.Fatal("error response must not be a stream")
	}

	// inbound turn persisted, no assistant row
	msgs, err := repo.ListMessages(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(msgs) != 1 || msgs[0].Role != "user" {
		t.Fatalf("expected only the inbound row, got %+v", msgs)
	}
}

func TestChat_InvalidRoleRejected(t *testing.T) {
	r, _ := newTestRouter(t, "mock")

	body := `{"messages":[{"role":"wizard","content":"hi"}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid role, got %d", w.Code)
	}
}

func TestUpload_SaveAndClear(t *testing.T) {
	r, repo := newTestRouter(t, "mock")

	body := `{"session_id":"sess-up","filename":"notes.txt","content":"some extracted text"}`
	req := httptest.NewRequest(http.MethodPost, "/api/upload", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("upload status %d body %s", w.Code, w.Body.String())
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["status"] != "saved" || resp["session_id"] != "sess-up" {
		t.Fatalf("unexpected response %v", resp)
	}

	msgs, _ := repo.ListMessages(context.Background(), "sess-up")
	if len(msgs) != 1 || msgs[0].Role != "system" || !strings.HasPrefix(msgs[0].Content, chat.UploadNoticePrefix) {
		t.Fatalf("meta-notice row missing: %+v", msgs)
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/upload/clear?session_id=sess-up", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("clear status %d", w.Code)
	}

	msgs, _ = repo.ListMessages(context.Background(), "sess-up")
	if len(msgs) != 0 {
		t.Fatalf("meta-notice survived clear: %+v", msgs)
	}
	fcs, _ := repo.ListFileContexts(context.Background(), "sess-up")
	if len(fcs) != 0 {
		t.Fatalf("file contexts survived clear: %+v", fcs)
	}
}

func TestHealth(t *testing.T) {
	r, _ := newTestRouter(t, "mock")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	var resp struct {
		OK       bool   `json:"ok"`
		Provider string `json:"provider"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.OK || resp.Provider != "mock" {
		t.Fatalf("unexpected health payload %+v", resp)
	}
}
