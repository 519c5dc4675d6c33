package transcribe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func captionServer(t *testing.T, byLang map[string]string) *CaptionClient {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := byLang[r.URL.Query().Get("lang")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return NewCaptionClientWithBaseURL(srv.URL, 5*time.Second)
}

func TestCaptionFetch_LanguagePriority(t *testing.T) {
	c := captionServer(t, map[string]string{
		"ko": `<transcript><text start="0" dur="2">안녕하세요</text><text start="2" dur="3">오늘은 &amp; 시승기</text></transcript>`,
		"en": `<transcript><text>hello</text></transcript>`,
	})

	got, err := c.Fetch(context.Background(), "v1", []string{"ko", "en"})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if got != "안녕하세요 오늘은 & 시승기" {
		t.Errorf("got %q", got)
	}
}

func TestCaptionFetch_FallsBackToNextLanguage(t *testing.T) {
	c := captionServer(t, map[string]string{
		"en": `<transcript><text>english only</text></transcript>`,
	})

	got, err := c.Fetch(context.Background(), "v1", []string{"ko", "en"})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if got != "english only" {
		t.Errorf("got %q", got)
	}
}

func TestCaptionFetch_NoTrackIsEmptyNotError(t *testing.T) {
	c := captionServer(t, map[string]string{})

	got, err := c.Fetch(context.Background(), "v1", []string{"ko", "en"})
	if err != nil {
		t.Fatalf("missing track must not be an error, got %v", err)
	}
	if got != "" {
		t.Errorf("got %q, want empty", got)
	}
}

func TestCaptionFetch_EmptyBody(t *testing.T) {
	c := captionServer(t, map[string]string{"ko": ""})

	got, err := c.Fetch(context.Background(), "v1", []string{"ko"})
	if err != nil {
		t.Fatalf("empty body must not be an error, got %v", err)
	}
	if got != "" {
		t.Errorf("got %q, want empty", got)
	}
}
