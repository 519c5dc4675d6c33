package youtube

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/iWorld-y/motor_radar/app/motor_radar/pkg/errs"
)

func newTestServer(t *testing.T, handlers map[string]http.HandlerFunc) *Client {
	t.Helper()
	mux := http.NewServeMux()
	for path, h := range handlers {
		mux.HandleFunc(path, h)
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return NewClientWithBaseURL("test-key", srv.URL, 5*time.Second)
}

func TestSearch_MergesDetails(t *testing.T) {
	client := newTestServer(t, map[string]http.HandlerFunc{
		"/search": func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("key") != "test-key" {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			w.Write([]byte(`{"items": [
				{"id": {"videoId": "v1"}},
				{"id": {"videoId": "v2"}}
			]}`))
		},
		"/videos": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"items": [
				{"id": "v2", "snippet": {"title": "second", "channelTitle": "ch2", "publishedAt": "2026-01-02T00:00:00Z"}, "statistics": {"viewCount": "200"}},
				{"id": "v1", "snippet": {"title": "first", "channelTitle": "ch1", "publishedAt": "2026-01-01T00:00:00Z"}, "statistics": {"viewCount": "100"}}
			]}`))
		},
	})

	got, err := client.Search(context.Background(), &SearchRequest{Query: "쏘렌토", MaxResults: 10})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	// 结果保持 search.list 的相关性次序，而非 videos.list 的返回次序
	if got[0].ID != "v1" || got[1].ID != "v2" {
		t.Errorf("order = %s,%s, want v1,v2", got[0].ID, got[1].ID)
	}
	if got[0].Title != "first" || got[0].Views != 100 || got[0].Channel != "ch1" {
		t.Errorf("v1 = %+v", got[0])
	}
	if got[0].URL != "https://www.youtube.com/watch?v=v1" {
		t.Errorf("URL = %q", got[0].URL)
	}
}

func TestSearch_EmptyResult(t *testing.T) {
	client := newTestServer(t, map[string]http.HandlerFunc{
		"/search": func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"items": []}`))
		},
	})

	got, err := client.Search(context.Background(), &SearchRequest{Query: "none"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
}

func TestSearch_QuotaExceededIsTransient(t *testing.T) {
	client := newTestServer(t, map[string]http.HandlerFunc{
		"/search": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"error": {"code": 403, "message": "quota", "errors": [{"reason": "quotaExceeded"}]}}`))
		},
	})

	_, err := client.Search(context.Background(), &SearchRequest{Query: "q"})
	if err == nil {
		t.Fatal("want error")
	}
	if !errs.IsTransient(err) {
		t.Errorf("quotaExceeded must be transient, got %v", err)
	}
}

func TestSearch_BadKeyIsPermanent(t *testing.T) {
	client := newTestServer(t, map[string]http.HandlerFunc{
		"/search": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error": {"code": 400, "message": "bad key", "errors": [{"reason": "keyInvalid"}]}}`))
		},
	})

	_, err := client.Search(context.Background(), &SearchRequest{Query: "q"})
	if err == nil {
		t.Fatal("want error")
	}
	if errs.IsTransient(err) {
		t.Errorf("keyInvalid must not be transient, got %v", err)
	}
}

func TestTopComments(t *testing.T) {
	client := newTestServer(t, map[string]http.HandlerFunc{
		"/commentThreads": func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("videoId") != "v1" {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			w.Write([]byte(`{"items": [
				{"snippet": {"topLevelComment": {"snippet": {"textDisplay": "좋아요"}}}},
				{"snippet": {"topLevelComment": {"snippet": {"textDisplay": "최고"}}}},
				{"snippet": {"topLevelComment": {"snippet": {"textDisplay": ""}}}}
			]}`))
		},
	})

	got, err := client.TopComments(context.Background(), "v1", 10)
	if err != nil {
		t.Fatalf("TopComments() error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("len = %d, want 2 (empty text dropped)", len(got))
	}
}

func TestTopComments_DisabledIsEmpty(t *testing.T) {
	client := newTestServer(t, map[string]http.HandlerFunc{
		"/commentThreads": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"error": {"code": 403, "message": "disabled", "errors": [{"reason": "commentsDisabled"}]}}`))
		},
	})

	got, err := client.TopComments(context.Background(), "v1", 10)
	if err != nil {
		t.Fatalf("commentsDisabled must be a normal empty result, got %v", err)
	}
	if len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
}
