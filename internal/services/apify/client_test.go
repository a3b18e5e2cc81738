package apify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"creatorscope/internal/services"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	retry := services.DefaultRetryConfig()
	retry.BaseDelay = time.Millisecond
	retry.MaxDelay = 2 * time.Millisecond
	client := NewClient(Config{Token: "tok", BaseURL: server.URL, PollInterval: time.Millisecond, Retry: retry},
		WithHTTPClient(server.Client()))
	client.sleep = func(ctx context.Context, _ time.Duration) error { return ctx.Err() }
	return client
}

func writeRun(t *testing.T, w http.ResponseWriter, status string) {
	t.Helper()
	payload := map[string]any{"data": map[string]any{
		"id": "run-1", "actId": "act-1", "status": status, "defaultDatasetId": "ds-1",
	}}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		t.Fatalf("encode run: %v", err)
	}
}

func TestCallStartsPollsAndListsDataset(t *testing.T) {
	var polls int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v2/acts/apify~instagram-hashtag-scraper/runs", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("unexpected auth header %q", got)
		}
		body, _ := io.ReadAll(r.Body)
		var input map[string]any
		if err := json.Unmarshal(body, &input); err != nil {
			t.Errorf("decode input: %v", err)
		}
		if input["resultsLimit"] != float64(200) {
			t.Errorf("unexpected input %v", input)
		}
		writeRun(t, w, StatusReady)
	})
	mux.HandleFunc("GET /v2/actor-runs/run-1", func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&polls, 1) < 2 {
			writeRun(t, w, StatusRunning)
			return
		}
		writeRun(t, w, StatusSucceeded)
	})
	mux.HandleFunc("GET /v2/datasets/ds-1/items", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("clean") != "true" {
			t.Errorf("expected clean=true, got %s", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`[{"ownerUsername":"jane"},{"ownerUsername":"joe"}]`))
	})

	client := newTestClient(t, mux)
	items, err := client.Call(context.Background(), "apify/instagram-hashtag-scraper", map[string]any{
		"hashtags":     []string{"higgsfield"},
		"resultsLimit": 200,
	})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if got := atomic.LoadInt32(&polls); got != 2 {
		t.Fatalf("expected 2 polls, got %d", got)
	}
}

func TestWaitForRunFailsOnAbortedRun(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v2/actor-runs/run-1", func(w http.ResponseWriter, r *http.Request) {
		writeRun(t, w, StatusAborted)
	})
	client := newTestClient(t, mux)
	_, err := client.WaitForRun(context.Background(), Run{ID: "run-1", Status: StatusRunning})
	if !errors.Is(err, ErrRunFailed) {
		t.Fatalf("expected ErrRunFailed, got %v", err)
	}
}

func TestStartRunRetriesRateLimit(t *testing.T) {
	var calls int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v2/acts/streamers~youtube-channel-scraper/runs", func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		writeRun(t, w, StatusReady)
	})
	client := newTestClient(t, mux)
	run, err := client.StartRun(context.Background(), "streamers/youtube-channel-scraper", nil)
	if err != nil {
		t.Fatalf("StartRun: %v", err)
	}
	if got := atomic.LoadInt32(&calls); run.ID != "run-1" || got != 2 {
		t.Fatalf("unexpected run %+v after %d calls", run, got)
	}
}

func TestStartRunRequiresToken(t *testing.T) {
	client := NewClient(Config{})
	_, err := client.StartRun(context.Background(), "apify/x", nil)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestDatasetItemsPages(t *testing.T) {
	total := datasetPageSize + 5
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v2/datasets/ds-2/items", func(w http.ResponseWriter, r *http.Request) {
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		items := []map[string]int{}
		for i := offset; i < min(offset+limit, total); i++ {
			items = append(items, map[string]int{"n": i})
		}
		_ = json.NewEncoder(w).Encode(items)
	})
	client := newTestClient(t, mux)
	items, err := client.DatasetItems(context.Background(), "ds-2")
	if err != nil {
		t.Fatalf("DatasetItems: %v", err)
	}
	if len(items) != total {
		t.Fatalf("expected %d items, got %d", total, len(items))
	}
	if string(items[total-1]) != fmt.Sprintf(`{"n":%d}`, total-1) {
		t.Fatalf("unexpected last item %s", items[total-1])
	}
}

func TestDatasetItemsKeepsPagingPastShortCleanPage(t *testing.T) {
	var requests atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v2/datasets/ds-3/items", func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if r.URL.Query().Get("clean") != "true" {
			t.Errorf("expected clean items, got query %q", r.URL.RawQuery)
		}
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		count := 0
		switch offset {
		case 0:
			count = datasetPageSize - 1
		case datasetPageSize:
			count = 500
		}
		items := make([]map[string]int, 0, count)
		for i := 0; i < count; i++ {
			items = append(items, map[string]int{"n": offset + i})
		}
		w.Header().Set("X-Apify-Pagination-Offset", strconv.Itoa(offset))
		w.Header().Set("X-Apify-Pagination-Total", strconv.Itoa(datasetPageSize+500))
		_ = json.NewEncoder(w).Encode(items)
	})
	client := newTestClient(t, mux)
	items, err := client.DatasetItems(context.Background(), "ds-3")
	if err != nil {
		t.Fatalf("DatasetItems: %v", err)
	}
	if want := datasetPageSize - 1 + 500; len(items) != want {
		t.Fatalf("expected %d items, got %d", want, len(items))
	}
	if got := requests.Load(); got != 2 {
		t.Fatalf("expected 2 page requests, got %d", got)
	}
}
