package services_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"creatorscope/internal/services"
)

func fastRetry(retries int) services.RetryConfig {
	cfg := services.DefaultRetryConfig()
	cfg.MaxRetries = retries
	cfg.BaseDelay = time.Millisecond
	cfg.MaxDelay = 2 * time.Millisecond
	return cfg
}

func getRequest(url string) func(ctx context.Context) (*http.Request, error) {
	return func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	}
}

func TestHTTPClientRetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`ok`))
	}))
	defer server.Close()

	client := services.NewHTTPClient(server.Client(), fastRetry(3))
	resp, err := client.Do(context.Background(), getRequest(server.URL))
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if string(resp.Body) != "ok" {
		t.Fatalf("unexpected body %q", resp.Body)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Fatalf("expected 3 calls, got %d", got)
	}
}

func TestHTTPClientDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer server.Close()

	client := services.NewHTTPClient(server.Client(), fastRetry(3))
	_, err := client.Do(context.Background(), getRequest(server.URL))
	if !services.IsStatus(err, http.StatusUnauthorized) {
		t.Fatalf("expected 401 status error, got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected a single call, got %d", got)
	}
}

func TestHTTPClientReturnsLastFailureAfterRetries(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := services.NewHTTPClient(server.Client(), fastRetry(2))
	_, err := client.Do(context.Background(), getRequest(server.URL))
	var statusErr *services.StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected 502 status error, got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
}

func TestDefaultShouldRetry(t *testing.T) {
	cases := []struct {
		name string
		resp *services.Response
		err  error
		want bool
	}{
		{"transport", nil, errors.New("dial"), true},
		{"canceled", nil, context.Canceled, false},
		{"rate limited", nil, &services.StatusError{StatusCode: 429}, true},
		{"not found", nil, &services.StatusError{StatusCode: 404}, false},
		{"ok", &services.Response{StatusCode: 200}, nil, false},
		{"nil response", nil, nil, true},
	}
	for _, tc := range cases {
		if got := services.DefaultShouldRetry(tc.resp, tc.err); got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestHTTPClientValidateRetriesUnlessPermanent(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n == 1 {
			_, _ = w.Write([]byte(``))
			return
		}
		_, _ = w.Write([]byte(`full`))
	}))
	defer server.Close()

	client := services.NewHTTPClient(server.Client(), fastRetry(3))
	resp, err := client.DoValidated(context.Background(), getRequest(server.URL), func(r *services.Response) error {
		if len(r.Body) == 0 {
			return errors.New("empty body")
		}
		return nil
	})
	if err != nil || string(resp.Body) != "full" {
		t.Fatalf("expected retry to succeed, got %v", err)
	}

	atomic.StoreInt32(&calls, 0)
	_, err = client.DoValidated(context.Background(), getRequest(server.URL), func(*services.Response) error {
		return services.Permanent(errors.New("bad payload"))
	})
	var permanent *services.PermanentError
	if !errors.As(err, &permanent) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected permanent error to stop after 1 call, got %d", got)
	}
}
