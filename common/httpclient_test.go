package common_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/guarzo/talentiq/common"
)

func TestNewHttpClient(t *testing.T) {
	base := &http.Client{}
	client := common.NewHttpClient("MyUserAgent", base)
	if client == nil {
		t.Fatal("expected non-nil HttpClient")
	}
	if base.Timeout != common.DefaultTimeout {
		t.Errorf("expected default timeout %v, got %v", common.DefaultTimeout, base.Timeout)
	}
}

func TestNewHttpClient_KeepsExplicitTimeout(t *testing.T) {
	base := &http.Client{Timeout: 3 * time.Second}
	common.NewHttpClient("UA", base)
	if base.Timeout != 3*time.Second {
		t.Errorf("expected 3s timeout to be kept, got %v", base.Timeout)
	}
}

func TestHttpClient_Do(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "TestUserAgent" {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, "wrong user-agent")
			return
		}
		fmt.Fprint(w, "hello world")
	}))
	defer ts.Close()

	hc := common.NewHttpClient("TestUserAgent", &http.Client{})

	req, err := http.NewRequest(http.MethodGet, ts.URL, nil)
	if err != nil {
		t.Fatal(err)
	}

	resp, err := hc.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || string(body) != "hello world" {
		t.Errorf("unexpected response: %d %s", resp.StatusCode, string(body))
	}
}

func TestHttpClient_RetryWithExponentialBackoff(t *testing.T) {
	called := 0
	operation := func() (interface{}, error) {
		called++
		if called < 3 {
			// simulate a 503
			return nil, &common.HTTPError{
				StatusCode: http.StatusServiceUnavailable,
				Body:       []byte("temporary issue"),
			}
		}
		return "success", nil
	}

	hc := common.NewHttpClient("UA", &http.Client{})
	var slept []time.Duration
	hc.SetRandAndSleepForTest(func(d time.Duration) { slept = append(slept, d) }, rand.Int63())

	res, err := hc.RetryWithExponentialBackoff(context.Background(), operation)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.(string) != "success" {
		t.Errorf("expected 'success', got %v", res)
	}
	if called != 3 {
		t.Errorf("expected 3 calls, got %d", called)
	}
	if len(slept) != 2 {
		t.Errorf("expected 2 sleeps, got %d", len(slept))
	}
}

func TestHttpClient_RetryStopsOnNonRetryable(t *testing.T) {
	called := 0
	operation := func() (interface{}, error) {
		called++
		return nil, &common.HTTPError{StatusCode: http.StatusUnauthorized}
	}

	hc := common.NewHttpClient("UA", &http.Client{})
	hc.SetRandAndSleepForTest(func(time.Duration) {}, 1)

	_, err := hc.RetryWithExponentialBackoff(context.Background(), operation)
	if !common.IsStatus(err, http.StatusUnauthorized) {
		t.Fatalf("expected 401 HTTPError, got %v", err)
	}
	if called != 1 {
		t.Errorf("expected 1 call, got %d", called)
	}
}

func TestHttpClient_RetryStopsWhenContextDone(t *testing.T) {
	called := 0
	operation := func() (interface{}, error) {
		called++
		return nil, &common.HTTPError{StatusCode: http.StatusServiceUnavailable}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	hc := common.NewHttpClient("UA", &http.Client{})
	start := time.Now()
	_, err := hc.RetryWithExponentialBackoff(ctx, operation)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if called != 1 {
		t.Errorf("expected 1 call before the wait was cut short, got %d", called)
	}
	if elapsed := time.Since(start); elapsed > 900*time.Millisecond {
		t.Errorf("expected backoff to stop with the context, took %v", elapsed)
	}
}

func TestIsStatus_Wrapped(t *testing.T) {
	err := fmt.Errorf("get jobs: %w", &common.HTTPError{StatusCode: http.StatusNotFound})
	if !common.IsStatus(err, http.StatusNotFound) {
		t.Error("expected wrapped 404 to match")
	}
	if common.IsStatus(errors.New("plain"), http.StatusNotFound) {
		t.Error("plain error must not match")
	}
}
