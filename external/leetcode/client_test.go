package leetcode

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/riskibarqy/contest-radar/internal/domain/contest"
	"github.com/riskibarqy/contest-radar/internal/platform/resilience"
	"github.com/riskibarqy/contest-radar/internal/usecase"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(ClientConfig{
		BaseURL:        server.URL,
		Timeout:        2 * time.Second,
		MaxRetries:     1,
		RetryBackoff:   time.Millisecond,
		CircuitBreaker: resilience.CircuitBreakerConfig{Enabled: true, FailureThreshold: 2},
	})
}

func decodeRequest(t *testing.T, r *http.Request) graphQLRequest {
	t.Helper()
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		t.Errorf("read body: %v", err)
		return graphQLRequest{}
	}
	var req graphQLRequest
	if err := sonic.Unmarshal(raw, &req); err != nil {
		t.Errorf("decode body %q: %v", raw, err)
	}
	return req
}

func TestClient_FetchContests(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/graphql" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if !strings.HasPrefix(r.Header.Get("User-Agent"), "Mozilla/5.0") {
			t.Errorf("expected browser user agent, got %q", r.Header.Get("User-Agent"))
		}
		if r.Header.Get("Referer") != "https://leetcode.com/contest/" {
			t.Errorf("unexpected referer %q", r.Header.Get("Referer"))
		}
		if r.Header.Get("Accept-Language") == "" {
			t.Errorf("expected accept-language header")
		}
		req := decodeRequest(t, r)
		if !strings.Contains(req.Query, "upcomingContests") {
			t.Errorf("unexpected query %q", req.Query)
		}
		_, _ = w.Write([]byte(`{"data":{"upcomingContests":[
			{"title":"Weekly Contest 470","titleSlug":"weekly-contest-470","startTime":1761445800,"duration":5400},
			{"title":"  ","titleSlug":"blank","startTime":1761445800,"duration":5400}
		]}}`))
	})

	items, err := client.FetchContests(context.Background())
	if err != nil {
		t.Fatalf("fetch contests: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected one contest, got=%d", len(items))
	}

	got := items[0]
	start := time.Unix(1761445800, 0).UTC()
	if got.Platform != contest.PlatformLeetCode || got.Name != "Weekly Contest 470" {
		t.Fatalf("unexpected contest: %+v", got)
	}
	if got.URL != "https://leetcode.com/contest/weekly-contest-470" {
		t.Fatalf("unexpected url: %s", got.URL)
	}
	if !got.StartTime.Equal(start) || !got.EndTime.Equal(start.Add(90*time.Minute)) || got.DurationSeconds != 5400 {
		t.Fatalf("unexpected window: %+v", got)
	}
	if err := got.Validate(); err != nil {
		t.Fatalf("expected mapped contest to validate: %v", err)
	}
}

func TestClient_GraphQLErrorsAreSourceUnavailable(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"errors":[{"message":"rate limited"}],"data":null}`))
	})

	_, err := client.FetchContests(context.Background())
	if !usecase.IsSourceUnavailable(err) {
		t.Fatalf("expected source unavailable, got %v", err)
	}
}

func TestClient_ProfileSharedBySolvedAndRating(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	release := make(chan struct{})
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		req := decodeRequest(t, r)
		if req.Variables["username"] != "neal_wu" {
			t.Errorf("unexpected variables %v", req.Variables)
		}
		if r.Header.Get("Referer") != "https://leetcode.com/neal_wu/" {
			t.Errorf("unexpected referer %q", r.Header.Get("Referer"))
		}
		<-release
		_, _ = w.Write([]byte(`{"data":{
			"matchedUser":{"submitStats":{"acSubmissionNum":[
				{"difficulty":"All","count":612},
				{"difficulty":"Easy","count":150}
			]}},
			"userContestRanking":{"rating":2780.62}
		}}`))
	})

	type result struct {
		value int
		err   error
	}
	solvedCh := make(chan result, 1)
	ratingCh := make(chan result, 1)
	go func() {
		v, err := client.FetchSolvedCount(context.Background(), "neal_wu")
		solvedCh <- result{v, err}
	}()
	go func() {
		v, err := client.FetchRating(context.Background(), "neal_wu")
		ratingCh <- result{v, err}
	}()

	time.Sleep(50 * time.Millisecond)
	close(release)

	solved := <-solvedCh
	rating := <-ratingCh
	if solved.err != nil || rating.err != nil {
		t.Fatalf("unexpected errors: solved=%v rating=%v", solved.err, rating.err)
	}
	if solved.value != 612 {
		t.Fatalf("expected solved=612, got=%d", solved.value)
	}
	if rating.value != 2781 {
		t.Fatalf("expected rounded rating=2781, got=%d", rating.value)
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("expected one shared upstream call, got=%d", got)
	}
}

func TestClient_UnknownUserIsZero(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"matchedUser":null,"userContestRanking":null}}`))
	})

	solved, err := client.FetchSolvedCount(context.Background(), "nobody-here")
	if err != nil || solved != 0 {
		t.Fatalf("expected 0 without error, got=%d err=%v", solved, err)
	}
	rating, err := client.FetchRating(context.Background(), "nobody-here")
	if err != nil || rating != 0 {
		t.Fatalf("expected 0 without error, got=%d err=%v", rating, err)
	}
}

func TestClient_EmptyHandleIsInvalid(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("no request expected")
	})

	if _, err := client.FetchSolvedCount(context.Background(), "  "); err == nil {
		t.Fatalf("expected invalid input error")
	}
}

func TestClient_RetriesTransientStatus(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"data":{"upcomingContests":[]}}`))
	})

	items, err := client.FetchContests(context.Background())
	if err != nil {
		t.Fatalf("expected retry to succeed: %v", err)
	}
	if len(items) != 0 || calls.Load() != 2 {
		t.Fatalf("unexpected result items=%d calls=%d", len(items), calls.Load())
	}
}

func TestClient_CircuitOpensAfterRepeatedFailures(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})

	for range 3 {
		_, err := client.FetchContests(context.Background())
		if !usecase.IsSourceUnavailable(err) {
			t.Fatalf("expected source unavailable, got %v", err)
		}
	}
	// two failed calls with one retry each, then the breaker rejects without dialing
	if got := calls.Load(); got != 4 {
		t.Fatalf("expected 4 upstream calls, got=%d", got)
	}
}

func TestClient_HonorsContextDeadline(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		_, _ = w.Write([]byte(`{"data":{"upcomingContests":[]}}`))
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	started := time.Now()
	_, err := client.FetchContests(ctx)
	if err == nil {
		t.Fatalf("expected deadline error")
	}
	if elapsed := time.Since(started); elapsed > 250*time.Millisecond {
		t.Fatalf("deadline not honored, took %s", elapsed)
	}
}
