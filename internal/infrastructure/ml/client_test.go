package ml

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"NewsAnalyzer/internal/apperr"
	"NewsAnalyzer/internal/determinism"
)

func TestSentimentPredictSendsSeedAndAuth(t *testing.T) {
	t.Parallel()

	var gotSeed float64
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sentiment" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		gotSeed, _ = body["seed"].(float64)
		_, _ = w.Write([]byte(`{"predicted_label":"NEGATIVE","confidence":0.81}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret", time.Second, 1, nil)
	ctx := determinism.WithStamp(context.Background(), determinism.New(ptr(int64(42)), determinism.Versions{}))

	res, err := client.Sentiment().Predict(ctx, "Плохие новости")
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if res.PredictedLabel != "NEGATIVE" || res.Confidence != 0.81 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if gotSeed != 42 {
		t.Fatalf("seed = %v, want 42", gotSeed)
	}
	if gotAuth != "Bearer secret" {
		t.Fatalf("auth header = %q", gotAuth)
	}
}

func TestPostRetriesServerErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"label":"кликбейт","score":0.9}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", time.Second, 3, nil)
	client.backoff = time.Millisecond

	res, err := client.Clickbait().Predict(context.Background(), "Вы не поверите")
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if res.Label != "кликбейт" || calls.Load() != 3 {
		t.Fatalf("unexpected result %+v after %d calls", res, calls.Load())
	}
}

func TestPostDoesNotRetryClientErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad", http.StatusBadRequest)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", time.Second, 3, nil)
	client.backoff = time.Millisecond

	_, err := client.Clickbait().Predict(context.Background(), "Заголовок")
	if !errors.Is(err, apperr.ErrModelUnavailable) {
		t.Fatalf("expected ErrModelUnavailable, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("calls = %d, want 1", calls.Load())
	}
}

func TestMalformedResponses(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/sentiment":
			_, _ = w.Write([]byte(`{"confidence":0.5}`))
		case "/water/predict":
			_, _ = w.Write([]byte(`not json`))
		default:
			_, _ = w.Write([]byte(`{}`))
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", time.Second, 1, nil)
	if _, err := client.Sentiment().Predict(context.Background(), "текст"); !errors.Is(err, apperr.ErrMalformedOutput) {
		t.Fatalf("sentiment: expected ErrMalformedOutput, got %v", err)
	}
	if _, err := client.Water().Predict(context.Background(), []float64{1, 2, 3, 4}); !errors.Is(err, apperr.ErrMalformedOutput) {
		t.Fatalf("water: expected ErrMalformedOutput, got %v", err)
	}
}

func TestWaterPredictProba(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Vector   []float64          `json:"vector"`
			Features map[string]float64 `json:"features"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if len(body.Vector) != 4 || body.Features["adj_ratio"] != 0.2 {
			t.Errorf("unexpected payload: %+v", body)
		}
		_, _ = w.Write([]byte(`{"probabilities":[0.7,0.3]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "", time.Second, 1, nil)
	proba, err := client.Water().PredictProba(context.Background(), []float64{50, 0.2, 0.1, 0.3})
	if err != nil {
		t.Fatalf("PredictProba() error = %v", err)
	}
	if len(proba) != 2 || proba[0] != 0.7 {
		t.Fatalf("unexpected probabilities: %v", proba)
	}
}

func TestUnconfiguredEndpoint(t *testing.T) {
	t.Parallel()

	client := NewClient("", "", time.Second, 1, nil)
	if _, err := client.Sentiment().Predict(context.Background(), "текст"); !errors.Is(err, apperr.ErrModelUnavailable) {
		t.Fatalf("expected ErrModelUnavailable, got %v", err)
	}
}

func TestLogisticModel(t *testing.T) {
	t.Parallel()

	if _, err := NewLogisticModel([]float64{1, 2}, 0); err == nil {
		t.Fatal("expected width error")
	}
	if _, err := NewLogisticModel([]float64{1, 2, 3, math.NaN()}, 0); err == nil {
		t.Fatal("expected non-finite error")
	}

	model, err := NewLogisticModel([]float64{0, 0, 0, 0}, 0)
	if err != nil {
		t.Fatalf("NewLogisticModel() error = %v", err)
	}
	proba, err := model.PredictProba(context.Background(), []float64{10, 0.5, 0.2, 0.1})
	if err != nil {
		t.Fatalf("PredictProba() error = %v", err)
	}
	if proba[0] != 0.5 || proba[1] != 0.5 {
		t.Fatalf("zero weights should give 0.5, got %v", proba)
	}

	model, _ = NewLogisticModel([]float64{0, 10, 0, 0}, -1)
	p, _ := model.Predict(context.Background(), []float64{0, 0.5, 0, 0})
	if math.Abs(p-1/(1+math.Exp(-4))) > 1e-12 {
		t.Fatalf("unexpected probability %v", p)
	}
	if _, err := model.Predict(context.Background(), []float64{1}); !errors.Is(err, apperr.ErrMalformedOutput) {
		t.Fatalf("expected ErrMalformedOutput, got %v", err)
	}
}

func ptr[T any](v T) *T { return &v }

func TestRetryDelayFollowsRequestSeed(t *testing.T) {
	t.Parallel()

	schedule := func(seed int64) []time.Duration {
		ctx := determinism.WithStamp(context.Background(), determinism.New(&seed, determinism.Versions{}))
		r := determinism.Rand(ctx)
		out := make([]time.Duration, 0, 4)
		for base := 100 * time.Millisecond; base <= 800*time.Millisecond; base *= 2 {
			out = append(out, retryDelay(r, base))
		}
		return out
	}

	first, replay := schedule(7), schedule(7)
	base := 100 * time.Millisecond
	for i := range first {
		if first[i] != replay[i] {
			t.Fatalf("delay %d differs on replay: %v vs %v", i, first[i], replay[i])
		}
		if first[i] < base || first[i] > base+base/2 {
			t.Fatalf("delay %d = %v outside [%v, %v]", i, first[i], base, base+base/2)
		}
		base *= 2
	}
	if retryDelay(nil, 0) != 0 {
		t.Fatal("zero base must not wait")
	}
}
