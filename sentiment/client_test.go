package sentiment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"review-sentiment/models"
	"review-sentiment/utils"
)

// fakeService mimics the scoring service: canned scores per text, labels by
// the ±0.05 rule, Spanish label text.
func fakeService(t *testing.T, scores map[string]float64) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "ok"})
	})
	mux.HandleFunc("/sentiment", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Text  string `json:"text"`
			Model string `json:"model"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text == "" {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "Texto no recibido"})
			return
		}
		if req.Model != "vader" && req.Model != "textblob" {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "Modelo no válido"})
			return
		}
		score := scores[req.Text]
		_ = json.NewEncoder(w).Encode(map[string]any{
			"texto":       req.Text,
			"modelo":      req.Model,
			"score":       score,
			"sentimiento": models.LabelFromScore(score).Display(),
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(url string) *Client {
	return NewClient(url, 2*time.Second, time.Second, utils.NewNopLogger())
}

func TestScoreSuccess(t *testing.T) {
	srv := fakeService(t, map[string]float64{"Great product totally": 0.62})
	c := newTestClient(srv.URL)

	res, err := c.Score(context.Background(), "Great product totally", models.ModelVader)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if res.Score != 0.62 || res.Label != models.LabelPositive || res.Model != models.ModelVader {
		t.Errorf("unexpected result: %+v", res)
	}
}

func TestScoreServiceErrorBody(t *testing.T) {
	srv := fakeService(t, nil)
	c := newTestClient(srv.URL)

	_, err := c.Score(context.Background(), "", models.ModelTextBlob)
	var scoreErr *ScoringError
	if !errors.As(err, &scoreErr) {
		t.Fatalf("expected ScoringError, got %v", err)
	}
	if scoreErr.Cause != "Texto no recibido" {
		t.Errorf("Cause: got %q, want service error text", scoreErr.Cause)
	}
	if scoreErr.Model != models.ModelTextBlob {
		t.Errorf("Model: got %q", scoreErr.Model)
	}
}

func TestScoreMalformedResponses(t *testing.T) {
	bodies := map[string]string{
		"not json":      `<html>oops</html>`,
		"missing score": `{"texto":"x","modelo":"vader","sentimiento":"Positivo"}`,
		"bad label":     `{"texto":"x","modelo":"vader","score":0.4,"sentimiento":"Mixto"}`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer srv.Close()

			_, err := newTestClient(srv.URL).Score(context.Background(), "Some review text", models.ModelVader)
			var scoreErr *ScoringError
			if !errors.As(err, &scoreErr) {
				t.Errorf("expected ScoringError, got %v", err)
			}
		})
	}
}

func TestScoreStatusWithoutErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Score(context.Background(), "Some review text", models.ModelVader)
	var scoreErr *ScoringError
	if !errors.As(err, &scoreErr) {
		t.Fatalf("expected ScoringError, got %v", err)
	}
	if scoreErr.Cause != "status 500 Internal Server Error" {
		t.Errorf("Cause: got %q", scoreErr.Cause)
	}
}

func TestScoreConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := newTestClient(url).Score(context.Background(), "Some review text", models.ModelVader)
	var scoreErr *ScoringError
	if !errors.As(err, &scoreErr) {
		t.Errorf("expected ScoringError, got %v", err)
	}
}

func TestPing(t *testing.T) {
	srv := fakeService(t, nil)
	c := newTestClient(srv.URL + "/")
	if err := c.Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}
	if !c.Connected(context.Background()) {
		t.Error("Connected should be true")
	}
}

func TestPingNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	err := newTestClient(srv.URL).Ping(context.Background())
	var connErr *ConnectivityError
	if !errors.As(err, &connErr) {
		t.Fatalf("expected ConnectivityError, got %v", err)
	}
}

func TestPingTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := NewClient(srv.URL, 5*time.Second, 50*time.Millisecond, utils.NewNopLogger())
	start := time.Now()
	err := c.Ping(context.Background())
	var connErr *ConnectivityError
	if !errors.As(err, &connErr) {
		t.Fatalf("expected ConnectivityError, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("probe did not honour its timeout: %v", elapsed)
	}
}
