package httpserver

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/yndnr/reactorkv/internal/telemetry/logger"
)

func newBufferLogger(t *testing.T) (logger.Logger, *strings.Builder) {
	t.Helper()
	var buf strings.Builder
	log, err := logger.New(logger.Config{Level: "debug", Format: "text", Output: &buf})
	if err != nil {
		t.Fatalf("logger.New() error = %v", err)
	}
	return log, &buf
}

func TestRequestID(t *testing.T) {
	handler := RequestID()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetRequestIDFromContext(r.Context()) == "" {
			t.Error("expected request ID in context")
		}
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("generates request ID when not provided", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/healthz", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		requestID := rec.Header().Get("X-Request-ID")
		if !strings.HasPrefix(requestID, "req-") {
			t.Errorf("expected request ID to start with 'req-', got %s", requestID)
		}
		// "req-" plus a 26 character ULID.
		if len(requestID) != 30 {
			t.Errorf("request ID length = %d, want 30", len(requestID))
		}
	})

	t.Run("preserves existing request ID", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/healthz", nil)
		req.Header.Set("X-Request-ID", "existing-id-123")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if got := rec.Header().Get("X-Request-ID"); got != "existing-id-123" {
			t.Errorf("expected 'existing-id-123', got %s", got)
		}
	})
}

func TestChain(t *testing.T) {
	var order []int

	mark := func(n int) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, n)
				next.ServeHTTP(w, r)
			})
		}
	}

	handler := Chain(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			order = append(order, 4)
			w.WriteHeader(http.StatusOK)
		}),
		mark(1), mark(2), mark(3),
	)

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

	expected := []int{1, 2, 3, 4}
	if len(order) != len(expected) {
		t.Fatalf("expected %d calls, got %d", len(expected), len(order))
	}
	for i, v := range expected {
		if order[i] != v {
			t.Errorf("expected order[%d] = %d, got %d", i, v, order[i])
		}
	}
}

func TestRecover(t *testing.T) {
	log, buf := newBufferLogger(t)

	t.Run("recovers from panic", func(t *testing.T) {
		handler := Recover(log)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			panic("test panic")
		}))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected status 500, got %d", rec.Code)
		}
		if !strings.Contains(buf.String(), "panic recovered") {
			t.Errorf("expected panic log, got: %s", buf.String())
		}
	})

	t.Run("passes through normal requests", func(t *testing.T) {
		handler := Recover(log)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

		if rec.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", rec.Code)
		}
	})
}

func TestAccessLog(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   string
	}{
		{"success", http.StatusOK, "request completed"},
		{"client error", http.StatusNotFound, "client error"},
		{"server error", http.StatusServiceUnavailable, "completed with error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, buf := newBufferLogger(t)
			handler := Chain(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			}), RequestID(), AccessLog(log))

			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/readyz", nil))

			out := buf.String()
			if !strings.Contains(out, tt.want) {
				t.Errorf("expected %q in log, got: %s", tt.want, out)
			}
			if !strings.Contains(out, "path=/readyz") {
				t.Errorf("expected path in log, got: %s", out)
			}
		})
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"X-Forwarded-For", map[string]string{"X-Forwarded-For": "10.0.0.1, 10.0.0.2"}, "10.0.0.1"},
		{"X-Real-IP", map[string]string{"X-Real-IP": "10.0.0.3"}, "10.0.0.3"},
		{"RemoteAddr", nil, "192.168.1.1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = "192.168.1.1:12345"
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := getClientIP(req); got != tt.want {
				t.Errorf("getClientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResponseWriter(t *testing.T) {
	rec := httptest.NewRecorder()
	wrapped := &responseWriter{ResponseWriter: rec, statusCode: http.StatusOK}

	wrapped.WriteHeader(http.StatusCreated)

	if wrapped.statusCode != http.StatusCreated {
		t.Errorf("expected status 201, got %d", wrapped.statusCode)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("underlying recorder status = %d, want 201", rec.Code)
	}
}
