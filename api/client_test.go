package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func newTestClient(t *testing.T, h http.HandlerFunc, token string, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewClient(Config{BaseURL: srv.URL + "/api", UserAgent: "backoffice-test"}, staticToken(token), opts...)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func writeEnvelope(w http.ResponseWriter, httpStatus int, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	_ = json.NewEncoder(w).Encode(body)
}

func TestNewClientRejectsBadBaseURL(t *testing.T) {
	for _, base := range []string{"", "localhost:8080", "ftp://host", "http://"} {
		if _, err := NewClient(Config{BaseURL: base}, nil); !errors.Is(err, ErrInvalidRequest) {
			t.Fatalf("base %q: expected ErrInvalidRequest, got %v", base, err)
		}
	}
}

func TestDoSendsHeadersAndDecodesPayload(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/account/all" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Errorf("unexpected Authorization %q", got)
		}
		if r.Header.Get(requestIDHeader) == "" {
			t.Error("missing request id")
		}
		if got := r.Header.Get("User-Agent"); got != "backoffice-test" {
			t.Errorf("unexpected User-Agent %q", got)
		}
		writeEnvelope(w, http.StatusOK, map[string]any{
			"data":      []map[string]any{{"id": 1}, {"id": 2}},
			"message":   "ok",
			"status":    200,
			"timestamp": "2024-01-02T03:04:05Z",
		})
	}, "tok-1")

	env, err := Call[[]struct{ ID int }](context.Background(), c, Request{Method: http.MethodGet, Path: "/account/all", Auth: true})
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if len(env.Data) != 2 || env.Data[1].ID != 2 {
		t.Fatalf("unexpected payload %+v", env.Data)
	}
	if env.Message != "ok" || env.Status != 200 {
		t.Fatalf("unexpected envelope %+v", env)
	}
	if env.Timestamp.Year() != 2024 {
		t.Fatalf("unexpected timestamp %v", env.Timestamp)
	}
}

func TestDoWithoutAuthOmitsBearer(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "" {
			t.Errorf("unexpected Authorization %q", got)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("unexpected Content-Type %q", got)
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body["username"] != "alice" {
			t.Errorf("unexpected body %v", body)
		}
		writeEnvelope(w, http.StatusOK, map[string]any{"data": map[string]string{"token": "x"}, "status": 200})
	}, "tok-1")

	req := Request{Method: http.MethodPost, Path: "/auth/login", Body: map[string]string{"username": "alice"}}
	if err := c.Do(context.Background(), req, nil); err != nil {
		t.Fatalf("Do: %v", err)
	}
}

func TestDoClassifiesFailures(t *testing.T) {
	tests := []struct {
		name       string
		handler    http.HandlerFunc
		wantIs     error
		wantHTTP   int
		wantStatus int
		wantMsg    string
	}{
		{
			name: "non-2xx with envelope message",
			handler: func(w http.ResponseWriter, r *http.Request) {
				writeEnvelope(w, http.StatusUnauthorized, map[string]any{"message": "Invalid credentials", "status": 401})
			},
			wantIs:     ErrBusiness,
			wantHTTP:   http.StatusUnauthorized,
			wantStatus: 401,
			wantMsg:    "Invalid credentials",
		},
		{
			name: "2xx with failing envelope status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				writeEnvelope(w, http.StatusOK, map[string]any{"message": "username taken", "status": 409})
			},
			wantIs:     ErrBusiness,
			wantHTTP:   http.StatusOK,
			wantStatus: 409,
			wantMsg:    "username taken",
		},
		{
			name: "non-2xx html body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
				_, _ = io.WriteString(w, "<html>bad gateway</html>")
			},
			wantIs:   ErrBusiness,
			wantHTTP: http.StatusBadGateway,
			wantMsg:  "Bad Gateway (http 502)",
		},
		{
			name: "2xx malformed json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, "{not json")
			},
			wantIs: ErrDecode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, tt.handler, "tok")
			err := c.Do(context.Background(), Request{Path: "/thing", Auth: true}, nil)
			if !errors.Is(err, tt.wantIs) {
				t.Fatalf("expected %v, got %v", tt.wantIs, err)
			}
			if tt.wantHTTP == 0 {
				return
			}
			var se *StatusError
			if !errors.As(err, &se) {
				t.Fatalf("expected *StatusError, got %T", err)
			}
			if se.HTTPStatus != tt.wantHTTP || se.Status != tt.wantStatus {
				t.Fatalf("unexpected status error %+v", se)
			}
			if got := Message(err); got != tt.wantMsg {
				t.Fatalf("Message() = %q, want %q", got, tt.wantMsg)
			}
		})
	}
}

func TestDoTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c, err := NewClient(Config{BaseURL: base, Timeout: time.Second}, nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	err = c.Do(context.Background(), Request{Path: "/x"}, nil)
	if !IsTransport(err) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestDoRejectsRelativePath(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not be sent")
	}, "")
	if err := c.Do(context.Background(), Request{Path: "account/all"}, nil); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestObserverSeesEveryRequest(t *testing.T) {
	var calls []int
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/bad" {
			writeEnvelope(w, http.StatusInternalServerError, map[string]any{"message": "boom", "status": 500})
			return
		}
		writeEnvelope(w, http.StatusOK, map[string]any{"status": 200})
	}, "", WithObserver(func(method, path string, status int, elapsed time.Duration, err error) {
		calls = append(calls, status)
		if status >= 300 && err == nil {
			t.Errorf("expected error for status %d", status)
		}
	}))

	_ = c.Do(context.Background(), Request{Path: "/ok"}, nil)
	_ = c.Do(context.Background(), Request{Path: "/bad"}, nil)
	if len(calls) != 2 || calls[0] != 200 || calls[1] != 500 {
		t.Fatalf("unexpected observer calls %v", calls)
	}
}

func TestDownloadReturnsRawBody(t *testing.T) {
	pdf := "%PDF-1.4 fake"
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("unexpected Authorization %q", got)
		}
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="report-7.pdf"`)
		_, _ = io.WriteString(w, pdf)
	}, "tok")

	d, err := c.Download(context.Background(), "/final-report/7/download")
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if string(d.Data) != pdf || d.ContentType != "application/pdf" || d.FileName != "report-7.pdf" {
		t.Fatalf("unexpected download %+v", d)
	}
}

func TestDownloadErrorIsDecoded(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusNotFound, map[string]any{"message": "report not found", "status": 404})
	}, "tok")

	_, err := c.Download(context.Background(), "/final-report/9/download")
	if Message(err) != "report not found" {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestOversizedResponseIsTransportError(t *testing.T) {
	const limit = 64
	var observed []error
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/download") {
			w.Header().Set("Content-Type", "application/pdf")
			_, _ = io.WriteString(w, "%PDF-1.4 "+strings.Repeat("x", limit))
			return
		}
		writeEnvelope(w, http.StatusOK, map[string]any{"data": strings.Repeat("y", limit), "status": 200})
	}, "tok",
		WithMaxResponseSize(limit),
		WithObserver(func(_, _ string, _ int, _ time.Duration, err error) { observed = append(observed, err) }),
	)

	if _, err := c.Download(context.Background(), "/purchase-order/1/download"); !IsTransport(err) {
		t.Fatalf("Download: expected transport error, got %v", err)
	}
	var env Envelope[string]
	if err := c.Do(context.Background(), Request{Method: http.MethodGet, Path: "/account/all"}, &env); !IsTransport(err) {
		t.Fatalf("Do: expected transport error, got %v", err)
	}
	if len(observed) != 2 || !IsTransport(observed[0]) || !IsTransport(observed[1]) {
		t.Fatalf("observer saw %v", observed)
	}
}

func TestBodyAtLimitIsAccepted(t *testing.T) {
	body := "%PDF-1.4 exact"
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, body)
	}, "tok", WithMaxResponseSize(int64(len(body))))

	d, err := c.Download(context.Background(), "/purchase-order/1/download")
	if err != nil || string(d.Data) != body {
		t.Fatalf("Download at limit: %q, %v", d.Data, err)
	}
}

func TestPostMultipart(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			t.Errorf("unexpected Content-Type %q", r.Header.Get("Content-Type"))
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm: %v", err)
			return
		}
		if r.FormValue("title") != "Q1" {
			t.Errorf("unexpected title %q", r.FormValue("title"))
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Errorf("FormFile: %v", err)
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		if hdr.Filename != "q1.pdf" || string(data) != "content" {
			t.Errorf("unexpected file %s %q", hdr.Filename, data)
		}
		writeEnvelope(w, http.StatusCreated, map[string]any{"data": map[string]int{"id": 11}, "status": 201})
	}, "tok")

	var env Envelope[struct{ ID int }]
	err := c.PostMultipart(context.Background(), "/final-report/create",
		map[string]string{"title": "Q1"},
		[]FormFile{{Field: "file", FileName: "q1.pdf", Content: []byte("content")}},
		&env)
	if err != nil {
		t.Fatalf("PostMultipart: %v", err)
	}
	if env.Data.ID != 11 {
		t.Fatalf("unexpected payload %+v", env)
	}
}
