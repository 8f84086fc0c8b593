package backendtest

import (
	"bytes"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/MrEthical07/backoffice/jwt"
	"github.com/MrEthical07/backoffice/middleware"
)

// Seeded credentials.
const (
	AdminUsername = "admin"
	AdminPassword = "admin-password"
	StaffUsername = "staff"
	StaffPassword = "staff-password"
)

const maxBodyBytes = 8 << 20

// Failure is a canned answer installed with [Backend.Fail].
type Failure struct {
	HTTPStatus int
	// Status is the envelope status. Zero copies HTTPStatus.
	Status  int
	Message string
	// Raw, when set, is written verbatim as text/html instead of an envelope.
	Raw string
}

// Request is one request as seen by the backend.
type Request struct {
	Method        string
	Path          string
	Authorization string
	ContentType   string
	Body          []byte
}

type user struct {
	id           int64
	name         string
	username     string
	role         string
	passwordHash string
	profile      map[string]any
}

type hold struct {
	entered chan struct{}
	once    sync.Once
	release chan struct{}
}

// Option configures a [Backend].
type Option func(*Backend)

func WithLogger(logger *slog.Logger) Option {
	return func(b *Backend) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithTokenTTL sets the lifetime of issued tokens.
func WithTokenTTL(ttl time.Duration) Option {
	return func(b *Backend) { b.tokenTTL = ttl }
}

// WithSecret fixes the HS256 key. A random key is used otherwise.
func WithSecret(secret []byte) Option {
	return func(b *Backend) { b.secret = append([]byte(nil), secret...) }
}

// Backend is the fake service. It is safe for concurrent use.
type Backend struct {
	logger   *slog.Logger
	tokenTTL time.Duration
	secret   []byte
	signer   *jwt.Signer
	hasher   *Hasher
	handler  http.Handler

	mu       sync.Mutex
	nextID   int64
	users    map[string]*user
	records  map[string][]map[string]any
	failures map[string]Failure
	holds    map[string]*hold
	requests []Request
}

// New builds a Backend seeded with an admin and a staff account plus lookup
// data for every collection.
func New(opts ...Option) (*Backend, error) {
	b := &Backend{
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		tokenTTL: time.Hour,
		users:    make(map[string]*user),
		records:  make(map[string][]map[string]any),
		failures: make(map[string]Failure),
		holds:    make(map[string]*hold),
	}
	for _, opt := range opts {
		opt(b)
	}

	if len(b.secret) == 0 {
		b.secret = make([]byte, 32)
		if _, err := io.ReadFull(rand.Reader, b.secret); err != nil {
			return nil, err
		}
	}

	signer, err := jwt.NewSigner(jwt.SignerConfig{
		TTL:           b.tokenTTL,
		SigningMethod: jwt.MethodHS256,
		PrivateKey:    b.secret,
		Issuer:        "backendtest",
	})
	if err != nil {
		return nil, err
	}
	b.signer = signer

	hasher, err := NewHasher(fastHasherConfig)
	if err != nil {
		return nil, err
	}
	b.hasher = hasher

	if err := b.seed(); err != nil {
		return nil, err
	}
	b.handler = b.routes()
	return b, nil
}

// Start serves the backend on a loopback listener. Callers close the server.
func (b *Backend) Start() *httptest.Server {
	return httptest.NewServer(b)
}

// Verifier exposes the token verifier.
func (b *Backend) Verifier() middleware.Verifier {
	return b.signer
}

func (b *Backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeEnvelope(w, http.StatusBadRequest, "Unreadable body", nil)
		return
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	key := r.Method + " " + r.URL.Path

	b.mu.Lock()
	b.requests = append(b.requests, Request{
		Method:        r.Method,
		Path:          r.URL.Path,
		Authorization: r.Header.Get("Authorization"),
		ContentType:   r.Header.Get("Content-Type"),
		Body:          body,
	})
	f, failing := b.failures[key]
	h := b.holds[key]
	b.mu.Unlock()

	b.logger.Debug("backend request", "method", r.Method, "path", r.URL.Path)

	if h != nil {
		h.once.Do(func() { close(h.entered) })
		select {
		case <-h.release:
		case <-r.Context().Done():
			return
		}
	}

	if failing {
		if f.Raw != "" {
			w.Header().Set("Content-Type", "text/html")
			w.WriteHeader(f.HTTPStatus)
			_, _ = io.WriteString(w, f.Raw)
			return
		}
		status := f.Status
		if status == 0 {
			status = f.HTTPStatus
		}
		writeRaw(w, f.HTTPStatus, status, f.Message, nil)
		return
	}

	b.handler.ServeHTTP(w, r)
}

// Fail makes method+path answer with f until [Backend.Recover] is called.
func (b *Backend) Fail(method, path string, f Failure) {
	b.mu.Lock()
	b.failures[method+" "+path] = f
	b.mu.Unlock()
}

// Recover removes an installed failure.
func (b *Backend) Recover(method, path string) {
	b.mu.Lock()
	delete(b.failures, method+" "+path)
	b.mu.Unlock()
}

// Hold parks every request to method+path. entered is closed when the first one
// arrives; release lets all of them continue and removes the hold.
func (b *Backend) Hold(method, path string) (entered <-chan struct{}, release func()) {
	h := &hold{entered: make(chan struct{}), release: make(chan struct{})}
	key := method + " " + path

	b.mu.Lock()
	b.holds[key] = h
	b.mu.Unlock()

	var once sync.Once
	return h.entered, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.holds, key)
			b.mu.Unlock()
			close(h.release)
		})
	}
}

// Requests returns a copy of every request received so far.
func (b *Backend) Requests() []Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Request(nil), b.requests...)
}

// RequestsTo returns the received requests matching method and path.
func (b *Backend) RequestsTo(method, path string) []Request {
	var out []Request
	for _, r := range b.Requests() {
		if r.Method == method && r.Path == path {
			out = append(out, r)
		}
	}
	return out
}

// AddUser creates an account that can log in.
func (b *Backend) AddUser(name, username, role, password string) (int64, error) {
	hash, err := b.hasher.Hash(password)
	if err != nil {
		return 0, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.users[username]; exists {
		return 0, errors.New("username already exists")
	}
	b.nextID++
	b.users[username] = &user{
		id:           b.nextID,
		name:         name,
		username:     username,
		role:         role,
		passwordHash: hash,
		profile:      map[string]any{"email": username + "@example.com"},
	}
	return b.nextID, nil
}

// Token issues a valid token for an existing user.
func (b *Backend) Token(username string) (string, error) {
	b.mu.Lock()
	u, ok := b.users[username]
	b.mu.Unlock()
	if !ok {
		return "", fmt.Errorf("unknown user %q", username)
	}
	return b.signer.Sign(jwt.Identity{Subject: u.username, Name: u.name, Role: u.role})
}

// UserID returns the id of username.
func (b *Backend) UserID(username string) (int64, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	u, ok := b.users[username]
	if !ok {
		return 0, false
	}
	return u.id, true
}

func writeEnvelope(w http.ResponseWriter, httpStatus int, message string, data any) {
	writeRaw(w, httpStatus, httpStatus, message, data)
}

func writeRaw(w http.ResponseWriter, httpStatus, status int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"data":      data,
		"message":   message,
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	})
}
