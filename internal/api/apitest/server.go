// Package apitest provides an in-process fake of the auth API for tests.
//
// The fake issues HS256 JWTs with a "sub" claim and a "type" claim
// ("access" or "refresh"), mirrors the status codes and detail messages of
// the real server, and lets tests inject failures and latency per path.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Failure forces a path to answer with Status and an optional detail. A
// zero Status with Drop set closes the connection without answering.
type Failure struct {
	Status int
	Detail any
	Drop   bool
}

// Request is what the fake recorded for one call.
type Request struct {
	Method        string
	Path          string
	Authorization string
	ContentType   string
	RequestID     string
	UserAgent     string
}

// Server is a fake auth API.
type Server struct {
	*httptest.Server

	// ExpiresIn is returned by /token and /refresh, in seconds.
	ExpiresIn int64

	secret []byte

	mu        sync.Mutex
	users     map[string]user
	nextID    int64
	failures  map[string]Failure
	gates     map[string]chan struct{}
	requests  []Request
	unhealthy bool
	openAPI   []byte
	counts    map[string]*atomic.Int64
}

type user struct {
	id        int64
	username  string
	password  string
	createdAt time.Time
}

// NewServer starts a fake API. Close it with Close.
func NewServer() *Server {
	s := &Server{
		ExpiresIn: 1800,
		secret:    []byte("test-secret"),
		users:     make(map[string]user),
		nextID:    1,
		failures:  make(map[string]Failure),
		gates:     make(map[string]chan struct{}),
		counts:    make(map[string]*atomic.Int64),
		openAPI:   []byte(DefaultOpenAPI),
	}
	for _, p := range []string{"/register", "/token", "/refresh", "/users/me", "/health", "/openapi.json"} {
		s.counts[p] = &atomic.Int64{}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /register", s.wrap("/register", s.handleRegister))
	mux.HandleFunc("POST /token", s.wrap("/token", s.handleToken))
	mux.HandleFunc("POST /refresh", s.wrap("/refresh", s.handleRefresh))
	mux.HandleFunc("GET /users/me", s.wrap("/users/me", s.handleMe))
	mux.HandleFunc("GET /health", s.wrap("/health", s.handleHealth))
	mux.HandleFunc("GET /openapi.json", s.wrap("/openapi.json", s.handleOpenAPI))
	mux.HandleFunc("/", s.wrap("", func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusNotFound, "Not Found")
	}))

	s.Server = httptest.NewServer(mux)
	return s
}

// AddUser registers an account directly.
func (s *Server) AddUser(username, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addUserLocked(username, password)
}

func (s *Server) addUserLocked(username, password string) user {
	u := user{id: s.nextID, username: username, password: password, createdAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)}
	s.nextID++
	s.users[username] = u
	return u
}

// Fail makes path answer with f until Recover is called.
func (s *Server) Fail(path string, f Failure) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[path] = f
}

// Recover removes an injected failure.
func (s *Server) Recover(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, path)
}

// SetHealthy toggles the /health answer between 200 and 503.
func (s *Server) SetHealthy(ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unhealthy = !ok
}

// SetOpenAPI replaces the document served at /openapi.json.
func (s *Server) SetOpenAPI(doc string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.openAPI = []byte(doc)
}

// Hold blocks every request to path until the returned release func is
// called.
func (s *Server) Hold(path string) (release func()) {
	ch := make(chan struct{})
	s.mu.Lock()
	s.gates[path] = ch
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.gates, path)
			s.mu.Unlock()
			close(ch)
		})
	}
}

// Count returns how many requests reached path.
func (s *Server) Count(path string) int64 {
	c, ok := s.counts[path]
	if !ok {
		return 0
	}
	return c.Load()
}

// Requests returns a copy of the recorded requests.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// LastRequest returns the most recent request, if any.
func (s *Server) LastRequest() (Request, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return Request{}, false
	}
	return s.requests[len(s.requests)-1], true
}

// IssueToken signs a token for username of the given type with ttl.
func (s *Server) IssueToken(username, tokenType string, ttl time.Duration) string {
	claims := jwt.MapClaims{
		"sub":  username,
		"type": tokenType,
		"exp":  jwt.NewNumericDate(time.Now().Add(ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		panic(err)
	}
	return signed
}

func (s *Server) wrap(path string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if c, ok := s.counts[path]; ok {
			c.Add(1)
		}

		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:        r.Method,
			Path:          r.URL.Path,
			Authorization: r.Header.Get("Authorization"),
			ContentType:   r.Header.Get("Content-Type"),
			RequestID:     r.Header.Get("X-Request-ID"),
			UserAgent:     r.Header.Get("User-Agent"),
		})
		gate := s.gates[path]
		failure, failing := s.failures[path]
		s.mu.Unlock()

		if gate != nil {
			select {
			case <-gate:
			case <-r.Context().Done():
				return
			}
		}

		if failing {
			if failure.Drop {
				hj, ok := w.(http.Hijacker)
				if ok {
					conn, _, err := hj.Hijack()
					if err == nil {
						_ = conn.Close()
						return
					}
				}
			}
			status := failure.Status
			if status == 0 {
				status = http.StatusBadGateway
			}
			if failure.Detail == nil {
				w.WriteHeader(status)
				return
			}
			writeJSON(w, status, map[string]any{"detail": failure.Detail})
			return
		}

		next(w, r)
	}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Error de validación")
		return
	}

	s.mu.Lock()
	if _, exists := s.users[body.Username]; exists {
		s.mu.Unlock()
		writeDetail(w, http.StatusBadRequest, "El nombre de usuario ya está registrado")
		return
	}
	u := s.addUserLocked(body.Username, body.Password)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, userJSON(u))
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Error de validación")
		return
	}
	username := r.PostForm.Get("username")
	password := r.PostForm.Get("password")

	s.mu.Lock()
	u, ok := s.users[username]
	s.mu.Unlock()

	if !ok || u.password != password {
		w.Header().Set("WWW-Authenticate", "Bearer")
		writeDetail(w, http.StatusUnauthorized, "Nombre de usuario o contraseña incorrectos")
		return
	}
	s.writeTokens(w, username)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	username, ok := s.subject(r, "refresh")
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Token de refresco inválido")
		return
	}
	s.writeTokens(w, username)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	username, ok := s.subject(r, "access")
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "No se pudieron validar las credenciales")
		return
	}

	s.mu.Lock()
	u, exists := s.users[username]
	s.mu.Unlock()
	if !exists {
		writeDetail(w, http.StatusNotFound, "Usuario no encontrado")
		return
	}
	writeJSON(w, http.StatusOK, userJSON(u))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	unhealthy := s.unhealthy
	s.mu.Unlock()

	if unhealthy {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "down"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "message": "API running"})
}

func (s *Server) handleOpenAPI(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	doc := s.openAPI
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(doc)
}

func (s *Server) writeTokens(w http.ResponseWriter, username string) {
	ttl := time.Duration(s.ExpiresIn) * time.Second
	writeJSON(w, http.StatusOK, map[string]any{
		"access_token":  s.IssueToken(username, "access", ttl),
		"refresh_token": s.IssueToken(username, "refresh", 7*24*time.Hour),
		"token_type":    "bearer",
		"expires_in":    s.ExpiresIn,
	})
}

// subject validates the bearer token and returns its subject when the token
// has the wanted type.
func (s *Server) subject(r *http.Request, wantType string) (string, bool) {
	raw, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !found || raw == "" {
		return "", false
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", false
	}

	tokenType, _ := claims["type"].(string)
	if tokenType == "" {
		tokenType = "access"
	}
	if tokenType != wantType {
		return "", false
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return "", false
	}
	return sub, true
}

func userJSON(u user) map[string]any {
	return map[string]any{
		"id":         u.id,
		"username":   u.username,
		"created_at": u.createdAt.Format("2006-01-02T15:04:05"),
	}
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
