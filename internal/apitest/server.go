// ABOUTME: In-memory fake of the exam platform API for tests
// ABOUTME: Serves auth and exam endpoints behind bearer authentication

package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/waynezhang680/examctl/internal/models"
)

// BasePath is the API prefix the fake serves under
const BasePath = "/api/v1"

type account struct {
	identity models.Identity
	password string
}

// Request is a recorded incoming request
type Request struct {
	Method        string
	Path          string
	RawQuery      string
	Authorization string
}

// Server is a fake platform API backed by httptest
type Server struct {
	srv *httptest.Server

	mu        sync.Mutex
	accounts  map[string]*account
	tokens    map[string]string
	exams     map[int64]models.Exam
	requests  []Request
	nextID    int64
	nextToken string
	issued    int
}

// New starts a fake API server. Call Close when done.
func New() *Server {
	s := &Server{
		accounts: make(map[string]*account),
		tokens:   make(map[string]string),
		exams:    make(map[int64]models.Exam),
		nextID:   1,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST "+BasePath+"/auth/login", s.handleLogin)
	mux.HandleFunc("POST "+BasePath+"/auth/register", s.handleRegister)
	mux.HandleFunc("GET "+BasePath+"/auth/me", s.requireAuth(s.handleMe))
	mux.HandleFunc("GET "+BasePath+"/exams", s.requireAuth(s.handleListExams))
	mux.HandleFunc("GET "+BasePath+"/exams/{id}", s.requireAuth(s.handleGetExam))
	mux.HandleFunc("POST "+BasePath+"/exams/{id}/start", s.requireAuth(s.handleStartExam))

	s.srv = httptest.NewServer(s.record(mux))
	return s
}

// URL returns the API base URL, including BasePath
func (s *Server) URL() string {
	return s.srv.URL + BasePath
}

// Close shuts the server down
func (s *Server) Close() {
	s.srv.Close()
}

// AddUser registers an account. The identity's ID is assigned when zero.
func (s *Server) AddUser(identity models.Identity, password string) models.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addUserLocked(identity, password)
}

// AddExam stores an exam under its ID
func (s *Server) AddExam(exam models.Exam) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exams[exam.ID] = exam
}

// Exam returns the stored exam
func (s *Server) Exam(id int64) (models.Exam, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exam, ok := s.exams[id]
	return exam, ok
}

// SetNextToken makes the next login or registration issue token
func (s *Server) SetNextToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextToken = token
}

// IssueToken makes token valid for username without a login round-trip
func (s *Server) IssueToken(username, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = username
}

// Revoke invalidates a token, so requests carrying it receive 401
func (s *Server) Revoke(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
}

// Requests returns a copy of all recorded requests
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// LastRequest returns the most recent request matching path (without BasePath)
func (s *Server) LastRequest(path string) (Request, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.requests) - 1; i >= 0; i-- {
		if s.requests[i].Path == path {
			return s.requests[i], true
		}
	}
	return Request{}, false
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:        r.Method,
			Path:          strings.TrimPrefix(r.URL.Path, BasePath),
			RawQuery:      r.URL.RawQuery,
			Authorization: r.Header.Get("Authorization"),
		})
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

// requireAuth rejects requests without a known bearer token
func (s *Server) requireAuth(next func(http.ResponseWriter, *http.Request, *account)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			writeJSONError(w, "Authentication required", http.StatusUnauthorized)
			return
		}
		token := strings.TrimPrefix(authHeader, "Bearer ")

		s.mu.Lock()
		username, ok := s.tokens[token]
		acct := s.accounts[username]
		s.mu.Unlock()

		if !ok || acct == nil {
			writeJSONError(w, "Invalid token", http.StatusUnauthorized)
			return
		}
		next(w, r, acct)
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Username == "" || req.Password == "" {
		writeJSONError(w, "Username and password are required", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	acct, ok := s.accounts[req.Username]
	if !ok || acct.password != req.Password {
		s.mu.Unlock()
		writeJSONError(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}
	token := s.issueLocked(req.Username)
	identity := acct.identity
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, models.AuthResponse{User: identity, Token: token})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	if _, exists := s.accounts[req.Username]; exists {
		s.mu.Unlock()
		writeJSONError(w, "User already exists", http.StatusConflict)
		return
	}
	identity := s.addUserLocked(models.Identity{Username: req.Username, Email: req.Email}, req.Password)
	token := s.issueLocked(req.Username)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, models.AuthResponse{User: identity, Token: token})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request, acct *account) {
	writeJSON(w, http.StatusOK, models.MeResponse{User: acct.identity})
}

func (s *Server) handleListExams(w http.ResponseWriter, r *http.Request, _ *account) {
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 10)
	if page < 1 || limit < 1 {
		writeJSONError(w, "page and limit must be positive", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	all := make([]models.Exam, 0, len(s.exams))
	for _, e := range s.exams {
		all = append(all, e)
	}
	s.mu.Unlock()
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	start := (page - 1) * limit
	if start > len(all) {
		start = len(all)
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}

	writeJSON(w, http.StatusOK, models.ExamList{Exams: all[start:end], Total: len(all)})
}

func (s *Server) handleGetExam(w http.ResponseWriter, r *http.Request, _ *account) {
	exam, ok := s.lookupExam(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, exam)
}

func (s *Server) handleStartExam(w http.ResponseWriter, r *http.Request, _ *account) {
	exam, ok := s.lookupExam(w, r)
	if !ok {
		return
	}
	if exam.Status == models.ExamCompleted {
		writeJSONError(w, "Exam already completed", http.StatusConflict)
		return
	}

	exam.Status = models.ExamInProgress
	s.AddExam(exam)
	writeJSON(w, http.StatusOK, exam)
}

func (s *Server) lookupExam(w http.ResponseWriter, r *http.Request) (models.Exam, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSONError(w, "Invalid exam id", http.StatusBadRequest)
		return models.Exam{}, false
	}
	exam, ok := s.Exam(id)
	if !ok {
		writeJSONError(w, fmt.Sprintf("Exam %d not found", id), http.StatusNotFound)
		return models.Exam{}, false
	}
	return exam, true
}

func (s *Server) addUserLocked(identity models.Identity, password string) models.Identity {
	if identity.ID == 0 {
		identity.ID = s.nextID
	}
	if identity.ID >= s.nextID {
		s.nextID = identity.ID + 1
	}
	s.accounts[identity.Username] = &account{identity: identity, password: password}
	return identity
}

func (s *Server) issueLocked(username string) string {
	token := s.nextToken
	s.nextToken = ""
	if token == "" {
		s.issued++
		token = fmt.Sprintf("tok-%s-%d", username, s.issued)
	}
	s.tokens[token] = username
	return token
}

func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return -1
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeJSONError writes an error response as JSON with the given status code.
func writeJSONError(w http.ResponseWriter, message string, code int) {
	writeJSON(w, code, models.ErrorResponse{Error: message, Code: code})
}
