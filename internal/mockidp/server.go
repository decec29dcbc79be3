// Package mockidp is an in-memory identity service speaking the same REST
// API as the real one. It backs local development and the client tests.
package mockidp

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/petrijr/sessionflow/pkg/api"
)

// QR payload prefixes understood by the service.
const (
	LinkPrefix   = "sessionflow:link:"
	VerifyPrefix = "sessionflow:verify:"
)

// Transaction statuses.
const (
	TxPending   = "PENDING"
	TxScanned   = "SCANNED"
	TxStarted   = "STARTED"
	TxCompleted = "COMPLETED"
	TxAccepted  = "ACCEPTED"
	TxRejected  = "REJECTED"
)

// Languages the service accepts.
var Languages = []string{"en", "ja"}

type address struct {
	id          string
	devices     []api.Device
	credentials []api.Credential
}

type transaction struct {
	id     string
	status string
	checks int
}

// Server holds all service state in memory.
type Server struct {
	logger     *slog.Logger
	deviceName string

	mu            sync.Mutex
	clients       map[string]string
	tokens        map[string]string
	addresses     map[string]*address
	current       *address
	language      string
	recoveryEmail string
	transactions  map[string]*transaction
	proofs        []string
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClient registers OAuth2 client credentials.
func WithClient(id, secret string) Option {
	return func(s *Server) { s.clients[id] = secret }
}

// WithDeviceName sets the name given to devices linked through the API.
func WithDeviceName(name string) Option {
	return func(s *Server) { s.deviceName = name }
}

// NewServer returns an empty service.
func NewServer(opts ...Option) *Server {
	s := &Server{
		logger:       slog.Default(),
		deviceName:   "sessionflow",
		clients:      make(map[string]string),
		tokens:       make(map[string]string),
		addresses:    make(map[string]*address),
		language:     "en",
		transactions: make(map[string]*transaction),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router returns the HTTP handler for the service.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")
	r.HandleFunc("/oauth/token", s.tokenHandler).Methods("POST")
	r.HandleFunc("/qr/link.png", s.linkQRHandler).Methods("GET")
	r.HandleFunc("/qr/verify/{tx}.png", s.verifyQRHandler).Methods("GET")

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.Use(s.requireToken)
	v1.HandleFunc("/digital-address/recover", s.recoverHandler).Methods("POST")
	v1.HandleFunc("/digital-address/import", s.importHandler).Methods("POST")
	v1.HandleFunc("/devices", s.devicesHandler).Methods("GET")
	v1.HandleFunc("/devices/{id}", s.deleteDeviceHandler).Methods("DELETE")
	v1.HandleFunc("/credentials", s.credentialsHandler).Methods("GET")
	v1.HandleFunc("/language", s.getLanguageHandler).Methods("GET")
	v1.HandleFunc("/language", s.setLanguageHandler).Methods("PUT")
	v1.HandleFunc("/recovery-email/send", s.sendRecoveryEmailHandler).Methods("POST")
	v1.HandleFunc("/recovery-email", s.setRecoveryEmailHandler).Methods("PUT")
	v1.HandleFunc("/verifications/{tx}/start", s.startVerificationHandler).Methods("POST")
	v1.HandleFunc("/verifications/{tx}/accept", s.acceptProofHandler).Methods("POST")
	v1.HandleFunc("/verifications/{tx}/reject", s.rejectProofHandler).Methods("POST")
	v1.HandleFunc("/bootstrapping", s.bootstrapHandler).Methods("POST")
	v1.HandleFunc("/bootstrapping/{tx}", s.bootstrapStatusHandler).Methods("GET")
	v1.HandleFunc("/proofs", s.proofHandler).Methods("POST")

	r.Use(s.logRequests)
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("mockidp_request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.status),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		s.mu.Lock()
		_, known := s.tokens[token]
		s.mu.Unlock()
		if !ok || !known {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) tokenHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeOAuthError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if gt := r.PostForm.Get("grant_type"); gt != "client_credentials" {
		writeOAuthError(w, http.StatusBadRequest, "unsupported_grant_type", "grant type "+gt+" is not supported")
		return
	}

	id, secret, ok := r.BasicAuth()
	if !ok {
		id, secret = r.PostForm.Get("client_id"), r.PostForm.Get("client_secret")
	}

	s.mu.Lock()
	want, known := s.clients[id]
	if !known || want != secret || id == "" {
		s.mu.Unlock()
		writeOAuthError(w, http.StatusUnauthorized, "invalid_client", "client authentication failed")
		return
	}
	token := uuid.NewString()
	s.tokens[token] = id
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"access_token": token,
		"token_type":   "bearer",
		"expires_in":   3600,
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeOAuthError(w http.ResponseWriter, status int, code, desc string) {
	writeJSON(w, status, map[string]string{"error": code, "error_description": desc})
}
