// Package stubserver is a stand-in for the document chat service. It keeps
// uploaded file names per session and answers questions deterministically,
// which is enough to drive the client end to end.
package stubserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const maxUploadMemory = 32 << 20

type document struct {
	Name      string `json:"name"`
	MimeType  string `json:"type"`
	SizeBytes int64  `json:"size"`
}

type Turn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

type sessionRecord struct {
	mu      sync.Mutex
	ID      string
	Docs    []document
	History []Turn
}

// Server serves /upload, /chat and /health.
type Server struct {
	router   chi.Router
	sessions *cache.Cache
	log      *zap.Logger
}

// New creates a server whose sessions expire after ttl of inactivity.
func New(log *zap.Logger, ttl time.Duration) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	s := &Server{
		sessions: cache.New(ttl, ttl/6+time.Second),
		log:      log,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(requestLogger(s.log))

	r.Get("/health", s.handleHealth)
	r.Post("/upload", s.handleUpload)
	r.Post("/chat", s.handleChat)

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		jsonError(w, "files: field required", http.StatusUnprocessableEntity)
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		jsonError(w, "files: field required", http.StatusUnprocessableEntity)
		return
	}

	rec := &sessionRecord{ID: "sess_" + uuid.NewString()}
	for _, h := range headers {
		rec.Docs = append(rec.Docs, document{
			Name:      h.Filename,
			MimeType:  h.Header.Get("Content-Type"),
			SizeBytes: h.Size,
		})
	}
	s.sessions.SetDefault(rec.ID, rec)
	s.log.Info("indexed upload", zap.String("session_id", rec.ID), zap.Int("files", len(rec.Docs)))

	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": rec.ID,
		"indexed":    true,
	})
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body", http.StatusUnprocessableEntity)
		return
	}

	rec, ok := s.lookup(req.SessionID)
	if !ok {
		jsonError(w, "Invalid or expired session_id. Re-upload documents.", http.StatusBadRequest)
		return
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		jsonError(w, "Message cannot be empty", http.StatusBadRequest)
		return
	}

	rec.mu.Lock()
	answer := answerFor(rec.Docs, message)
	rec.History = append(rec.History, Turn{Role: "user", Text: message}, Turn{Role: "assistant", Text: answer})
	rec.mu.Unlock()
	s.sessions.SetDefault(rec.ID, rec)

	writeJSON(w, http.StatusOK, map[string]string{"answer": answer})
}

func (s *Server) lookup(id string) (*sessionRecord, bool) {
	if id == "" {
		return nil, false
	}
	v, ok := s.sessions.Get(id)
	if !ok {
		return nil, false
	}
	return v.(*sessionRecord), true
}

// History returns a copy of the conversation kept for a session.
func (s *Server) History(id string) []Turn {
	rec, ok := s.lookup(id)
	if !ok {
		return nil
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return append([]Turn(nil), rec.History...)
}

func answerFor(docs []document, message string) string {
	names := make([]string, len(docs))
	for i, d := range docs {
		names[i] = d.Name
	}
	return fmt.Sprintf("Searched %d document(s) [%s] for: %s", len(docs), strings.Join(names, ", "), message)
}

func jsonError(w http.ResponseWriter, detail string, status int) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
