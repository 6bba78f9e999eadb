// Package web is the HTTP boundary. It converts store and business-rule
// failures into explicit response codes: ErrStoreUnavailable becomes 503,
// not-found 404, empty ingestion 422. A wrong answer is never an error.
package web

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dawnhollow/memquest/internal/domain"
	"github.com/dawnhollow/memquest/internal/ingest"
	"github.com/dawnhollow/memquest/internal/progression"
	"github.com/dawnhollow/memquest/internal/session"
	"github.com/dawnhollow/memquest/internal/storage"
	syncsrc "github.com/dawnhollow/memquest/internal/sync"
)

// maxUploadBytes caps one upload body.
const maxUploadBytes = 16 << 20

// Server holds the dependencies for the HTTP server.
type Server struct {
	db       *storage.DB
	router   *http.ServeMux
	ingestor *ingest.Ingestor
	engine   *progression.Engine
	sessions *session.Cache
	validate *validator.Validate
}

// NewServer creates and configures a new server.
func NewServer(db *storage.DB, ingestor *ingest.Ingestor, engine *progression.Engine, sessions *session.Cache) *Server {
	s := &Server{
		db:       db,
		router:   http.NewServeMux(),
		ingestor: ingestor,
		engine:   engine,
		sessions: sessions,
		validate: validator.New(),
	}
	s.routes()
	return s
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.HandleFunc("/ingest", s.handleIngest())
	s.router.HandleFunc("/quests", s.handleQuests())
	s.router.HandleFunc("/quests/", s.handleQuest())
	s.router.HandleFunc("/users/", s.handleUser())
	s.router.HandleFunc("/play", s.handlePlay())
	s.router.HandleFunc("/submit", s.handleSubmit())
	s.router.HandleFunc("/sources", s.handleSources())
	s.router.HandleFunc("/sources/", s.handleDeleteSource())
	s.router.HandleFunc("/sync", s.handleSync())
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps the error taxonomy onto status codes.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrStoreUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "record store unavailable, retry later"})
	case errors.Is(err, domain.ErrQuestNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "quest not found"})
	case errors.Is(err, domain.ErrNoContent):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "no content extracted from upload"})
	case errors.Is(err, domain.ErrNoExercise):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "no pending exercise for this token"})
	case errors.Is(err, domain.ErrNotEligible):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "zone not eligible for this quest"})
	default:
		slog.Error("request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

type ingestRequest struct {
	Prefix string `validate:"required,max=40"`
	UserID string `validate:"required"`
}

// handleIngest accepts a multipart upload (field "file") plus a name prefix
// and runs the ingestion pipeline.
func (s *Server) handleIngest() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad multipart form"})
			return
		}

		req := ingestRequest{
			Prefix: r.FormValue("prefix"),
			UserID: r.FormValue("user_id"),
		}
		if err := s.validate.Struct(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "prefix and user_id are required"})
			return
		}

		f, _, err := r.FormFile("file")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing file field"})
			return
		}
		defer f.Close()
		raw, err := io.ReadAll(f)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "failed to read upload"})
			return
		}

		text, err := ingest.Decode(raw)
		if err != nil {
			writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "upload is neither UTF-8 nor EUC-KR"})
			return
		}

		report, err := s.ingestor.IngestText(r.Context(), text, req.Prefix, req.UserID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, report)
	}
}

type questSummary struct {
	Name      string `json:"name"`
	Creator   string `json:"creator"`
	CreatedAt string `json:"created_at"`
}

// handleQuests lists the corpus on GET and deletes by prefix on DELETE.
func (s *Server) handleQuests() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			quests, err := s.db.ListQuests(r.Context())
			if err != nil {
				writeError(w, err)
				return
			}
			out := make([]questSummary, 0, len(quests))
			for _, q := range quests {
				out = append(out, questSummary{
					Name:      q.Name,
					Creator:   q.Creator,
					CreatedAt: q.CreatedAt.Format("2006-01-02"),
				})
			}
			writeJSON(w, http.StatusOK, out)
		case http.MethodDelete:
			prefix := r.URL.Query().Get("prefix")
			if prefix == "" {
				writeJSON(w, http.StatusBadRequest, errorResponse{Error: "prefix query parameter is required"})
				return
			}
			n, err := s.db.DeleteQuestsByPrefix(r.Context(), prefix)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]int64{"deleted": n})
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

// handleQuest serves one quest: GET fetches, PUT replaces content, and
// POST .../rename renames with propagation to card records.
func (s *Server) handleQuest() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/quests/")
		name, action, _ := strings.Cut(rest, "/")
		if name == "" {
			http.NotFound(w, r)
			return
		}

		switch {
		case r.Method == http.MethodGet && action == "":
			quest, err := s.db.FindQuestByName(r.Context(), name)
			if err != nil {
				writeError(w, err)
				return
			}
			if quest == nil {
				writeError(w, domain.ErrQuestNotFound)
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{
				"name":    quest.Name,
				"content": quest.Content,
				"creator": quest.Creator,
			})
		case r.Method == http.MethodPut && action == "":
			var body struct {
				Content string `json:"content"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad request body"})
				return
			}
			if err := s.db.UpdateQuestContent(r.Context(), name, body.Content); err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{"name": name})
		case r.Method == http.MethodPost && action == "rename":
			var body struct {
				NewName string `json:"new_name"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.NewName == "" {
				writeJSON(w, http.StatusBadRequest, errorResponse{Error: "new_name is required"})
				return
			}
			if err := s.db.RenameQuest(r.Context(), name, body.NewName); err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]string{"name": body.NewName})
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

// handleSources lists and registers quest-text sources.
func (s *Server) handleSources() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			sources, err := s.db.GetAllSources(r.Context())
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, sources)
		case http.MethodPost:
			var body struct {
				Path string `json:"path"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Path == "" {
				writeJSON(w, http.StatusBadRequest, errorResponse{Error: "path is required"})
				return
			}
			typ := "local"
			if strings.HasSuffix(body.Path, ".git") || strings.HasPrefix(body.Path, "git@") || strings.HasPrefix(body.Path, "https://") {
				typ = "git"
			}
			id, err := s.db.InsertSource(r.Context(), body.Path, typ)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusCreated, map[string]interface{}{"id": id, "type": typ})
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

func (s *Server) handleDeleteSource() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		idStr := strings.TrimPrefix(r.URL.Path, "/sources/")
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid source ID"})
			return
		}
		if err := s.db.DeleteSource(r.Context(), id); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]int64{"deleted": id})
	}
}

// handleSync reconciles all registered sources in the foreground.
func (s *Server) handleSync() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if err := syncsrc.RunSync(r.Context(), s.db, s.ingestor); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "synced"})
	}
}
