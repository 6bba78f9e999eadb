package web

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dawnhollow/memquest/internal/cloze"
	"github.com/dawnhollow/memquest/internal/domain"
	"github.com/dawnhollow/memquest/internal/progression"
)

// partView is the wire shape of one exercise segment.
type partView struct {
	Type string `json:"type"`          // "text" or "input"
	Val  string `json:"val,omitempty"` // text segments
	ID   int    `json:"id"`            // input segments, 0-based
}

func partViews(ex *cloze.Exercise) []partView {
	views := make([]partView, 0, len(ex.Parts))
	for _, p := range ex.Parts {
		switch p.Kind {
		case cloze.PartText:
			views = append(views, partView{Type: "text", Val: p.Text})
		case cloze.PartInput:
			views = append(views, partView{Type: "input", ID: p.Index})
		}
	}
	return views
}

type playRequest struct {
	UserID    string `json:"user_id" validate:"required"`
	QuestName string `json:"quest_name" validate:"required"`
	Zone      string `json:"zone" validate:"required"`
}

type playResponse struct {
	Zone   string     `json:"zone"`
	Quest  string     `json:"quest"`
	Token  string     `json:"token,omitempty"`
	Parts  []partView `json:"parts,omitempty"`
	Blanks int        `json:"blanks"`
	Hint   string     `json:"hint,omitempty"`
	Prompt string     `json:"prompt,omitempty"`
}

// handlePlay opens a quest in a zone. The expected targets stay server-side
// in the session cache; the client gets the parts and an exercise token.
// Opening always overwrites any previous pending exercise for the user.
func (s *Server) handlePlay() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req playRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad request body"})
			return
		}
		if err := s.validate.Struct(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "user_id, quest_name and zone are required"})
			return
		}
		zone, err := domain.ParseZone(req.Zone)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}

		res, err := s.engine.Open(r.Context(), req.UserID, req.QuestName, zone)
		if err != nil {
			writeError(w, err)
			return
		}

		resp := playResponse{Zone: res.Zone.String(), Quest: res.Quest, Hint: res.Hint, Prompt: res.Prompt}
		var targets []string
		if res.Exercise != nil {
			resp.Parts = partViews(res.Exercise)
			resp.Blanks = len(res.Exercise.Targets)
			targets = res.Exercise.Targets
		}
		resp.Token = s.sessions.Put(req.UserID, res.Quest, res.Zone, targets)
		writeJSON(w, http.StatusOK, resp)
	}
}

type submitRequest struct {
	UserID    string   `json:"user_id" validate:"required"`
	Token     string   `json:"token" validate:"required"`
	Answers   []string `json:"answers"`
	Mnemonic  string   `json:"mnemonic"`
	Penalties int      `json:"penalties" validate:"gte=0"`
}

type submitResponse struct {
	Passed    bool   `json:"passed"`
	Status    string `json:"status,omitempty"`
	XPGained  int    `json:"xp_gained"`
	CardLevel int    `json:"card_level,omitempty"`
	CardGrade string `json:"card_grade,omitempty"`
	UserLevel int    `json:"user_level,omitempty"`
	UserXP    int    `json:"user_xp,omitempty"`
	Title     string `json:"title,omitempty"`
}

// handleSubmit grades a submission against the pending exercise. A failed
// attempt leaves the exercise pending for retry; a pass (or a mnemonic
// registration) consumes it.
func (s *Server) handleSubmit() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req submitRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad request body"})
			return
		}
		if err := s.validate.Struct(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "user_id and token are required"})
			return
		}

		ex, err := s.sessions.Get(req.UserID, req.Token)
		if err != nil {
			writeError(w, err)
			return
		}

		if ex.Zone == domain.ZoneRegisterMnemonic {
			out, err := s.engine.RegisterMnemonic(r.Context(), req.UserID, ex.QuestName, req.Mnemonic)
			if err != nil {
				writeError(w, err)
				return
			}
			s.sessions.Invalidate(req.UserID)
			writeJSON(w, http.StatusOK, outcomeView(out))
			return
		}

		passed := cloze.Grade(req.Answers, ex.Targets)
		out, err := s.engine.Complete(r.Context(), req.UserID, ex.QuestName, ex.Zone, passed, req.Penalties)
		if err != nil {
			writeError(w, err)
			return
		}
		if passed {
			s.sessions.Invalidate(req.UserID)
		}
		writeJSON(w, http.StatusOK, outcomeView(out))
	}
}

func outcomeView(out *progression.Outcome) submitResponse {
	return submitResponse{
		Passed:    out.Passed,
		Status:    out.Status,
		XPGained:  out.XPGained,
		CardLevel: out.CardLevel,
		CardGrade: string(out.CardGrade),
		UserLevel: out.UserLevel,
		UserXP:    out.UserXP,
		Title:     out.Title,
	}
}

type cardView struct {
	QuestName   string `json:"quest_name"`
	Type        string `json:"type"`
	Level       int    `json:"level"`
	Grade       string `json:"grade"`
	CardText    string `json:"card_text"`
	CollectedAt string `json:"collected_at"`
}

// handleUser serves per-user state: GET .../{id} progress, GET
// .../{id}/collection card records, POST .../{id}/reset full progress reset,
// POST .../{id}/logout drops the pending exercise.
func (s *Server) handleUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rest := strings.TrimPrefix(r.URL.Path, "/users/")
		userID, action, _ := strings.Cut(rest, "/")
		if userID == "" {
			http.NotFound(w, r)
			return
		}

		switch {
		case r.Method == http.MethodGet && action == "":
			user, err := s.db.GetOrCreateUser(r.Context(), userID)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"user_id": user.UserID,
				"level":   user.Level,
				"xp":      user.XP,
				"req_xp":  user.XPRequired(),
				"title":   user.Title,
			})
		case r.Method == http.MethodGet && action == "collection":
			records, err := s.db.ListCardRecords(r.Context(), userID)
			if err != nil {
				writeError(w, err)
				return
			}
			cards := make([]cardView, 0, len(records))
			for _, rec := range records {
				cards = append(cards, cardView{
					QuestName:   rec.QuestName,
					Type:        string(rec.Type),
					Level:       rec.Level,
					Grade:       string(rec.Grade),
					CardText:    rec.CardText,
					CollectedAt: rec.CollectedAt.Format("2006-01-02"),
				})
			}
			writeJSON(w, http.StatusOK, cards)
		case r.Method == http.MethodPost && action == "reset":
			if err := s.engine.ResetProgress(r.Context(), userID); err != nil {
				writeError(w, err)
				return
			}
			s.sessions.Invalidate(userID)
			writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
		case r.Method == http.MethodPost && action == "logout":
			s.sessions.Invalidate(userID)
			writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}
