package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"guardians/internal/game"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Leaderboard lists archived results, best first.
type Leaderboard interface {
	TopResults(ctx context.Context, limit int) ([]game.GameResult, error)
}

type Server struct {
	log         *slog.Logger
	game        *game.Service
	leaderboard Leaderboard
	mux         *chi.Mux
}

func New(logger *slog.Logger, gameSvc *game.Service, leaderboard Leaderboard) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		log:         logger,
		game:        gameSvc,
		leaderboard: leaderboard,
		mux:         chi.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	r := s.mux
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "sessions": s.game.Len()})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Get("/content", s.handleContent)
		r.Get("/leaderboard", s.handleLeaderboard)

		r.Post("/sessions", s.handleCreateSession)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", s.handleSession)
			r.Delete("/", s.handleDeleteSession)
			r.Post("/advance", s.handleAdvance)
			r.Post("/dilemma", s.handleDilemma)
			r.Post("/quiz", s.handleQuiz)
			r.Post("/weights", s.handleWeight)
			r.Post("/assets/{asset}/toggle", s.handleToggleAsset)
			r.Post("/coins/request", s.handleCoinRequest)
			r.Post("/coins/approve", s.simpleAction(game.ApproveCoins{}))
			r.Post("/coins/reject", s.simpleAction(game.RejectCoins{}))
			r.Post("/wheel", s.simpleAction(game.SpinWheel{}))
			r.Post("/advisor", s.handleAdvisorSettings)
			r.Post("/advisor/ask", s.handleAdvisorAsk)
			r.Post("/reset", s.simpleAction(game.Reset{}))
		})
	})
}

type actionResponse struct {
	Session game.View    `json:"session"`
	Outcome game.Outcome `json:"outcome"`
}

func (s *Server) apply(w http.ResponseWriter, r *http.Request, act game.Action) {
	view, out, err := s.game.Apply(r.Context(), chi.URLParam(r, "id"), act)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, actionResponse{Session: view, Outcome: out})
}

func (s *Server) simpleAction(act game.Action) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.apply(w, r, act)
	}
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	view, err := s.game.NewSession(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	view, err := s.game.Session(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.game.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Choice *int `json:"choice"`
	}
	if err := decodeOptionalJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	s.apply(w, r, game.AdvanceDay{Choice: in.Choice})
}

func (s *Server) handleDilemma(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Option int `json:"option"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	s.apply(w, r, game.AnswerDilemma{Option: in.Option})
}

func (s *Server) handleQuiz(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Option int `json:"option"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	s.apply(w, r, game.AnswerQuiz{Option: in.Option})
}

func (s *Server) handleWeight(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Asset string `json:"asset"`
		Value int    `json:"value"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	asset, err := game.ParseAsset(in.Asset)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	s.apply(w, r, game.SetWeight{Asset: asset, Value: in.Value})
}

func (s *Server) handleToggleAsset(w http.ResponseWriter, r *http.Request) {
	asset, err := game.ParseAsset(chi.URLParam(r, "asset"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	s.apply(w, r, game.ToggleAsset{Asset: asset})
}

func (s *Server) handleCoinRequest(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Amount int `json:"amount"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	s.apply(w, r, game.RequestCoins{Amount: in.Amount})
}

func (s *Server) handleAdvisorSettings(w http.ResponseWriter, r *http.Request) {
	var in game.ConfigureAdvisor
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	s.apply(w, r, in)
}

func (s *Server) handleAdvisorAsk(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Input string `json:"input"`
	}
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	view, err := s.game.AskAdvisor(r.Context(), chi.URLParam(r, "id"), in.Input)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, view)
}

type contentPayload struct {
	Assets        []game.AssetParams `json:"assets"`
	Badges        []game.BadgeInfo   `json:"badges"`
	Personalities []game.Personality `json:"personalities"`
	Tasks         []game.Task        `json:"tasks"`
	Prizes        []game.WheelPrize  `json:"prizes"`
}

func (s *Server) handleContent(w http.ResponseWriter, _ *http.Request) {
	c := s.game.Content()
	out := contentPayload{
		Personalities: c.Personalities,
		Tasks:         c.Tasks,
		Prizes:        c.Prizes,
	}
	for _, a := range game.AllAssets() {
		if p, ok := c.Assets[a]; ok {
			out.Assets = append(out.Assets, p)
		}
	}
	for _, b := range game.AllBadges() {
		info, ok := c.Badges[b]
		if !ok {
			info = game.BadgeInfo{Badge: b, Name: b.String()}
		}
		out.Badges = append(out.Badges, info)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	var rows []game.GameResult
	if s.leaderboard != nil {
		var err error
		rows, err = s.leaderboard.TopResults(r.Context(), limit)
		if err != nil {
			s.log.Error("leaderboard query failed", "err", err)
			writeDomainError(w, err)
			return
		}
	}
	if rows == nil {
		rows = []game.GameResult{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"rows": rows})
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, game.ErrInvalidAsset), errors.Is(err, game.ErrInvalidBadge):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func decodeJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return err
	}
	return nil
}

// decodeOptionalJSON accepts an empty body.
func decodeOptionalJSON(r *http.Request, out any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	if err := decodeJSON(r, out); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": strings.TrimSpace(message)})
}
