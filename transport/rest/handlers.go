package rest

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/rocketscienceinc/knucklebones-backend/internal/apperror"
	"github.com/rocketscienceinc/knucklebones-backend/internal/entity"
	"github.com/rocketscienceinc/knucklebones-backend/internal/usecase"
)

const maxBodyBytes = 1 << 20

type matchUseCase interface {
	IssueSetup(ctx context.Context, startingPlayerID int, startingKey, secondKey string) (entity.GameSetup, error)
	SubmitGame(ctx context.Context, submission *entity.GameSubmission) (*entity.MatchResult, error)
	Leaderboard(ctx context.Context, limit int) ([]entity.LeaderboardEntry, error)
	Match(ctx context.Context, id string) (*usecase.MatchDetails, error)
}

type Handlers interface {
	IssueSetup(w http.ResponseWriter, r *http.Request)
	SubmitGame(w http.ResponseWriter, r *http.Request)
	GetMatch(w http.ResponseWriter, r *http.Request)
	Leaderboard(w http.ResponseWriter, r *http.Request)
}

type handlers struct {
	logger  *slog.Logger
	matches matchUseCase
}

func NewHandlers(logger *slog.Logger, matches matchUseCase) Handlers {
	return &handlers{
		logger:  logger.With("component", "rest_handlers"),
		matches: matches,
	}
}

// setupRequest names the two players, as base64 public keys, the setup is issued to.
type setupRequest struct {
	StartingPlayerID int    `json:"starting_player_id"`
	StartingKey      string `json:"starting_key"`
	SecondKey        string `json:"second_key"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (that *handlers) IssueSetup(w http.ResponseWriter, r *http.Request) {
	var request setupRequest
	if err := decode(w, r, &request); err != nil {
		that.writeError(w, "IssueSetup", err)
		return
	}

	setup, err := that.matches.IssueSetup(r.Context(), request.StartingPlayerID, request.StartingKey, request.SecondKey)
	if err != nil {
		that.writeError(w, "IssueSetup", err)
		return
	}

	that.writeJSON(w, http.StatusCreated, setup)
}

func (that *handlers) SubmitGame(w http.ResponseWriter, r *http.Request) {
	var submission entity.GameSubmission
	if err := decode(w, r, &submission); err != nil {
		that.writeError(w, "SubmitGame", err)
		return
	}

	match, err := that.matches.SubmitGame(r.Context(), &submission)
	if err != nil {
		that.writeError(w, "SubmitGame", err)
		return
	}

	that.writeJSON(w, http.StatusCreated, match)
}

func (that *handlers) GetMatch(w http.ResponseWriter, r *http.Request) {
	details, err := that.matches.Match(r.Context(), r.PathValue("id"))
	if err != nil {
		that.writeError(w, "GetMatch", err)
		return
	}

	that.writeJSON(w, http.StatusOK, details)
}

func (that *handlers) Leaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		var err error
		if limit, err = strconv.Atoi(raw); err != nil || limit < 0 {
			that.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid limit"})
			return
		}
	}

	entries, err := that.matches.Leaderboard(r.Context(), limit)
	if err != nil {
		that.writeError(w, "Leaderboard", err)
		return
	}

	that.writeJSON(w, http.StatusOK, entries)
}

var errBadRequest = errors.New("malformed request body")

func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return errors.Join(errBadRequest, err)
	}

	return nil
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, apperror.ErrInvalidSetup),
		errors.Is(err, apperror.ErrSameKeys),
		errors.Is(err, apperror.ErrAuthentication),
		errors.Is(err, apperror.ErrOutOfOrder),
		errors.Is(err, apperror.ErrNotYourTurn),
		errors.Is(err, apperror.ErrInvalidColumn),
		errors.Is(err, apperror.ErrInvalidDie),
		errors.Is(err, apperror.ErrBoardFull),
		errors.Is(err, apperror.ErrGameFinished),
		errors.Is(err, apperror.ErrGameNotFinished):
		return http.StatusBadRequest
	case errors.Is(err, apperror.ErrMatchNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrMatchAlreadyExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (that *handlers) writeError(w http.ResponseWriter, method string, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		that.logger.Error("request failed", "method", method, "error", err)
		that.writeJSON(w, status, errorResponse{Error: "Internal Server Error"})
		return
	}

	that.logger.Debug("request rejected", "method", method, "status", status, "error", err)
	that.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (that *handlers) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		that.logger.Error("failed to write response", "error", err)
	}
}
