package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/mini-tournament/services"
)

type MatchHandler struct {
	tournamentService services.TournamentService
}

func NewMatchHandler(ts services.TournamentService) *MatchHandler {
	return &MatchHandler{tournamentService: ts}
}

type scoreInput struct {
	ScoreA *int `json:"score_a"`
	ScoreB *int `json:"score_b"`
}

// RecordScoreHandler stores or corrects the score of a match.
// @Summary Record a match score
// @Tags matches
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param matchID path int true "Match ID"
// @Param input body scoreInput true "Games won by each side"
// @Success 200 {object} map[string]engine.ScoreResult
// @Failure 400 {object} map[string]string "Equal or missing scores"
// @Failure 409 {object} map[string]string "Match has no court or is locked"
// @Router /tournament/matches/{matchID}/score [post]
func (h *MatchHandler) RecordScoreHandler(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizerID(w, r)
	if !ok {
		return
	}
	matchID, err := intParam(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input scoreInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.ScoreA == nil || input.ScoreB == nil {
		badRequestResponse(w, r, errors.New("score_a and score_b are required"))
		return
	}

	result, err := h.tournamentService.RecordScore(r.Context(), orgID, matchID, *input.ScoreA, *input.ScoreB)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"result": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
