package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Dosada05/mini-tournament/models"
	"github.com/Dosada05/mini-tournament/services"
	"github.com/go-chi/chi/v5"
)

type TournamentHandler struct {
	tournamentService services.TournamentService
}

func NewTournamentHandler(ts services.TournamentService) *TournamentHandler {
	return &TournamentHandler{
		tournamentService: ts,
	}
}

func (h *TournamentHandler) respondState(w http.ResponseWriter, r *http.Request, state *models.TournamentState, err error) {
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": state}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetStateHandler returns the organizer's live tournament.
// @Summary Current tournament state
// @Tags tournament
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]models.TournamentState
// @Router /tournament [get]
func (h *TournamentHandler) GetStateHandler(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizerID(w, r)
	if !ok {
		return
	}
	state, err := h.tournamentService.GetState(r.Context(), orgID)
	h.respondState(w, r, state, err)
}

func (h *TournamentHandler) SetFormatHandler(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizerID(w, r)
	if !ok {
		return
	}
	var input struct {
		Format models.Format `json:"format"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	state, err := h.tournamentService.SetFormat(r.Context(), orgID, input.Format)
	h.respondState(w, r, state, err)
}

func (h *TournamentHandler) SetCourtsHandler(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizerID(w, r)
	if !ok {
		return
	}
	var input struct {
		Courts int `json:"courts"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	state, err := h.tournamentService.SetCourts(r.Context(), orgID, input.Courts)
	h.respondState(w, r, state, err)
}

// StartHandler seeds the groups and opens round 1.
// @Summary Start the tournament
// @Tags tournament
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param input body services.StartInput true "Seeding strategy"
// @Success 200 {object} map[string]models.TournamentState
// @Failure 400 {object} map[string]string "Not enough starter pairs"
// @Failure 409 {object} map[string]string "Not in setup"
// @Router /tournament/start [post]
func (h *TournamentHandler) StartHandler(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizerID(w, r)
	if !ok {
		return
	}
	var input services.StartInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.Strategy != "" && !input.Strategy.Valid() {
		badRequestResponse(w, r, errors.New("strategy must be one of arrival, elo-balanced, elo-mixed, manual"))
		return
	}
	state, err := h.tournamentService.Start(r.Context(), orgID, input)
	h.respondState(w, r, state, err)
}

// AdvanceHandler moves to the next round, rotates courts or finishes.
// @Summary Advance the round
// @Tags tournament
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]engine.AdvanceResult
// @Failure 409 {object} map[string]interface{} "Round not ready, with remaining count"
// @Router /tournament/advance [post]
func (h *TournamentHandler) AdvanceHandler(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizerID(w, r)
	if !ok {
		return
	}
	result, err := h.tournamentService.AdvanceRound(r.Context(), orgID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"advance": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) ResetHandler(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizerID(w, r)
	if !ok {
		return
	}
	state, err := h.tournamentService.Reset(r.Context(), orgID)
	h.respondState(w, r, state, err)
}

// ArchiveHandler stores a finished tournament and starts a fresh setup.
// @Summary Archive the finished tournament
// @Tags archives
// @Produce json
// @Security BearerAuth
// @Success 201 {object} map[string]models.Archive
// @Failure 409 {object} map[string]string "Tournament not finished"
// @Router /tournament/archive [post]
func (h *TournamentHandler) ArchiveHandler(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizerID(w, r)
	if !ok {
		return
	}
	archive, err := h.tournamentService.Archive(r.Context(), orgID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"archive": archive}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) StandingsHandler(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizerID(w, r)
	if !ok {
		return
	}
	groupID := chi.URLParam(r, "groupID")
	rows, err := h.tournamentService.Standings(r.Context(), orgID, groupID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"group_id": groupID, "standings": rows}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RoundMatchesHandler lists the matches holding a court in a round.
func (h *TournamentHandler) RoundMatchesHandler(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizerID(w, r)
	if !ok {
		return
	}
	round, err := intParam(r, "round")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	matches, err := h.tournamentService.PlayableMatches(r.Context(), orgID, round)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"round": round, "matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) ChampionsHandler(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizerID(w, r)
	if !ok {
		return
	}
	champions, err := h.tournamentService.Champions(r.Context(), orgID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"champions": champions}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListArchivesHandler serves GET /archives?limit=&offset=
func (h *TournamentHandler) ListArchivesHandler(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizerID(w, r)
	if !ok {
		return
	}
	limit, err := queryInt(r, "limit", 20)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	offset, err := queryInt(r, "offset", 0)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	archives, err := h.tournamentService.ListArchives(r.Context(), orgID, limit, offset)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	headers := http.Header{"X-Total-Returned": []string{strconv.Itoa(len(archives))}}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"archives": archives}, headers); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) GetArchiveHandler(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizerID(w, r)
	if !ok {
		return
	}
	archive, err := h.tournamentService.GetArchive(r.Context(), orgID, chi.URLParam(r, "archiveID"))
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"archive": archive}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
