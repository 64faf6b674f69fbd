package handlers

import (
	"net/http"

	"github.com/Dosada05/mini-tournament/engine"
	"github.com/Dosada05/mini-tournament/services"
)

type PairHandler struct {
	tournamentService services.TournamentService
}

func NewPairHandler(ts services.TournamentService) *PairHandler {
	return &PairHandler{tournamentService: ts}
}

// AddPlayerHandler registers a player profile and returns its first rating.
// @Summary Add a player
// @Tags registry
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param input body engine.PlayerInput true "Player"
// @Success 201 {object} map[string]models.Player
// @Router /tournament/players [post]
func (h *PairHandler) AddPlayerHandler(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizerID(w, r)
	if !ok {
		return
	}
	var input engine.PlayerInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	player, err := h.tournamentService.AddPlayer(r.Context(), orgID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"player": player}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RegisterPairHandler creates a pair from one or two players.
// @Summary Register a pair
// @Tags registry
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param input body engine.RegisterPairInput true "Pair"
// @Success 201 {object} map[string]models.Pair
// @Failure 400 {object} map[string]string "Player already paired"
// @Router /tournament/pairs [post]
func (h *PairHandler) RegisterPairHandler(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizerID(w, r)
	if !ok {
		return
	}
	var input engine.RegisterPairInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	pair, err := h.tournamentService.RegisterPair(r.Context(), orgID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusCreated, jsonResponse{"pair": pair}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PairHandler) MarkReserveHandler(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizerID(w, r)
	if !ok {
		return
	}
	pairID, err := intParam(r, "pairID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input struct {
		Reserve bool `json:"reserve"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	state, err := h.tournamentService.MarkReserve(r.Context(), orgID, pairID, input.Reserve)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": state}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *PairHandler) DissolvePairHandler(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizerID(w, r)
	if !ok {
		return
	}
	pairID, err := intParam(r, "pairID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if _, err := h.tournamentService.DissolvePair(r.Context(), orgID, pairID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SubstituteHandler swaps a reserve pair in for the pair in the URL.
// @Summary Substitute a pair
// @Tags registry
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param pairID path int true "Outgoing pair"
// @Param input body object true "{\"reserve_pair_id\": 17}"
// @Success 200 {object} map[string]models.TournamentState
// @Failure 409 {object} map[string]string "Pair is on court"
// @Router /tournament/pairs/{pairID}/substitute [post]
func (h *PairHandler) SubstituteHandler(w http.ResponseWriter, r *http.Request) {
	orgID, ok := organizerID(w, r)
	if !ok {
		return
	}
	outID, err := intParam(r, "pairID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input struct {
		ReservePairID int `json:"reserve_pair_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	state, err := h.tournamentService.SubstitutePair(r.Context(), orgID, outID, input.ReservePairID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"tournament": state}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
