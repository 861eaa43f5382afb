package handlers

import (
	"net/http"

	"github.com/SportsAmigo/SportsAmigo-sub000/middleware"
	"github.com/SportsAmigo/SportsAmigo-sub000/services"
)

type JoinRequestHandler struct {
	joinRequestService services.JoinRequestService
}

func NewJoinRequestHandler(joinRequestService services.JoinRequestService) *JoinRequestHandler {
	return &JoinRequestHandler{joinRequestService: joinRequestService}
}

func (h *JoinRequestHandler) RequestJoin(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	teamID, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	request, err := h.joinRequestService.RequestJoin(r.Context(), teamID, currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"join_request": request}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *JoinRequestHandler) Decide(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	teamID, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	playerID, err := getIDFromURL(r, "playerID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Approve bool `json:"approve"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.joinRequestService.Decide(r.Context(), teamID, playerID, input.Approve, currentUserID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *JoinRequestHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	requests, err := h.joinRequestService.ListPendingForManager(r.Context(), currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"join_requests": requests}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
