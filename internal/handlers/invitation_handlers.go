package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"taskboard/internal/handlers/dto"
	"taskboard/internal/middleware"
	"taskboard/internal/models"
)

// Share creates a share invitation for the task in the URL.
func (h *TaskHandler) Share(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())

	id, ok := taskID(r)
	if !ok {
		responseWithError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	var request dto.ShareTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		responseWithError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	inv, err := h.invitations.CreateInvitation(r.Context(), userID, id,
		request.ShareWithUsername, models.Permission(request.PermissionLevel))
	if err != nil {
		handleServiceError(w, err, "share_task")
		return
	}
	responseWithJSON(w, http.StatusCreated, dto.FromInvitation(inv))
}

func (h *TaskHandler) RespondInvitation(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())

	id, err := strconv.ParseInt(chi.URLParam(r, "invitationId"), 10, 64)
	if err != nil || id <= 0 {
		responseWithError(w, http.StatusBadRequest, "invalid invitation id")
		return
	}

	var request dto.RespondInvitationRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		responseWithError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	inv, err := h.invitations.Respond(r.Context(), userID, id, request.Accept)
	if err != nil {
		handleServiceError(w, err, "respond_invitation")
		return
	}
	responseWithJSON(w, http.StatusOK, dto.FromInvitation(inv))
}

func (h *TaskHandler) ListPendingInvitations(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())

	invitations, err := h.invitations.ListPending(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err, "list_invitations")
		return
	}
	responseWithJSON(w, http.StatusOK, dto.FromPendingInvitations(invitations))
}
