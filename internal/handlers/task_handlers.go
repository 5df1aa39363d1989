package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"taskboard/internal/handlers/dto"
	"taskboard/internal/logger"
	"taskboard/internal/middleware"
)

type TaskHandler struct {
	tasks       TaskService
	invitations InvitationService
}

func NewTaskHandler(tasks TaskService, invitations InvitationService) *TaskHandler {
	return &TaskHandler{tasks: tasks, invitations: invitations}
}

func taskID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	userID, _ := middleware.UserID(r.Context())

	var request dto.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		responseWithError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	task, err := h.tasks.CreateTask(r.Context(), userID,
		request.Title, request.Description, request.Color, request.Date, request.Time)
	if err != nil {
		handleServiceError(w, err, "create_task")
		return
	}

	logger.Info("HTTP_OUT: task created",
		zap.Int64("task_id", task.ID),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))
	responseWithJSON(w, http.StatusCreated, dto.FromTask(task))
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())

	views, err := h.tasks.ListTasks(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err, "list_tasks")
		return
	}
	responseWithJSON(w, http.StatusOK, dto.FromTaskViews(views))
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())

	id, ok := taskID(r)
	if !ok {
		responseWithError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	var request dto.UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		responseWithError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	task, err := h.tasks.UpdateTask(r.Context(), userID, id, request.Options()...)
	if err != nil {
		handleServiceError(w, err, "update_task")
		return
	}
	responseWithJSON(w, http.StatusOK, dto.FromTask(task))
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())

	id, ok := taskID(r)
	if !ok {
		responseWithError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	if err := h.tasks.DeleteTask(r.Context(), userID, id); err != nil {
		handleServiceError(w, err, "delete_task")
		return
	}
	responseWithJSON(w, http.StatusOK, map[string]any{"message": "task deleted successfully"})
}

func (h *TaskHandler) TogglePin(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())

	id, ok := taskID(r)
	if !ok {
		responseWithError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	pinned, err := h.tasks.TogglePin(r.Context(), userID, id)
	if err != nil {
		handleServiceError(w, err, "toggle_pin")
		return
	}
	responseWithJSON(w, http.StatusOK, map[string]any{"is_pinned": pinned})
}

func (h *TaskHandler) ToggleComplete(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())

	id, ok := taskID(r)
	if !ok {
		responseWithError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	completed, err := h.tasks.ToggleComplete(r.Context(), userID, id)
	if err != nil {
		handleServiceError(w, err, "toggle_complete")
		return
	}
	responseWithJSON(w, http.StatusOK, map[string]any{"is_completed": completed})
}

func (h *TaskHandler) Move(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.UserID(r.Context())

	id, ok := taskID(r)
	if !ok {
		responseWithError(w, http.StatusBadRequest, "invalid task id")
		return
	}

	var request dto.MoveTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		responseWithError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if err := h.tasks.MoveTask(r.Context(), userID, id, request.NewPosition); err != nil {
		handleServiceError(w, err, "move_task")
		return
	}
	responseWithJSON(w, http.StatusOK, map[string]any{"message": "task position updated successfully"})
}
