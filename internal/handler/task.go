package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/brijeshpatel49/StaffMaster-sub001/internal/model"
	"github.com/brijeshpatel49/StaffMaster-sub001/internal/repo"
	"github.com/brijeshpatel49/StaffMaster-sub001/internal/service"
	"github.com/brijeshpatel49/StaffMaster-sub001/internal/workflow"
	"github.com/brijeshpatel49/StaffMaster-sub001/pkg/respond"
)

type TaskHandler struct {
	service *service.TaskService
	logger  *zap.Logger
}

func NewTaskHandler(srv *service.TaskService, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		service: srv,
		logger:  logger,
	}
}

// Routes mounts the task surface on the given router.
func (h *TaskHandler) Routes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Delete("/{id}", h.Delete)
	r.Post("/{id}/transition", h.Transition)
	r.Post("/{id}/updates", h.AddUpdate)
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength == 0 {
		respond.Error(w, r, http.StatusBadRequest, "empty request body")
		return
	}

	var req model.CreateTaskInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode json", zap.Error(err))
		respond.Error(w, r, http.StatusBadRequest, fmt.Sprintf("invalid json: %v", err))
		return
	}

	idempKey := r.Header.Get("Idempotency-Key")
	task, err := h.service.Create(r.Context(), actorFrom(r), req, idempKey, time.Now())
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	w.Header().Set("Location", "/api/tasks/"+task.ID)
	respond.JSON(w, r, http.StatusCreated, task)
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	task, err := h.service.Get(r.Context(), actorFrom(r), chi.URLParam(r, "id"), time.Now())
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, task)
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	var q model.TaskQuery

	params := r.URL.Query()
	if v := params.Get("status"); v != "" {
		s := model.Status(v)
		q.Filter.Status = &s
	}
	if v := params.Get("priority"); v != "" {
		p := model.Priority(v)
		q.Filter.Priority = &p
	}
	if v := params.Get("department_id"); v != "" {
		q.Filter.DepartmentID = &v
	}
	if v := params.Get("assigned_to"); v != "" {
		q.Filter.AssignedTo = &v
	}
	q.Sort = model.SortKey(params.Get("sort"))
	q.Page, _ = strconv.Atoi(params.Get("page"))

	result, err := h.service.List(r.Context(), actorFrom(r), q, time.Now())
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, result)
}

func (h *TaskHandler) Transition(w http.ResponseWriter, r *http.Request) {
	var req workflow.TransitionInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	task, err := h.service.Transition(r.Context(), actorFrom(r), chi.URLParam(r, "id"), req, time.Now())
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, task)
}

func (h *TaskHandler) AddUpdate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	task, err := h.service.AddUpdate(r.Context(), actorFrom(r), chi.URLParam(r, "id"), req.Message, time.Now())
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, task)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), actorFrom(r), chi.URLParam(r, "id")); err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.NoContent(w)
}

func (h *TaskHandler) handleErrors(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		respond.Error(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, workflow.ErrForbidden):
		respond.Error(w, r, http.StatusForbidden, "forbidden")
	case errors.Is(err, repo.ErrorNotFound):
		respond.Error(w, r, http.StatusNotFound, "not found")
	case errors.Is(err, repo.ErrorConflict):
		respond.Error(w, r, http.StatusConflict, "conflict")
	case errors.Is(err, service.ErrInvalidState):
		respond.Error(w, r, http.StatusConflict, err.Error())
	case errors.Is(err, workflow.ErrInvalidTransition):
		respond.Error(w, r, http.StatusUnprocessableEntity, err.Error())
	default:
		h.logger.Error("internal error", zap.Error(err))
		respond.Error(w, r, http.StatusInternalServerError, "internal error")
	}
}
