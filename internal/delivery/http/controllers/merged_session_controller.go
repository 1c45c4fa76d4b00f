package controllers

import (
	"log/slog"
	"net/http"

	"timetableadmin/internal/delivery/http/helpers"
	"timetableadmin/internal/domain"
)

// MergedSessionRequest is the request body for POST /merged-sessions and PUT /merged-sessions/{id}.
type MergedSessionRequest struct {
	GroupIDs     []int64        `json:"group_ids" validate:"required,min=2,max=3,unique,dive,gt=0"`
	SubjectID    int64          `json:"subject_id" validate:"required,gt=0"`
	TeacherID    *int64         `json:"teacher_id" validate:"omitempty,gt=0"`
	RoomID       int64          `json:"room_id" validate:"required,gt=0"`
	Day          domain.Weekday `json:"day_of_week" validate:"required"`
	StartTime    *domain.Clock  `json:"start_time" validate:"required"`
	EndTime      *domain.Clock  `json:"end_time" validate:"required"`
	StudentCount int            `json:"student_count" validate:"gte=0"`
	Comment      string         `json:"comment" validate:"max=500"`
}

func (r MergedSessionRequest) record() domain.MergedSessionRecord {
	return domain.MergedSessionRecord{
		GroupIDs:     r.GroupIDs,
		SubjectID:    r.SubjectID,
		TeacherID:    r.TeacherID,
		RoomID:       r.RoomID,
		Day:          r.Day,
		StartTime:    *r.StartTime,
		EndTime:      *r.EndTime,
		StudentCount: r.StudentCount,
		Comment:      r.Comment,
	}
}

// MergedSessionSuccessResponse is the success envelope for a single merged session record.
type MergedSessionSuccessResponse struct {
	Data  domain.MergedSessionRecord `json:"data"`
	Error *helpers.APIError          `json:"error"`
}

// MergedSessionListSuccessResponse is the success envelope for GET /merged-sessions.
type MergedSessionListSuccessResponse struct {
	Data  []domain.MergedSessionDisplay `json:"data"`
	Error *helpers.APIError             `json:"error"`
}

type MergedSessionController struct {
	Logger  *slog.Logger
	Service domain.MergedSessionService
}

func NewMergedSessionController(logger *slog.Logger, svc domain.MergedSessionService) *MergedSessionController {
	return &MergedSessionController{
		Logger:  logger,
		Service: svc,
	}
}

// ListMergedSessions godoc
// @Summary List merged sessions
// @Description Returns every merged session with per-group display names. A group whose schedule entry no longer matches the session day and time is flagged with consistent=false.
// @Tags merged-sessions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.MergedSessionListSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 502 {object} helpers.APIResponse "error.code: bad_gateway"
// @Router /merged-sessions [get]
func (c *MergedSessionController) ListMergedSessions(w http.ResponseWriter, r *http.Request) {
	out, err := c.Service.ListDisplay(r.Context())
	if err != nil {
		c.fail(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, out)
}

// CreateMergedSession godoc
// @Summary Create a merged session
// @Description Links two or three groups that share one class in the same room at the same time.
// @Tags merged-sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body MergedSessionRequest true "Merged session"
// @Success 201 {object} controllers.MergedSessionSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 502 {object} helpers.APIResponse "error.code: bad_gateway"
// @Router /merged-sessions [post]
func (c *MergedSessionController) CreateMergedSession(w http.ResponseWriter, r *http.Request) {
	var req MergedSessionRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	rec := req.record()
	if err := c.Service.Create(r.Context(), &rec); err != nil {
		c.fail(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, rec)
}

// UpdateMergedSession godoc
// @Summary Update a merged session
// @Tags merged-sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Merged session ID"
// @Param body body MergedSessionRequest true "Merged session"
// @Success 200 {object} controllers.MergedSessionSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 502 {object} helpers.APIResponse "error.code: bad_gateway"
// @Router /merged-sessions/{id} [put]
func (c *MergedSessionController) UpdateMergedSession(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.PathID(w, r, "id")
	if !ok {
		return
	}
	var req MergedSessionRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	rec := req.record()
	rec.ID = id
	if err := c.Service.Update(r.Context(), &rec); err != nil {
		c.fail(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, rec)
}

// DeleteMergedSession godoc
// @Summary Delete a merged session
// @Description Removes the merged session record. The groups' own schedule entries are not touched.
// @Tags merged-sessions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Merged session ID"
// @Success 200 {object} helpers.APIResponse "data.status: deleted"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 502 {object} helpers.APIResponse "error.code: bad_gateway"
// @Router /merged-sessions/{id} [delete]
func (c *MergedSessionController) DeleteMergedSession(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.PathID(w, r, "id")
	if !ok {
		return
	}
	if err := c.Service.Delete(r.Context(), id); err != nil {
		c.fail(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, DeleteResponse{Status: "deleted"})
}

func (c *MergedSessionController) fail(w http.ResponseWriter, r *http.Request, err error) {
	if status, _ := helpers.ErrorStatus(err); status >= http.StatusInternalServerError {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
	}
	helpers.WriteDomainError(w, err)
}
