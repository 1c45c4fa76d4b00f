package controllers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"timetableadmin/internal/delivery/http/helpers"
	"timetableadmin/internal/domain"
)

// ScheduleEntryRequest is the request body for POST /schedules/validate and PUT /schedules/{id}.
type ScheduleEntryRequest struct {
	// ID excludes the entry itself from conflict checks when validating an edit.
	ID           int64          `json:"id,omitempty" validate:"gte=0"`
	GroupID      int64          `json:"group_id" validate:"required,gt=0"`
	SubjectID    int64          `json:"subject_id" validate:"required,gt=0"`
	TeacherID    *int64         `json:"teacher_id" validate:"omitempty,gt=0"`
	RoomID       int64          `json:"room_id" validate:"required,gt=0"`
	Day          domain.Weekday `json:"day_of_week" validate:"required"`
	StartTime    *domain.Clock  `json:"start_time" validate:"required"`
	EndTime      *domain.Clock  `json:"end_time" validate:"required"`
	StudentCount *int           `json:"student_count" validate:"omitempty,gte=0"`
}

func (r ScheduleEntryRequest) entry() domain.ScheduleEntry {
	e := domain.NewScheduleEntry(r.GroupID, r.SubjectID, r.TeacherID, r.RoomID, r.Day, *r.StartTime, *r.EndTime, r.StudentCount)
	e.ID = r.ID
	return *e
}

// AssignScheduleRequest is the request body for POST /schedules. One entry is created per day.
type AssignScheduleRequest struct {
	GroupID      int64            `json:"group_id" validate:"required,gt=0"`
	SubjectID    int64            `json:"subject_id" validate:"required,gt=0"`
	TeacherID    *int64           `json:"teacher_id" validate:"omitempty,gt=0"`
	RoomID       int64            `json:"room_id" validate:"required,gt=0"`
	Days         []domain.Weekday `json:"days" validate:"required,min=1,max=6,unique"`
	StartTime    *domain.Clock    `json:"start_time" validate:"required"`
	EndTime      *domain.Clock    `json:"end_time" validate:"required"`
	StudentCount *int             `json:"student_count" validate:"omitempty,gte=0"`
}

// BulkDeleteRequest is the request body for POST /schedules/bulk-delete.
type BulkDeleteRequest struct {
	IDs []int64 `json:"ids" validate:"required,min=1,unique,dive,gt=0"`
}

// DeleteResponse is the response body for single deletions.
type DeleteResponse struct {
	Status string `json:"status"`
}

// GroupDeletionStatus is the final line of the group deletion progress stream.
type GroupDeletionStatus struct {
	Status    string `json:"status"`
	Completed int    `json:"completed,omitempty"`
	Total     int    `json:"total,omitempty"`
	FailedID  int64  `json:"failed_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

// ScheduleEntrySuccessResponse is the success envelope for a single schedule entry.
type ScheduleEntrySuccessResponse struct {
	Data  domain.ScheduleEntry `json:"data"`
	Error *helpers.APIError    `json:"error"`
}

// ScheduleEntryListSuccessResponse is the success envelope for a list of schedule entries.
type ScheduleEntryListSuccessResponse struct {
	Data  []domain.ScheduleEntry `json:"data"`
	Error *helpers.APIError      `json:"error"`
}

// ValidationResultSuccessResponse is the success envelope for POST /schedules/validate.
type ValidationResultSuccessResponse struct {
	Data  domain.ValidationResult `json:"data"`
	Error *helpers.APIError       `json:"error"`
}

// SelectionResultResponse is the envelope for POST /schedules/bulk-delete.
type SelectionResultResponse struct {
	Data  domain.SelectionResult `json:"data"`
	Error *helpers.APIError      `json:"error"`
}

type ScheduleController struct {
	Logger    *slog.Logger
	Schedules domain.ScheduleService
	Deletions domain.DeletionService
}

func NewScheduleController(logger *slog.Logger, schedules domain.ScheduleService, deletions domain.DeletionService) *ScheduleController {
	return &ScheduleController{
		Logger:    logger,
		Schedules: schedules,
		Deletions: deletions,
	}
}

// ListSchedules godoc
// @Summary List schedule entries
// @Description Lists schedule entries, optionally filtered by group, teacher, room and day.
// @Tags schedules
// @Produce json
// @Security BearerAuth
// @Param group_id query int false "Group ID"
// @Param teacher_id query int false "Teacher ID"
// @Param room_id query int false "Room ID"
// @Param day query string false "Day of week (lunes..sabado)"
// @Success 200 {object} controllers.ScheduleEntryListSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 502 {object} helpers.APIResponse "error.code: bad_gateway"
// @Router /schedules [get]
func (c *ScheduleController) ListSchedules(w http.ResponseWriter, r *http.Request) {
	filter, err := helpers.ParseScheduleFilter(r)
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
		return
	}
	entries, err := c.Schedules.List(r.Context(), filter)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	if entries == nil {
		entries = []domain.ScheduleEntry{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, entries)
}

// ValidateSchedule godoc
// @Summary Validate a candidate schedule entry
// @Description Runs the teacher, room and capacity checks against the current timetable without saving. A rejection is reported as valid=false with a message, not as an HTTP error.
// @Tags schedules
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ScheduleEntryRequest true "Candidate entry"
// @Success 200 {object} controllers.ValidationResultSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 502 {object} helpers.APIResponse "error.code: bad_gateway"
// @Router /schedules/validate [post]
func (c *ScheduleController) ValidateSchedule(w http.ResponseWriter, r *http.Request) {
	var req ScheduleEntryRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	result, err := c.Schedules.Validate(r.Context(), req.entry())
	if err != nil {
		c.fail(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}

// AssignSchedule godoc
// @Summary Assign a class on one or more days
// @Description Creates one schedule entry per selected day. Every day is validated before anything is saved, so a conflict creates nothing. If saving fails midway, the entries already created are returned in data alongside the error.
// @Tags schedules
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body AssignScheduleRequest true "Assignment"
// @Success 201 {object} controllers.ScheduleEntryListSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 422 {object} helpers.APIResponse "error.code: configuration_error"
// @Failure 502 {object} helpers.APIResponse "error.code: bad_gateway"
// @Router /schedules [post]
func (c *ScheduleController) AssignSchedule(w http.ResponseWriter, r *http.Request) {
	var req AssignScheduleRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	created, err := c.Schedules.Assign(r.Context(), domain.AssignmentRequest{
		GroupID:      req.GroupID,
		SubjectID:    req.SubjectID,
		TeacherID:    req.TeacherID,
		RoomID:       req.RoomID,
		Days:         req.Days,
		StartTime:    *req.StartTime,
		EndTime:      *req.EndTime,
		StudentCount: req.StudentCount,
	})
	if err != nil {
		if len(created) > 0 {
			status, code := helpers.ErrorStatus(err)
			helpers.WriteJSONPartial(w, status, created, code, err.Error())
			return
		}
		c.fail(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, created)
}

// UpdateSchedule godoc
// @Summary Update a schedule entry
// @Description Re-validates the entry with itself excluded from the conflict checks, then saves it.
// @Tags schedules
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Schedule entry ID"
// @Param body body ScheduleEntryRequest true "Entry fields"
// @Success 200 {object} controllers.ScheduleEntrySuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 422 {object} helpers.APIResponse "error.code: configuration_error"
// @Failure 502 {object} helpers.APIResponse "error.code: bad_gateway"
// @Router /schedules/{id} [put]
func (c *ScheduleController) UpdateSchedule(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.PathID(w, r, "id")
	if !ok {
		return
	}
	var req ScheduleEntryRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	entry := req.entry()
	entry.ID = id
	if err := c.Schedules.Update(r.Context(), &entry); err != nil {
		c.fail(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, entry)
}

// DeleteSchedule godoc
// @Summary Delete a schedule entry
// @Tags schedules
// @Produce json
// @Security BearerAuth
// @Param id path int true "Schedule entry ID"
// @Success 200 {object} helpers.APIResponse "data.status: deleted"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 502 {object} helpers.APIResponse "error.code: bad_gateway"
// @Router /schedules/{id} [delete]
func (c *ScheduleController) DeleteSchedule(w http.ResponseWriter, r *http.Request) {
	id, ok := helpers.PathID(w, r, "id")
	if !ok {
		return
	}
	if err := c.Schedules.Delete(r.Context(), id); err != nil {
		c.fail(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, DeleteResponse{Status: "deleted"})
}

// BulkDeleteSchedules godoc
// @Summary Delete selected schedule entries
// @Description Deletes each id in turn. A failed id does not stop the rest. 200 when all succeed, 207 when some fail, 502 when none succeed; data always carries the counts.
// @Tags schedules
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body BulkDeleteRequest true "Entry ids"
// @Success 200 {object} controllers.SelectionResultResponse
// @Success 207 {object} controllers.SelectionResultResponse "error.code: partial_failure"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 502 {object} controllers.SelectionResultResponse "error.code: bad_gateway"
// @Router /schedules/bulk-delete [post]
func (c *ScheduleController) BulkDeleteSchedules(w http.ResponseWriter, r *http.Request) {
	var req BulkDeleteRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	res := c.Deletions.DeleteSelected(r.Context(), req.IDs)
	switch {
	case res.Complete():
		helpers.WriteJSONSuccess(w, http.StatusOK, res)
	case res.Succeeded == 0:
		helpers.WriteJSONPartial(w, http.StatusBadGateway, res, helpers.ErrCodeBadGateway, "no schedule entry could be deleted")
	default:
		helpers.WriteJSONPartial(w, http.StatusMultiStatus, res, helpers.ErrCodePartialFailure, "some schedule entries could not be deleted")
	}
}

// DeleteGroupSchedules godoc
// @Summary Delete every schedule entry of a group
// @Description Streams newline-delimited JSON. Each line after a successful delete is {completed,total,percent}; the last line is {"status":"completed"} or {"status":"partial",...} when a delete failed and the run stopped. Errors before the first delete are returned as a normal JSON envelope.
// @Tags schedules
// @Produce application/x-ndjson
// @Security BearerAuth
// @Param groupID path int true "Group ID"
// @Success 200 {object} domain.DeletionProgress "one line per deleted entry"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 502 {object} helpers.APIResponse "error.code: bad_gateway"
// @Router /groups/{groupID}/schedules [delete]
func (c *ScheduleController) DeleteGroupSchedules(w http.ResponseWriter, r *http.Request) {
	groupID, ok := helpers.PathID(w, r, "groupID")
	if !ok {
		return
	}
	stream := newProgressStream(w)
	err := c.Deletions.DeleteGroup(r.Context(), groupID, stream.send)

	var perr *domain.PartialDeletionError
	switch {
	case err == nil:
		stream.finish(GroupDeletionStatus{Status: "completed"})
	case !stream.started:
		c.fail(w, r, err)
	case errors.As(err, &perr):
		stream.finish(GroupDeletionStatus{
			Status:    "partial",
			Completed: perr.Completed,
			Total:     perr.Total,
			FailedID:  perr.FailedID,
			Error:     perr.Err.Error(),
		})
	default:
		stream.finish(GroupDeletionStatus{Status: "failed", Error: err.Error()})
	}
}

func (c *ScheduleController) fail(w http.ResponseWriter, r *http.Request, err error) {
	if status, _ := helpers.ErrorStatus(err); status >= http.StatusInternalServerError {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
	}
	helpers.WriteDomainError(w, err)
}

// progressStream writes NDJSON lines, committing the 200 status on the first line.
type progressStream struct {
	w       http.ResponseWriter
	enc     *json.Encoder
	flusher http.Flusher
	started bool
}

func newProgressStream(w http.ResponseWriter) *progressStream {
	f, _ := w.(http.Flusher)
	return &progressStream{w: w, enc: json.NewEncoder(w), flusher: f}
}

func (s *progressStream) send(p domain.DeletionProgress) {
	s.write(p)
}

func (s *progressStream) finish(status GroupDeletionStatus) {
	s.write(status)
}

func (s *progressStream) write(v any) {
	if !s.started {
		s.started = true
		s.w.Header().Set("Content-Type", "application/x-ndjson")
		s.w.Header().Set("Cache-Control", "no-cache")
		s.w.WriteHeader(http.StatusOK)
	}
	_ = s.enc.Encode(v)
	if s.flusher != nil {
		s.flusher.Flush()
	}
}
