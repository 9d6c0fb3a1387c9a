package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/qcteam/teamcal/internal/confirm"
	"github.com/qcteam/teamcal/internal/domain"
	"github.com/qcteam/teamcal/internal/usecase"
)

// Handler holds the route handlers.
type Handler struct {
	deps Deps
}

type statusRequest struct {
	Status domain.Status `json:"status"`
}

type weeklyCleanupRequest struct {
	Enabled *bool `json:"enabled"`
}

type weeklyCleanupResponse struct {
	LastRun domain.Day `json:"lastRun,omitempty"`
	Enabled bool       `json:"enabled"`
}

// Status reports which backend serves the session.
func (h *Handler) Status(c *gin.Context) {
	resp := gin.H{
		"backend":     h.deps.Feed.Backend(),
		"remoteReady": h.deps.Feed.RemoteReady(),
		"unsynced":    h.deps.Feed.Unsynced(),
	}
	if req, ok := h.deps.Confirmations.PendingConfirmation(); ok {
		resp["pendingConfirmation"] = req
	}
	c.JSON(http.StatusOK, resp)
}

// ListTasks handles GET /api/tasks?date=&status=&department=&assignee=
func (h *Handler) ListTasks(c *gin.Context) {
	in := usecase.ListTasksInput{
		Status:     domain.Status(c.Query("status")),
		Department: domain.Department(c.Query("department")),
		Assignee:   c.Query("assignee"),
	}
	if s := c.Query("date"); s != "" {
		day, err := domain.ParseDay(s)
		if err != nil {
			BadRequest(c, err.Error())
			return
		}
		in.Day = day
	}
	out, err := h.deps.ListTasks.Execute(c.Request.Context(), in)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": out.Tasks})
}

// CreateTask handles POST /api/tasks
func (h *Handler) CreateTask(c *gin.Context) {
	var draft domain.TaskDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		BadRequest(c, "Invalid request body")
		return
	}
	out, err := h.deps.NewTask.Execute(c.Request.Context(), usecase.NewTaskInput{Draft: draft})
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": out.TaskID})
}

// GetTask handles GET /api/tasks/:id
func (h *Handler) GetTask(c *gin.Context) {
	out, err := h.deps.ShowTask.Execute(c.Request.Context(), usecase.ShowTaskInput{TaskID: c.Param("id")})
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, out.Task)
}

// UpdateTask handles PATCH /api/tasks/:id
func (h *Handler) UpdateTask(c *gin.Context) {
	var patch domain.TaskPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		BadRequest(c, "Invalid request body")
		return
	}
	out, err := h.deps.EditTask.Execute(c.Request.Context(), usecase.EditTaskInput{
		TaskID: c.Param("id"),
		Patch:  patch,
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, out.Task)
}

// DeleteTask handles DELETE /api/tasks/:id. Nothing is deleted until the
// returned confirmation is answered with the typed token.
func (h *Handler) DeleteTask(c *gin.Context) {
	out, err := h.deps.DeleteTask.Execute(c.Request.Context(), usecase.DeleteTaskInput{TaskID: c.Param("id")})
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"confirmation": out.Confirmation})
}

// ChangeStatus handles POST /api/tasks/:id/status
func (h *Handler) ChangeStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "Invalid request body")
		return
	}
	out, err := h.deps.ChangeStatus.Execute(c.Request.Context(), usecase.ChangeStatusInput{
		TaskID: c.Param("id"),
		Status: req.Status,
	})
	if err != nil {
		respondDomainError(c, err)
		return
	}
	if out.Confirmation != nil {
		c.JSON(http.StatusAccepted, gin.H{"confirmation": out.Confirmation})
		return
	}
	c.JSON(http.StatusOK, gin.H{"applied": true})
}

// PendingConfirmation handles GET /api/confirmations/pending
func (h *Handler) PendingConfirmation(c *gin.Context) {
	req, ok := h.deps.Confirmations.PendingConfirmation()
	if !ok {
		RespondWithError(c, http.StatusNotFound, NewAPIError(ErrCodeNotFound, "No pending confirmation"))
		return
	}
	c.JSON(http.StatusOK, req)
}

// ResolveConfirmation handles POST /api/confirmations/:token
func (h *Handler) ResolveConfirmation(c *gin.Context) {
	var ans confirm.Answer
	if err := c.ShouldBindJSON(&ans); err != nil {
		BadRequest(c, "Invalid request body")
		return
	}
	h.finishConfirmation(c, usecase.ResolveConfirmationInput{Token: c.Param("token"), Answer: ans})
}

// CancelConfirmation handles DELETE /api/confirmations/:token
func (h *Handler) CancelConfirmation(c *gin.Context) {
	h.finishConfirmation(c, usecase.ResolveConfirmationInput{Token: c.Param("token"), Cancel: true})
}

func (h *Handler) finishConfirmation(c *gin.Context, in usecase.ResolveConfirmationInput) {
	out, err := h.deps.Confirmations.Execute(c.Request.Context(), in)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, out.Outcome)
}

// DailyView handles GET /api/views/daily
func (h *Handler) DailyView(c *gin.Context) {
	out, err := h.deps.DailyView.Execute(c.Request.Context())
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, out.View)
}

// CalendarView handles GET /api/views/calendar?year=&month=
func (h *Handler) CalendarView(c *gin.Context) {
	var in usecase.CalendarMonthInput
	if y := c.Query("year"); y != "" {
		year, err := strconv.Atoi(y)
		if err != nil {
			BadRequest(c, "Invalid year")
			return
		}
		month, err := strconv.Atoi(c.DefaultQuery("month", "1"))
		if err != nil {
			BadRequest(c, "Invalid month")
			return
		}
		in.Year, in.Month = year, time.Month(month)
	}
	out, err := h.deps.CalendarMonth.Execute(c.Request.Context(), in)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, out.Calendar)
}

// DoneReport handles GET /api/reports/done?days=
func (h *Handler) DoneReport(c *gin.Context) {
	days, err := strconv.Atoi(c.DefaultQuery("days", "0"))
	if err != nil {
		BadRequest(c, "Invalid days")
		return
	}
	out, err := h.deps.DoneReport.Execute(c.Request.Context(), usecase.DoneReportInput{Days: days})
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": out.Tasks})
}

// GetWeeklyCleanup handles GET /api/settings/weekly-cleanup
func (h *Handler) GetWeeklyCleanup(c *gin.Context) {
	h.weeklyCleanup(c, usecase.WeeklyCleanupInput{})
}

// SetWeeklyCleanup handles PUT /api/settings/weekly-cleanup
func (h *Handler) SetWeeklyCleanup(c *gin.Context) {
	var req weeklyCleanupRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Enabled == nil {
		BadRequest(c, "enabled is required")
		return
	}
	h.weeklyCleanup(c, usecase.WeeklyCleanupInput{Enabled: req.Enabled})
}

func (h *Handler) weeklyCleanup(c *gin.Context, in usecase.WeeklyCleanupInput) {
	out, err := h.deps.WeeklyCleanup.Execute(c.Request.Context(), in)
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, weeklyCleanupResponse{Enabled: out.Enabled, LastRun: out.LastRun})
}

// RunMaintenance handles POST /api/maintenance. Job failures are reported
// next to the partial report.
func (h *Handler) RunMaintenance(c *gin.Context) {
	out, err := h.deps.Maintenance.Execute(c.Request.Context())
	resp := gin.H{"report": out.Report}
	if err != nil {
		resp["error"] = err.Error()
	}
	c.JSON(http.StatusOK, resp)
}
