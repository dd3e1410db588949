package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"crmtasks/internal/models"
	"crmtasks/internal/repositories"
	"crmtasks/internal/services"
)

type TaskHandler struct {
	service services.TaskService
}

func NewTaskHandler(service services.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

type createTaskResponse struct {
	Success bool      `json:"success"`
	TaskID  uuid.UUID `json:"task_id"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Create godoc
// @Summary      Create a task
// @Description  Validates and inserts a follow-up task for an application, then emits task.created.
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Param        body  body      models.CreateTaskInput  true  "task"
// @Success      200   {object}  createTaskResponse
// @Failure      400   {object}  errorResponse
// @Failure      405   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /create-task [post]
// @Router       /tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	userID, roleID := getUserAndRole(c)
	log.Printf("[task][create] call by userID=%d role=%d", userID, roleID)

	if c.Request.Method != http.MethodPost {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
		return
	}

	var in *models.CreateTaskInput
	raw, err := c.GetRawData()
	if err == nil {
		err = json.Unmarshal(raw, &in)
	}
	if err != nil || in == nil {
		log.Printf("[task][create][bind][err] %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}
	// a tenant-scoped caller can only write into its own tenant
	if tenant := tenantFromCtx(c); tenant != nil {
		in.TenantID = models.StringValue(*tenant)
	}
	log.Printf("[task][create] payload application_id=%s task_type=%s due_at=%s", in.ApplicationID, in.TaskType, in.DueAt)

	task, err := h.service.Create(c.Request.Context(), in)
	if err != nil {
		var verr *services.ValidationError
		if errors.As(err, &verr) {
			log.Printf("[task][create][400] %s", verr.Message)
			c.JSON(http.StatusBadRequest, gin.H{"error": verr.Message})
			return
		}
		log.Printf("[task][create][err] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to insert task"})
		return
	}
	log.Printf("[task][create][ok] id=%s application_id=%s type=%s", task.ID, task.RelatedID, task.Type)
	c.JSON(http.StatusOK, createTaskResponse{Success: true, TaskID: task.ID})
}

// Today godoc
// @Summary      Tasks due today
// @Description  Tasks whose due_at falls within the current day in the configured zone, earliest first.
// @Tags         tasks
// @Produce      json
// @Param        include_completed  query  bool  false  "also return completed tasks"
// @Success      200  {array}   models.Task
// @Failure      500  {object}  errorResponse
// @Router       /tasks/today [get]
func (h *TaskHandler) Today(c *gin.Context) {
	opts := services.TodayOptions{
		IncludeCompleted: c.Query("include_completed") == "true",
		TenantID:         tenantFromCtx(c),
	}
	tasks, err := h.service.ListDueToday(c.Request.Context(), opts)
	if err != nil {
		log.Printf("[task][today][err] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve tasks"})
		return
	}
	log.Printf("[task][today][ok] count=%d", len(tasks))
	c.JSON(http.StatusOK, tasks)
}

// GetAll godoc
// @Summary      List tasks
// @Tags         tasks
// @Produce      json
// @Param        status          query  string  false  "pending|completed"
// @Param        from            query  string  false  "due_at lower bound (RFC3339)"
// @Param        to              query  string  false  "due_at upper bound (RFC3339)"
// @Param        application_id  query  string  false  "application id"
// @Success      200  {array}   models.Task
// @Failure      400  {object}  errorResponse
// @Router       /tasks [get]
func (h *TaskHandler) GetAll(c *gin.Context) {
	log.Printf("[task][list] q=%v", c.Request.URL.RawQuery)

	filter := models.TaskFilter{TenantID: tenantFromCtx(c)}
	if v, ok := c.GetQuery("status"); ok {
		st := models.TaskStatus(v)
		if st != models.StatusPending && st != models.StatusCompleted {
			c.JSON(http.StatusBadRequest, gin.H{"error": "status must be one of: pending, completed"})
			return
		}
		filter.Status = &st
	}
	for _, p := range []struct {
		key string
		dst **time.Time
	}{{"from", &filter.DueFrom}, {"to", &filter.DueTo}} {
		v, ok := c.GetQuery(p.key)
		if !ok {
			continue
		}
		t, err := services.ParseTimestamp(v, h.service.Location())
		if err != nil {
			log.Printf("[task][list][warn] bad %s=%q: %v", p.key, v, err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + p.key + " (ISO timestamp)"})
			return
		}
		*p.dst = &t
	}
	if v, ok := c.GetQuery("application_id"); ok && v != "" {
		filter.RelatedID = &v
	}

	tasks, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		log.Printf("[task][list][err] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve tasks"})
		return
	}
	log.Printf("[task][list][ok] count=%d", len(tasks))
	c.JSON(http.StatusOK, tasks)
}

// GetByID godoc
// @Summary      Get a task
// @Tags         tasks
// @Produce      json
// @Param        id   path      string  true  "task id"
// @Success      200  {object}  models.Task
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /tasks/{id} [get]
func (h *TaskHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		log.Printf("[task][getByID][err] invalid id: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	task, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		log.Printf("[task][getByID][err] id=%s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get task"})
		return
	}
	if task == nil || !visibleToCaller(tenantFromCtx(c), task.TenantID) {
		log.Printf("[task][getByID][404] id=%s", id)
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}
	c.JSON(http.StatusOK, task)
}

// Complete godoc
// @Summary      Mark a task completed
// @Tags         tasks
// @Produce      json
// @Param        id   path      string  true  "task id"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /tasks/{id}/complete [post]
func (h *TaskHandler) Complete(c *gin.Context) {
	userID, roleID := getUserAndRole(c)
	log.Printf("[task][complete] call by userID=%d role=%d id_param=%s", userID, roleID, c.Param("id"))

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	status, msg := completeTask(c, h.service, id)
	if status != http.StatusOK {
		c.JSON(status, gin.H{"error": msg})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "status": models.StatusCompleted})
}

// completeTask is shared by the JSON and dashboard endpoints.
func completeTask(c *gin.Context, svc services.TaskService, id uuid.UUID) (int, string) {
	ctx := c.Request.Context()
	if tenant := tenantFromCtx(c); tenant != nil {
		current, err := svc.GetByID(ctx, id)
		if err != nil {
			log.Printf("[task][complete][err] get current id=%s: %v", id, err)
			return http.StatusInternalServerError, "failed to get task"
		}
		if current == nil || !visibleToCaller(tenant, current.TenantID) {
			return http.StatusNotFound, "task not found"
		}
	}
	if err := svc.Complete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrTaskNotFound) {
			log.Printf("[task][complete][404] id=%s", id)
			return http.StatusNotFound, "task not found"
		}
		log.Printf("[task][complete][err] id=%s: %v", id, err)
		return http.StatusInternalServerError, "failed to complete task"
	}
	log.Printf("[task][complete][ok] id=%s", id)
	return http.StatusOK, ""
}
