package handlers

import (
	"bytes"
	"embed"
	"html/template"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"crmtasks/internal/models"
	"crmtasks/internal/pdf"
	"crmtasks/internal/services"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates is installed on the engine with SetHTMLTemplate.
func Templates() *template.Template {
	return template.Must(template.New("").ParseFS(templateFS, "templates/*.html"))
}

type DashboardHandler struct {
	service services.TaskService
	pdfGen  pdf.Generator
}

func NewDashboardHandler(service services.TaskService, pdfGen pdf.Generator) *DashboardHandler {
	return &DashboardHandler{service: service, pdfGen: pdfGen}
}

type taskRow struct {
	ID            uuid.UUID
	Title         string
	Type          models.TaskType
	ApplicationID string
	DueAt         string
	Status        models.TaskStatus
	Completed     bool
}

func (h *DashboardHandler) rows(tasks []models.Task) []taskRow {
	loc := h.service.Location()
	out := make([]taskRow, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, taskRow{
			ID:            t.ID,
			Title:         t.Title,
			Type:          t.Type,
			ApplicationID: t.RelatedID,
			DueAt:         t.DueAt.In(loc).Format("02.01.2006 15:04"),
			Status:        t.Status,
			Completed:     t.IsCompleted(),
		})
	}
	return out
}

func (h *DashboardHandler) todayOptions(c *gin.Context) services.TodayOptions {
	return services.TodayOptions{
		IncludeCompleted: c.Query("include_completed") == "true",
		TenantID:         tenantFromCtx(c),
	}
}

// Today renders the due-today table.
func (h *DashboardHandler) Today(c *gin.Context) {
	h.render(c, http.StatusOK, "")
}

func (h *DashboardHandler) render(c *gin.Context, status int, errMsg string) {
	opts := h.todayOptions(c)
	loc := h.service.Location()
	data := gin.H{
		"Day":              time.Now().In(loc).Format("Monday, 02.01.2006"),
		"Zone":             loc.String(),
		"IncludeCompleted": opts.IncludeCompleted,
		"Error":            errMsg,
	}

	tasks, err := h.service.ListDueToday(c.Request.Context(), opts)
	if err != nil {
		log.Printf("[dashboard][today][err] %v", err)
		data["Error"] = "failed to load tasks"
		c.HTML(http.StatusInternalServerError, "today.html", data)
		return
	}
	data["Tasks"] = h.rows(tasks)
	c.HTML(status, "today.html", data)
}

// Complete handles the row button, then redirects back to the table.
func (h *DashboardHandler) Complete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.render(c, http.StatusBadRequest, "invalid id")
		return
	}
	if status, msg := completeTask(c, h.service, id); status != http.StatusOK {
		h.render(c, status, msg)
		return
	}
	target := "/dashboard/today"
	if c.Query("include_completed") == "true" {
		target += "?include_completed=true"
	}
	c.Redirect(http.StatusSeeOther, target)
}

// PDF exports the same rows as the HTML table.
func (h *DashboardHandler) PDF(c *gin.Context) {
	tasks, err := h.service.ListDueToday(c.Request.Context(), h.todayOptions(c))
	if err != nil {
		log.Printf("[dashboard][pdf][err] %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve tasks"})
		return
	}

	now := time.Now()
	var buf bytes.Buffer
	if err := h.pdfGen.GenerateTaskSheet(&buf, pdf.TaskSheetData{
		Day:      now,
		Location: h.service.Location(),
		Tasks:    tasks,
	}); err != nil {
		log.Printf("[dashboard][pdf][err] render: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to render pdf"})
		return
	}
	filename := "tasks-" + now.In(h.service.Location()).Format("2006-01-02") + ".pdf"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
