package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"crmtasks/internal/authz"
	"crmtasks/internal/handlers"
	"crmtasks/internal/middleware"
)

type Handlers struct {
	Task      *handlers.TaskHandler
	Dashboard *handlers.DashboardHandler
	Realtime  *handlers.RealtimeHandler
	Health    *handlers.HealthHandler
}

// SetupRoutes registers every endpoint. auth is the authentication
// middleware (JWT/service key, or anonymous in development).
func SetupRoutes(r *gin.Engine, auth gin.HandlerFunc, h Handlers) *gin.Engine {
	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
	})
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
	r.SetHTMLTemplate(handlers.Templates())

	// ---- public
	if h.Health != nil {
		r.GET("/healthz", h.Health.Health)
	}

	// ---- protected
	guarded := r.Group("/",
		auth,
		middleware.ReadOnlyGuard(),
		middleware.RequireRoles(authz.TaskRoles...),
	)

	// the edge-function style endpoint answers every method so non-POST gets 405
	guarded.Any("/create-task", h.Task.Create)

	tasks := guarded.Group("/tasks")
	{
		tasks.POST("", h.Task.Create)
		tasks.GET("", h.Task.GetAll)
		tasks.GET("/today", h.Task.Today)
		tasks.GET("/:id", h.Task.GetByID)
		tasks.POST("/:id/complete", h.Task.Complete)
	}

	dash := guarded.Group("/dashboard")
	{
		dash.GET("/today", h.Dashboard.Today)
		dash.GET("/today.pdf", h.Dashboard.PDF)
		dash.POST("/tasks/:id/complete", h.Dashboard.Complete)
	}

	if h.Realtime != nil {
		guarded.GET("/ws/tasks", h.Realtime.Subscribe)
	}

	return r
}
