package dashboard

import (
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"
)

// registerRoutes sets up all page and API routes on the Gin router.
func registerRoutes(router *gin.Engine, s *server) {
	// Embedded static assets (served from assets/ subdir of the embed.FS).
	staticFS, _ := fs.Sub(assetsFS, "assets")
	router.StaticFS("/static", http.FS(staticFS))

	// The event stream only reads; it must not hold the session for its
	// whole lifetime.
	router.GET("/api/events", s.withSession(false), s.handleEvents)

	g := router.Group("/", s.withSession(true))

	// Pages.
	g.GET("/", func(c *gin.Context) { c.Redirect(http.StatusFound, "/chat") })
	g.GET("/chat", s.chatPage)
	g.POST("/chat/send", s.chatSend)
	g.POST("/chat/reset", s.chatReset)
	g.POST("/settings", s.settingsSave)

	g.GET("/tasks", s.tasksPage)
	g.POST("/tasks", s.taskCreate)
	g.POST("/tasks/:id/update", s.taskUpdate)
	g.POST("/tasks/:id/delete", s.taskDelete)
	g.POST("/tasks/bulk", s.tasksBulk)
	g.POST("/tasks/import", s.tasksImport)
	g.POST("/tasks/demo", s.tasksDemo)

	g.GET("/logs", s.logsPage)
	g.POST("/logs/calls", s.callCreate)
	g.POST("/logs/bpos", s.bpoCreate)
	g.POST("/logs/vops", s.vopCreate)

	// JSON API.
	api := g.Group("/api")
	api.GET("/personas", s.apiPersonas)
	api.GET("/personas/:name", s.apiPersona)

	api.GET("/chat/:persona", s.apiChatGet)
	api.POST("/chat/:persona", s.apiChatSend)
	api.DELETE("/chat/:persona", s.apiChatReset)
	api.GET("/chat/:persona/export", s.apiChatExport)
	api.GET("/settings", s.apiSettingsGet)
	api.PUT("/settings", s.apiSettingsPut)

	api.GET("/tasks", s.apiTaskList)
	api.POST("/tasks", s.apiTaskCreate)
	api.GET("/tasks/summary", s.apiTaskSummary)
	api.GET("/tasks/export", s.apiTaskExport)
	api.POST("/tasks/bulk", s.apiTaskBulk)
	api.POST("/tasks/import", s.apiTaskImport)
	api.POST("/tasks/demo", s.apiTaskDemo)
	api.GET("/tasks/:id", s.apiTaskGet)
	api.PATCH("/tasks/:id", s.apiTaskUpdate)
	api.DELETE("/tasks/:id", s.apiTaskDelete)

	api.GET("/calls", s.apiCallList)
	api.POST("/calls", s.apiCallCreate)
	api.GET("/bpos", s.apiBPOList)
	api.POST("/bpos", s.apiBPOCreate)
	api.GET("/vops", s.apiVOPList)
	api.POST("/vops", s.apiVOPCreate)

	api.GET("/export", s.apiExportBundle)
}
