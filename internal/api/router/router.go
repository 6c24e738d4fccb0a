package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"convention-planner/config"
	"convention-planner/internal/api/handler"
	"convention-planner/internal/api/middleware"
	"convention-planner/internal/model"
	"convention-planner/pkg/jwt"
	"convention-planner/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
// rdb 为 nil 时令牌撤销检查与限流降级为放行；db 为 nil 时健康检查跳过数据库
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, db *gorm.DB, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	// ── 健康检查 ──
	r.GET("/health", healthCheck(db, rdb))

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	if cfg.RateLimit.Enabled {
		v1.Use(middleware.RateLimit(rdb, cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}
	{
		// 无状态计算（不落库）
		v1.POST("/plans/calculate", h.Plan.Calculate)

		conventions := v1.Group("/conventions")
		{
			// 公开访问：创建与只读
			conventions.POST("", h.Convention.CreateConvention)
			conventions.GET("", h.Convention.ListConventions)
			conventions.GET("/:id", h.Convention.GetConvention)
			conventions.GET("/:id/plan", h.Plan.GetPlan)
			conventions.GET("/:id/grid", h.Plan.GetGrid)
			conventions.GET("/:id/papers", h.Paper.ListPapers)
			conventions.GET("/:id/papers/export", h.Paper.ExportPapers)
			conventions.GET("/:id/assignments", h.Assignment.ListAssignments)
			conventions.GET("/:id/moderators", h.People.ListPeople(model.RoleModerator))
			conventions.GET("/:id/chairs", h.People.ListPeople(model.RoleChair))
			conventions.GET("/:id/rooms", h.People.ListRooms)
			conventions.GET("/:id/customizations", h.Customization.ListCustomizations)
			conventions.GET("/:id/customizations/:key", h.Customization.GetCustomization)
			conventions.GET("/:id/labels", h.Label.GetLabels)

			// 口令换取编辑令牌
			conventions.POST("/:id/edit-token", h.Auth.IssueEditToken)
		}

		// 需要编辑令牌的路由
		editable := conventions.Group("/:id")
		editable.Use(middleware.ConventionAuth(jwtMgr, rdb))
		{
			editable.PUT("", h.Convention.UpdateConvention)
			editable.DELETE("", h.Convention.DeleteConvention)
			editable.DELETE("/edit-token", h.Auth.RevokeEditToken)
			editable.PUT("/passcode", h.Auth.ChangePasscode)

			// 网格摆放
			layout := editable.Group("/layout")
			{
				layout.POST("/auto", h.Layout.AutoPopulate)
				layout.POST("/round-tables", h.Layout.AssignRoundTable)
				layout.POST("/round-tables/slot", h.Layout.AssignRoundTableToSlot)
				layout.POST("/paper-sessions", h.Layout.AssignPaperSession)
				layout.POST("/remove", h.Layout.RemoveAt)
				layout.DELETE("", h.Layout.Clear)
			}

			// 论文
			papers := editable.Group("/papers")
			{
				papers.POST("", h.Paper.CreatePaper)
				papers.POST("/import", h.Paper.ImportPapers)
				papers.PUT("/:paper_id", h.Paper.UpdatePaper)
				papers.DELETE("/:paper_id", h.Paper.DeletePaper)
			}

			// 论文分场
			assignments := editable.Group("/assignments")
			{
				assignments.POST("", h.Assignment.AssignPaper)
				assignments.POST("/auto", h.Assignment.AutoAssign)
				assignments.DELETE("", h.Assignment.ClearAssignments)
				assignments.DELETE("/:session/:paper_id", h.Assignment.RemovePaper)
			}

			// 主持人 / 主席
			for path, role := range map[string]string{"/moderators": model.RoleModerator, "/chairs": model.RoleChair} {
				people := editable.Group(path)
				people.POST("", h.People.CreatePerson(role))
				people.PUT("/:person_id", h.People.UpdatePerson(role))
				people.DELETE("/:person_id", h.People.DeletePerson(role))
			}
			editable.PUT("/rooms", h.People.UpdateRooms)

			// 场次定制
			editable.PUT("/customizations/:key", h.Customization.UpsertCustomization)
			editable.DELETE("/customizations/:key", h.Customization.DeleteCustomization)

			// 标签与开始时间
			labels := editable.Group("/labels")
			{
				labels.PUT("/slots", h.Label.UpdateSlotLabels)
				labels.PUT("/sessions", h.Label.UpdateSessionLabels)
				labels.PUT("/times", h.Label.UpdateSlotTimes)
				labels.POST("/times/auto", h.Label.AutoSlotTimes)
				labels.POST("/times/ics", h.Label.ImportSlotTimesICS)
			}
		}
	}

	return r
}

// healthCheck 检查数据库与 Redis 连通性；Redis 未配置不影响整体状态
func healthCheck(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		checks := gin.H{"database": "skipped", "redis": "disabled"}

		if db != nil {
			checks["database"] = "ok"
			sqlDB, err := db.DB()
			if err == nil {
				err = sqlDB.PingContext(ctx)
			}
			if err != nil {
				checks["database"] = "down"
				status = http.StatusServiceUnavailable
			}
		}

		if rdb != nil {
			checks["redis"] = "ok"
			if err := rdb.Ping(ctx); err != nil {
				checks["redis"] = "down"
			}
		}

		state := "ok"
		if status != http.StatusOK {
			state = "degraded"
		}
		c.JSON(status, gin.H{"status": state, "checks": checks})
	}
}
