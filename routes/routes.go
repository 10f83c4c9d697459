package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/learnclub/club-portal-backend/controllers"
	"github.com/learnclub/club-portal-backend/middleware"
)

// SetupRouter đăng ký route. identity phải dựng Viewer trước mọi handler; quyền
// admin được kiểm tra trong services cho từng thao tác.
func SetupRouter(r *gin.Engine, h *controllers.Handler, identity gin.HandlerFunc) *gin.Engine {
	r.GET("/ping", controllers.Ping)
	r.GET("/health", h.HealthCheck)

	r.Use(identity)

	auth := r.Group("/auth")
	{
		auth.GET("/callback", h.AuthCallback)
		auth.POST("/signout", h.SignOut)
	}

	api := r.Group("/api", middleware.RequireAuth())
	{
		api.GET("/me", h.Me)
		api.POST("/onboarding", h.CompleteOnboarding)

		api.GET("/subjects", h.GetSubjects)
		api.GET("/subjects/:id", h.GetSubjectDetail)
		api.GET("/resources/:id", h.GetResourceDetail)

		api.POST("/resources/:id/comments", h.CreateComment)
		api.DELETE("/comments/:id", h.DeleteComment)

		api.GET("/attendance/me", h.MyAttendance)
	}

	admin := api.Group("/admin")
	{
		admin.GET("/overview", h.AdminOverview)

		//Quản lý người dùng
		admin.GET("/users", h.GetUsers)
		admin.PATCH("/users/:id/role", h.UpdateUserRole)
		admin.PATCH("/users/:id/grade", h.UpdateUserGrade)

		//Quản lý môn học
		admin.GET("/subjects", h.GetSubjects)
		admin.POST("/subjects", h.CreateSubject)
		admin.PUT("/subjects/:id", h.UpdateSubject)
		admin.DELETE("/subjects/:id", h.DeleteSubject)

		//Quản lý tuần
		admin.GET("/weeks", h.GetWeeks)
		admin.POST("/weeks", h.CreateWeek)
		admin.PUT("/weeks/:id", h.UpdateWeek)
		admin.DELETE("/weeks/:id", h.DeleteWeek)

		//Quản lý tài nguyên
		admin.POST("/resources", h.CreateResource)
		admin.PUT("/resources/:id", h.UpdateResource)
		admin.DELETE("/resources/:id", h.DeleteResource)

		//Điểm danh
		admin.GET("/attendance", h.GetAttendance)
		admin.PUT("/attendance", h.MarkAttendance)
		admin.GET("/attendance/export", h.ExportAttendance)

		//Kho đồ dùng
		admin.GET("/inventory", h.GetInventory)
		admin.POST("/inventory", h.CreateInventoryItem)
		admin.PATCH("/inventory/:id/status", h.UpdateInventoryStatus)
		admin.DELETE("/inventory/:id", h.DeleteInventoryItem)
	}

	return r
}
