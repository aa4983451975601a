package main

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/activity-points-api/internal/handler"
	"github.com/noah-isme/activity-points-api/internal/middleware"
	"github.com/noah-isme/activity-points-api/internal/models"
)

type routeHandlers struct {
	auth         *handler.AuthHandler
	certificates *handler.CertificateHandler
	academicYear *handler.AcademicYearHandler
	uploadWindow *handler.UploadWindowHandler
	students     *handler.StudentHandler
	catalog      *handler.CatalogHandler
	reports      *handler.ReportHandler
}

func registerRoutes(api *gin.RouterGroup, h routeHandlers, tokens middleware.TokenValidator, audit middleware.AuditWriter) {
	studentOnly := middleware.RequireRoles(models.RoleStudent)
	staff := middleware.RequireRoles(middleware.Staff...)
	admins := middleware.RequireRoles(middleware.Admins...)
	windowManagers := middleware.RequireRoles(models.RoleHOD, models.RoleAdmin, models.RoleSuperAdmin)

	api.POST("/auth/login", h.auth.Login)
	api.POST("/auth/refresh", h.auth.Refresh)
	// Signed tokens authorize these downloads.
	api.GET("/certificates/:id/download", h.certificates.Download)
	if h.reports != nil {
		api.GET("/export/:token", h.reports.DownloadReport)
	}

	secured := api.Group("", middleware.JWT(tokens))
	secured.POST("/auth/logout", h.auth.Logout)
	secured.GET("/auth/me", h.auth.Me)

	secured.GET("/categories", h.catalog.Categories)
	secured.GET("/departments", h.catalog.Departments)

	certificates := secured.Group("/certificates")
	certificates.POST("", studentOnly, h.certificates.Submit)
	certificates.GET("", h.certificates.List)
	certificates.GET("/:id", h.certificates.Get)
	certificates.GET("/:id/history", h.certificates.History)
	certificates.GET("/:id/download-url", h.certificates.DownloadURL)
	certificates.POST("/:id/approve", staff, h.certificates.Approve)
	certificates.POST("/:id/reject", staff, h.certificates.Reject)
	certificates.DELETE("/:id", studentOnly, h.certificates.Delete)

	years := secured.Group("/academic-year")
	years.POST("/start", admins, h.academicYear.Start)
	years.GET("/active", h.academicYear.Active)
	years.GET("/history", h.academicYear.History)

	uploadLock := secured.Group("/upload-lock")
	uploadLock.GET("/status", h.uploadWindow.Status)
	uploadLock.POST("/toggle", windowManagers, h.uploadWindow.Toggle)

	students := secured.Group("/students")
	students.GET("", staff, h.students.List)
	students.GET("/me/progress", studentOnly, h.students.MyProgress)
	students.GET("/:id/progress", h.students.Progress)
	students.POST("/:id/clearance", admins, h.academicYear.Clear)

	if h.reports != nil {
		reports := secured.Group("/reports")
		reports.POST("/points", staff, middleware.Audit(audit, models.AuditActionReportRequest, "report"), h.reports.PointsReport)
		reports.POST("/clearance", staff, middleware.Audit(audit, models.AuditActionReportRequest, "report"), h.reports.ClearanceReport)
		reports.GET("/:id", h.reports.ReportStatus)
	}
}
