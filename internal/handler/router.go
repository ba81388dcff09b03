package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-zone-analytics/internal/middleware"
	"github.com/noah-isme/sma-zone-analytics/internal/models"
)

// Handlers groups everything RegisterRoutes mounts.
type Handlers struct {
	Zones        *ZoneHandler
	Pipeline     *ZonePipelineHandler
	Prerequisite *PrerequisiteHandler
	Assignment   *ClassAssignmentHandler
}

var (
	writeRoles = []models.UserRole{models.RoleAdmin, models.RoleSuperAdmin}
	readRoles  = []models.UserRole{models.RoleTeacher, models.RoleAdmin, models.RoleSuperAdmin}
)

// RegisterRoutes mounts the zone analytics API on group. auth must populate
// the request claims; role checks run after it.
func RegisterRoutes(group *gin.RouterGroup, auth gin.HandlerFunc, h Handlers) {
	secured := group.Group("")
	if auth != nil {
		secured.Use(auth)
	}
	read := middleware.RequireRoles(readRoles...)
	write := middleware.RequireRoles(writeRoles...)

	zones := secured.Group("/zones")
	if h.Zones != nil {
		zones.GET("/overview", read, h.Zones.Overview)
		zones.GET("/campuses/:campus", read, h.Zones.Campus)
		zones.GET("/campuses/:campus/grades/:grade", read, h.Zones.Grade)
		zones.GET("/classes/:classId", read, h.Zones.Class)
		zones.GET("/subjects", read, h.Zones.Subjects)
		zones.GET("/subjects/:subject", read, h.Zones.Subject)
		zones.GET("/students", read, h.Zones.Search)
		zones.GET("/students/:studentId", middleware.RequireRolesOrSelf("studentId", readRoles...), h.Zones.Student)
		zones.GET("/export", read, h.Zones.Export)
	}
	if h.Pipeline != nil {
		zones.POST("/students/:studentId/calculate", write, h.Pipeline.Calculate)
		zones.POST("/statistics/refresh", write, h.Pipeline.Refresh)
		zones.POST("/recompute", write, h.Pipeline.Recompute)
		zones.GET("/recompute/:id", write, h.Pipeline.RecomputeStatus)
	}
	if h.Prerequisite != nil {
		zones.POST("/prerequisites/batch", write, h.Prerequisite.Batch)
		zones.GET("/prerequisites/:studentId", read, h.Prerequisite.Validate)
		zones.POST("/prerequisites/:studentId/fix", write, h.Prerequisite.Fix)
	}

	if h.Assignment != nil {
		assignments := secured.Group("/class-assignments", write)
		assignments.GET("/suggest/:studentId", h.Assignment.Suggest)
		assignments.POST("/unassigned", h.Assignment.AssignUnassigned)
		assignments.POST("/selected", h.Assignment.AssignSelected)
		assignments.POST("/:studentId", h.Assignment.Assign)
	}
}
