package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stemsi/schoolhub-backend/internal/ability"
	"github.com/stemsi/schoolhub-backend/internal/config"
	"github.com/stemsi/schoolhub-backend/internal/handler"
	"github.com/stemsi/schoolhub-backend/internal/middleware"
	"github.com/stemsi/schoolhub-backend/internal/response"
)

const announcementStreamPath = "/api/v1/announcements/stream"

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth         *handler.AuthHandler
	Grade        *handler.GradeHandler
	Attendance   *handler.AttendanceHandler
	Announcement *handler.AnnouncementHandler
	Group        *handler.GroupHandler
	Subject      *handler.SubjectHandler
	Timetable    *handler.TimetableHandler
	Message      *handler.MessageHandler
	System       *handler.SystemHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
// loginLimiter may be nil, in which case login attempts are not limited.
func SetupRouter(
	verifier middleware.SessionVerifier,
	loginLimiter *middleware.RateLimiter,
	handlers *Handlers,
	cfg *config.Config,
	log zerolog.Logger,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// ─── CORS ──────────────────────────────────────────────────────────
	// Session cookies need credentials, which rule out the wildcard origin.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowOriginFunc = func(string) bool { return true }
	}
	corsConfig.AllowCredentials = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	router.Use(middleware.BrotliWithConfig(middleware.BrotliConfig{
		Quality:   middleware.DefaultBrotliConfig.Quality,
		MinLength: middleware.DefaultBrotliConfig.MinLength,
		SkipPaths: []string{announcementStreamPath},
	}))

	// Health and readiness checks.
	router.GET("/health", handlers.System.Health)
	router.GET("/ready", handlers.System.Ready)

	router.NoRoute(func(c *gin.Context) {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	})

	session := middleware.RequireSession(verifier, middleware.CookieSettings{Secure: cfg.SessionCookieSecure}, log)
	can := func(action ability.Action, subject ability.SubjectType) gin.HandlerFunc {
		return middleware.Authorize(action, subject, log)
	}

	api := router.Group("/api/v1")
	api.Use(middleware.NoStore())

	// ─── 1. Auth Group (Public, Login Rate Limited) ────────────────────
	auth := api.Group("/auth")
	{
		if loginLimiter != nil {
			auth.POST("/login", loginLimiter.Middleware(), handlers.Auth.Login)
		} else {
			auth.POST("/login", handlers.Auth.Login)
		}
		auth.POST("/logout", handlers.Auth.Logout)
		auth.POST("/register", handlers.Auth.Register)
		auth.POST("/confirm-email", handlers.Auth.ConfirmEmail)
		auth.GET("/me", session, handlers.Auth.Me)
	}

	// Everything below requires a live session.
	gated := api.Group("")
	gated.Use(session)

	// ─── 2. Grades ─────────────────────────────────────────────────────
	grades := gated.Group("/grades")
	{
		grades.GET("/student/:studentId", can(ability.Read, ability.SubjectGrade), handlers.Grade.ListByStudent)
		grades.GET("/:gradeId", can(ability.Read, ability.SubjectGrade), handlers.Grade.Get)
		grades.POST("", can(ability.Add, ability.SubjectGrade), handlers.Grade.Add)
		grades.PUT("/:gradeId", can(ability.Update, ability.SubjectGrade), handlers.Grade.Update)
		grades.DELETE("/:gradeId", can(ability.Delete, ability.SubjectGrade), handlers.Grade.Delete)
	}

	// ─── 3. Attendance ─────────────────────────────────────────────────
	attendance := gated.Group("/attendance")
	{
		attendance.GET("/student/:studentId", can(ability.Read, ability.SubjectAttendance), handlers.Attendance.ListByStudent)
		attendance.POST("/justify", can(ability.Update, ability.SubjectAttendance), handlers.Attendance.Justify)
		attendance.PUT("/:id/status", can(ability.Manage, ability.SubjectAttendance), handlers.Attendance.UpdateStatus)
	}

	// ─── 4. Announcements ──────────────────────────────────────────────
	announcements := gated.Group("/announcements")
	{
		announcements.GET("", can(ability.Read, ability.SubjectAnnouncement), handlers.Announcement.List)
		announcements.GET("/stream", can(ability.Read, ability.SubjectAnnouncement), handlers.Announcement.Stream)
		announcements.POST("", can(ability.Create, ability.SubjectAnnouncement), handlers.Announcement.Create)
		announcements.DELETE("/:id", can(ability.Delete, ability.SubjectAnnouncement), handlers.Announcement.Delete)
	}

	// ─── 5. Groups ─────────────────────────────────────────────────────
	groups := gated.Group("/groups")
	{
		groups.GET("/student/:studentId", can(ability.Read, ability.SubjectGroup), handlers.Group.ListByStudent)
		groups.GET("/teacher/:teacherId", can(ability.Read, ability.SubjectGroup), handlers.Group.ListByTeacher)
		groups.POST("", can(ability.Create, ability.SubjectGroup), handlers.Group.Create)
		groups.POST("/students", can(ability.AddTo, ability.SubjectGroup), handlers.Group.AddStudent)
		groups.DELETE("/students", can(ability.RemoveFrom, ability.SubjectGroup), handlers.Group.RemoveStudent)
		groups.POST("/teachers", can(ability.AddTo, ability.SubjectGroup), handlers.Group.AddTeacher)
		groups.DELETE("/teachers", can(ability.RemoveFrom, ability.SubjectGroup), handlers.Group.RemoveTeacher)
		groups.DELETE("/:groupId", can(ability.Delete, ability.SubjectGroup), handlers.Group.Delete)
	}

	// ─── 6. Subjects ───────────────────────────────────────────────────
	subjects := gated.Group("/subjects")
	{
		subjects.GET("/student/:studentId", can(ability.Read, ability.SubjectSubject), handlers.Subject.ListByStudent)
		subjects.GET("/teacher/:teacherId", can(ability.Read, ability.SubjectSubject), handlers.Subject.ListByTeacher)
		subjects.GET("/group/:groupId", can(ability.Read, ability.SubjectSubject), handlers.Subject.ListByGroup)
		subjects.POST("", can(ability.Create, ability.SubjectSubject), handlers.Subject.Create)
		subjects.PUT("/:subjectId", can(ability.Update, ability.SubjectSubject), handlers.Subject.Update)
		subjects.DELETE("/:subjectId", can(ability.Delete, ability.SubjectSubject), handlers.Subject.Delete)
		subjects.POST("/teacher", can(ability.AddTo, ability.SubjectSubject), handlers.Subject.AssignTeacher)
		subjects.DELETE("/teacher", can(ability.RemoveFrom, ability.SubjectSubject), handlers.Subject.UnassignTeacher)
	}

	// ─── 7. Timetables ─────────────────────────────────────────────────
	timetables := gated.Group("/timetables")
	{
		timetables.GET("/group/:groupId", can(ability.Read, ability.SubjectTimetable), handlers.Timetable.ForGroup)
		timetables.GET("/teacher/:teacherId", can(ability.Read, ability.SubjectTimetable), handlers.Timetable.ForTeacher)
		timetables.POST("", can(ability.Create, ability.SubjectTimetable), handlers.Timetable.Create)
		timetables.PUT("/substitute/:recordId/:teacherId", can(ability.Update, ability.SubjectTimetable), handlers.Timetable.Substitute)
		timetables.PUT("/cancel/:recordId", can(ability.Update, ability.SubjectTimetable), handlers.Timetable.Cancel)
		timetables.PUT("/restore/:recordId", can(ability.Update, ability.SubjectTimetable), handlers.Timetable.Restore)
		timetables.PUT("/:recordId", can(ability.Update, ability.SubjectTimetable), handlers.Timetable.Update)
		timetables.DELETE("/:recordId", can(ability.Delete, ability.SubjectTimetable), handlers.Timetable.Delete)
	}

	// ─── 8. Messages ───────────────────────────────────────────────────
	// Private messages are open to every signed-in user; the service checks
	// authorship and receipt.
	messages := gated.Group("/messages")
	{
		messages.GET("/headers/received/:userId", handlers.Message.Inbox)
		messages.GET("/headers/received/:userId/:offset", handlers.Message.Inbox)
		messages.GET("/headers/sent/:userId", handlers.Message.Outbox)
		messages.GET("/headers/sent/:userId/:offset", handlers.Message.Outbox)
		messages.GET("/content/received/:messageId", handlers.Message.ReadReceived)
		messages.GET("/content/sent/:messageId", handlers.Message.ReadSent)
		messages.GET("/search", handlers.Message.Search)
		messages.POST("", handlers.Message.Send)
		messages.DELETE("/:messageId", handlers.Message.Delete)
	}

	return router
}
