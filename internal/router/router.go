package router

import (
	"database/sql"

	"medishift_backend/internal/handlers"
	"medishift_backend/internal/middleware"
	"medishift_backend/internal/repositories"
	"medishift_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// Setup initializes the routing for the application.
func Setup(engine *gin.Engine, db *sql.DB) {
	// Repositories
	authRepo := repositories.NewAuthRepository(db)
	deptRepo := repositories.NewDepartmentRepository(db)
	roleRepo := repositories.NewRoleRepository(db)
	staffRepo := repositories.NewStaffRepository(db)
	shiftRepo := repositories.NewShiftRepository(db)
	assignmentRepo := repositories.NewAssignmentRepository(db)
	leaveRepo := repositories.NewLeaveRepository(db)
	attendanceRepo := repositories.NewAttendanceRepository(db)
	swapRepo := repositories.NewSwapRepository(db)

	// Services
	authService := services.NewAuthService(authRepo)
	deptService := services.NewDepartmentService(deptRepo, db)
	roleService := services.NewRoleService(roleRepo, db)
	staffService := services.NewStaffService(staffRepo, authRepo, db)
	shiftService := services.NewShiftService(shiftRepo, db)
	assignmentService := services.NewAssignmentService(assignmentRepo, staffRepo, shiftRepo, db)
	leaveService := services.NewLeaveService(leaveRepo, assignmentRepo, staffRepo, db)
	attendanceService := services.NewAttendanceService(attendanceRepo, assignmentRepo, db)
	swapService := services.NewSwapService(swapRepo, assignmentRepo, staffRepo, db)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	deptHandler := handlers.NewDepartmentHandler(deptService)
	roleHandler := handlers.NewRoleHandler(roleService)
	staffHandler := handlers.NewStaffHandler(staffService)
	shiftHandler := handlers.NewShiftHandler(shiftService)
	assignmentHandler := handlers.NewAssignmentHandler(assignmentService)
	leaveHandler := handlers.NewLeaveHandler(leaveService)
	attendanceHandler := handlers.NewAttendanceHandler(attendanceService)
	swapHandler := handlers.NewSwapHandler(swapService)

	apiV1 := engine.Group("/api/v1")

	// Login is the only public endpoint.
	apiV1.POST("/auth/login", authHandler.LoginUser)

	authenticated := apiV1.Group("")
	authenticated.Use(middleware.AuthMiddleware())
	{
		authenticated.POST("/auth/logout", authHandler.LogoutUser)
		authenticated.GET("/auth/me", authHandler.GetCurrentUser)

		SetupDepartmentRoutes(authenticated, deptHandler)
		SetupRoleRoutes(authenticated, roleHandler)
		SetupStaffRoutes(authenticated, staffHandler)
		SetupShiftRoutes(authenticated, shiftHandler)
		SetupAssignmentRoutes(authenticated, assignmentHandler)
		SetupLeaveRoutes(authenticated, leaveHandler)
		SetupAttendanceRoutes(authenticated, attendanceHandler)
		SetupSwapRoutes(authenticated, swapHandler)
	}
}
