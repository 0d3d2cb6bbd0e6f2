package router

import (
	"medishift_backend/internal/handlers"

	"github.com/gin-gonic/gin"
)

// SetupDepartmentRoutes sets up the department routes.
func SetupDepartmentRoutes(authenticatedGroup *gin.RouterGroup, deptHandler *handlers.DepartmentHandler) {
	deptRoutes := authenticatedGroup.Group("/departments")
	{
		deptRoutes.POST("", deptHandler.CreateDepartment)
		deptRoutes.GET("", deptHandler.GetDepartments)
		deptRoutes.GET("/:id", deptHandler.GetDepartmentByID)
		deptRoutes.PUT("/:id", deptHandler.UpdateDepartment)
		deptRoutes.DELETE("/:id", deptHandler.DeleteDepartment)
	}
}

// SetupRoleRoutes sets up the role routes.
func SetupRoleRoutes(authenticatedGroup *gin.RouterGroup, roleHandler *handlers.RoleHandler) {
	roleRoutes := authenticatedGroup.Group("/roles")
	{
		roleRoutes.POST("", roleHandler.CreateRole)
		roleRoutes.GET("", roleHandler.GetRoles)
		roleRoutes.GET("/:id", roleHandler.GetRoleByID)
		roleRoutes.PUT("/:id", roleHandler.UpdateRole)
		roleRoutes.DELETE("/:id", roleHandler.DeleteRole)
	}
}

// SetupStaffRoutes sets up the staff member routes.
func SetupStaffRoutes(authenticatedGroup *gin.RouterGroup, staffHandler *handlers.StaffHandler) {
	staffRoutes := authenticatedGroup.Group("/staff")
	{
		staffRoutes.POST("", staffHandler.CreateStaffMember)
		staffRoutes.GET("", staffHandler.GetStaffMembers)
		staffRoutes.GET("/:id", staffHandler.GetStaffMemberByID)
		staffRoutes.PUT("/:id", staffHandler.UpdateStaffMember)
		staffRoutes.DELETE("/:id", staffHandler.DeleteStaffMember)
	}
}

// SetupShiftRoutes sets up the shift definition routes.
func SetupShiftRoutes(authenticatedGroup *gin.RouterGroup, shiftHandler *handlers.ShiftHandler) {
	shiftRoutes := authenticatedGroup.Group("/shifts")
	{
		shiftRoutes.POST("", shiftHandler.CreateShift)
		shiftRoutes.GET("", shiftHandler.GetShifts)
		shiftRoutes.GET("/:id", shiftHandler.GetShiftByID)
		shiftRoutes.PUT("/:id", shiftHandler.UpdateShift)
		shiftRoutes.DELETE("/:id", shiftHandler.DeleteShift)
	}
}

// SetupAssignmentRoutes sets up the shift assignment routes, including the
// day-by-day schedule view.
func SetupAssignmentRoutes(authenticatedGroup *gin.RouterGroup, assignmentHandler *handlers.AssignmentHandler) {
	assignmentRoutes := authenticatedGroup.Group("/assignments")
	{
		assignmentRoutes.POST("", assignmentHandler.CreateAssignment)
		assignmentRoutes.GET("", assignmentHandler.GetAssignments)
		assignmentRoutes.GET("/schedule", assignmentHandler.GetSchedule)
		assignmentRoutes.GET("/:id", assignmentHandler.GetAssignmentByID)
		assignmentRoutes.PUT("/:id", assignmentHandler.UpdateAssignment)
		assignmentRoutes.DELETE("/:id", assignmentHandler.DeleteAssignment)
	}
}

// SetupLeaveRoutes sets up the leave request routes and workflow actions.
func SetupLeaveRoutes(authenticatedGroup *gin.RouterGroup, leaveHandler *handlers.LeaveHandler) {
	leaveRoutes := authenticatedGroup.Group("/leave-requests")
	{
		leaveRoutes.POST("", leaveHandler.CreateLeaveRequest)
		leaveRoutes.GET("", leaveHandler.GetLeaveRequests)
		leaveRoutes.GET("/:id", leaveHandler.GetLeaveRequestByID)
		leaveRoutes.PUT("/:id", leaveHandler.UpdateLeaveRequest)
		leaveRoutes.POST("/:id/approve", leaveHandler.ApproveLeaveRequest)
		leaveRoutes.POST("/:id/reject", leaveHandler.RejectLeaveRequest)
		leaveRoutes.POST("/:id/cancel", leaveHandler.CancelLeaveRequest)
		leaveRoutes.DELETE("/:id", leaveHandler.DeleteLeaveRequest)
	}
}

// SetupAttendanceRoutes sets up the attendance routes and the check-in and
// check-out actions.
func SetupAttendanceRoutes(authenticatedGroup *gin.RouterGroup, attendanceHandler *handlers.AttendanceHandler) {
	attendanceRoutes := authenticatedGroup.Group("/attendance")
	{
		attendanceRoutes.POST("", attendanceHandler.CreateAttendance)
		attendanceRoutes.GET("", attendanceHandler.GetAttendanceRecords)
		attendanceRoutes.GET("/:id", attendanceHandler.GetAttendanceByID)
		attendanceRoutes.PUT("/:id", attendanceHandler.UpdateAttendance)
		attendanceRoutes.POST("/check-in", attendanceHandler.CheckIn)
		attendanceRoutes.POST("/check-out", attendanceHandler.CheckOut)
		attendanceRoutes.DELETE("/:id", attendanceHandler.DeleteAttendance)
	}
}

// SetupSwapRoutes sets up the shift swap request routes and workflow actions.
func SetupSwapRoutes(authenticatedGroup *gin.RouterGroup, swapHandler *handlers.SwapHandler) {
	swapRoutes := authenticatedGroup.Group("/swap-requests")
	{
		swapRoutes.POST("", swapHandler.CreateSwapRequest)
		swapRoutes.GET("", swapHandler.GetSwapRequests)
		swapRoutes.GET("/:id", swapHandler.GetSwapRequestByID)
		swapRoutes.POST("/:id/approve", swapHandler.ApproveSwapRequest)
		swapRoutes.POST("/:id/reject", swapHandler.RejectSwapRequest)
		swapRoutes.DELETE("/:id", swapHandler.DeleteSwapRequest)
	}
}
