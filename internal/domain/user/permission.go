package user

type Permission string

const (
	// Time records
	PermissionTimeRecordViewOwn Permission = "time_record.view_own"
	PermissionTimeRecordCreate  Permission = "time_record.create"
	PermissionTimeRecordViewAll Permission = "time_record.view_all"
	PermissionTimeRecordManual  Permission = "time_record.manual"

	// Periods
	PermissionPeriodViewOwn Permission = "period.view_own"
	PermissionPeriodViewAll Permission = "period.view_all"

	// Requests (attestation, adjustment, justification)
	PermissionRequestCreate   Permission = "request.create"
	PermissionRequestViewOwn  Permission = "request.view_own"
	PermissionRequestDecide   Permission = "request.decide"
	PermissionRequestOnBehalf Permission = "request.on_behalf"

	// Configuration
	PermissionSectorView     Permission = "sector.view"
	PermissionSectorManage   Permission = "sector.manage"
	PermissionScheduleView   Permission = "schedule.view"
	PermissionScheduleManage Permission = "schedule.manage"
	PermissionHolidayView    Permission = "holiday.view"
	PermissionHolidayManage  Permission = "holiday.manage"

	PermissionDashboardView Permission = "dashboard.view"
)

var servidorPermissions = []Permission{
	PermissionTimeRecordViewOwn,
	PermissionTimeRecordCreate,
	PermissionPeriodViewOwn,
	PermissionRequestCreate,
	PermissionRequestViewOwn,
	PermissionSectorView,
	PermissionScheduleView,
	PermissionHolidayView,
}

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleServidor: servidorPermissions,
	RoleChefia: append(append([]Permission{}, servidorPermissions...),
		PermissionTimeRecordViewAll,
		PermissionPeriodViewAll,
		PermissionRequestDecide,
		PermissionDashboardView,
	),
	RoleRH: append(append([]Permission{}, servidorPermissions...),
		PermissionTimeRecordViewAll,
		PermissionTimeRecordManual,
		PermissionPeriodViewAll,
		PermissionRequestDecide,
		PermissionRequestOnBehalf,
		PermissionScheduleManage,
		PermissionHolidayManage,
		PermissionDashboardView,
	),
	RoleAdmin: append(append([]Permission{}, servidorPermissions...),
		PermissionTimeRecordViewAll,
		PermissionTimeRecordManual,
		PermissionPeriodViewAll,
		PermissionRequestDecide,
		PermissionRequestOnBehalf,
		PermissionSectorManage,
		PermissionScheduleManage,
		PermissionHolidayManage,
		PermissionDashboardView,
	),
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}

	return false
}
