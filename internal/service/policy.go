package service

import "github.com/noah-isme/activity-points-api/internal/models"

// Action names an operation guarded by Authorize.
type Action string

const (
	ActionSubmitCertificate  Action = "certificate:submit"
	ActionDeleteCertificate  Action = "certificate:delete"
	ActionViewCertificate    Action = "certificate:view"
	ActionApproveCertificate Action = "certificate:approve"
	ActionRejectCertificate  Action = "certificate:reject"
	ActionToggleUploadWindow Action = "upload-window:toggle"
	ActionStartAcademicYear  Action = "academic-year:start"
	ActionClearStudent       Action = "student:clear"
	ActionViewProgress       Action = "student:progress"
	ActionListStudents       Action = "student:list"
	ActionRequestReport      Action = "report:request"
)

// PolicyContext carries the facts a decision depends on.
type PolicyContext struct {
	ActorID              string
	ActorDepartmentID    string
	OwnerUserID          string
	ResourceDepartmentID string
	Points               int
	PointsOverride       bool
	FacultyMaxPoints     int
}

func (p PolicyContext) sameDepartment() bool {
	return p.ActorDepartmentID != "" && p.ActorDepartmentID == p.ResourceDepartmentID
}

func (p PolicyContext) owner() bool {
	return p.ActorID != "" && p.ActorID == p.OwnerUserID
}

// Authorize is the single place role based rights are decided.
func Authorize(role models.UserRole, action Action, pc PolicyContext) bool {
	if role == models.RoleAdmin || role == models.RoleSuperAdmin {
		return action != ActionSubmitCertificate && action != ActionDeleteCertificate
	}

	switch action {
	case ActionSubmitCertificate, ActionDeleteCertificate:
		return role == models.RoleStudent && pc.owner()
	case ActionViewCertificate, ActionViewProgress:
		if role == models.RoleStudent {
			return pc.owner()
		}
		return (role == models.RoleFaculty || role == models.RoleHOD) && pc.sameDepartment()
	case ActionApproveCertificate:
		switch role {
		case models.RoleHOD:
			return pc.sameDepartment()
		case models.RoleFaculty:
			return pc.sameDepartment() && !pc.PointsOverride && pc.Points <= pc.FacultyMaxPoints
		}
		return false
	case ActionRejectCertificate, ActionRequestReport, ActionListStudents:
		return (role == models.RoleFaculty || role == models.RoleHOD) && pc.sameDepartment()
	case ActionToggleUploadWindow:
		return role == models.RoleHOD && pc.sameDepartment()
	}
	return false
}
