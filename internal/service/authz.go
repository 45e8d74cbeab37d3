package service

import "github.com/college-icrs/icrs-api/internal/models"

// MaskedIdentity replaces student identity for faculty viewing hide-identity categories.
const MaskedIdentity = "Hidden for compliance"

func isOwner(caller models.Caller, g *models.Grievance) bool {
	return g != nil && caller.ID != "" && caller.ID == g.StudentID
}

// CanFileGrievance allows students to submit grievances.
func CanFileGrievance(caller models.Caller) bool {
	return caller.Role == models.RoleStudent
}

// CanViewGrievance allows the owning student and any staff member.
func CanViewGrievance(caller models.Caller, g *models.Grievance) bool {
	return caller.Role.IsStaff() || isOwner(caller, g)
}

// CanModifyGrievance allows the owning student and any staff member.
func CanModifyGrievance(caller models.Caller, g *models.Grievance) bool {
	return caller.Role.IsStaff() || isOwner(caller, g)
}

// CanDeleteGrievance allows the owning student and administrators.
func CanDeleteGrievance(caller models.Caller, g *models.Grievance) bool {
	return caller.Role == models.RoleAdmin || isOwner(caller, g)
}

// CanComment allows students on their own grievances and staff on any.
func CanComment(caller models.Caller, g *models.Grievance) bool {
	return caller.Role.IsStaff() || (caller.Role == models.RoleStudent && isOwner(caller, g))
}

// CanManageLifecycle allows staff to assign and transition grievances.
func CanManageLifecycle(caller models.Caller) bool {
	return caller.Role.IsStaff()
}

// CanViewReports allows staff to read statistics, listings and exports.
func CanViewReports(caller models.Caller) bool {
	return caller.Role.IsStaff()
}

// CanManageCategories allows administrators to edit the registry.
func CanManageCategories(caller models.Caller) bool {
	return caller.Role == models.RoleAdmin
}

// CanManageUsers allows administrators to browse accounts.
func CanManageUsers(caller models.Caller) bool {
	return caller.Role == models.RoleAdmin
}

// CanListStudentGrievances allows a student to list their own grievances and staff to list anyone's.
func CanListStudentGrievances(caller models.Caller, studentID string) bool {
	return caller.Role.IsStaff() || (caller.ID != "" && caller.ID == studentID)
}

// ShouldMaskIdentity reports whether the caller must not see who filed the grievance.
func ShouldMaskIdentity(caller models.Caller, g *models.Grievance) bool {
	return g != nil && g.HideIdentity && caller.Role == models.RoleFaculty
}

// MaskIdentity returns a copy with student identity replaced when the caller may not see it.
func MaskIdentity(caller models.Caller, g models.Grievance) models.Grievance {
	if !ShouldMaskIdentity(caller, &g) {
		return g
	}
	masked := MaskedIdentity
	g.StudentID = ""
	g.StudentName = &masked
	g.RegistrationNumber = &masked
	g.StudentEmail = nil
	return g
}

// MaskCommentAuthor hides the author of a comment written by the filing student when the
// caller may not see the student's identity.
func MaskCommentAuthor(caller models.Caller, g *models.Grievance, c models.Comment) models.Comment {
	if !ShouldMaskIdentity(caller, g) || c.AuthorID != g.StudentID {
		return c
	}
	masked := MaskedIdentity
	c.AuthorID = ""
	c.AuthorName = &masked
	return c
}
