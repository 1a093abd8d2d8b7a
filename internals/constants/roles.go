package constants

import (
	"fmt"
	"strings"
)

// Role adalah himpunan tertutup; nilai lain ditolak di setiap boundary.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleSchool  Role = "school"
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleSchool, RoleTeacher, RoleStudent:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Template pesan error role
const (
	ErrOnlyAdminsCanAccess   = "❌ Only admin may access %s."
	ErrOnlySchoolsCanAccess  = "❌ Only school or admin may access %s."
	ErrOnlyTeachersCanAccess = "❌ Only teachers may access %s."
	ErrOnlyStudentsCanAccess = "❌ Only students may access %s."
	ErrOnlyStaffCanAccess    = "❌ Only school staff may access %s."
)

func RoleErrorAdmin(feature string) string   { return fmt.Sprintf(ErrOnlyAdminsCanAccess, feature) }
func RoleErrorSchool(feature string) string  { return fmt.Sprintf(ErrOnlySchoolsCanAccess, feature) }
func RoleErrorTeacher(feature string) string { return fmt.Sprintf(ErrOnlyTeachersCanAccess, feature) }
func RoleErrorStudent(feature string) string { return fmt.Sprintf(ErrOnlyStudentsCanAccess, feature) }
func RoleErrorStaff(feature string) string   { return fmt.Sprintf(ErrOnlyStaffCanAccess, feature) }

// ==========================
// ✅ Grouped Role Slices
// ==========================
var (
	AllRoles        = []Role{RoleAdmin, RoleSchool, RoleTeacher, RoleStudent}
	AdminOnly       = []Role{RoleAdmin}
	SchoolAndAdmin  = []Role{RoleSchool, RoleAdmin}
	StaffRoles      = []Role{RoleAdmin, RoleSchool, RoleTeacher}
	TeacherOnly     = []Role{RoleTeacher}
	TeacherAndAdmin = []Role{RoleTeacher, RoleAdmin}
	StudentOnly     = []Role{RoleStudent}
)
