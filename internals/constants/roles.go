package constants

const (
	RoleAdmin   = "admin"
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

// Pesan 403 dari middleware role
const (
	ErrOnlyAdmins          = "Hanya admin sekolah yang diizinkan"
	ErrOnlyTeachersOrAdmin = "Hanya guru atau admin yang diizinkan"
)

var AllRoles = []string{RoleAdmin, RoleTeacher, RoleStudent}

func IsValidRole(role string) bool {
	for _, r := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}
