// file: internals/helpers/auth/principal.go
package helper

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"sekolahku_backend/internals/constants"
)

// Nama locals yang diisi middleware AuthJWT
const (
	LocPrincipal = "principal"
	LocRawToken  = "raw_token"
)

type PrincipalKind string

const (
	KindAdmin   PrincipalKind = constants.RoleAdmin
	KindTeacher PrincipalKind = constants.RoleTeacher
	KindStudent PrincipalKind = constants.RoleStudent
)

func (k PrincipalKind) Valid() bool { return constants.IsValidRole(string(k)) }

/*
Principal: satu tipe untuk tiga bentuk aktor.
  - Admin:   ID == SchoolID (admin adalah sekolah)
  - Teacher: ID guru, SchoolID sekolahnya
  - Student: ID siswa, SchoolID sekolahnya (read-only atas datanya sendiri)
*/
type Principal struct {
	Kind     PrincipalKind `json:"role"`
	ID       uuid.UUID     `json:"id"`
	SchoolID uuid.UUID     `json:"schoolId"`
	Name     string        `json:"name,omitempty"`
}

func Admin(schoolID uuid.UUID) Principal {
	return Principal{Kind: KindAdmin, ID: schoolID, SchoolID: schoolID}
}

func Teacher(id, schoolID uuid.UUID) Principal {
	return Principal{Kind: KindTeacher, ID: id, SchoolID: schoolID}
}

func Student(id, schoolID uuid.UUID) Principal {
	return Principal{Kind: KindStudent, ID: id, SchoolID: schoolID}
}

func (p Principal) IsAdmin() bool   { return p.Kind == KindAdmin }
func (p Principal) IsTeacher() bool { return p.Kind == KindTeacher }
func (p Principal) IsStudent() bool { return p.Kind == KindStudent }

// Role: nama model pelaku (dipakai kolom performedByModel/markedByRole).
func (p Principal) Role() string { return string(p.Kind) }

func (p Principal) Valid() bool {
	return p.Kind.Valid() && p.ID != uuid.Nil && p.SchoolID != uuid.Nil
}

var ErrNoPrincipal = errors.New("principal tidak ditemukan di context")

func SetPrincipal(c *fiber.Ctx, p Principal) {
	c.Locals(LocPrincipal, p)
}

// GetPrincipal: ambil principal yang sudah diverifikasi middleware.
func GetPrincipal(c *fiber.Ctx) (Principal, error) {
	p, ok := c.Locals(LocPrincipal).(Principal)
	if !ok || !p.Valid() {
		return Principal{}, ErrNoPrincipal
	}
	return p, nil
}
