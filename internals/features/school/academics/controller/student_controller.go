// file: internals/features/school/academics/controller/student_controller.go
package controller

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"sekolahku_backend/internals/features/school/academics/dto"
	"sekolahku_backend/internals/features/school/academics/model"
	authSvc "sekolahku_backend/internals/features/users/auth/service"
	helper "sekolahku_backend/internals/helpers"
)

type StudentController struct {
	DB       *gorm.DB
	Validate *validator.Validate
}

func NewStudentController(db *gorm.DB) *StudentController {
	return &StudentController{DB: db, Validate: helper.NewValidator()}
}

/*
POST /academics/students

- code unik global (dipakai login siswa)
- rollNum unik per kelas
- jika classId diisi: siswa langsung terdaftar di semua mapel kelas
*/
func (ctl *StudentController) Create(c *fiber.Ctx) error {
	schoolID, err := schoolOf(c)
	if err != nil {
		return err
	}
	var req dto.CreateStudentRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	req.Normalize()
	if err := ctl.Validate.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}
	if msg := req.RollNumError(); msg != "" {
		return helper.JsonValidationError(c, map[string][]string{"rollNum": {msg}})
	}
	classID, err := parseOptionalID(req.ClassID, "classId")
	if err != nil {
		return err
	}

	hash, err := authSvc.HashPassword(req.Password)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Password hashing failed")
	}
	m := req.ToModel(schoolID, classID, hash)

	err = ctl.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		if classID == nil {
			return tx.Create(&m).Error
		}

		// kunci baris kelas supaya cek nomor absen tidak balapan
		var class model.ClassModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("class_id = ? AND class_school_id = ?", *classID, schoolID).
			First(&class).Error; err != nil {
			return err
		}
		var taken int64
		if err := tx.Model(&model.StudentModel{}).
			Where("student_class_id = ? AND student_roll_num = ?", *classID, m.StudentRollNum).
			Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			return fiber.NewError(fiber.StatusConflict, "Nomor absen sudah dipakai di kelas ini")
		}
		if err := tx.Create(&m).Error; err != nil {
			return err
		}

		var subjects []model.SubjectModel
		if err := tx.Where("subject_class_id = ?", *classID).Find(&subjects).Error; err != nil {
			return err
		}
		for _, s := range subjects {
			row := model.StudentSubjectModel{
				StudentSubjectSchoolID:  schoolID,
				StudentSubjectStudentID: m.StudentID,
				StudentSubjectSubjectID: s.SubjectID,
				StudentSubjectClassID:   *classID,
			}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return dbError(c, err, "kelas", "Kode siswa sudah terdaftar")
	}
	return helper.JsonCreated(c, "Siswa berhasil ditambahkan", m)
}

// GET /academics/students?classId&q&unassigned&page&limit
func (ctl *StudentController) List(c *fiber.Ctx) error {
	schoolID, err := schoolOf(c)
	if err != nil {
		return err
	}
	p := helper.ParseFiber(c, "code", "asc", helper.DefaultOpts)
	sortCol := map[string]string{
		"code":    "student_code",
		"name":    "student_name",
		"rollNum": "student_roll_num",
	}[p.SafeSortKey(map[string]bool{"code": true, "name": true, "rollNum": true}, "code")]
	dir := "ASC"
	if p.Desc() {
		dir = "DESC"
	}

	db := ctl.DB.WithContext(c.UserContext()).Model(&model.StudentModel{}).
		Where("student_school_id = ?", schoolID)
	if raw := strings.TrimSpace(c.Query("classId")); raw != "" {
		classID, err := uuid.Parse(raw)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "classId tidak valid")
		}
		db = db.Where("student_class_id = ?", classID)
	}
	if c.QueryBool("unassigned") {
		db = db.Where("student_class_id IS NULL")
	}
	if q := strings.TrimSpace(c.Query("q")); q != "" {
		s := "%" + strings.ToLower(q) + "%"
		db = db.Where("LOWER(student_name) LIKE ? OR LOWER(student_code) LIKE ?", s, s)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return dbError(c, err, "siswa", "")
	}
	rows := make([]model.StudentModel, 0)
	if err := db.Order(sortCol + " " + dir).Limit(p.Limit()).Offset(p.Offset()).Find(&rows).Error; err != nil {
		return dbError(c, err, "siswa", "")
	}

	pg := helper.BuildPagination(total, p)
	return helper.JsonList(c, "ok", rows, &pg)
}

// GET /academics/classes/:classId/students — urut nomor absen
func (ctl *StudentController) ListByClass(c *fiber.Ctx) error {
	schoolID, err := schoolOf(c)
	if err != nil {
		return err
	}
	classID, err := parseID(c.Params("classId"), "classId")
	if err != nil {
		return err
	}

	rows := make([]model.StudentModel, 0)
	if err := ctl.DB.WithContext(c.UserContext()).
		Where("student_school_id = ? AND student_class_id = ?", schoolID, classID).
		Order("student_roll_num ASC, student_name ASC").
		Find(&rows).Error; err != nil {
		return dbError(c, err, "siswa", "")
	}
	return helper.JsonOK(c, "ok", rows)
}
