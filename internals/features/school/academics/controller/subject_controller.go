// file: internals/features/school/academics/controller/subject_controller.go
package controller

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"sekolahku_backend/internals/features/school/academics/dto"
	"sekolahku_backend/internals/features/school/academics/model"
	helper "sekolahku_backend/internals/helpers"
)

type SubjectController struct {
	DB       *gorm.DB
	Validate *validator.Validate
}

func NewSubjectController(db *gorm.DB) *SubjectController {
	return &SubjectController{DB: db, Validate: helper.NewValidator()}
}

const subjectSlugMax = 140

/*
POST /academics/subjects

Satu transaksi: subject + TeacherAssignment (jika teacherId diisi).
Kode mapel bentrok di kelas yang sama → 409, tidak ada yang tersimpan.
*/
func (ctl *SubjectController) Create(c *fiber.Ctx) error {
	schoolID, err := schoolOf(c)
	if err != nil {
		return err
	}
	var req dto.CreateSubjectRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	req.Normalize()
	if err := ctl.Validate.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}
	classID, err := parseID(req.ClassID, "classId")
	if err != nil {
		return err
	}
	teacherID, err := parseOptionalID(req.TeacherID, "teacherId")
	if err != nil {
		return err
	}

	m := req.ToModel(schoolID, classID, teacherID)
	err = ctl.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		var class model.ClassModel
		if err := tx.Where("class_id = ? AND class_school_id = ?", classID, schoolID).First(&class).Error; err != nil {
			return err
		}
		if teacherID != nil {
			var t model.TeacherModel
			if err := tx.Where("teacher_id = ? AND teacher_school_id = ?", *teacherID, schoolID).First(&t).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fiber.NewError(fiber.StatusNotFound, "guru tidak ditemukan")
				}
				return err
			}
		}

		slug, err := helper.EnsureUniqueSlugCI(c.UserContext(), tx, "subjects", "subject_slug",
			helper.Slugify(req.Name, subjectSlugMax),
			func(q *gorm.DB) *gorm.DB { return q.Where("subject_class_id = ?", classID) },
			subjectSlugMax,
		)
		if err != nil {
			return err
		}
		m.SubjectSlug = slug
		if err := tx.Create(&m).Error; err != nil {
			return err
		}

		if teacherID != nil {
			asg := model.TeacherAssignmentModel{
				TeacherAssignmentSchoolID:  schoolID,
				TeacherAssignmentTeacherID: *teacherID,
				TeacherAssignmentClassID:   classID,
				TeacherAssignmentSubjectID: m.SubjectID,
			}
			if err := tx.Create(&asg).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return dbError(c, err, "kelas", "Kode mapel sudah dipakai di kelas ini")
	}
	return helper.JsonCreated(c, "Mapel berhasil dibuat", m)
}

// GET /academics/classes/:classId/subjects
func (ctl *SubjectController) ListByClass(c *fiber.Ctx) error {
	schoolID, err := schoolOf(c)
	if err != nil {
		return err
	}
	classID, err := parseID(c.Params("classId"), "classId")
	if err != nil {
		return err
	}

	rows := make([]model.SubjectModel, 0)
	if err := ctl.DB.WithContext(c.UserContext()).
		Where("subject_school_id = ? AND subject_class_id = ?", schoolID, classID).
		Order("subject_name ASC").
		Find(&rows).Error; err != nil {
		return dbError(c, err, "mapel", "")
	}
	return helper.JsonOK(c, "ok", rows)
}
