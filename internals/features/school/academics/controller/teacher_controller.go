// file: internals/features/school/academics/controller/teacher_controller.go
package controller

import (
	"errors"

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

type TeacherController struct {
	DB       *gorm.DB
	Validate *validator.Validate
}

func NewTeacherController(db *gorm.DB) *TeacherController {
	return &TeacherController{DB: db, Validate: helper.NewValidator()}
}

// POST /academics/teachers
func (ctl *TeacherController) Create(c *fiber.Ctx) error {
	schoolID, err := schoolOf(c)
	if err != nil {
		return err
	}
	var req dto.CreateTeacherRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	req.Normalize()
	if err := ctl.Validate.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}

	hash, err := authSvc.HashPassword(req.Password)
	if err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Password hashing failed")
	}
	m := model.TeacherModel{
		TeacherID:           uuid.New(),
		TeacherSchoolID:     schoolID,
		TeacherName:         req.Name,
		TeacherEmail:        req.Email,
		TeacherPasswordHash: hash,
	}
	if err := ctl.DB.WithContext(c.UserContext()).Create(&m).Error; err != nil {
		return dbError(c, err, "guru", "Email guru sudah terdaftar")
	}
	return helper.JsonCreated(c, "Guru berhasil ditambahkan", dto.TeacherResponse{TeacherModel: m, Assignments: []model.TeacherAssignmentModel{}})
}

// GET /academics/teachers — guru + daftar assignment-nya
func (ctl *TeacherController) List(c *fiber.Ctx) error {
	schoolID, err := schoolOf(c)
	if err != nil {
		return err
	}
	db := ctl.DB.WithContext(c.UserContext())

	var teachers []model.TeacherModel
	if err := db.Where("teacher_school_id = ?", schoolID).Order("teacher_name ASC").Find(&teachers).Error; err != nil {
		return dbError(c, err, "guru", "")
	}
	var asg []model.TeacherAssignmentModel
	if err := db.Where("teacher_assignment_school_id = ?", schoolID).Find(&asg).Error; err != nil {
		return dbError(c, err, "assignment", "")
	}
	byTeacher := make(map[uuid.UUID][]model.TeacherAssignmentModel, len(teachers))
	for _, a := range asg {
		byTeacher[a.TeacherAssignmentTeacherID] = append(byTeacher[a.TeacherAssignmentTeacherID], a)
	}

	out := make([]dto.TeacherResponse, 0, len(teachers))
	for _, t := range teachers {
		rows := byTeacher[t.TeacherID]
		if rows == nil {
			rows = []model.TeacherAssignmentModel{}
		}
		out = append(out, dto.TeacherResponse{TeacherModel: t, Assignments: rows})
	}
	return helper.JsonOK(c, "ok", out)
}

// loadPair: guru & mapel (milik kelas) harus ada di sekolah yang sama.
func loadPair(tx *gorm.DB, schoolID, teacherID, classID, subjectID uuid.UUID) (*model.SubjectModel, error) {
	var t model.TeacherModel
	if err := tx.Where("teacher_id = ? AND teacher_school_id = ?", teacherID, schoolID).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "guru tidak ditemukan")
		}
		return nil, err
	}
	var s model.SubjectModel
	if err := tx.Where("subject_id = ? AND subject_school_id = ? AND subject_class_id = ?", subjectID, schoolID, classID).
		First(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fiber.NewError(fiber.StatusNotFound, "mapel tidak ditemukan di kelas ini")
		}
		return nil, err
	}
	return &s, nil
}

// POST /academics/teachers/:id/assignments  body: {classId, subjectId}
func (ctl *TeacherController) Assign(c *fiber.Ctx) error {
	schoolID, err := schoolOf(c)
	if err != nil {
		return err
	}
	teacherID, err := parseID(c.Params("id"), "id")
	if err != nil {
		return err
	}
	var req dto.AssignTeacherRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	if err := ctl.Validate.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}
	classID, _ := uuid.Parse(req.ClassID)
	subjectID, _ := uuid.Parse(req.SubjectID)

	created := false
	asg := model.TeacherAssignmentModel{
		TeacherAssignmentSchoolID:  schoolID,
		TeacherAssignmentTeacherID: teacherID,
		TeacherAssignmentClassID:   classID,
		TeacherAssignmentSubjectID: subjectID,
	}
	err = ctl.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		subj, err := loadPair(tx, schoolID, teacherID, classID, subjectID)
		if err != nil {
			return err
		}
		res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&asg)
		if res.Error != nil {
			return res.Error
		}
		created = res.RowsAffected > 0
		// mapel tanpa guru pengampu → guru ini jadi pengampunya
		if subj.SubjectTeacherID == nil {
			return tx.Model(&model.SubjectModel{}).
				Where("subject_id = ?", subjectID).
				Update("subject_teacher_id", teacherID).Error
		}
		return nil
	})
	if err != nil {
		return dbError(c, err, "assignment", "Assignment sudah ada")
	}
	if !created {
		return helper.JsonOK(c, "Assignment sudah ada", fiber.Map{"teacherId": teacherID, "classId": classID, "subjectId": subjectID})
	}
	return helper.JsonCreated(c, "Guru berhasil di-assign", asg)
}

// DELETE /academics/teachers/:id/assignments?classId&subjectId
func (ctl *TeacherController) Unassign(c *fiber.Ctx) error {
	schoolID, err := schoolOf(c)
	if err != nil {
		return err
	}
	teacherID, err := parseID(c.Params("id"), "id")
	if err != nil {
		return err
	}
	classID, err := parseID(c.Query("classId"), "classId")
	if err != nil {
		return err
	}
	subjectID, err := parseID(c.Query("subjectId"), "subjectId")
	if err != nil {
		return err
	}

	err = ctl.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		res := tx.Where(`teacher_assignment_school_id = ? AND teacher_assignment_teacher_id = ?
			AND teacher_assignment_class_id = ? AND teacher_assignment_subject_id = ?`,
			schoolID, teacherID, classID, subjectID).
			Delete(&model.TeacherAssignmentModel{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		// lepas pengampu jika guru ini pengampunya
		return tx.Model(&model.SubjectModel{}).
			Where("subject_id = ? AND subject_teacher_id = ?", subjectID, teacherID).
			Update("subject_teacher_id", nil).Error
	})
	if err != nil {
		return dbError(c, err, "assignment", "")
	}
	return helper.JsonDeleted(c, "Assignment dihapus", fiber.Map{"teacherId": teacherID, "classId": classID, "subjectId": subjectID})
}
