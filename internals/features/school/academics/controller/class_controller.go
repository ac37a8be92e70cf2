// file: internals/features/school/academics/controller/class_controller.go
package controller

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"sekolahku_backend/internals/features/school/academics/dto"
	"sekolahku_backend/internals/features/school/academics/model"
	helper "sekolahku_backend/internals/helpers"
)

type ClassController struct {
	DB       *gorm.DB
	Validate *validator.Validate
}

func NewClassController(db *gorm.DB) *ClassController {
	return &ClassController{DB: db, Validate: helper.NewValidator()}
}

const classSlugMax = 140

// POST /academics/classes
func (ctl *ClassController) Create(c *fiber.Ctx) error {
	schoolID, err := schoolOf(c)
	if err != nil {
		return err
	}
	var req dto.CreateClassRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload tidak valid")
	}
	req.Normalize()
	if err := ctl.Validate.Struct(&req); err != nil {
		return helper.ValidationError(c, err)
	}

	ctx := c.UserContext()
	slug, err := helper.EnsureUniqueSlugCI(ctx, ctl.DB, "classes", "class_slug",
		helper.Slugify(req.Name, classSlugMax),
		func(q *gorm.DB) *gorm.DB { return q.Where("class_school_id = ?", schoolID) },
		classSlugMax,
	)
	if err != nil {
		return dbError(c, err, "kelas", "")
	}

	m := model.ClassModel{ClassID: uuid.New(), ClassSchoolID: schoolID, ClassName: req.Name, ClassSlug: slug}
	if err := ctl.DB.WithContext(ctx).Create(&m).Error; err != nil {
		return dbError(c, err, "kelas", "Slug kelas sudah dipakai")
	}
	return helper.JsonCreated(c, "Kelas berhasil dibuat", dto.ClassResponse{ClassModel: m})
}

func (ctl *ClassController) withCounts(db *gorm.DB) *gorm.DB {
	return db.Model(&model.ClassModel{}).
		Select("classes.*, COUNT(students.student_id) AS student_count").
		Joins("LEFT JOIN students ON students.student_class_id = classes.class_id").
		Group("classes.class_id")
}

// GET /academics/classes?page&limit&sortBy=name|createdAt&sortOrder
func (ctl *ClassController) List(c *fiber.Ctx) error {
	schoolID, err := schoolOf(c)
	if err != nil {
		return err
	}
	p := helper.ParseFiber(c, "name", "asc", helper.DefaultOpts)
	orderCol := map[string]string{
		"name":      "classes.class_name",
		"createdAt": "classes.class_created_at",
	}[p.SafeSortKey(map[string]bool{"name": true, "createdAt": true}, "name")]
	orderDir := "ASC"
	if p.Desc() {
		orderDir = "DESC"
	}

	db := ctl.DB.WithContext(c.UserContext())
	var total int64
	if err := db.Model(&model.ClassModel{}).Where("class_school_id = ?", schoolID).Count(&total).Error; err != nil {
		return dbError(c, err, "kelas", "")
	}

	rows := make([]dto.ClassResponse, 0)
	if err := ctl.withCounts(db).
		Where("classes.class_school_id = ?", schoolID).
		Order(orderCol + " " + orderDir).
		Limit(p.Limit()).Offset(p.Offset()).
		Scan(&rows).Error; err != nil {
		return dbError(c, err, "kelas", "")
	}

	pg := helper.BuildPagination(total, p)
	return helper.JsonList(c, "ok", rows, &pg)
}

// GET /academics/classes/:id
func (ctl *ClassController) Get(c *fiber.Ctx) error {
	schoolID, err := schoolOf(c)
	if err != nil {
		return err
	}
	id, err := parseID(c.Params("id"), "id")
	if err != nil {
		return err
	}

	var rows []dto.ClassResponse
	if err := ctl.withCounts(ctl.DB.WithContext(c.UserContext())).
		Where("classes.class_id = ? AND classes.class_school_id = ?", id, schoolID).
		Scan(&rows).Error; err != nil {
		return dbError(c, err, "kelas", "")
	}
	if len(rows) == 0 {
		return helper.JsonError(c, fiber.StatusNotFound, "kelas tidak ditemukan")
	}
	return helper.JsonOK(c, "ok", rows[0])
}
