package demo

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	attModel "sekolahku_backend/internals/features/attendance/model"
	acModel "sekolahku_backend/internals/features/school/academics/model"
	authSvc "sekolahku_backend/internals/features/users/auth/service"
	helper "sekolahku_backend/internals/helpers"
)

type SessionSeed struct {
	Type     string `json:"type" validate:"required,oneof=lecture lab tutorial practical seminar"`
	PerWeek  int    `json:"sessions_per_week" validate:"required,min=1,max=20"`
	Duration int    `json:"duration" validate:"omitempty,min=10,max=600"`
}

type SubjectSeed struct {
	Name         string        `json:"name" validate:"required"`
	Code         string        `json:"code" validate:"required"`
	TeacherEmail string        `json:"teacher_email" validate:"omitempty,email"`
	Sessions     []SessionSeed `json:"sessions" validate:"dive"`
}

type StudentSeed struct {
	Name     string `json:"name" validate:"required"`
	Code     string `json:"code" validate:"required,excludesall=/"`
	RollNum  int    `json:"roll_num" validate:"required,min=1"`
	Password string `json:"password" validate:"required,min=6"`
}

type ClassSeed struct {
	Name     string        `json:"name" validate:"required"`
	Subjects []SubjectSeed `json:"subjects" validate:"dive"`
	Students []StudentSeed `json:"students" validate:"dive"`
}

type TeacherSeed struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type DemoSeed struct {
	School struct {
		Name      string `json:"name" validate:"required"`
		AdminName string `json:"admin_name" validate:"required"`
		Email     string `json:"email" validate:"required,email"`
		Password  string `json:"password" validate:"required,min=8"`
	} `json:"school"`
	Teachers []TeacherSeed `json:"teachers" validate:"dive"`
	Classes  []ClassSeed   `json:"classes" validate:"min=1,dive"`
}

// LoadDemoSeed: baca + validasi; email guru di mapel harus terdaftar di teachers.
func LoadDemoSeed(filePath string) (*DemoSeed, error) {
	log.Println("📥 Membaca file:", filePath)
	file, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("gagal membaca file JSON: %w", err)
	}
	var seed DemoSeed
	if err := json.Unmarshal(file, &seed); err != nil {
		return nil, fmt.Errorf("gagal decode JSON: %w", err)
	}
	if err := helper.NewValidator().Struct(&seed); err != nil {
		return nil, fmt.Errorf("seed tidak valid: %w", err)
	}

	known := map[string]bool{}
	for _, t := range seed.Teachers {
		known[strings.ToLower(t.Email)] = true
	}
	codes := map[string]bool{}
	for _, c := range seed.Classes {
		for _, s := range c.Subjects {
			if s.TeacherEmail != "" && !known[strings.ToLower(s.TeacherEmail)] {
				return nil, fmt.Errorf("mapel %s: guru %s tidak ada di daftar teachers", s.Code, s.TeacherEmail)
			}
		}
		for _, st := range c.Students {
			code := strings.ToUpper(strings.TrimSpace(st.Code))
			if codes[code] {
				return nil, fmt.Errorf("kode siswa %s dipakai lebih dari sekali", code)
			}
			codes[code] = true
		}
	}
	return &seed, nil
}

// SeedDemoFromJSON: idempoten per email admin (sudah ada → lewati).
func SeedDemoFromJSON(db *gorm.DB, filePath string) error {
	seed, err := LoadDemoSeed(filePath)
	if err != nil {
		return err
	}

	email := strings.ToLower(strings.TrimSpace(seed.School.Email))
	var existing acModel.SchoolModel
	err = db.Where("school_admin_email = ?", email).First(&existing).Error
	if err == nil {
		log.Printf("ℹ️ Sekolah dengan admin %s sudah ada, lewati...", email)
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		hash, err := authSvc.HashPassword(seed.School.Password)
		if err != nil {
			return err
		}
		school := acModel.SchoolModel{
			SchoolID:           uuid.New(),
			SchoolName:         seed.School.Name,
			SchoolAdminName:    seed.School.AdminName,
			SchoolAdminEmail:   email,
			SchoolPasswordHash: hash,
		}
		if err := tx.Create(&school).Error; err != nil {
			return err
		}

		teachers := map[string]uuid.UUID{}
		for _, t := range seed.Teachers {
			hash, err := authSvc.HashPassword(t.Password)
			if err != nil {
				return err
			}
			m := acModel.TeacherModel{
				TeacherID:           uuid.New(),
				TeacherSchoolID:     school.SchoolID,
				TeacherName:         t.Name,
				TeacherEmail:        strings.ToLower(t.Email),
				TeacherPasswordHash: hash,
			}
			if err := tx.Create(&m).Error; err != nil {
				return fmt.Errorf("guru %s: %w", t.Email, err)
			}
			teachers[m.TeacherEmail] = m.TeacherID
		}

		for _, c := range seed.Classes {
			if err := seedClass(tx, school.SchoolID, c, teachers); err != nil {
				return fmt.Errorf("kelas %s: %w", c.Name, err)
			}
		}
		log.Printf("✅ Berhasil seed sekolah %s (%d kelas, %d guru)", school.SchoolName, len(seed.Classes), len(seed.Teachers))
		return nil
	})
}

func seedClass(tx *gorm.DB, schoolID uuid.UUID, c ClassSeed, teachers map[string]uuid.UUID) error {
	class := acModel.ClassModel{
		ClassID:       uuid.New(),
		ClassSchoolID: schoolID,
		ClassName:     c.Name,
		ClassSlug:     helper.Slugify(c.Name, 140),
	}
	if err := tx.Create(&class).Error; err != nil {
		return err
	}

	subjectIDs := make([]uuid.UUID, 0, len(c.Subjects))
	for _, s := range c.Subjects {
		subj := acModel.SubjectModel{
			SubjectID:       uuid.New(),
			SubjectSchoolID: schoolID,
			SubjectClassID:  class.ClassID,
			SubjectName:     s.Name,
			SubjectCode:     strings.ToUpper(s.Code),
			SubjectSlug:     helper.Slugify(s.Name, 140),
		}
		if id, ok := teachers[strings.ToLower(s.TeacherEmail)]; ok {
			subj.SubjectTeacherID = &id
		}
		if err := tx.Create(&subj).Error; err != nil {
			return err
		}
		subjectIDs = append(subjectIDs, subj.SubjectID)

		if subj.SubjectTeacherID != nil {
			asg := acModel.TeacherAssignmentModel{
				TeacherAssignmentSchoolID:  schoolID,
				TeacherAssignmentTeacherID: *subj.SubjectTeacherID,
				TeacherAssignmentClassID:   class.ClassID,
				TeacherAssignmentSubjectID: subj.SubjectID,
			}
			if err := tx.Create(&asg).Error; err != nil {
				return err
			}
		}
		for _, ss := range s.Sessions {
			dur := ss.Duration
			if dur == 0 {
				dur = 60
			}
			cfg := attModel.SessionConfigurationModel{
				SessionConfigurationSchoolID:        schoolID,
				SessionConfigurationClassID:         class.ClassID,
				SessionConfigurationSubjectID:       subj.SubjectID,
				SessionConfigurationType:            attModel.SessionType(ss.Type),
				SessionConfigurationSessionsPerWeek: ss.PerWeek,
				SessionConfigurationDuration:        dur,
				SessionConfigurationIsActive:        true,
			}
			if err := tx.Create(&cfg).Error; err != nil {
				return err
			}
		}
	}

	for _, st := range c.Students {
		hash, err := authSvc.HashPassword(st.Password)
		if err != nil {
			return err
		}
		classID := class.ClassID
		m := acModel.StudentModel{
			StudentID:           uuid.New(),
			StudentSchoolID:     schoolID,
			StudentClassID:      &classID,
			StudentName:         st.Name,
			StudentRollNum:      st.RollNum,
			StudentCode:         strings.ToUpper(strings.TrimSpace(st.Code)),
			StudentPasswordHash: hash,
		}
		if err := tx.Create(&m).Error; err != nil {
			return fmt.Errorf("siswa %s: %w", st.Code, err)
		}
		for _, sid := range subjectIDs {
			row := acModel.StudentSubjectModel{
				StudentSubjectSchoolID:  schoolID,
				StudentSubjectStudentID: m.StudentID,
				StudentSubjectSubjectID: sid,
				StudentSubjectClassID:   classID,
			}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
				return err
			}
		}
	}
	return nil
}
