package database

import (
	"log"

	"gorm.io/gorm"

	attModel "sekolahku_backend/internals/features/attendance/model"
	acModel "sekolahku_backend/internals/features/school/academics/model"
	authModel "sekolahku_backend/internals/features/users/auth/model"
)

// Models: urutan penting (tabel induk dulu).
func Models() []any {
	return []any{
		&acModel.SchoolModel{},
		&acModel.ClassModel{},
		&acModel.TeacherModel{},
		&acModel.SubjectModel{},
		&acModel.TeacherAssignmentModel{},
		&acModel.StudentModel{},
		&acModel.StudentSubjectModel{},

		&attModel.SessionConfigurationModel{},
		&attModel.AttendanceRecordModel{},
		&attModel.AttendanceSummaryModel{},
		&attModel.AttendanceAuditLogModel{},
		&attModel.BulkJobModel{},

		&authModel.TokenBlacklistModel{},
	}
}

func Migrate(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error; err != nil {
		log.Printf("[WARN] pgcrypto extension: %v", err)
	}
	if err := db.AutoMigrate(Models()...); err != nil {
		return err
	}
	log.Println("[INFO] AutoMigrate selesai")
	return nil
}
