// file: internals/features/attendance/model/session_configuration_model.go
package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type SessionType string

const (
	SessionLecture   SessionType = "lecture"
	SessionLab       SessionType = "lab"
	SessionTutorial  SessionType = "tutorial"
	SessionPractical SessionType = "practical"
	SessionSeminar   SessionType = "seminar"
)

func (t SessionType) Valid() bool {
	switch t {
	case SessionLecture, SessionLab, SessionTutorial, SessionPractical, SessionSeminar:
		return true
	}
	return false
}

// Title: "lecture" → "Lecture"
func (t SessionType) Title() string {
	s := string(t)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

type SessionConfigurationModel struct {
	SessionConfigurationID        uuid.UUID   `gorm:"type:uuid;default:gen_random_uuid();primaryKey;column:session_configuration_id" json:"id"`
	SessionConfigurationSchoolID  uuid.UUID   `gorm:"type:uuid;not null;index;column:session_configuration_school_id" json:"schoolId"`
	SessionConfigurationClassID   uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:uq_session_configuration,priority:1;column:session_configuration_class_id" json:"classId"`
	SessionConfigurationSubjectID uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:uq_session_configuration,priority:2;column:session_configuration_subject_id" json:"subjectId"`
	SessionConfigurationType      SessionType `gorm:"type:varchar(20);not null;uniqueIndex:uq_session_configuration,priority:3;column:session_configuration_type" json:"sessionType"`

	SessionConfigurationSessionsPerWeek int  `gorm:"not null;default:1;column:session_configuration_sessions_per_week" json:"sessionsPerWeek"`
	SessionConfigurationDuration        int  `gorm:"not null;default:60;column:session_configuration_duration" json:"sessionDuration"` // menit
	SessionConfigurationIsActive        bool `gorm:"not null;default:true;column:session_configuration_is_active" json:"isActive"`

	SessionConfigurationCreatedAt time.Time `gorm:"type:timestamptz;column:session_configuration_created_at;autoCreateTime" json:"createdAt"`
	SessionConfigurationUpdatedAt time.Time `gorm:"type:timestamptz;column:session_configuration_updated_at;autoUpdateTime" json:"updatedAt"`
}

func (SessionConfigurationModel) TableName() string { return "session_configurations" }

// Labels: lecture × 2 → ["Lecture 1", "Lecture 2"]
func (m SessionConfigurationModel) Labels() []string {
	n := m.SessionConfigurationSessionsPerWeek
	if n < 1 {
		n = 1
	}
	out := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, fmt.Sprintf("%s %d", m.SessionConfigurationType.Title(), i))
	}
	return out
}
