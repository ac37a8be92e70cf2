// file: internals/features/attendance/dto/session_configuration_dto.go
package dto

import (
	"github.com/google/uuid"

	"sekolahku_backend/internals/features/attendance/model"
)

/* =========================================================
 * REQUESTS
 * ========================================================= */

type CreateSessionConfigurationRequest struct {
	ClassID         string `json:"classId" validate:"required,uuid"`
	SubjectID       string `json:"subjectId" validate:"required,uuid"`
	SessionType     string `json:"sessionType" validate:"required,oneof=lecture lab tutorial practical seminar"`
	SessionsPerWeek int    `json:"sessionsPerWeek" validate:"required,min=1,max=20"`
	SessionDuration int    `json:"sessionDuration" validate:"omitempty,min=10,max=600"`
	IsActive        *bool  `json:"isActive"`
}

// Update (partial JSON)
type PatchSessionConfigurationRequest struct {
	SessionsPerWeek *int  `json:"sessionsPerWeek" validate:"omitempty,min=1,max=20"`
	SessionDuration *int  `json:"sessionDuration" validate:"omitempty,min=10,max=600"`
	IsActive        *bool `json:"isActive"`
}

/* =========================================================
 * RESPONSE
 * ========================================================= */

type SessionOption struct {
	Value    string            `json:"value"`
	Label    string            `json:"label"`
	Type     model.SessionType `json:"type"`
	Duration int               `json:"duration"`
}

/* =========================================================
 * HELPERS
 * ========================================================= */

func (r CreateSessionConfigurationRequest) ToModel(schoolID, classID, subjectID uuid.UUID) model.SessionConfigurationModel {
	dur := r.SessionDuration
	if dur <= 0 {
		dur = 60
	}
	active := true
	if r.IsActive != nil {
		active = *r.IsActive
	}
	return model.SessionConfigurationModel{
		SessionConfigurationSchoolID:        schoolID,
		SessionConfigurationClassID:         classID,
		SessionConfigurationSubjectID:       subjectID,
		SessionConfigurationType:            model.SessionType(r.SessionType),
		SessionConfigurationSessionsPerWeek: r.SessionsPerWeek,
		SessionConfigurationDuration:        dur,
		SessionConfigurationIsActive:        active,
	}
}

func (r PatchSessionConfigurationRequest) Apply(m *model.SessionConfigurationModel) {
	if r.SessionsPerWeek != nil {
		m.SessionConfigurationSessionsPerWeek = *r.SessionsPerWeek
	}
	if r.SessionDuration != nil {
		m.SessionConfigurationDuration = *r.SessionDuration
	}
	if r.IsActive != nil {
		m.SessionConfigurationIsActive = *r.IsActive
	}
}

// Options: tiap konfigurasi aktif → "<Type> 1".."<Type> N"
func NewSessionOptions(cfgs []model.SessionConfigurationModel) []SessionOption {
	out := make([]SessionOption, 0)
	for _, c := range cfgs {
		if !c.SessionConfigurationIsActive {
			continue
		}
		for _, label := range c.Labels() {
			out = append(out, SessionOption{
				Value:    label,
				Label:    label,
				Type:     c.SessionConfigurationType,
				Duration: c.SessionConfigurationDuration,
			})
		}
	}
	return out
}
