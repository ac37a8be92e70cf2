// file: internals/features/attendance/service/session_config_service.go
package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"sekolahku_backend/internals/features/attendance/dto"
	"sekolahku_backend/internals/features/attendance/model"
	"sekolahku_backend/internals/features/attendance/repository"
	helperAuth "sekolahku_backend/internals/helpers/auth"
)

// SessionConfigService: admin mengelola slot sesi per (kelas, mapel).
type SessionConfigService struct {
	store      repository.Store
	validation *ValidationService
}

func NewSessionConfigService(store repository.Store, validation *ValidationService) *SessionConfigService {
	return &SessionConfigService{store: store, validation: validation}
}

func (s *SessionConfigService) Create(ctx context.Context, p helperAuth.Principal, req dto.CreateSessionConfigurationRequest) (*model.SessionConfigurationModel, error) {
	if !p.IsAdmin() {
		return nil, forbidden("only school admins can configure sessions")
	}
	classID, err := parseID("classId", req.ClassID)
	if err != nil {
		return nil, err
	}
	subjectID, err := parseID("subjectId", req.SubjectID)
	if err != nil {
		return nil, err
	}
	if !model.SessionType(req.SessionType).Valid() {
		return nil, invalid("sessionType", "unknown session type")
	}
	if _, err := s.validation.ValidateTeacherAssignment(ctx, p, classID, subjectID); err != nil {
		return nil, err
	}

	m := req.ToModel(p.SchoolID, classID, subjectID)
	if err := s.store.CreateSessionConfig(ctx, &m); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, invalid("sessionType", "a configuration for this session type already exists")
		}
		return nil, dbErr("create session configuration", err)
	}
	return &m, nil
}

// List: classID/subjectID boleh uuid.Nil (semua).
func (s *SessionConfigService) List(ctx context.Context, p helperAuth.Principal, classID, subjectID uuid.UUID, activeOnly bool) ([]model.SessionConfigurationModel, error) {
	if p.IsStudent() {
		return nil, forbidden("students cannot read session configuration")
	}
	rows, err := s.store.ListSessionConfigs(ctx, p.SchoolID, classID, subjectID, activeOnly)
	if err != nil {
		return nil, dbErr("list session configuration", err)
	}
	if rows == nil {
		rows = []model.SessionConfigurationModel{}
	}
	return rows, nil
}

func (s *SessionConfigService) Patch(ctx context.Context, p helperAuth.Principal, id uuid.UUID, req dto.PatchSessionConfigurationRequest) (*model.SessionConfigurationModel, error) {
	if !p.IsAdmin() {
		return nil, forbidden("only school admins can configure sessions")
	}
	m, err := s.store.GetSessionConfig(ctx, p.SchoolID, id)
	if err != nil {
		return nil, lookupErr("load session configuration", "session configuration", id, err)
	}
	req.Apply(m)
	if err := s.store.SaveSessionConfig(ctx, m); err != nil {
		return nil, dbErr("update session configuration", err)
	}
	return m, nil
}
