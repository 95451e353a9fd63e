package services

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5"

	"isp-system/internal/authz"
	"isp-system/internal/dto"
	"isp-system/internal/entities"
	"isp-system/internal/repositories"
	"isp-system/pkg/constants"
	apperrors "isp-system/pkg/errors"
	"isp-system/pkg/types"
	"isp-system/pkg/utils"
)

type AttendanceService struct {
	*BaseService
	repo     repositories.AttendanceRepositoryInterface
	userRepo repositories.UserRepositoryInterface
}

func NewAttendanceService(base *BaseService, repo repositories.AttendanceRepositoryInterface, userRepo repositories.UserRepositoryInterface) *AttendanceService {
	return &AttendanceService{BaseService: base, repo: repo, userRepo: userRepo}
}

func (s *AttendanceService) GetAttendance(ctx context.Context, filter types.Filter) ([]entities.Attendance, uint64, error) {
	_, scope, err := s.scope(ctx, authz.AttendanceView, repositories.AttendanceScopeColumns)
	if err != nil {
		return nil, 0, err
	}
	return s.repo.GetAttendance(ctx, filter, scope)
}

func (s *AttendanceService) GetStats(ctx context.Context, filter types.Filter) (types.StatusStats, error) {
	_, scope, err := s.scope(ctx, authz.AttendanceView, repositories.AttendanceScopeColumns)
	if err != nil {
		return types.StatusStats{}, err
	}
	return s.repo.GetStats(ctx, filter, scope)
}

func (s *AttendanceService) FindByID(ctx context.Context, id uint64) (*entities.Attendance, error) {
	record, err := s.repo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if _, _, err := s.authorize(ctx, authz.AttendanceView, record); err != nil {
		return nil, err
	}
	return record, nil
}

func today(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

// CheckIn - отметка прихода текущего сотрудника. Одна запись на день; после 09:30 статус late.
func (s *AttendanceService) CheckIn(ctx context.Context, payload dto.CheckDTO) (*entities.Attendance, error) {
	actor, _, err := s.authorize(ctx, authz.AttendanceCreate, nil)
	if err != nil {
		return nil, err
	}
	if actor.OperatorID == nil {
		return nil, apperrors.ErrForbidden
	}

	now := nowFunc()
	status := constants.AttendancePresent
	if now.After(constants.ShiftStart(now)) {
		status = constants.AttendanceLate
	}

	record, err := s.repo.FindByUserAndDate(ctx, nil, actor.ID, today(now))
	switch {
	case err == nil && record.CheckIn != nil:
		return nil, apperrors.NewHttpError(http.StatusConflict, "Приход уже отмечен сегодня", apperrors.ErrConflict, nil)
	case err != nil && !errors.Is(err, apperrors.ErrNotFound):
		return nil, err
	}

	isNew := record == nil
	var old entities.Attendance
	if isNew {
		record = &entities.Attendance{
			OperatorID: *actor.OperatorID,
			UserID:     actor.ID,
			Date:       today(now),
		}
	} else {
		old = *record
	}
	record.CheckIn = &now
	record.Status = status
	if payload.Notes != nil {
		record.Notes = payload.Notes
	}

	err = s.inTx(ctx, actor, func(tx pgx.Tx, j *Journal) error {
		c := Change{EntityType: constants.EntityAttendance, OperatorID: &record.OperatorID, Action: constants.ActionCheckIn, New: record}
		if isNew {
			if err := s.repo.Create(ctx, tx, record); err != nil {
				return err
			}
		} else {
			if err := s.repo.Update(ctx, tx, record); err != nil {
				return err
			}
			c.Old = old
		}
		c.EntityID = record.ID
		return j.Record(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// CheckOut - отметка ухода; без отметки прихода невозможна.
func (s *AttendanceService) CheckOut(ctx context.Context, payload dto.CheckDTO) (*entities.Attendance, error) {
	actor, _, err := s.authorize(ctx, authz.AttendanceCreate, nil)
	if err != nil {
		return nil, err
	}

	now := nowFunc()
	record, err := s.repo.FindByUserAndDate(ctx, nil, actor.ID, today(now))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewInvalidInputError("сегодня приход не отмечен")
		}
		return nil, err
	}
	if record.CheckIn == nil {
		return nil, apperrors.NewInvalidInputError("сегодня приход не отмечен")
	}
	if record.CheckOut != nil {
		return nil, apperrors.NewHttpError(http.StatusConflict, "Уход уже отмечен сегодня", apperrors.ErrConflict, nil)
	}
	old := *record

	record.CheckOut = &now
	if payload.Notes != nil {
		record.Notes = payload.Notes
	}

	err = s.inTx(ctx, actor, func(tx pgx.Tx, j *Journal) error {
		if err := s.repo.Update(ctx, tx, record); err != nil {
			return err
		}
		return j.Record(ctx, Change{
			EntityType: constants.EntityAttendance, EntityID: record.ID, OperatorID: &record.OperatorID,
			Action: constants.ActionCheckOut, Old: old, New: record,
		})
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// Create - ручная запись менеджером, поэтому нужна привилегия на изменение.
func (s *AttendanceService) Create(ctx context.Context, payload dto.CreateAttendanceDTO) (*entities.Attendance, error) {
	user, err := s.userRepo.FindByID(ctx, nil, payload.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewInvalidInputError("сотрудник %d не найден", payload.UserID)
		}
		return nil, err
	}
	if user.OperatorID == nil {
		return nil, apperrors.NewInvalidInputError("пользователь %d не привязан к оператору", user.ID)
	}
	actor, _, err := s.authorize(ctx, authz.AttendanceUpdate, user)
	if err != nil {
		return nil, err
	}
	date, err := parseDate(payload.Date)
	if err != nil {
		return nil, err
	}
	if err := checkTimes(payload.CheckIn, payload.CheckOut); err != nil {
		return nil, err
	}

	record := &entities.Attendance{
		OperatorID: *user.OperatorID,
		UserID:     user.ID,
		Date:       date,
		CheckIn:    payload.CheckIn,
		CheckOut:   payload.CheckOut,
		Status:     payload.Status,
		Notes:      payload.Notes,
		UserName:   user.Fio,
	}

	err = s.inTx(ctx, actor, func(tx pgx.Tx, j *Journal) error {
		if err := s.repo.Create(ctx, tx, record); err != nil {
			return err
		}
		return j.Record(ctx, Change{EntityType: constants.EntityAttendance, EntityID: record.ID, OperatorID: &record.OperatorID, Action: constants.ActionCreated, New: record})
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (s *AttendanceService) Update(ctx context.Context, id uint64, payload dto.UpdateAttendanceDTO, fields utils.Fields) (*entities.Attendance, error) {
	record, err := s.repo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	actor, _, err := s.authorize(ctx, authz.AttendanceUpdate, record)
	if err != nil {
		return nil, err
	}
	old := *record

	if fields.Has("check_in") {
		record.CheckIn = payload.CheckIn.Ptr()
	}
	if fields.Has("check_out") {
		record.CheckOut = payload.CheckOut.Ptr()
	}
	if fields.Has("notes") {
		record.Notes = payload.Notes.Ptr()
	}
	if payload.Status != nil {
		record.Status = *payload.Status
	}
	if err := checkTimes(record.CheckIn, record.CheckOut); err != nil {
		return nil, err
	}

	err = s.inTx(ctx, actor, func(tx pgx.Tx, j *Journal) error {
		if err := s.repo.Update(ctx, tx, record); err != nil {
			return err
		}
		return j.Record(ctx, Change{EntityType: constants.EntityAttendance, EntityID: record.ID, OperatorID: &record.OperatorID, Action: constants.ActionUpdated, Old: old, New: record})
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (s *AttendanceService) Delete(ctx context.Context, id uint64) error {
	record, err := s.repo.FindByID(ctx, nil, id)
	if err != nil {
		return err
	}
	actor, _, err := s.authorize(ctx, authz.AttendanceDelete, record)
	if err != nil {
		return err
	}
	return s.inTx(ctx, actor, func(tx pgx.Tx, j *Journal) error {
		if err := s.repo.Delete(ctx, tx, id); err != nil {
			return err
		}
		return j.Record(ctx, Change{EntityType: constants.EntityAttendance, EntityID: id, OperatorID: &record.OperatorID, Action: constants.ActionDeleted, Old: record})
	})
}

func checkTimes(in, out *time.Time) error {
	if out != nil && in == nil {
		return apperrors.NewInvalidInputError("уход без прихода")
	}
	if in != nil && out != nil && out.Before(*in) {
		return apperrors.NewInvalidInputError("время ухода раньше времени прихода")
	}
	return nil
}
