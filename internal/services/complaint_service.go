package services

import (
	"context"
	"errors"
	"io"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"isp-system/config"
	"isp-system/internal/authz"
	"isp-system/internal/dto"
	"isp-system/internal/entities"
	"isp-system/internal/repositories"
	"isp-system/pkg/constants"
	apperrors "isp-system/pkg/errors"
	"isp-system/pkg/export"
	"isp-system/pkg/filestorage"
	"isp-system/pkg/types"
	"isp-system/pkg/utils"
)

type ComplaintService struct {
	*BaseService
	repo        repositories.ComplaintRepositoryInterface
	userRepo    repositories.UserRepositoryInterface
	subRepo     repositories.SubscriptionRepositoryInterface
	fileStorage filestorage.FileStorageInterface
}

func NewComplaintService(
	base *BaseService,
	repo repositories.ComplaintRepositoryInterface,
	userRepo repositories.UserRepositoryInterface,
	subRepo repositories.SubscriptionRepositoryInterface,
	fileStorage filestorage.FileStorageInterface,
) *ComplaintService {
	return &ComplaintService{BaseService: base, repo: repo, userRepo: userRepo, subRepo: subRepo, fileStorage: fileStorage}
}

func (s *ComplaintService) GetComplaints(ctx context.Context, filter types.Filter) ([]entities.Complaint, uint64, error) {
	_, scope, err := s.scope(ctx, authz.ComplaintsView, repositories.ComplaintScopeColumns)
	if err != nil {
		return nil, 0, err
	}
	return s.repo.GetComplaints(ctx, filter, scope)
}

func (s *ComplaintService) GetStats(ctx context.Context, filter types.Filter) (types.StatusStats, error) {
	_, scope, err := s.scope(ctx, authz.ComplaintsView, repositories.ComplaintScopeColumns)
	if err != nil {
		return types.StatusStats{}, err
	}
	return s.repo.GetStats(ctx, filter, scope)
}

func (s *ComplaintService) FindByID(ctx context.Context, id uint64) (*entities.Complaint, error) {
	complaint, err := s.repo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if _, _, err := s.authorize(ctx, authz.ComplaintsView, complaint); err != nil {
		return nil, err
	}
	return complaint, nil
}

// Create: клиент всегда создаёт жалобу на себя, сотрудник указывает клиента.
func (s *ComplaintService) Create(ctx context.Context, payload dto.CreateComplaintDTO) (*entities.Complaint, error) {
	actor, _, err := s.authorize(ctx, authz.ComplaintsCreate, nil)
	if err != nil {
		return nil, err
	}

	customerID := actor.ID
	if actor.RoleCode != constants.RoleCustomer {
		if payload.CustomerID == nil {
			return nil, apperrors.NewInvalidInputError("не указан клиент (customer_id)")
		}
		customerID = *payload.CustomerID
	}

	customer, err := s.userRepo.FindByID(ctx, nil, customerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewInvalidInputError("клиент %d не найден", customerID)
		}
		return nil, err
	}
	if customer.RoleCode != constants.RoleCustomer || customer.OperatorID == nil {
		return nil, apperrors.NewInvalidInputError("пользователь %d не является клиентом оператора", customerID)
	}
	if _, _, err := s.authorize(ctx, authz.ComplaintsCreate, customer); err != nil {
		return nil, err
	}

	if payload.SubscriptionID != nil {
		sub, err := s.subRepo.FindByID(ctx, nil, *payload.SubscriptionID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, apperrors.NewInvalidInputError("подписка %d не найдена", *payload.SubscriptionID)
			}
			return nil, err
		}
		if sub.CustomerID != customer.ID {
			return nil, apperrors.NewInvalidInputError("подписка принадлежит другому клиенту")
		}
	}

	complaint := &entities.Complaint{
		OperatorID:     *customer.OperatorID,
		CustomerID:     customer.ID,
		SubscriptionID: payload.SubscriptionID,
		Subject:        payload.Subject,
		Description:    payload.Description,
		Category:       payload.Category,
		Priority:       payload.Priority,
		Status:         constants.IssueOpen,
		CustomerName:   customer.Fio,
	}
	if complaint.Priority == "" {
		complaint.Priority = constants.PriorityMedium
	}

	err = s.inTx(ctx, actor, func(tx pgx.Tx, j *Journal) error {
		if err := s.repo.Create(ctx, tx, complaint); err != nil {
			return err
		}
		return j.Record(ctx, Change{
			EntityType: constants.EntityComplaint, EntityID: complaint.ID, OperatorID: &complaint.OperatorID,
			Action: constants.ActionCreated, New: complaint, Recipients: []uint64{complaint.CustomerID},
		})
	})
	if err != nil {
		return nil, err
	}
	return complaint, nil
}

func (s *ComplaintService) Update(ctx context.Context, id uint64, payload dto.UpdateComplaintDTO, fields utils.Fields) (*entities.Complaint, error) {
	complaint, err := s.repo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	actor, _, err := s.authorize(ctx, authz.ComplaintsUpdate, complaint)
	if err != nil {
		return nil, err
	}
	if err := guardFinal(constants.EntityComplaint, complaint.Status); err != nil {
		return nil, err
	}
	old := *complaint

	if payload.Subject != nil {
		complaint.Subject = *payload.Subject
	}
	if payload.Description != nil {
		complaint.Description = *payload.Description
	}
	if payload.Category != nil {
		complaint.Category = *payload.Category
	}
	if payload.Priority != nil {
		complaint.Priority = *payload.Priority
	}
	if fields.Has("assigned_to") {
		complaint.AssignedTo = payload.AssignedTo.Ptr()
		if complaint.AssignedTo != nil {
			if _, err := staffMember(ctx, s.userRepo, *complaint.AssignedTo, complaint.OperatorID, ""); err != nil {
				return nil, err
			}
		}
	}
	if payload.Status != nil && *payload.Status != complaint.Status {
		complaint.Status = *payload.Status
		if complaint.Status == constants.IssueResolved {
			now := nowFunc()
			complaint.ResolvedAt = &now
		}
	}

	action := constants.ActionUpdated
	switch {
	case complaint.Status != old.Status:
		action = constants.ActionStatusChanged
	case !equalIDs(complaint.AssignedTo, old.AssignedTo):
		action = constants.ActionAssigned
	}

	err = s.inTx(ctx, actor, func(tx pgx.Tx, j *Journal) error {
		if err := s.repo.Update(ctx, tx, complaint); err != nil {
			return err
		}
		return j.Record(ctx, Change{
			EntityType: constants.EntityComplaint, EntityID: complaint.ID, OperatorID: &complaint.OperatorID,
			Action: action, Old: old, New: complaint,
			Recipients: recipients(&complaint.CustomerID, complaint.AssignedTo),
		})
	})
	if err != nil {
		return nil, err
	}
	return complaint, nil
}

func (s *ComplaintService) Delete(ctx context.Context, id uint64) error {
	complaint, err := s.repo.FindByID(ctx, nil, id)
	if err != nil {
		return err
	}
	actor, _, err := s.authorize(ctx, authz.ComplaintsDelete, complaint)
	if err != nil {
		return err
	}
	attachments, err := s.repo.GetAttachments(ctx, id)
	if err != nil {
		return err
	}

	err = s.inTx(ctx, actor, func(tx pgx.Tx, j *Journal) error {
		if err := s.repo.Delete(ctx, tx, id); err != nil {
			return err
		}
		return j.Record(ctx, Change{EntityType: constants.EntityComplaint, EntityID: id, OperatorID: &complaint.OperatorID, Action: constants.ActionDeleted, Old: complaint})
	})
	if err != nil {
		return err
	}

	for _, a := range attachments {
		if err := s.fileStorage.Delete(a.FilePath); err != nil {
			s.logger.Warn("Не удалось удалить файл вложения", zap.String("path", a.FilePath), zap.Error(err))
		}
	}
	return nil
}

// Upload - файл, уже проверенный по правилам контекста загрузки.
type Upload struct {
	Reader   io.Reader
	FileName string
	FileType string
	Size     int64
}

func (s *ComplaintService) AddAttachment(ctx context.Context, complaintID uint64, file Upload) (*entities.ComplaintAttachment, error) {
	complaint, err := s.repo.FindByID(ctx, nil, complaintID)
	if err != nil {
		return nil, err
	}
	// прикрепить файл может любой, кто видит жалобу
	actor, _, err := s.authorize(ctx, authz.ComplaintsView, complaint)
	if err != nil {
		return nil, err
	}
	if err := guardFinal(constants.EntityComplaint, complaint.Status); err != nil {
		return nil, err
	}

	path, err := s.fileStorage.Save(file.Reader, file.FileName, config.UploadContexts[config.UploadComplaintAttachment].PathPrefix)
	if err != nil {
		s.logger.Error("Ошибка сохранения файла", zap.Uint64("complaintID", complaintID), zap.Error(err))
		return nil, apperrors.ErrInternalServer
	}

	attachment := &entities.ComplaintAttachment{
		ComplaintID: complaintID,
		FileName:    file.FileName,
		FilePath:    filestorage.URLPrefix + path,
		FileType:    file.FileType,
		FileSize:    file.Size,
		UploadedBy:  actor.ID,
	}

	err = s.inTx(ctx, actor, func(tx pgx.Tx, j *Journal) error {
		if err := s.repo.CreateAttachment(ctx, tx, attachment); err != nil {
			return err
		}
		return j.Record(ctx, Change{
			EntityType: constants.EntityComplaint, EntityID: complaintID, OperatorID: &complaint.OperatorID,
			Action: constants.ActionAttached, New: attachment,
			Recipients: recipients(&complaint.CustomerID, complaint.AssignedTo),
		})
	})
	if err != nil {
		if delErr := s.fileStorage.Delete(path); delErr != nil {
			s.logger.Warn("Не удалось удалить файл после ошибки", zap.String("path", path), zap.Error(delErr))
		}
		return nil, err
	}
	return attachment, nil
}

func (s *ComplaintService) GetAttachments(ctx context.Context, complaintID uint64) ([]entities.ComplaintAttachment, error) {
	if _, err := s.FindByID(ctx, complaintID); err != nil {
		return nil, err
	}
	return s.repo.GetAttachments(ctx, complaintID)
}

// Export выгружает все жалобы под текущими фильтрами, без пагинации.
func (s *ComplaintService) Export(ctx context.Context, filter types.Filter, w io.Writer) error {
	_, scope, err := s.scope(ctx, authz.ComplaintsExport, repositories.ComplaintScopeColumns)
	if err != nil {
		return err
	}
	filter.WithPagination = false
	complaints, _, err := s.repo.GetComplaints(ctx, filter, scope)
	if err != nil {
		return err
	}

	table := export.Table{
		Sheet:   "Жалобы",
		Headers: []string{"ID", "Клиент", "Тема", "Категория", "Приоритет", "Статус", "Исполнитель", "Создана", "Решена"},
		Rows:    make([][]interface{}, 0, len(complaints)),
	}
	for _, c := range complaints {
		table.Rows = append(table.Rows, []interface{}{
			c.ID, c.CustomerName, c.Subject, c.Category, c.Priority, c.Status,
			utils.SafeDeref(c.AssigneeName), formatTime(&c.CreatedAt), formatTime(c.ResolvedAt),
		})
	}
	return export.WriteXLSX(w, table)
}
