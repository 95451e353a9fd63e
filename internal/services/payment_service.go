package services

import (
	"context"
	"errors"
	"io"

	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/errgroup"

	"isp-system/internal/authz"
	"isp-system/internal/dto"
	"isp-system/internal/entities"
	"isp-system/internal/repositories"
	"isp-system/pkg/constants"
	apperrors "isp-system/pkg/errors"
	"isp-system/pkg/export"
	"isp-system/pkg/types"
)

type PaymentService struct {
	*BaseService
	repo    repositories.PaymentRepositoryInterface
	subRepo repositories.SubscriptionRepositoryInterface
}

func NewPaymentService(base *BaseService, repo repositories.PaymentRepositoryInterface, subRepo repositories.SubscriptionRepositoryInterface) *PaymentService {
	return &PaymentService{BaseService: base, repo: repo, subRepo: subRepo}
}

func (s *PaymentService) GetPayments(ctx context.Context, filter types.Filter) ([]entities.Payment, uint64, error) {
	_, scope, err := s.scope(ctx, authz.PaymentsView, repositories.PaymentScopeColumns)
	if err != nil {
		return nil, 0, err
	}
	return s.repo.GetPayments(ctx, filter, scope)
}

// GetStats - количество по статусам и сумма завершённых платежей под теми же фильтрами.
func (s *PaymentService) GetStats(ctx context.Context, filter types.Filter) (*dto.PaymentStatsDTO, error) {
	_, scope, err := s.scope(ctx, authz.PaymentsView, repositories.PaymentScopeColumns)
	if err != nil {
		return nil, err
	}

	var stats dto.PaymentStatsDTO
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		byStatus, err := s.repo.GetStats(gctx, filter, scope)
		if err != nil {
			return err
		}
		stats.Total, stats.ByStatus = byStatus.Total, byStatus.ByStatus
		return nil
	})
	g.Go(func() error {
		sum, err := s.repo.SumCompleted(gctx, filter, scope)
		if err != nil {
			return err
		}
		stats.TotalAmount = sum
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (s *PaymentService) FindByID(ctx context.Context, id uint64) (*entities.Payment, error) {
	payment, err := s.repo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if _, _, err := s.authorize(ctx, authz.PaymentsView, payment); err != nil {
		return nil, err
	}
	return payment, nil
}

func (s *PaymentService) Create(ctx context.Context, payload dto.CreatePaymentDTO) (*entities.Payment, error) {
	sub, err := s.subRepo.FindByID(ctx, nil, payload.SubscriptionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewInvalidInputError("подписка %d не найдена", payload.SubscriptionID)
		}
		return nil, err
	}
	actor, _, err := s.authorize(ctx, authz.PaymentsCreate, sub)
	if err != nil {
		return nil, err
	}

	payment := &entities.Payment{
		OperatorID:     sub.OperatorID,
		SubscriptionID: sub.ID,
		CustomerID:     sub.CustomerID,
		Amount:         payload.Amount,
		Method:         payload.Method,
		Status:         constants.PaymentPending,
		Reference:      payload.Reference,
		CustomerName:   sub.CustomerName,
	}
	if payload.Status != "" {
		setPaymentStatus(payment, payload.Status)
	}

	err = s.inTx(ctx, actor, func(tx pgx.Tx, j *Journal) error {
		if err := s.repo.Create(ctx, tx, payment); err != nil {
			return err
		}
		return j.Record(ctx, Change{
			EntityType: constants.EntityPayment, EntityID: payment.ID, OperatorID: &payment.OperatorID,
			Action: constants.ActionCreated, New: payment, Recipients: []uint64{payment.CustomerID},
		})
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

func (s *PaymentService) Update(ctx context.Context, id uint64, payload dto.UpdatePaymentDTO) (*entities.Payment, error) {
	payment, err := s.repo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	actor, _, err := s.authorize(ctx, authz.PaymentsUpdate, payment)
	if err != nil {
		return nil, err
	}
	if err := guardFinal(constants.EntityPayment, payment.Status); err != nil {
		return nil, err
	}
	old := *payment

	if payload.Method != nil {
		payment.Method = *payload.Method
	}
	if payload.Reference != nil {
		payment.Reference = *payload.Reference
	}
	if payload.Status != nil {
		if *payload.Status == constants.PaymentRefunded && old.Status != constants.PaymentCompleted {
			return nil, apperrors.NewInvalidInputError("вернуть можно только завершённый платёж")
		}
		setPaymentStatus(payment, *payload.Status)
	}

	action := constants.ActionUpdated
	if payment.Status != old.Status {
		action = constants.ActionStatusChanged
	}

	err = s.inTx(ctx, actor, func(tx pgx.Tx, j *Journal) error {
		if err := s.repo.Update(ctx, tx, payment); err != nil {
			return err
		}
		return j.Record(ctx, Change{
			EntityType: constants.EntityPayment, EntityID: payment.ID, OperatorID: &payment.OperatorID,
			Action: action, Old: old, New: payment, Recipients: []uint64{payment.CustomerID},
		})
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// setPaymentStatus - переход в completed фиксирует время оплаты.
func setPaymentStatus(p *entities.Payment, status string) {
	if status == p.Status {
		return
	}
	p.Status = status
	if status == constants.PaymentCompleted && p.PaidAt == nil {
		now := nowFunc()
		p.PaidAt = &now
	}
}

func (s *PaymentService) Delete(ctx context.Context, id uint64) error {
	payment, err := s.repo.FindByID(ctx, nil, id)
	if err != nil {
		return err
	}
	actor, _, err := s.authorize(ctx, authz.PaymentsDelete, payment)
	if err != nil {
		return err
	}
	return s.inTx(ctx, actor, func(tx pgx.Tx, j *Journal) error {
		if err := s.repo.Delete(ctx, tx, id); err != nil {
			return err
		}
		return j.Record(ctx, Change{EntityType: constants.EntityPayment, EntityID: id, OperatorID: &payment.OperatorID, Action: constants.ActionDeleted, Old: payment})
	})
}

func (s *PaymentService) Export(ctx context.Context, filter types.Filter, w io.Writer) error {
	_, scope, err := s.scope(ctx, authz.PaymentsExport, repositories.PaymentScopeColumns)
	if err != nil {
		return err
	}
	filter.WithPagination = false
	payments, _, err := s.repo.GetPayments(ctx, filter, scope)
	if err != nil {
		return err
	}

	table := export.Table{
		Sheet:   "Платежи",
		Headers: []string{"ID", "Клиент", "Подписка", "Сумма", "Способ", "Статус", "Референс", "Оплачен", "Создан"},
		Rows:    make([][]interface{}, 0, len(payments)),
	}
	for _, p := range payments {
		amount, _ := p.Amount.Float64()
		table.Rows = append(table.Rows, []interface{}{
			p.ID, p.CustomerName, p.SubscriptionID, amount, p.Method, p.Status, p.Reference,
			formatTime(p.PaidAt), formatTime(&p.CreatedAt),
		})
	}
	return export.WriteXLSX(w, table)
}
