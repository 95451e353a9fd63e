package services

import (
	"context"
	"encoding/json"
	"errors"
	"slices"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"isp-system/internal/authz"
	"isp-system/internal/entities"
	"isp-system/internal/events"
	"isp-system/internal/repositories"
	"isp-system/pkg/constants"
	apperrors "isp-system/pkg/errors"
	"isp-system/pkg/eventbus"
)

const dateLayout = "2006-01-02"

// EventPublisher - *eventbus.Bus или подмена в тестах.
type EventPublisher interface {
	Publish(ctx context.Context, event eventbus.Event)
}

// BaseService - общее для доменных сервисов: проверка прав, транзакция с журналом, события после коммита.
type BaseService struct {
	txManager repositories.TxManagerInterface
	logRepo   repositories.ActivityLogRepositoryInterface
	bus       EventPublisher
	logger    *zap.Logger
}

func NewBaseService(
	txManager repositories.TxManagerInterface,
	logRepo repositories.ActivityLogRepositoryInterface,
	bus EventPublisher,
	logger *zap.Logger,
) *BaseService {
	return &BaseService{txManager: txManager, logRepo: logRepo, bus: bus, logger: logger}
}

// authorize проверяет привилегию и, если передана цель, доступ к ней.
func (s *BaseService) authorize(ctx context.Context, permission string, target interface{}) (*authz.Actor, map[string]bool, error) {
	actor, perms, err := authz.ActorFromContext(ctx)
	if err != nil {
		return nil, nil, err
	}
	if !authz.CanDo(permission, authz.ContextFor(actor, perms, target)) {
		s.logger.Warn("Отказано в доступе",
			zap.Uint64("userID", actor.ID),
			zap.String("role", actor.RoleCode),
			zap.String("permission", permission))
		return actor, perms, apperrors.ErrForbidden
	}
	return actor, perms, nil
}

// scope - условие видимости списка для текущего пользователя.
func (s *BaseService) scope(ctx context.Context, permission string, cols authz.Columns) (*authz.Actor, sq.Sqlizer, error) {
	actor, perms, err := s.authorize(ctx, permission, nil)
	if err != nil {
		return nil, nil, err
	}
	return actor, authz.ListScope(actor, perms, cols), nil
}

// Change - одна запись журнала.
type Change struct {
	EntityType string
	EntityID   uint64
	OperatorID *uint64
	Action     string
	Old        interface{}
	New        interface{}
	Recipients []uint64
}

// Journal пишет журнал в транзакции изменения и запоминает события до коммита.
type Journal struct {
	tx      pgx.Tx
	txID    uuid.UUID
	actor   *authz.Actor
	repo    repositories.ActivityLogRepositoryInterface
	pending []events.ActivityRecordedEvent
}

func (j *Journal) Record(ctx context.Context, c Change) error {
	entry := entities.ActivityLog{
		OperatorID: c.OperatorID,
		EntityType: c.EntityType,
		EntityID:   c.EntityID,
		Action:     c.Action,
		TxID:       j.txID,
	}
	if j.actor != nil {
		entry.ActorID = &j.actor.ID
	}

	var err error
	if entry.OldValue, err = marshalValue(c.Old); err != nil {
		return err
	}
	if entry.NewValue, err = marshalValue(c.New); err != nil {
		return err
	}

	if j.repo != nil {
		if err := j.repo.Create(ctx, j.tx, &entry); err != nil {
			return err
		}
	}
	j.pending = append(j.pending, events.ActivityRecordedEvent{Log: entry, Recipients: c.Recipients})
	return nil
}

func marshalValue(v interface{}) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

// inTx выполняет fn в транзакции; события уходят в шину только после успешного коммита.
func (s *BaseService) inTx(ctx context.Context, actor *authz.Actor, fn func(tx pgx.Tx, j *Journal) error) error {
	j := &Journal{txID: uuid.New(), actor: actor, repo: s.logRepo}
	err := s.txManager.RunInTransaction(ctx, func(tx pgx.Tx) error {
		j.tx = tx
		return fn(tx, j)
	})
	if err != nil {
		return err
	}
	if s.bus != nil {
		for _, e := range j.pending {
			s.bus.Publish(ctx, e)
		}
	}
	return nil
}

// guardFinal - запись в финальном статусе больше не меняется.
func guardFinal(entity, current string) error {
	if constants.IsFinalStatus(entity, current) {
		return apperrors.ErrFinalStatus
	}
	return nil
}

func isGlobal(perms map[string]bool) bool {
	return perms[authz.Superuser] || perms[authz.ScopeAll]
}

// resolveOperator: глобальные роли выбирают оператора сами, остальные работают в своём.
func resolveOperator(actor *authz.Actor, perms map[string]bool, requested *uint64) (uint64, error) {
	if isGlobal(perms) {
		if requested != nil {
			return *requested, nil
		}
		if actor.OperatorID != nil {
			return *actor.OperatorID, nil
		}
		return 0, apperrors.NewInvalidInputError("не указан оператор (operator_id)")
	}
	if actor.OperatorID == nil {
		return 0, apperrors.ErrForbidden
	}
	return *actor.OperatorID, nil
}

func parseDate(value string) (time.Time, error) {
	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, apperrors.NewInvalidInputError("неверный формат даты %q, ожидается ГГГГ-ММ-ДД", value)
	}
	return t, nil
}

func parseOptionalDate(value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	t, err := parseDate(*value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func recipients(ids ...*uint64) []uint64 {
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if id != nil && *id != 0 {
			out = append(out, *id)
		}
	}
	return out
}

// nowFunc подменяется в тестах.
var nowFunc = time.Now

func equalIDs(a, b *uint64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// formatTime - формат дат в выгрузках.
func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format("02.01.2006 15:04")
}

// staffMember - исполнитель должен быть сотрудником того же оператора; role сужает до конкретной роли.
func staffMember(ctx context.Context, repo repositories.UserRepositoryInterface, userID, operatorID uint64, role string) (*entities.User, error) {
	user, err := repo.FindByID(ctx, nil, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewInvalidInputError("сотрудник %d не найден", userID)
		}
		return nil, err
	}
	if role != "" && user.RoleCode != role {
		return nil, apperrors.NewInvalidInputError("пользователь %d не имеет роли %s", userID, role)
	}
	if !slices.Contains(constants.StaffRoles, user.RoleCode) && user.RoleCode != constants.RoleOperator {
		return nil, apperrors.NewInvalidInputError("исполнителем может быть только сотрудник")
	}
	if user.OperatorID == nil || *user.OperatorID != operatorID {
		return nil, apperrors.NewInvalidInputError("сотрудник работает у другого оператора")
	}
	if user.Status != constants.StatusActive {
		return nil, apperrors.NewInvalidInputError("сотрудник %d отключён", userID)
	}
	return user, nil
}
