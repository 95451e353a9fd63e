package services

import (
	"context"
	"sync"
	"testing"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"isp-system/internal/authz"
	"isp-system/internal/entities"
	"isp-system/internal/events"
	"isp-system/internal/repositories"
	"isp-system/pkg/constants"
	"isp-system/pkg/contextkeys"
	"isp-system/pkg/eventbus"
	"isp-system/pkg/types"
)

// fakeTx выполняет fn без БД; committed считает успешные транзакции.
type fakeTx struct {
	committed int
}

func (f *fakeTx) RunInTransaction(_ context.Context, fn func(tx pgx.Tx) error) error {
	if err := fn(nil); err != nil {
		return err
	}
	f.committed++
	return nil
}

type fakeLogRepo struct {
	repositories.ActivityLogRepositoryInterface
	entries []entities.ActivityLog
}

func (f *fakeLogRepo) Create(_ context.Context, _ pgx.Tx, l *entities.ActivityLog) error {
	l.ID = uint64(len(f.entries) + 1)
	f.entries = append(f.entries, *l)
	return nil
}

type fakeBus struct {
	mu     sync.Mutex
	events []events.ActivityRecordedEvent
}

func (b *fakeBus) Publish(_ context.Context, e eventbus.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ev, ok := e.(events.ActivityRecordedEvent); ok {
		b.events = append(b.events, ev)
	}
}

type testEnv struct {
	base *BaseService
	tx   *fakeTx
	logs *fakeLogRepo
	bus  *fakeBus
}

func newTestEnv() *testEnv {
	env := &testEnv{tx: &fakeTx{}, logs: &fakeLogRepo{}, bus: &fakeBus{}}
	env.base = NewBaseService(env.tx, env.logs, env.bus, zap.NewNop())
	return env
}

// actorCtx - контекст запроса с пользователем и привилегиями роли по умолчанию.
func actorCtx(id uint64, role string, operatorID *uint64, extra ...string) context.Context {
	perms := make(map[string]bool)
	for _, p := range authz.RoleDefaults[role] {
		perms[p] = true
	}
	for _, p := range extra {
		perms[p] = true
	}
	ctx := context.WithValue(context.Background(), contextkeys.UserIDKey, id)
	ctx = context.WithValue(ctx, contextkeys.RoleCodeKey, role)
	ctx = context.WithValue(ctx, contextkeys.OperatorIDKey, operatorID)
	return context.WithValue(ctx, contextkeys.UserPermissionsMapKey, perms)
}

// vendorCtx - учётка поставщика: VendorID берётся из vendors.user_id.
func vendorCtx(id, vendorID uint64, operatorID *uint64) context.Context {
	return context.WithValue(actorCtx(id, constants.RoleVendor, operatorID), contextkeys.VendorIDKey, &vendorID)
}

func ptr[T any](v T) *T { return &v }

// freezeTime подменяет nowFunc до конца теста.
func freezeTime(t *testing.T, now time.Time) {
	t.Helper()
	prev := nowFunc
	nowFunc = func() time.Time { return now }
	t.Cleanup(func() { nowFunc = prev })
}

// --- моки репозиториев: реализуют только то, что вызывают тесты ---

type mockUserRepo struct {
	mock.Mock
	repositories.UserRepositoryInterface
}

func (m *mockUserRepo) FindByID(ctx context.Context, q repositories.Querier, id uint64) (*entities.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

type mockTaskRepo struct {
	mock.Mock
	repositories.TaskRepositoryInterface
}

func (m *mockTaskRepo) GetStats(ctx context.Context, filter types.Filter, scope sq.Sqlizer) (types.StatusStats, error) {
	args := m.Called(filter)
	return args.Get(0).(types.StatusStats), args.Error(1)
}

func (m *mockTaskRepo) FindByID(ctx context.Context, q repositories.Querier, id uint64) (*entities.Task, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Task), args.Error(1)
}

func (m *mockTaskRepo) Update(ctx context.Context, tx pgx.Tx, t *entities.Task) error {
	return m.Called(t).Error(0)
}

type mockPlanRepo struct {
	mock.Mock
	repositories.PlanRepositoryInterface
}

func (m *mockPlanRepo) FindByID(ctx context.Context, q repositories.Querier, id uint64) (*entities.Plan, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Plan), args.Error(1)
}

func (m *mockPlanRepo) CountActiveSubscriptions(ctx context.Context, q repositories.Querier, planID uint64) (uint64, error) {
	args := m.Called(planID)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *mockPlanRepo) Delete(ctx context.Context, tx pgx.Tx, id uint64) error {
	return m.Called(id).Error(0)
}

type mockInventoryRepo struct {
	mock.Mock
	repositories.InventoryRepositoryInterface
}

func (m *mockInventoryRepo) FindByID(ctx context.Context, q repositories.Querier, id uint64) (*entities.InventoryItem, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.InventoryItem), args.Error(1)
}

func (m *mockInventoryRepo) FindBySKU(ctx context.Context, q repositories.Querier, operatorID uint64, sku string) (*entities.InventoryItem, error) {
	args := m.Called(operatorID, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.InventoryItem), args.Error(1)
}

func (m *mockInventoryRepo) Create(ctx context.Context, tx pgx.Tx, item *entities.InventoryItem) error {
	item.ID = 100
	return m.Called(item).Error(0)
}

func (m *mockInventoryRepo) Update(ctx context.Context, tx pgx.Tx, item *entities.InventoryItem) error {
	return m.Called(item).Error(0)
}

func (m *mockInventoryRepo) Adjust(ctx context.Context, tx pgx.Tx, item *entities.InventoryItem, delta int) error {
	args := m.Called(item.ID, delta)
	item.Quantity += delta
	item.Refresh()
	return args.Error(0)
}

type mockLeaveRepo struct {
	mock.Mock
	repositories.LeaveRepositoryInterface
}

func (m *mockLeaveRepo) FindByID(ctx context.Context, q repositories.Querier, id uint64) (*entities.LeaveRequest, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.LeaveRequest), args.Error(1)
}

func (m *mockLeaveRepo) Update(ctx context.Context, tx pgx.Tx, l *entities.LeaveRequest) error {
	return m.Called(l).Error(0)
}

type mockAttendanceRepo struct {
	mock.Mock
	repositories.AttendanceRepositoryInterface
}

func (m *mockAttendanceRepo) FindByUserAndDate(ctx context.Context, q repositories.Querier, userID uint64, date time.Time) (*entities.Attendance, error) {
	args := m.Called(userID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Attendance), args.Error(1)
}

func (m *mockAttendanceRepo) Create(ctx context.Context, tx pgx.Tx, a *entities.Attendance) error {
	a.ID = 1
	return m.Called(a).Error(0)
}

type mockOrderRepo struct {
	mock.Mock
	repositories.OrderRepositoryInterface
}

func (m *mockOrderRepo) GetStats(ctx context.Context, filter types.Filter, scope sq.Sqlizer) (types.StatusStats, error) {
	args := m.Called(filter)
	return args.Get(0).(types.StatusStats), args.Error(1)
}

func (m *mockOrderRepo) FindByID(ctx context.Context, q repositories.Querier, id uint64) (*entities.Order, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Order), args.Error(1)
}

func (m *mockOrderRepo) Create(ctx context.Context, tx pgx.Tx, o *entities.Order) error {
	o.ID = 1
	return m.Called(o).Error(0)
}

func (m *mockOrderRepo) Update(ctx context.Context, tx pgx.Tx, o *entities.Order) error {
	return m.Called(o).Error(0)
}

type mockShipmentRepo struct {
	mock.Mock
	repositories.ShipmentRepositoryInterface
}

func (m *mockShipmentRepo) GetStats(ctx context.Context, filter types.Filter, scope sq.Sqlizer) (types.StatusStats, error) {
	args := m.Called(filter)
	return args.Get(0).(types.StatusStats), args.Error(1)
}

func (m *mockShipmentRepo) FindByID(ctx context.Context, q repositories.Querier, id uint64) (*entities.Shipment, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Shipment), args.Error(1)
}

func (m *mockShipmentRepo) Update(ctx context.Context, tx pgx.Tx, s *entities.Shipment) error {
	return m.Called(s).Error(0)
}

type mockVendorRepo struct {
	mock.Mock
	repositories.VendorRepositoryInterface
}

func (m *mockVendorRepo) FindByID(ctx context.Context, q repositories.Querier, id uint64) (*entities.Vendor, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Vendor), args.Error(1)
}

type mockSubscriptionRepo struct {
	mock.Mock
	repositories.SubscriptionRepositoryInterface
}

func (m *mockSubscriptionRepo) GetStats(ctx context.Context, filter types.Filter, scope sq.Sqlizer) (types.StatusStats, error) {
	args := m.Called(filter)
	return args.Get(0).(types.StatusStats), args.Error(1)
}

func (m *mockSubscriptionRepo) FindByID(ctx context.Context, q repositories.Querier, id uint64) (*entities.Subscription, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Subscription), args.Error(1)
}

func (m *mockSubscriptionRepo) Create(ctx context.Context, tx pgx.Tx, s *entities.Subscription) error {
	s.ID = 1
	return m.Called(s).Error(0)
}

func (m *mockSubscriptionRepo) Update(ctx context.Context, tx pgx.Tx, s *entities.Subscription) error {
	return m.Called(s).Error(0)
}

type mockPaymentRepo struct {
	mock.Mock
	repositories.PaymentRepositoryInterface
}

func (m *mockPaymentRepo) GetStats(ctx context.Context, filter types.Filter, scope sq.Sqlizer) (types.StatusStats, error) {
	args := m.Called(filter)
	return args.Get(0).(types.StatusStats), args.Error(1)
}

func (m *mockPaymentRepo) SumCompleted(ctx context.Context, filter types.Filter, scope sq.Sqlizer) (decimal.Decimal, error) {
	args := m.Called(filter)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *mockPaymentRepo) Revenue(ctx context.Context, scope sq.Sqlizer, from, to time.Time) (decimal.Decimal, error) {
	args := m.Called(from, to)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *mockPaymentRepo) FindByID(ctx context.Context, q repositories.Querier, id uint64) (*entities.Payment, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Payment), args.Error(1)
}

func (m *mockPaymentRepo) Create(ctx context.Context, tx pgx.Tx, p *entities.Payment) error {
	p.ID = 1
	return m.Called(p).Error(0)
}

func (m *mockPaymentRepo) Update(ctx context.Context, tx pgx.Tx, p *entities.Payment) error {
	return m.Called(p).Error(0)
}

type mockComplaintRepo struct {
	mock.Mock
	repositories.ComplaintRepositoryInterface
}

func (m *mockComplaintRepo) GetStats(ctx context.Context, filter types.Filter, scope sq.Sqlizer) (types.StatusStats, error) {
	args := m.Called(filter)
	return args.Get(0).(types.StatusStats), args.Error(1)
}

func (m *mockComplaintRepo) FindByID(ctx context.Context, q repositories.Querier, id uint64) (*entities.Complaint, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Complaint), args.Error(1)
}

func (m *mockComplaintRepo) Create(ctx context.Context, tx pgx.Tx, c *entities.Complaint) error {
	c.ID = 1
	return m.Called(c).Error(0)
}

func (m *mockComplaintRepo) Update(ctx context.Context, tx pgx.Tx, c *entities.Complaint) error {
	return m.Called(c).Error(0)
}

type mockTicketRepo struct {
	mock.Mock
	repositories.TicketRepositoryInterface
}

func (m *mockTicketRepo) GetStats(ctx context.Context, filter types.Filter, scope sq.Sqlizer) (types.StatusStats, error) {
	args := m.Called(filter)
	return args.Get(0).(types.StatusStats), args.Error(1)
}

func (m *mockTicketRepo) FindByID(ctx context.Context, q repositories.Querier, id uint64) (*entities.Ticket, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Ticket), args.Error(1)
}

func (m *mockTicketRepo) Update(ctx context.Context, tx pgx.Tx, t *entities.Ticket) error {
	return m.Called(t).Error(0)
}

type mockReturnRepo struct {
	mock.Mock
	repositories.ReturnRepositoryInterface
}

func (m *mockReturnRepo) FindByID(ctx context.Context, q repositories.Querier, id uint64) (*entities.Return, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Return), args.Error(1)
}

func (m *mockReturnRepo) Create(ctx context.Context, tx pgx.Tx, r *entities.Return) error {
	r.ID = 1
	return m.Called(r).Error(0)
}

func (m *mockReturnRepo) Update(ctx context.Context, tx pgx.Tx, r *entities.Return) error {
	return m.Called(r).Error(0)
}

type mockRoleRepo struct {
	mock.Mock
	repositories.RoleRepositoryInterface
}

func (m *mockRoleRepo) FindByID(ctx context.Context, id uint64) (*entities.Role, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Role), args.Error(1)
}

func (m *mockRoleRepo) GetRolePermissionsNames(ctx context.Context, roleID uint64) ([]string, error) {
	args := m.Called(roleID)
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockRoleRepo) GetRolePermissions(ctx context.Context, roleID uint64) ([]entities.Permission, error) {
	args := m.Called(roleID)
	return args.Get(0).([]entities.Permission), args.Error(1)
}

func (m *mockRoleRepo) ReplacePermissions(ctx context.Context, tx pgx.Tx, roleID uint64, permissionIDs []uint64) error {
	return m.Called(roleID, permissionIDs).Error(0)
}

type mockPermissionRepo struct {
	mock.Mock
	repositories.PermissionRepositoryInterface
}

func (m *mockPermissionRepo) CountExisting(ctx context.Context, ids []uint64) (int, error) {
	args := m.Called(ids)
	return args.Int(0), args.Error(1)
}
