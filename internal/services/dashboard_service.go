package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"isp-system/internal/authz"
	"isp-system/internal/dto"
	"isp-system/internal/entities"
	"isp-system/internal/repositories"
	"isp-system/pkg/constants"
	"isp-system/pkg/types"
)

const recentActivityLimit = 10

// DashboardRepos - источники карточек дашборда.
type DashboardRepos struct {
	Complaints    repositories.ComplaintRepositoryInterface
	Tickets       repositories.TicketRepositoryInterface
	Tasks         repositories.TaskRepositoryInterface
	Subscriptions repositories.SubscriptionRepositoryInterface
	Orders        repositories.OrderRepositoryInterface
	Shipments     repositories.ShipmentRepositoryInterface
	Payments      repositories.PaymentRepositoryInterface
	Inventory     repositories.InventoryRepositoryInterface
	Leaves        repositories.LeaveRepositoryInterface
}

type DashboardService struct {
	*BaseService
	repos     DashboardRepos
	cacheRepo repositories.CacheRepositoryInterface
	cacheTTL  time.Duration
}

func NewDashboardService(base *BaseService, repos DashboardRepos, cacheRepo repositories.CacheRepositoryInterface, cacheTTL time.Duration) *DashboardService {
	return &DashboardService{BaseService: base, repos: repos, cacheRepo: cacheRepo, cacheTTL: cacheTTL}
}

// GetDashboard собирает карточки параллельно; секции, на которые у роли нет прав, пропускаются.
func (s *DashboardService) GetDashboard(ctx context.Context) (*dto.DashboardDTO, error) {
	actor, perms, err := s.authorize(ctx, authz.DashboardView, nil)
	if err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf(constants.CacheKeyDashboard, actor.ID)
	if cached, err := s.cacheRepo.Get(ctx, cacheKey); err == nil {
		var result dto.DashboardDTO
		if err := json.Unmarshal([]byte(cached), &result); err == nil {
			return &result, nil
		}
		s.logger.Warn("DashboardService: битое значение в кеше", zap.String("key", cacheKey))
	} else if !errors.Is(err, repositories.ErrCacheMiss) {
		s.logger.Warn("DashboardService: кеш недоступен", zap.Error(err))
	}

	result := &dto.DashboardDTO{RecentActivity: []entities.ActivityLog{}}
	can := func(permission string) bool {
		return authz.CanDo(permission, authz.ContextFor(actor, perms, nil))
	}
	scope := func(cols authz.Columns) sq.Sqlizer {
		return authz.ListScope(actor, perms, cols)
	}
	all := types.Filter{}

	g, gctx := errgroup.WithContext(ctx)

	statsCard := func(permission string, dst **types.StatusStats, cols authz.Columns, fetch func(context.Context, types.Filter, sq.Sqlizer) (types.StatusStats, error)) {
		if !can(permission) {
			return
		}
		g.Go(func() error {
			stats, err := fetch(gctx, all, scope(cols))
			if err != nil {
				return err
			}
			*dst = &stats
			return nil
		})
	}
	statsCard(authz.ComplaintsView, &result.Complaints, repositories.ComplaintScopeColumns, s.repos.Complaints.GetStats)
	statsCard(authz.TicketsView, &result.Tickets, repositories.TicketScopeColumns, s.repos.Tickets.GetStats)
	statsCard(authz.TasksView, &result.Tasks, repositories.TaskScopeColumns, s.repos.Tasks.GetStats)
	statsCard(authz.SubscriptionsView, &result.Subscriptions, repositories.SubscriptionScopeColumns, s.repos.Subscriptions.GetStats)
	statsCard(authz.OrdersView, &result.Orders, repositories.OrderScopeColumns, s.repos.Orders.GetStats)
	statsCard(authz.ShipmentsView, &result.Shipments, repositories.ShipmentScopeColumns, s.repos.Shipments.GetStats)

	if can(authz.PaymentsView) {
		g.Go(func() error {
			revenue, err := s.revenue(gctx, scope(repositories.PaymentScopeColumns))
			if err != nil {
				return err
			}
			result.Revenue = revenue
			return nil
		})
	}
	if can(authz.InventoryView) {
		g.Go(func() error {
			count, err := s.repos.Inventory.CountLowStock(gctx, scope(repositories.InventoryScopeColumns))
			if err != nil {
				return err
			}
			result.LowStockCount = &count
			return nil
		})
	}
	if can(authz.LeavesView) {
		g.Go(func() error {
			stats, err := s.repos.Leaves.GetStats(gctx, all, scope(repositories.LeaveScopeColumns))
			if err != nil {
				return err
			}
			pending := stats.ByStatus[constants.LeavePending]
			result.PendingLeaves = &pending
			return nil
		})
	}
	if can(authz.LogsView) {
		g.Go(func() error {
			logs, _, err := s.logRepo.GetLogs(gctx, types.Filter{Limit: recentActivityLimit, WithPagination: true}, scope(repositories.ActivityLogScopeColumns))
			if err != nil {
				return err
			}
			result.RecentActivity = logs
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.logger.Error("DashboardService: ошибка сборки дашборда", zap.Uint64("userID", actor.ID), zap.Error(err))
		return nil, err
	}

	if data, err := json.Marshal(result); err == nil {
		if err := s.cacheRepo.Set(ctx, cacheKey, string(data), s.cacheTTL); err != nil {
			s.logger.Warn("DashboardService: не удалось закешировать дашборд", zap.Error(err))
		}
	}
	return result, nil
}

// revenue - завершённые платежи текущего и прошлого месяца.
func (s *DashboardService) revenue(ctx context.Context, scope sq.Sqlizer) (*dto.RevenueDTO, error) {
	now := nowFunc()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	prevStart := monthStart.AddDate(0, -1, 0)

	current, err := s.repos.Payments.Revenue(ctx, scope, monthStart, monthStart.AddDate(0, 1, 0))
	if err != nil {
		return nil, err
	}
	previous, err := s.repos.Payments.Revenue(ctx, scope, prevStart, monthStart)
	if err != nil {
		return nil, err
	}
	return &dto.RevenueDTO{CurrentMonth: current, PreviousMonth: previous, TrendPercent: trendPercent(current, previous)}, nil
}

// trendPercent - изменение в процентах с точностью до десятых; от нуля рост считается как 100%.
func trendPercent(current, previous decimal.Decimal) float64 {
	if previous.IsZero() {
		if current.IsZero() {
			return 0
		}
		return 100
	}
	pct, _ := current.Sub(previous).Div(previous).Mul(decimal.NewFromInt(100)).Float64()
	return math.Round(pct*10) / 10
}
