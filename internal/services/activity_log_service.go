package services

import (
	"context"

	"isp-system/internal/authz"
	"isp-system/internal/entities"
	"isp-system/internal/repositories"
	"isp-system/pkg/types"
)

type ActivityLogService struct {
	*BaseService
}

func NewActivityLogService(base *BaseService) *ActivityLogService {
	return &ActivityLogService{BaseService: base}
}

func (s *ActivityLogService) GetLogs(ctx context.Context, filter types.Filter) ([]entities.ActivityLog, uint64, error) {
	_, scope, err := s.scope(ctx, authz.LogsView, repositories.ActivityLogScopeColumns)
	if err != nil {
		return nil, 0, err
	}
	return s.logRepo.GetLogs(ctx, filter, scope)
}
