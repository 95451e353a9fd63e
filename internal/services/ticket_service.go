package services

import (
	"context"
	"errors"

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

type TicketService struct {
	*BaseService
	repo          repositories.TicketRepositoryInterface
	complaintRepo repositories.ComplaintRepositoryInterface
	userRepo      repositories.UserRepositoryInterface
}

func NewTicketService(
	base *BaseService,
	repo repositories.TicketRepositoryInterface,
	complaintRepo repositories.ComplaintRepositoryInterface,
	userRepo repositories.UserRepositoryInterface,
) *TicketService {
	return &TicketService{BaseService: base, repo: repo, complaintRepo: complaintRepo, userRepo: userRepo}
}

func (s *TicketService) GetTickets(ctx context.Context, filter types.Filter) ([]entities.Ticket, uint64, error) {
	_, scope, err := s.scope(ctx, authz.TicketsView, repositories.TicketScopeColumns)
	if err != nil {
		return nil, 0, err
	}
	return s.repo.GetTickets(ctx, filter, scope)
}

func (s *TicketService) GetStats(ctx context.Context, filter types.Filter) (types.StatusStats, error) {
	_, scope, err := s.scope(ctx, authz.TicketsView, repositories.TicketScopeColumns)
	if err != nil {
		return types.StatusStats{}, err
	}
	return s.repo.GetStats(ctx, filter, scope)
}

func (s *TicketService) FindByID(ctx context.Context, id uint64) (*entities.Ticket, error) {
	ticket, err := s.repo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if _, _, err := s.authorize(ctx, authz.TicketsView, ticket); err != nil {
		return nil, err
	}
	return ticket, nil
}

func (s *TicketService) Create(ctx context.Context, payload dto.CreateTicketDTO) (*entities.Ticket, error) {
	actor, perms, err := s.authorize(ctx, authz.TicketsCreate, nil)
	if err != nil {
		return nil, err
	}

	var operatorID uint64
	if payload.ComplaintID != nil {
		complaint, err := s.complaintRepo.FindByID(ctx, nil, *payload.ComplaintID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, apperrors.NewInvalidInputError("жалоба %d не найдена", *payload.ComplaintID)
			}
			return nil, err
		}
		if _, _, err := s.authorize(ctx, authz.ComplaintsView, complaint); err != nil {
			return nil, err
		}
		operatorID = complaint.OperatorID
	} else if operatorID, err = resolveOperator(actor, perms, nil); err != nil {
		return nil, err
	}

	ticket := &entities.Ticket{
		OperatorID:  operatorID,
		ComplaintID: payload.ComplaintID,
		Title:       payload.Title,
		Description: payload.Description,
		Priority:    payload.Priority,
		Status:      constants.IssueOpen,
		CreatedBy:   actor.ID,
		AssignedTo:  payload.AssignedTo,
	}
	if ticket.Priority == "" {
		ticket.Priority = constants.PriorityMedium
	}
	if ticket.AssignedTo != nil {
		assignee, err := staffMember(ctx, s.userRepo, *ticket.AssignedTo, operatorID, "")
		if err != nil {
			return nil, err
		}
		ticket.AssigneeName = &assignee.Fio
	}

	err = s.inTx(ctx, actor, func(tx pgx.Tx, j *Journal) error {
		if err := s.repo.Create(ctx, tx, ticket); err != nil {
			return err
		}
		return j.Record(ctx, Change{
			EntityType: constants.EntityTicket, EntityID: ticket.ID, OperatorID: &ticket.OperatorID,
			Action: constants.ActionCreated, New: ticket, Recipients: recipients(ticket.AssignedTo),
		})
	})
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

func (s *TicketService) Update(ctx context.Context, id uint64, payload dto.UpdateTicketDTO, fields utils.Fields) (*entities.Ticket, error) {
	ticket, err := s.repo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	actor, _, err := s.authorize(ctx, authz.TicketsUpdate, ticket)
	if err != nil {
		return nil, err
	}
	if err := guardFinal(constants.EntityTicket, ticket.Status); err != nil {
		return nil, err
	}
	old := *ticket

	if payload.Title != nil {
		ticket.Title = *payload.Title
	}
	if payload.Description != nil {
		ticket.Description = *payload.Description
	}
	if payload.Priority != nil {
		ticket.Priority = *payload.Priority
	}
	if payload.Status != nil {
		ticket.Status = *payload.Status
	}
	if fields.Has("assigned_to") {
		ticket.AssignedTo = payload.AssignedTo.Ptr()
		ticket.AssigneeName = nil
		if ticket.AssignedTo != nil {
			assignee, err := staffMember(ctx, s.userRepo, *ticket.AssignedTo, ticket.OperatorID, "")
			if err != nil {
				return nil, err
			}
			ticket.AssigneeName = &assignee.Fio
		}
	}

	action := constants.ActionUpdated
	switch {
	case ticket.Status != old.Status:
		action = constants.ActionStatusChanged
	case !equalIDs(ticket.AssignedTo, old.AssignedTo):
		action = constants.ActionAssigned
	}

	if err := s.save(ctx, actor, &old, ticket, action); err != nil {
		return nil, err
	}
	return ticket, nil
}

// Escalate поднимает приоритет на ступень; critical остаётся critical.
func (s *TicketService) Escalate(ctx context.Context, id uint64) (*entities.Ticket, error) {
	ticket, err := s.repo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	actor, _, err := s.authorize(ctx, authz.TicketsUpdate, ticket)
	if err != nil {
		return nil, err
	}
	if err := guardFinal(constants.EntityTicket, ticket.Status); err != nil {
		return nil, err
	}
	old := *ticket
	ticket.Priority = constants.NextPriority(ticket.Priority)

	if err := s.save(ctx, actor, &old, ticket, constants.ActionEscalated); err != nil {
		return nil, err
	}
	return ticket, nil
}

func (s *TicketService) save(ctx context.Context, actor *authz.Actor, old, ticket *entities.Ticket, action string) error {
	return s.inTx(ctx, actor, func(tx pgx.Tx, j *Journal) error {
		if err := s.repo.Update(ctx, tx, ticket); err != nil {
			return err
		}
		return j.Record(ctx, Change{
			EntityType: constants.EntityTicket, EntityID: ticket.ID, OperatorID: &ticket.OperatorID,
			Action: action, Old: old, New: ticket, Recipients: recipients(ticket.AssignedTo),
		})
	})
}

func (s *TicketService) Delete(ctx context.Context, id uint64) error {
	ticket, err := s.repo.FindByID(ctx, nil, id)
	if err != nil {
		return err
	}
	actor, _, err := s.authorize(ctx, authz.TicketsDelete, ticket)
	if err != nil {
		return err
	}
	return s.inTx(ctx, actor, func(tx pgx.Tx, j *Journal) error {
		if err := s.repo.Delete(ctx, tx, id); err != nil {
			return err
		}
		return j.Record(ctx, Change{EntityType: constants.EntityTicket, EntityID: id, OperatorID: &ticket.OperatorID, Action: constants.ActionDeleted, Old: ticket})
	})
}
