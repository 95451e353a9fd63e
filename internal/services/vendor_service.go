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

type VendorService struct {
	*BaseService
	repo     repositories.VendorRepositoryInterface
	userRepo repositories.UserRepositoryInterface
}

func NewVendorService(base *BaseService, repo repositories.VendorRepositoryInterface, userRepo repositories.UserRepositoryInterface) *VendorService {
	return &VendorService{BaseService: base, repo: repo, userRepo: userRepo}
}

func (s *VendorService) GetVendors(ctx context.Context, filter types.Filter) ([]entities.Vendor, uint64, error) {
	_, scope, err := s.scope(ctx, authz.VendorsView, repositories.VendorScopeColumns)
	if err != nil {
		return nil, 0, err
	}
	return s.repo.GetVendors(ctx, filter, scope)
}

func (s *VendorService) GetStats(ctx context.Context, filter types.Filter) (types.StatusStats, error) {
	_, scope, err := s.scope(ctx, authz.VendorsView, repositories.VendorScopeColumns)
	if err != nil {
		return types.StatusStats{}, err
	}
	return s.repo.GetStats(ctx, filter, scope)
}

func (s *VendorService) FindByID(ctx context.Context, id uint64) (*entities.Vendor, error) {
	vendor, err := s.repo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if _, _, err := s.authorize(ctx, authz.VendorsView, vendor); err != nil {
		return nil, err
	}
	return vendor, nil
}

// vendorLogin - учётка поставщика должна иметь роль VENDOR и быть у того же оператора.
func (s *VendorService) vendorLogin(ctx context.Context, userID, operatorID uint64) error {
	user, err := s.userRepo.FindByID(ctx, nil, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NewInvalidInputError("пользователь %d не найден", userID)
		}
		return err
	}
	if user.RoleCode != constants.RoleVendor {
		return apperrors.NewInvalidInputError("пользователь %d не имеет роли VENDOR", userID)
	}
	if user.OperatorID == nil || *user.OperatorID != operatorID {
		return apperrors.NewInvalidInputError("пользователь %d принадлежит другому оператору", userID)
	}
	return nil
}

func (s *VendorService) Create(ctx context.Context, payload dto.CreateVendorDTO) (*entities.Vendor, error) {
	actor, perms, err := s.authorize(ctx, authz.VendorsCreate, nil)
	if err != nil {
		return nil, err
	}
	operatorID, err := resolveOperator(actor, perms, payload.OperatorID)
	if err != nil {
		return nil, err
	}
	if payload.UserID != nil {
		if err := s.vendorLogin(ctx, *payload.UserID, operatorID); err != nil {
			return nil, err
		}
	}

	vendor := &entities.Vendor{
		OperatorID:    operatorID,
		UserID:        payload.UserID,
		Name:          payload.Name,
		ContactPerson: payload.ContactPerson,
		Email:         payload.Email,
		Phone:         normalizedPhone(payload.Phone),
		Address:       payload.Address,
		Status:        payload.Status,
	}
	if vendor.Status == "" {
		vendor.Status = constants.StatusActive
	}

	err = s.inTx(ctx, actor, func(tx pgx.Tx, j *Journal) error {
		if err := s.repo.Create(ctx, tx, vendor); err != nil {
			return err
		}
		return j.Record(ctx, Change{EntityType: constants.EntityVendor, EntityID: vendor.ID, OperatorID: &vendor.OperatorID, Action: constants.ActionCreated, New: vendor})
	})
	if err != nil {
		return nil, err
	}
	return vendor, nil
}

func (s *VendorService) Update(ctx context.Context, id uint64, payload dto.UpdateVendorDTO, fields utils.Fields) (*entities.Vendor, error) {
	vendor, err := s.repo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	actor, _, err := s.authorize(ctx, authz.VendorsUpdate, vendor)
	if err != nil {
		return nil, err
	}
	// поставщик правит себя только через профиль
	if actor.RoleCode == constants.RoleVendor {
		return nil, apperrors.ErrForbidden
	}
	old := *vendor

	if fields.Has("user_id") {
		vendor.UserID = payload.UserID.Ptr()
		if vendor.UserID != nil {
			if err := s.vendorLogin(ctx, *vendor.UserID, vendor.OperatorID); err != nil {
				return nil, err
			}
		}
	}
	if payload.Name != nil {
		vendor.Name = *payload.Name
	}
	if payload.Status != nil {
		vendor.Status = *payload.Status
	}
	applyContacts(vendor, payload.ContactPerson, payload.Email, payload.Phone, payload.Address, fields)

	if err := s.save(ctx, actor, &old, vendor); err != nil {
		return nil, err
	}
	return vendor, nil
}

// GetProfile - карточка поставщика, привязанная к текущей учётке.
func (s *VendorService) GetProfile(ctx context.Context) (*entities.Vendor, error) {
	actor, _, err := s.authorize(ctx, authz.VendorsView, nil)
	if err != nil {
		return nil, err
	}
	return s.repo.FindByUserID(ctx, actor.ID)
}

func (s *VendorService) UpdateProfile(ctx context.Context, payload dto.VendorProfileDTO, fields utils.Fields) (*entities.Vendor, error) {
	actor, _, err := s.authorize(ctx, authz.VendorsUpdate, nil)
	if err != nil {
		return nil, err
	}
	vendor, err := s.repo.FindByUserID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	old := *vendor

	applyContacts(vendor, payload.ContactPerson, payload.Email, payload.Phone, payload.Address, fields)

	if err := s.save(ctx, actor, &old, vendor); err != nil {
		return nil, err
	}
	return vendor, nil
}

func (s *VendorService) save(ctx context.Context, actor *authz.Actor, old, vendor *entities.Vendor) error {
	action := constants.ActionUpdated
	if vendor.Status != old.Status {
		action = constants.ActionStatusChanged
	}
	return s.inTx(ctx, actor, func(tx pgx.Tx, j *Journal) error {
		if err := s.repo.Update(ctx, tx, vendor); err != nil {
			return err
		}
		return j.Record(ctx, Change{
			EntityType: constants.EntityVendor, EntityID: vendor.ID, OperatorID: &vendor.OperatorID,
			Action: action, Old: old, New: vendor, Recipients: recipients(vendor.UserID),
		})
	})
}

func (s *VendorService) Delete(ctx context.Context, id uint64) error {
	vendor, err := s.repo.FindByID(ctx, nil, id)
	if err != nil {
		return err
	}
	actor, _, err := s.authorize(ctx, authz.VendorsDelete, vendor)
	if err != nil {
		return err
	}
	return s.inTx(ctx, actor, func(tx pgx.Tx, j *Journal) error {
		if err := s.repo.Delete(ctx, tx, id); err != nil {
			return err
		}
		return j.Record(ctx, Change{EntityType: constants.EntityVendor, EntityID: id, OperatorID: &vendor.OperatorID, Action: constants.ActionDeleted, Old: vendor})
	})
}

type nullString interface{ Ptr() *string }

func applyContacts(v *entities.Vendor, contact, email, phone, address nullString, fields utils.Fields) {
	if fields.Has("contact_person") {
		v.ContactPerson = contact.Ptr()
	}
	if fields.Has("email") {
		v.Email = email.Ptr()
	}
	if fields.Has("phone") {
		v.Phone = normalizedPhone(phone.Ptr())
	}
	if fields.Has("address") {
		v.Address = address.Ptr()
	}
}
