package dto

type UpdateRolePermissionsDTO struct {
	PermissionIDs []uint64 `json:"permission_ids" validate:"omitempty,dive,gt=0"`
}
