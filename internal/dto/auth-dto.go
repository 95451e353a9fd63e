package dto

type LoginDTO struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

type RefreshTokenDTO struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

type AuthResponseDTO struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	User         UserPublicDTO `json:"user"`
}

type UserPublicDTO struct {
	ID          uint64   `json:"id"`
	Fio         string   `json:"fio"`
	Email       string   `json:"email"`
	Phone       *string  `json:"phone,omitempty"`
	RoleID      uint64   `json:"role_id"`
	RoleCode    string   `json:"role_code"`
	RoleName    string   `json:"role_name"`
	OperatorID  *uint64  `json:"operator_id"`
	VendorID    *uint64  `json:"vendor_id,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
}
