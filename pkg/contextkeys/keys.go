package contextkeys

type contextKey string

const (
	UserIDKey             contextKey = "UserID"
	RoleIDKey             contextKey = "RoleID"
	RoleCodeKey           contextKey = "RoleCode"
	OperatorIDKey         contextKey = "OperatorID"
	VendorIDKey           contextKey = "VendorID"
	UserPermissionsMapKey contextKey = "userPermissionsMap"
	TokenIDKey            contextKey = "TokenID"
	TokenExpiresAtKey     contextKey = "TokenExpiresAt"
)
