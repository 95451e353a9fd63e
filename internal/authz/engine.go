package authz

import (
	"context"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"isp-system/pkg/contextkeys"
	apperrors "isp-system/pkg/errors"
)

// Actor - текущий пользователь, собранный из claims токена.
type Actor struct {
	ID         uint64
	RoleID     uint64
	RoleCode   string
	OperatorID *uint64
	VendorID   *uint64
}

// Scoped - сущность, принадлежащая оператору и (опционально) конкретным пользователям.
type Scoped interface {
	ScopeOperatorID() *uint64
	ScopeOwnerIDs() []uint64
}

// VendorScoped - сущность, принадлежащая поставщику.
type VendorScoped interface {
	ScopeVendorID() *uint64
}

// OperatorShared - сущность видна всем пользователям своего оператора (тарифы).
type OperatorShared interface {
	SharedWithinOperator() bool
}

type Context struct {
	Actor             *Actor
	Permissions       map[string]bool
	Target            interface{}
	CurrentPermission string
}

func (c *Context) HasPermission(permission string) bool {
	if c.Permissions == nil {
		return false
	}
	return c.Permissions[permission]
}

func getAction(permission string) string {
	parts := strings.Split(permission, ":")
	if len(parts) > 1 {
		return parts[1]
	}
	return ""
}

func sameID(a, b *uint64) bool {
	return a != nil && b != nil && *a == *b
}

// canAccessTarget - ABAC по области действия роли.
func canAccessTarget(ctx Context, target Scoped) bool {
	actor := ctx.Actor
	if actor == nil {
		return false
	}

	if ctx.HasPermission(ScopeAll) {
		return true
	}

	if ctx.HasPermission(ScopeOperator) && sameID(actor.OperatorID, target.ScopeOperatorID()) {
		return true
	}

	if ctx.HasPermission(ScopeOwn) {
		for _, id := range target.ScopeOwnerIDs() {
			if id == actor.ID {
				return true
			}
		}
		if v, ok := target.(VendorScoped); ok && sameID(actor.VendorID, v.ScopeVendorID()) {
			return true
		}
		// Общие справочники оператора доступны только на чтение
		if s, ok := target.(OperatorShared); ok && s.SharedWithinOperator() && getAction(ctx.CurrentPermission) == "view" {
			return sameID(actor.OperatorID, target.ScopeOperatorID())
		}
	}

	return false
}

func CanDo(permission string, ctx Context) bool {
	// 1. Фиксация права
	ctx.CurrentPermission = permission

	// 2. Superuser
	if ctx.HasPermission(Superuser) {
		return true
	}

	// 3. Есть ли право вообще (RBAC)
	if !ctx.HasPermission(permission) {
		return false
	}

	// 4. Без цели - разрешено (например создание)
	if ctx.Target == nil {
		return true
	}

	// 5. Проверка цели (ABAC)
	if target, ok := ctx.Target.(Scoped); ok {
		return canAccessTarget(ctx, target)
	}
	return true
}

// Columns - колонки таблицы, по которым ограничивается выборка.
type Columns struct {
	Operator       string
	Owner          []string
	Vendor         string
	OperatorShared bool
}

// ListScope строит условие видимости строк для списка. nil - без ограничений.
func ListScope(actor *Actor, perms map[string]bool, cols Columns) sq.Sqlizer {
	if perms[Superuser] || perms[ScopeAll] {
		return nil
	}
	if actor == nil {
		return sq.Expr("1 = 0")
	}

	conds := sq.Or{}

	if perms[ScopeOperator] && cols.Operator != "" && actor.OperatorID != nil {
		conds = append(conds, sq.Eq{cols.Operator: *actor.OperatorID})
	}

	if perms[ScopeOwn] {
		for _, col := range cols.Owner {
			conds = append(conds, sq.Eq{col: actor.ID})
		}
		if cols.Vendor != "" && actor.VendorID != nil {
			conds = append(conds, sq.Eq{cols.Vendor: *actor.VendorID})
		}
		if cols.OperatorShared && cols.Operator != "" && actor.OperatorID != nil {
			conds = append(conds, sq.Eq{cols.Operator: *actor.OperatorID})
		}
	}

	if len(conds) == 0 {
		return sq.Expr("1 = 0")
	}
	return conds
}

// ActorFromContext собирает Actor и привилегии из контекста запроса.
func ActorFromContext(ctx context.Context) (*Actor, map[string]bool, error) {
	userID, ok := ctx.Value(contextkeys.UserIDKey).(uint64)
	if !ok || userID == 0 {
		return nil, nil, apperrors.ErrUnauthorized
	}
	perms, ok := ctx.Value(contextkeys.UserPermissionsMapKey).(map[string]bool)
	if !ok || perms == nil {
		return nil, nil, apperrors.ErrForbidden
	}

	actor := &Actor{ID: userID}
	actor.RoleID, _ = ctx.Value(contextkeys.RoleIDKey).(uint64)
	actor.RoleCode, _ = ctx.Value(contextkeys.RoleCodeKey).(string)
	actor.OperatorID, _ = ctx.Value(contextkeys.OperatorIDKey).(*uint64)
	actor.VendorID, _ = ctx.Value(contextkeys.VendorIDKey).(*uint64)

	return actor, perms, nil
}

// ContextFor - короткий конструктор Context для сервисов.
func ContextFor(actor *Actor, perms map[string]bool, target interface{}) Context {
	return Context{Actor: actor, Permissions: perms, Target: target}
}
