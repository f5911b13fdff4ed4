package auth

import (
	"github.com/fekuna/omnipos-warehouse/internal/apperr"
	"github.com/fekuna/omnipos-warehouse/internal/model"
)

type ResourceKind int

const (
	KindBoard ResourceKind = iota + 1
	KindTask
	KindProduct
	KindInventory
	KindAttribute
	KindImport
	KindUser
)

type Action string

const (
	ActionRead          Action = "read"
	ActionCreate        Action = "create"
	ActionUpdate        Action = "update"
	ActionDelete        Action = "delete"
	ActionManageMembers Action = "manage_members"
	ActionStockIn       Action = "stock_in"
	ActionStockOut      Action = "stock_out"
	ActionAdjust        Action = "adjust"
)

// Resource identifies what an action targets. Board is set for board and task resources.
type Resource struct {
	Kind  ResourceKind
	Board *model.Board
}

func BoardResource(b *model.Board) Resource { return Resource{Kind: KindBoard, Board: b} }
func TaskResource(b *model.Board) Resource  { return Resource{Kind: KindTask, Board: b} }
func Catalog(kind ResourceKind) Resource    { return Resource{Kind: kind} }

var roleRank = map[string]int{
	model.RoleViewer: 1,
	model.RoleStaff:  2,
	model.RoleAdmin:  3,
}

// HasRole reports whether role is at least min.
func HasRole(role, min string) bool {
	return roleRank[role] >= roleRank[min] && roleRank[role] > 0
}

// Authorize is the single capability check used by every handler.
// Warehouse resources need a role, so board identities (no role) cannot reach them.
func Authorize(actor *Actor, res Resource, action Action) error {
	if actor == nil || actor.UserID == "" {
		return apperr.ErrUnauthenticated
	}

	switch res.Kind {
	case KindBoard:
		return authorizeBoard(actor, res.Board, action)
	case KindTask:
		if res.Board == nil || !res.Board.IsMember(actor.UserID) {
			return apperr.Forbidden("you must be a member of this board")
		}
		return nil
	case KindProduct:
		switch action {
		case ActionRead:
			return requireRole(actor, model.RoleViewer)
		case ActionDelete:
			return requireRole(actor, model.RoleAdmin)
		}
		return requireRole(actor, model.RoleStaff)
	case KindInventory:
		switch action {
		case ActionRead:
			return requireRole(actor, model.RoleViewer)
		case ActionAdjust:
			return requireRole(actor, model.RoleAdmin)
		}
		return requireRole(actor, model.RoleStaff)
	case KindAttribute:
		if action == ActionRead {
			return requireRole(actor, model.RoleViewer)
		}
		return requireRole(actor, model.RoleAdmin)
	case KindImport, KindUser:
		return requireRole(actor, model.RoleAdmin)
	}
	return apperr.Forbidden("unknown resource")
}

func authorizeBoard(actor *Actor, b *model.Board, action Action) error {
	if action == ActionCreate {
		return nil
	}
	if b == nil || !b.IsMember(actor.UserID) {
		return apperr.Forbidden("you must be a member of this board")
	}
	switch action {
	case ActionUpdate, ActionDelete, ActionManageMembers:
		if !b.IsOwner(actor.UserID) {
			return apperr.Forbidden("only the board owner can %s this board", verb(action))
		}
	}
	return nil
}

func verb(a Action) string {
	if a == ActionManageMembers {
		return "manage members of"
	}
	return string(a)
}

func requireRole(actor *Actor, min string) error {
	if !HasRole(actor.Role, min) {
		return apperr.Forbidden("%s role required", min)
	}
	return nil
}
