package authz

import (
	"fmt"

	"github.com/mmynk/tripbite/internal/apperr"
	"github.com/mmynk/tripbite/internal/models"
)

// Operation names a guarded group operation.
type Operation int

const (
	OpReadGroup Operation = iota
	OpUpdateGroup
	OpDeleteGroup
	OpRemoveMember
	OpLeaveGroup
	OpJoinGroup
)

func (op Operation) String() string {
	switch op {
	case OpReadGroup:
		return "read group"
	case OpUpdateGroup:
		return "update group"
	case OpDeleteGroup:
		return "delete group"
	case OpRemoveMember:
		return "remove member"
	case OpLeaveGroup:
		return "leave group"
	case OpJoinGroup:
		return "join group"
	default:
		return fmt.Sprintf("operation(%d)", int(op))
	}
}

// Check applies the capability rule of op for callerID against g.
// target is only used by OpRemoveMember.
//
//	read, update  caller is a member
//	delete        caller is the creator
//	remove        caller is the creator, target is another member
//	leave         caller is a member other than the creator
//	join          join is unlocked, caller is not yet a member
func Check(op Operation, callerID string, g *models.Group, target string) error {
	switch op {
	case OpReadGroup, OpUpdateGroup:
		if !g.IsMember(callerID) {
			return apperr.Forbidden("only group members can " + op.String())
		}
	case OpDeleteGroup:
		if callerID != g.CreatorID {
			return apperr.Forbidden("only the group creator can delete the group")
		}
	case OpRemoveMember:
		if callerID != g.CreatorID {
			return apperr.Forbidden("only the group creator can remove members")
		}
		if target == callerID {
			return apperr.Forbidden("the creator cannot remove themselves; delete the group instead")
		}
		if !g.IsMember(target) {
			return apperr.NotFound(fmt.Sprintf("user %s is not a member of this group", target))
		}
	case OpLeaveGroup:
		if !g.IsMember(callerID) {
			return apperr.Forbidden("you are not a member of this group")
		}
		if callerID == g.CreatorID {
			return apperr.Forbidden("the creator cannot leave the group; delete the group instead")
		}
	case OpJoinGroup:
		if g.LockJoin {
			return apperr.Forbidden("this group is not accepting new members")
		}
		if g.IsMember(callerID) {
			return apperr.Conflict("you are already a member of this group")
		}
	default:
		return apperr.Forbidden("unknown operation")
	}
	return nil
}

// CheckProfile allows a user to change only their own profile.
func CheckProfile(callerID, targetID string) error {
	if callerID != targetID {
		return apperr.Forbidden("you can only update your own profile")
	}
	return nil
}
