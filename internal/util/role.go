package util

import (
	"github.com/raven-med/radtag/internal/constant"
)

// roleRank orders membership roles: owner > admin > member. The zero rank is
// the absence of a membership row.
var roleRank = map[constant.MemberRole]int{
	constant.MemberRoleMember: 1,
	constant.MemberRoleAdmin:  2,
	constant.MemberRoleOwner:  3,
}

// RoleAtLeast reports whether role grants at least the capabilities of min.
// A missing role never satisfies any minimum.
func RoleAtLeast(role, min constant.MemberRole) bool {
	return roleRank[role] > 0 && roleRank[role] >= roleRank[min]
}
