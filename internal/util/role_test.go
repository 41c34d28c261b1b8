package util

import (
	"testing"

	"github.com/raven-med/radtag/internal/constant"
)

func TestRoleAtLeast(t *testing.T) {
	tests := []struct {
		name string
		role constant.MemberRole
		min  constant.MemberRole
		want bool
	}{
		{"Owner satisfies owner", constant.MemberRoleOwner, constant.MemberRoleOwner, true},
		{"Owner satisfies admin", constant.MemberRoleOwner, constant.MemberRoleAdmin, true},
		{"Owner satisfies member", constant.MemberRoleOwner, constant.MemberRoleMember, true},
		{"Admin satisfies admin", constant.MemberRoleAdmin, constant.MemberRoleAdmin, true},
		{"Admin does not satisfy owner", constant.MemberRoleAdmin, constant.MemberRoleOwner, false},
		{"Member satisfies member", constant.MemberRoleMember, constant.MemberRoleMember, true},
		{"Member does not satisfy admin", constant.MemberRoleMember, constant.MemberRoleAdmin, false},
		{"No membership satisfies nothing", constant.MemberRoleNone, constant.MemberRoleMember, false},
		{"No membership does not satisfy none", constant.MemberRoleNone, constant.MemberRoleNone, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RoleAtLeast(tt.role, tt.min); got != tt.want {
				t.Errorf("RoleAtLeast(%q, %q) = %v, want %v", tt.role, tt.min, got, tt.want)
			}
		})
	}
}
