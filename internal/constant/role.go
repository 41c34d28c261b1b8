package constant

// MemberRole is the role a user holds on a workspace or project through its
// membership table. Ordering: owner > admin > member.
type MemberRole string

const (
	MemberRoleOwner  MemberRole = "owner"
	MemberRoleAdmin  MemberRole = "admin"
	MemberRoleMember MemberRole = "member"
	// MemberRoleNone means no membership row exists.
	MemberRoleNone MemberRole = ""
)

// UserRole is the account-level role, independent of any workspace or project.
type UserRole string

const (
	UserRoleUser     UserRole = "user"
	UserRoleAdmin    UserRole = "admin"
	UserRoleReviewer UserRole = "reviewer"
)
