package constants

// User status values
const (
	StatusActive  = "Active"
	StatusBlocked = "Blocked"
)

// Role catalog. The seeder guarantees these ids exist, so registration can
// always attach the default role.
const (
	RoleIDAdmin   uint = 1
	RoleIDManager uint = 2
	RoleIDUser    uint = 3

	DefaultRoleID = RoleIDUser
)

const (
	RoleNameAdmin   = "Admin"
	RoleNameManager = "Manager"
	RoleNameUser    = "User"
)

// Subject line for the reset-code email
const ResetEmailSubject = "reset password"
