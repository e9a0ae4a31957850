package constants

const (
	// RoleLibrarian marks staff; librarians may run the lending desk
	// workflows and settle any member's fine.
	RoleLibrarian = "librarian"

	// RoleMember is the default unprivileged role.
	RoleMember = "member"
)
