package rbac

// Role names carried in access tokens. Keep these stable; cmd/token mints them.
const (
	RoleOperator = "operator"
	RoleAdmin    = "admin"
)

func IsAdmin(role string) bool { return role == RoleAdmin }

func Valid(role string) bool { return role == RoleOperator || role == RoleAdmin }
