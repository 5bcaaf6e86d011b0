package domain

// Session roles carried in JWT claims.
const (
	RoleAdmin = "admin"
	// RoleService is held by the listing source when it calls the events endpoint.
	RoleService = "service"
	RoleAgent   = "agent"
)
