package models

// Market is a physical produce market. Markets are reference data: created
// at system initialization and never mutated. Every other entity is owned
// by exactly one market via its MarketID.
type Market struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	District string `json:"district"`
}

// UserRole enumerates the capability levels the UI layer passes along when
// triggering privileged operations.
type UserRole string

const (
	RoleCollector UserRole = "COLLECTOR"
	RoleAdmin     UserRole = "ADMIN"
	RoleFarmer    UserRole = "FARMER"
)

// User is the session identity supplied by the calling layer. The core only
// inspects Role.
type User struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Role  UserRole `json:"role"`
}

// CanTriggerSummaries reports whether the role is allowed to dispatch the
// daily summary run.
func (r UserRole) CanTriggerSummaries() bool {
	return r == RoleCollector || r == RoleAdmin
}
