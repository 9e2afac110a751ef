package models

// Role names created by the first-run bootstrap. Roles are immutable after
// seeding; everything else in the system refers to them by name.
const (
	RoleAdmin = "admin"
	RoleParty = "party"
)

type Role struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
