package domain

import "time"

// Authority models a staff account permitted to change complaint status. An
// authority may optionally be bound to a single department.
type Authority struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	DepartmentID *int64
	CreatedAt    time.Time
}
