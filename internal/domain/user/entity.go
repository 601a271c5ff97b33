package user

import "time"

type Role string

const (
	RoleAdmin Role = "ADMIN" // Back-office administrator
	RoleStaff Role = "STAFF" // Branch worker subject to attendance
)

const (
	DefaultWorkStart = "09:00"
	DefaultWorkEnd   = "17:00"
)

type User struct {
	ID           string
	StaffID      string
	Name         string
	PasswordHash string
	Role         Role
	BranchID     *string
	WorkStart    *string
	WorkEnd      *string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Join
	BranchName *string
}

// Schedule is a worker's daily working hours as HH:MM strings in the civil zone.
type Schedule struct {
	WorkStart string
	WorkEnd   string
}

// Schedule returns the user's schedule with unset bounds replaced by defaults.
func (u *User) Schedule() Schedule {
	s := Schedule{WorkStart: DefaultWorkStart, WorkEnd: DefaultWorkEnd}
	if u.WorkStart != nil && *u.WorkStart != "" {
		s.WorkStart = *u.WorkStart
	}
	if u.WorkEnd != nil && *u.WorkEnd != "" {
		s.WorkEnd = *u.WorkEnd
	}
	return s
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// HasBranch reports whether the user is assigned to a branch.
func (u *User) HasBranch() bool {
	return u.BranchID != nil && *u.BranchID != ""
}
