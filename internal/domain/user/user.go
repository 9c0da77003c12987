// Package user provides the identity slice the messaging core depends on:
// account, role and the profile fields used for display-name resolution.
package user

import (
	"context"
	"strings"
	"time"
)

// Role is the closed set of marketplace roles.
type Role string

const (
	RoleContractor    Role = "contractor"
	RoleSubcontractor Role = "subcontractor"
	RoleHomeowner     Role = "homeowner"
	RoleSpecialist    Role = "specialist"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleContractor, RoleSubcontractor, RoleHomeowner, RoleSpecialist:
		return true
	}
	return false
}

// ContractorProfile carries the contractor fields used in conversation summaries.
type ContractorProfile struct {
	UserID       uint
	FirstName    *string
	LastName     *string
	BusinessName *string
	ImagePath    *string
}

// SubcontractorProfile carries the subcontractor fields used in conversation summaries.
type SubcontractorProfile struct {
	UserID    uint
	Name      *string
	ImagePath *string
}

// HomeownerProfile carries the homeowner fields used in conversation summaries.
type HomeownerProfile struct {
	UserID    uint
	Name      *string
	ImagePath *string
}

// SpecialistProfile carries the specialist fields used in conversation summaries.
type SpecialistProfile struct {
	UserID    uint
	Name      *string
	ImagePath *string
}

// User models an account with its role-specific profile loaded.
type User struct {
	ID        uint
	Email     string
	Role      Role
	CreatedAt time.Time

	Contractor    *ContractorProfile
	Subcontractor *SubcontractorProfile
	Homeowner     *HomeownerProfile
	Specialist    *SpecialistProfile
}

// DisplayName resolves the public name for a user. The fallback order is
// business name, then first+last name, then the stored profile name, then
// the account email.
func (u *User) DisplayName() string {
	switch u.Role {
	case RoleContractor:
		if p := u.Contractor; p != nil {
			if name := deref(p.BusinessName); name != "" {
				return name
			}
			full := strings.TrimSpace(deref(p.FirstName) + " " + deref(p.LastName))
			if full != "" {
				return full
			}
		}
	case RoleSubcontractor:
		if p := u.Subcontractor; p != nil {
			if name := deref(p.Name); name != "" {
				return name
			}
		}
	case RoleHomeowner:
		if p := u.Homeowner; p != nil {
			if name := deref(p.Name); name != "" {
				return name
			}
		}
	case RoleSpecialist:
		if p := u.Specialist; p != nil {
			if name := deref(p.Name); name != "" {
				return name
			}
		}
	}
	return u.Email
}

// AvatarPath returns the stored image reference for the user's active profile.
func (u *User) AvatarPath() *string {
	switch u.Role {
	case RoleContractor:
		if u.Contractor != nil {
			return u.Contractor.ImagePath
		}
	case RoleSubcontractor:
		if u.Subcontractor != nil {
			return u.Subcontractor.ImagePath
		}
	case RoleHomeowner:
		if u.Homeowner != nil {
			return u.Homeowner.ImagePath
		}
	case RoleSpecialist:
		if u.Specialist != nil {
			return u.Specialist.ImagePath
		}
	}
	return nil
}

// Repository defines storage operations for users. Implementations load the
// role-specific profile alongside the account row.
type Repository interface {
	FindByID(ctx context.Context, id uint) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
