package entities

import (
	"time"

	"crewlink-server/services/messaging-api/internal/domain/user"
)

// User represents the database schema for user accounts.
type User struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	Email string `gorm:"type:varchar(255);uniqueIndex;not null"`
	Role  string `gorm:"type:varchar(32);not null"`

	ContractorProfile    *ContractorProfile    `gorm:"foreignKey:UserID"`
	SubcontractorProfile *SubcontractorProfile `gorm:"foreignKey:UserID"`
	HomeownerProfile     *HomeownerProfile     `gorm:"foreignKey:UserID"`
	SpecialistProfile    *SpecialistProfile    `gorm:"foreignKey:UserID"`
}

// TableName specifies the table name for User.
func (User) TableName() string {
	return "users"
}

// ContractorProfile stores contractor-specific profile fields.
type ContractorProfile struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"uniqueIndex;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	FirstName    *string `gorm:"type:varchar(128)"`
	LastName     *string `gorm:"type:varchar(128)"`
	BusinessName *string `gorm:"type:varchar(256)"`
	ImagePath    *string `gorm:"type:varchar(512)"`
}

// TableName specifies the table name for ContractorProfile.
func (ContractorProfile) TableName() string {
	return "contractor_profiles"
}

// SubcontractorProfile stores subcontractor-specific profile fields.
type SubcontractorProfile struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"uniqueIndex;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	Name      *string `gorm:"type:varchar(256)"`
	ImagePath *string `gorm:"type:varchar(512)"`
}

// TableName specifies the table name for SubcontractorProfile.
func (SubcontractorProfile) TableName() string {
	return "subcontractor_profiles"
}

// HomeownerProfile stores homeowner-specific profile fields.
type HomeownerProfile struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"uniqueIndex;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	Name      *string `gorm:"type:varchar(256)"`
	ImagePath *string `gorm:"type:varchar(512)"`
}

// TableName specifies the table name for HomeownerProfile.
func (HomeownerProfile) TableName() string {
	return "homeowner_profiles"
}

// SpecialistProfile stores specialist-specific profile fields.
type SpecialistProfile struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"uniqueIndex;not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	Name      *string `gorm:"type:varchar(256)"`
	ImagePath *string `gorm:"type:varchar(512)"`
}

// TableName specifies the table name for SpecialistProfile.
func (SpecialistProfile) TableName() string {
	return "specialist_profiles"
}

// EtoD converts database entity to domain model.
func (u *User) EtoD() *user.User {
	out := &user.User{
		ID:        u.ID,
		Email:     u.Email,
		Role:      user.Role(u.Role),
		CreatedAt: u.CreatedAt,
	}
	if p := u.ContractorProfile; p != nil {
		out.Contractor = &user.ContractorProfile{
			UserID:       p.UserID,
			FirstName:    p.FirstName,
			LastName:     p.LastName,
			BusinessName: p.BusinessName,
			ImagePath:    p.ImagePath,
		}
	}
	if p := u.SubcontractorProfile; p != nil {
		out.Subcontractor = &user.SubcontractorProfile{
			UserID:    p.UserID,
			Name:      p.Name,
			ImagePath: p.ImagePath,
		}
	}
	if p := u.HomeownerProfile; p != nil {
		out.Homeowner = &user.HomeownerProfile{
			UserID:    p.UserID,
			Name:      p.Name,
			ImagePath: p.ImagePath,
		}
	}
	if p := u.SpecialistProfile; p != nil {
		out.Specialist = &user.SpecialistProfile{
			UserID:    p.UserID,
			Name:      p.Name,
			ImagePath: p.ImagePath,
		}
	}
	return out
}
