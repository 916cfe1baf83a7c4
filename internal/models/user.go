package models

import (
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Role enum
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
)

// UserStatus represents an account's standing. Inactive and blacklisted
// accounts cannot authenticate and cannot be party to new appointments.
type UserStatus string

const (
	UserActive      UserStatus = "active"
	UserInactive    UserStatus = "inactive"
	UserBlacklisted UserStatus = "blacklisted"
)

// Credential is embedded in every user table. Admin, Doctor and Patient are
// separate tables rather than one polymorphic user table; email is unique
// within each table, not across them.
type Credential struct {
	Email        string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string `gorm:"size:255;not null" json:"-"` // Never send password in JSON
}

// SetPassword hashes a password and sets it on the credential
func (c *Credential) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	c.PasswordHash = string(hashedPassword)
	return nil
}

// CheckPassword compares a password with the stored hash
func (c *Credential) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(password))
	return err == nil
}

// Admin represents a hospital administrator
type Admin struct {
	BaseModel
	Username string `gorm:"uniqueIndex;size:80;not null" json:"username"`
	Credential
}

// EnsureDefaultAdmin seeds the first administrator account when the admin
// table is empty, so a fresh deployment can be administered at all. Returns
// true when an admin was created.
func EnsureDefaultAdmin(db *gorm.DB, username, email, password string) (bool, error) {
	var count int64
	if err := db.Model(&Admin{}).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	admin := Admin{Username: username}
	admin.Email = email
	if err := admin.SetPassword(password); err != nil {
		return false, err
	}
	if err := db.Create(&admin).Error; err != nil {
		return false, err
	}
	return true, nil
}

// Patient represents a patient account
type Patient struct {
	BaseModel
	Name    string     `gorm:"size:80;not null" json:"name"`
	Age     *int       `json:"age,omitempty"`
	Gender  string     `gorm:"size:10" json:"gender"`
	Phone   string     `gorm:"size:20" json:"phone"`
	Address string     `gorm:"size:255" json:"address,omitempty"`
	Status  UserStatus `gorm:"size:20;default:'active'" json:"status"`
	Notes   string     `gorm:"type:text" json:"notes,omitempty"`
	Credential

	// Relations (not always preloaded)
	Appointments []Appointment `gorm:"foreignKey:PatientID" json:"-"`
}

// IsActive reports whether the patient may authenticate or be booked.
func (p *Patient) IsActive() bool {
	return p.Status == UserActive
}
