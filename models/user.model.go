package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleApplicant           = "applicant"
	RoleVerificationOfficer = "verification_officer"
	RoleAdmin               = "admin"
)

type User struct {
	gorm.Model
	Name       string     `json:"name" gorm:"not null"`
	Email      string     `json:"email" gorm:"unique;not null"`
	Mobile     string     `json:"mobile" gorm:"index;default:''"`
	Password   string     `json:"-" gorm:"not null"`
	Role       string     `json:"role" gorm:"default:'applicant'"` // applicant, verification_officer, admin
	OTP        OTPDetails `json:"-" gorm:"embedded;embeddedPrefix:otp_"`
	IsVerified bool       `json:"isVerified" gorm:"default:true"`
	IsActive   bool       `json:"isActive" gorm:"default:true"`
	LastLogin  *time.Time `json:"lastLogin"`
}

type OTPDetails struct {
	Code      string     `gorm:"default:''"`
	ExpiresAt *time.Time `gorm:"default:NULL"`
}
