package models

import (
	"time"

	"gorm.io/gorm"
)

// Application statuses
const (
	StatusDraft               = "draft"
	StatusSubmitted           = "submitted"
	StatusUnderReview         = "under_review"
	StatusPendingVerification = "pending_verification"
	StatusApproved            = "approved"
	StatusRejected            = "rejected"
	StatusAuditFlagged        = "audit_flagged"
)

// Compliance audit statuses
const (
	AuditNotSelected = "not_selected"
	AuditSelected    = "selected"
	AuditCompleted   = "completed"
	AuditFlagged     = "flagged"
)

// Ration card categories. AAY is the poorest tier, APL scores zero.
const (
	RationCardAAY  = "AAY"
	RationCardBPL  = "BPL"
	RationCardAPL  = "APL"
	RationCardNone = "none"
)

type Application struct {
	gorm.Model
	ApplicantID       uint             `json:"applicantId" gorm:"index;not null"`
	Version           uint             `json:"version" gorm:"default:1"` // optimistic lock for transitions
	PersonalDetails   PersonalDetails  `json:"personalDetails" gorm:"embedded;embeddedPrefix:personal_"`
	HouseholdDetails  HouseholdDetails `json:"householdDetails" gorm:"embedded;embeddedPrefix:household_"`
	IncomeDetails     IncomeDetails    `json:"incomeDetails" gorm:"embedded;embeddedPrefix:income_"`
	Documents         Documents        `json:"documents" gorm:"embedded;embeddedPrefix:doc_"`
	EligibilityScore  int              `json:"eligibilityScore" gorm:"default:0"`
	ScoringBreakdown  ScoringBreakdown `json:"scoringBreakdown" gorm:"embedded;embeddedPrefix:score_"`
	Status            string           `json:"status" gorm:"index;default:'draft'"`
	Verification      Verification     `json:"verification" gorm:"embedded;embeddedPrefix:verification_"`
	AuditStatus       string           `json:"auditStatus" gorm:"index;default:'not_selected'"`
	AuditDate         *time.Time       `json:"auditDate"`
	AuditOfficerID    *uint            `json:"auditOfficerId"`
	DigitalConsent    DigitalConsent   `json:"digitalConsent" gorm:"embedded;embeddedPrefix:consent_"`
	RejectionReason   string           `json:"rejectionReason" gorm:"default:''"`
	CertificateNumber string           `json:"certificateNumber" gorm:"default:''"`
	CertificateURL    string           `json:"certificateUrl" gorm:"default:''"`
}

type PersonalDetails struct {
	Name          string `json:"name" gorm:"default:''"`
	FatherName    string `json:"fatherName" gorm:"default:''"`
	DateOfBirth   string `json:"dateOfBirth" gorm:"default:''"`
	Gender        string `json:"gender" gorm:"default:''"` // male, female, other
	AadhaarNumber string `json:"aadhaarNumber" gorm:"index;default:''"`
	PanNumber     string `json:"panNumber" gorm:"default:''"`
}

type HouseholdDetails struct {
	FamilySize         int     `json:"familySize" gorm:"default:0"`
	RationCardNumber   string  `json:"rationCardNumber" gorm:"default:''"`
	RationCardCategory string  `json:"rationCardCategory" gorm:"default:''"` // AAY, BPL, APL, none
	Address            Address `json:"address" gorm:"embedded;embeddedPrefix:addr_"`
}

type Address struct {
	Street  string `json:"street" gorm:"default:''"`
	City    string `json:"city" gorm:"default:''"`
	State   string `json:"state" gorm:"default:''"`
	Pincode string `json:"pincode" gorm:"default:''"`
}

type IncomeDetails struct {
	AnnualIncome            float64  `json:"annualIncome" gorm:"default:0"`
	IncomeCertificateAmount *float64 `json:"incomeCertificateAmount"` // nil means no certificate supplied
	ItrFiled                bool     `json:"itrFiled" gorm:"default:false"`
	SelfDeclared            bool     `json:"selfDeclared" gorm:"default:false"`
}

type Documents struct {
	Aadhaar           string `json:"aadhaar" gorm:"default:''"`
	RationCard        string `json:"rationCard" gorm:"default:''"`
	IncomeCertificate string `json:"incomeCertificate" gorm:"default:''"`
	ElectricityBill   string `json:"electricityBill" gorm:"default:''"`
	Pan               string `json:"pan" gorm:"default:''"`
	AddressProof      string `json:"addressProof" gorm:"default:''"`
}

type ScoringBreakdown struct {
	RationCardScore  int `json:"rationCardScore" gorm:"default:0"`
	IncomeScore      int `json:"incomeScore" gorm:"default:0"`
	ElectricityScore int `json:"electricityScore" gorm:"default:0"`
	ItrScore         int `json:"itrScore" gorm:"default:0"`
	FamilySizeScore  int `json:"familySizeScore" gorm:"default:0"`
	TotalScore       int `json:"totalScore" gorm:"default:0"`
}

type Verification struct {
	VerifiedByID     *uint      `json:"verifiedBy"`
	VerifiedAt       *time.Time `json:"verifiedAt"`
	Remarks          string     `json:"remarks" gorm:"default:''"`
	IsManualOverride bool       `json:"isManualOverride" gorm:"default:false"`
	IsFraud          bool       `json:"isFraud" gorm:"default:false"`
	FraudReason      string     `json:"fraudReason" gorm:"default:''"`
}

type DigitalConsent struct {
	Accepted   bool       `json:"accepted" gorm:"default:false"`
	AcceptedAt *time.Time `json:"acceptedAt"`
	IPAddress  string     `json:"ipAddress" gorm:"default:''"`
}

// NonTerminalStatuses are the states in which an applicant still holds an
// open application; at most one of these may exist per applicant.
var NonTerminalStatuses = []string{StatusDraft, StatusSubmitted, StatusUnderReview, StatusPendingVerification}

// IsTerminal reports whether no further reviewer decision applies.
func (a *Application) IsTerminal() bool {
	return a.Status == StatusApproved || a.Status == StatusRejected || a.Status == StatusAuditFlagged
}

// SaveWithVersion persists the application guarded by the version the caller
// read. The version bump only succeeds for that exact version, so a
// concurrent writer surfaces as gorm.ErrRecordNotFound and nothing is saved.
func SaveWithVersion(tx *gorm.DB, app *Application, previousVersion uint) error {
	result := tx.Model(&Application{}).
		Where("id = ? AND version = ?", app.ID, previousVersion).
		Update("version", app.Version)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return tx.Save(app).Error
}
