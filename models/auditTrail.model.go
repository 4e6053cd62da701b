package models

import (
	"encoding/json"
	"log"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Audit trail action tags (closed enumeration)
const (
	ActionCreated           = "created"
	ActionSubmitted         = "submitted"
	ActionModified          = "modified"
	ActionApproved          = "approved"
	ActionRejected          = "rejected"
	ActionManualOverride    = "manual_override"
	ActionFraudMarked       = "fraud_marked"
	ActionAuditSelected     = "audit_selected"
	ActionAuditCompleted    = "audit_completed"
	ActionScoreCalculated   = "score_calculated"
	ActionConsentAccepted   = "consent_accepted"
	ActionUserCreated       = "user_created"
	ActionUserRoleUpdated   = "user_role_updated"
	ActionUserStatusUpdated = "user_status_updated"
)

// AuditTrail is the append-only action log. Entries are never mutated or
// deleted; every state-changing operation writes exactly one.
type AuditTrail struct {
	gorm.Model
	ApplicationID *uint          `json:"applicationId" gorm:"index"` // nil for admin-level actions
	UserID        uint           `json:"userId" gorm:"index;not null"`
	Action        string         `json:"action" gorm:"not null"`
	Details       datatypes.JSON `json:"details"`
	IPAddress     string         `json:"ipAddress" gorm:"default:''"`
	UserAgent     string         `json:"userAgent" gorm:"default:''"`
}

// RecordAudit appends one trail entry. Call it inside the same transaction
// as the mutation it describes so the pair commits or rolls back together.
func RecordAudit(tx *gorm.DB, applicationID *uint, userID uint, action string, details map[string]interface{}, ip string) error {
	var raw datatypes.JSON
	if details != nil {
		b, err := json.Marshal(details)
		if err != nil {
			log.Printf("Error marshalling audit details for action %s: %v", action, err)
		} else {
			raw = b
		}
	}

	entry := AuditTrail{
		ApplicationID: applicationID,
		UserID:        userID,
		Action:        action,
		Details:       raw,
		IPAddress:     ip,
	}
	return tx.Create(&entry).Error
}
