// Package scoring computes the deterministic eligibility score and resolves
// the suggested status for a submitted application. Both functions are pure:
// policy parameters come in as explicit arguments, loaded from the system
// config by the caller.
package scoring

import "gsp/models"

// Rules carries the policy weights for the five sub-scores.
type Rules struct {
	RationCard             map[string]int `json:"rationCard"`
	IncomeCertificate      int            `json:"incomeCertificate"`
	NoITR                  int            `json:"noITR"`
	ElectricityConsumption int            `json:"electricityConsumption"`
	FamilySize             FamilySizeRule `json:"familySize"`
}

type FamilySizeRule struct {
	Base       int `json:"base"`
	PerMember  int `json:"perMember"`
	MaxMembers int `json:"maxMembers"`
}

// Thresholds splits the total score into approve / borderline / reject bands.
type Thresholds struct {
	Eligibility int `json:"eligibilityThreshold"`
	Borderline  int `json:"borderlineThreshold"`
}

// DefaultRules is the fallback applied when no scoringRules config exists.
func DefaultRules() Rules {
	return Rules{
		RationCard: map[string]int{
			models.RationCardAAY: 70,
			models.RationCardBPL: 50,
			models.RationCardAPL: 0,
		},
		IncomeCertificate:      50,
		NoITR:                  20,
		ElectricityConsumption: 20,
		FamilySize:             FamilySizeRule{Base: 0, PerMember: 10, MaxMembers: 4},
	}
}

// DefaultThresholds is the fallback applied when no threshold config exists.
func DefaultThresholds() Thresholds {
	return Thresholds{Eligibility: 100, Borderline: 80}
}

// CalculateEligibilityScore derives the score breakdown from the
// application's household, income and document facts. Every sub-score is a
// non-negative integer and the total is their sum.
func CalculateEligibilityScore(app *models.Application, rules Rules) models.ScoringBreakdown {
	var breakdown models.ScoringBreakdown

	// Ration card: mapped categories score their configured points, APL and
	// unmapped categories contribute nothing.
	if category := app.HouseholdDetails.RationCardCategory; category != "" {
		breakdown.RationCardScore = rules.RationCard[category]
	}

	// Income certificate: presence of a certified amount triggers the bonus;
	// the amount itself is not a sliding scale.
	if app.IncomeDetails.IncomeCertificateAmount != nil {
		breakdown.IncomeScore = rules.IncomeCertificate
	}

	// No ITR filed is treated as a poverty signal.
	if !app.IncomeDetails.ItrFiled {
		breakdown.ItrScore = rules.NoITR
	}

	// An uploaded electricity bill stands in for low consumption; the bill
	// contents are never inspected.
	if app.Documents.ElectricityBill != "" {
		breakdown.ElectricityScore = rules.ElectricityConsumption
	}

	// Family size above the base household earns per-member points, capped
	// at two incremental members.
	familySize := app.HouseholdDetails.FamilySize
	if familySize > rules.FamilySize.MaxMembers {
		extra := familySize - rules.FamilySize.MaxMembers
		if extra > 2 {
			extra = 2
		}
		breakdown.FamilySizeScore = rules.FamilySize.PerMember * extra
	}

	breakdown.TotalScore = breakdown.RationCardScore +
		breakdown.IncomeScore +
		breakdown.ElectricityScore +
		breakdown.ItrScore +
		breakdown.FamilySizeScore

	return breakdown
}

// DetermineStatus resolves the suggested status for a total score. Callers
// must never persist the approved suggestion at submit time: all approvals
// require an explicit officer decision.
func DetermineStatus(score int, thresholds Thresholds) string {
	switch {
	case score >= thresholds.Eligibility:
		return models.StatusApproved
	case score >= thresholds.Borderline:
		return models.StatusPendingVerification
	default:
		return models.StatusRejected
	}
}
