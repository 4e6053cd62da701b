package audit

import (
	"gsp/database"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// InitializeAuditScheduler sets up the monthly compliance sampling job
func InitializeAuditScheduler() *cron.Cron {
	log.Println("[AUDIT-SCHEDULER] Initializing audit scheduler...")

	c := cron.New()

	// Run on the 1st of every month at 2 AM, sampling the previous month
	c.AddFunc("0 2 1 * *", func() {
		prev := time.Now().AddDate(0, -1, 0)
		month := int(prev.Month())
		year := prev.Year()

		log.Printf("[AUDIT-SCHEDULER] Running compliance sampling for %d/%d...", month, year)

		db := database.Database.Db
		cfg := LoadSamplingConfig(db)
		selected, err := SelectRandomAudits(db, month, year, cfg, nil)
		if err != nil {
			log.Printf("[AUDIT-SCHEDULER] Error selecting audits: %v", err)
			return
		}
		log.Printf("[AUDIT-SCHEDULER] Selected %d applications for compliance audit", len(selected))
	})

	c.Start()
	log.Println("[AUDIT-SCHEDULER] Audit scheduler started - runs on the 1st of every month")
	return c
}
