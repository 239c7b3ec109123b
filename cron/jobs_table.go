package cron

import (
	"cardbase.GO/config"
	"cardbase.GO/cron/jobs"
)

// Map of job names to job functions
type CronJob struct {
	Schedule string
	Job      func(...string)
}

var CronJobs = map[string]CronJob{
	"orderexpiration": {Schedule: config.OrderExpirationSchedule(), Job: jobs.OrderExpirationJob},
	// Add more jobs here
}
