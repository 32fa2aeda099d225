package models

type ApplicationType string
type ScrapingStatus string

const (
	ApplicationTypeTrainee ApplicationType = "trainee"
	ApplicationTypeTrainer ApplicationType = "trainer"
)

// Scraping status state machine: pending -> {completed | failed | not_applicable}.
// Terminal states never transition again.
const (
	ScrapingStatusPending       ScrapingStatus = "pending"
	ScrapingStatusCompleted     ScrapingStatus = "completed"
	ScrapingStatusFailed        ScrapingStatus = "failed"
	ScrapingStatusNotApplicable ScrapingStatus = "not_applicable"
)
