package models

import (
	"time"

	"gorm.io/datatypes"
)

// Application is one row per submitted training-program application.
//
// NationalID, Telephone and Email hold ciphertext produced by the field
// codec; the matching *Digest columns hold a keyed hash of the normalized
// plaintext so the store can enforce uniqueness without ever seeing the
// plaintext. Digest columns are nullable: rows written before digests were
// introduced carry NULL and are covered by the decrypt-and-compare scan
// instead.
type Application struct {
	BaseModel
	ApplicationType ApplicationType `gorm:"type:varchar(20);not null;index" json:"application_type"`

	Name         string `gorm:"not null" json:"name"`
	Faculty      string `json:"faculty"`
	StudentID    string `gorm:"uniqueIndex;not null" json:"student_id"`
	StudentLevel string `json:"student_level"`
	HasLaptop    bool   `json:"has_laptop"`

	// Ciphertext columns. Never query these directly for equality.
	NationalID string `gorm:"not null" json:"-"`
	Telephone  string `gorm:"not null" json:"-"`
	Email      string `gorm:"not null" json:"-"`

	NationalIDDigest *string `gorm:"uniqueIndex" json:"-"`
	TelephoneDigest  *string `gorm:"uniqueIndex" json:"-"`
	EmailDigest      *string `gorm:"uniqueIndex" json:"-"`

	CodeforcesProfile string `json:"codeforces_profile"`
	LeetcodeProfile   string `json:"leetcode_profile"`

	ScrapingStatus ScrapingStatus `gorm:"type:varchar(20);default:'pending';index" json:"scraping_status"`
	CodeforcesData datatypes.JSON `json:"codeforces_data,omitempty"`
	LeetcodeData   datatypes.JSON `json:"leetcode_data,omitempty"`

	// Write-once provenance.
	SubmittedAt time.Time `gorm:"not null" json:"submitted_at"`
	IPAddress   string    `json:"-"`
	UserAgent   string    `json:"-"`
}

// HasProfile reports whether at least one competitive-programming profile
// was supplied. Only trainer applications with a profile are enriched.
func (a *Application) HasProfile() bool {
	return a.CodeforcesProfile != "" || a.LeetcodeProfile != ""
}

// CodeforcesStats is the enrichment blob stored in codeforces_data.
type CodeforcesStats struct {
	Handle      string `json:"handle"`
	Rating      int    `json:"rating"`
	MaxRating   int    `json:"max_rating"`
	Rank        string `json:"rank"`
	TotalSolved int    `json:"total_solved"`
}

// LeetCodeStats is the enrichment blob stored in leetcode_data.
type LeetCodeStats struct {
	Handle      string `json:"handle"`
	TotalSolved int    `json:"total_solved"`
	Ranking     int    `json:"ranking"`
	Reputation  int    `json:"reputation"`
}
