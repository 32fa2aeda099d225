package dto

// SubmitApplicationRequest is the validated public-form payload.
type SubmitApplicationRequest struct {
	ApplicationType   string `json:"applicationType" validate:"required,is-application-type"`
	Name              string `json:"name" validate:"required,min=2,max=100"`
	Faculty           string `json:"faculty" validate:"omitempty,max=100"`
	StudentID         string `json:"studentId" validate:"required,min=4,max=32"`
	NationalID        string `json:"nationalId" validate:"required,min=6,max=32,is-national-id"`
	StudentLevel      string `json:"studentLevel" validate:"omitempty,max=32"`
	Telephone         string `json:"telephone" validate:"required,min=6,max=32"`
	HasLaptop         bool   `json:"hasLaptop"`
	CodeforcesProfile string `json:"codeforcesProfile" validate:"omitempty,max=200"`
	LeetcodeProfile   string `json:"leetcodeProfile" validate:"omitempty,max=200"`
	Email             string `json:"email" validate:"required,email,max=100"`
}

// SubmissionMeta carries write-once provenance captured by the HTTP layer.
type SubmissionMeta struct {
	IPAddress string
	UserAgent string
}

// ApplicationSummary is the admin-facing view of one application. The
// sensitive fields are decrypted and masked before they leave the service.
type ApplicationSummary struct {
	ID                string `json:"id"`
	ApplicationType   string `json:"application_type"`
	Name              string `json:"name"`
	Faculty           string `json:"faculty"`
	StudentID         string `json:"student_id"`
	StudentLevel      string `json:"student_level"`
	HasLaptop         bool   `json:"has_laptop"`
	NationalID        string `json:"national_id"`
	Telephone         string `json:"telephone"`
	Email             string `json:"email"`
	CodeforcesProfile string `json:"codeforces_profile,omitempty"`
	LeetcodeProfile   string `json:"leetcode_profile,omitempty"`
	ScrapingStatus    string `json:"scraping_status"`
	CodeforcesData    any    `json:"codeforces_data,omitempty"`
	LeetcodeData      any    `json:"leetcode_data,omitempty"`
	SubmittedAt       string `json:"submitted_at"`
}

// ApplicationListResponse is the paginated admin listing envelope.
type ApplicationListResponse struct {
	Applications []ApplicationSummary `json:"applications"`
	Total        int64                `json:"total"`
	Page         int                  `json:"page"`
	PageSize     int                  `json:"page_size"`
}
