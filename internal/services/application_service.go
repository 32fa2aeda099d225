package services

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"algocamp_backend/internal/crypto"
	"algocamp_backend/internal/logger"
	"algocamp_backend/internal/models"
	"algocamp_backend/internal/repositories"
	"algocamp_backend/internal/services/dto"
	"algocamp_backend/pkg/apperrors"
)

// Enricher schedules background enrichment for one application. Satisfied
// by workers.EnrichmentWorker.
type Enricher interface {
	Enqueue(app *models.Application)
}

// ConfirmationSender delivers the submission acknowledgement email.
type ConfirmationSender interface {
	SendConfirmation(to, name string) error
}

// ApplicationService is the submission orchestrator: encrypt, insert,
// verify uniqueness, then either finalize the row or hand it to the
// enrichment worker. The caller's success response never waits for
// enrichment.
type ApplicationService struct {
	repo     repositories.ApplicationRepository
	codec    *crypto.FieldCodec
	verifier *UniquenessVerifier
	enricher Enricher
	mailer   ConfirmationSender
}

// NewApplicationService wires the orchestrator. mailer may be nil when the
// confirmation email is disabled.
func NewApplicationService(repo repositories.ApplicationRepository, codec *crypto.FieldCodec, verifier *UniquenessVerifier, enricher Enricher, mailer ConfirmationSender) *ApplicationService {
	return &ApplicationService{
		repo:     repo,
		codec:    codec,
		verifier: verifier,
		enricher: enricher,
		mailer:   mailer,
	}
}

// Submit runs the end-to-end ingestion flow for one application.
//
// Ordering is deliberate: the store's own unique indexes (student id and
// the blind-index digests) reject most duplicates cheaply and atomically at
// insert time; the decrypt-based verifier then covers legacy rows that
// predate digests. Success is only returned after the verifier passes.
func (s *ApplicationService) Submit(ctx context.Context, req *dto.SubmitApplicationRequest, meta dto.SubmissionMeta) (*models.Application, error) {
	sanitize(req)

	natNorm := NormalizeDigits(req.NationalID)
	telNorm := NormalizeDigits(req.Telephone)
	emailNorm := NormalizeEmail(req.Email)

	natCipher, err := s.codec.Encrypt(req.NationalID)
	if err != nil {
		return nil, apperrors.EncryptionError(err)
	}
	telCipher, err := s.codec.Encrypt(req.Telephone)
	if err != nil {
		return nil, apperrors.EncryptionError(err)
	}
	emailCipher, err := s.codec.Encrypt(req.Email)
	if err != nil {
		return nil, apperrors.EncryptionError(err)
	}

	natDigest := s.codec.Digest(natNorm)
	telDigest := s.codec.Digest(telNorm)
	emailDigest := s.codec.Digest(emailNorm)

	appType := models.ApplicationType(req.ApplicationType)
	app := &models.Application{
		ApplicationType:   appType,
		Name:              req.Name,
		Faculty:           req.Faculty,
		StudentID:         req.StudentID,
		StudentLevel:      req.StudentLevel,
		HasLaptop:         req.HasLaptop,
		NationalID:        natCipher,
		Telephone:         telCipher,
		Email:             emailCipher,
		NationalIDDigest:  &natDigest,
		TelephoneDigest:   &telDigest,
		EmailDigest:       &emailDigest,
		CodeforcesProfile: req.CodeforcesProfile,
		LeetcodeProfile:   req.LeetcodeProfile,
		ScrapingStatus:    models.ScrapingStatusNotApplicable,
		SubmittedAt:       time.Now().UTC(),
		IPAddress:         meta.IPAddress,
		UserAgent:         meta.UserAgent,
	}
	if appType == models.ApplicationTypeTrainer && app.HasProfile() {
		app.ScrapingStatus = models.ScrapingStatusPending
	}

	if err := s.repo.Create(ctx, app); err != nil {
		if apperrors.Is(err, repositories.ErrDuplicateKey) {
			// Cheap duplicate path: a unique index fired before any scan.
			return nil, apperrors.DuplicateApplication(nil)
		}
		return nil, apperrors.StoreError(err)
	}

	if err := s.verifier.Verify(ctx, app.ID, natNorm, telNorm, emailNorm); err != nil {
		// The verifier already removed the row.
		return nil, err
	}

	if app.ScrapingStatus == models.ScrapingStatusPending {
		s.enricher.Enqueue(app)
	}

	if s.mailer != nil {
		// Best effort, off the request path.
		go func(to, name string) {
			if err := s.mailer.SendConfirmation(to, name); err != nil {
				logger.WithError(err).Warn("confirmation email failed", "application_id", app.ID)
			}
		}(req.Email, req.Name)
	}

	logger.CtxInfo(ctx, "application submitted",
		"application_id", app.ID,
		"type", app.ApplicationType,
		"scraping_status", app.ScrapingStatus)
	return app, nil
}

// GetByID returns one application with sensitive fields decrypted and
// masked for display.
func (s *ApplicationService) GetByID(ctx context.Context, id string) (*dto.ApplicationSummary, error) {
	app, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if apperrors.Is(err, repositories.ErrApplicationNotFound) {
			return nil, apperrors.ErrApplicationNotFound
		}
		return nil, apperrors.StoreError(err)
	}
	summary := s.toSummary(app)
	return &summary, nil
}

// List returns the paginated admin view.
func (s *ApplicationService) List(ctx context.Context, page, pageSize int) (*dto.ApplicationListResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	apps, total, err := s.repo.List(ctx, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, apperrors.StoreError(err)
	}

	summaries := make([]dto.ApplicationSummary, len(apps))
	for i := range apps {
		summaries[i] = s.toSummary(&apps[i])
	}
	return &dto.ApplicationListResponse{
		Applications: summaries,
		Total:        total,
		Page:         page,
		PageSize:     pageSize,
	}, nil
}

func (s *ApplicationService) toSummary(app *models.Application) dto.ApplicationSummary {
	summary := dto.ApplicationSummary{
		ID:                app.ID,
		ApplicationType:   string(app.ApplicationType),
		Name:              app.Name,
		Faculty:           app.Faculty,
		StudentID:         app.StudentID,
		StudentLevel:      app.StudentLevel,
		HasLaptop:         app.HasLaptop,
		NationalID:        maskDigits(s.codec.Decrypt(app.NationalID)),
		Telephone:         maskDigits(s.codec.Decrypt(app.Telephone)),
		Email:             maskEmail(s.codec.Decrypt(app.Email)),
		CodeforcesProfile: app.CodeforcesProfile,
		LeetcodeProfile:   app.LeetcodeProfile,
		ScrapingStatus:    string(app.ScrapingStatus),
		SubmittedAt:       app.SubmittedAt.Format(time.RFC3339),
	}
	if len(app.CodeforcesData) > 0 {
		var blob any
		if json.Unmarshal(app.CodeforcesData, &blob) == nil {
			summary.CodeforcesData = blob
		}
	}
	if len(app.LeetcodeData) > 0 {
		var blob any
		if json.Unmarshal(app.LeetcodeData, &blob) == nil {
			summary.LeetcodeData = blob
		}
	}
	return summary
}

func sanitize(req *dto.SubmitApplicationRequest) {
	req.ApplicationType = strings.ToLower(strings.TrimSpace(req.ApplicationType))
	req.Name = strings.TrimSpace(req.Name)
	req.Faculty = strings.TrimSpace(req.Faculty)
	req.StudentID = strings.TrimSpace(req.StudentID)
	req.NationalID = strings.TrimSpace(req.NationalID)
	req.StudentLevel = strings.TrimSpace(req.StudentLevel)
	req.Telephone = strings.TrimSpace(req.Telephone)
	req.CodeforcesProfile = strings.TrimSpace(req.CodeforcesProfile)
	req.LeetcodeProfile = strings.TrimSpace(req.LeetcodeProfile)
	req.Email = strings.TrimSpace(req.Email)
}

// maskDigits keeps the last four characters visible.
func maskDigits(v string) string {
	if len(v) <= 4 {
		return v
	}
	return strings.Repeat("*", len(v)-4) + v[len(v)-4:]
}

// maskEmail keeps the first character of the local part and the domain.
func maskEmail(v string) string {
	at := strings.IndexByte(v, '@')
	if at <= 1 {
		return v
	}
	return v[:1] + strings.Repeat("*", at-1) + v[at:]
}
