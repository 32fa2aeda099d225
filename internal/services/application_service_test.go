package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"algocamp_backend/internal/crypto"
	"algocamp_backend/internal/models"
	"algocamp_backend/internal/repositories"
	"algocamp_backend/internal/services/dto"
	"algocamp_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

// memRepo is an in-memory ApplicationRepository that mirrors the store's
// unique indexes on student id and the blind-index digest columns.
type memRepo struct {
	mu       sync.Mutex
	seq      int
	apps     map[string]*models.Application
	listErr  error
	nextUUID func() string
}

func newMemRepo() *memRepo {
	return &memRepo{apps: make(map[string]*models.Application)}
}

func (m *memRepo) Create(ctx context.Context, app *models.Application) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.apps {
		if existing.StudentID == app.StudentID {
			return repositories.ErrDuplicateKey
		}
		if digestEqual(existing.NationalIDDigest, app.NationalIDDigest) ||
			digestEqual(existing.TelephoneDigest, app.TelephoneDigest) ||
			digestEqual(existing.EmailDigest, app.EmailDigest) {
			return repositories.ErrDuplicateKey
		}
	}

	if app.ID == "" {
		m.seq++
		app.ID = fmt.Sprintf("app-%04d", m.seq)
	}
	copied := *app
	m.apps[app.ID] = &copied
	return nil
}

func digestEqual(a, b *string) bool {
	return a != nil && b != nil && *a != "" && *a == *b
}

func (m *memRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.apps[id]; !ok {
		return repositories.ErrApplicationNotFound
	}
	delete(m.apps, id)
	return nil
}

func (m *memRepo) GetByID(ctx context.Context, id string) (*models.Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	app, ok := m.apps[id]
	if !ok {
		return nil, repositories.ErrApplicationNotFound
	}
	copied := *app
	return &copied, nil
}

func (m *memRepo) ListSensitive(ctx context.Context, excludeID string) ([]repositories.SensitiveRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	var rows []repositories.SensitiveRow
	for _, app := range m.apps {
		if app.ID == excludeID {
			continue
		}
		rows = append(rows, repositories.SensitiveRow{
			ID:               app.ID,
			NationalID:       app.NationalID,
			Telephone:        app.Telephone,
			Email:            app.Email,
			NationalIDDigest: app.NationalIDDigest,
			TelephoneDigest:  app.TelephoneDigest,
			EmailDigest:      app.EmailDigest,
		})
	}
	return rows, nil
}

func (m *memRepo) UpdateScrapingResult(ctx context.Context, id string, status models.ScrapingStatus, cfData, lcData datatypes.JSON) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	app, ok := m.apps[id]
	if !ok {
		return repositories.ErrApplicationNotFound
	}
	app.ScrapingStatus = status
	app.CodeforcesData = cfData
	app.LeetcodeData = lcData
	return nil
}

func (m *memRepo) SetScrapingStatus(ctx context.Context, id string, status models.ScrapingStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	app, ok := m.apps[id]
	if !ok {
		return repositories.ErrApplicationNotFound
	}
	app.ScrapingStatus = status
	return nil
}

func (m *memRepo) ListPendingTrainers(ctx context.Context) ([]models.Application, error) {
	return nil, nil
}

func (m *memRepo) List(ctx context.Context, limit, offset int) ([]models.Application, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var apps []models.Application
	for _, app := range m.apps {
		apps = append(apps, *app)
	}
	return apps, int64(len(apps)), nil
}

func (m *memRepo) CountAll(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.apps)), nil
}

type fakeEnricher struct {
	mu   sync.Mutex
	apps []*models.Application
}

func (f *fakeEnricher) Enqueue(app *models.Application) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.apps = append(f.apps, app)
}

func (f *fakeEnricher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.apps)
}

func newTestService(t *testing.T) (*ApplicationService, *memRepo, *fakeEnricher, *crypto.FieldCodec) {
	t.Helper()
	codec, err := crypto.NewFieldCodec("service-test-encryption-key-123456")
	require.NoError(t, err)
	repo := newMemRepo()
	enricher := &fakeEnricher{}
	svc := NewApplicationService(repo, codec, NewUniquenessVerifier(repo, codec), enricher, nil)
	return svc, repo, enricher, codec
}

func traineeRequest() *dto.SubmitApplicationRequest {
	return &dto.SubmitApplicationRequest{
		ApplicationType: "trainee",
		Name:            "Aruzhan Bekova",
		Faculty:         "Computer Science",
		StudentID:       "CS-2024-001",
		NationalID:      "990101300123",
		StudentLevel:    "2",
		Telephone:       "+7 701 555 0101",
		HasLaptop:       true,
		Email:           "aruzhan@example.com",
	}
}

func trainerRequest() *dto.SubmitApplicationRequest {
	req := traineeRequest()
	req.ApplicationType = "trainer"
	req.StudentID = "CS-2020-777"
	req.NationalID = "850505400777"
	req.Telephone = "+7 702 555 0707"
	req.Email = "trainer@example.com"
	req.CodeforcesProfile = "https://codeforces.com/profile/tourist"
	return req
}

func TestSubmit_TraineePath(t *testing.T) {
	svc, repo, enricher, codec := newTestService(t)

	app, err := svc.Submit(context.Background(), traineeRequest(), dto.SubmissionMeta{IPAddress: "10.0.0.1", UserAgent: "go-test"})
	require.NoError(t, err)

	assert.Equal(t, models.ScrapingStatusNotApplicable, app.ScrapingStatus)
	assert.Nil(t, app.CodeforcesData)
	assert.Nil(t, app.LeetcodeData)
	assert.Equal(t, 0, enricher.count())

	stored, err := repo.GetByID(context.Background(), app.ID)
	require.NoError(t, err)
	// Sensitive fields are stored as ciphertext, not plaintext.
	assert.True(t, strings.HasPrefix(stored.NationalID, "v1:"))
	assert.True(t, strings.HasPrefix(stored.Telephone, "v1:"))
	assert.True(t, strings.HasPrefix(stored.Email, "v1:"))
	assert.Equal(t, "990101300123", codec.Decrypt(stored.NationalID))
	assert.Equal(t, "10.0.0.1", stored.IPAddress)
}

func TestSubmit_TrainerWithProfileSchedulesEnrichment(t *testing.T) {
	svc, _, enricher, _ := newTestService(t)

	app, err := svc.Submit(context.Background(), trainerRequest(), dto.SubmissionMeta{})
	require.NoError(t, err)

	assert.Equal(t, models.ScrapingStatusPending, app.ScrapingStatus)
	require.Equal(t, 1, enricher.count())
	assert.Equal(t, app.ID, enricher.apps[0].ID)
}

func TestSubmit_TrainerWithoutProfile(t *testing.T) {
	svc, _, enricher, _ := newTestService(t)

	req := trainerRequest()
	req.CodeforcesProfile = ""
	req.LeetcodeProfile = ""

	app, err := svc.Submit(context.Background(), req, dto.SubmissionMeta{})
	require.NoError(t, err)
	assert.Equal(t, models.ScrapingStatusNotApplicable, app.ScrapingStatus)
	assert.Equal(t, 0, enricher.count())
}

func TestSubmit_DuplicateStudentID(t *testing.T) {
	svc, repo, _, _ := newTestService(t)

	_, err := svc.Submit(context.Background(), traineeRequest(), dto.SubmissionMeta{})
	require.NoError(t, err)

	dup := traineeRequest()
	dup.NationalID = "010101500999"
	dup.Telephone = "+7 705 555 0999"
	dup.Email = "someone.else@example.com"

	_, err = svc.Submit(context.Background(), dup, dto.SubmissionMeta{})
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeDuplicateApplication, appErr.Code)

	total, _ := repo.CountAll(context.Background())
	assert.Equal(t, int64(1), total)
}

func TestSubmit_DuplicateNationalIDNormalized(t *testing.T) {
	svc, repo, _, _ := newTestService(t)

	first := traineeRequest()
	first.NationalID = "123456789"
	_, err := svc.Submit(context.Background(), first, dto.SubmissionMeta{})
	require.NoError(t, err)

	// Same national id, different incidental formatting and a different
	// student id: must still be rejected.
	second := traineeRequest()
	second.StudentID = "CS-2024-002"
	second.NationalID = "123-456-789"
	second.Telephone = "+7 705 555 0999"
	second.Email = "someone.else@example.com"

	_, err = svc.Submit(context.Background(), second, dto.SubmissionMeta{})
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeDuplicateApplication, appErr.Code)

	total, _ := repo.CountAll(context.Background())
	assert.Equal(t, int64(1), total)
}

func TestSubmit_LegacyRowCaughtByScan(t *testing.T) {
	svc, repo, _, codec := newTestService(t)

	// A row written before digests existed: ciphertext only, NULL digests.
	// Only the decrypt-and-compare scan can catch a collision with it.
	legacyNat, err := codec.Encrypt("123456789")
	require.NoError(t, err)
	legacyTel, err := codec.Encrypt("+7 700 111 2233")
	require.NoError(t, err)
	legacyEmail, err := codec.Encrypt("Legacy.User@Example.com")
	require.NoError(t, err)
	legacy := &models.Application{
		BaseModel:       models.BaseModel{ID: "legacy-1"},
		ApplicationType: models.ApplicationTypeTrainee,
		Name:            "Legacy User",
		StudentID:       "CS-2019-555",
		NationalID:      legacyNat,
		Telephone:       legacyTel,
		Email:           legacyEmail,
		ScrapingStatus:  models.ScrapingStatusNotApplicable,
	}
	require.NoError(t, repo.Create(context.Background(), legacy))

	req := traineeRequest()
	req.StudentID = "CS-2024-009"
	req.NationalID = "123-456-789"
	req.Telephone = "+7 709 999 8877"
	req.Email = "legacy.user@example.com"

	_, err = svc.Submit(context.Background(), req, dto.SubmissionMeta{})
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeDuplicateApplication, appErr.Code)

	// Both colliding fields are reported.
	details, ok := appErr.Details.([]string)
	require.True(t, ok)
	assert.Len(t, details, 2)
	assert.Contains(t, details[0], "legacy-1")

	// Compensating delete: only the legacy row remains.
	total, _ := repo.CountAll(context.Background())
	assert.Equal(t, int64(1), total)
}

func TestSubmit_ScanFailureRollsBack(t *testing.T) {
	svc, repo, _, _ := newTestService(t)
	repo.listErr = errors.New("connection reset")

	_, err := svc.Submit(context.Background(), traineeRequest(), dto.SubmissionMeta{})
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.CodeDatabaseError, appErr.Code)

	repo.listErr = nil
	total, _ := repo.CountAll(context.Background())
	assert.Equal(t, int64(0), total)
}

func TestList_MasksSensitiveFields(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.Submit(context.Background(), traineeRequest(), dto.SubmissionMeta{})
	require.NoError(t, err)

	resp, err := svc.List(context.Background(), 1, 20)
	require.NoError(t, err)
	require.Len(t, resp.Applications, 1)

	got := resp.Applications[0]
	assert.Equal(t, "********0123", got.NationalID)
	assert.Equal(t, "a******@example.com", got.Email)
	assert.NotContains(t, got.Telephone, "555")
}

func TestNormalizers(t *testing.T) {
	assert.Equal(t, "77015550101", NormalizeDigits("+7 (701) 555-01-01"))
	assert.Equal(t, "123456789", NormalizeDigits("123-456-789"))
	assert.Equal(t, "", NormalizeDigits("no digits"))
	assert.Equal(t, "user@example.com", NormalizeEmail("  User@Example.COM  "))
}
