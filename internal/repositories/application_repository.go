package repositories

import (
	"context"
	"errors"
	"time"

	"algocamp_backend/internal/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrApplicationNotFound = errors.New("application not found")
	ErrDuplicateKey        = errors.New("duplicate key")
)

// SensitiveRow is the projection loaded by the uniqueness scan: ciphertexts
// plus blind-index digests for every existing application.
type SensitiveRow struct {
	ID               string
	NationalID       string
	Telephone        string
	Email            string
	NationalIDDigest *string
	TelephoneDigest  *string
	EmailDigest      *string
}

type ApplicationRepository interface {
	Create(ctx context.Context, app *models.Application) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*models.Application, error)

	// ListSensitive loads the sensitive projection of every row except
	// excludeID. Used by the post-insert uniqueness scan.
	ListSensitive(ctx context.Context, excludeID string) ([]SensitiveRow, error)

	// UpdateScrapingResult writes the terminal scraping status and whatever
	// enrichment data was obtained, in a single update.
	UpdateScrapingResult(ctx context.Context, id string, status models.ScrapingStatus, cfData, lcData datatypes.JSON) error
	SetScrapingStatus(ctx context.Context, id string, status models.ScrapingStatus) error

	// ListPendingTrainers returns trainer rows still pending enrichment,
	// used by the startup recovery sweep.
	ListPendingTrainers(ctx context.Context) ([]models.Application, error)

	List(ctx context.Context, limit, offset int) ([]models.Application, int64, error)
	CountAll(ctx context.Context) (int64, error)
}

type ApplicationRepositoryImpl struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) ApplicationRepository {
	return &ApplicationRepositoryImpl{db: db}
}

func (r *ApplicationRepositoryImpl) Create(ctx context.Context, app *models.Application) error {
	err := r.db.WithContext(ctx).Create(app).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateKey
		}
		return err
	}
	return nil
}

func (r *ApplicationRepositoryImpl) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Application{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrApplicationNotFound
	}
	return nil
}

func (r *ApplicationRepositoryImpl) GetByID(ctx context.Context, id string) (*models.Application, error) {
	var app models.Application
	err := r.db.WithContext(ctx).First(&app, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, err
	}
	return &app, nil
}

func (r *ApplicationRepositoryImpl) ListSensitive(ctx context.Context, excludeID string) ([]SensitiveRow, error) {
	var rows []SensitiveRow
	err := r.db.WithContext(ctx).
		Model(&models.Application{}).
		Select("id", "national_id", "telephone", "email",
			"national_id_digest", "telephone_digest", "email_digest").
		Where("id <> ?", excludeID).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *ApplicationRepositoryImpl) UpdateScrapingResult(ctx context.Context, id string, status models.ScrapingStatus, cfData, lcData datatypes.JSON) error {
	updates := map[string]interface{}{
		"scraping_status": status,
		"updated_at":      time.Now(),
	}
	if cfData != nil {
		updates["codeforces_data"] = cfData
	}
	if lcData != nil {
		updates["leetcode_data"] = lcData
	}

	result := r.db.WithContext(ctx).Model(&models.Application{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrApplicationNotFound
	}
	return nil
}

func (r *ApplicationRepositoryImpl) SetScrapingStatus(ctx context.Context, id string, status models.ScrapingStatus) error {
	result := r.db.WithContext(ctx).Model(&models.Application{}).Where("id = ?", id).Updates(map[string]interface{}{
		"scraping_status": status,
		"updated_at":      time.Now(),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrApplicationNotFound
	}
	return nil
}

func (r *ApplicationRepositoryImpl) ListPendingTrainers(ctx context.Context) ([]models.Application, error) {
	var apps []models.Application
	err := r.db.WithContext(ctx).
		Where("application_type = ? AND scraping_status = ?",
			models.ApplicationTypeTrainer, models.ScrapingStatusPending).
		Find(&apps).Error
	if err != nil {
		return nil, err
	}
	return apps, nil
}

func (r *ApplicationRepositoryImpl) List(ctx context.Context, limit, offset int) ([]models.Application, int64, error) {
	var apps []models.Application
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Application{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Order("submitted_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&apps).Error
	if err != nil {
		return nil, 0, err
	}
	return apps, total, nil
}

func (r *ApplicationRepositoryImpl) CountAll(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.Application{}).Count(&total).Error
	return total, err
}
