package workers

import (
	"context"
	"encoding/json"

	"algocamp_backend/internal/clients"
	"algocamp_backend/internal/logger"
	"algocamp_backend/internal/models"
	"algocamp_backend/internal/repositories"

	"gorm.io/datatypes"
)

// CodeforcesClient and LeetCodeClient are the two external rating services
// the worker pulls from. Declared here so tests can substitute fakes.
type CodeforcesClient interface {
	FetchStats(ctx context.Context, handle string) (*models.CodeforcesStats, error)
}

type LeetCodeClient interface {
	FetchStats(ctx context.Context, handle string) (*models.LeetCodeStats, error)
}

// EnrichmentWorker augments trainer applications with statistics from the
// competitive-programming profile services. It runs detached from the
// request cycle: the submitter already has their response by the time any
// of this executes, so every failure here ends up in the row's scraping
// status and nowhere else.
type EnrichmentWorker struct {
	repo       repositories.ApplicationRepository
	codeforces CodeforcesClient
	leetcode   LeetCodeClient
}

func NewEnrichmentWorker(repo repositories.ApplicationRepository, cf CodeforcesClient, lc LeetCodeClient) *EnrichmentWorker {
	return &EnrichmentWorker{
		repo:       repo,
		codeforces: cf,
		leetcode:   lc,
	}
}

// Enqueue starts enrichment for one application on its own goroutine.
// There is no shared queue; each submission's worker is independent.
func (w *EnrichmentWorker) Enqueue(app *models.Application) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("enrichment worker panicked", "application_id", app.ID, "panic", r)
				if err := w.repo.SetScrapingStatus(context.Background(), app.ID, models.ScrapingStatusFailed); err != nil {
					logger.WithError(err).Error("failed to mark application after panic", "application_id", app.ID)
				}
			}
		}()
		w.Process(context.Background(), app)
	}()
}

// Process runs the full enrichment for one application and persists the
// terminal status together with whatever data was obtained, in a single
// update. Partial results are kept: one profile succeeding is enough for
// the status to be completed.
func (w *EnrichmentWorker) Process(ctx context.Context, app *models.Application) {
	if !app.HasProfile() {
		// Normally handled synchronously at submission time; rows picked up
		// by the recovery sweep can still land here.
		if err := w.repo.SetScrapingStatus(ctx, app.ID, models.ScrapingStatusNotApplicable); err != nil {
			logger.WithError(err).Error("failed to mark application not applicable", "application_id", app.ID)
		}
		return
	}

	var cfData, lcData datatypes.JSON
	yielded := 0

	if app.CodeforcesProfile != "" {
		if stats := w.fetchCodeforces(ctx, app); stats != nil {
			cfData = mustMarshal(stats)
			yielded++
		}
	}

	if app.LeetcodeProfile != "" {
		if stats := w.fetchLeetCode(ctx, app); stats != nil {
			lcData = mustMarshal(stats)
			yielded++
		}
	}

	status := models.ScrapingStatusFailed
	if yielded > 0 {
		status = models.ScrapingStatusCompleted
	}

	if err := w.repo.UpdateScrapingResult(ctx, app.ID, status, cfData, lcData); err != nil {
		logger.WithError(err).Error("failed to persist enrichment result", "application_id", app.ID)
		return
	}
	logger.Info("enrichment finished",
		"application_id", app.ID, "status", status, "profiles_yielded", yielded)
}

func (w *EnrichmentWorker) fetchCodeforces(ctx context.Context, app *models.Application) *models.CodeforcesStats {
	handle := clients.ExtractUsername(app.CodeforcesProfile, clients.PlatformCodeforces)
	if handle == "" {
		logger.Warn("could not extract codeforces handle",
			"application_id", app.ID, "profile", app.CodeforcesProfile)
		return nil
	}
	stats, err := w.codeforces.FetchStats(ctx, handle)
	if err != nil {
		logger.WithError(err).Warn("codeforces enrichment failed",
			"application_id", app.ID, "handle", handle)
		return nil
	}
	return stats
}

func (w *EnrichmentWorker) fetchLeetCode(ctx context.Context, app *models.Application) *models.LeetCodeStats {
	handle := clients.ExtractUsername(app.LeetcodeProfile, clients.PlatformLeetCode)
	if handle == "" {
		logger.Warn("could not extract leetcode handle",
			"application_id", app.ID, "profile", app.LeetcodeProfile)
		return nil
	}
	stats, err := w.leetcode.FetchStats(ctx, handle)
	if err != nil {
		logger.WithError(err).Warn("leetcode enrichment failed",
			"application_id", app.ID, "handle", handle)
		return nil
	}
	return stats
}

// RecoverPending re-enqueues trainer applications left pending by a process
// restart. The row status acts as the durable queue.
func (w *EnrichmentWorker) RecoverPending(ctx context.Context) {
	apps, err := w.repo.ListPendingTrainers(ctx)
	if err != nil {
		logger.WorkerLog("enrichment", "recover_pending", err)
		return
	}
	if len(apps) == 0 {
		return
	}

	logger.Info("resuming pending enrichments", "count", len(apps))
	for i := range apps {
		w.Enqueue(&apps[i])
	}
}

func mustMarshal(v interface{}) datatypes.JSON {
	data, err := json.Marshal(v)
	if err != nil {
		// Stats structs are plain values; this cannot fail in practice.
		logger.WithError(err).Error("failed to marshal enrichment blob")
		return nil
	}
	return datatypes.JSON(data)
}
