package service

import (
	"context"

	"go.uber.org/zap"

	"bably/internal/models"
	"bably/internal/repository"
)

// notifyAdmins pushes to the infant's other admins when actor opted in.
// Best effort.
func notifyAdmins(ctx context.Context, access *AccessService, notifier Notifier, log *zap.SugaredLogger, actor *models.Authorization, title, body string) {
	targets, err := access.NotifyTargets(ctx, actor)
	if err != nil {
		log.Errorw("failed to list admins to notify", "infant_id", actor.InfantID, "error", err)
		return
	}
	if len(targets) == 0 {
		return
	}
	if err := notifier.Notify(ctx, targets, title, body); err != nil {
		log.Errorw("failed to notify admins", "infant_id", actor.InfantID, "error", err)
	}
}

func lookupInfantName(ctx context.Context, repo *repository.InfantRepository, log *zap.SugaredLogger, infantID int64) string {
	infant, err := repo.GetInfant(ctx, infantID)
	if err != nil || infant == nil {
		if err != nil {
			log.Warnw("failed to load infant name", "infant_id", infantID, "error", err)
		}
		return "your baby"
	}
	return infant.FirstName
}
