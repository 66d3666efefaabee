package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"bably/internal/database"
	"bably/internal/models"
	"bably/internal/repository"
	"bably/internal/security"
)

// DemoPassword lets anyone sign in to the read-only demo account
const DemoPassword = "password"

// SeedDemo makes sure the demo account and its infant exist. Safe to run on
// every start.
func SeedDemo(ctx context.Context, db *database.DB, demo security.DemoPolicy, hasher *security.Hasher, log *zap.SugaredLogger) error {
	email := demo.Email()
	if email == "" {
		return nil
	}

	userRepo := repository.NewUserRepository(db)
	infantRepo := repository.NewInfantRepository(db)
	accessRepo := repository.NewAccessRepository(db)

	user, err := userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		hash, err := hasher.Hash(DemoPassword)
		if err != nil {
			return fmt.Errorf("failed to hash demo password: %w", err)
		}
		user, err = userRepo.CreateUser(ctx, email, hash, "DemoUser")
		if err != nil {
			return err
		}
		log.Info("Demo user created")
	}

	infants, err := infantRepo.ListInfantsForUser(ctx, user.ID)
	if err != nil {
		return err
	}
	if len(infants) > 0 {
		log.Debug("Demo infant already exists")
		return nil
	}

	publicID := "wcxhiinsaejwwh56nixq"
	infant := &models.Infant{FirstName: "DemoBaby", DOB: "2025-01-01", Gender: "male", PublicID: &publicID}

	err = db.WithTx(ctx, func(tx *database.Tx) error {
		if err := infantRepo.WithTx(tx).CreateInfant(ctx, infant); err != nil {
			return err
		}
		_, err := accessRepo.WithTx(tx).AddLink(ctx, user.ID, infant.ID, models.RoleBabysitter)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to seed demo infant: %w", err)
	}

	log.Infow("Demo infant created", "infant_id", infant.ID)
	return nil
}
