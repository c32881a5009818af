package seed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	appModels "github.com/yigit/alumnidesk/internal/app/models"
	appRepos "github.com/yigit/alumnidesk/internal/app/repositories"
	"github.com/yigit/alumnidesk/internal/config"
	"github.com/yigit/alumnidesk/internal/pkg/apperrors"
	"github.com/yigit/alumnidesk/internal/pkg/auth"
)

// CreateDefaultData creates the configured bootstrap admin if it does not
// exist yet. The admin is active from the start so the first login needs no
// email round trip.
func CreateDefaultData(ctx context.Context, cfg *config.Config, repos *appRepos.Repositories, lgr zerolog.Logger) error {
	email := strings.ToLower(strings.TrimSpace(cfg.Seed.AdminEmail))
	if email == "" || cfg.Seed.AdminPassword == "" {
		lgr.Debug().Msg("No seed admin configured, skipping default data")
		return nil
	}

	_, err := repos.AdminRepository.FindByEmail(ctx, email)
	if err == nil {
		lgr.Info().Str("email", email).Msg("Seed admin already exists, skipping creation")
		return nil
	}
	if !apperrors.Is(err, apperrors.ErrAdminNotFound) {
		return fmt.Errorf("error checking seed admin: %w", err)
	}

	hash, err := auth.HashPassword(cfg.Seed.AdminPassword)
	if err != nil {
		return fmt.Errorf("error hashing seed admin password: %w", err)
	}

	now := time.Now().UTC()
	admin := &appModels.Admin{
		Email:        email,
		FirstName:    "System",
		LastName:     "Administrator",
		Role:         appModels.RoleUniversityAdmin,
		Status:       appModels.AdminStatusActive,
		PasswordHash: hash,
		CreatedAt:    &now,
	}
	if err := repos.AdminRepository.Create(ctx, admin); err != nil {
		return fmt.Errorf("error creating seed admin: %w", err)
	}

	lgr.Info().Str("adminId", admin.ID).Str("email", email).Msg("Seed admin created")
	return nil
}
