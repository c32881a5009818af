package seed

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appModels "github.com/yigit/alumnidesk/internal/app/models"
	appRepos "github.com/yigit/alumnidesk/internal/app/repositories"
	"github.com/yigit/alumnidesk/internal/config"
	"github.com/yigit/alumnidesk/internal/docstore"
	"github.com/yigit/alumnidesk/internal/pkg/auth"
)

func TestCreateDefaultData(t *testing.T) {
	auth.BcryptCost = 4
	ctx := context.Background()
	store := docstore.NewMemoryStore()
	repos := appRepos.NewRepositories(store)

	cfg := &config.Config{}
	cfg.Seed.AdminEmail = " Root@University.edu "
	cfg.Seed.AdminPassword = "changeme1"

	require.NoError(t, CreateDefaultData(ctx, cfg, repos, zerolog.Nop()))
	require.NoError(t, CreateDefaultData(ctx, cfg, repos, zerolog.Nop()))
	assert.Equal(t, 1, store.Count(docstore.CollectionAdmins))

	admin, err := repos.AdminRepository.FindByEmail(ctx, "root@university.edu")
	require.NoError(t, err)
	assert.Equal(t, appModels.AdminStatusActive, admin.Status)
	assert.Equal(t, appModels.RoleUniversityAdmin, admin.Role)
	assert.True(t, auth.CheckPassword(admin.PasswordHash, "changeme1"))
}

func TestCreateDefaultData_NotConfigured(t *testing.T) {
	store := docstore.NewMemoryStore()
	require.NoError(t, CreateDefaultData(context.Background(), &config.Config{}, appRepos.NewRepositories(store), zerolog.Nop()))
	assert.Equal(t, 0, store.Count(docstore.CollectionAdmins))
}
