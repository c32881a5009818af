package repositories

import (
	"context"
	"fmt"
	"strings"

	"github.com/yigit/alumnidesk/internal/app/models"
	"github.com/yigit/alumnidesk/internal/docstore"
	"github.com/yigit/alumnidesk/internal/pkg/apperrors"
	"github.com/yigit/alumnidesk/internal/pkg/logger"
)

// AdminRepository handles staff accounts
type AdminRepository struct {
	store docstore.Store
}

// NewAdminRepository creates a new admin repository
func NewAdminRepository(store docstore.Store) *AdminRepository {
	return &AdminRepository{store: store}
}

// GetByID returns an admin or an error wrapping ErrAdminNotFound
func (r *AdminRepository) GetByID(ctx context.Context, id string) (*models.Admin, error) {
	doc, err := r.store.Get(ctx, docstore.CollectionAdmins, id)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrResourceNotFound) {
			return nil, fmt.Errorf("admin %s: %w", id, apperrors.ErrAdminNotFound)
		}
		return nil, fmt.Errorf("error retrieving admin: %w", err)
	}
	return models.DecodeAdmin(*doc)
}

// FindByEmail returns the admin with this email (case-insensitive)
func (r *AdminRepository) FindByEmail(ctx context.Context, email string) (*models.Admin, error) {
	return r.findOne(ctx, models.FieldEmail, strings.ToLower(strings.TrimSpace(email)))
}

// FindByVerificationToken returns the admin holding token
func (r *AdminRepository) FindByVerificationToken(ctx context.Context, token string) (*models.Admin, error) {
	return r.findOne(ctx, models.FieldVerificationToken, token)
}

func (r *AdminRepository) findOne(ctx context.Context, field, value string) (*models.Admin, error) {
	docs, err := r.store.FindBy(ctx, docstore.CollectionAdmins, field, value)
	if err != nil {
		return nil, fmt.Errorf("error finding admin by %s: %w", field, err)
	}
	if len(docs) == 0 {
		return nil, apperrors.ErrAdminNotFound
	}
	return models.DecodeAdmin(docs[0])
}

// GetAll returns every readable admin keyed by id
func (r *AdminRepository) GetAll(ctx context.Context) (map[string]*models.Admin, error) {
	docs, err := r.store.All(ctx, docstore.CollectionAdmins)
	if err != nil {
		return nil, fmt.Errorf("error listing admins: %w", err)
	}
	admins := decodeAll(docstore.CollectionAdmins, docs, models.DecodeAdmin)
	byID := make(map[string]*models.Admin, len(admins))
	for _, a := range admins {
		byID[a.ID] = a
	}
	return byID, nil
}

// Create inserts a new admin
func (r *AdminRepository) Create(ctx context.Context, admin *models.Admin) error {
	id, err := r.store.Add(ctx, docstore.CollectionAdmins, admin.ToDocument())
	if err != nil {
		if apperrors.Is(err, apperrors.ErrResourceAlreadyExists) {
			return apperrors.ErrEmailAlreadyExists
		}
		logger.Error().Err(err).Str("email", admin.Email).Msg("Error creating admin")
		return fmt.Errorf("error creating admin: %w", err)
	}
	admin.ID = id
	return nil
}

// Activate marks the email verified and clears the token
func (r *AdminRepository) Activate(ctx context.Context, id string) error {
	err := r.store.Update(ctx, docstore.CollectionAdmins, id, map[string]any{
		models.FieldAdminStatus:       string(models.AdminStatusActive),
		models.FieldVerificationToken: "",
	})
	if err != nil {
		return fmt.Errorf("error activating admin: %w", err)
	}
	return nil
}
