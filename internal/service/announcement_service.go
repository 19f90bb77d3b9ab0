package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/noah-isme/hsms-announcement-api/internal/models"
	appErrors "github.com/noah-isme/hsms-announcement-api/pkg/errors"
)

const activeCachePrefix = "announcements:active:"

type announcementRepository interface {
	FindActive(ctx context.Context, today string) ([]models.Announcement, error)
	FindAll(ctx context.Context) ([]models.Announcement, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Announcement, error)
	Insert(ctx context.Context, announcement *models.Announcement) error
	Replace(ctx context.Context, id primitive.ObjectID, message string, startDate *string, expirationDate, updatedBy string) (int64, error)
	Delete(ctx context.Context, id primitive.ObjectID) (int64, error)
}

// callerVerifier confirms that a caller string corresponds to a known
// account. Presence is the only check; no credential is involved.
type callerVerifier interface {
	Exists(ctx context.Context, username string) (bool, error)
}

// AnnouncementService handles announcement workflows.
type AnnouncementService struct {
	repo      announcementRepository
	teachers  callerVerifier
	cache     *CacheService
	activeTTL time.Duration
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAnnouncementService constructs the service. The cache may be nil when
// response caching is disabled.
func NewAnnouncementService(repo announcementRepository, teachers callerVerifier, cache *CacheService, activeTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *AnnouncementService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnnouncementService{
		repo:      repo,
		teachers:  teachers,
		cache:     cache,
		activeTTL: activeTTL,
		validator: validate,
		logger:    logger,
	}
}

// CreateAnnouncementRequest describes the create payload. The username is
// checked by the authentication step, not the validator, so a missing caller
// maps to 401 rather than 400.
type CreateAnnouncementRequest struct {
	Message        string  `json:"message" validate:"required"`
	ExpirationDate string  `json:"expiration_date" validate:"required"`
	StartDate      *string `json:"start_date"`
	Username       string  `json:"username"`
}

// UpdateAnnouncementRequest describes the update payload. Updates replace
// message and date window wholesale; callers must resend all fields.
type UpdateAnnouncementRequest struct {
	Message        string  `json:"message" validate:"required"`
	ExpirationDate string  `json:"expiration_date" validate:"required"`
	StartDate      *string `json:"start_date"`
	Username       string  `json:"username"`
}

// ListActive returns announcements whose date window contains the current
// UTC calendar date, newest-created first. No authentication required.
func (s *AnnouncementService) ListActive(ctx context.Context) ([]models.Announcement, error) {
	today := time.Now().UTC().Format(models.DateLayout)
	cacheKey := activeCachePrefix + today

	if s.cache.Enabled() {
		var cached []models.Announcement
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return cached, nil
		}
	}

	announcements, err := s.repo.FindActive(ctx, today)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list active announcements")
	}

	if s.cache.Enabled() {
		_ = s.cache.Set(ctx, cacheKey, announcements, s.activeTTL)
	}
	return announcements, nil
}

// ListAll returns every announcement, newest-created first. Requires a known
// caller.
func (s *AnnouncementService) ListAll(ctx context.Context, caller string) ([]models.Announcement, error) {
	if err := s.authenticate(ctx, caller); err != nil {
		return nil, err
	}
	announcements, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list announcements")
	}
	return announcements, nil
}

// Create stores a new announcement with creation metadata and returns it
// with its assigned identifier.
func (s *AnnouncementService) Create(ctx context.Context, req CreateAnnouncementRequest) (*models.Announcement, error) {
	if err := s.authenticate(ctx, req.Username); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	startDate := normalizeDate(req.StartDate)
	if err := validateDateWindow(startDate, req.ExpirationDate); err != nil {
		return nil, err
	}

	announcement := &models.Announcement{
		Message:        req.Message,
		StartDate:      startDate,
		ExpirationDate: req.ExpirationDate,
		CreatedBy:      req.Username,
		CreatedAt:      time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.repo.Insert(ctx, announcement); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create announcement")
	}

	s.invalidateActive(ctx)
	s.logger.Info("announcement created",
		zap.String("id", announcement.ID.Hex()),
		zap.String("created_by", announcement.CreatedBy),
	)
	return announcement, nil
}

// Update replaces message and date window of an existing announcement and
// stamps updated_by/updated_at, returning the full updated record.
func (s *AnnouncementService) Update(ctx context.Context, id string, req UpdateAnnouncementRequest) (*models.Announcement, error) {
	if err := s.authenticate(ctx, req.Username); err != nil {
		return nil, err
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	startDate := normalizeDate(req.StartDate)
	if err := validateDateWindow(startDate, req.ExpirationDate); err != nil {
		return nil, err
	}
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid announcement id")
	}

	matched, err := s.repo.Replace(ctx, objectID, req.Message, startDate, req.ExpirationDate, req.Username)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update announcement")
	}
	if matched == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "announcement not found")
	}

	announcement, err := s.repo.GetByID(ctx, objectID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "announcement not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load announcement")
	}

	s.invalidateActive(ctx)
	s.logger.Info("announcement updated",
		zap.String("id", id),
		zap.String("updated_by", req.Username),
	)
	return announcement, nil
}

// Delete removes an announcement. Deleting an already-removed record
// reports NotFound and changes nothing.
func (s *AnnouncementService) Delete(ctx context.Context, id, caller string) error {
	if err := s.authenticate(ctx, caller); err != nil {
		return err
	}
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "invalid announcement id")
	}

	deleted, err := s.repo.Delete(ctx, objectID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete announcement")
	}
	if deleted == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "announcement not found")
	}

	s.invalidateActive(ctx)
	s.logger.Info("announcement deleted",
		zap.String("id", id),
		zap.String("deleted_by", caller),
	)
	return nil
}

// authenticate rejects empty callers and callers with no matching teacher
// document. Both cases surface as Unauthenticated.
func (s *AnnouncementService) authenticate(ctx context.Context, caller string) error {
	if strings.TrimSpace(caller) == "" {
		return appErrors.Clone(appErrors.ErrUnauthorized, "authentication required")
	}
	known, err := s.teachers.Exists(ctx, caller)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to verify caller")
	}
	if !known {
		return appErrors.Clone(appErrors.ErrUnauthorized, "invalid user")
	}
	return nil
}

func (s *AnnouncementService) invalidateActive(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, activeCachePrefix+"*"); err != nil {
		s.logger.Warn("active cache invalidation failed", zap.Error(err))
	}
}

// validateDateWindow checks that both dates are valid calendar dates and
// that start_date <= expiration_date when both are present.
func validateDateWindow(startDate *string, expirationDate string) error {
	expiration, err := time.Parse(models.DateLayout, expirationDate)
	if err != nil {
		return appErrors.Clone(appErrors.ErrValidation, "invalid date format")
	}
	if startDate != nil {
		start, err := time.Parse(models.DateLayout, *startDate)
		if err != nil {
			return appErrors.Clone(appErrors.ErrValidation, "invalid date format")
		}
		if start.After(expiration) {
			return appErrors.Clone(appErrors.ErrValidation, "start date must be before expiration date")
		}
	}
	return nil
}

// normalizeDate treats empty and whitespace-only strings as an absent date.
func normalizeDate(raw *string) *string {
	if raw == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*raw)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
