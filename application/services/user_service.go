// Package services holds the user record service: request-independent
// orchestration of lookups, duplicate-email checks, conditional writes,
// pagination, and the health probe.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"users-backend/application/ports"
	"users-backend/domain/users"
	apperrors "users-backend/pkg/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserService orchestrates user record operations. It carries no per-request
// state; every call is independent.
type UserService struct {
	repo   ports.UserRepository
	logger *zap.Logger
	now    func() time.Time
}

// NewUserService creates a new UserService
func NewUserService(repo ports.UserRepository, logger *zap.Logger) *UserService {
	return &UserService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

func (s *UserService) timestamp() string {
	return s.now().UTC().Format(time.RFC3339)
}

func validUserID(id string) bool {
	u, err := uuid.Parse(id)
	return err == nil && u.Version() == 4
}

// GetByID returns the user with the given id, or nil when no such record
// exists. Absence is not an error.
func (s *UserService) GetByID(ctx context.Context, id string) (*users.User, error) {
	if !validUserID(id) {
		return nil, apperrors.NewValidationError("Invalid user ID format")
	}

	s.logger.Debug("Getting user by ID", zap.String("id", id))

	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("Error getting user by ID", zap.Error(err), zap.String("id", id))
		return nil, err
	}
	if rec == nil {
		s.logger.Info("User not found", zap.String("id", id))
		return nil, nil
	}

	return rec.Public(), nil
}

// ListAll returns every user in no guaranteed order, optionally capped.
// HasMore reflects whether the underlying read was truncated.
func (s *UserService) ListAll(ctx context.Context, limit int32) (*users.Page, error) {
	page, err := s.repo.List(ctx, limit)
	if err != nil {
		s.logger.Error("Error getting all users", zap.Error(err))
		return nil, err
	}

	items := make([]users.User, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, *page.Items[i].Public())
	}

	s.logger.Info("Retrieved users", zap.Int("count", len(items)))

	return &users.Page{
		Items:   items,
		Count:   page.Count,
		HasMore: page.HasMore,
	}, nil
}

// Create sanitizes the payload, assigns a fresh id, timestamps and version 1,
// rejects an already-used email, and writes guarded on the id being new.
// The duplicate-email check is a read-then-write race: two concurrent creates
// with the same email can both pass it. Known non-atomicity, kept as-is.
func (s *UserService) Create(ctx context.Context, req *users.CreateUserRequest, createdBy string) (*users.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	s.logger.Debug("Creating new user", zap.String("email", email))

	now := s.timestamp()
	rec := &users.Record{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(req.Name),
		Email:     email,
		Age:       req.Age,
		Phone:     trimmed(req.Phone),
		Address:   trimmed(req.Address),
		CreatedAt: now,
		UpdatedAt: now,
		CreatedBy: createdBy,
		Version:   1,
	}

	existing, err := s.repo.FindByEmail(ctx, rec.Email)
	if err != nil {
		s.logger.Error("Error searching user by email", zap.Error(err))
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.NewConflictError("Email already in use")
	}

	if err := s.repo.Create(ctx, rec); err != nil {
		if errors.Is(err, ports.ErrConditionalCheckFailed) {
			// UUID collision guard tripped
			return nil, apperrors.NewConflictError("User ID already exists")
		}
		s.logger.Error("Error creating user", zap.Error(err), zap.String("id", rec.ID))
		return nil, err
	}

	s.logger.Info("User created successfully", zap.String("id", rec.ID))
	return rec.Public(), nil
}

// Update applies the supplied fields to an existing record. The write is
// conditional on existence only; the version counter is incremented and
// persisted but never enforced, so a concurrent update can be lost.
func (s *UserService) Update(ctx context.Context, id string, req *users.UpdateUserRequest, updatedBy string) (*users.User, error) {
	if !validUserID(id) {
		return nil, apperrors.NewValidationError("Invalid user ID format")
	}
	if !req.HasFields() {
		return nil, apperrors.NewValidationError("No fields to update")
	}

	s.logger.Debug("Updating user", zap.String("id", id))

	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("Error updating user", zap.Error(err), zap.String("id", id))
		return nil, err
	}
	if existing == nil {
		return nil, apperrors.NewNotFoundError("User not found")
	}

	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email != existing.Email {
			owner, err := s.repo.FindByEmail(ctx, email)
			if err != nil {
				s.logger.Error("Error searching user by email", zap.Error(err))
				return nil, err
			}
			if owner != nil && owner.ID != id {
				return nil, apperrors.NewConflictError("Email already in use by another user")
			}
		}
	}

	changes := make(map[string]interface{})
	if req.Name != nil {
		changes["name"] = *req.Name
	}
	if req.Email != nil {
		changes["email"] = *req.Email
	}
	if req.Age != nil {
		changes["age"] = *req.Age
	}
	if req.Phone != nil {
		changes["phone"] = strings.TrimSpace(*req.Phone)
	}
	if req.Address != nil {
		changes["address"] = strings.TrimSpace(*req.Address)
	}
	if updatedBy != "" {
		changes["updatedBy"] = updatedBy
	}
	if existing.Version > 0 {
		changes["version"] = existing.Version + 1
	} else {
		// Records written before versioning start at 2 on first update.
		changes["version"] = 2
	}

	rec, err := s.repo.Update(ctx, id, changes)
	if err != nil {
		if errors.Is(err, ports.ErrConditionalCheckFailed) {
			// Record deleted between the read and the write.
			return nil, apperrors.NewNotFoundError("User not found")
		}
		s.logger.Error("Error updating user", zap.Error(err), zap.String("id", id))
		return nil, err
	}

	s.logger.Info("User updated successfully", zap.String("id", id))
	return rec.Public(), nil
}

// Delete removes the record and returns it as it existed just before deletion.
func (s *UserService) Delete(ctx context.Context, id string) (*users.User, error) {
	if !validUserID(id) {
		return nil, apperrors.NewValidationError("Invalid user ID format")
	}

	s.logger.Debug("Deleting user", zap.String("id", id))

	rec, err := s.repo.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, ports.ErrConditionalCheckFailed) {
			return nil, apperrors.NewNotFoundError("User not found")
		}
		s.logger.Error("Error deleting user", zap.Error(err), zap.String("id", id))
		return nil, err
	}

	s.logger.Info("User deleted successfully", zap.String("id", id))
	return rec.Public(), nil
}

// HealthCheck performs a minimal read against the table.
func (s *UserService) HealthCheck(ctx context.Context) (*users.HealthStatus, error) {
	if err := s.repo.Ping(ctx); err != nil {
		s.logger.Error("Health check failed", zap.Error(err))
		return nil, apperrors.NewUnavailableError("Service unhealthy").WithCause(err)
	}

	return &users.HealthStatus{
		Healthy:   true,
		TableName: s.repo.TableName(),
		Timestamp: s.timestamp(),
	}, nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}
