package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/identity-systems/user-api/internal/api/metrics"
	"github.com/identity-systems/user-api/internal/core/domain"
	"github.com/identity-systems/user-api/internal/core/ports"
)

// UserService implements registration, login, token refresh, password
// changes and the self-or-admin gated CRUD over user records.
type UserService struct {
	repo      ports.UserRepository
	tokens    ports.TokenService
	limiter   ports.LoginLimiter
	adminCode string
	logger    zerolog.Logger
}

// NewUserService wires the service. limiter may be nil, in which case
// failed logins are not throttled.
func NewUserService(repo ports.UserRepository, tokens ports.TokenService, limiter ports.LoginLimiter, adminCode string, logger zerolog.Logger) *UserService {
	return &UserService{
		repo:      repo,
		tokens:    tokens,
		limiter:   limiter,
		adminCode: adminCode,
		logger:    logger,
	}
}

// Register creates a self-service account with the USER role.
func (s *UserService) Register(ctx context.Context, name, password string) (*domain.PublicUser, error) {
	return s.create(ctx, name, password, nil, domain.RoleUser)
}

// RegisterAdmin creates an account with the ADMIN role. The shared admin
// code is checked before anything else; it is the only way a record ever
// gets the ADMIN role.
func (s *UserService) RegisterAdmin(ctx context.Context, name, password, adminCode string) (*domain.PublicUser, error) {
	if adminCode != s.adminCode {
		return nil, domain.ErrInvalidAdminCode
	}
	return s.create(ctx, name, password, nil, domain.RoleAdmin)
}

// CreateUser is the direct-create path: like Register but with optional
// age metadata.
func (s *UserService) CreateUser(ctx context.Context, name, password string, age *int) (*domain.PublicUser, error) {
	return s.create(ctx, name, password, age, domain.RoleUser)
}

func (s *UserService) create(ctx context.Context, name, password string, age *int, role domain.Role) (*domain.PublicUser, error) {
	if name == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		Name:         name,
		PasswordHash: string(hash),
		Role:         role,
		Age:          age,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	metrics.RegistrationsTotal.WithLabelValues(string(role)).Inc()
	s.logger.Info().Str("name", name).Str("role", string(role)).Msg("user registered")
	return created.Public(), nil
}

// Login verifies the password for name and, on success, issues a bearer
// token. Failed attempts count against the limiter when one is configured.
func (s *UserService) Login(ctx context.Context, name, password string) (*ports.LoginResult, error) {
	if name == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	if s.limiter != nil {
		if err := s.limiter.Check(ctx, name); err != nil {
			metrics.LoginThrottledTotal.Inc()
			return nil, err
		}
	}

	user, err := s.repo.FindByName(ctx, name)
	if err != nil {
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		if s.limiter != nil {
			if lerr := s.limiter.RecordFailure(ctx, name); lerr != nil && !errors.Is(lerr, domain.ErrTooManyAttempts) {
				s.logger.Warn().Err(lerr).Str("name", name).Msg("login limiter unavailable")
			}
		}
		metrics.LoginsTotal.WithLabelValues("failure").Inc()
		return nil, domain.ErrInvalidCredentials
	}

	if s.limiter != nil {
		if lerr := s.limiter.Reset(ctx, name); lerr != nil {
			s.logger.Warn().Err(lerr).Str("name", name).Msg("login limiter reset failed")
		}
	}

	token, err := s.tokens.Issue(user.Name)
	if err != nil {
		return nil, err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	metrics.TokensIssuedTotal.WithLabelValues("login").Inc()
	s.logger.Info().Str("name", name).Msg("login succeeded")
	return &ports.LoginResult{Token: token, User: user.Public()}, nil
}

// ChangePassword re-hashes and persists a new password once the current
// one verifies. There is no admin override: whoever calls must know the
// record's current password, regardless of role.
func (s *UserService) ChangePassword(ctx context.Context, id, oldPassword, newPassword string) error {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)) != nil {
		return domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user.PasswordHash = string(hash)
	user.UpdatedAt = time.Now().UTC()
	if _, err := s.repo.Update(ctx, user); err != nil {
		return err
	}

	s.logger.Info().Str("user_id", id).Msg("password changed")
	return nil
}

// RefreshToken issues a fresh token for the authenticated caller. The
// subject is re-resolved against the store, so a deleted user's still
// unexpired token is rejected here.
func (s *UserService) RefreshToken(ctx context.Context, callerName string) (*ports.LoginResult, error) {
	if callerName == "" {
		return nil, domain.ErrNotAuthenticated
	}

	user, err := s.repo.FindByName(ctx, callerName)
	if err != nil {
		return nil, err
	}

	token, err := s.tokens.Refresh(user.Name)
	if err != nil {
		return nil, err
	}

	metrics.TokensIssuedTotal.WithLabelValues("refresh").Inc()
	return &ports.LoginResult{Token: token, User: user.Public()}, nil
}

// CurrentUser resolves the authenticated caller's own record.
func (s *UserService) CurrentUser(ctx context.Context, callerName string) (*domain.PublicUser, error) {
	if callerName == "" {
		return nil, domain.ErrNotAuthenticated
	}

	user, err := s.repo.FindByName(ctx, callerName)
	if err != nil {
		return nil, err
	}
	return user.Public(), nil
}

// GetUser returns a single record, readable by its owner or an admin.
func (s *UserService) GetUser(ctx context.Context, callerName, id string) (*domain.PublicUser, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	caller, err := s.resolveCaller(ctx, callerName)
	if err != nil {
		return nil, err
	}
	if !caller.CanAccess(user.Name) {
		return nil, domain.ErrPermissionDenied
	}
	return user.Public(), nil
}

// UpdateUser changes name, age and optionally the password of a record,
// for its owner or an admin. Role is never touched here.
func (s *UserService) UpdateUser(ctx context.Context, callerName, id string, input ports.UpdateUserInput) (*domain.PublicUser, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	caller, err := s.resolveCaller(ctx, callerName)
	if err != nil {
		return nil, err
	}
	if !caller.CanAccess(user.Name) {
		return nil, domain.ErrPermissionDenied
	}

	user.Name = input.Name
	user.Age = input.Age
	if input.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = string(hash)
	}
	user.UpdatedAt = time.Now().UTC()

	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		return nil, err
	}
	return updated.Public(), nil
}

// DeleteUser removes a record, for its owner or an admin.
func (s *UserService) DeleteUser(ctx context.Context, callerName, id string) error {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	caller, err := s.resolveCaller(ctx, callerName)
	if err != nil {
		return err
	}
	if !caller.CanAccess(user.Name) {
		return domain.ErrPermissionDenied
	}

	if err := s.repo.Delete(ctx, user.ID); err != nil {
		return err
	}
	s.logger.Info().Str("user_id", id).Str("deleted_by", callerName).Msg("user deleted")
	return nil
}

// ListUsers returns every record. Admin only.
func (s *UserService) ListUsers(ctx context.Context, callerName string) ([]domain.PublicUser, error) {
	caller, err := s.resolveCaller(ctx, callerName)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() {
		return nil, domain.ErrPermissionDenied
	}

	users, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return publicViews(users), nil
}

// ListUsersPaged returns one page of records. Admin only.
func (s *UserService) ListUsersPaged(ctx context.Context, callerName string, page, size int) ([]domain.PublicUser, error) {
	caller, err := s.resolveCaller(ctx, callerName)
	if err != nil {
		return nil, err
	}
	if !caller.IsAdmin() {
		return nil, domain.ErrPermissionDenied
	}

	users, err := s.repo.FindPage(ctx, page, size)
	if err != nil {
		return nil, err
	}
	return publicViews(users), nil
}

// resolveCaller turns the subject name vouched for by the token into a
// full principal. The role always comes from the store, never from the
// token. An empty name is anonymous; a subject that no longer exists is
// treated the same way, so stale tokens of deleted users carry no access.
func (s *UserService) resolveCaller(ctx context.Context, callerName string) (*domain.Principal, error) {
	if callerName == "" {
		return nil, nil
	}
	user, err := s.repo.FindByName(ctx, callerName)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &domain.Principal{Name: user.Name, Role: user.Role}, nil
}

func publicViews(users []domain.User) []domain.PublicUser {
	out := make([]domain.PublicUser, 0, len(users))
	for i := range users {
		out = append(out, *users[i].Public())
	}
	return out
}
