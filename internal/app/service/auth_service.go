package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"expense_manager/internal/common"
	"expense_manager/internal/common/security"
	"expense_manager/internal/domain/model"
	"expense_manager/internal/domain/repository"

	"github.com/google/uuid"
)

// AuthService is the access control gate: it turns credentials into tokens
// and tokens into store-backed identities, and owns the admin user
// management operations.
type AuthService struct {
	userRepo repository.UserRepository
	issuer   *security.TokenIssuer

	// dummyHash is compared against when a login names an unknown user, so
	// the absent-user and wrong-password paths cost the same.
	dummyHash string
}

func NewAuthService(userRepo repository.UserRepository, issuer *security.TokenIssuer) *AuthService {
	dummy, err := security.HashPassword(uuid.NewString())
	if err != nil {
		// bcrypt with default cost only fails on broken randomness.
		log.Printf("WARN: failed to precompute dummy hash: %v", err)
	}
	return &AuthService{
		userRepo:  userRepo,
		issuer:    issuer,
		dummyHash: dummy,
	}
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
	Role  string `json:"role"`
}

type CreateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"` // "admin" or "user"
}

// Login authenticates a (username, password) pair and mints a session token.
// An unknown username and a wrong password return the identical
// ErrInvalidCredentials; nothing reveals which factor failed.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	if req.Username == "" || req.Password == "" {
		return nil, common.ErrInvalidCredentials
	}

	user, err := s.userRepo.FindByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			security.CheckPasswordHash(req.Password, s.dummyHash)
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !security.CheckPasswordHash(req.Password, user.HashedPassword) {
		return nil, common.ErrInvalidCredentials
	}

	token, err := s.issuer.Generate(user.Username, user.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &LoginResponse{Token: token, Role: user.Role}, nil
}

// Authenticate resolves a bearer token into the current store-backed user.
// The role is always read fresh from the store, never from the token's role
// claim, so a role change takes effect on the next call. A subject deleted
// after issuance is unauthenticated; tokens are not revocable before expiry.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*model.User, error) {
	claims, err := s.issuer.Verify(token)
	if err != nil {
		// Expired, tampered and malformed tokens are one outcome to the
		// caller; the distinction only matters here.
		log.Printf("token rejected: %v", err)
		return nil, common.ErrUnauthenticated
	}

	user, err := s.userRepo.FindByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthenticated
		}
		return nil, fmt.Errorf("failed to resolve token subject: %w", err)
	}
	return user, nil
}

// CreateUser provisions a new account. Admin-only; the caller's role is
// enforced at the boundary before this runs.
func (s *AuthService) CreateUser(ctx context.Context, req CreateUserRequest) (*model.User, error) {
	if req.Username == "" || req.Password == "" {
		return nil, common.Errorf("username and password are required: %w", common.ErrBadRequest)
	}
	if !model.ValidRole(req.Role) {
		return nil, common.Errorf("role must be %q or %q: %w", model.RoleUser, model.RoleAdmin, common.ErrBadRequest)
	}

	hashedPassword, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:             uuid.NewString(),
		Username:       req.Username,
		HashedPassword: hashedPassword,
		Role:           req.Role,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// Repo returns common.ErrConflict on duplicate usernames.
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	user.HashedPassword = "" // Clear before returning
	return user, nil
}

// ListUsers returns all usernames. Admin-only, enforced at the boundary.
func (s *AuthService) ListUsers(ctx context.Context) ([]string, error) {
	usernames, err := s.userRepo.ListUsernames(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return usernames, nil
}
