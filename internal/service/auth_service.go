package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"roomies/invitehub/internal/model"
	"roomies/invitehub/internal/repository"
	"roomies/invitehub/pkg/crypto"
	jwtpkg "roomies/invitehub/pkg/jwt"
)

const refreshTokenKeyPrefix = "refresh:"

// TokenSet represents a set of tokens returned after authentication.
type TokenSet struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

type RegisterInput struct {
	DisplayName string
	Identifier  string
	Password    string
	InviteCode  string
}

type RegisterResult struct {
	User   *model.User
	Tokens *TokenSet
	// Invite is nil when no code was submitted or the store could not be
	// reached; in the latter case the client may retry the consume call.
	Invite *ConsumeResult
}

// InviteDeclinedError is returned by Register when invites are required and
// the submitted code was declined.
type InviteDeclinedError struct {
	Reason model.InviteReason
}

func (e *InviteDeclinedError) Error() string {
	return "invite code declined: " + string(e.Reason)
}

func (e *InviteDeclinedError) Is(target error) bool {
	return target == ErrInviteCodeInvalid
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*RegisterResult, error)
	Login(ctx context.Context, identifier, password string) (*TokenSet, error)
	RefreshToken(ctx context.Context, refreshToken string) (*TokenSet, error)
	Logout(ctx context.Context, refreshToken string) error
}

type authService struct {
	userRepo       repository.UserRepository
	identityRepo   repository.IdentityRepository
	stateStore     repository.StateStore
	jwtManager     *jwtpkg.Manager
	validator      InviteValidator
	consumer       InviteConsumer
	inviteRequired bool
	logger         *zap.Logger
}

func NewAuthService(
	userRepo repository.UserRepository,
	identityRepo repository.IdentityRepository,
	stateStore repository.StateStore,
	jwtManager *jwtpkg.Manager,
	validator InviteValidator,
	consumer InviteConsumer,
	inviteRequired bool,
	logger *zap.Logger,
) AuthService {
	return &authService{
		userRepo:       userRepo,
		identityRepo:   identityRepo,
		stateStore:     stateStore,
		jwtManager:     jwtManager,
		validator:      validator,
		consumer:       consumer,
		inviteRequired: inviteRequired,
		logger:         logger.Named("auth"),
	}
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	identifier := strings.TrimSpace(in.Identifier)
	code := normalizeCode(in.InviteCode)

	// 1. Gate on the invite when required. The account is created before the
	// code is consumed, so this is a pre-check only.
	if s.inviteRequired {
		if code == "" {
			return nil, ErrInviteCodeRequired
		}
		verdict, err := s.validator.Validate(ctx, code)
		if err != nil {
			return nil, err
		}
		if !verdict.Valid {
			return nil, &InviteDeclinedError{Reason: verdict.Reason}
		}
	}

	// 2. Identifier must be free
	_, err := s.identityRepo.GetByTypeAndIdentifier(ctx, model.IdentityTypePassword, identifier)
	if err == nil {
		return nil, ErrIdentityAlreadyExists
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check identity: %w", err)
	}

	// 3. Create user and password identity
	hash, err := crypto.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user := &model.User{
		ID:          uuid.New(),
		DisplayName: strings.TrimSpace(in.DisplayName),
		Status:      model.UserStatusActive,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	identity := &model.UserIdentity{
		ID:             uuid.New(),
		UserID:         user.ID,
		IdentityType:   model.IdentityTypePassword,
		Identifier:     identifier,
		CredentialData: model.CredentialData{"password_hash": hash},
	}
	if err := s.identityRepo.Create(ctx, identity); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, ErrIdentityAlreadyExists
		}
		return nil, fmt.Errorf("failed to create identity: %w", err)
	}

	// 4. Issue tokens
	tokens, err := s.issueTokens(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	result := &RegisterResult{User: user, Tokens: tokens}

	// 5. Consume the invite for the new account
	if code != "" {
		consumed, err := s.consumer.Consume(ctx, code, user.ID)
		if err != nil {
			s.logger.Warn("invite not consumed at registration",
				zap.String("user_id", user.ID.String()),
				zap.Error(err),
			)
		} else {
			result.Invite = &consumed
		}
	}
	return result, nil
}

func (s *authService) Login(ctx context.Context, identifier, password string) (*TokenSet, error) {
	identity, err := s.identityRepo.GetByTypeAndIdentifier(ctx, model.IdentityTypePassword, strings.TrimSpace(identifier))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find identity: %w", err)
	}
	if !crypto.CheckPassword(password, identity.CredentialData.PasswordHash()) {
		return nil, ErrInvalidCredentials
	}
	if err := s.ensureActive(ctx, identity.UserID); err != nil {
		return nil, err
	}
	return s.issueTokens(ctx, identity.UserID)
}

func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*TokenSet, error) {
	claims, err := s.validRefreshClaims(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrRefreshTokenInvalid
	}
	if err := s.ensureActive(ctx, userID); err != nil {
		return nil, err
	}

	// Rotate: the old refresh token is single use.
	if err := s.stateStore.Delete(ctx, refreshTokenKeyPrefix+claims.ID); err != nil {
		return nil, fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return s.issueTokens(ctx, userID)
}

func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.validRefreshClaims(ctx, refreshToken)
	if err != nil {
		return err
	}
	if err := s.stateStore.Delete(ctx, refreshTokenKeyPrefix+claims.ID); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}

func (s *authService) validRefreshClaims(ctx context.Context, refreshToken string) (*jwtpkg.Claims, error) {
	claims, err := s.jwtManager.Validate(refreshToken)
	if err != nil || claims.TokenType != jwtpkg.TokenTypeRefresh {
		return nil, ErrRefreshTokenInvalid
	}
	live, err := s.stateStore.Exists(ctx, refreshTokenKeyPrefix+claims.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check refresh token: %w", err)
	}
	if !live {
		return nil, ErrRefreshTokenInvalid
	}
	return claims, nil
}

func (s *authService) ensureActive(ctx context.Context, userID uuid.UUID) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to find user: %w", err)
	}
	if user.Status != model.UserStatusActive {
		return ErrUserDisabled
	}
	return nil
}

func (s *authService) issueTokens(ctx context.Context, userID uuid.UUID) (*TokenSet, error) {
	access, err := s.jwtManager.GenerateAccessToken(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}
	refresh, claims, err := s.jwtManager.GenerateRefreshToken(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}
	if err := s.stateStore.Set(ctx, refreshTokenKeyPrefix+claims.ID, []byte(userID.String()), s.jwtManager.RefreshTokenTTL()); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}
	return &TokenSet{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.jwtManager.AccessTokenTTL().Seconds()),
	}, nil
}

// ensure authService implements AuthService
var _ AuthService = (*authService)(nil)
