// Package auth owns the session lifecycle: registration, credential login
// with token issuance, and logout teardown.
package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/ksrami99/video-tube/internal/auth/credentials"
	"github.com/ksrami99/video-tube/internal/auth/token"
	"github.com/ksrami99/video-tube/internal/httpx"
	"github.com/ksrami99/video-tube/internal/logger"
	"github.com/ksrami99/video-tube/internal/media"
	"github.com/ksrami99/video-tube/internal/user"
)

type RegisterInput struct {
	FullName string
	Email    string
	Username string
	Password string

	// AvatarRef must resolve to an uploaded asset; CoverRef is optional.
	AvatarRef string
	CoverRef  string
}

type LoginInput struct {
	Username string
	Email    string
	Password string
}

type LoginResult struct {
	User   user.Public
	Tokens token.Pair
}

// SessionService orchestrates the credential store, the upload registry,
// and the token issuer. It holds no state of its own.
type SessionService struct {
	users   user.Repository
	uploads media.Registry
	tokens  *token.Issuer
}

func NewSessionService(users user.Repository, uploads media.Registry, tokens *token.Issuer) *SessionService {
	return &SessionService{
		users:   users,
		uploads: uploads,
		tokens:  tokens,
	}
}

// Register validates input, checks uniqueness, resolves the uploaded
// media, and creates the account. The returned view excludes credential
// material.
func (s *SessionService) Register(ctx context.Context, in RegisterInput) (user.Public, error) {
	fullname := strings.TrimSpace(in.FullName)
	email := strings.TrimSpace(in.Email)
	username := strings.ToLower(strings.TrimSpace(in.Username))
	if fullname == "" || email == "" || username == "" || strings.TrimSpace(in.Password) == "" {
		return user.Public{}, httpx.E(httpx.KindValidation, "all fields are required")
	}

	// Advisory pre-check; the unique indexes are the real guard against a
	// concurrent duplicate slipping through.
	exists, err := s.users.ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return user.Public{}, httpx.Wrap(httpx.KindInternal, "something went wrong while registering user", err)
	}
	if exists {
		return user.Public{}, httpx.E(httpx.KindConflict, "user with email or username already exists")
	}

	avatar, err := s.resolveUpload(ctx, in.AvatarRef)
	if err != nil {
		return user.Public{}, err
	}
	if avatar == nil {
		return user.Public{}, httpx.E(httpx.KindValidation, "avatar file is required")
	}

	coverURL := ""
	if cover, err := s.resolveUpload(ctx, in.CoverRef); err != nil {
		return user.Public{}, err
	} else if cover != nil {
		coverURL = cover.URL
	}

	hash, err := credentials.HashPassword(in.Password)
	if err != nil {
		if errors.Is(err, credentials.ErrPasswordTooShort) {
			return user.Public{}, httpx.E(httpx.KindValidation, err.Error())
		}
		return user.Public{}, httpx.Wrap(httpx.KindInternal, "something went wrong while registering user", err)
	}

	created, err := s.users.Create(ctx, &user.User{
		FullName:      fullname,
		Username:      username,
		Email:         email,
		AvatarURL:     avatar.URL,
		CoverImageURL: coverURL,
		PasswordHash:  hash,
	})
	if err != nil {
		if errors.Is(err, user.ErrDuplicate) {
			return user.Public{}, httpx.E(httpx.KindConflict, "user with email or username already exists")
		}
		return user.Public{}, httpx.Wrap(httpx.KindInternal, "something went wrong while registering user", err)
	}

	// Consistency check: the record must be readable right after create.
	got, err := s.users.FindByID(ctx, created.ID)
	if err != nil {
		return user.Public{}, httpx.Wrap(httpx.KindInternal, "something went wrong while registering user", err)
	}

	logger.Info("user registered", map[string]any{"user_id": got.ID})

	return got.Sanitized(), nil
}

// Login verifies credentials and mints the token pair. The refresh token
// is persisted before success is reported: a success response always
// corresponds to a stored refresh token.
func (s *SessionService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	username := strings.ToLower(strings.TrimSpace(in.Username))
	email := strings.TrimSpace(in.Email)
	if username == "" && email == "" {
		return nil, httpx.E(httpx.KindValidation, "username or email required")
	}

	u, err := s.users.FindByIdentifier(ctx, username, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, httpx.E(httpx.KindNotFound, "user does not exist")
		}
		return nil, httpx.Wrap(httpx.KindInternal, "something went wrong while logging in", err)
	}

	if err := credentials.VerifyPassword(u.PasswordHash, in.Password); err != nil {
		return nil, httpx.E(httpx.KindAuthentication, "invalid user credentials")
	}

	pair, err := s.issueAndPersist(ctx, u)
	if err != nil {
		return nil, err
	}

	// Correlation id only; tokens are never logged.
	logger.Info("user logged in", map[string]any{"user_id": u.ID})

	return &LoginResult{User: u.Sanitized(), Tokens: *pair}, nil
}

// Logout clears the stored refresh token. The clear completes before the
// caller may report success; repeated logouts are not an error.
func (s *SessionService) Logout(ctx context.Context, userID string) error {
	if err := s.users.ClearRefreshToken(ctx, userID); err != nil {
		return httpx.Wrap(httpx.KindInternal, "something went wrong while logging out", err)
	}

	logger.Info("user logged out", map[string]any{"user_id": userID})
	return nil
}

// Me returns the sanitized account for an authenticated user id.
func (s *SessionService) Me(ctx context.Context, userID string) (user.Public, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.Public{}, httpx.E(httpx.KindNotFound, "user does not exist")
		}
		return user.Public{}, httpx.Wrap(httpx.KindInternal, "something went wrong", err)
	}
	return u.Sanitized(), nil
}

// issueAndPersist mints the pair and stores the refresh half. Signing-key
// and persistence failures surface uniformly as internal errors so key
// problems never leak raw to the client.
func (s *SessionService) issueAndPersist(ctx context.Context, u *user.User) (*token.Pair, error) {
	access, err := s.tokens.AccessToken(u.ID, u.Username, u.Email)
	if err != nil {
		return nil, httpx.Wrap(httpx.KindInternal, "token generation failed", err)
	}

	refresh, err := s.tokens.RefreshToken(u.ID)
	if err != nil {
		return nil, httpx.Wrap(httpx.KindInternal, "token generation failed", err)
	}

	if err := s.users.UpdateRefreshToken(ctx, u.ID, refresh); err != nil {
		return nil, httpx.Wrap(httpx.KindInternal, "token generation failed", err)
	}

	return &token.Pair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *SessionService) resolveUpload(ctx context.Context, ref string) (*media.Asset, error) {
	if ref == "" {
		return nil, nil
	}
	a, err := s.uploads.Resolve(ctx, ref)
	if err != nil {
		return nil, httpx.Wrap(httpx.KindInternal, "something went wrong while registering user", err)
	}
	return a, nil
}
