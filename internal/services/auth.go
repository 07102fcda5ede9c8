package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/site19/containment-backend/internal/apperr"
	"github.com/site19/containment-backend/internal/logger"
	"github.com/site19/containment-backend/internal/repos"
	"github.com/site19/containment-backend/internal/requestdata"
	"github.com/site19/containment-backend/internal/types"
)

type AuthService interface {
	Register(ctx context.Context, username, password string) (*types.User, error)
	CreateAdmin(ctx context.Context, username, password string) (*types.User, error)
	Login(ctx context.Context, username, password string) (string, *types.User, error)
	Logout(ctx context.Context) error
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	GetAccessTTL() time.Duration
}

type JWTClaims struct {
	jwt.RegisteredClaims
}

type authService struct {
	db            *gorm.DB
	log           *logger.Logger
	userRepo      repos.UserRepo
	userTokenRepo repos.UserTokenRepo
	avatarService AvatarService
	jwtSecretKey  string
	accessTTL     time.Duration
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	userTokenRepo repos.UserTokenRepo,
	avatarService AvatarService,
	jwtSecretKey string,
	accessTTL time.Duration,
) AuthService {
	serviceLog := log.With("service", "AuthService")
	return &authService{
		db:            db,
		log:           serviceLog,
		userRepo:      userRepo,
		userTokenRepo: userTokenRepo,
		avatarService: avatarService,
		jwtSecretKey:  jwtSecretKey,
		accessTTL:     accessTTL,
	}
}

// Register creates a researcher account. Self-registration can never produce
// an admin.
func (as *authService) Register(ctx context.Context, username, password string) (*types.User, error) {
	return as.createUser(ctx, username, password, types.RoleResearcher)
}

// CreateAdmin backs the one-time bootstrap CLI; it is not reachable from the
// HTTP surface.
func (as *authService) CreateAdmin(ctx context.Context, username, password string) (*types.User, error) {
	return as.createUser(ctx, username, password, types.RoleAdmin)
}

func (as *authService) createUser(ctx context.Context, username, password, role string) (*types.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, apperr.Validation("a username is required")
	}
	if password == "" {
		return nil, apperr.Validation("a password is required")
	}

	exists, err := as.userRepo.UsernameExists(ctx, nil, username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if exists {
		return nil, apperr.DuplicateUsername(username)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &types.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: string(hashed),
		Role:         role,
	}
	if _, err := as.userRepo.Create(ctx, nil, user); err != nil {
		// The unique index is the backstop for a concurrent registration that
		// slipped past the existence check.
		if repos.IsUniqueViolation(err) {
			return nil, apperr.DuplicateUsername(username)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if as.avatarService != nil && as.avatarService.Enabled() {
		if path, aErr := as.avatarService.CreateUserAvatar(ctx, user); aErr != nil {
			as.log.Warn("Avatar generation failed, continuing without one", "username", username, "error", aErr)
		} else {
			user.AvatarPath = path
			if sErr := as.db.WithContext(ctx).Model(user).UpdateColumn("avatar_path", path).Error; sErr != nil {
				as.log.Warn("Failed to store avatar path", "username", username, "error", sErr)
			}
		}
	}

	as.log.Info("User created", "username", username, "role", role)
	return user, nil
}

// Login verifies credentials and issues a session token. Unknown username and
// wrong password produce the same error.
func (as *authService) Login(ctx context.Context, username, password string) (string, *types.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", nil, apperr.InvalidCredentials()
	}

	user, err := as.userRepo.GetByUsername(ctx, nil, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, apperr.InvalidCredentials()
		}
		return "", nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, apperr.InvalidCredentials()
	}

	expiresAt := time.Now().Add(as.accessTTL)
	claims := JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	accessToken, err := token.SignedString([]byte(as.jwtSecretKey))
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	userToken := &types.UserToken{
		ID:          uuid.New(),
		UserID:      user.ID,
		AccessToken: accessToken,
		ExpiresAt:   expiresAt,
	}
	if _, err := as.userTokenRepo.Create(ctx, nil, userToken); err != nil {
		return "", nil, fmt.Errorf("failed to create session: %w", err)
	}

	as.log.Info("User logged in", "username", username)
	return accessToken, user, nil
}

// Logout invalidates the current session token.
func (as *authService) Logout(ctx context.Context) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.TokenString == "" {
		return apperr.Unauthenticated("no active session")
	}
	if err := as.userTokenRepo.DeleteByAccessToken(ctx, nil, rd.TokenString); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// SetContextFromToken resolves a session token back to its user and stores
// the actor identity in the context. The token must be a valid JWT and its
// session row must still exist.
func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString == "" {
		return ctx, apperr.Unauthenticated("missing session token")
	}

	parsedToken, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(as.jwtSecretKey), nil
	})
	if err != nil {
		return ctx, apperr.Unauthenticated("invalid or expired session token")
	}
	claims, ok := parsedToken.Claims.(*JWTClaims)
	if !ok || !parsedToken.Valid {
		return ctx, apperr.Unauthenticated("invalid or expired session token")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, apperr.Unauthenticated("invalid session subject")
	}

	if _, err := as.userTokenRepo.GetByAccessToken(ctx, nil, tokenString); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ctx, apperr.Unauthenticated("session has been logged out")
		}
		return ctx, fmt.Errorf("failed to look up session: %w", err)
	}

	user, err := as.userRepo.GetByID(ctx, nil, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ctx, apperr.Unauthenticated("session user no longer exists")
		}
		return ctx, fmt.Errorf("failed to load session user: %w", err)
	}

	rd := &requestdata.RequestData{
		TokenString: tokenString,
		UserID:      user.ID,
		Username:    user.Username,
		Role:        user.Role,
	}
	return requestdata.WithRequestData(ctx, rd), nil
}

func (as *authService) GetAccessTTL() time.Duration {
	return as.accessTTL
}
