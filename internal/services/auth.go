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

	"github.com/yungbote/studybuddy-backend/internal/data/repos"
	types "github.com/yungbote/studybuddy-backend/internal/domain"
	"github.com/yungbote/studybuddy-backend/internal/domain/user"
	"github.com/yungbote/studybuddy-backend/internal/pkg/dbctx"
	"github.com/yungbote/studybuddy-backend/internal/platform/apierr"
	"github.com/yungbote/studybuddy-backend/internal/platform/ctxutil"
	"github.com/yungbote/studybuddy-backend/internal/platform/logger"
)

const (
	minPasswordLen = 6
	// bcrypt ignores nothing past 72 bytes; it refuses longer input outright.
	maxPasswordLen = 72
)

type LoginResult struct {
	AccessToken          string `json:"accessToken"`
	IsUserDetailsPresent bool   `json:"isUserDetailsPresent"`
}

type AuthService interface {
	Register(ctx context.Context, email, password, role string) (*types.User, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	EnsureAdmin(ctx context.Context, email, password string) (*types.User, bool, error)
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	GetAccessTTL() time.Duration
}

type JWTClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

type authService struct {
	db          *gorm.DB
	log         *logger.Logger
	userRepo    repos.UserRepo
	detailsRepo repos.UserDetailsRepo
	jwtSecret   []byte
	accessTTL   time.Duration
	now         Clock
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	userRepo repos.UserRepo,
	detailsRepo repos.UserDetailsRepo,
	jwtSecretKey string,
	accessTTL time.Duration,
) AuthService {
	return &authService{
		db:          db,
		log:         log.With("service", "AuthService"),
		userRepo:    userRepo,
		detailsRepo: detailsRepo,
		jwtSecret:   []byte(jwtSecretKey),
		accessTTL:   accessTTL,
		now:         systemClock,
	}
}

func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hashed), nil
}

func validateCredentials(email, password string) error {
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return apierr.BadRequest("invalid_email", "a valid email is required")
	}
	return validatePassword(password)
}

func validatePassword(password string) error {
	if len(password) < minPasswordLen {
		return apierr.BadRequest("invalid_password", "password must be at least %d characters", minPasswordLen)
	}
	if len(password) > maxPasswordLen {
		return apierr.BadRequest("invalid_password", "password must be at most %d bytes", maxPasswordLen)
	}
	return nil
}

func (as *authService) Register(ctx context.Context, email, password, role string) (*types.User, error) {
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}
	if role == "" {
		role = user.RoleStudent
	}
	if !ValidRole(role) {
		return nil, apierr.BadRequest("invalid_role", "unknown role %q", role)
	}
	hashed, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	var created *types.User
	err = as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		exists, err := as.userRepo.EmailExists(dbc, email)
		if err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if exists {
			return apierr.Conflict("user_exists", "user already exists")
		}
		out, err := as.userRepo.Create(dbc, []*types.User{{Email: email, Password: hashed, Role: role}})
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// lost a race with a concurrent registration
			return apierr.Conflict("user_exists", "user already exists")
		}
		if err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		created = out[0]
		return nil
	})
	if err != nil {
		return nil, err
	}
	as.log.Ctx(ctx).Info("User registered", "user_id", created.ID, "role", created.Role)
	return created, nil
}

var errInvalidCredentials = apierr.Unauthorized("invalid_credentials", "invalid credentials")

func (as *authService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	dbc := dbctx.New(ctx)
	found, err := as.userRepo.GetByEmail(dbc, email)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if found == nil {
		// same answer as a wrong password
		return nil, errInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(found.Password), []byte(password)); err != nil {
		return nil, errInvalidCredentials
	}

	token, err := as.generateAccessToken(found)
	if err != nil {
		return nil, err
	}
	details, err := as.detailsRepo.GetByUserID(dbc, found.ID)
	if err != nil {
		return nil, fmt.Errorf("load user details: %w", err)
	}
	return &LoginResult{AccessToken: token, IsUserDetailsPresent: details != nil}, nil
}

// EnsureAdmin creates an admin account or promotes an existing one. The
// boolean is true when a new account was created.
func (as *authService) EnsureAdmin(ctx context.Context, email, password string) (*types.User, bool, error) {
	dbc := dbctx.New(ctx)
	existing, err := as.userRepo.GetByEmail(dbc, email)
	if err != nil {
		return nil, false, fmt.Errorf("load user: %w", err)
	}
	if existing == nil {
		created, err := as.Register(ctx, email, password, user.RoleAdmin)
		return created, err == nil, err
	}
	if existing.Role != user.RoleAdmin {
		if err := as.userRepo.UpdateFields(dbc, existing.ID, map[string]interface{}{"role": user.RoleAdmin}); err != nil {
			return nil, false, fmt.Errorf("promote user: %w", err)
		}
		existing.Role = user.RoleAdmin
		as.log.Ctx(ctx).Info("User promoted to admin", "user_id", existing.ID)
	}
	return existing, false, nil
}

func (as *authService) generateAccessToken(u *types.User) (string, error) {
	now := as.now()
	claims := JWTClaims{
		Email: u.Email,
		Role:  u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(as.accessTTL)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(as.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	claims := &JWTClaims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return as.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(as.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ctx, apierr.Unauthorized("token_expired", "token expired")
		}
		return ctx, apierr.Unauthorized("invalid_token", "invalid token")
	}
	if !parsed.Valid {
		return ctx, apierr.Unauthorized("invalid_token", "invalid token")
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, apierr.Unauthorized("invalid_token", "invalid token subject")
	}
	return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{
		TokenString: tokenString,
		UserID:      userID,
		Email:       claims.Email,
		Role:        claims.Role,
	}), nil
}

func (as *authService) GetAccessTTL() time.Duration { return as.accessTTL }
