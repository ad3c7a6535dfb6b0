package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"storefront/internal/apperr"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/validation"

	"github.com/dgrijalva/jwt-go"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Claims is the JWT payload issued on login.
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.StandardClaims
}

// RegisterInput is the self-registration form.
type RegisterInput struct {
	UserName        string `json:"userName" validate:"required,min=3,max=30"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
	IsNotRobot      bool   `json:"isNotRobot"`
}

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	userRepo  repositories.UserRepository
	jwtSecret []byte
	tokenTTL  time.Duration
	validate  *validator.Validate
	logger    *zap.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, jwtSecret string, tokenTTL time.Duration, logger *zap.Logger) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		validate:  validation.New(),
		logger:    logger,
	}
}

// TokenTTL is how long issued tokens stay valid.
func (s *AuthService) TokenTTL() time.Duration {
	return s.tokenTTL
}

// RegisterUser registers a new user with the user role, hashing their password.
func (s *AuthService) RegisterUser(input RegisterInput) (*models.User, error) {
	input.UserName = strings.TrimSpace(input.UserName)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))

	if err := s.validate.Struct(input); err != nil {
		return nil, apperr.InvalidFields(validation.Messages(err))
	}
	if !input.IsNotRobot {
		return nil, apperr.Validation("HumanVerificationRequired", "please confirm you are not a robot")
	}

	if err := s.ensureFree(s.userRepo.GetByUsername, input.UserName); err != nil {
		return nil, err
	}
	if err := s.ensureFree(s.userRepo.GetByEmail, input.Email); err != nil {
		return nil, err
	}

	user, err := s.newUser(input.UserName, input.Email, input.Password, models.RoleUser)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user registered", zap.String("user_id", user.ID))
	return user, nil
}

func (s *AuthService) ensureFree(lookup func(string) (*models.User, error), key string) error {
	existing, err := lookup(key)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to look up user %s: %w", key, err)
	}
	if existing != nil {
		return apperr.Conflict("UserExists", fmt.Sprintf("'%s' is already registered", key))
	}
	return nil
}

func (s *AuthService) newUser(userName, email, password, role string) (*models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user := &models.User{
		UserName: userName,
		Email:    email,
		Password: string(hashedPassword),
		Role:     role,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}

// LoginUser authenticates a user by email and returns a signed JWT.
func (s *AuthService) LoginUser(email, password string) (string, *models.User, error) {
	user, err := s.userRepo.GetByEmail(strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return "", nil, apperr.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, apperr.ErrInvalidCredentials
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID:   user.ID,
		Username: user.UserName,
		Role:     user.Role,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: now.Add(s.tokenTTL).Unix(),
			IssuedAt:  now.Unix(),
		},
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return tokenString, user, nil
}

// ValidateToken parses and validates a JWT token, returning its claims.
func (s *AuthService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		s.logger.Debug("token validation failed", zap.Error(err))
		return nil, fmt.Errorf("invalid token: %w", apperr.ErrUnauthorized)
	}
	if !token.Valid || claims.UserID == "" {
		return nil, fmt.Errorf("invalid token: %w", apperr.ErrUnauthorized)
	}
	return claims, nil
}

// GetUser returns the user behind a token's claims.
func (s *AuthService) GetUser(id string) (*models.User, error) {
	return s.userRepo.GetByID(id)
}

// EnsureAdmin creates the admin account for email unless it already exists.
// An empty email disables the bootstrap.
func (s *AuthService) EnsureAdmin(email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil
	}
	if _, err := s.userRepo.GetByEmail(email); err == nil {
		return nil
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return fmt.Errorf("failed to look up admin %s: %w", email, err)
	}
	if len(password) < 6 {
		return apperr.Validation("WeakPassword", "admin password must be at least 6 characters")
	}

	userName := strings.SplitN(email, "@", 2)[0]
	if err := s.ensureFree(s.userRepo.GetByUsername, userName); err != nil {
		userName = "admin"
	}
	user, err := s.newUser(userName, email, password, models.RoleAdmin)
	if err != nil {
		return fmt.Errorf("failed to create admin %s: %w", email, err)
	}
	s.logger.Info("admin account created", zap.String("user_id", user.ID), zap.String("email", email))
	return nil
}
