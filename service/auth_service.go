package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/RigelNana/studygen/config"
	"github.com/RigelNana/studygen/models"
	"github.com/RigelNana/studygen/repository"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

type AuthService interface {
	Register(email, password, firstName, lastName string) (*models.User, error)
	Login(email, password string) (string, *models.User, error)
	ValidateToken(token string) (uint, error)
	GetUser(id uint) (*models.User, error)
}

type AuthServiceImpl struct {
	store         repository.Storage
	secret        []byte
	expireMinutes int
}

type tokenClaims struct {
	UserID uint `json:"user_id"`
	jwt.RegisteredClaims
}

func NewAuthService(store repository.Storage, cfg config.JWTConfig) *AuthServiceImpl {
	return &AuthServiceImpl{
		store:         store,
		secret:        []byte(cfg.Secret),
		expireMinutes: cfg.ExpireMinutes,
	}
}

func (s *AuthServiceImpl) Register(email, password, firstName, lastName string) (*models.User, error) {
	if _, err := s.store.GetUserByEmail(email); err == nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:     email,
		Password:  string(hash),
		FirstName: firstName,
		LastName:  lastName,
	}
	if err := s.store.CreateUser(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthServiceImpl) Login(email, password string) (string, *models.User, error) {
	user, err := s.store.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}

	claims := tokenClaims{
		UserID: user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Duration(s.expireMinutes) * time.Minute)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *AuthServiceImpl) ValidateToken(tokenStr string) (uint, error) {
	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return 0, errors.New("invalid token")
	}
	return claims.UserID, nil
}

func (s *AuthServiceImpl) GetUser(id uint) (*models.User, error) {
	return s.store.GetUserByID(id)
}
