package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/akryukov/gachamart/internal/apperrors"
	"github.com/akryukov/gachamart/internal/models"
	"github.com/akryukov/gachamart/internal/repository"
	"github.com/akryukov/gachamart/internal/service/auth/tokenmanager"
)

// Service owns the auth boundary: it turns credentials into a signed
// access token and a request into a trusted user identity. Everything
// past this boundary works with the resolved user id only.
type Service struct {
	storage repository.Storage
	hasher  PasswordHasher
	tokens  *tokenmanager.TokenManager
}

func NewService(storage repository.Storage, hasher PasswordHasher, tokens *tokenmanager.TokenManager) *Service {
	if hasher == nil {
		hasher = DefaultHasher
	}

	return &Service{
		storage: storage,
		hasher:  hasher,
		tokens:  tokens,
	}
}

// Register creates user with zero balance and logs it in.
// User and balance rows are created in the same transaction: a user
// without a balance row must not exist.
func (s *Service) Register(ctx context.Context, username string, password string) (models.IssuedToken, error) {
	var token models.IssuedToken

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return token, fmt.Errorf("can't use this as password, Err: %w", err)
	}

	var user models.User
	err = s.storage.InTx(ctx, func(st repository.Storage) error {
		user, err = st.User().CreateUser(ctx, username, hash)
		if err != nil {
			return err
		}

		return st.Balance().CreateBalance(ctx, user.ID)
	})
	if err != nil {
		return token, fmt.Errorf("can't create user. Err: %w", err)
	}

	return s.tokens.Issue(user)
}

// Login verifies credentials and issues an access token
func (s *Service) Login(ctx context.Context, username string, password string) (models.IssuedToken, error) {
	var token models.IssuedToken

	user, err := s.storage.User().GetUserByUsername(ctx, username)
	if err != nil {
		return token, err
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		return token, apperrors.ErrUserNotFound
	}

	return s.tokens.Issue(user)
}

// Auth resolves the request's bearer token into a user
func (s *Service) Auth(ctx context.Context, r *http.Request) (models.User, error) {
	var user models.User

	header := r.Header.Get("Authorization")
	access, found := strings.CutPrefix(header, "Bearer ")
	if !found || access == "" {
		return user, errors.New("missing bearer token")
	}

	userID, err := s.tokens.Parse(access)
	if err != nil {
		return user, err
	}

	return s.storage.User().GetUserByID(ctx, userID)
}
