package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

// CredentialStore persists user accounts. CreateUser must report an existing
// e-mail as ErrDuplicateEmail using the storage unique constraint.
type CredentialStore interface {
	CreateUser(ctx context.Context, user User, passwordHash string) (User, error)
	GetUser(ctx context.Context, id string) (User, error)
	GetUserCredentialsByEmail(ctx context.Context, email string) (UserCredentials, error)
}

// PasswordDigester hashes and compares passwords.
type PasswordDigester interface {
	Hash(plaintext string) (string, error)
	Compare(digest, plaintext string) error
}

// AuthService coordinates registration, login and identity lookups.
type AuthService struct {
	credentials CredentialStore
	passwords   PasswordDigester
	tokens      *TokenManager
	admins      *AdminPolicy
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// AuthServiceDeps captures the collaborators of an AuthService.
type AuthServiceDeps struct {
	Credentials CredentialStore
	Passwords   PasswordDigester
	Tokens      *TokenManager
	Admins      *AdminPolicy
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewAuthService constructs an AuthService with the provided dependencies.
func NewAuthService(deps AuthServiceDeps) *AuthService {
	if deps.Passwords == nil {
		deps.Passwords = NewPasswordHasher(DefaultArgon2idParams)
	}
	if deps.Admins == nil {
		deps.Admins = NewAdminPolicy(nil)
	}
	if deps.IDGenerator == nil {
		deps.IDGenerator = uuid.NewString
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &AuthService{
		credentials: deps.Credentials,
		passwords:   deps.Passwords,
		tokens:      deps.Tokens,
		admins:      deps.Admins,
		idGenerator: deps.IDGenerator,
		now:         deps.Now,
		logger:      defaultLogger(deps.Logger),
	}
}

func (s *AuthService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AuthService", operation, attrs...)
}

// Register validates params and stores a new user with a hashed password.
func (s *AuthService) Register(ctx context.Context, params RegisterParams) (user User, err error) {
	if s == nil || s.credentials == nil {
		err = fmt.Errorf("credential store not configured")
		return
	}

	params = normalizeRegisterParams(params)
	logger := s.loggerWith(ctx, "Register", "email", params.Email)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "registration failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("user_id", user.ID).InfoContext(ctx, "user registered")
	}()

	if vErr := validateRegisterParams(params); vErr.HasErrors() {
		err = vErr
		return
	}

	var digest string
	digest, err = s.passwords.Hash(params.Password)
	if err != nil {
		return
	}

	user, err = s.credentials.CreateUser(ctx, User{
		ID:          s.idGenerator(),
		DisplayName: params.DisplayName,
		Surname:     params.Surname,
		Email:       params.Email,
		Group:       params.Group,
		Phone:       params.Phone,
		CreatedAt:   s.now().UTC(),
	}, digest)
	return
}

// Login checks credentials and issues a token whose admin claim reflects the
// allow-list at this moment.
func (s *AuthService) Login(ctx context.Context, params LoginParams) (result LoginResult, err error) {
	if s == nil || s.credentials == nil || s.tokens == nil {
		err = fmt.Errorf("auth service not configured")
		return
	}

	email := strings.TrimSpace(params.Email)
	logger := s.loggerWith(ctx, "Login", "email", email)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "login failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With(
			"user_id", result.User.ID,
			"is_admin", result.Token.Claims.IsAdmin,
		).InfoContext(ctx, "login succeeded")
	}()

	vErr := &ValidationError{}
	if email == "" {
		vErr.add("email", "email is required")
	}
	if params.Password == "" {
		vErr.add("password", "password is required")
	}
	if vErr.HasErrors() {
		err = vErr
		return
	}

	var creds UserCredentials
	creds, err = s.credentials.GetUserCredentialsByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			err = ErrInvalidCredentials
		}
		return
	}

	if err = s.passwords.Compare(creds.PasswordHash, params.Password); err != nil {
		err = ErrInvalidCredentials
		return
	}

	var token IssuedToken
	token, err = s.tokens.Issue(creds.User, s.admins.IsAdmin(creds.User.Email))
	if err != nil {
		return
	}

	result = LoginResult{User: creds.User, Token: token}
	return
}

// FindByEmail returns the user registered with exactly this e-mail.
func (s *AuthService) FindByEmail(ctx context.Context, email string) (User, error) {
	if s == nil || s.credentials == nil {
		return User{}, fmt.Errorf("credential store not configured")
	}
	creds, err := s.credentials.GetUserCredentialsByEmail(ctx, email)
	if err != nil {
		return User{}, err
	}
	return creds.User, nil
}

// FindByID returns the user with the given id.
func (s *AuthService) FindByID(ctx context.Context, id string) (User, error) {
	if s == nil || s.credentials == nil {
		return User{}, fmt.Errorf("credential store not configured")
	}
	return s.credentials.GetUser(ctx, id)
}

// Authenticate verifies a presented token and returns the caller.
func (s *AuthService) Authenticate(ctx context.Context, token string) (principal Principal, err error) {
	if s == nil || s.tokens == nil {
		err = fmt.Errorf("token manager not configured")
		return
	}

	logger := s.loggerWith(ctx, "Authenticate", "token_provided", strings.TrimSpace(token) != "")
	defer func() {
		if err != nil {
			logger.WarnContext(ctx, "token rejected", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("principal_id", principal.UserID).DebugContext(ctx, "token verified")
	}()

	var claims Claims
	claims, err = s.tokens.Verify(token)
	if err != nil {
		return
	}
	principal = claims.Principal()
	return
}

// CurrentIdentity resolves the caller against storage and re-derives the
// admin flag from the current allow-list.
func (s *AuthService) CurrentIdentity(ctx context.Context, principal Principal) (identity Identity, err error) {
	logger := s.loggerWith(ctx, "CurrentIdentity", "principal_id", principal.UserID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "identity lookup failed", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	if principal.UserID == "" {
		err = ErrMissingCredential
		return
	}

	var user User
	user, err = s.FindByID(ctx, principal.UserID)
	if err != nil {
		return
	}

	identity = Identity{
		UserID:    user.ID,
		Email:     user.Email,
		IsAdmin:   s.admins.IsAdmin(user.Email),
		ExpiresAt: principal.ExpiresAt,
	}
	return
}

func normalizeRegisterParams(params RegisterParams) RegisterParams {
	return RegisterParams{
		DisplayName: strings.TrimSpace(params.DisplayName),
		Surname:     strings.TrimSpace(params.Surname),
		Email:       strings.TrimSpace(params.Email),
		Password:    params.Password,
		Group:       strings.TrimSpace(params.Group),
		Phone:       strings.TrimSpace(params.Phone),
	}
}

func validateRegisterParams(params RegisterParams) *ValidationError {
	vErr := &ValidationError{}
	required := []struct {
		field string
		value string
	}{
		{"user_name", params.DisplayName},
		{"surname", params.Surname},
		{"email", params.Email},
		{"password", params.Password},
		{"user_group", params.Group},
		{"phone", params.Phone},
	}
	for _, r := range required {
		if r.value == "" {
			vErr.add(r.field, r.field+" is required")
		}
	}

	if params.Email != "" {
		if addr, err := mail.ParseAddress(params.Email); err != nil || addr.Address != params.Email {
			vErr.add("email", "email is invalid")
		}
	}
	return vErr
}
