package service

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/bienesraices/boutique/internal/config"
	"github.com/bienesraices/boutique/internal/model"
	"github.com/bienesraices/boutique/internal/repository"
	"github.com/bienesraices/boutique/internal/service/identity"
	"github.com/bienesraices/boutique/internal/validation"
)

const sessionCookieName = "auth_token"

var (
	ErrInvalidToken      = errors.New("invalid or expired token")
	ErrTokenExpired      = errors.New("confirmation token has expired")
	ErrAlreadyConfirmed  = errors.New("email already confirmed")
	ErrAccountLocked     = errors.New("account is permanently locked")
	ErrDuplicateGmail    = repository.ErrDuplicateGmail
	ErrDuplicateUsername = repository.ErrDuplicateUsername
)

// LoginStatus classifies the outcome of one login attempt. Anything
// other than LoginOK maps to a Spanish flash message in the handler.
type LoginStatus int

const (
	LoginOK LoginStatus = iota
	LoginUnknownUser
	LoginBadPassword
	LoginTempLocked
	LoginPermanentlyLocked
	LoginEmailUnconfirmed
)

// LoginResult carries everything the handler needs to phrase the
// response: how many free attempts remain, how long a cooldown lasts,
// and whether this very attempt triggered the lock.
type LoginResult struct {
	Status            LoginStatus
	User              *model.User
	RemainingAttempts int
	RetryAfterSeconds int
	FailedAttempts    int
	JustLocked        bool
}

type AuthService struct {
	users  repository.UserRepository
	tokens repository.TokenRepository
	email  *EmailService
	cfg    *config.Config

	// now is swappable in tests to step through lock cooldowns.
	now func() time.Time
}

func NewAuthService(users repository.UserRepository, tokens repository.TokenRepository, email *EmailService, cfg *config.Config) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
		email:  email,
		cfg:    cfg,
		now:    time.Now,
	}
}

// Register creates a password account and mails the confirmation link.
// A mail delivery failure is logged but does not roll back the account;
// the user can request a new link later.
func (s *AuthService) Register(gmail, username, password string) (*model.User, error) {
	gmail = strings.ToLower(strings.TrimSpace(gmail))
	username = strings.TrimSpace(username)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	hashStr := string(hash)

	now := s.now()
	user := &model.User{
		ID:           uuid.New().String(),
		Gmail:        gmail,
		Username:     username,
		PasswordHash: &hashStr,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.users.Create(user)
	if err != nil {
		return nil, err
	}

	err = s.sendConfirmation(user)
	if err != nil {
		slog.Error("failed to send confirmation email", "user_id", user.ID, "error", err)
	}

	slog.Info("user registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

func (s *AuthService) sendConfirmation(user *model.User) error {
	token := &model.Token{
		UserID:    user.ID,
		Type:      model.TokenTypeEmailConfirm,
		Token:     uuid.New().String(),
		ExpiresAt: s.now().Add(s.cfg.ConfirmTokenExpiry),
	}
	err := s.tokens.Create(token)
	if err != nil {
		return fmt.Errorf("failed to create confirmation token: %w", err)
	}

	name := user.Username
	if user.Name != nil && *user.Name != "" {
		name = *user.Name
	}
	return s.email.SendConfirmationEmail(user.Gmail, name, token.Token)
}

// Login runs one password attempt through the lockout gate. The error
// return is reserved for infrastructure failures; every policy outcome
// is a LoginResult.
func (s *AuthService) Login(identifier, password string) (*LoginResult, error) {
	now := s.now()

	user, err := s.users.ByIdentifier(strings.TrimSpace(identifier))
	if errors.Is(err, repository.ErrUserNotFound) {
		// Unknown accounts get a generic refusal and no counter.
		return &LoginResult{Status: LoginUnknownUser}, nil
	}
	if err != nil {
		return nil, err
	}

	gate := user.Gate(now)
	if !gate.Allowed {
		if gate.State == model.LockStatePermanentlyLocked {
			return &LoginResult{Status: LoginPermanentlyLocked, User: user}, nil
		}
		// An active cooldown rejects without consuming an attempt.
		return &LoginResult{
			Status:            LoginTempLocked,
			User:              user,
			RetryAfterSeconds: gate.RemainingSeconds(),
		}, nil
	}

	if s.passwordMatches(user, password) {
		if !user.EmailConfirmed() {
			// Not a failed attempt: the password was right.
			return &LoginResult{Status: LoginEmailUnconfirmed, User: user}, nil
		}
		user.Succeed()
		err = s.users.UpdateLockout(user)
		if err != nil {
			return nil, err
		}
		slog.Info("user logged in", "user_id", user.ID)
		return &LoginResult{Status: LoginOK, User: user}, nil
	}

	fail := user.Fail(now)
	err = s.users.UpdateLockout(user)
	if err != nil {
		return nil, err
	}

	switch fail.State {
	case model.LockStateTempLocked:
		slog.Info("account temporarily locked",
			"user_id", user.ID,
			"failed_attempts", user.FailedAttempts,
		)
		return &LoginResult{
			Status:            LoginTempLocked,
			User:              user,
			RetryAfterSeconds: int(fail.RetryAfter / time.Second),
			FailedAttempts:    user.FailedAttempts,
			JustLocked:        true,
		}, nil
	case model.LockStatePermanentlyLocked:
		slog.Warn("account permanently locked", "user_id", user.ID)
		return &LoginResult{
			Status:     LoginPermanentlyLocked,
			User:       user,
			JustLocked: true,
		}, nil
	default:
		return &LoginResult{
			Status:            LoginBadPassword,
			User:              user,
			RemainingAttempts: fail.RemainingAttempts,
			FailedAttempts:    user.FailedAttempts,
		}, nil
	}
}

// passwordMatches is constant-cost even for OAuth-only accounts, which
// have no hash and can never match.
func (s *AuthService) passwordMatches(user *model.User, password string) bool {
	if !user.HasPassword() {
		return false
	}
	err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(password))
	return err == nil
}

// ConfirmEmail consumes a confirmation token and activates the account.
// An expired token reports differently from an unknown or reused one.
func (s *AuthService) ConfirmEmail(tokenStr string) (*model.User, error) {
	token, err := s.tokens.Consume(tokenStr)
	if errors.Is(err, repository.ErrTokenExpired) {
		return nil, ErrTokenExpired
	}
	if errors.Is(err, repository.ErrTokenNotFound) {
		return nil, ErrInvalidToken
	}
	if err != nil {
		return nil, err
	}
	if token.Type != model.TokenTypeEmailConfirm {
		return nil, ErrInvalidToken
	}

	user, err := s.users.ByID(token.UserID)
	if err != nil {
		return nil, err
	}
	if user.EmailConfirmed() {
		return user, ErrAlreadyConfirmed
	}

	now := s.now()
	user.EmailConfirmedAt = &now
	err = s.users.Update(user)
	if err != nil {
		return nil, err
	}

	slog.Info("email confirmed", "user_id", user.ID)
	return user, nil
}

// AuthenticateOAuth resolves a provider profile to a local account:
// match on (provider, subject) first, fall back to the email to link an
// existing password account, create a fresh account otherwise.
func (s *AuthService) AuthenticateOAuth(providerName string, profile *identity.Profile) (*model.User, error) {
	err := profile.Validate()
	if err != nil {
		return nil, err
	}
	now := s.now()

	user, err := s.users.ByProviderIdentity(providerName, profile.Subject)
	if err == nil {
		if user.PermanentlyLockedAt != nil {
			return nil, ErrAccountLocked
		}
		s.refreshOAuthProfile(user, profile)
		user.Succeed()
		err = s.users.Update(user)
		if err != nil {
			return nil, err
		}
		return user, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}

	gmail := strings.ToLower(strings.TrimSpace(profile.Email))
	user, err = s.users.ByGmail(gmail)
	if err == nil {
		// Existing password account with the same address: link it.
		if user.PermanentlyLockedAt != nil {
			return nil, ErrAccountLocked
		}
		user.Provider = &providerName
		user.ProviderUserID = &profile.Subject
		if user.EmailConfirmedAt == nil {
			user.EmailConfirmedAt = &now
		}
		s.refreshOAuthProfile(user, profile)
		user.Succeed()
		err = s.users.Update(user)
		if err != nil {
			return nil, err
		}
		slog.Info("linked oauth identity to existing account", "user_id", user.ID, "provider", providerName)
		return user, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}

	return s.createOAuthUser(providerName, profile, gmail, now)
}

func (s *AuthService) refreshOAuthProfile(user *model.User, profile *identity.Profile) {
	if profile.Name != "" {
		user.Name = &profile.Name
	}
	if profile.Picture != "" {
		user.Picture = &profile.Picture
	}
}

func (s *AuthService) createOAuthUser(providerName string, profile *identity.Profile, gmail string, now time.Time) (*model.User, error) {
	local := gmail
	if at := strings.Index(local, "@"); at > 0 {
		local = local[:at]
	}
	base := validation.SanitizeUsername(local, "user"+uuid.New().String()[:8])

	username := base
	for attempt := 0; ; attempt++ {
		user := &model.User{
			ID:               uuid.New().String(),
			Provider:         &providerName,
			ProviderUserID:   &profile.Subject,
			Gmail:            gmail,
			Username:         username,
			EmailConfirmedAt: &now,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		s.refreshOAuthProfile(user, profile)

		err := s.users.Create(user)
		if err == nil {
			slog.Info("user created via oauth", "user_id", user.ID, "provider", providerName)
			return user, nil
		}
		if errors.Is(err, repository.ErrDuplicateUsername) && attempt < 5 {
			username = fmt.Sprintf("%s%s", base, uuid.New().String()[:4])
			continue
		}
		return nil, err
	}
}

type sessionClaims struct {
	UserID string `json:"uid"`
	jwt.RegisteredClaims
}

// GenerateJWT issues the signed session token stored in the cookie.
func (s *AuthService) GenerateJWT(user *model.User) (string, error) {
	now := s.now()
	claims := sessionClaims{
		UserID: user.ID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.SessionExpiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// VerifyJWT returns the user id for a valid session token.
func (s *AuthService) VerifyJWT(tokenStr string) (string, error) {
	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	return claims.UserID, nil
}

func (s *AuthService) SetSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.cfg.SessionExpiry / time.Second),
		HttpOnly: true,
		Secure:   s.cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *AuthService) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
}

// SessionCookieName is used by the auth middleware to read the cookie.
func SessionCookieName() string {
	return sessionCookieName
}
