package identity

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/poornima-canteen/canteen-backend/pkg/auth"
	"github.com/poornima-canteen/canteen-backend/pkg/auth/session"
	"github.com/poornima-canteen/canteen-backend/pkg/config"
	pkgerrors "github.com/poornima-canteen/canteen-backend/pkg/errors"
	"github.com/poornima-canteen/canteen-backend/pkg/logger"
	"github.com/poornima-canteen/canteen-backend/pkg/metrics"
	pkgredis "github.com/poornima-canteen/canteen-backend/pkg/redis"
)

// linkStore is the slice of the redis client the sign-in flows need.
type linkStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	GetDel(ctx context.Context, key string) (string, error)
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
	SignInEmailKey(slot string) string
	SignInLinkKey(email string) string
}

type sessionManager interface {
	Establish(ctx context.Context, accessID, subjectID string) error
	HasSession(ctx context.Context, accessID string) (bool, error)
	Revoke(ctx context.Context, accessID string) error
}

// SendLinkInput requests a sign-in link by email.
type SendLinkInput struct {
	Email string `json:"email" validate:"required,email"`
}

// SendLinkResult returns the slot the client holds while the link is in
// flight, so completion on the same device does not re-ask for the email.
type SendLinkResult struct {
	Slot string `json:"slot"`
}

// CompleteLinkInput finishes the email-link flow. Either Email or Slot
// identifies the address the link was sent to.
type CompleteLinkInput struct {
	Email     string `json:"email" validate:"omitempty,email"`
	Slot      string `json:"slot" validate:"omitempty,uuid4|len=64"`
	Token     string `json:"token" validate:"required"`
	OwnerOnly bool   `json:"owner_only"`
}

// PopupInput finishes the federated popup flow.
type PopupInput struct {
	Code      string `json:"code" validate:"required"`
	OwnerOnly bool   `json:"owner_only"`
}

// Session is an established sign-in.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Identity  *Identity `json:"identity"`
}

// Service runs both sign-in flows, session lifecycle, and token checks.
type Service interface {
	SendSignInLink(ctx context.Context, input SendLinkInput, clientIP string) (*SendLinkResult, error)
	CompleteSignInLink(ctx context.Context, input CompleteLinkInput) (*Session, error)
	PopupAuthURL(state string) (string, error)
	CompletePopup(ctx context.Context, input PopupInput) (*Session, error)
	SignOut(ctx context.Context, accessID string) error
	Authenticate(ctx context.Context, token string) (*Identity, string, error)
	Gate() *Gate
}

type service struct {
	store    linkStore
	sessions sessionManager
	provider Provider
	mailer   Mailer
	gate     *Gate
	metrics  *metrics.CheckoutMetrics
	logg     *logger.Logger

	app  config.AppConfig
	jwt  config.JWTConfig
	auth config.AuthConfig
	rate config.AuthRateLimitConfig

	now func() time.Time
}

// NewService wires the identity service. The provider may be nil when the
// popup flow is not configured; mailer, store and sessions are mandatory.
func NewService(
	store linkStore,
	sessions sessionManager,
	provider Provider,
	mailer Mailer,
	gate *Gate,
	m *metrics.CheckoutMetrics,
	logg *logger.Logger,
	app config.AppConfig,
	jwtCfg config.JWTConfig,
	authCfg config.AuthConfig,
	rateCfg config.AuthRateLimitConfig,
) (Service, error) {
	if store == nil {
		return nil, errors.New("identity service requires a store")
	}
	if sessions == nil {
		return nil, errors.New("identity service requires a session manager")
	}
	if mailer == nil {
		return nil, errors.New("identity service requires a mailer")
	}
	if gate == nil {
		return nil, errors.New("identity service requires a gate")
	}
	if logg == nil {
		return nil, errors.New("identity service requires a logger")
	}
	return &service{
		store:    store,
		sessions: sessions,
		provider: provider,
		mailer:   mailer,
		gate:     gate,
		metrics:  m,
		logg:     logg,
		app:      app,
		jwt:      jwtCfg,
		auth:     authCfg,
		rate:     rateCfg,
		now:      time.Now,
	}, nil
}

func (s *service) Gate() *Gate { return s.gate }

func (s *service) SendSignInLink(ctx context.Context, input SendLinkInput, clientIP string) (*SendLinkResult, error) {
	email, err := normalizeEmail(input.Email)
	if err != nil {
		return nil, err
	}

	if err := s.allowLinkRequest(ctx, email, clientIP); err != nil {
		return nil, err
	}

	token, err := randomToken()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generating link token")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hashing link token")
	}

	// Only the hash is stored; a leaked store cannot forge a link. A
	// repeat request overwrites the previous token, invalidating it.
	if err := s.store.Set(ctx, s.store.SignInLinkKey(email), hash, s.auth.SignInLinkTTL); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "storing link token")
	}

	slot, err := randomToken()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generating email slot")
	}
	if err := s.store.Set(ctx, s.store.SignInEmailKey(slot), email, s.auth.EmailSlotTTL); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "storing email slot")
	}

	link := fmt.Sprintf("%s/signin/complete?slot=%s&token=%s",
		strings.TrimRight(s.app.BaseURL, "/"), url.QueryEscape(slot), url.QueryEscape(token))
	if err := s.mailer.SendSignInLink(ctx, email, link); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sending sign-in link")
	}

	s.logg.Info(ctx, "sign-in link issued")
	return &SendLinkResult{Slot: slot}, nil
}

func (s *service) allowLinkRequest(ctx context.Context, email, clientIP string) error {
	ok, _, err := s.store.FixedWindowAllow(ctx, "signin_link:email:"+email, int64(s.rate.LinkEmailLimit), s.rate.LinkWindow)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checking email rate limit")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeRateLimit, "too many sign-in links requested for this email")
	}
	if clientIP != "" {
		ok, _, err = s.store.FixedWindowAllow(ctx, "signin_link:ip:"+clientIP, int64(s.rate.LinkIPLimit), s.rate.LinkWindow)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checking ip rate limit")
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeRateLimit, "too many sign-in links requested from this address")
		}
	}
	return nil
}

func (s *service) CompleteSignInLink(ctx context.Context, input CompleteLinkInput) (*Session, error) {
	email := strings.TrimSpace(input.Email)
	if email == "" {
		if input.Slot == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "email or slot is required")
		}
		stored, err := s.store.Get(ctx, s.store.SignInEmailKey(input.Slot))
		if err != nil {
			if errors.Is(err, pkgredis.Nil) {
				return nil, pkgerrors.New(pkgerrors.CodeLinkExpired, "sign-in link expired")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolving email slot")
		}
		email = stored
	}
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}

	// GetDel makes the token single use: a second completion, valid or
	// not, finds nothing.
	hash, err := s.store.GetDel(ctx, s.store.SignInLinkKey(email))
	if err != nil {
		if errors.Is(err, pkgredis.Nil) {
			return nil, pkgerrors.New(pkgerrors.CodeLinkExpired, "sign-in link expired")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading link token")
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(input.Token)) != nil {
		return nil, pkgerrors.New(pkgerrors.CodeLinkExpired, "sign-in link expired")
	}

	return s.establish(ctx, email, "", "link", input.OwnerOnly)
}

func (s *service) PopupAuthURL(state string) (string, error) {
	if s.provider == nil {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "popup sign-in is not configured")
	}
	return s.provider.AuthURL(state), nil
}

func (s *service) CompletePopup(ctx context.Context, input PopupInput) (*Session, error) {
	if s.provider == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "popup sign-in is not configured")
	}
	profile, err := s.provider.Exchange(ctx, input.Code)
	if err != nil {
		return nil, err
	}
	email, err := normalizeEmail(profile.Email)
	if err != nil {
		return nil, err
	}
	return s.establish(ctx, email, profile.DisplayName, "popup", input.OwnerOnly)
}

// establish mints the session once the email is verified. On the owner-only
// path a non-matching email is refused outright and any previous identity
// observation is cleared, mirroring an immediate sign-out.
func (s *service) establish(ctx context.Context, email, displayName, flow string, ownerOnly bool) (*Session, error) {
	role := ClassifyEmail(email)
	if ownerOnly && role != RolePrivileged {
		s.gate.Publish(nil)
		s.logg.Warn(ctx, "owner sign-in refused for non-owner email")
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "this sign-in is reserved for the canteen owner")
	}

	ident := &Identity{
		SubjectID:   SubjectIDFor(email),
		Email:       email,
		DisplayName: displayName,
		Role:        role,
	}

	now := s.now()
	accessID := session.NewAccessID()
	token, err := auth.MintAccessToken(s.jwt, now, auth.AccessTokenPayload{
		SubjectID:   ident.SubjectID,
		Email:       ident.Email,
		DisplayName: ident.DisplayName,
		Role:        string(ident.Role),
		JTI:         accessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "minting access token")
	}
	if err := s.sessions.Establish(ctx, accessID, ident.SubjectID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "establishing session")
	}

	s.metrics.SignIn(flow)
	s.gate.Publish(ident)
	s.logg.Info(s.logg.WithRole(s.logg.WithSubjectID(ctx, ident.SubjectID), string(ident.Role)), "sign-in completed")

	return &Session{
		Token:     token,
		ExpiresAt: now.Add(s.jwt.SessionTTL()),
		Identity:  ident,
	}, nil
}

func (s *service) SignOut(ctx context.Context, accessID string) error {
	if err := s.sessions.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoking session")
	}
	s.gate.Publish(nil)
	s.logg.Info(ctx, "signed out")
	return nil
}

// Authenticate validates a bearer token and confirms the session behind it
// is still live, so sign-out takes effect before the JWT expires.
func (s *service) Authenticate(ctx context.Context, token string) (*Identity, string, error) {
	claims, err := auth.ParseAccessToken(s.jwt, token)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid access token")
	}
	live, err := s.sessions.HasSession(ctx, claims.ID)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checking session")
	}
	if !live {
		return nil, "", pkgerrors.New(pkgerrors.CodeUnauthorized, "session no longer active")
	}
	return &Identity{
		SubjectID:   claims.Subject,
		Email:       claims.Email,
		DisplayName: claims.DisplayName,
		Role:        Role(claims.Role),
	}, claims.ID, nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "a valid email is required")
	}
	return email, nil
}

func randomToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
