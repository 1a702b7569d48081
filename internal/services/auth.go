package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-ldap/ldap/v3"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"shutdown-tracker/internal/access"
	"shutdown-tracker/internal/auth"
	"shutdown-tracker/internal/config"
	"shutdown-tracker/internal/errs"
	"shutdown-tracker/internal/models"
	"shutdown-tracker/internal/store"
)

// maxSessions is the number of live refresh tokens a user may hold.
const maxSessions = 2

type AuthService struct {
	users    store.UserStore
	sessions store.SessionStore
	jwt      *auth.JWTManager
	cfg      *config.Config
	logr     *zap.Logger
	now      func() time.Time
}

func NewAuthService(users store.UserStore, sessions store.SessionStore, jwt *auth.JWTManager, cfg *config.Config, logr *zap.Logger) *AuthService {
	return &AuthService{users: users, sessions: sessions, jwt: jwt, cfg: cfg, logr: logr, now: time.Now}
}

// HashPassword uses bcrypt
func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(b), err
}

func ComparePassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

type UserInfo struct {
	ID          string             `json:"id"`
	Email       string             `json:"email"`
	FullName    string             `json:"full_name"`
	Provider    string             `json:"provider"`
	Role        string             `json:"role"`
	AccessLevel models.AccessLevel `json:"access_level"`
	CanEdit     bool               `json:"can_edit"`
	CanManage   bool               `json:"can_manage_users"`
}

// NewUserInfo reports the profile with its effective access level.
func NewUserInfo(u *models.User) *UserInfo {
	level := access.EffectiveLevel(u)
	return &UserInfo{
		ID:          u.ID.String(),
		Email:       u.Email,
		FullName:    u.FullName,
		Provider:    u.Provider,
		Role:        u.Role,
		AccessLevel: level,
		CanEdit:     access.CanMutate(level),
		CanManage:   access.CanManageUsers(u),
	}
}

var errInvalidCredentials = errors.New("invalid credentials")

func (s *AuthService) LoginLocal(ctx context.Context, email, password, deviceInfo string) (*auth.TokenPair, *UserInfo, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errs.IsNotFound(err) {
			return nil, nil, errInvalidCredentials
		}
		return nil, nil, err
	}
	if u.PasswordHash == "" {
		return nil, nil, fmt.Errorf("account not configured for local login")
	}
	if err := ComparePassword(u.PasswordHash, password); err != nil {
		return nil, nil, errInvalidCredentials
	}

	return s.issue(ctx, u, "local", deviceInfo)
}

// LoginLDAP binds as the user against the directory, then provisions the
// account on first login.
func (s *AuthService) LoginLDAP(ctx context.Context, ldapUser, ldapPass, deviceInfo string) (*auth.TokenPair, *UserInfo, error) {
	if s.cfg.LDAPServer == "" {
		return nil, nil, fmt.Errorf("ldap login is not configured")
	}
	cleanUsername := ldapUser
	if d := s.cfg.LDAPDomain; d != "" {
		suffix := "@" + strings.ToLower(d)
		if strings.HasSuffix(strings.ToLower(ldapUser), suffix) {
			cleanUsername = ldapUser[:len(ldapUser)-len(suffix)]
		}
	}

	ldap.DefaultTimeout = 10 * time.Second
	l, err := ldap.DialURL(s.cfg.LDAPServer)
	if err != nil {
		s.logr.Error("LDAP dial failed", zap.Error(err), zap.String("server", s.cfg.LDAPServer))
		return nil, nil, fmt.Errorf("ldap connection failed")
	}
	defer func() {
		if closeErr := l.Close(); closeErr != nil {
			s.logr.Debug("LDAP close error (usually harmless)", zap.Error(closeErr))
		}
	}()
	l.SetTimeout(30 * time.Second)

	userDN := cleanUsername
	if s.cfg.LDAPDomain != "" {
		userDN = fmt.Sprintf("%s@%s", cleanUsername, s.cfg.LDAPDomain)
	}
	if err = l.Bind(userDN, ldapPass); err != nil {
		s.logr.Warn("LDAP bind failed", zap.String("username", cleanUsername))
		return nil, nil, errInvalidCredentials
	}

	searchReq := ldap.NewSearchRequest(
		s.cfg.LDAPBaseDN,
		ldap.ScopeWholeSubtree,
		ldap.NeverDerefAliases,
		0,
		0,
		false,
		fmt.Sprintf("(sAMAccountName=%s)", ldap.EscapeFilter(cleanUsername)),
		[]string{"cn", "mail", "displayName"},
		nil,
	)
	sr, err := l.Search(searchReq)
	if err != nil {
		s.logr.Error("LDAP search failed", zap.Error(err), zap.String("username", cleanUsername))
		return nil, nil, fmt.Errorf("user lookup failed")
	}
	if len(sr.Entries) == 0 {
		s.logr.Warn("LDAP: no entry found", zap.String("username", cleanUsername))
		return nil, nil, fmt.Errorf("user not found in directory")
	}

	entry := sr.Entries[0]
	mail := entry.GetAttributeValue("mail")
	if mail == "" {
		s.logr.Error("LDAP user missing email", zap.String("username", cleanUsername))
		return nil, nil, fmt.Errorf("user account missing email")
	}
	fullName := entry.GetAttributeValue("displayName")
	if fullName == "" {
		fullName = entry.GetAttributeValue("cn")
	}
	if fullName == "" {
		fullName = cleanUsername
	}

	u, err := s.provision(ctx, mail, fullName)
	if err != nil {
		return nil, nil, err
	}
	return s.issue(ctx, u, "ldap", deviceInfo)
}

func (s *AuthService) provision(ctx context.Context, email, fullName string) (*models.User, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return u, nil
	}
	if !errs.IsNotFound(err) {
		s.logr.Error("Database error", zap.Error(err), zap.String("email", email))
		return nil, fmt.Errorf("database error")
	}

	u = &models.User{
		Email:       email,
		FullName:    fullName,
		Provider:    "ldap",
		AccessLevel: models.AccessDriver,
	}
	if err := s.users.Create(ctx, u); err != nil {
		s.logr.Error("Failed to create user", zap.Error(err), zap.String("email", email))
		return nil, fmt.Errorf("failed to create user account")
	}
	s.logr.Info("Created new LDAP user", zap.String("email", email), zap.String("id", u.ID.String()))
	return u, nil
}

func (s *AuthService) issue(ctx context.Context, u *models.User, method, deviceInfo string) (*auth.TokenPair, *UserInfo, error) {
	now := s.now().UTC()
	if err := s.users.RecordLogin(ctx, u.ID, method, now); err != nil {
		s.logr.Warn("failed to record login", zap.Error(err), zap.String("user_id", u.ID.String()))
	}
	u.Provider = method

	pair, err := s.jwt.GenerateTokenPair(subjectFor(u, method), s.cfg.AccessTokenTTL, s.cfg.RefreshTokenTTL)
	if err != nil {
		s.logr.Error("Token generation failed", zap.Error(err), zap.String("user_id", u.ID.String()))
		return nil, nil, fmt.Errorf("failed to generate tokens")
	}
	if err := s.storeRefreshToken(ctx, u.ID, pair, deviceInfo); err != nil {
		s.logr.Error("Failed to store refresh token", zap.Error(err), zap.String("user_id", u.ID.String()))
		return nil, nil, fmt.Errorf("failed to store session")
	}

	s.logr.Info("login successful", zap.String("user_id", u.ID.String()), zap.String("method", method))
	return pair, NewUserInfo(u), nil
}

func subjectFor(u *models.User, method string) auth.Subject {
	return auth.Subject{
		UserID:       u.ID.String(),
		TokenVersion: u.TokenVersion,
		AuthMethod:   method,
		Role:         u.Role,
		AccessLevel:  string(access.EffectiveLevel(u)),
	}
}

func (s *AuthService) storeRefreshToken(ctx context.Context, userID uuid.UUID, pair *auth.TokenPair, deviceInfo string) error {
	rt := &models.RefreshToken{
		UserID:     userID,
		JTI:        pair.JTI,
		TokenHash:  auth.HashToken(pair.RefreshToken),
		DeviceInfo: &deviceInfo,
		CreatedAt:  s.now().UTC(),
		ExpiresAt:  pair.RefreshExp,
	}
	return s.sessions.Save(ctx, rt, maxSessions)
}

// Refresh verifies a refresh token, revokes it and issues a new pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken, deviceInfo string) (*auth.TokenPair, error) {
	claims, err := s.jwt.VerifyToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", err)
	}
	if claims["typ"] != string(auth.RefreshToken) {
		return nil, fmt.Errorf("not a refresh token")
	}
	jti, ok := claims["jti"].(string)
	if !ok {
		return nil, fmt.Errorf("invalid token jti")
	}

	rt, err := s.sessions.FindActive(ctx, jti, auth.HashToken(refreshToken))
	if err != nil {
		return nil, fmt.Errorf("refresh token not found or revoked")
	}
	u, err := s.users.GetByID(ctx, rt.UserID)
	if err != nil {
		return nil, fmt.Errorf("user not found")
	}

	_ = s.sessions.Revoke(ctx, rt.ID)

	pair, err := s.jwt.GenerateTokenPair(subjectFor(u, "refresh"), s.cfg.AccessTokenTTL, s.cfg.RefreshTokenTTL)
	if err != nil {
		return nil, err
	}
	if err := s.storeRefreshToken(ctx, u.ID, pair, deviceInfo); err != nil {
		return nil, err
	}
	return pair, nil
}

// Logout revokes the session a refresh token belongs to.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.jwt.VerifyToken(refreshToken)
	if err != nil {
		return err
	}
	jti, ok := claims["jti"].(string)
	if !ok {
		return fmt.Errorf("invalid jti")
	}
	return s.sessions.RevokeByJTI(ctx, jti)
}

// ErrUnauthorized marks token problems the caller should answer with 401.
var ErrUnauthorized = errors.New("unauthorized")

// Authenticate resolves an access token to the current profile. Tokens whose
// version no longer matches the user's are rejected.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*models.User, error) {
	claims, err := s.jwt.VerifyToken(accessToken)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid or expired token: %v", ErrUnauthorized, err)
	}
	if claims["typ"] != string(auth.AccessToken) {
		return nil, fmt.Errorf("%w: not an access token", ErrUnauthorized)
	}
	sub := auth.SubjectFromClaims(claims)
	id, err := uuid.Parse(sub.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid token sub", ErrUnauthorized)
	}
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errs.IsNotFound(err) {
			return nil, fmt.Errorf("%w: user no longer exists", ErrUnauthorized)
		}
		return nil, err
	}
	if u.TokenVersion != sub.TokenVersion {
		return nil, fmt.Errorf("%w: token revoked", ErrUnauthorized)
	}
	return u, nil
}
