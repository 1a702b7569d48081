package auth

import (
	"crypto/rsa"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type TokenKind string

const (
	AccessToken  TokenKind = "access"
	RefreshToken TokenKind = "refresh"
)

type JWTManager struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	issuer     string
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
	RefreshExp   time.Time
	JTI          string // refresh token jti
}

// Subject is what a token says about its holder.
type Subject struct {
	UserID       string
	TokenVersion int
	AuthMethod   string
	Role         string
	AccessLevel  string
}

func NewJWTManager(privatePath, publicPath, issuer string) (*JWTManager, error) {
	privPem, err := os.ReadFile(privatePath)
	if err != nil {
		return nil, fmt.Errorf("read private key: %w", err)
	}
	privKey, err := jwt.ParseRSAPrivateKeyFromPEM(privPem)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}

	pubPem, err := os.ReadFile(publicPath)
	if err != nil {
		return nil, fmt.Errorf("read public key: %w", err)
	}
	pubKey, err := jwt.ParseRSAPublicKeyFromPEM(pubPem)
	if err != nil {
		return nil, fmt.Errorf("parse public key: %w", err)
	}

	return NewJWTManagerFromKeys(privKey, pubKey, issuer), nil
}

func NewJWTManagerFromKeys(priv *rsa.PrivateKey, pub *rsa.PublicKey, issuer string) *JWTManager {
	return &JWTManager{privateKey: priv, publicKey: pub, issuer: issuer}
}

func (m *JWTManager) PublicKey() *rsa.PublicKey { return m.publicKey }

// createJWT makes a signed JWT for given claims
func (m *JWTManager) createJWT(sub Subject, kind TokenKind, ttl time.Duration, jti string) (string, time.Time, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl)

	claims := jwt.MapClaims{
		"iss":         m.issuer,
		"sub":         sub.UserID,
		"iat":         now.Unix(),
		"exp":         exp.Unix(),
		"jti":         jti,
		"typ":         string(kind),
		"ver":         sub.TokenVersion,
		"auth_method": sub.AuthMethod,
	}
	if sub.Role != "" {
		claims["role"] = sub.Role
	}
	if sub.AccessLevel != "" {
		claims["access_level"] = sub.AccessLevel
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	tokenStr, err := token.SignedString(m.privateKey)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenStr, exp, nil
}

// GenerateTokenPair – create access + refresh tokens
func (m *JWTManager) GenerateTokenPair(sub Subject, accessTTL, refreshTTL time.Duration) (*TokenPair, error) {
	accessToken, accessExp, err := m.createJWT(sub, AccessToken, accessTTL, uuid.New().String())
	if err != nil {
		return nil, err
	}

	refreshJTI := uuid.New().String()
	refreshToken, refreshExp, err := m.createJWT(sub, RefreshToken, refreshTTL, refreshJTI)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		AccessExp:    accessExp,
		RefreshExp:   refreshExp,
		JTI:          refreshJTI,
	}, nil
}

// VerifyToken checks the RS256 signature and expiry and returns the claims.
func (m *JWTManager) VerifyToken(tokenStr string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodRS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.publicKey, nil
	}, jwt.WithLeeway(5*time.Second), jwt.WithIssuer(m.issuer))
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

// SubjectFromClaims reads the fields createJWT wrote.
func SubjectFromClaims(claims jwt.MapClaims) Subject {
	sub, _ := claims["sub"].(string)
	method, _ := claims["auth_method"].(string)
	role, _ := claims["role"].(string)
	level, _ := claims["access_level"].(string)
	ver, _ := claims["ver"].(float64)
	return Subject{UserID: sub, TokenVersion: int(ver), AuthMethod: method, Role: role, AccessLevel: level}
}

// HashToken produces SHA256 hex of the token for storage
func HashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}
