package jwt

import (
	"context"
	"sync"
	"time"

	"github.com/cmlabs-hris/presence-backend-go/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// RevocationStore remembers revoked token IDs until the tokens expire.
type RevocationStore interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

type Service interface {
	GenerateAccessToken(userID, staffID string, role user.Role, branchID *string) (token string, expiresAt int64, err error)
	JWTAuth() *jwtauth.JWTAuth
	RevokeToken(ctx context.Context, jti string, expiresAt time.Time) error
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
}

type JWTService struct {
	accessTokenExpirationTime string
	tokenAuth                 *jwtauth.JWTAuth
	revocations               RevocationStore
	now                       func() time.Time
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

// NewJWTService signs tokens with HS256. A nil store keeps revocations in
// process memory.
func NewJWTService(secretKey string, accessTokenExpirationTime string, revocations RevocationStore) Service {
	if revocations == nil {
		revocations = NewMemoryRevocationStore()
	}
	return &JWTService{
		accessTokenExpirationTime: accessTokenExpirationTime,
		tokenAuth:                 jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
		revocations:               revocations,
		now:                       time.Now,
	}
}

func (j *JWTService) GenerateAccessToken(userID, staffID string, role user.Role, branchID *string) (token string, expiresAt int64, err error) {
	expDuration, err := time.ParseDuration(j.accessTokenExpirationTime)
	if err != nil {
		return "", 0, err
	}
	expiresAt = j.now().Add(expDuration).Unix()

	claims := map[string]interface{}{
		"jti":       uuid.NewString(),
		"user_id":   userID,
		"staff_id":  staffID,
		"branch_id": returnValueOrNil(branchID),
		"role":      string(role),
		"type":      "access",
		"exp":       expiresAt,
	}

	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, expiresAt, err
}

func (j *JWTService) RevokeToken(ctx context.Context, jti string, expiresAt time.Time) error {
	return j.revocations.BlacklistToken(ctx, jti, expiresAt.Sub(j.now()))
}

func (j *JWTService) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}
	return j.revocations.IsBlacklisted(ctx, jti)
}

func returnValueOrNil(value *string) interface{} {
	if value == nil {
		return nil
	}
	return *value
}

// MemoryRevocationStore is the single-instance fallback when Redis is not
// configured.
type MemoryRevocationStore struct {
	mu      sync.RWMutex
	revoked map[string]time.Time
	now     func() time.Time
}

func NewMemoryRevocationStore() *MemoryRevocationStore {
	return &MemoryRevocationStore{
		revoked: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (m *MemoryRevocationStore) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()
	// Drop entries whose tokens have expired.
	for id, until := range m.revoked {
		if !now.Before(until) {
			delete(m.revoked, id)
		}
	}
	m.revoked[jti] = now.Add(ttl)
	return nil
}

func (m *MemoryRevocationStore) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	until, ok := m.revoked[jti]
	return ok && m.now().Before(until), nil
}
