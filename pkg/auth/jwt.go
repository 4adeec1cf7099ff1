package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/medicore/clinic-api/internal/model"
)

const (
	// Verified-token cache window. The cache only skips signature checks;
	// claims are always taken from the signed token, so losing an entry is
	// never observable beyond the repeated verification.
	verifyCacheTTL     = 5 * time.Minute
	verifyCacheCleanup = 10 * time.Minute
)

type JWTService interface {
	Issue(userID uuid.UUID, role model.Role) (string, error)
	Verify(token string) (*model.TokenClaims, error)
}

type jwtService struct {
	secret   []byte
	expiry   time.Duration
	verified *cache.Cache
}

func NewJWTService(secret string, expiry time.Duration) JWTService {
	return &jwtService{
		secret:   []byte(secret),
		expiry:   expiry,
		verified: cache.New(verifyCacheTTL, verifyCacheCleanup),
	}
}

func (s *jwtService) Issue(userID uuid.UUID, role model.Role) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID.String(),
		"role":    string(role),
		"iat":     now.Unix(),
		"exp":     now.Add(s.expiry).Unix(),
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *jwtService) Verify(tokenString string) (*model.TokenClaims, error) {
	if cached, ok := s.verified.Get(tokenString); ok {
		claims := cached.(*model.TokenClaims)
		if time.Now().Before(claims.ExpiresAt) {
			return claims, nil
		}
		s.verified.Delete(tokenString)
		return nil, fmt.Errorf("token expired")
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	claims, err := parseClaims(mapClaims)
	if err != nil {
		return nil, err
	}

	s.verified.Set(tokenString, claims, cache.DefaultExpiration)
	return claims, nil
}

func parseClaims(mapClaims jwt.MapClaims) (*model.TokenClaims, error) {
	rawID, ok := mapClaims["user_id"].(string)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}
	userID, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID in token")
	}

	rawRole, ok := mapClaims["role"].(string)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}
	role := model.Role(rawRole)
	if !role.IsValid() {
		return nil, fmt.Errorf("invalid role in token")
	}

	exp, err := mapClaims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil, fmt.Errorf("invalid token expiry")
	}

	return &model.TokenClaims{
		UserID:    userID,
		Role:      role,
		ExpiresAt: exp.Time,
	}, nil
}
