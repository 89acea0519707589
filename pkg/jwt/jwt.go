package jwt

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"filmmate/config"

	jwtv5 "github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken 令牌签名、签发者或载荷不合法
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken 令牌已过期
	ErrExpiredToken = errors.New("token expired")
)

// JWTService 签发与校验用户访问令牌（HS256）
type JWTService struct {
	secretKey   []byte
	issuer      string
	expireAfter time.Duration
}

// UserClaims 访问令牌载荷，Subject 保存十进制用户ID
type UserClaims struct {
	UserID   uint   `json:"-"`
	Username string `json:"username"`
	jwtv5.RegisteredClaims
}

func NewJWTService(cfg config.JWTConfig) *JWTService {
	return &JWTService{
		secretKey:   []byte(cfg.Secret),
		issuer:      cfg.Issuer,
		expireAfter: cfg.ExpireTime,
	}
}

// IssueToken 为登录或注册成功的用户签发令牌
func (s *JWTService) IssueToken(userID uint, username string) (string, error) {
	if userID == 0 {
		return "", errors.New("userID is required")
	}

	now := time.Now()
	claims := &UserClaims{
		Username: username,
		RegisteredClaims: jwtv5.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwtv5.NewNumericDate(now),
			NotBefore: jwtv5.NewNumericDate(now),
			ExpiresAt: jwtv5.NewNumericDate(now.Add(s.expireAfter)),
		},
	}

	signed, err := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, claims).SignedString(s.secretKey)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ParseToken 校验令牌并还原用户身份；缺少过期时间或用户ID的令牌一律拒绝
func (s *JWTService) ParseToken(tokenString string) (*UserClaims, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	claims := &UserClaims{}
	_, err := jwtv5.ParseWithClaims(tokenString, claims,
		func(*jwtv5.Token) (interface{}, error) { return s.secretKey, nil },
		jwtv5.WithValidMethods([]string{jwtv5.SigningMethodHS256.Alg()}),
		jwtv5.WithIssuer(s.issuer),
		jwtv5.WithExpirationRequired(),
	)
	switch {
	case errors.Is(err, jwtv5.ErrTokenExpired):
		return nil, ErrExpiredToken
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return nil, fmt.Errorf("%w: bad subject %q", ErrInvalidToken, claims.Subject)
	}
	claims.UserID = uint(id)
	return claims, nil
}
