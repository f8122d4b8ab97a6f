package auth

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Identity は検証済みトークンから取り出した認証主体を表す。
// クレームは認証境界で1回だけパースし、以降は型付きの値として引き回す。
type Identity struct {
	UserID int64
	Role   string
	Claims map[string]string // クレーム名→値（GetClaims応答用）
}

// TokenClaims はbearerトークンに埋め込むクレームセット。
type TokenClaims struct {
	jwt.RegisteredClaims
	UserID string `json:"id"`
	Role   string `json:"role"`
}

// TokenIssuer は対称鍵で署名したbearerトークンの発行と検証を行う。
// 設定注入後は状態を持たないため並行利用できる。
type TokenIssuer struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
}

// NewTokenIssuer はTokenIssuerを生成する。
// issuer/audienceはデプロイ設定から与えられ、検証時にも照合される。
func NewTokenIssuer(secret, issuer, audience string, ttl time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
		ttl:      ttl,
	}
}

// Issue はユーザーIDとロールを埋め込んだ署名済みトークンを発行する。
// 有効期限は設定のTTL（既定30分）。
func (i *TokenIssuer) Issue(userID int64, role string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.issuer,
			Audience:  jwt.ClaimStrings{i.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
		UserID: strconv.FormatInt(userID, 10),
		Role:   role,
	})

	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// Parse はトークンを検証し、Identityを返す。
// 署名・有効期限・issuer・audienceのいずれかが不正な場合はエラーを返す。
func (i *TokenIssuer) Parse(tokenString string) (*Identity, error) {
	claims := &TokenClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.issuer),
		jwt.WithAudience(i.audience),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("token is not valid")
	}

	userID, err := strconv.ParseInt(claims.UserID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid id claim %q: %w", claims.UserID, err)
	}

	return &Identity{
		UserID: userID,
		Role:   claims.Role,
		Claims: map[string]string{
			"id":   claims.UserID,
			"role": claims.Role,
		},
	}, nil
}
