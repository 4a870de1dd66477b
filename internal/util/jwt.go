package util

import (
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const claimsContextKey = "claims"

// Claims 身份由外部签发，Subject 即会话所有者 id
type Claims struct {
	Name string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// GenerateJWT 签发 HS256 token，供本地调试与测试使用
func GenerateJWT(ownerID, secret, issuer string, expiration time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   ownerID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiration)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ParseJWT(tokenString, secret, issuer string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, opts...)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("token has no subject")
	}
	return claims, nil
}

func SetClaims(c *gin.Context, claims *Claims) {
	c.Set(claimsContextKey, claims)
}

func GetClaimsFromContext(c *gin.Context) *Claims {
	v, exists := c.Get(claimsContextKey)
	if !exists {
		return nil
	}
	claims, ok := v.(*Claims)
	if !ok {
		return nil
	}
	return claims
}

// GetOwnerFromContext 返回当前请求的所有者 id，匿名请求返回 ""
func GetOwnerFromContext(c *gin.Context) string {
	if claims := GetClaimsFromContext(c); claims != nil {
		return claims.Subject
	}
	return ""
}
