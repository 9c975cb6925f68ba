package jwt

import (
	"crypto/rsa"
	"errors"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"storefront/models"
)

var ErrInvalidClaims = errors.New("invalid token claims")

type Manager struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	ttl        time.Duration
}

func NewManager(privateKey *rsa.PrivateKey, publicKey *rsa.PublicKey, ttl time.Duration) *Manager {
	return &Manager{privateKey: privateKey, publicKey: publicKey, ttl: ttl}
}

// 從PEM檔讀取RSA金鑰
func LoadManager(privateKeyPath, publicKeyPath string, ttl time.Duration) (*Manager, error) {
	keyBytes, err := os.ReadFile(privateKeyPath)
	if err != nil {
		return nil, err
	}
	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM(keyBytes)
	if err != nil {
		return nil, err
	}

	keyBytes, err = os.ReadFile(publicKeyPath)
	if err != nil {
		return nil, err
	}
	publicKey, err := jwt.ParseRSAPublicKeyFromPEM(keyBytes)
	if err != nil {
		return nil, err
	}

	return NewManager(privateKey, publicKey, ttl), nil
}

func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// 生成JWT Token，回傳Token與到期時間
func (m *Manager) GenerateToken(userID uint, role models.Role, now time.Time) (string, time.Time, error) {
	expTime := now.Add(m.ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"userID": userID,
		"role":   string(role),
		"iat":    now.Unix(),
		"exp":    expTime.Unix(),
	})

	tokenString, err := token.SignedString(m.privateKey)
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expTime, nil
}

// 驗證JWT Token並回傳UserID與Role
func (m *Manager) VerifyToken(tokenString string) (uint, models.Role, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return m.publicKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return 0, "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, "", ErrInvalidClaims
	}
	userID, ok := claims["userID"].(float64)
	if !ok || userID <= 0 {
		return 0, "", ErrInvalidClaims
	}
	role, ok := claims["role"].(string)
	if !ok || !models.Role(role).Valid() {
		return 0, "", ErrInvalidClaims
	}

	return uint(userID), models.Role(role), nil
}
