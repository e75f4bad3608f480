// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec provides token verification and the role model.
//
// # Architecture
//
// Credentials are minted by the users service. This service only verifies
// them, so the [TokenService] is normally built with verification material
// alone. Signing is kept for local tooling (cmd/token) and tests.
package sec

import (
	"bytes"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrSigningUnavailable is returned when a verification-only service is asked
// to mint a token.
var ErrSigningUnavailable = errors.New("auth: no signing key configured")

// ClaimID is a user id claim that the users service emits as a JSON number
// and local tooling may emit as a string. Both decode to the same text.
type ClaimID string

// UnmarshalJSON accepts a JSON string, a JSON number or null.
func (id *ClaimID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*id = ClaimID(text)
		return nil
	}

	var number json.Number
	if err := json.Unmarshal(data, &number); err != nil {
		return fmt.Errorf("auth: id claim must be a string or a number: %w", err)
	}
	*id = ClaimID(number.String())
	return nil
}

// MarshalJSON writes integer ids as numbers, the shape the users service uses.
func (id ClaimID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// AuthClaims represents the payload embedded inside an access token.
//
// The claim names match what the users service emits (`id`, `rol`).
type AuthClaims struct {
	jwt.RegisteredClaims

	UserID   ClaimID `json:"id"`
	Username string  `json:"username,omitempty"`
	Email    string  `json:"email,omitempty"`
	Role     string  `json:"rol"`
}

// Identity returns the caller's user id, falling back to the `sub` claim.
func (claims *AuthClaims) Identity() string {
	if claims.UserID != "" {
		return string(claims.UserID)
	}
	return claims.Subject
}

// TokenService generates and verifies JWTs with either HS256 or RS256.
type TokenService struct {
	method    jwt.SigningMethod
	signKey   any
	verifyKey any
	issuer    string
}

// NewHMACTokenService creates a TokenService using a shared HS256 secret.
func NewHMACTokenService(secret, issuer string) (*TokenService, error) {
	if secret == "" {
		return nil, errors.New("auth: empty HMAC secret")
	}

	key := []byte(secret)
	return &TokenService{
		method:    jwt.SigningMethodHS256,
		signKey:   key,
		verifyKey: key,
		issuer:    issuer,
	}, nil
}

// NewRSATokenService creates a TokenService from PEM files on disk.
//
// The private key path may be empty, in which case the service can only
// verify tokens.
func NewRSATokenService(privateKeyPath, publicKeyPath, issuer string) (*TokenService, error) {
	publicKeyData, err := os.ReadFile(publicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("auth: failed to read public key from %s: %w", publicKeyPath, err)
	}

	publicKey, err := jwt.ParseRSAPublicKeyFromPEM(publicKeyData)
	if err != nil {
		return nil, fmt.Errorf("auth: failed to parse public key: %w", err)
	}

	service := &TokenService{
		method:    jwt.SigningMethodRS256,
		verifyKey: publicKey,
		issuer:    issuer,
	}

	if privateKeyPath == "" {
		return service, nil
	}

	privateKeyData, err := os.ReadFile(privateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("auth: failed to read private key from %s: %w", privateKeyPath, err)
	}

	var privateKey *rsa.PrivateKey
	privateKey, err = jwt.ParseRSAPrivateKeyFromPEM(privateKeyData)
	if err != nil {
		return nil, fmt.Errorf("auth: failed to parse private key: %w", err)
	}
	service.signKey = privateKey

	return service, nil
}

// GenerateAccessToken creates a signed access token for a user.
func (service *TokenService) GenerateAccessToken(userID, username, role string, timeToLive time.Duration) (string, error) {
	if service.signKey == nil {
		return "", ErrSigningUnavailable
	}

	currentTime := time.Now()
	claims := AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    service.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(timeToLive)),
		},
		UserID:   ClaimID(userID),
		Username: username,
		Role:     role,
	}

	token := jwt.NewWithClaims(service.method, claims)
	signedToken, err := token.SignedString(service.signKey)
	if err != nil {
		return "", fmt.Errorf("auth: failed to sign token: %w", err)
	}

	return signedToken, nil
}

// VerifyToken checks the signature, algorithm and expiry of a JWT string.
//
// The issuer is only enforced when the service was built with one.
func (service *TokenService) VerifyToken(tokenString string) (*AuthClaims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{service.method.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if service.issuer != "" {
		options = append(options, jwt.WithIssuer(service.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &AuthClaims{}, func(token *jwt.Token) (interface{}, error) {
		return service.verifyKey, nil
	}, options...)
	if err != nil {
		return nil, fmt.Errorf("auth: invalid token: %w", err)
	}

	claims, ok := token.Claims.(*AuthClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("auth: invalid token claims")
	}

	return claims, nil
}
