// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command token mints a signed access token for local testing.
//
// It reads the same JWT_* variables (and .env file) as the API server, so the
// printed token is accepted by a locally running instance.
//
// # Usage
//
//	go run ./cmd/token -user 1 -role Admin -ttl 2h
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/taibuivan/readanddownload/internal/platform/sec"
)

type signingConfig struct {
	Secret         string `env:"JWT_SECRET"`
	PrivateKeyPath string `env:"JWT_PRIVATE_KEY_PATH"`
	PublicKeyPath  string `env:"JWT_PUBLIC_KEY_PATH"`
	Issuer         string `env:"JWT_ISSUER"`
}

func main() {
	userID := flag.String("user", "1", "user id for the id and sub claims; integer ids are signed as JSON numbers")
	username := flag.String("username", "test", "username claim")
	role := flag.String("role", string(sec.RoleUser), "role claim (User or Admin)")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	flag.Parse()

	if err := run(*userID, *username, *role, *ttl); err != nil {
		fmt.Fprintln(os.Stderr, "token:", err)
		os.Exit(1)
	}
}

func run(userID, username, role string, ttl time.Duration) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("read .env: %w", err)
	}

	var cfg signingConfig
	if err := env.Parse(&cfg); err != nil {
		return err
	}

	var (
		tokens *sec.TokenService
		err    error
	)
	switch {
	case cfg.PrivateKeyPath != "":
		if cfg.PublicKeyPath == "" {
			return errors.New("JWT_PUBLIC_KEY_PATH is required with JWT_PRIVATE_KEY_PATH")
		}
		tokens, err = sec.NewRSATokenService(cfg.PrivateKeyPath, cfg.PublicKeyPath, cfg.Issuer)
	default:
		tokens, err = sec.NewHMACTokenService(cfg.Secret, cfg.Issuer)
	}
	if err != nil {
		return err
	}

	token, err := tokens.GenerateAccessToken(userID, username, role, ttl)
	if err != nil {
		return err
	}

	fmt.Println(token)
	return nil
}
