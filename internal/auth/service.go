// Copyright (c) 2025 Sqlferry
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package auth resolves the API token the CLI sends with every request and
// manages the login state kept in the OS keychain.
//
// A token in SQLFERRY_API_TOKEN always wins over the stored one, so CI runs
// never touch the keychain.
package auth

import (
	"context"
	"errors"
	"os"
	"time"

	"sqlferry/cli/internal/backend"
	"sqlferry/cli/internal/config"
	apperr "sqlferry/cli/internal/errors"
	"sqlferry/cli/internal/keychain"
)

// Source tells where a token came from.
type Source string

const (
	SourceEnv      Source = "environment"
	SourceKeychain Source = "keychain"
)

// Verifier checks a token against the service.
type Verifier interface {
	VerifyToken(ctx context.Context) (backend.TokenStatus, error)
}

// Service centralizes token resolution and login state.
type Service struct {
	// keychain opens the credential store lazily so env-only runs never touch it.
	keychain func() (*keychain.Manager, error)
	getenv   func(string) string
	now      func() time.Time
}

// NewService constructs a Service backed by the global keychain manager.
func NewService() *Service {
	return &Service{keychain: keychain.GetManager, getenv: os.Getenv, now: time.Now}
}

// NewServiceWith constructs a Service over explicit collaborators.
func NewServiceWith(km *keychain.Manager, getenv func(string) string) *Service {
	return &Service{
		keychain: func() (*keychain.Manager, error) { return km, nil },
		getenv:   getenv,
		now:      time.Now,
	}
}

// Token returns the API token to use.
func (s *Service) Token() (string, Source, error) {
	if t := s.getenv(config.TokenEnv); t != "" {
		return t, SourceEnv, nil
	}
	km, err := s.keychain()
	if err == nil {
		var t string
		if t, err = km.LoadToken(); err == nil {
			return t, SourceKeychain, nil
		}
	}
	if err != nil && !errors.Is(err, keychain.ErrNotFound) {
		return "", "", apperr.Wrap(apperr.UserError, "Not logged in: the credential store could not be read. Set "+config.TokenEnv+" or run `sqlferry login`.", err)
	}
	return "", "", apperr.User("Not logged in. Run `sqlferry login` or set %s.", config.TokenEnv)
}

// Login verifies token with v and stores it.
func (s *Service) Login(ctx context.Context, token string, v Verifier) (backend.TokenStatus, error) {
	if token == "" {
		return backend.TokenStatus{}, apperr.User("No API token provided")
	}
	st, err := s.verify(ctx, v)
	if err != nil {
		return st, err
	}
	km, err := s.keychain()
	if err != nil {
		return st, err
	}
	if err := km.SaveToken(token); err != nil {
		return st, err
	}
	if err := Save(km, State{LoggedIn: true, TokenID: st.ID, VerifiedAt: s.now().UTC()}); err != nil {
		return st, err
	}
	return st, nil
}

// WhoAmI verifies the current token with v.
func (s *Service) WhoAmI(ctx context.Context, v Verifier) (backend.TokenStatus, error) {
	return s.verify(ctx, v)
}

func (s *Service) verify(ctx context.Context, v Verifier) (backend.TokenStatus, error) {
	st, err := v.VerifyToken(ctx)
	if err != nil {
		return st, err
	}
	if st.Status != "active" {
		return st, apperr.User("The API token is not active (status: %s)", st.Status)
	}
	return st, nil
}

// Logout clears the stored token and state. An env token is left alone.
func (s *Service) Logout() error {
	km, err := s.keychain()
	if err != nil {
		return err
	}
	return km.ClearAuth()
}

// State returns the stored login state.
func (s *Service) State() (State, error) {
	km, err := s.keychain()
	if err != nil {
		return State{}, err
	}
	return Load(km)
}
