// Copyright (c) 2025 Sqlferry
// Licensed under the MIT License. See LICENSE file in the project root for details.

package auth

import (
	"encoding/json"
	"errors"
	"time"

	"sqlferry/cli/internal/keychain"
)

// State represents persisted login state for the current token.
type State struct {
	LoggedIn   bool      `json:"logged_in"`
	TokenID    string    `json:"token_id"`
	VerifiedAt time.Time `json:"verified_at"`
}

// Load reads the auth state from the keychain. Missing state yields zero value.
func Load(km *keychain.Manager) (State, error) {
	var s State
	data, err := km.LoadAuthState()
	if err != nil {
		if errors.Is(err, keychain.ErrNotFound) {
			return s, nil
		}
		return s, err
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return s, err
	}
	return s, nil
}

// Save writes the auth state to the keychain.
func Save(km *keychain.Manager, s State) error {
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return km.SaveAuthState(b)
}
