/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	keyringService   = "MaplePrep"
	keyringAPIKey    = "ai_api_key"
	keyringServerKey = "server_secret"
)

// TokenStore abstracts the OS keychain so tests can swap it out.
type TokenStore interface {
	Get(service, key string) (string, error)
	Set(service, key, value string) error
	Delete(service, key string) error
}

type osKeyring struct{}

func (osKeyring) Get(service, key string) (string, error) { return keyring.Get(service, key) }
func (osKeyring) Set(service, key, value string) error    { return keyring.Set(service, key, value) }
func (osKeyring) Delete(service, key string) error        { return keyring.Delete(service, key) }

var tokenStore TokenStore = osKeyring{}

// SetTokenStore replaces the keychain backend and returns the previous one.
func SetTokenStore(ts TokenStore) TokenStore {
	prev := tokenStore
	tokenStore = ts
	return prev
}

// APIKey returns the AI API key: MPP_API_KEY first, then the keychain.
// A missing key is not an error; callers decide whether they need one.
func APIKey() (string, error) { return secret(EnvAPIKey, keyringAPIKey) }

// SetAPIKey stores the AI API key in the keychain. An empty key deletes it.
func SetAPIKey(v string) error { return setSecret(keyringAPIKey, v) }

// ServerSecret returns the HMAC secret used to sign API tokens.
func ServerSecret() (string, error) { return secret(EnvServerSecretKey, keyringServerKey) }

// SetServerSecret stores the HMAC secret in the keychain.
func SetServerSecret(v string) error { return setSecret(keyringServerKey, v) }

func secret(env, key string) (string, error) {
	if v := strings.TrimSpace(os.Getenv(env)); v != "" {
		return v, nil
	}
	v, err := tokenStore.Get(keyringService, key)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}
	return v, err
}

func setSecret(key, v string) error {
	if strings.TrimSpace(v) == "" {
		err := tokenStore.Delete(keyringService, key)
		if errors.Is(err, keyring.ErrNotFound) {
			return nil
		}
		return err
	}
	return tokenStore.Set(keyringService, key, v)
}
