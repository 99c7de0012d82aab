// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 rdlvis Contributors

package secrets

import (
	"encoding/json"
	"errors"
	"log/slog"
	"slices"

	rdlerr "github.com/iso15926vis/rdlvis/pkg/errors"
	"github.com/zalando/go-keyring"
)

// indexKey holds a JSON list of the keys stored for a service, since the OS
// keyrings cannot enumerate entries.
const indexKey = "::index"

// KeyringStore implements Store on the OS keyring: Keychain on macOS,
// secret-service over D-Bus on Linux, Credential Manager on Windows.
type KeyringStore struct{}

// NewKeyringStore returns a KeyringStore.
func NewKeyringStore() *KeyringStore {
	return &KeyringStore{}
}

func checkRef(op, service, key string) error {
	if service == "" || key == "" {
		return rdlerr.New(rdlerr.CodeSecretInvalidInput, "secret "+op+": service and key must not be empty",
			rdlerr.Field("service", service), rdlerr.Field("key", key))
	}
	if key == indexKey {
		return rdlerr.New(rdlerr.CodeSecretInvalidInput, "secret "+op+": reserved key name",
			rdlerr.Field("key", key))
	}
	return nil
}

func notFound(service, key string) error {
	return rdlerr.New(rdlerr.CodeSecretNotFound, "secret not found",
		rdlerr.Field("service", service), rdlerr.Field("key", key))
}

func (s *KeyringStore) Store(service, key, value string) error {
	if err := checkRef("store", service, key); err != nil {
		return err
	}

	if err := keyring.Set(service, key, value); err != nil {
		return rdlerr.Wrapf(err, rdlerr.CodeSecretStoreFailure, "storing secret %s/%s", service, key)
	}

	keys, err := s.List(service)
	if err != nil {
		return err
	}
	if slices.Contains(keys, key) {
		return nil
	}
	return s.saveIndex(service, append(keys, key))
}

func (s *KeyringStore) Retrieve(service, key string) (string, error) {
	if err := checkRef("retrieve", service, key); err != nil {
		return "", err
	}

	val, err := keyring.Get(service, key)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", notFound(service, key)
	}
	if err != nil {
		return "", rdlerr.Wrapf(err, rdlerr.CodeSecretStoreFailure, "retrieving secret %s/%s", service, key)
	}
	return val, nil
}

func (s *KeyringStore) Delete(service, key string) error {
	if err := checkRef("delete", service, key); err != nil {
		return err
	}

	err := keyring.Delete(service, key)
	if errors.Is(err, keyring.ErrNotFound) {
		return notFound(service, key)
	}
	if err != nil {
		return rdlerr.Wrapf(err, rdlerr.CodeSecretDeleteFailure, "deleting secret %s/%s", service, key)
	}

	keys, err := s.List(service)
	if err != nil {
		return err
	}
	return s.saveIndex(service, slices.DeleteFunc(keys, func(k string) bool { return k == key }))
}

func (s *KeyringStore) List(service string) ([]string, error) {
	raw, err := keyring.Get(service, indexKey)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, rdlerr.Wrapf(err, rdlerr.CodeSecretListFailure, "loading key index for %s", service)
	}

	var keys []string
	if err := json.Unmarshal([]byte(raw), &keys); err != nil {
		return nil, rdlerr.Wrapf(err, rdlerr.CodeSecretListFailure, "decoding key index for %s", service)
	}
	return keys, nil
}

func (s *KeyringStore) saveIndex(service string, keys []string) error {
	if len(keys) == 0 {
		if err := keyring.Delete(service, indexKey); err != nil && !errors.Is(err, keyring.ErrNotFound) {
			slog.Debug("failed to remove empty key index", "service", service, "error", err)
		}
		return nil
	}

	data, err := json.Marshal(keys)
	if err != nil {
		return rdlerr.Wrapf(err, rdlerr.CodeSecretListFailure, "encoding key index for %s", service)
	}
	if err := keyring.Set(service, indexKey, string(data)); err != nil {
		return rdlerr.Wrapf(err, rdlerr.CodeSecretListFailure, "saving key index for %s", service)
	}
	return nil
}
