// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 rdlvis Contributors

// Package secrets keeps source credentials out of the config file. A config
// value of the form keyring://service/key is replaced by the secret stored
// under that name before the config is decoded.
package secrets

// ServiceName is the keyring service rdlvis stores its secrets under.
const ServiceName = "rdlvis"

// Store provides secret storage operations.
type Store interface {
	// Store saves value under service and key, replacing any previous value.
	Store(service, key, value string) error

	// Retrieve returns the value for service and key, or an error carrying
	// CodeSecretNotFound.
	Retrieve(service, key string) (string, error)

	// Delete removes service and key, or returns CodeSecretNotFound.
	Delete(service, key string) error

	// List returns the key names stored under service, in insertion order.
	List(service string) ([]string, error)
}
