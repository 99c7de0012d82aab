// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 rdlvis Contributors

package secrets

import (
	"slices"
	"strings"

	rdlerr "github.com/iso15926vis/rdlvis/pkg/errors"
	"github.com/spf13/viper"
)

const scheme = "keyring://"

// IsRef reports whether value is a keyring://service/key reference.
func IsRef(value string) bool {
	return strings.HasPrefix(value, scheme)
}

// Ref builds the reference for key under ServiceName.
func Ref(key string) string {
	return scheme + ServiceName + "/" + key
}

// ParseRef splits a keyring://service/key reference.
func ParseRef(ref string) (service, key string, err error) {
	rest, ok := strings.CutPrefix(ref, scheme)
	if !ok {
		return "", "", rdlerr.New(rdlerr.CodeSecretInvalidInput, "not a keyring reference", rdlerr.Field("value", ref))
	}

	service, key, ok = strings.Cut(rest, "/")
	if !ok || service == "" || key == "" {
		return "", "", rdlerr.New(rdlerr.CodeSecretInvalidInput,
			"malformed keyring reference, expected keyring://service/key", rdlerr.Field("value", ref))
	}
	return service, key, nil
}

// Resolve returns the secret a reference points at. Other values are
// returned unchanged.
func Resolve(store Store, value string) (string, error) {
	if !IsRef(value) {
		return value, nil
	}

	service, key, err := ParseRef(value)
	if err != nil {
		return "", err
	}

	secret, err := store.Retrieve(service, key)
	if err != nil {
		return "", rdlerr.Wrap(err, rdlerr.CodeSecretResolveFailure, "resolving keyring reference",
			rdlerr.Field("value", value))
	}
	return secret, nil
}

// ResolveViperSecrets replaces every keyring reference held by v with its
// secret. The store is only consulted when a reference is present. Keys that
// cannot be resolved keep their reference and are reported together.
func ResolveViperSecrets(v *viper.Viper, store Store) error {
	var unresolved []string
	keys := v.AllKeys()
	slices.Sort(keys)

	for _, key := range keys {
		val := v.GetString(key)
		if !IsRef(val) {
			continue
		}

		resolved, err := Resolve(store, val)
		if err != nil {
			unresolved = append(unresolved, key+" ("+val+")")
			continue
		}
		v.Set(key, resolved)
	}

	if len(unresolved) > 0 {
		return rdlerr.New(rdlerr.CodeSecretResolveFailure,
			"unresolved keyring references: "+strings.Join(unresolved, ", "))
	}
	return nil
}
