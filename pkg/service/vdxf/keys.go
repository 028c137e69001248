// Package vdxf holds the registry of VDXF keys used by the login consent
// protocol. A VDXF key is a stable, namespaced identifier (an i-address)
// that doubles as a URL path segment and an object-field discriminator on
// the wire between this service and the Verus wallet.
package vdxf

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/ripemd160"
)

// Names of every keyed field the protocol uses. The set is fixed: lookups
// outside of it are programming errors, not runtime failures.
const (
	WalletKey                  = "vrsc::system.wallet"
	LoginConsentRequestKey     = "vrsc::system.login.consent.request"
	LoginConsentResponseKey    = "vrsc::system.login.consent.response"
	LoginConsentChallengeKey   = "vrsc::system.login.consent.challenge"
	LoginConsentClientKey      = "vrsc::system.login.consent.client"
	LoginConsentRedirectKey    = "vrsc::system.login.consent.redirect"
	LoginConsentWebhookKey     = "vrsc::system.login.consent.webhook"
	LoginConsentRequestSigKey  = "vrsc::system.login.consent.request.signature"
	LoginConsentResponseSigKey = "vrsc::system.login.consent.response.signature"
)

// identityAddressVersion is the base58check version byte for Verus identity
// addresses, which yields the familiar 'i' prefix.
const identityAddressVersion = 102

// KeyedField pairs a semantic field name with its derived i-address.
type KeyedField struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

var registry = func() map[string]KeyedField {
	names := []string{
		WalletKey,
		LoginConsentRequestKey,
		LoginConsentResponseKey,
		LoginConsentChallengeKey,
		LoginConsentClientKey,
		LoginConsentRedirectKey,
		LoginConsentWebhookKey,
		LoginConsentRequestSigKey,
		LoginConsentResponseSigKey,
	}
	keys := make(map[string]KeyedField, len(names))
	seen := make(map[string]string, len(names))
	for _, name := range names {
		id := DeriveID(name)
		if prior, ok := seen[id]; ok {
			panic(fmt.Sprintf("vdxf key collision: %s and %s derive %s", prior, name, id))
		}
		seen[id] = name
		keys[name] = KeyedField{Name: name, ID: id}
	}
	return keys
}()

// DeriveID computes the i-address for a qualified key name:
// base58check over hash160 of the lowercased name.
func DeriveID(name string) string {
	normalized := strings.ToLower(strings.TrimSpace(name))
	sha := sha256.Sum256([]byte(normalized))
	ripe := ripemd160.New()
	ripe.Write(sha[:])
	return checkEncode(ripe.Sum(nil), identityAddressVersion)
}

// MustKey returns the keyed field registered under name. It panics on an
// unregistered name: the name set is static and a miss is a caller bug.
func MustKey(name string) KeyedField {
	key, ok := registry[name]
	if !ok {
		panic(fmt.Sprintf("unknown vdxf key name: %s", name))
	}
	return key
}

// Keys returns a copy of the full registry.
func Keys() []KeyedField {
	keys := make([]KeyedField, 0, len(registry))
	for _, key := range registry {
		keys = append(keys, key)
	}
	return keys
}

// checkEncode base58-encodes versioned payload bytes with a 4 byte
// double-sha256 checksum appended.
func checkEncode(payload []byte, version byte) string {
	buf := make([]byte, 0, 1+len(payload)+4)
	buf = append(buf, version)
	buf = append(buf, payload...)
	first := sha256.Sum256(buf)
	second := sha256.Sum256(first[:])
	buf = append(buf, second[:4]...)
	return base58.Encode(buf)
}
