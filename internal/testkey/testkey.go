// Package testkey generates throwaway service account key files for tests.
package testkey

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
)

const (
	ProjectID    = "proj"
	ClientEmail  = "svc@proj.iam.gserviceaccount.com"
	PrivateKeyID = "0123456789abcdef0123456789abcdef01234567"
)

type ServiceAccount struct {
	Key  *rsa.PrivateKey
	JSON []byte
}

// New returns a service account key file signed by a fresh 2048-bit RSA key.
func New(t testing.TB) *ServiceAccount {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generating key: %v", err)
	}
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		t.Fatalf("marshaling key: %v", err)
	}
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})

	data, err := json.Marshal(map[string]string{
		"type":           "service_account",
		"project_id":     ProjectID,
		"private_key_id": PrivateKeyID,
		"private_key":    string(keyPEM),
		"client_email":   ClientEmail,
		"client_id":      "100000000000000000001",
		"auth_uri":       "https://accounts.google.com/o/oauth2/auth",
		"token_uri":      "https://oauth2.googleapis.com/token",
	})
	if err != nil {
		t.Fatalf("marshaling key file: %v", err)
	}
	return &ServiceAccount{Key: key, JSON: data}
}

// WriteFile stores the key file as sa.json in a temporary directory and returns its path.
func (sa *ServiceAccount) WriteFile(t testing.TB) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sa.json")
	if err := os.WriteFile(path, sa.JSON, 0o600); err != nil {
		t.Fatalf("writing key file: %v", err)
	}
	return path
}
