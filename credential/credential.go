package credential

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/golang-jwt/jwt/v5"
)

const serviceAccountType = "service_account"

var ErrCredential = errors.New("invalid service account credential")

// Credential is a service account key file as downloaded from the Google Cloud console.
type Credential struct {
	Type         string `json:"type"`
	ProjectID    string `json:"project_id"`
	PrivateKeyID string `json:"private_key_id"`
	PrivateKey   string `json:"private_key"`
	ClientEmail  string `json:"client_email"`
	ClientID     string `json:"client_id"`

	raw []byte
}

// Load reads and validates the key file at path.
func Load(path string) (*Credential, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: no key file given", ErrCredential)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCredential, err)
	}
	return Parse(data)
}

// Parse validates a key file already read into memory.
func Parse(data []byte) (*Credential, error) {
	var c Credential
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: decoding key file: %w", ErrCredential, err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	c.raw = append([]byte(nil), data...)
	return &c, nil
}

func (c *Credential) validate() error {
	var missing []string
	if c.Type != serviceAccountType {
		return fmt.Errorf("%w: type is %q, want %q", ErrCredential, c.Type, serviceAccountType)
	}
	if c.PrivateKeyID == "" {
		missing = append(missing, "private_key_id")
	}
	if c.PrivateKey == "" {
		missing = append(missing, "private_key")
	}
	if c.ClientEmail == "" {
		missing = append(missing, "client_email")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing fields %v", ErrCredential, missing)
	}
	// the signing library parses the key lazily, fail early instead
	if _, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(c.PrivateKey)); err != nil {
		return fmt.Errorf("%w: private_key: %w", ErrCredential, err)
	}
	return nil
}

// KeyID returns the private_key_id of the key file.
func (c *Credential) KeyID() string {
	return c.PrivateKeyID
}

// JSON returns the key file exactly as it was read.
func (c *Credential) JSON() []byte {
	return append([]byte(nil), c.raw...)
}
