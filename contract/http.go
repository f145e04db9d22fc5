package contract

import "encoding/json"

// SignInWithCustomTokenRequest is the body of accounts:signInWithCustomToken.
type SignInWithCustomTokenRequest struct {
	Token             string `json:"token"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

// SignInWithPasswordRequest is the body of accounts:signInWithPassword.
type SignInWithPasswordRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

// SignInResponse keeps every field raw: only refreshToken decides success,
// the others are decoded leniently since their JSON types vary between
// Identity Toolkit, the emulator and proxies (expiresIn is "3600" or 3600).
type SignInResponse struct {
	Kind         json.RawMessage `json:"kind,omitempty"`
	IDToken      json.RawMessage `json:"idToken,omitempty"`
	RefreshToken json.RawMessage `json:"refreshToken,omitempty"`
	ExpiresIn    json.RawMessage `json:"expiresIn,omitempty"`
	LocalID      json.RawMessage `json:"localId,omitempty"`
	Email        json.RawMessage `json:"email,omitempty"`
	IsNewUser    json.RawMessage `json:"isNewUser,omitempty"`
	Registered   json.RawMessage `json:"registered,omitempty"`
}

// ErrorResponse is what Identity Toolkit returns on failure, e.g.
// {"error":{"code":400,"message":"INVALID_CUSTOM_TOKEN","errors":[...]}}.
// Some proxies and emulators send the message as a bare string instead.
type ErrorResponse struct {
	Error json.RawMessage `json:"error"`
}

type ErrorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status,omitempty"`
}
