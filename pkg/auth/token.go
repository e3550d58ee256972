package auth

import (
	"encoding/base64"
	"encoding/json"
	"strings"

	"github.com/lestrrat-go/jwx/v2/jwt"
)

const bearerPrefix = "Bearer "

// TokenHeader is the protected header of a compact serialized token.
// Only the fields the pipeline acts on are decoded.
type TokenHeader struct {
	Alg string `json:"alg"`
	Kid string `json:"kid"`
	Typ string `json:"typ,omitempty"`
}

// DecodedToken carries the parsed but not yet verified pieces of a
// bearer token. Raw keeps the exact compact serialization so signature
// verification runs over the original bytes, not a re-encoding.
type DecodedToken struct {
	Header    TokenHeader
	Claims    jwt.Token
	Signature []byte
	Raw       []byte
}

// BearerToken extracts the compact token from an Authorization header
// value. The scheme must be the literal "Bearer" followed by a single
// space; matching is case sensitive.
func BearerToken(header string) (string, *AuthError) {
	if header == "" {
		return "", invalidHeader("Authorization header is expected.")
	}
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", invalidHeader("Authorization header must start with Bearer.")
	}
	token := header[len(bearerPrefix):]
	if token == "" {
		return "", invalidHeader("Token not found.")
	}
	if strings.ContainsRune(token, ' ') {
		return "", invalidHeader("Authorization header must be bearer token.")
	}
	return token, nil
}

// DecodeCompact splits a compact serialization into its three segments
// and decodes each one. Nothing is verified here; the claim set it
// returns must not be trusted until Verifier has passed it.
func DecodeCompact(raw string) (*DecodedToken, *AuthError) {
	segments := strings.Split(raw, ".")
	if len(segments) != 3 {
		return nil, invalidHeader("Unable to parse authentication token.")
	}
	for _, segment := range segments {
		if segment == "" {
			return nil, invalidHeader("Unable to parse authentication token.")
		}
	}

	headerJSON, err := base64.RawURLEncoding.DecodeString(segments[0])
	if err != nil {
		return nil, invalidHeader("Unable to parse authentication token.")
	}
	var header TokenHeader
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		return nil, invalidHeader("Unable to parse authentication token.")
	}
	if header.Kid == "" {
		return nil, invalidHeader("Authorization malformed.")
	}

	payloadJSON, err := base64.RawURLEncoding.DecodeString(segments[1])
	if err != nil {
		return nil, invalidHeader("Unable to parse authentication token.")
	}
	claims := jwt.New()
	if err := json.Unmarshal(payloadJSON, claims); err != nil {
		return nil, invalidHeader("Unable to parse authentication token.")
	}

	signature, err := base64.RawURLEncoding.DecodeString(segments[2])
	if err != nil {
		return nil, invalidHeader("Unable to parse authentication token.")
	}

	return &DecodedToken{
		Header:    header,
		Claims:    claims,
		Signature: signature,
		Raw:       []byte(raw),
	}, nil
}
