package session

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// segmentParser only decodes segments; it is never used to verify a token.
// Padding is accepted so both raw and padded base64url payloads decode.
var segmentParser = jwt.NewParser(jwt.WithPaddingAllowed())

// CurrentUserID returns the "sub" claim of the stored token.
// Absence of a token and every decode failure report ok == false.
func CurrentUserID(ctx context.Context, store Store) (string, bool) {
	token, err := store.Get(ctx)
	if err != nil || token == "" {
		return "", false
	}
	return SubjectFromToken(token)
}

// SubjectFromToken decodes the payload segment of a compact token and returns
// its "sub" claim. Signature, expiry and header are not inspected.
func SubjectFromToken(token string) (string, bool) {
	parts := strings.Split(token, ".")
	if len(parts) < 2 || parts[1] == "" {
		return "", false
	}

	raw, err := segmentParser.DecodeSegment(parts[1])
	if err != nil {
		return "", false
	}

	var claims jwt.MapClaims
	if err := json.Unmarshal(raw, &claims); err != nil {
		return "", false
	}
	if _, present := claims["sub"]; !present {
		return "", false
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return "", false
	}
	return sub, true
}
