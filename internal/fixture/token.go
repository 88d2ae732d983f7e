package fixture

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenSigner mints HS256 tokens when the fixture runs with WithSignedTokens.
// The default fixture answers with the fixed constants instead, so scenarios
// asserting on literal token values keep working.
type tokenSigner struct {
	secret []byte
}

func newTokenSigner(secret string) *tokenSigner {
	return &tokenSigner{secret: []byte(secret)}
}

func (s *tokenSigner) sign(claims jwt.MapClaims) (string, error) {
	claims["iat"] = jwt.NewNumericDate(time.Now())
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// authToken returns the login token for user: the static constant, or a signed
// JWT carrying the user's identity when signing is enabled.
func (b *Backend) authToken(user User) (string, error) {
	if b.signer == nil {
		return StaticAuthToken, nil
	}
	roles := make([]string, 0, len(user.Roles))
	for _, r := range user.Roles {
		roles = append(roles, r.Role)
	}
	return b.signer.sign(jwt.MapClaims{
		"sub":   user.Email,
		"name":  user.Name,
		"roles": roles,
	})
}

// orderJWT returns the jwt attached to an order response.
func (b *Backend) orderJWT(order map[string]interface{}) (string, error) {
	if b.signer == nil {
		return StaticOrderJWT, nil
	}
	return b.signer.sign(jwt.MapClaims{
		"sub":   "order",
		"order": order,
	})
}

// ParseSignedToken verifies an HS256 token produced by a signing fixture and
// returns its claims. Used by tests and by anyone pointing a real verifier at
// the standalone server.
func ParseSignedToken(tokenString, secret string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}
