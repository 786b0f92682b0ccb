package identity

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/stretchr/testify/require"
)

func newTestVerifier(t *testing.T) (*Verifier, jwk.Key) {
	t.Helper()

	raw, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	key, err := jwk.FromRaw(raw)
	require.NoError(t, err)
	require.NoError(t, key.Set(jwk.KeyIDKey, "test-key"))
	require.NoError(t, key.Set(jwk.AlgorithmKey, jwa.ES256))

	pub, err := key.PublicKey()
	require.NoError(t, err)

	set := jwk.NewSet()
	require.NoError(t, set.AddKey(pub))

	return &Verifier{keys: set, issuer: "test-issuer", audience: "test-aud"}, key
}

func signToken(t *testing.T, key jwk.Key, mutate func(b *jwt.Builder) *jwt.Builder) string {
	t.Helper()

	b := jwt.NewBuilder().
		Issuer("test-issuer").
		Audience([]string{"test-aud"}).
		Expiration(time.Now().Add(time.Hour)).
		Claim("email", "a@x.com")
	if mutate != nil {
		b = mutate(b)
	}
	tok, err := b.Build()
	require.NoError(t, err)

	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.ES256, key))
	require.NoError(t, err)
	return string(signed)
}

func TestVerifier_Verify(t *testing.T) {
	t.Parallel()

	v, key := newTestVerifier(t)

	id, err := v.Verify(context.Background(), signToken(t, key, nil))
	require.NoError(t, err)
	require.Equal(t, "a@x.com", id.Email)
}

func TestVerifier_Verify_Garbage(t *testing.T) {
	t.Parallel()

	v, _ := newTestVerifier(t)

	_, err := v.Verify(context.Background(), "not-a-token")
	require.Error(t, err)
}

func TestVerifier_Verify_Expired(t *testing.T) {
	t.Parallel()

	v, key := newTestVerifier(t)

	tok := signToken(t, key, func(b *jwt.Builder) *jwt.Builder {
		return b.Expiration(time.Now().Add(-time.Hour))
	})
	_, err := v.Verify(context.Background(), tok)
	require.Error(t, err)
}

func TestVerifier_Verify_WrongIssuer(t *testing.T) {
	t.Parallel()

	v, key := newTestVerifier(t)

	tok := signToken(t, key, func(b *jwt.Builder) *jwt.Builder {
		return b.Issuer("someone-else")
	})
	_, err := v.Verify(context.Background(), tok)
	require.Error(t, err)
}

func TestVerifier_Verify_NoEmailClaim(t *testing.T) {
	t.Parallel()

	v, key := newTestVerifier(t)

	b := jwt.NewBuilder().
		Issuer("test-issuer").
		Audience([]string{"test-aud"}).
		Expiration(time.Now().Add(time.Hour))
	tok, err := b.Build()
	require.NoError(t, err)
	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.ES256, key))
	require.NoError(t, err)

	_, err = v.Verify(context.Background(), string(signed))
	require.Error(t, err)
	require.Contains(t, err.Error(), "email")
}
