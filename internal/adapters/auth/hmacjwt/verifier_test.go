package hmacjwt

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"notes-api/internal/platform/logger"
	"notes-api/internal/ports/auth"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var testSecret = []byte("default-secret-change-in-production")

func mint(t *testing.T, claims jwt.MapClaims, secret []byte) string {
	t.Helper()

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err)
	return tok
}

// signRaw firma segmentos arbitrarios, para construir payloads inválidos con firma válida.
func signRaw(t *testing.T, header, payload string, secret []byte) string {
	t.Helper()

	mac, err := jwt.SigningMethodHS256.Sign(header+"."+payload, secret)
	require.NoError(t, err)
	return header + "." + payload + "." + base64.RawURLEncoding.EncodeToString(mac)
}

func b64(s string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(s))
}

func TestVerify_ValidTokenWithCustomPayload(t *testing.T) {
	now := time.Now()
	tok := mint(t, jwt.MapClaims{
		"user": "test-user",
		"role": "admin",
		"iat":  now.Unix(),
		"exp":  now.Unix() + 3600,
	}, testSecret)

	claims, err := Verify(tok, testSecret, now)
	require.NoError(t, err)

	assert.Equal(t, "test-user", claims["user"])
	assert.Equal(t, "admin", claims["role"])
	assert.IsType(t, json.Number(""), claims["exp"])
}

func TestVerify_FlexiblePayloadRoundTrip(t *testing.T) {
	now := time.Now()
	exp := now.Unix() + 3600
	tok := mint(t, jwt.MapClaims{
		"custom_field": "value",
		"nested":       map[string]any{"id": 123},
		"list":         []int{1, 2, 3},
		"exp":          exp,
	}, testSecret)

	got, err := Verify(tok, testSecret, now)
	require.NoError(t, err)

	want := auth.Claims{
		"custom_field": "value",
		"nested":       map[string]any{"id": json.Number("123")},
		"list":         []any{json.Number("1"), json.Number("2"), json.Number("3")},
		"exp":          json.Number(strconv.FormatInt(exp, 10)),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("claims mismatch (-want +got):\n%s", diff)
	}
}

func TestVerify_Rejections(t *testing.T) {
	now := time.Now()
	valid := mint(t, jwt.MapClaims{"user": "u", "exp": now.Unix() + 3600}, testSecret)
	other := mint(t, jwt.MapClaims{"user": "admin", "exp": now.Unix() + 3600}, testSecret)

	header := b64(`{"alg":"HS256","typ":"JWT"}`)

	cases := []struct {
		name   string
		token  string
		secret []byte
		reason error
	}{
		{"malformed", "not-a-jwt", testSecret, errMalformed},
		{"garbage segments", "invalid.token.here", testSecret, errSignature},
		{"too many segments", valid + ".extra", testSecret, errMalformed},
		{"empty", "", testSecret, errMalformed},
		{"wrong secret", mint(t, jwt.MapClaims{"user": "u", "exp": now.Unix() + 3600}, []byte("wrong-secret")), testSecret, errSignature},
		{"verified with other secret", valid, []byte("another"), errSignature},
		{"swapped payload", func() string {
			vp := splitToken(t, valid)
			op := splitToken(t, other)
			return vp[0] + "." + op[1] + "." + vp[2]
		}(), testSecret, errSignature},
		{"payload not base64", signRaw(t, header, "a", testSecret), testSecret, errPayloadEncode},
		{"payload not json", signRaw(t, header, b64("not json"), testSecret), testSecret, errPayloadJSON},
		{"payload is array", signRaw(t, header, b64(`[1,2,3]`), testSecret), testSecret, errPayloadJSON},
		{"payload is null", signRaw(t, header, b64(`null`), testSecret), testSecret, errPayloadJSON},
		{"payload trailing data", signRaw(t, header, b64(`{"a":1} {}`), testSecret), testSecret, errPayloadJSON},
		{"expired", mint(t, jwt.MapClaims{"user": "u", "exp": now.Unix() - 1}, testSecret), testSecret, errExpired},
		{"exp below float64 range", signRaw(t, header, b64(`{"exp":-1e400}`), testSecret), testSecret, errExpired},
		{"exp zero", signRaw(t, header, b64(`{"exp":0}`), testSecret), testSecret, errExpired},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			claims, err := Verify(tc.token, tc.secret, now)
			assert.ErrorIs(t, err, ErrInvalidToken)
			assert.Nil(t, claims)

			_, reason := verify(tc.token, tc.secret, now)
			assert.ErrorIs(t, reason, tc.reason)
		})
	}
}

func TestVerify_ExpiryBoundaries(t *testing.T) {
	now := time.Unix(1_700_000_000, 500_000_000)

	_, err := Verify(mint(t, jwt.MapClaims{"exp": now.Unix()}, testSecret), testSecret, now)
	assert.NoError(t, err, "exp == now is not expired")

	_, err = Verify(mint(t, jwt.MapClaims{"exp": now.Unix() - 1}, testSecret), testSecret, now)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = Verify(mint(t, jwt.MapClaims{"exp": now.Unix() + 3600}, testSecret), testSecret, now)
	assert.NoError(t, err)

	header := b64(`{"alg":"HS256","typ":"JWT"}`)
	_, err = Verify(signRaw(t, header, b64(`{"exp":1e400}`), testSecret), testSecret, now)
	assert.NoError(t, err, "exp above float64 range never expires")
}

func TestVerify_MissingOrNonNumericExpIsNotEnforced(t *testing.T) {
	now := time.Now()

	claims, err := Verify(mint(t, jwt.MapClaims{"sub": "42"}, testSecret), testSecret, now)
	require.NoError(t, err)
	assert.Equal(t, "42", claims.Subject())

	_, err = Verify(mint(t, jwt.MapClaims{"exp": "yesterday"}, testSecret), testSecret, now)
	assert.NoError(t, err)
}

func TestVerify_AcceptsPaddedPayload(t *testing.T) {
	header := b64(`{"alg":"HS256"}`)
	payload := base64.URLEncoding.EncodeToString([]byte(`{"a":"bc"}`))
	require.Contains(t, payload, "=")

	claims, err := Verify(signRaw(t, header, payload, testSecret), testSecret, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "bc", claims["a"])
}

func TestVerify_Idempotent(t *testing.T) {
	now := time.Now()
	tok := mint(t, jwt.MapClaims{"user": "u", "exp": now.Unix() + 60}, testSecret)

	first, err1 := Verify(tok, testSecret, now)
	second, err2 := Verify(tok, testSecret, now)

	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, first, second)

	_, err1 = Verify("not-a-jwt", testSecret, now)
	_, err2 = Verify("not-a-jwt", testSecret, now)
	assert.Equal(t, err1, err2)
}

func TestNewVerifier_EmptySecret(t *testing.T) {
	v, err := NewVerifier(nil)
	assert.ErrorIs(t, err, ErrEmptySecret)
	assert.Nil(t, v)
}

func TestVerifier_CopiesSecret(t *testing.T) {
	secret := []byte("s3cr3t")
	v, err := NewVerifier(secret)
	require.NoError(t, err)

	tok := mint(t, jwt.MapClaims{"user": "u"}, []byte("s3cr3t"))
	secret[0] = 'X'

	_, err = v.Verify(context.Background(), tok)
	assert.NoError(t, err)
}

func TestVerifier_UsesClockAndLogsReason(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	fixed := time.Unix(2_000_000_000, 0)

	v, err := NewVerifier(testSecret,
		WithClock(func() time.Time { return fixed }),
		WithLogger(logger.NewFromZap(zap.New(core))),
	)
	require.NoError(t, err)

	// válido para time.Now(), vencido para el reloj fijo
	tok := mint(t, jwt.MapClaims{"exp": fixed.Unix() - 10}, testSecret)

	claims, err := v.Verify(context.Background(), tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Nil(t, claims)

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "token expired", logs.All()[0].ContextMap()["reason"])
}

func TestVerifier_ConcurrentUse(t *testing.T) {
	v, err := NewVerifier(testSecret)
	require.NoError(t, err)

	good := mint(t, jwt.MapClaims{"user": "u", "exp": time.Now().Unix() + 3600}, testSecret)
	bad := mint(t, jwt.MapClaims{"user": "u"}, []byte("nope"))

	var wg sync.WaitGroup
	errs := make(chan string, 64)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tok, wantOK := good, true
			if i%2 == 1 {
				tok, wantOK = bad, false
			}
			_, err := v.Verify(context.Background(), tok)
			if (err == nil) != wantOK {
				errs <- "unexpected result for goroutine " + strconv.Itoa(i)
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for msg := range errs {
		t.Error(msg)
	}
}

func splitToken(t *testing.T, tok string) []string {
	t.Helper()

	parts := strings.Split(tok, ".")
	require.Len(t, parts, 3)
	return parts
}
