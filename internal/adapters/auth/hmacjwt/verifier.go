// Package hmacjwt verifica tokens compactos firmados con HMAC-SHA256
// (header.payload.signature, cada segmento en base64url sin padding).
package hmacjwt

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"strconv"
	"strings"
	"time"

	"notes-api/internal/platform/logger"
	"notes-api/internal/ports/auth"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken es el único error que ve el caller, sin importar el motivo.
	ErrInvalidToken = errors.New("invalid or expired token")

	ErrEmptySecret = errors.New("hmacjwt: empty secret")
)

// Motivos internos; solo se loguean.
var (
	errMalformed      = errors.New("token must have 3 segments")
	errSignature      = errors.New("signature mismatch")
	errPayloadEncode  = errors.New("payload is not base64url")
	errPayloadJSON    = errors.New("payload is not a json object")
	errExpired        = errors.New("token expired")
	errSigningFailure = errors.New("cannot compute signature")
)

var urlToStd = strings.NewReplacer("-", "+", "_", "/")

// Verify es la verificación pura: mismo (token, secret, now) => mismo resultado.
// Cualquier fallo devuelve ErrInvalidToken.
func Verify(token string, secret []byte, now time.Time) (auth.Claims, error) {
	claims, err := verify(token, secret, now)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func verify(token string, secret []byte, now time.Time) (auth.Claims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, errMalformed
	}
	header, payload, signature := parts[0], parts[1], parts[2]

	mac, err := jwt.SigningMethodHS256.Sign(header+"."+payload, secret)
	if err != nil {
		return nil, errSigningFailure
	}
	expected := base64.RawURLEncoding.EncodeToString(mac)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) != 1 {
		return nil, errSignature
	}

	raw, err := decodeSegment(payload)
	if err != nil {
		return nil, errPayloadEncode
	}

	claims, err := decodeClaims(raw)
	if err != nil {
		return nil, errPayloadJSON
	}

	// exp ausente o no numérico: no se aplica expiración.
	if n, ok := claims["exp"].(json.Number); ok && expired(n, now) {
		return nil, errExpired
	}

	return claims, nil
}

// expired compara exp < now. Fuera de rango float64 se compara como ±Inf.
func expired(n json.Number, now time.Time) bool {
	exp, err := n.Float64()
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return true
	}
	return exp < float64(now.Unix())
}

// decodeSegment acepta base64url con o sin padding.
func decodeSegment(seg string) ([]byte, error) {
	s := urlToStd.Replace(seg)
	if m := len(s) % 4; m != 0 {
		s += strings.Repeat("=", 4-m)
	}
	return base64.StdEncoding.DecodeString(s)
}

func decodeClaims(raw []byte) (auth.Claims, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var claims auth.Claims
	if err := dec.Decode(&claims); err != nil {
		return nil, err
	}
	// "null" decodifica sin error a un map nil
	if claims == nil {
		return nil, errPayloadJSON
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errPayloadJSON
	}
	return claims, nil
}

// Verifier implementa auth.Verifier con un secreto compartido fijo.
type Verifier struct {
	secret []byte
	now    func() time.Time
	log    logger.Logger
}

type Option func(*Verifier)

func WithClock(now func() time.Time) Option {
	return func(v *Verifier) {
		if now != nil {
			v.now = now
		}
	}
}

func WithLogger(l logger.Logger) Option {
	return func(v *Verifier) {
		if l != nil {
			v.log = l
		}
	}
}

// NewVerifier copia el secreto; cambios posteriores del slice original no afectan.
func NewVerifier(secret []byte, opts ...Option) (*Verifier, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}

	v := &Verifier{
		secret: bytes.Clone(secret),
		now:    time.Now,
		log:    logger.NewNop(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

func (v *Verifier) Verify(_ context.Context, token string) (auth.Claims, error) {
	claims, err := verify(token, v.secret, v.now())
	if err != nil {
		v.log.Debug("token rejected", map[string]any{"reason": err.Error()})
		return nil, ErrInvalidToken
	}
	return claims, nil
}
