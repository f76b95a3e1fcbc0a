package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/yungbote/cinebridge-backend/internal/platform/apierr"
	"github.com/yungbote/cinebridge-backend/internal/platform/logger"
)

const bearerPrefix = "Bearer "

// TokenValidator turns an Authorization header value into a subject id.
// Every rejection is apierr.ErrUnauthenticated; the reason is only logged.
type TokenValidator interface {
	Validate(header string) (int64, error)
}

type tokenValidator struct {
	log    *logger.Logger
	secret []byte
	alg    string
}

func NewTokenValidator(log *logger.Logger, secret, alg string) (TokenValidator, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("missing JWT_SECRET_KEY")
	}
	alg = strings.ToUpper(strings.TrimSpace(alg))
	if alg == "" {
		alg = jwt.SigningMethodHS256.Alg()
	}
	switch alg {
	case jwt.SigningMethodHS256.Alg(), jwt.SigningMethodHS384.Alg(), jwt.SigningMethodHS512.Alg():
	default:
		return nil, fmt.Errorf("unsupported JWT_ALGORITHM %q", alg)
	}
	return &tokenValidator{
		log:    log.With("service", "TokenValidator"),
		secret: []byte(secret),
		alg:    alg,
	}, nil
}

func (v *tokenValidator) Validate(header string) (int64, error) {
	id, err := v.validate(header)
	if err != nil {
		v.log.Debug("credential rejected", "reason", err.Error())
		return 0, apierr.ErrUnauthenticated
	}
	return id, nil
}

func (v *tokenValidator) validate(header string) (int64, error) {
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return 0, errors.New("missing bearer scheme")
	}
	raw := strings.TrimSpace(header[len(bearerPrefix):])
	if raw == "" {
		return 0, errors.New("empty credential")
	}

	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{v.alg}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return 0, err
	}
	if !token.Valid {
		return 0, errors.New("token invalid")
	}

	if id, ok := claimInt64(claims["id"]); ok {
		return id, nil
	}
	if id, ok := claimInt64(claims["sub"]); ok {
		return id, nil
	}
	return 0, errors.New("missing subject id claim")
}

func claimInt64(v interface{}) (int64, bool) {
	switch x := v.(type) {
	case float64:
		if x != math.Trunc(x) || x <= 0 || x >= math.MaxInt64 {
			return 0, false
		}
		return int64(x), true
	case json.Number:
		n, err := x.Int64()
		return n, err == nil && n > 0
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		return n, err == nil && n > 0
	default:
		return 0, false
	}
}
