package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"github.com/totegamma/misblock"
	"github.com/totegamma/misblock/internal/domain"
	"github.com/totegamma/misblock/jwt"
)

var tracer = otel.Tracer("auth")

const maxCachedTokenLifetime = 5 * time.Minute

type AuthService struct {
	config domain.Config
	cache  *cache.Cache
	now    func() time.Time
}

func NewAuthService(config domain.Config) *AuthService {
	return &AuthService{
		config: config,
		cache:  cache.New(maxCachedTokenLifetime, 10*time.Minute),
		now:    time.Now,
	}
}

type AuthResult struct {
	Requester string
}

// AuthJwt validates a bearer token issued by the auth gateway and returns the
// account it authenticates.
func (s *AuthService) AuthJwt(ctx context.Context, token string) (*AuthResult, error) {
	ctx, span := tracer.Start(ctx, "Auth.Service.AuthJwt")
	defer span.End()

	if cached, found := s.cache.Get(token); found {
		return cached.(*AuthResult), nil
	}

	if s.config.AuthKey == "" {
		err := fmt.Errorf("no auth key is configured")
		span.RecordError(err)
		return nil, err
	}

	now := s.now()
	_, claims, err := jwt.Validate(token, s.config.AuthKey, now)
	if err != nil {
		span.RecordError(errors.Wrap(err, "jwt validation failed"))
		return nil, err
	}

	if s.config.Audience != "" && claims.Audience != s.config.Audience {
		err := fmt.Errorf("jwt audience mismatch: expected %s, got %s", s.config.Audience, claims.Audience)
		span.RecordError(err)
		return nil, err
	}

	if !misblock.IsValidName(claims.Subject) {
		err := fmt.Errorf("invalid subject")
		span.RecordError(err)
		return nil, err
	}

	result := &AuthResult{Requester: claims.Subject}
	s.cache.Set(token, result, cacheLifetime(claims, now))
	return result, nil
}

func cacheLifetime(claims *jwt.Claims, now time.Time) time.Duration {
	if claims.ExpirationTime == "" {
		return maxCachedTokenLifetime
	}
	exp, err := strconv.ParseInt(claims.ExpirationTime, 10, 64)
	if err != nil {
		return time.Nanosecond
	}
	remaining := time.Unix(exp, 0).Sub(now)
	if remaining > maxCachedTokenLifetime {
		return maxCachedTokenLifetime
	}
	if remaining <= 0 {
		return time.Nanosecond
	}
	return remaining
}
