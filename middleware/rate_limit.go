package middleware

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"github.com/psikotes-ai/psikotes_api/dto"
	"github.com/psikotes-ai/psikotes_api/model"
	"github.com/psikotes-ai/psikotes_api/services"
	"github.com/psikotes-ai/psikotes_api/shared"
)

// RateLimitMiddleware implements fixed window rate limiting on top of
// Redis. Counters live under rl:{endpoint}:{identifier}, blocks under
// rl:block:{endpoint}:{identifier}.
type RateLimitMiddleware struct {
	context.DefaultService

	configs  map[string]*model.RateLimitConfig
	mutex    sync.RWMutex
	redisSvc *services.RedisService
}

const RATE_LIMIT_MIDDLEWARE_SVC = "rate_limit"

func (svc *RateLimitMiddleware) Id() string {
	return RATE_LIMIT_MIDDLEWARE_SVC
}

func (svc *RateLimitMiddleware) Configure(ctx *context.Context) error {
	svc.redisSvc = ctx.Service(services.REDIS_SVC).(*services.RedisService)

	svc.configs = make(map[string]*model.RateLimitConfig)
	return svc.DefaultService.Configure(ctx)
}

func (svc *RateLimitMiddleware) Start() error {
	svc.initDefaultConfigs()
	return nil
}

func (svc *RateLimitMiddleware) initDefaultConfigs() {
	svc.configs = map[string]*model.RateLimitConfig{
		// Login and register - protect against credential stuffing
		"auth": {
			EndpointType: "auth",
			MaxRequests:  10,
			WindowSize:   time.Minute * 15,
			BlockTime:    time.Minute * 30,
			Description:  "Authentication rate limit",
		},

		// AI question generation is the expensive path
		"generation": {
			EndpointType: "generation",
			MaxRequests:  20,
			WindowSize:   time.Hour,
			BlockTime:    time.Hour,
			Description:  "Question generation rate limit",
		},

		// Room code joins - prevent code enumeration
		"duel_join": {
			EndpointType: "duel_join",
			MaxRequests:  30,
			WindowSize:   time.Minute * 10,
			BlockTime:    time.Minute * 30,
			Description:  "Duel join rate limit",
		},

		// General API calls per IP
		"api_general": {
			EndpointType: "api_general",
			MaxRequests:  1000,
			WindowSize:   time.Hour,
			BlockTime:    time.Hour,
			Description:  "General API rate limit per IP",
		},
	}
}

func (svc *RateLimitMiddleware) IsAllowed(c *fiber.Ctx, identifier, endpointType string) (bool, *dto.RateLimitInfo, error) {
	svc.mutex.RLock()
	config, exists := svc.configs[endpointType]
	svc.mutex.RUnlock()

	if !exists {
		return true, &dto.RateLimitInfo{
			Allowed:   true,
			Remaining: -1,
		}, nil
	}

	ctx := c.UserContext()
	now := time.Now()
	blockKey := fmt.Sprintf("rl:block:%s:%s", endpointType, identifier)
	countKey := fmt.Sprintf("rl:%s:%s", endpointType, identifier)

	blocked, err := svc.redisSvc.Exists(ctx, blockKey)
	if err != nil {
		return false, nil, err
	}
	if blocked {
		ttl, _ := svc.redisSvc.TTL(ctx, blockKey)
		blockedUntil := now.Add(ttl)
		return false, &dto.RateLimitInfo{
			Allowed:      false,
			Remaining:    0,
			ResetTime:    &blockedUntil,
			BlockedUntil: &blockedUntil,
		}, nil
	}

	count, err := svc.redisSvc.Increment(ctx, countKey)
	if err != nil {
		return false, nil, err
	}
	if count == 1 {
		// First hit in the window owns the expiry
		if err := svc.redisSvc.Expire(ctx, countKey, config.WindowSize); err != nil {
			return false, nil, err
		}
	}

	if count > int64(config.MaxRequests) {
		if err := svc.redisSvc.Set(ctx, blockKey, "1", config.BlockTime); err != nil {
			return false, nil, err
		}
		blockedUntil := now.Add(config.BlockTime)
		return false, &dto.RateLimitInfo{
			Allowed:      false,
			Remaining:    0,
			ResetTime:    &blockedUntil,
			BlockedUntil: &blockedUntil,
		}, nil
	}

	ttl, _ := svc.redisSvc.TTL(ctx, countKey)
	resetTime := now.Add(ttl)
	return true, &dto.RateLimitInfo{
		Allowed:   true,
		Remaining: config.MaxRequests - int(count),
		ResetTime: &resetTime,
	}, nil
}

func (svc *RateLimitMiddleware) limit(endpointType, message string, failOpen bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identifier := getClientIP(c)
		if userID, ok := c.Locals(shared.UserID).(string); ok && userID != "" {
			identifier = userID
		}

		allowed, info, err := svc.IsAllowed(c, identifier, endpointType)
		if err != nil {
			log.WithError(err).WithField("endpoint_type", endpointType).Warn("Rate limit check failed")
			if failOpen {
				return c.Next()
			}
			return shared.NewServiceUnavailableError(shared.MsgInternalError, err)
		}

		if info.ResetTime != nil {
			c.Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
		}
		c.Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))

		if !allowed {
			if info.BlockedUntil != nil {
				c.Set("Retry-After", strconv.FormatInt(info.BlockedUntil.Unix(), 10))
			}
			return shared.ResponseJSON(c, fiber.StatusTooManyRequests, "Rate limit exceeded", message)
		}

		return c.Next()
	}
}

// IPRateLimit is the general per IP limiter for the whole API surface.
func (svc *RateLimitMiddleware) IPRateLimit() fiber.Handler {
	return svc.limit("api_general", "Terlalu banyak permintaan dari alamat ini", true)
}

// AuthRateLimit protects login and register.
func (svc *RateLimitMiddleware) AuthRateLimit() fiber.Handler {
	return svc.limit("auth", "Terlalu banyak percobaan. Silakan coba lagi nanti.", false)
}

// GenerationRateLimit protects the AI generation endpoints.
func (svc *RateLimitMiddleware) GenerationRateLimit() fiber.Handler {
	return svc.limit("generation", "Batas pembuatan soal tercapai. Silakan coba lagi nanti.", true)
}

// DuelJoinRateLimit protects room code joins.
func (svc *RateLimitMiddleware) DuelJoinRateLimit() fiber.Handler {
	return svc.limit("duel_join", "Terlalu banyak percobaan bergabung. Silakan coba lagi nanti.", true)
}

func getClientIP(c *fiber.Ctx) string {
	forwarded := c.Get("X-Forwarded-For")
	if forwarded != "" {
		ips := strings.Split(forwarded, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	realIP := c.Get("X-Real-IP")
	if realIP != "" {
		return realIP
	}

	return c.IP()
}
