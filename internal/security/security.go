package security

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	limiterpkg "github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

var RateLimiter *limiterpkg.Limiter

func InitSecurity() {
	// 30 requests per minute per IP
	rate := limiterpkg.Rate{
		Period: 1 * time.Minute,
		Limit:  30,
	}
	store := memory.NewStore()
	RateLimiter = limiterpkg.New(store, rate)
}

func RateLimitMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ip := c.RealIP()
		context, err := RateLimiter.Get(c.Request().Context(), ip)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{
				"error": "rate limit error",
			})
		}

		if context.Reached {
			return c.JSON(http.StatusTooManyRequests, map[string]string{
				"error": "rate limit exceeded",
			})
		}

		return next(c)
	}
}
