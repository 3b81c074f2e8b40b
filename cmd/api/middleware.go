package main

import (
	"log"
	"strings"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/subculture-collective/adserve/config"
	"github.com/subculture-collective/adserve/internal/middleware"
	"github.com/subculture-collective/adserve/pkg/utils"
)

// applyGlobalMiddleware wires the ambient middleware stack, in the same
// order the teacher applies it: request id first, then tracing/error
// reporting, structured logging, metrics, CORS, security headers, input
// validation, and finally the rate-limit whitelist. CSRF and abuse
// detection are dropped: advertiser identity is trusted input (spec.md §1
// Non-goals exclude authentication), so there is no session to protect.
func applyGlobalMiddleware(r *gin.Engine, cfg *config.Config, logger *utils.StructuredLogger) {
	r.Use(requestid.New())

	if cfg.Telemetry.Enabled {
		r.Use(middleware.TracingMiddleware(cfg.Telemetry.ServiceName))
	}

	if cfg.Sentry.Enabled {
		r.Use(middleware.SentryMiddleware())
		r.Use(middleware.RecoverWithSentry())
	} else {
		r.Use(middleware.JSONRecoveryMiddleware())
	}

	r.Use(logger.GinLogger())
	r.Use(middleware.MetricsMiddleware())
	r.Use(middleware.CORSMiddleware(cfg))
	r.Use(middleware.SecurityHeadersMiddleware(cfg))
	r.Use(middleware.InputValidationMiddleware())

	middleware.InitRateLimitWhitelist(cfg.RateLimit.WhitelistIPs)
	if cfg.RateLimit.WhitelistIPs != "" {
		ips := strings.Split(cfg.RateLimit.WhitelistIPs, ",")
		count := 0
		for _, ip := range ips {
			if strings.TrimSpace(ip) != "" {
				count++
			}
		}
		if count > 0 {
			log.Printf("Rate limit whitelist configured with %d additional IP(s) (plus localhost)", count)
		}
	}
}
