package main

import (
	"github.com/alphabatem/common/context"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/psikotes-ai/psikotes_api/middleware"
	"github.com/psikotes-ai/psikotes_api/services"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Warn().Err(err).Msg("No .env file loaded")
	}

	ctx, err := context.NewCtx(
		&services.MongoService{},
		&services.RedisService{},
		&services.JWTService{},
		&services.MinIOService{},

		&services.GeneratorService{},
		&services.QuickTestService{},
		&services.TestSessionService{},
		&services.DuelService{},
		&services.DashboardService{},
		&services.KreplinService{},
		&services.BookService{},
		&services.AuthService{},
		&services.AdminService{},

		&middleware.AuthMiddleware{},
		&middleware.RateLimitMiddleware{},

		&services.MonitoringService{},
		&services.HttpService{},
	)
	if err != nil {
		log.Fatal().Err(err)
		return
	}

	err = ctx.Run()
	if err != nil {
		log.Fatal().Err(err)
		return
	}
}
