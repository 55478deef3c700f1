package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"app/internal/cart"
	"app/internal/config"
	"app/internal/domain/model"
	"app/internal/handler"
	"app/internal/infra/db"
	infraRepo "app/internal/infra/repository"
	"app/internal/server"
	"app/internal/usecase"
	"app/internal/validator"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	//.envは無くても動く（本番は環境変数で渡す）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	setupLogger(cfg)

	//DB接続
	gormDB, err := db.Connect(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect failed")
	}

	if err := gormDB.AutoMigrate(
		&model.Profile{},
		&model.Product{},
		&model.Order{},
		&model.OrderItem{},
		&model.RefreshToken{},
	); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	//Repository（GORM実装）生成
	profileRepo := infraRepo.NewProfileGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	rtRepo := infraRepo.NewRefreshTokenGormRepository(gormDB)
	txManager := infraRepo.NewTxManagerGorm(gormDB)

	//カートはインメモリ
	cartStore := cart.NewStore()

	//Usecase生成
	authValidator := validator.NewAuthValidator(profileRepo)
	authUC := usecase.NewAuthUsecase(cfg, profileRepo, rtRepo, authValidator)
	productUC := usecase.NewProductUsecase(productRepo)
	cartUC := usecase.NewCartUsecase(cartStore, txManager, productRepo)
	orderUC := usecase.NewOrderUsecase(txManager)

	//Handler生成
	deps := server.RouteDeps{
		Profiles: profileRepo,
		Auth:     handler.NewAuthHandler(authUC, cfg),
		Product:  handler.NewProductHandler(productUC),
		Cart:     handler.NewCartHandler(cartUC),
		Order:    handler.NewOrderHandler(orderUC),
	}

	srv := server.New(cfg, deps)

	//Server起動
	go func() {
		log.Info().Str("port", cfg.Port).Msg("server started")
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	//SIGINT/SIGTERMで graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown failed")
	}
	log.Info().Msg("server shutdown")
}

func setupLogger(cfg config.Config) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if cfg.GoEnv != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}
