package internal

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-orz/orz"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"tradebook/internal/config"
	"tradebook/internal/handler"
	"tradebook/internal/models"
	"tradebook/internal/service"
	"tradebook/internal/telegram"
	"tradebook/pkg/nostd"
)

func Run(configPath string) error {
	app := NewTradebookApp()

	framework, err := orz.NewFramework(
		orz.WithConfig(configPath),
		orz.WithLoggerFromConfig(),
		orz.WithDatabase(),
		orz.WithHTTP(),
		orz.WithApplication(app),
	)
	if err != nil {
		return err
	}

	return framework.Run()
}

func NewTradebookApp() orz.Application {
	return &TradebookApp{}
}

var _ orz.Application = (*TradebookApp)(nil)

type AppComponents struct {
	TradeHandler *handler.TradeHandler

	TradeService     *service.TradeService
	StatsService     *service.StatsService
	ImportService    *service.ImportService
	ReviewService    *service.ReviewService
	SummaryScheduler *service.SummaryScheduler

	tg *telegram.Telegram
}

type TradebookApp struct {
	components *AppComponents
	conf       *config.Config
}

func (r *TradebookApp) GetComponents() *AppComponents {
	return r.components
}

func (r *TradebookApp) Configure(app *orz.App) error {
	logger := app.Logger()
	e := app.GetEcho()
	db := app.GetDatabase()

	var conf config.Config
	err := app.GetConfig().App.Unmarshal(&conf)
	if err != nil {
		return fmt.Errorf("failed to unmarshal config: %v", err)
	}

	components, err := InitializeApp(logger, db, &conf)
	if err != nil {
		return fmt.Errorf("failed to initialize app: %v", err)
	}
	r.components = components
	r.conf = &conf

	if err := db.AutoMigrate(
		models.Trade{}, models.PlannedExit{}, models.ActualExit{},
	); err != nil {
		logger.Fatal("database auto migrate failed", zap.Error(err))
	}

	if err := r.Init(logger); err != nil {
		logger.Fatal("app init failed", zap.Error(err))
	}

	e.HidePort = true
	e.HideBanner = true

	e.Use(middleware.Gzip())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		Skipper:      middleware.DefaultSkipper,
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete},
	}))
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			sugar := logger.Sugar()
			sugar.Error(fmt.Sprintf("[PANIC RECOVER] %v %s\n", err, stack))
			return err
		},
	}))
	e.Use(WithErrorHandler(logger))
	customValidator := nostd.CustomValidator{Validator: validator.New()}
	if err := customValidator.TransInit(); err != nil {
		logger.Sugar().Fatal("failed to init custom validator", zap.Error(err))
	}
	e.Validator = &customValidator

	api := e.Group("/api")
	{
		if r.components.TradeHandler != nil {
			r.components.TradeHandler.RegisterRoutes(api)
		}
	}

	return nil
}

func (r *TradebookApp) Init(logger *zap.Logger) error {
	components := r.GetComponents()
	if components == nil {
		return fmt.Errorf("components not initialized")
	}

	if components.tg == nil {
		logger.Info("telegram disabled, daily summary will not be published")
		return nil
	}

	components.tg.Start()

	go func() {
		if err := components.SummaryScheduler.Start(context.Background()); err != nil {
			logger.Error("summary scheduler error", zap.Error(err))
		}
	}()
	return nil
}
