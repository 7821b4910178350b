//go:build wireinject
// +build wireinject

package internal

import (
	"net/http"
	"net/url"
	"time"

	"github.com/google/wire"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"tradebook/internal/config"
	"tradebook/internal/engine"
	"tradebook/internal/handler"
	"tradebook/internal/service"
	"tradebook/internal/telegram"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	telegramHTTPTimeout = 10 * time.Second
)

var (
	handlerSet = wire.NewSet(
		handler.NewTradeHandler,
	)

	journalSet = wire.NewSet(
		provideCostTable,
		provideOpenAIClient,
		service.NewTradeService,
		service.NewStatsService,
		service.NewImportService,
		service.NewReviewService,
		service.NewSummaryScheduler,
	)
)

func InitializeApp(logger *zap.Logger, db *gorm.DB, conf *config.Config) (*AppComponents, error) {
	wire.Build(
		handlerSet,
		journalSet,
		provideTelegram,
		wire.Struct(new(AppComponents), "*"),
	)
	return nil, nil
}

// provideCostTable merges the configured per-asset overrides over the
// built-in contract specs. A zero point value keeps the default.
func provideCostTable(conf *config.Config, logger *zap.Logger) engine.CostTable {
	table := engine.DefaultTable()
	for asset, override := range conf.Journal.Assets {
		spec := table[asset]
		if override.PointValue > 0 {
			spec.PointValue = override.PointValue
		}
		spec.RoundTripCost = override.RoundTripCost
		table[asset] = spec
	}

	logger.Info("cost table initialized", zap.Int("assets", len(table)))
	return table
}

// provideTelegram provides telegram instance
func provideTelegram(logger *zap.Logger, conf *config.Config) *telegram.Telegram {
	if !conf.Telegram.Enabled {
		return nil
	}

	httpClient := &http.Client{Timeout: telegramHTTPTimeout}

	tg, err := telegram.NewTelegram(logger, telegram.Settings{
		Token:  conf.Telegram.Token,
		Client: httpClient,
	})
	if err != nil {
		logger.Error("failed to init telegram", zap.Error(err))
		return nil
	}

	return tg
}

// provideOpenAIClient provides OpenAI client
func provideOpenAIClient(conf *config.Config, logger *zap.Logger) *openai.Client {
	var options = []option.RequestOption{
		option.WithBaseURL(conf.LLM.BaseURL),
		option.WithAPIKey(conf.LLM.APIKey),
	}
	if conf.LLM.ProxyURL != "" {
		u, err := url.Parse(conf.LLM.ProxyURL)
		if err != nil {
			logger.Fatal("failed to parse proxy URL", zap.Error(err))
		}
		httpClient := &http.Client{
			Timeout: time.Minute,
			Transport: &http.Transport{
				Proxy: http.ProxyURL(u),
			},
		}
		options = append(options, option.WithHTTPClient(httpClient))
	}

	client := openai.NewClient(options...)

	logger.Info("OpenAI client initialized",
		zap.String("model", conf.LLM.Model),
	)
	return &client
}
