package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/shared"
	"github.com/valyala/fasttemplate"
	"go.uber.org/zap"

	"tradebook/internal/config"
	"tradebook/internal/xe"
)

// ReviewService asks an OpenAI-compatible model for a critique of the
// journal's recent statistics. Optional: without an API key the endpoint
// reports itself as not configured.
type ReviewService struct {
	logger *zap.Logger

	statsService *StatsService
	openAIClient *openai.Client
	llmConf      config.LlmConf
}

func NewReviewService(statsService *StatsService, openAIClient *openai.Client, conf *config.Config, logger *zap.Logger) *ReviewService {
	return &ReviewService{
		logger:       logger,
		statsService: statsService,
		openAIClient: openAIClient,
		llmConf:      conf.LLM,
	}
}

const reviewSystemInstructions = `You are an experienced day-trading coach reviewing a futures trading journal. ` +
	`Focus on process over outcome: plan adherence, stop discipline and risk:reward. ` +
	`Be direct and concrete, three paragraphs at most.`

const reviewPromptTemplate = `Journal statistics:
- trades with results: {{total_trades}} ({{trades_with_plan}} with a plan)
- win rate: {{win_rate}} (wins {{wins}}, losses {{losses}})
- net result: {{net_result}}, profit factor: {{profit_factor}}
- average win {{avg_win}} vs average loss {{avg_loss}}
- stop respected on {{stop_adherence}} of losing planned trades
- target reached on {{target_adherence}} of winning planned trades
- average planned risk:reward {{planned_rr}}
- plan legs matched by executions: {{plan_adherence}}
- trades scaled out across multiple legs: {{multi_leg}}

Review this journal.`

// GenerateReview renders the current statistics into a prompt and returns
// the model's critique.
func (s *ReviewService) GenerateReview(ctx context.Context) (string, error) {
	if s.llmConf.APIKey == "" {
		return "", xe.ErrReviewNotConfigured
	}

	adherence, err := s.statsService.GetAdherenceStats(ctx)
	if err != nil {
		return "", err
	}
	performance, err := s.statsService.GetPerformanceSummary(ctx)
	if err != nil {
		return "", err
	}

	t := fasttemplate.New(reviewPromptTemplate, "{{", "}}")
	prompt := t.ExecuteString(map[string]interface{}{
		"total_trades":     fmt.Sprintf("%d", adherence.TotalTrades),
		"trades_with_plan": fmt.Sprintf("%d", adherence.TradesWithPlan),
		"win_rate":         fmt.Sprintf("%.1f%%", performance.WinRate*100),
		"wins":             fmt.Sprintf("%d", performance.Wins),
		"losses":           fmt.Sprintf("%d", performance.Losses),
		"net_result":       fmt.Sprintf("%.2f", performance.NetResult),
		"profit_factor":    fmt.Sprintf("%.2f", performance.ProfitFactor),
		"avg_win":          fmt.Sprintf("%.2f", performance.AvgWin),
		"avg_loss":         fmt.Sprintf("%.2f", performance.AvgLoss),
		"stop_adherence":   fmt.Sprintf("%.1f%%", adherence.StopAdherencePct),
		"target_adherence": fmt.Sprintf("%.1f%%", adherence.TargetAdherencePct),
		"planned_rr":       fmt.Sprintf("%.2f", adherence.PlannedRiskReward),
		"plan_adherence":   fmt.Sprintf("%.1f%%", adherence.AvgPlanAdherencePct),
		"multi_leg":        fmt.Sprintf("%d", adherence.MultiLegTradeCount),
	})

	s.logger.Info("requesting journal review",
		zap.String("model", s.llmConf.Model),
		zap.Int("prompt_length", len(prompt)))

	resp, err := s.openAIClient.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: shared.ChatModel(s.llmConf.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(reviewSystemInstructions),
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to call LLM API: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("LLM returned no choices")
	}

	review := strings.TrimSpace(resp.Choices[0].Message.Content)
	s.logger.Info("journal review generated",
		zap.Int("prompt_tokens", int(resp.Usage.PromptTokens)),
		zap.Int("completion_tokens", int(resp.Usage.CompletionTokens)))

	return review, nil
}
