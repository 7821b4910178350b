package config

type Config struct {
	Journal  JournalConf  `json:"journal"`
	Telegram TelegramConf `json:"telegram"`
	LLM      LlmConf      `json:"llm"`
}

type JournalConf struct {
	Assets      map[string]AssetConf `json:"assets"`       // per-asset cost table, keyed by contract code (WIN, WDO, ...)
	SummaryCron string               `json:"summary_cron"` // cron expression for the telegram daily summary, default "0 18 * * 1-5"
}

type AssetConf struct {
	PointValue    float64 `json:"point_value"`     // currency per point per contract; 0 keeps the built-in default
	RoundTripCost float64 `json:"round_trip_cost"` // per-contract cost for a full round trip
}

type TelegramConf struct {
	Enabled bool   `json:"enabled"`
	Token   string `json:"token"`
	ChatID  string `json:"chat_id"`
}

type LlmConf struct {
	BaseURL  string `json:"base_url"` // OpenAI-compatible API base URL
	APIKey   string `json:"api_key"`  // empty disables the journal review endpoint
	Model    string `json:"model"`
	ProxyURL string `json:"proxy_url"` // optional proxy, e.g. http://127.0.0.1:7890
}
