package xe

import "github.com/go-orz/orz"

var (
	ErrInvalidParams       = orz.NewError(10400, "invalid request parameters")
	ErrStaleTrade          = orz.NewError(10409, "trade was modified concurrently, reload and retry")
	ErrReviewNotConfigured = orz.NewError(10001, "journal review requires an LLM API key")
	ErrEmptyImport         = orz.NewError(10002, "import file contains no trades")
)
