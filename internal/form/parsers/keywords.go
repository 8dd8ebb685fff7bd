package parsers

import (
	"github.com/bytedance/sonic"

	"github.com/Formflow-core-poc-v1/server/internal/form/model"
	logx "github.com/Formflow-core-poc-v1/server/pkg/logger"
)

// ParseKeywordOptions extracts the keyword source list for the keyword form.
func ParseKeywordOptions(raw string) (bundle model.KeywordOptions) {
	defer recoverEmpty("keywords_parser", raw)

	doc, ok := decodePayload(raw)
	if !ok {
		return model.KeywordOptions{}
	}

	var payload struct {
		Sources []model.KeywordSource `json:"sources"`
	}
	if err := sonic.Unmarshal(doc, &payload); err != nil {
		lg := logx.Component("keywords_parser")
		lg.Debug().Err(err).Msg("payload did not match keyword shape")
		return model.KeywordOptions{}
	}

	if len(payload.Sources) == 0 {
		return model.KeywordOptions{}
	}
	return model.KeywordOptions{Sources: payload.Sources}
}
