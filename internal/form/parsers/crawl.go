package parsers

import (
	"github.com/bytedance/sonic"

	"github.com/Formflow-core-poc-v1/server/internal/form/model"
	logx "github.com/Formflow-core-poc-v1/server/pkg/logger"
)

// ParseCrawlOptions extracts the website list for the crawl configuration
// form. Any failure yields the empty bundle, never an error.
func ParseCrawlOptions(raw string) (bundle model.CrawlOptions) {
	defer recoverEmpty("crawl_parser", raw)

	doc, ok := decodePayload(raw)
	if !ok {
		return model.CrawlOptions{}
	}

	var payload struct {
		Websites []model.Website `json:"websites"`
	}
	if err := sonic.Unmarshal(doc, &payload); err != nil {
		lg := logx.Component("crawl_parser")
		lg.Debug().Err(err).Msg("payload did not match crawl shape")
		return model.CrawlOptions{}
	}

	return model.CrawlOptions{Websites: compactWebsites(payload.Websites)}
}

func compactWebsites(in []model.Website) []model.Website {
	out := make([]model.Website, 0, len(in))
	for _, w := range in {
		if w.ID == "" && w.URL == "" {
			continue
		}
		out = append(out, w)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// recoverEmpty is the shared panic guard for parser entry points. The named
// return of the caller stays at its zero value, which is the empty bundle.
func recoverEmpty(component, raw string) {
	if r := recover(); r != nil {
		lg := logx.Component(component)
		lg.Error().
			Int("output_len", len(raw)).
			Msgf("panic recovered: %v", r)
	}
}
