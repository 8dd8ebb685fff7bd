package parsers

import (
	"github.com/bytedance/sonic"

	"github.com/Formflow-core-poc-v1/server/internal/form/model"
	logx "github.com/Formflow-core-poc-v1/server/pkg/logger"
)

// ParseOutreachOptions extracts campaigns, templates and senders for the
// outreach campaign form. Senders arrive grouped by company and are flattened
// here, each entry carrying the parent group's id and company name, because
// the form renders individual senders rather than groups.
func ParseOutreachOptions(raw string) (bundle model.OutreachOptions) {
	defer recoverEmpty("outreach_parser", raw)

	doc, ok := decodePayload(raw)
	if !ok {
		return model.OutreachOptions{}
	}

	var payload struct {
		Campaigns    []model.Campaign    `json:"campaigns"`
		Templates    []model.Template    `json:"templates"`
		SenderGroups []model.SenderGroup `json:"sender_groups"`
	}
	if err := sonic.Unmarshal(doc, &payload); err != nil {
		lg := logx.Component("outreach_parser")
		lg.Debug().Err(err).Msg("payload did not match outreach shape")
		return model.OutreachOptions{}
	}

	return model.OutreachOptions{
		Campaigns: payload.Campaigns,
		Templates: payload.Templates,
		Senders:   flattenSenders(payload.SenderGroups),
	}
}

func flattenSenders(groups []model.SenderGroup) []model.Sender {
	var out []model.Sender
	for _, g := range groups {
		for _, s := range g.Senders {
			if s.ID == "" {
				continue
			}
			s.GroupID = g.ID
			s.Company = g.Company
			out = append(out, s)
		}
	}
	return out
}
