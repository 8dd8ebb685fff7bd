package form

import (
	"fmt"

	"github.com/Formflow-core-poc-v1/server/internal/form/model"
)

// SubmittedDataWithLabels resolves the ids in a raw submission back to
// human-readable labels using the option bundle captured when the form opened.
// Ids with no matching option fall back to the raw id string, so the
// synthesized message never shows an empty field. The raw submission payload
// itself is left untouched on the record.
func SubmittedDataWithLabels(rec *model.FormRecord, submitted map[string]any) SubmittedValues {
	values := make(SubmittedValues, len(submitted))
	for k, v := range submitted {
		values[k] = fmt.Sprintf("%v", v)
	}

	switch opts := rec.Options.(type) {
	case model.CrawlOptions:
		if id, ok := values["website_id"]; ok {
			delete(values, "website_id")
			values["website"] = labelWebsite(opts.Websites, id)
		}
	case model.OutreachOptions:
		if id, ok := values["campaign_id"]; ok {
			delete(values, "campaign_id")
			values["campaign"] = labelCampaign(opts.Campaigns, id)
		}
		if id, ok := values["template_id"]; ok {
			delete(values, "template_id")
			values["template"] = labelTemplate(opts.Templates, id)
		}
		if id, ok := values["sender_id"]; ok {
			delete(values, "sender_id")
			values["sender"] = labelSender(opts.Senders, id)
		}
	case model.CustomFieldOptions:
		relabelCustomFields(opts.Fields, values)
	case model.KeywordOptions:
		if id, ok := values["source_id"]; ok {
			delete(values, "source_id")
			values["source"] = labelKeywordSource(opts.Sources, id)
		}
	}

	return values
}

func labelWebsite(websites []model.Website, id string) string {
	for _, w := range websites {
		if w.ID == id {
			if w.URL != "" {
				return fmt.Sprintf("%s (%s)", w.Name, w.URL)
			}
			return w.Name
		}
	}
	return id
}

func labelCampaign(campaigns []model.Campaign, id string) string {
	for _, c := range campaigns {
		if c.ID == id {
			return c.Name
		}
	}
	return id
}

func labelTemplate(templates []model.Template, id string) string {
	for _, t := range templates {
		if t.ID == id {
			return t.Name
		}
	}
	return id
}

func labelSender(senders []model.Sender, id string) string {
	for _, s := range senders {
		if s.ID == id {
			return fmt.Sprintf("%s (%s) at %s", s.Name, s.Occupation, s.Company)
		}
	}
	return id
}

func labelKeywordSource(sources []model.KeywordSource, id string) string {
	for _, s := range sources {
		if s.ID == id {
			return s.Name
		}
	}
	return id
}

// relabelCustomFields swaps raw field keys for their configured labels.
func relabelCustomFields(fields []model.CustomField, values SubmittedValues) {
	for _, f := range fields {
		if f.Key == "" || f.Label == "" || f.Key == f.Label {
			continue
		}
		if v, ok := values[f.Key]; ok {
			delete(values, f.Key)
			values[f.Label] = v
		}
	}
}
