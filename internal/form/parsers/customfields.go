package parsers

import (
	jsonpatch "github.com/evanphx/json-patch/v5"

	"github.com/bytedance/sonic"

	"github.com/Formflow-core-poc-v1/server/internal/form/model"
	logx "github.com/Formflow-core-poc-v1/server/pkg/logger"
)

// keyValuePair is the wire shape tools use for prefilled parameters.
type keyValuePair struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// ParseCustomFieldOptions extracts the arbitrary field list for the custom
// fields form. The tool's {key,value} parameter pairs are folded into a plain
// mapping and merged over the field defaults, so the form sees one prefilled
// value per key with tool-supplied values winning.
func ParseCustomFieldOptions(raw string) (bundle model.CustomFieldOptions) {
	defer recoverEmpty("custom_fields_parser", raw)

	doc, ok := decodePayload(raw)
	if !ok {
		return model.CustomFieldOptions{}
	}

	var payload struct {
		Fields     []model.CustomField `json:"fields"`
		Parameters []keyValuePair      `json:"parameters"`
	}
	if err := sonic.Unmarshal(doc, &payload); err != nil {
		lg := logx.Component("custom_fields_parser")
		lg.Debug().Err(err).Msg("payload did not match custom fields shape")
		return model.CustomFieldOptions{}
	}

	return model.CustomFieldOptions{
		Fields:    payload.Fields,
		Prefilled: mergePrefilled(payload.Fields, payload.Parameters),
	}
}

// mergePrefilled builds the default document from field defaults and applies
// the folded parameter pairs on top as a JSON merge patch.
func mergePrefilled(fields []model.CustomField, params []keyValuePair) map[string]string {
	defaults := make(map[string]string)
	for _, f := range fields {
		if f.Key != "" && f.Default != "" {
			defaults[f.Key] = f.Default
		}
	}

	folded := make(map[string]string, len(params))
	for _, p := range params {
		if p.Key != "" {
			folded[p.Key] = p.Value
		}
	}

	if len(folded) == 0 {
		if len(defaults) == 0 {
			return nil
		}
		return defaults
	}
	if len(defaults) == 0 {
		return folded
	}

	base, err := sonic.Marshal(defaults)
	if err != nil {
		return folded
	}
	patch, err := sonic.Marshal(folded)
	if err != nil {
		return defaults
	}
	merged, err := jsonpatch.MergePatch(base, patch)
	if err != nil {
		lg := logx.Component("custom_fields_parser")
		lg.Warn().Err(err).Msg("merge patch failed, using tool parameters only")
		return folded
	}

	var out map[string]string
	if err := sonic.Unmarshal(merged, &out); err != nil {
		return folded
	}
	return out
}
