package form

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/Formflow-core-poc-v1/server/internal/form/model"
)

// CancelledMessage is the fixed neutral message dispatched when the user
// declines a pending form.
const CancelledMessage = "The form was not submitted."

var (
	successMarkerRe = regexp.MustCompile(`(?i)"?(?:status|result)"?\s*[:=]\s*"?(?:ok|success)|succeeded|successfully`)
	errorMarkerRe   = regexp.MustCompile(`(?i)"?(?:status|result)"?\s*[:=]\s*"?(?:error|failed)|\berror\b|\bfailed\b`)
	operationIDRe   = regexp.MustCompile(`(?i)"?(?:operation_id|job_id|task_id)"?\s*[:=]\s*"?([0-9A-Za-z-]+)`)
	errorTextRe     = regexp.MustCompile(`(?i)"(?:error|message)"\s*:\s*"([^"]+)"`)
)

// SubmittedValues is the label-resolved view of a submission, used only for
// message synthesis. Raw ids stay on the record.
type SubmittedValues map[string]string

// SynthesizeSubmission renders the outbound chat message for a completed form
// episode: an echo of every supplied field using resolved labels, followed by
// a status line derived from the downstream tool response when one exists.
// Deterministic for identical inputs.
func SynthesizeSubmission(formType model.FormType, values SubmittedValues, toolResponse string) string {
	var b strings.Builder

	switch formType {
	case model.FormTypeCrawl:
		b.WriteString("I configured the crawl")
		if v, ok := values["website"]; ok {
			fmt.Fprintf(&b, " for %s", v)
		}
		b.WriteString(".")
		writeExtraValues(&b, values, "website")
	case model.FormTypeOutreach:
		b.WriteString("I set up the outreach campaign.")
		if v, ok := values["campaign"]; ok {
			fmt.Fprintf(&b, " Campaign: %s.", v)
		}
		if v, ok := values["template"]; ok {
			fmt.Fprintf(&b, " Template: %s.", v)
		}
		if v, ok := values["sender"]; ok {
			fmt.Fprintf(&b, " Sender: %s.", v)
		}
		writeExtraValues(&b, values, "campaign", "template", "sender")
	case model.FormTypeCustomFields:
		b.WriteString("I filled in the requested details.")
		writeExtraValues(&b, values)
	case model.FormTypeKeywords:
		b.WriteString("I picked the keyword source")
		if v, ok := values["source"]; ok {
			fmt.Fprintf(&b, ": %s", v)
		}
		b.WriteString(".")
		writeExtraValues(&b, values, "source")
	case model.FormTypeMarkdown:
		b.WriteString("I reviewed the document.")
		if v, ok := values["decision"]; ok {
			fmt.Fprintf(&b, " Decision: %s.", v)
		}
		writeExtraValues(&b, values, "decision")
	default:
		b.WriteString("I completed the form.")
		writeExtraValues(&b, values)
	}

	if toolResponse != "" {
		b.WriteString("\n")
		b.WriteString(StatusLine(toolResponse))
	}

	return b.String()
}

// writeExtraValues echoes every remaining field in key order so the message
// is stable across runs.
func writeExtraValues(b *strings.Builder, values SubmittedValues, consumed ...string) {
	skip := make(map[string]bool, len(consumed))
	for _, k := range consumed {
		skip[k] = true
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		if !skip[k] && values[k] != "" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(b, " %s: %s.", humanizeKey(k), values[k])
	}
}

func humanizeKey(k string) string {
	k = strings.ReplaceAll(k, "_", " ")
	if k == "" {
		return k
	}
	return strings.ToUpper(k[:1]) + k[1:]
}

// StatusLine pattern-matches a tool response for success or error markers
// and extracts any embedded operation identifier. Unrecognised shapes
// degrade to a generic completion line instead of failing.
func StatusLine(toolResponse string) string {
	opID := ""
	if m := operationIDRe.FindStringSubmatch(toolResponse); m != nil {
		opID = m[1]
	}

	switch {
	case errorMarkerRe.MatchString(toolResponse):
		line := "Status: Failed"
		if m := errorTextRe.FindStringSubmatch(toolResponse); m != nil {
			line += " (" + m[1] + ")"
		}
		if opID != "" {
			line += " [operation " + opID + "]"
		}
		return line
	case successMarkerRe.MatchString(toolResponse):
		line := "Status: Success"
		if opID != "" {
			line += " [operation " + opID + "]"
		}
		return line
	default:
		return "Status: Request completed"
	}
}
