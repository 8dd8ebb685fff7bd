package form

import (
	"fmt"
	"regexp"

	"github.com/Formflow-core-poc-v1/server/internal/form/model"
)

// requestIDRe matches the request token some tools embed in their output:
// the literal marker followed by a UUID-like run of hex-ish segments joined
// by dashes. The token must contain at least one dash so bare words after
// the marker are not mistaken for ids.
var requestIDRe = regexp.MustCompile(regexp.QuoteMeta(model.RequestIDMarker) + `([0-9A-Za-z]+(?:-[0-9A-Za-z]+)+)`)

// ResolveRequestID derives the stable identifier for one human-input episode.
// When the output carries an embedded request token the id is independent of
// the message, so history replays of the same invocation converge on the same
// episode. The fallback composite keeps distinct invocations apart. Pure
// function: same inputs, same id.
func ResolveRequestID(output, conversationID, messageID, toolName string) model.FormRequestID {
	if m := requestIDRe.FindStringSubmatch(output); m != nil {
		return model.FormRequestID(fmt.Sprintf("%s-%s", conversationID, m[1]))
	}
	function, _, _ := model.SplitToolName(toolName)
	return model.FormRequestID(fmt.Sprintf("%s-%s-%s", conversationID, messageID, function))
}
