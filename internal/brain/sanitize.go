package brain

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// codeFencePattern matches a ```json ... ``` block some models wrap replies in.
var codeFencePattern = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*(.*?)\\s*```$")

// extractJSON returns the reply as a JSON object, or false if it is not one.
// A single surrounding code fence is tolerated; nothing else is.
func extractJSON(reply string) (gjson.Result, bool) {
	s := strings.TrimSpace(reply)
	if m := codeFencePattern.FindStringSubmatch(s); m != nil {
		s = m[1]
	}
	if !gjson.Valid(s) {
		return gjson.Result{}, false
	}
	obj := gjson.Parse(s)
	if !obj.IsObject() {
		return gjson.Result{}, false
	}
	return obj, true
}

// idField reads an id the model may have written as a number or a string.
// Missing, null, zero and non-integer values are absent.
func idField(r gjson.Result) *int64 {
	var raw string
	switch r.Type {
	case gjson.Number:
		raw = r.Raw
	case gjson.String:
		raw = strings.TrimSpace(r.Str)
	default:
		return nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return nil
	}
	return &v
}

// clip cuts s to at most n runes without an ellipsis.
func clip(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
