package llm

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Answer is the normalized result of one pipeline call: the parsed
// provider output plus the computed price and model identifier
type Answer map[string]interface{}

var pythonLiterals = map[*regexp.Regexp]string{
	regexp.MustCompile(`\bTrue\b`):  "true",
	regexp.MustCompile(`\bFalse\b`): "false",
	regexp.MustCompile(`\bNone\b`):  "null",
}

// Normalize turns raw provider text into a well-formed answer map.
// Strict JSON first, then a pass replacing Python literal tokens that
// leak from some providers, then a fenced-block strip; if nothing
// parses, the stripped text is wrapped as {"answer": text}. It never
// fails on malformed output.
func Normalize(raw string, coins float64, modelName string) Answer {
	answer := parseLoose(raw)
	if answer == nil {
		stripped := StripFences(raw)
		answer = parseLoose(stripped)
		if answer == nil {
			answer = Answer{"answer": stripped}
		}
	}

	answer["coins"] = coins
	answer["model"] = modelName
	return answer
}

func parseLoose(text string) Answer {
	text = strings.TrimSpace(text)

	var answer Answer
	if err := json.Unmarshal([]byte(text), &answer); err == nil && answer != nil {
		return answer
	}

	fixed := text
	for pattern, replacement := range pythonLiterals {
		fixed = pattern.ReplaceAllString(fixed, replacement)
	}
	// Python dict output also tends to use single quotes
	if strings.HasPrefix(fixed, "{'") || strings.HasPrefix(fixed, "{ '") {
		fixed = strings.ReplaceAll(fixed, "'", `"`)
	}

	if err := json.Unmarshal([]byte(fixed), &answer); err == nil && answer != nil {
		return answer
	}
	return nil
}

var fencePattern = regexp.MustCompile("(?s)^```[a-zA-Z]*\\n?(.*?)\\n?```$")

// StripFences removes a surrounding markdown code fence, if any
func StripFences(text string) string {
	text = strings.TrimSpace(text)
	if match := fencePattern.FindStringSubmatch(text); match != nil {
		return strings.TrimSpace(match[1])
	}
	return text
}
