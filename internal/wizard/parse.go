package wizard

import (
	"encoding/json"
	"strings"
)

const fence = "```"

// Documents are the files synthesized by the model. Both are empty when the
// response could not be parsed.
type Documents struct {
	Requirements string `json:"requirements"`
	Todo         string `json:"todo"`
}

// Empty reports whether neither document was produced.
func (d Documents) Empty() bool {
	return d.Requirements == "" && d.Todo == ""
}

// StripCodeFence trims text and, when it opens with a markdown code fence,
// returns the lines between that fence and the next one.
func StripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, fence) {
		return text
	}

	lines := strings.Split(text, "\n")
	var body []string
	for _, line := range lines[1:] {
		if strings.HasPrefix(line, fence) {
			break
		}
		body = append(body, line)
	}
	return strings.Join(body, "\n")
}

// ParseRefinedQuestions extracts questions from a model response. Elements
// without an id and question are dropped. When nothing usable remains the
// non-initial default questions are returned.
func ParseRefinedQuestions(text string) []Question {
	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(StripCodeFence(text)), &raw); err != nil {
		return RemainingQuestions()
	}

	var out []Question
	for _, elem := range raw {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(elem, &obj); err != nil {
			continue
		}
		q := Question{Category: "General", Multiline: true}
		if !idField(obj, &q.ID) || !stringField(obj, "question", &q.Question) {
			continue
		}
		stringField(obj, "category", &q.Category)
		stringField(obj, "placeholder", &q.Placeholder)
		if v, ok := obj["multiline"]; ok {
			_ = json.Unmarshal(v, &q.Multiline)
		}
		out = append(out, q)
	}

	if len(out) == 0 {
		return RemainingQuestions()
	}
	return out
}

// stringField decodes obj[key] into dst when it is a JSON string.
func stringField(obj map[string]json.RawMessage, key string, dst *string) bool {
	v, ok := obj[key]
	if !ok {
		return false
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return false
	}
	*dst = s
	return true
}

// idField reads obj["id"] as a string, rendering a numeric id in its JSON
// form.
func idField(obj map[string]json.RawMessage, dst *string) bool {
	if stringField(obj, "id", dst) {
		return true
	}
	v, ok := obj["id"]
	if !ok {
		return false
	}
	var n json.Number
	if err := json.Unmarshal(v, &n); err != nil || n == "" {
		return false
	}
	*dst = n.String()
	return true
}

// ParseSynthesizedDocs extracts requirements and todo from a model response.
func ParseSynthesizedDocs(text string) Documents {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(StripCodeFence(text)), &obj); err != nil {
		return Documents{}
	}

	var docs Documents
	stringField(obj, "requirements", &docs.Requirements)
	stringField(obj, "todo", &docs.Todo)
	return docs
}
