package wizard

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Interview asks each question on w and reads answers from br. Single-line
// answers end at the newline; multiline answers end at an empty line or EOF.
// Questions already present in answers are skipped. Empty answers are
// omitted from the returned map. Reuse one br across calls on the same input.
func Interview(br *bufio.Reader, w io.Writer, questions []Question, answers map[string]string) (map[string]string, error) {
	out := make(map[string]string, len(questions))
	for k, v := range answers {
		out[k] = v
	}

	eof := false
	for _, q := range questions {
		if _, done := out[q.ID]; done {
			continue
		}
		if eof {
			break
		}

		fmt.Fprintf(w, "\n[%s] %s\n", q.Category, q.Question)
		if q.Placeholder != "" {
			fmt.Fprintf(w, "  e.g. %s\n", q.Placeholder)
		}
		if q.Multiline {
			fmt.Fprintln(w, "  (finish with an empty line)")
		}

		var lines []string
		for {
			fmt.Fprint(w, "> ")
			line, err := br.ReadString('\n')
			if err != nil && !errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("failed to read answer: %w", err)
			}
			line = strings.TrimRight(line, "\r\n")
			if errors.Is(err, io.EOF) {
				eof = true
				if line != "" {
					lines = append(lines, line)
				}
				break
			}
			if !q.Multiline {
				lines = append(lines, line)
				break
			}
			if strings.TrimSpace(line) == "" {
				break
			}
			lines = append(lines, line)
		}

		if answer := strings.TrimSpace(strings.Join(lines, "\n")); answer != "" {
			out[q.ID] = answer
		}
	}
	return out, nil
}

// LoadAnswers reads a YAML mapping of question id to answer.
func LoadAnswers(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read answers: %w", err)
	}
	var answers map[string]string
	if err := yaml.Unmarshal(data, &answers); err != nil {
		return nil, fmt.Errorf("failed to parse answers %s: %w", path, err)
	}
	if answers == nil {
		answers = map[string]string{}
	}
	for k, v := range answers {
		answers[k] = strings.TrimSpace(v)
	}
	return answers, nil
}

// InitialQuestions returns the questions answered before refinement.
func InitialQuestions() []Question {
	var out []Question
	for _, q := range DefaultQuestions() {
		if isInitial(q.ID) {
			out = append(out, q)
		}
	}
	return out
}
