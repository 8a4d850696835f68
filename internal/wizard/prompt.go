package wizard

import (
	"fmt"
	"strings"
)

// DefaultProjectName is used when the caller has no project name.
const DefaultProjectName = "PCB Project"

const refineInstructions = `Based on these answers, please refine the remaining questions to be more specific to this project.
Return a JSON array of refined questions. Each question should have:
- id: unique identifier
- category: category name
- question: the question text
- placeholder: optional placeholder text
- multiline: boolean for multiline input

Focus on making questions specific to what the user described. Include all the standard categories (%s) but tailor the questions to be relevant.
Respond with only the JSON array, no other text.`

const synthesizeInstructions = `Please synthesize this information into two documents:
1. requirements.md - A professional technical requirements document
2. todo.md - A task list for implementing the project

Return a JSON object with exactly two keys:
- "requirements": the full content of requirements.md
- "todo": the full content of todo.md

The documents should:
- Use only standard ASCII characters (no emojis)
- Be succinct and technical
- Sound professional, not AI-generated
- Include specific measurable requirements where answers provide them

Respond with only the JSON object, no other text.`

// Builder renders wizard prompts around an agent preamble.
type Builder struct {
	preamble string
}

// NewBuilder returns a Builder using agentPrompt as the preamble. An empty
// prompt selects the built-in one.
func NewBuilder(agentPrompt string) *Builder {
	if strings.TrimSpace(agentPrompt) == "" {
		agentPrompt = FallbackAgentPrompt
	}
	return &Builder{preamble: agentPrompt}
}

// RefinePrompt asks the model to tailor the remaining questions to the
// answers given for the initial ones. Other answers are ignored.
func (b *Builder) RefinePrompt(answers map[string]string) string {
	var qa []string
	for _, id := range InitialQuestionIDs {
		answer, ok := answers[id]
		if !ok {
			continue
		}
		q, _ := lookup(id)
		qa = append(qa, fmt.Sprintf("Q: %s\nA: %s", q.Question, answer))
	}

	var sb strings.Builder
	sb.WriteString(b.preamble)
	sb.WriteString("\n\n---\n\nThe user has provided these initial answers about their PCB project:\n\n")
	sb.WriteString(strings.Join(qa, "\n"))
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, refineInstructions, strings.Join(RefinedCategories, ", "))
	return sb.String()
}

// SynthesizePrompt asks the model for requirements.md and todo.md built
// from every non-blank answer, in question order.
func (b *Builder) SynthesizePrompt(questions []Question, answers map[string]string, projectName string) string {
	if projectName == "" {
		projectName = DefaultProjectName
	}

	var qa strings.Builder
	for _, q := range questions {
		answer := answers[q.ID]
		if strings.TrimSpace(answer) == "" {
			continue
		}
		fmt.Fprintf(&qa, "Category: %s\nQ: %s\nA: %s\n\n", q.Category, q.Question, answer)
	}

	var sb strings.Builder
	sb.WriteString(b.preamble)
	sb.WriteString("\n\n---\n\nProject Name: ")
	sb.WriteString(projectName)
	sb.WriteString("\n\nHere are all the questions and answers from the requirements wizard:\n\n")
	sb.WriteString(qa.String())
	sb.WriteString("\n\n")
	sb.WriteString(synthesizeInstructions)
	return sb.String()
}

// BuildRefinePrompt renders a refine prompt with the built-in preamble.
func BuildRefinePrompt(answers map[string]string) string {
	return NewBuilder("").RefinePrompt(answers)
}

// BuildSynthesizePrompt renders a synthesize prompt with the built-in
// preamble.
func BuildSynthesizePrompt(questions []Question, answers map[string]string, projectName string) string {
	return NewBuilder("").SynthesizePrompt(questions, answers, projectName)
}
