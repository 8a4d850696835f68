package wizard

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/adrg/frontmatter"
)

// AgentFile is the conventional name of the agent prompt file.
const AgentFile = "requirements-agent.md"

// FallbackAgentPrompt is used when no agent prompt file is available.
const FallbackAgentPrompt = `You are an assistant helping users define requirements for their PCB project.
When refining questions, analyze the initial answers and generate relevant follow-up questions.
Return refined questions as a JSON array.
When synthesizing requirements, create a requirements.md and todo.md document.
Return as JSON with 'requirements' and 'todo' fields containing the document content.
Be specific, technical, and avoid superfluous language.`

// AgentMeta is the optional front matter of an agent prompt file.
type AgentMeta struct {
	Name  string `yaml:"name" toml:"name" json:"name"`
	Model string `yaml:"model" toml:"model" json:"model"`
}

// Agent is a loaded agent prompt.
type Agent struct {
	Meta   AgentMeta
	Prompt string
}

// FallbackAgent returns the built-in agent.
func FallbackAgent() Agent {
	return Agent{Prompt: FallbackAgentPrompt}
}

// LoadAgent reads an agent prompt file and strips its front matter. A
// missing file yields the built-in agent.
func LoadAgent(path string) (Agent, error) {
	if path == "" {
		return FallbackAgent(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FallbackAgent(), nil
		}
		return Agent{}, fmt.Errorf("failed to read agent prompt: %w", err)
	}

	var meta AgentMeta
	body, err := frontmatter.Parse(bytes.NewReader(data), &meta)
	if err != nil {
		return Agent{}, fmt.Errorf("failed to parse agent prompt front matter: %w", err)
	}

	prompt := strings.TrimSpace(string(body))
	if prompt == "" {
		prompt = FallbackAgentPrompt
	}
	return Agent{Meta: meta, Prompt: prompt}, nil
}
