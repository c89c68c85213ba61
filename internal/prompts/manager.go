package prompts

import (
	"embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// embeds all .yaml files in the templates folder into Go program at compile time
//
//go:embed templates/*.yaml
var templateFS embed.FS

// Task names, matching the template file names.
const (
	TaskGenerateQuestions = "generate_questions"
	TaskGradeAnswer       = "grade_answer"
	TaskSummary           = "summary"
)

type Manager struct {
	prompts map[string]string // task -> complete prompt template
}

// loaded prompt template
type promptTemplate struct {
	BasePrompt string `yaml:"base_prompt"`
	Template   string `yaml:"template"`
}

// NewManager creates a new prompt manager and loads templates.
func NewManager() (*Manager, error) {
	m := &Manager{prompts: make(map[string]string)}
	if err := m.loadPrompts(); err != nil {
		return nil, fmt.Errorf("failed to load prompt templates: %w", err)
	}
	return m, nil
}

// Build renders the template for a task by replacing {{.Key}} placeholders.
// Simple string replacement instead of template execution.
func (m *Manager) Build(task string, vars map[string]string) (string, error) {
	template, exists := m.prompts[task]
	if !exists {
		return "", fmt.Errorf("template not found for task: %s", task)
	}
	result := template
	for key, value := range vars {
		result = strings.ReplaceAll(result, "{{."+key+"}}", value)
	}
	return result, nil
}

// loadPrompts loads all YAML prompt files from the embedded filesystem.
func (m *Manager) loadPrompts() error {
	entries, err := templateFS.ReadDir("templates")
	if err != nil {
		return fmt.Errorf("failed to read templates directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		data, err := templateFS.ReadFile("templates/" + entry.Name())
		if err != nil {
			return fmt.Errorf("failed to read template file %s: %w", entry.Name(), err)
		}

		var tmpl promptTemplate
		if err := yaml.Unmarshal(data, &tmpl); err != nil {
			return fmt.Errorf("failed to parse template file %s: %w", entry.Name(), err)
		}

		var fullPrompt strings.Builder
		if tmpl.BasePrompt != "" {
			fullPrompt.WriteString(tmpl.BasePrompt)
			fullPrompt.WriteString("\n\n")
		}
		fullPrompt.WriteString(tmpl.Template)

		name := strings.TrimSuffix(entry.Name(), ".yaml")
		m.prompts[name] = fullPrompt.String()
	}

	return nil
}
