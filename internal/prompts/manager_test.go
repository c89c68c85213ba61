package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManagerLoadsAllTasks(t *testing.T) {
	m, err := NewManager()
	require.NoError(t, err)

	for _, task := range []string{TaskGenerateQuestions, TaskGradeAnswer, TaskSummary} {
		prompt, err := m.Build(task, nil)
		require.NoError(t, err, "task %s", task)
		assert.NotEmpty(t, prompt)
	}
}

func TestBuildSubstitutesVariables(t *testing.T) {
	m, err := NewManager()
	require.NoError(t, err)

	prompt, err := m.Build(TaskGradeAnswer, map[string]string{
		"Question": "What is a goroutine?",
		"Answer":   "A lightweight thread managed by the Go runtime.",
	})
	require.NoError(t, err)

	assert.Contains(t, prompt, "What is a goroutine?")
	assert.Contains(t, prompt, "lightweight thread")
	assert.NotContains(t, prompt, "{{.Question}}")
	assert.NotContains(t, prompt, "{{.Answer}}")
}

func TestBuildUnknownTask(t *testing.T) {
	m, err := NewManager()
	require.NoError(t, err)

	_, err = m.Build("no_such_task", nil)
	assert.Error(t, err)
}
