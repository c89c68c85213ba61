package questions

import (
	"context"
	"embed"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"peerprep/interview/internal/config"
	"peerprep/interview/internal/models"
	"peerprep/interview/internal/taskqueue"
)

//go:embed templates/*.yaml
var templateFS embed.FS

// Generator produces AI questions; satisfied by the task queue pipeline.
type Generator interface {
	GenerateQuestions(ctx context.Context, role, resume string, count int) ([]taskqueue.GeneratedQuestion, error)
}

type roleTemplate struct {
	Text       string `yaml:"text"`
	Difficulty string `yaml:"difficulty"`
	Category   string `yaml:"category"`
}

// Service assembles a bounded, calibrated question set from caller-supplied
// custom questions, role templates, and AI-generated questions.
type Service struct {
	generator Generator
	cfg       config.QuestionConfig
	logger    *zap.Logger
	templates map[string][]roleTemplate
}

func NewService(generator Generator, cfg config.QuestionConfig, logger *zap.Logger) (*Service, error) {
	data, err := templateFS.ReadFile("templates/roles.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read role templates: %w", err)
	}
	var parsed struct {
		Roles map[string][]roleTemplate `yaml:"roles"`
	}
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse role templates: %w", err)
	}
	return &Service{
		generator: generator,
		cfg:       cfg,
		logger:    logger,
		templates: parsed.Roles,
	}, nil
}

// BuildQuestionSet returns exactly `requested` questions (clamped to the
// configured bounds; zero means the default count). Custom questions come
// first; the remainder mixes role templates with AI-generated questions,
// favoring templates. Generation failure falls back to the default pool, so
// this never fails the interview start.
func (s *Service) BuildQuestionSet(ctx context.Context, role, resumeText string, requested int, custom []models.Question) []models.Question {
	count := s.clampCount(requested)

	result := make([]models.Question, 0, count)
	for _, q := range custom {
		q.IsCustom = true
		result = append(result, s.Calibrate(q))
		if len(result) == count {
			return result
		}
	}

	remaining := count - len(result)
	templates := s.roleTemplates(role)
	templateTarget := (remaining + 1) / 2 // favor templates on odd splits
	if templateTarget > len(templates) {
		templateTarget = len(templates)
	}
	for _, tmpl := range templates[:templateTarget] {
		result = append(result, s.Calibrate(models.Question{
			Text:       tmpl.Text,
			Difficulty: tmpl.Difficulty,
			Category:   tmpl.Category,
		}))
	}

	if need := count - len(result); need > 0 {
		generated, err := s.generator.GenerateQuestions(ctx, role, resumeText, need)
		if err != nil {
			s.logger.Warn("question generation failed, padding from defaults",
				zap.String("role", role), zap.Error(err))
		}
		for _, g := range generated {
			if len(result) == count {
				break
			}
			result = append(result, s.Calibrate(models.Question{
				Text:       g.Text,
				Difficulty: g.Difficulty,
				Category:   g.Category,
			}))
		}
	}

	// Pad from the shuffled default pool when generation came up short.
	for _, q := range DefaultQuestions(time.Now().UnixNano()) {
		if len(result) == count {
			break
		}
		if containsText(result, q.Text) {
			continue
		}
		result = append(result, s.Calibrate(q))
	}

	return result
}

// FallbackSet is the generation-free question set used when the whole build
// cannot run: the shuffled defaults, sized to exactly the requested count.
// Counts beyond the pool cycle it; every entry still gets its own id.
func (s *Service) FallbackSet(requested int) []models.Question {
	count := s.clampCount(requested)
	pool := DefaultQuestions(time.Now().UnixNano())
	result := make([]models.Question, 0, count)
	for i := 0; len(result) < count; i++ {
		result = append(result, s.Calibrate(pool[i%len(pool)]))
	}
	return result
}

// Calibrate fills in everything a question needs downstream: an id, a
// normalized difficulty, a default time limit, and a difficulty-derived
// weight for scoring.
func (s *Service) Calibrate(q models.Question) models.Question {
	if q.ID == "" {
		q.ID = uuid.New().String()
	}
	q.Difficulty = strings.ToLower(strings.TrimSpace(q.Difficulty))
	if _, ok := s.cfg.DefaultTimeLimits[q.Difficulty]; !ok {
		q.Difficulty = config.DifficultyMedium
	}
	if q.TimeLimitSec == 0 {
		q.TimeLimitSec = s.cfg.DefaultTimeLimits[q.Difficulty]
	}
	if q.Weight == 0 {
		q.Weight = s.cfg.DifficultyWeights[q.Difficulty]
	}
	if q.Category == "" {
		q.Category = "general"
	}
	return q
}

func (s *Service) clampCount(requested int) int {
	if requested <= 0 {
		return s.cfg.DefaultQuestionCount
	}
	if requested < s.cfg.MinQuestionCount {
		return s.cfg.MinQuestionCount
	}
	if requested > s.cfg.MaxQuestionCount {
		return s.cfg.MaxQuestionCount
	}
	return requested
}

// roleTemplates returns a shuffled copy of the templates for a role, falling
// back to the general set for unknown roles.
func (s *Service) roleTemplates(role string) []roleTemplate {
	templates, ok := s.templates[strings.ToLower(strings.TrimSpace(role))]
	if !ok {
		templates = s.templates["general"]
	}
	shuffled := make([]roleTemplate, len(templates))
	copy(shuffled, templates)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled
}

func containsText(questions []models.Question, text string) bool {
	for _, q := range questions {
		if q.Text == text {
			return true
		}
	}
	return false
}
