package interview

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"peerprep/interview/internal/audit"
	"peerprep/interview/internal/config"
	"peerprep/interview/internal/extract"
	"peerprep/interview/internal/metrics"
	"peerprep/interview/internal/models"
	"peerprep/interview/internal/repositories"
	"peerprep/interview/internal/scoring"
	"peerprep/interview/internal/taskqueue"
)

const (
	fallbackFeedback = "Automated grading was unavailable; a neutral fallback score was applied."
	fallbackSummary  = "The interview completed, but the automated summary was unavailable. Review the per-question scores and answers directly."
)

// QuestionBuilder assembles the calibrated question set for a new session.
type QuestionBuilder interface {
	BuildQuestionSet(ctx context.Context, role, resumeText string, requested int, custom []models.Question) []models.Question
	FallbackSet(requested int) []models.Question
}

// Grader grades one answer; satisfied by the task queue pipeline.
type Grader interface {
	GradeAnswer(ctx context.Context, question models.Question, answer string, scoring config.ScoringConfig) (*taskqueue.GradeResult, error)
}

// Summarizer writes the final interview summary.
type Summarizer interface {
	Summarize(ctx context.Context, questions []models.Question) (string, error)
}

// Service drives the interview session lifecycle: start, answer submission
// and progression, completion, manual score adjustment, and soft deletion.
// Every transition touching both the candidate and the session runs in one
// transaction.
type Service struct {
	store      *repositories.Store
	questions  QuestionBuilder
	grader     Grader
	summarizer Summarizer
	extractor  extract.TextExtractor
	audit      audit.Recorder
	scoring    config.ScoringConfig
	logger     *zap.Logger
}

func NewService(
	store *repositories.Store,
	questions QuestionBuilder,
	grader Grader,
	summarizer Summarizer,
	extractor extract.TextExtractor,
	auditor audit.Recorder,
	scoringCfg config.ScoringConfig,
	logger *zap.Logger,
) *Service {
	return &Service{
		store:      store,
		questions:  questions,
		grader:     grader,
		summarizer: summarizer,
		extractor:  extractor,
		audit:      auditor,
		scoring:    scoringCfg,
		logger:     logger,
	}
}

// StartRequest carries everything needed to open an interview.
type StartRequest struct {
	Name        string
	Email       string
	Phone       string
	Role        string
	GDPRConsent bool

	ResumeText     string
	ResumeFile     []byte
	ResumeFileType string

	QuestionCount   int
	CustomQuestions []models.Question
}

// SessionView is the caller-facing slice of a session.
type SessionView struct {
	SessionID            string            `json:"sessionId"`
	Questions            []models.Question `json:"questions"`
	CurrentQuestionIndex int               `json:"currentQuestionIndex"`
}

type StartResult struct {
	Candidate *models.Candidate `json:"candidate"`
	Session   SessionView       `json:"session"`
}

// NextQuestion is returned while questions remain.
type NextQuestion struct {
	Index    int             `json:"index"`
	Question models.Question `json:"question"`
}

// FinalResult is returned after the last answer.
type FinalResult struct {
	FinalScore    int               `json:"finalScore"`
	WeightedScore int               `json:"weightedScore"`
	Summary       string            `json:"summary"`
	Questions     []models.Question `json:"questions"`
}

// SubmitResult holds exactly one of Next or Final.
type SubmitResult struct {
	Next  *NextQuestion `json:"nextQuestion,omitempty"`
	Final *FinalResult  `json:"final,omitempty"`
}

type AdjustResult struct {
	Question             models.Question `json:"question"`
	SessionScore         int             `json:"sessionScore"`
	SessionWeightedScore int             `json:"sessionWeightedScore"`
}

// StartInterview validates the candidate's identity, rejects a duplicate
// active session for the email, and creates the candidate plus session
// atomically. Question generation failure inside the transaction degrades to
// the shuffled default set rather than failing the start.
func (s *Service) StartInterview(ctx context.Context, req StartRequest) (*StartResult, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, validationError("missing_name", "Name is required")
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, validationError("invalid_email", "A valid email is required")
	}
	if strings.TrimSpace(req.Role) == "" {
		return nil, validationError("missing_role", "Role is required")
	}

	resumeText := req.ResumeText
	if len(req.ResumeFile) > 0 {
		text, err := s.extractor.ExtractText(req.ResumeFile, req.ResumeFileType)
		if err != nil {
			return nil, &ServiceError{
				Kind: KindValidation, Code: "resume_extraction_failed",
				Message: "Could not extract text from the resume", Err: err,
			}
		}
		resumeText = text
	}

	// Known gap: this check is a read-then-write race with no unique index
	// behind it; two concurrent starts for the same email can both pass.
	if _, err := s.store.Candidates.FindActiveByEmail(ctx, email); err == nil {
		return nil, conflictError("active_session_exists", "An interview for this email is already pending or in progress")
	} else if !errors.Is(err, repositories.ErrCandidateNotFound) {
		return nil, transactionError("failed to check for an active session", err)
	}

	candidate := &models.Candidate{
		CandidateID: uuid.New().String(),
		Name:        strings.TrimSpace(req.Name),
		Email:       email,
		Phone:       strings.TrimSpace(req.Phone),
		Role:        strings.TrimSpace(req.Role),
		Status:      models.CandidateStatusInProgress,
		GDPRConsent: req.GDPRConsent,
	}

	var session *models.InterviewSession
	err := s.store.Atomically(ctx, func(tx *repositories.Store) error {
		if err := tx.Candidates.Create(ctx, candidate); err != nil {
			return err
		}
		questionSet := s.questions.BuildQuestionSet(ctx, candidate.Role, resumeText, req.QuestionCount, req.CustomQuestions)
		if len(questionSet) == 0 {
			questionSet = s.questions.FallbackSet(req.QuestionCount)
		}
		session = &models.InterviewSession{
			SessionID:   uuid.New().String(),
			CandidateID: candidate.CandidateID,
			Status:      models.SessionStatusInProgress,
			Questions:   datatypes.JSONSlice[models.Question](questionSet),
		}
		return tx.Sessions.Create(ctx, session)
	})
	if err != nil {
		return nil, transactionError("failed to create interview", err)
	}

	s.audit.Record(ctx, "interview.started", "interview_session", session.SessionID, map[string]any{
		"candidateId":   candidate.CandidateID,
		"role":          candidate.Role,
		"questionCount": len(session.Questions),
	})
	s.logger.Info("interview started",
		zap.String("sessionId", session.SessionID),
		zap.String("candidateId", candidate.CandidateID),
		zap.Int("questions", len(session.Questions)))

	return &StartResult{
		Candidate: candidate,
		Session: SessionView{
			SessionID:            session.SessionID,
			Questions:            session.Questions,
			CurrentQuestionIndex: session.CurrentQuestionIndex,
		},
	}, nil
}

// SubmitAnswer records the answer for the current question, grades it through
// the task queue (with a fixed fallback if grading fails), and either advances
// to the next question or completes the interview.
func (s *Service) SubmitAnswer(ctx context.Context, sessionID, answerText string) (*SubmitResult, error) {
	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	// Completed, abandoned and expired are terminal; answers must not pull a
	// session back out of them.
	if session.Status != models.SessionStatusPending && session.Status != models.SessionStatusInProgress {
		return nil, conflictError("session_not_active", "This interview session is no longer accepting answers")
	}

	candidate, err := s.store.Candidates.GetByID(ctx, session.CandidateID)
	if err != nil {
		return nil, notFoundError("candidate_not_found", "Candidate for this session was not found", err)
	}
	if candidate.Status == models.CandidateStatusCompleted {
		return nil, conflictError("interview_completed", "This interview has already been completed")
	}

	idx := session.CurrentQuestionIndex
	if idx >= len(session.Questions) {
		return nil, conflictError("no_question_pending", "No question is awaiting an answer")
	}

	question := session.Questions[idx]
	question.Answer = answerText
	s.gradeAnswer(ctx, &question, answerText)
	session.Questions[idx] = question
	session.CurrentQuestionIndex = idx + 1

	if session.CurrentQuestionIndex < len(session.Questions) {
		if err := s.store.Sessions.Save(ctx, session); err != nil {
			return nil, transactionError("failed to save answer", err)
		}
		return &SubmitResult{Next: &NextQuestion{
			Index:    session.CurrentQuestionIndex,
			Question: session.Questions[session.CurrentQuestionIndex],
		}}, nil
	}

	return s.complete(ctx, session)
}

// gradeAnswer mutates the question in place with the graded or fallback
// score. Empty answers are recorded but not graded.
func (s *Service) gradeAnswer(ctx context.Context, question *models.Question, answerText string) {
	trimmed := strings.TrimSpace(answerText)
	if trimmed == "" {
		return
	}
	question.Answered = true

	result, err := s.grader.GradeAnswer(ctx, *question, answerText, s.scoring)
	if err != nil {
		metrics.IncFallback(taskqueue.KindGradeAnswer)
		s.logger.Warn("grading failed, applying fallback score",
			zap.String("questionId", question.ID), zap.Error(err))
		// The fallback is fixed; partial credit only shapes real grades.
		question.Score = scoring.Clamp(s.scoring.FallbackScore, s.scoring)
		question.Feedback = fallbackFeedback
		return
	}

	// Measure the same text the grader saw, not the raw submission.
	graded := taskqueue.SanitizeText(trimmed, s.scoring.MaxAnswerLength)
	score := scoring.PartialCredit(result.Score, len([]rune(graded)), s.scoring)
	question.Score = scoring.Clamp(score, s.scoring)
	question.Feedback = result.Feedback
}

// complete flips the candidate to completed in its own transaction, then
// computes the final aggregates and summary and persists them.
func (s *Service) complete(ctx context.Context, session *models.InterviewSession) (*SubmitResult, error) {
	err := s.store.Atomically(ctx, func(tx *repositories.Store) error {
		if err := tx.Candidates.UpdateStatus(ctx, session.CandidateID, models.CandidateStatusCompleted); err != nil {
			return err
		}
		session.Status = models.SessionStatusCompleted
		return tx.Sessions.Save(ctx, session)
	})
	if err != nil {
		return nil, transactionError("failed to complete interview", err)
	}

	breakdown := scoring.Aggregate(session.Questions, s.scoring)

	summary, err := s.summarizer.Summarize(ctx, session.Questions)
	if err != nil {
		metrics.IncFallback(taskqueue.KindGenerateSummary)
		s.logger.Warn("summary generation failed, applying fallback",
			zap.String("sessionId", session.SessionID), zap.Error(err))
		summary = fallbackSummary
	}

	session.Score = breakdown.AverageScore
	session.WeightedScore = breakdown.WeightedScore
	session.ScoreBreakdown = datatypes.NewJSONType(breakdown)
	session.Summary = summary
	if err := s.store.Sessions.Save(ctx, session); err != nil {
		return nil, transactionError("failed to persist final score", err)
	}

	s.audit.Record(ctx, "interview.completed", "interview_session", session.SessionID, map[string]any{
		"score":         session.Score,
		"weightedScore": session.WeightedScore,
	})

	return &SubmitResult{Final: &FinalResult{
		FinalScore:    session.Score,
		WeightedScore: session.WeightedScore,
		Summary:       session.Summary,
		Questions:     session.Questions,
	}}, nil
}

// Finalize administratively closes a session regardless of question
// progress. Idempotent; scores are not recomputed.
func (s *Service) Finalize(ctx context.Context, sessionID string) (*models.InterviewSession, error) {
	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	err = s.store.Atomically(ctx, func(tx *repositories.Store) error {
		candidate, err := tx.Candidates.GetByID(ctx, session.CandidateID)
		if err != nil {
			return err
		}
		if candidate.Status != models.CandidateStatusCompleted {
			if err := tx.Candidates.UpdateStatus(ctx, session.CandidateID, models.CandidateStatusCompleted); err != nil {
				return err
			}
		}
		if session.Status != models.SessionStatusCompleted {
			session.Status = models.SessionStatusCompleted
			return tx.Sessions.Save(ctx, session)
		}
		return nil
	})
	if err != nil {
		return nil, transactionError("failed to finalize interview", err)
	}

	s.audit.Record(ctx, "interview.finalized", "interview_session", session.SessionID, nil)
	return session, nil
}

// DeleteSession soft-deletes the session and cascades to its candidate,
// atomically. Nothing is ever hard-deleted here.
func (s *Service) DeleteSession(ctx context.Context, sessionID string) error {
	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return err
	}

	err = s.store.Atomically(ctx, func(tx *repositories.Store) error {
		if err := tx.Sessions.SoftDelete(ctx, session.SessionID); err != nil {
			return err
		}
		err := tx.Candidates.SoftDelete(ctx, session.CandidateID)
		if errors.Is(err, repositories.ErrCandidateNotFound) {
			// Candidate already gone; the cascade is satisfied.
			return nil
		}
		return err
	})
	if err != nil {
		return transactionError("failed to delete interview", err)
	}

	s.audit.Record(ctx, "interview.deleted", "interview_session", session.SessionID, map[string]any{
		"candidateId": session.CandidateID,
	})
	return nil
}

// AdjustQuestionScore applies a manual override: the new score is clamped,
// an Adjustment is appended to the question's history, the live score is
// overwritten, and the session aggregates are fully recomputed.
func (s *Service) AdjustQuestionScore(ctx context.Context, sessionID, questionID string, newScore int, reason, actor string) (*AdjustResult, error) {
	if strings.TrimSpace(actor) == "" {
		return nil, validationError("missing_actor", "An adjusting actor is required")
	}
	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i, q := range session.Questions {
		if q.ID == questionID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, notFoundError("question_not_found", "Question not found in this session", nil)
	}

	question := session.Questions[idx]
	adjustment := scoring.Adjust(&question, newScore, reason, actor, s.scoring)
	question.Adjustments = append(question.Adjustments, adjustment)
	question.Score = adjustment.AdjustedScore
	question.Answered = true
	session.Questions[idx] = question

	breakdown := scoring.Aggregate(session.Questions, s.scoring)
	session.Score = breakdown.AverageScore
	session.WeightedScore = breakdown.WeightedScore
	session.ScoreBreakdown = datatypes.NewJSONType(breakdown)

	if err := s.store.Sessions.Save(ctx, session); err != nil {
		return nil, transactionError("failed to save adjustment", err)
	}

	s.audit.Record(ctx, "interview.score_adjusted", "interview_session", session.SessionID, map[string]any{
		"questionId": questionID,
		"from":       adjustment.OriginalScore,
		"to":         adjustment.AdjustedScore,
		"reason":     reason,
		"actor":      actor,
	})

	return &AdjustResult{
		Question:             question,
		SessionScore:         session.Score,
		SessionWeightedScore: session.WeightedScore,
	}, nil
}

// loadSession validates the id and loads a live (not soft-deleted) session.
func (s *Service) loadSession(ctx context.Context, sessionID string) (*models.InterviewSession, error) {
	if _, err := uuid.Parse(sessionID); err != nil {
		return nil, validationError("invalid_session_id", "Session id is not a valid UUID")
	}
	session, err := s.store.Sessions.GetByID(ctx, sessionID)
	if errors.Is(err, repositories.ErrSessionNotFound) {
		return nil, notFoundError("session_not_found", "Interview session not found", err)
	}
	if err != nil {
		return nil, transactionError("failed to load session", err)
	}
	return session, nil
}
