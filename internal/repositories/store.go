package repositories

import (
	"context"

	"gorm.io/gorm"

	"peerprep/interview/internal/models"
	"peerprep/interview/internal/secure"
)

// Store bundles the two aggregate repositories over one database handle so a
// multi-record transition can run in a single transaction.
type Store struct {
	DB         *gorm.DB
	Candidates *CandidateRepository
	Sessions   *SessionRepository
}

func NewStore(db *gorm.DB, cipher *secure.FieldCipher) *Store {
	return &Store{
		DB:         db,
		Candidates: &CandidateRepository{DB: db, Cipher: cipher},
		Sessions:   &SessionRepository{DB: db},
	}
}

// Atomically runs fn against transaction-scoped repositories. Any error from
// fn rolls the whole transaction back, leaving both aggregates untouched.
func (s *Store) Atomically(ctx context.Context, fn func(tx *Store) error) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx, s.Candidates.Cipher))
	})
}

// Migrate creates or updates the schema for every aggregate owned here.
func (s *Store) Migrate() error {
	return s.DB.AutoMigrate(&models.Candidate{}, &models.InterviewSession{}, &models.AuditRecord{})
}
