package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"peerprep/interview/internal/models"
	"peerprep/interview/internal/secure"
)

var ErrCandidateNotFound = errors.New("candidate not found")

type CandidateRepository struct {
	DB     *gorm.DB
	Cipher *secure.FieldCipher
}

// Create encrypts the candidate's identity fields and inserts the record. The
// passed struct keeps its plaintext values; only the stored copy is sealed.
func (r *CandidateRepository) Create(ctx context.Context, candidate *models.Candidate) error {
	stored := *candidate
	if err := r.seal(&stored); err != nil {
		return err
	}
	if err := r.DB.WithContext(ctx).Create(&stored).Error; err != nil {
		return err
	}
	candidate.ID = stored.ID
	candidate.CreatedAt = stored.CreatedAt
	candidate.EmailDigest = stored.EmailDigest
	return nil
}

// GetByID loads and decrypts a candidate. Soft-deleted rows are not found.
func (r *CandidateRepository) GetByID(ctx context.Context, candidateID string) (*models.Candidate, error) {
	var candidate models.Candidate
	err := r.DB.WithContext(ctx).First(&candidate, "candidate_id = ?", candidateID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCandidateNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := r.open(&candidate); err != nil {
		return nil, err
	}
	return &candidate, nil
}

// FindActiveByEmail returns a candidate with a pending or in-progress
// interview for the given email, or ErrCandidateNotFound. The lookup uses the
// keyed email digest since the email column itself is encrypted.
func (r *CandidateRepository) FindActiveByEmail(ctx context.Context, email string) (*models.Candidate, error) {
	var candidate models.Candidate
	err := r.DB.WithContext(ctx).
		Where("email_digest = ?", r.Cipher.Digest(email)).
		Where("status IN ?", []string{models.CandidateStatusPending, models.CandidateStatusInProgress}).
		First(&candidate).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCandidateNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := r.open(&candidate); err != nil {
		return nil, err
	}
	return &candidate, nil
}

// UpdateStatus flips a candidate's status.
func (r *CandidateRepository) UpdateStatus(ctx context.Context, candidateID, status string) error {
	result := r.DB.WithContext(ctx).Model(&models.Candidate{}).
		Where("candidate_id = ?", candidateID).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCandidateNotFound
	}
	return nil
}

// SoftDelete marks the candidate deleted without removing the row.
func (r *CandidateRepository) SoftDelete(ctx context.Context, candidateID string) error {
	result := r.DB.WithContext(ctx).Delete(&models.Candidate{}, "candidate_id = ?", candidateID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCandidateNotFound
	}
	return nil
}

func (r *CandidateRepository) seal(candidate *models.Candidate) error {
	candidate.EmailDigest = r.Cipher.Digest(candidate.Email)
	var err error
	if candidate.Name, err = r.Cipher.Encrypt(candidate.Name); err != nil {
		return err
	}
	if candidate.Email, err = r.Cipher.Encrypt(candidate.Email); err != nil {
		return err
	}
	if candidate.Phone, err = r.Cipher.Encrypt(candidate.Phone); err != nil {
		return err
	}
	return nil
}

func (r *CandidateRepository) open(candidate *models.Candidate) error {
	var err error
	if candidate.Name, err = r.Cipher.Decrypt(candidate.Name); err != nil {
		return err
	}
	if candidate.Email, err = r.Cipher.Decrypt(candidate.Email); err != nil {
		return err
	}
	if candidate.Phone, err = r.Cipher.Decrypt(candidate.Phone); err != nil {
		return err
	}
	return nil
}
