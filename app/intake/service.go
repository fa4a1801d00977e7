package intake

import (
	"context"
	"errors"
	"time"

	"realtor/app/models"
	"realtor/core/emitter"
	"realtor/core/logger"

	"gorm.io/gorm"
)

const (
	SubmittedEvent      = "intake.submit"
	TokenSubmittedEvent = "intake.token_submit"
	TokensExpiredEvent  = "intake.tokens_expired"
)

var errNamesRequired = &models.ValidationError{Field: "name", Message: "First and last name are required."}

type IntakeService struct {
	DB       *gorm.DB
	Emitter  *emitter.Emitter
	Logger   logger.Logger
	TokenTTL time.Duration
}

func NewIntakeService(db *gorm.DB, emitter *emitter.Emitter, logger logger.Logger, tokenTTL time.Duration) *IntakeService {
	return &IntakeService{
		DB:       db,
		Emitter:  emitter,
		Logger:   logger,
		TokenTTL: tokenTTL,
	}
}

// Submit handles the open form. A client that already owns the email,
// archived or not, is updated and restored; otherwise one is created.
// agent pre-assigns the agent when the form leaves it blank.
func (s *IntakeService) Submit(ctx context.Context, req *models.IntakeRequest, agent string) (*models.IntakeResult, error) {
	first, last := req.Names()
	if first == "" || last == "" {
		return nil, errNamesRequired
	}
	email, err := models.NormalizeEmail(req.Email.Value)
	if err != nil {
		return nil, err
	}

	db := s.DB.WithContext(ctx)
	if email != nil {
		if result, err := s.mergeByEmail(db, *email, req, agent); result != nil || err != nil {
			return result, err
		}
	}

	item := &models.Client{Email: email}
	if err := req.ApplyOpen(item, agent); err != nil {
		return nil, err
	}
	err = db.Create(item).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) && email != nil {
		// someone else created this email between lookup and insert
		result, mergeErr := s.mergeByEmail(db, *email, req, agent)
		if result != nil || mergeErr != nil {
			return result, mergeErr
		}
	}
	if err != nil {
		s.Logger.Error("failed to create client from intake", logger.Err(err))
		return nil, err
	}

	s.Emitter.Emit(SubmittedEvent, item)
	return &models.IntakeResult{Ok: true, Id: item.Id, Created: true}, nil
}

// mergeByEmail returns nil, nil when nobody owns email
func (s *IntakeService) mergeByEmail(db *gorm.DB, email string, req *models.IntakeRequest, agent string) (*models.IntakeResult, error) {
	var existing models.Client
	err := db.Unscoped().Where("email = ?", email).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		s.Logger.Error("failed to look up intake email", logger.Err(err))
		return nil, err
	}

	if err := req.ApplyOpen(&existing, agent); err != nil {
		return nil, err
	}
	existing.DeletedAt = gorm.DeletedAt{}
	if err := db.Unscoped().Save(&existing).Error; err != nil {
		s.Logger.Error("failed to update client from intake", logger.Err(err), logger.Uint("id", existing.Id))
		return nil, err
	}

	s.Emitter.Emit(SubmittedEvent, &existing)
	return &models.IntakeResult{Ok: true, Id: existing.Id, Updated: true}, nil
}

// Prefill returns the record behind a live token
func (s *IntakeService) Prefill(ctx context.Context, token string) (*models.IntakePrefill, error) {
	item, err := s.findByToken(s.DB.WithContext(ctx), token)
	if err != nil {
		return nil, err
	}
	return item.ToIntakePrefill(), nil
}

// SubmitWithToken lets the token holder update their own record. Fields
// missing from the request keep their value. The token is spent on success.
func (s *IntakeService) SubmitWithToken(ctx context.Context, token string, req *models.IntakeRequest) (*models.IntakeResult, error) {
	var item *models.Client
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := s.findByToken(tx, token)
		if err != nil {
			return err
		}

		email, err := req.ApplyToken(found)
		if err != nil {
			return err
		}
		if req.Email.Set {
			if email != nil && !models.SameEmail(email, found.Email) {
				if err := emailTaken(tx, *email, found.Id); err != nil {
					return err
				}
			}
			found.Email = email
		}

		found.IntakeToken = nil
		found.IntakeTokenIssuedAt = nil
		if err := tx.Save(found).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return models.ErrEmailConflict
			}
			return err
		}
		item = found
		return nil
	})
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) && !errors.Is(err, models.ErrValidation) && !errors.Is(err, models.ErrEmailConflict) {
			s.Logger.Error("failed to apply token intake", logger.Err(err))
		}
		return nil, err
	}

	s.Emitter.Emit(TokenSubmittedEvent, item)
	return &models.IntakeResult{Ok: true, Id: item.Id}, nil
}

// ExpireTokens clears tokens issued before now minus the TTL
func (s *IntakeService) ExpireTokens(ctx context.Context, now time.Time) (int64, error) {
	if s.TokenTTL <= 0 {
		return 0, nil
	}
	res := s.DB.WithContext(ctx).Unscoped().
		Model(&models.Client{}).
		Where("intake_token IS NOT NULL AND intake_token_issued_at < ?", now.UTC().Add(-s.TokenTTL)).
		Updates(map[string]any{"intake_token": nil, "intake_token_issued_at": nil})
	if res.Error != nil {
		s.Logger.Error("failed to expire intake tokens", logger.Err(res.Error))
		return 0, res.Error
	}
	if res.RowsAffected > 0 {
		s.Emitter.Emit(TokensExpiredEvent, res.RowsAffected)
	}
	return res.RowsAffected, nil
}

func (s *IntakeService) findByToken(db *gorm.DB, token string) (*models.Client, error) {
	if token == "" {
		return nil, models.ErrNotFound
	}
	q := db.Where("intake_token = ?", token)
	if s.TokenTTL > 0 {
		q = q.Where("intake_token_issued_at >= ?", time.Now().UTC().Add(-s.TokenTTL))
	}

	item := &models.Client{}
	if err := q.First(item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return item, nil
}

func emailTaken(tx *gorm.DB, email string, exceptId uint) error {
	var count int64
	if err := tx.Unscoped().Model(&models.Client{}).
		Where("email = ? AND id <> ?", email, exceptId).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return models.ErrEmailConflict
	}
	return nil
}
