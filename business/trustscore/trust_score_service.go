package trustscore

import (
	"context"
	"strings"

	"codMarket/domain"
	"codMarket/pkg/logger"
	"codMarket/pkg/metrics"
)

const (
	ScoreMin     = 0
	ScoreMax     = 100
	ScoreInitial = 100

	blacklistBelow = 20
	watchBelow     = 40
	warningBelow   = 60

	// Points applied by the order and return flows.
	ReturnRequestedPenalty    = -10
	ReturnRejectedRestitution = 5
	ReturnCompletedPoints     = 0
	OrderCompletedAward       = 5

	// HistoryPageSize is the number of history rows shown to customers.
	HistoryPageSize = 10
)

// ScoreRepository contract interface
type ScoreRepository interface {
	Ensure(ctx context.Context, phone, name string, initialScore int, status domain.ScoreStatus) error
	FindByPhone(ctx context.Context, phone string) (domain.CustomerScore, error)
	FindByPhoneForUpdate(ctx context.Context, phone string) (domain.CustomerScore, error)
	Save(ctx context.Context, score *domain.CustomerScore) error
	Delete(ctx context.Context, id uint) error
	AppendHistory(ctx context.Context, entry *domain.ScoreHistory) error
	ListHistory(ctx context.Context, scoreID uint, limit int) ([]domain.ScoreHistory, error)
	ReassignHistory(ctx context.Context, fromID, toID uint) error
}

// Transactor runs fn inside one database transaction, joining an open one.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// DeriveStatus maps a score to its status bucket.
func DeriveStatus(score int) domain.ScoreStatus {
	switch {
	case score < blacklistBelow:
		return domain.ScoreStatusBlacklisted
	case score < watchBelow:
		return domain.ScoreStatusWatch
	case score < warningBelow:
		return domain.ScoreStatusWarning
	default:
		return domain.ScoreStatusGood
	}
}

// ClampScore bounds every stored score, whichever path produced it.
func ClampScore(score int) int {
	if score < ScoreMin {
		return ScoreMin
	}
	if score > ScoreMax {
		return ScoreMax
	}
	return score
}

type TrustScoreService struct {
	scoreRepo ScoreRepository
	tx        Transactor
}

func NewTrustScoreService(scoreRepo ScoreRepository, tx Transactor) *TrustScoreService {
	return &TrustScoreService{
		scoreRepo: scoreRepo,
		tx:        tx,
	}
}

// ApplyScoreDelta adds delta to the customer's score and logs it. The record
// is created with the default score on first use. When ctx carries a
// transaction the update becomes part of it.
func (s *TrustScoreService) ApplyScoreDelta(ctx context.Context, phone string, action domain.ScoreAction, delta int, notes string) (domain.CustomerScore, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return domain.CustomerScore{}, domain.NewValidationError("phone is required")
	}

	return s.mutate(ctx, phone, action, notes, true, func(score *domain.CustomerScore) error {
		score.TrustScore += delta

		switch action {
		case domain.ActionReturnRequested:
			score.TotalReturns++
		case domain.ActionOrderCompleted:
			score.SuccessfulOrders++
		}

		return nil
	})
}

// mutate locks the record for phone, lets apply change it, re-derives the
// status and appends exactly one history row, all in one transaction. With
// ensure unset a missing record is reported as not found.
func (s *TrustScoreService) mutate(
	ctx context.Context,
	phone string,
	action domain.ScoreAction,
	notes string,
	ensure bool,
	apply func(score *domain.CustomerScore) error,
) (domain.CustomerScore, error) {
	var updated domain.CustomerScore

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if ensure {
			if err := s.scoreRepo.Ensure(ctx, phone, "", ScoreInitial, DeriveStatus(ScoreInitial)); err != nil {
				return err
			}
		}

		score, err := s.scoreRepo.FindByPhoneForUpdate(ctx, phone)
		if err != nil {
			return err
		}

		previous := score.TrustScore
		if err := apply(&score); err != nil {
			return err
		}

		score.TrustScore = ClampScore(score.TrustScore)
		score.Status = DeriveStatus(score.TrustScore)

		if err := s.scoreRepo.Save(ctx, &score); err != nil {
			return err
		}

		entry := domain.ScoreHistory{
			CustomerScoreID: score.ID,
			CustomerPhone:   score.Phone,
			Action:          action,
			PointsChange:    score.TrustScore - previous,
			PreviousScore:   previous,
			NewScore:        score.TrustScore,
			Notes:           notes,
		}
		if err := s.scoreRepo.AppendHistory(ctx, &entry); err != nil {
			return err
		}

		updated = score
		return nil
	})
	if err != nil {
		logger.Failure("Failed to update trust score", err, "phone", phone, "action", action)
		return domain.CustomerScore{}, err
	}

	metrics.ScoreMutations.WithLabelValues(string(action)).Inc()

	return updated, nil
}

// GetScore looks the record up without creating it.
func (s *TrustScoreService) GetScore(ctx context.Context, phone string) (domain.CustomerScore, error) {
	return s.scoreRepo.FindByPhone(ctx, strings.TrimSpace(phone))
}

// EnsureScore returns the record for identity, creating a GOOD/100 one if
// needed. Safe to call concurrently for the same identity.
func (s *TrustScoreService) EnsureScore(ctx context.Context, identity, name string) (domain.CustomerScore, error) {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return domain.CustomerScore{}, domain.NewValidationError("customer identity is required")
	}

	var score domain.CustomerScore
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.scoreRepo.Ensure(ctx, identity, name, ScoreInitial, DeriveStatus(ScoreInitial)); err != nil {
			return err
		}

		var err error
		score, err = s.scoreRepo.FindByPhone(ctx, identity)
		return err
	})
	if err != nil {
		return domain.CustomerScore{}, err
	}

	return score, nil
}

// GetScoreWithHistory ensures the record and returns it with up to limit
// history rows, newest first.
func (s *TrustScoreService) GetScoreWithHistory(ctx context.Context, identity, name string, limit int) (domain.CustomerScoreView, error) {
	score, err := s.EnsureScore(ctx, identity, name)
	if err != nil {
		return domain.CustomerScoreView{}, err
	}

	history, err := s.scoreRepo.ListHistory(ctx, score.ID, limit)
	if err != nil {
		return domain.CustomerScoreView{}, err
	}

	return domain.CustomerScoreView{Score: score, History: history}, nil
}
