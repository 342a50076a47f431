package trustscore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"codMarket/domain"
	"codMarket/pkg/logger"
	"codMarket/pkg/metrics"
	"codMarket/pkg/utils"
)

// canonical score written by SET_STATUS
var statusScores = map[domain.ScoreStatus]int{
	domain.ScoreStatusGood:        100,
	domain.ScoreStatusWarning:     50,
	domain.ScoreStatusWatch:       25,
	domain.ScoreStatusBlacklisted: 0,
}

// EventPublisher contract interface
type EventPublisher interface {
	Publish(ctx context.Context, event domain.Event) error
}

type AdminService struct {
	engine    *TrustScoreService
	scoreRepo ScoreRepository
	userRepo  UserRepository
	tx        Transactor
	events    EventPublisher
}

func NewAdminService(
	engine *TrustScoreService,
	scoreRepo ScoreRepository,
	userRepo UserRepository,
	tx Transactor,
	events EventPublisher,
) *AdminService {
	return &AdminService{
		engine:    engine,
		scoreRepo: scoreRepo,
		userRepo:  userRepo,
		tx:        tx,
		events:    events,
	}
}

// Execute dispatches one admin override.
func (s *AdminService) Execute(ctx context.Context, in domain.AdminActionInput) (domain.AdminActionResult, error) {
	var (
		score *domain.CustomerScore
		msg   string
		err   error
	)

	switch in.Action {
	case domain.AdminResetBlacklist:
		score, err = s.ResetBlacklist(ctx, in.Phone, in.Reason)
		msg = "Customer score reset"
	case domain.AdminChangePhone:
		score, err = s.ChangePhone(ctx, in.UserID, in.NewPhone, in.Reason)
		msg = "Customer phone changed"
	case domain.AdminAdjustScore:
		score, err = s.AdjustScore(ctx, in.Phone, in.Points, in.Reason)
		msg = "Customer score adjusted"
	case domain.AdminSetStatus:
		score, err = s.SetStatus(ctx, in.Phone, in.Status, in.Reason)
		msg = "Customer status updated"
	default:
		return domain.AdminActionResult{}, domain.NewValidationError(fmt.Sprintf("unknown action %q", in.Action))
	}
	if err != nil {
		return domain.AdminActionResult{}, err
	}

	if score != nil {
		s.publish(ctx, domain.NewEvent(domain.EventCustomerScoreChange, score.Phone, map[string]interface{}{
			"action":      in.Action,
			"phone":       score.Phone,
			"trust_score": score.TrustScore,
			"status":      score.Status,
		}))
	}

	return domain.AdminActionResult{Message: msg, CustomerScore: score}, nil
}

func (s *AdminService) ResetBlacklist(ctx context.Context, phone, reason string) (*domain.CustomerScore, error) {
	phone, err := requirePhone(phone)
	if err != nil {
		return nil, err
	}

	score, err := s.engine.mutate(ctx, phone, domain.ActionAdminReset, notes(reason, "blacklist reset"), false,
		func(score *domain.CustomerScore) error {
			score.TrustScore = ScoreInitial
			score.TotalReturns = 0
			return nil
		})
	if err != nil {
		return nil, err
	}

	logger.Info("Customer blacklist reset", "phone", phone)
	return &score, nil
}

// AdjustScore adds points (negative to deduct). The result is clamped like
// every other score mutation.
func (s *AdminService) AdjustScore(ctx context.Context, phone string, points int, reason string) (*domain.CustomerScore, error) {
	phone, err := requirePhone(phone)
	if err != nil {
		return nil, err
	}
	if points == 0 {
		return nil, domain.NewValidationError("points must not be zero")
	}

	action := domain.ActionAdminAddPoints
	if points < 0 {
		action = domain.ActionAdminDeductPoints
	}

	score, err := s.engine.mutate(ctx, phone, action, notes(reason, fmt.Sprintf("manual adjustment %+d", points)), false,
		func(score *domain.CustomerScore) error {
			score.TrustScore += points
			return nil
		})
	if err != nil {
		return nil, err
	}

	return &score, nil
}

func (s *AdminService) SetStatus(ctx context.Context, phone string, status domain.ScoreStatus, reason string) (*domain.CustomerScore, error) {
	phone, err := requirePhone(phone)
	if err != nil {
		return nil, err
	}

	target, ok := statusScores[domain.ScoreStatus(strings.ToUpper(string(status)))]
	if !ok {
		return nil, domain.NewValidationError("status must be one of GOOD, WARNING, WATCH, BLACKLISTED")
	}

	score, err := s.engine.mutate(ctx, phone, domain.ActionAdminSetStatus, notes(reason, "status set to "+strings.ToUpper(string(status))), false,
		func(score *domain.CustomerScore) error {
			score.TrustScore = target
			return nil
		})
	if err != nil {
		return nil, err
	}

	return &score, nil
}

// ChangePhone moves a user to a new phone number. An existing score under the
// old phone is renamed, or merged into the record already held by the new
// phone: highest score wins and counters are summed.
func (s *AdminService) ChangePhone(ctx context.Context, userID uint, newPhone, reason string) (*domain.CustomerScore, error) {
	newPhone = strings.TrimSpace(newPhone)

	var msgs []string
	if userID == 0 {
		msgs = append(msgs, "user_id is required")
	}
	if !utils.IsValidPhone(newPhone) {
		msgs = append(msgs, "new_phone must match 05/06/07 followed by 8 digits")
	}
	if len(msgs) > 0 {
		return nil, domain.NewValidationError(msgs...)
	}

	var result *domain.CustomerScore
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		user, err := s.userRepo.FindByID(ctx, userID)
		if err != nil {
			return err
		}

		owner, err := s.userRepo.FindByPhone(ctx, newPhone)
		switch {
		case err == nil && owner.ID != user.ID:
			return domain.Conflict("phone number already belongs to another account")
		case err != nil && !errors.Is(err, domain.ErrNotFound):
			return err
		}

		oldPhone := user.PhoneOrEmpty()
		if oldPhone == newPhone {
			return domain.NewValidationError("new_phone is the same as the current phone")
		}

		if err := s.userRepo.UpdatePhone(ctx, user.ID, newPhone); err != nil {
			return err
		}

		if oldPhone == "" {
			return nil
		}

		old, err := s.scoreRepo.FindByPhoneForUpdate(ctx, oldPhone)
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		merged, err := s.moveScore(ctx, old, newPhone, notes(reason, "phone changed from "+oldPhone))
		if err != nil {
			return err
		}

		result = &merged
		return nil
	})
	if err != nil {
		logger.Failure("Failed to change customer phone", err, "user_id", userID)
		return nil, err
	}

	metrics.ScoreMutations.WithLabelValues(string(domain.ActionPhoneChanged)).Inc()
	logger.Info("Customer phone changed", "user_id", userID)

	return result, nil
}

// moveScore must run inside a transaction with old already locked.
func (s *AdminService) moveScore(ctx context.Context, old domain.CustomerScore, newPhone, note string) (domain.CustomerScore, error) {
	target, err := s.scoreRepo.FindByPhoneForUpdate(ctx, newPhone)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return domain.CustomerScore{}, err
	}

	var previous int
	if err == nil {
		previous = target.TrustScore
		target.TrustScore = ClampScore(max(old.TrustScore, target.TrustScore))
		target.TotalOrders += old.TotalOrders
		target.TotalReturns += old.TotalReturns
		target.SuccessfulOrders += old.SuccessfulOrders
		if target.Name == "" {
			target.Name = old.Name
		}
		target.Status = DeriveStatus(target.TrustScore)

		if err := s.scoreRepo.Save(ctx, &target); err != nil {
			return domain.CustomerScore{}, err
		}
		if err := s.scoreRepo.ReassignHistory(ctx, old.ID, target.ID); err != nil {
			return domain.CustomerScore{}, err
		}
		if err := s.scoreRepo.Delete(ctx, old.ID); err != nil {
			return domain.CustomerScore{}, err
		}
		note += " (merged)"
	} else {
		previous = old.TrustScore
		target = old
		target.Phone = newPhone
		if err := s.scoreRepo.Save(ctx, &target); err != nil {
			return domain.CustomerScore{}, err
		}
	}

	entry := domain.ScoreHistory{
		CustomerScoreID: target.ID,
		CustomerPhone:   target.Phone,
		Action:          domain.ActionPhoneChanged,
		PointsChange:    target.TrustScore - previous,
		PreviousScore:   previous,
		NewScore:        target.TrustScore,
		Notes:           note,
	}
	if err := s.scoreRepo.AppendHistory(ctx, &entry); err != nil {
		return domain.CustomerScore{}, err
	}

	return target, nil
}

// GetCustomer returns a score with its full history.
func (s *AdminService) GetCustomer(ctx context.Context, phone string) (domain.CustomerScoreView, error) {
	score, err := s.scoreRepo.FindByPhone(ctx, strings.TrimSpace(phone))
	if err != nil {
		return domain.CustomerScoreView{}, err
	}

	history, err := s.scoreRepo.ListHistory(ctx, score.ID, 0)
	if err != nil {
		return domain.CustomerScoreView{}, err
	}

	return domain.CustomerScoreView{Score: score, History: history}, nil
}

func (s *AdminService) publish(ctx context.Context, event domain.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, event); err != nil {
		logger.Warn("Failed to publish event", "type", event.Type, "error", err)
	}
}

func requirePhone(phone string) (string, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return "", domain.NewValidationError("phone is required")
	}
	return phone, nil
}

func notes(reason, fallback string) string {
	if r := strings.TrimSpace(reason); r != "" {
		return r
	}
	return fallback
}
