package returns

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"codMarket/business/trustscore"
	"codMarket/domain"
	"codMarket/pkg/logger"
	"codMarket/pkg/metrics"
	"codMarket/pkg/utils"
)

// ReturnsRepository contract interface
type ReturnsRepository interface {
	Create(ctx context.Context, ret *domain.Return) error
	FindByID(ctx context.Context, id uint) (domain.Return, error)
	FindByIDForUpdate(ctx context.Context, id uint) (domain.Return, error)
	FindActive(ctx context.Context, orderID uint, productID uint64) (domain.Return, bool, error)
	FindAll(ctx context.Context, filter domain.ReturnFilter) ([]domain.Return, error)
	Update(ctx context.Context, ret *domain.Return) error
}

// OrderReader contract interface
type OrderReader interface {
	GetOrder(ctx context.Context, orderID uint) (domain.Order, error)
	GetOrderForUpdate(ctx context.Context, orderID uint) (domain.Order, error)
}

// UserRepository contract interface
type UserRepository interface {
	FindByID(ctx context.Context, id uint) (domain.User, error)
	FindByPhone(ctx context.Context, phone string) (domain.User, error)
	UpdatePhone(ctx context.Context, id uint, phone string) error
}

type TrustScorer interface {
	ApplyScoreDelta(ctx context.Context, phone string, action domain.ScoreAction, delta int, notes string) (domain.CustomerScore, error)
}

type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type EventPublisher interface {
	Publish(ctx context.Context, event domain.Event) error
}

// Notifier sends customer e-mails. Failures never affect the return.
type Notifier interface {
	SendEmail(ctx context.Context, toName, toEmail, subject, message string) error
}

type transitionEffect struct {
	action domain.ScoreAction
	delta  int
}

// allowed return transitions; edges with a score effect carry it
var returnTransitions = map[domain.ReturnStatus]map[domain.ReturnStatus]*transitionEffect{
	domain.ReturnStatusPending: {
		domain.ReturnStatusApproved:  nil,
		domain.ReturnStatusRejected:  {action: domain.ActionReturnRejected, delta: trustscore.ReturnRejectedRestitution},
		domain.ReturnStatusCompleted: {action: domain.ActionReturnCompleted, delta: trustscore.ReturnCompletedPoints},
	},
	domain.ReturnStatusApproved: {
		domain.ReturnStatusCompleted: nil,
	},
}

type ReturnsService struct {
	returnRepo   ReturnsRepository
	orderRepo    OrderReader
	userRepo     UserRepository
	scorer       TrustScorer
	tx           Transactor
	events       EventPublisher
	notifier     Notifier
	returnPeriod time.Duration
	now          func() time.Time
}

func NewReturnsService(
	returnRepo ReturnsRepository,
	orderRepo OrderReader,
	userRepo UserRepository,
	scorer TrustScorer,
	tx Transactor,
	events EventPublisher,
	notifier Notifier,
	returnPeriodDays int,
) *ReturnsService {
	return &ReturnsService{
		returnRepo:   returnRepo,
		orderRepo:    orderRepo,
		userRepo:     userRepo,
		scorer:       scorer,
		tx:           tx,
		events:       events,
		notifier:     notifier,
		returnPeriod: time.Duration(returnPeriodDays) * 24 * time.Hour,
		now:          time.Now,
	}
}

// CreateReturn files a PENDING return for one order line and applies the
// request penalty in the same transaction.
func (s *ReturnsService) CreateReturn(ctx context.Context, in domain.CreateReturnInput) (domain.Return, error) {
	if in.UserID == nil {
		return domain.Return{}, domain.ErrUnauthorized
	}

	in.CustomerPhone = strings.TrimSpace(in.CustomerPhone)
	in.CustomerName = strings.TrimSpace(in.CustomerName)
	in.Reason = domain.ReturnReason(strings.ToUpper(strings.TrimSpace(string(in.Reason))))

	if err := validateReturn(in); err != nil {
		return domain.Return{}, err
	}

	var (
		created domain.Return
		order   domain.Order
	)
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error

		// the order lock serializes duplicate checks for its lines
		order, err = s.orderRepo.GetOrderForUpdate(ctx, in.OrderID)
		if err != nil {
			return err
		}

		if order.UserID != nil && *order.UserID != *in.UserID {
			return domain.Forbidden("order does not belong to you")
		}
		if !order.HasProduct(in.ProductID) {
			return domain.NewValidationError("product is not part of this order")
		}
		if s.now().Sub(order.CreatedAt) > s.returnPeriod {
			return domain.NewValidationError(fmt.Sprintf("return period of %d days has expired", int(s.returnPeriod.Hours()/24)))
		}

		existing, found, err := s.returnRepo.FindActive(ctx, order.ID, in.ProductID)
		if err != nil {
			return err
		}
		if found {
			return &domain.ConflictError{
				Message:          "a return for this product is already in progress",
				ExistingReturnID: existing.ID,
				ExistingStatus:   existing.Status,
			}
		}

		created = domain.Return{
			OrderID:        order.ID,
			ProductID:      in.ProductID,
			UserID:         in.UserID,
			CustomerPhone:  in.CustomerPhone,
			CustomerName:   in.CustomerName,
			Reason:         in.Reason,
			DetailedReason: strings.TrimSpace(in.DetailedReason),
			Status:         domain.ReturnStatusPending,
		}
		if err := s.returnRepo.Create(ctx, &created); err != nil {
			return err
		}

		_, err = s.scorer.ApplyScoreDelta(ctx, in.CustomerPhone, domain.ActionReturnRequested,
			trustscore.ReturnRequestedPenalty, fmt.Sprintf("return #%d for order #%d", created.ID, order.ID))
		if err != nil {
			return err
		}

		return s.backfillPhone(ctx, *in.UserID, in.CustomerPhone)
	})
	if err != nil {
		logger.Failure("Failed to create return", err, "order_id", in.OrderID, "product_id", in.ProductID)
		return domain.Return{}, err
	}

	metrics.ReturnsCreated.WithLabelValues(string(created.Reason)).Inc()
	logger.Info("Return created", "return_id", created.ID, "order_id", created.OrderID)

	s.publish(ctx, domain.NewEvent(domain.EventReturnCreated, created.CustomerPhone, map[string]interface{}{
		"return_id":  created.ID,
		"order_id":   created.OrderID,
		"product_id": created.ProductID,
		"reason":     created.Reason,
	}))
	s.notify(ctx, order, "Return request received",
		fmt.Sprintf("We received your return request #%d for order #%d. We will get back to you shortly.", created.ID, order.ID))

	return created, nil
}

// backfillPhone stores phone on a user profile that has none. A phone already
// held by another account is left alone.
func (s *ReturnsService) backfillPhone(ctx context.Context, userID uint, phone string) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		return err
	}
	if user.PhoneOrEmpty() != "" {
		return nil
	}

	owner, err := s.userRepo.FindByPhone(ctx, phone)
	if err == nil && owner.ID != user.ID {
		logger.Warn("Skipping phone backfill, phone belongs to another user", "user_id", userID)
		return nil
	}
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	return s.userRepo.UpdatePhone(ctx, user.ID, phone)
}

// TransitionReturn moves a return along its lifecycle and applies the score
// effect attached to the edge. Repeating the current status only updates
// notes and refund amount.
func (s *ReturnsService) TransitionReturn(ctx context.Context, id uint, in domain.TransitionReturnInput) (domain.Return, error) {
	target := domain.ReturnStatus(strings.ToUpper(strings.TrimSpace(string(in.Status))))

	var msgs []string
	switch target {
	case domain.ReturnStatusApproved, domain.ReturnStatusRejected, domain.ReturnStatusCompleted:
	default:
		msgs = append(msgs, "status must be one of APPROVED, REJECTED, COMPLETED")
	}
	if in.RefundAmount != nil && *in.RefundAmount < 0 {
		msgs = append(msgs, "refund_amount must not be negative")
	}
	if len(msgs) > 0 {
		return domain.Return{}, domain.NewValidationError(msgs...)
	}

	var (
		ret  domain.Return
		from domain.ReturnStatus
	)
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		ret, err = s.returnRepo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		from = ret.Status

		var effect *transitionEffect
		if from != target {
			edges := returnTransitions[from]
			var ok bool
			if effect, ok = edges[target]; !ok {
				return &domain.ConflictError{
					Message:          fmt.Sprintf("cannot move return from %s to %s", from, target),
					ExistingReturnID: ret.ID,
					ExistingStatus:   from,
				}
			}
		}

		ret.Status = target
		if in.AdminNotes != nil {
			ret.AdminNotes = strings.TrimSpace(*in.AdminNotes)
		}
		if in.RefundAmount != nil {
			ret.RefundAmount = in.RefundAmount
		}

		if err := s.returnRepo.Update(ctx, &ret); err != nil {
			return err
		}

		if effect != nil {
			_, err := s.scorer.ApplyScoreDelta(ctx, ret.CustomerPhone, effect.action, effect.delta,
				fmt.Sprintf("return #%d %s", ret.ID, strings.ToLower(string(target))))
			if err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		logger.Failure("Failed to transition return", err, "return_id", id, "status", target)
		return domain.Return{}, err
	}

	if from == target {
		return ret, nil
	}

	metrics.ReturnTransitions.WithLabelValues(string(from), string(target)).Inc()
	logger.Info("Return transitioned", "return_id", ret.ID, "from", from, "to", target)

	s.publish(ctx, domain.NewEvent(domain.EventReturnTransitioned, ret.CustomerPhone, map[string]interface{}{
		"return_id": ret.ID,
		"from":      from,
		"to":        target,
	}))
	if order, err := s.orderRepo.GetOrder(ctx, ret.OrderID); err == nil {
		s.notify(ctx, order, fmt.Sprintf("Return #%d %s", ret.ID, strings.ToLower(string(target))),
			fmt.Sprintf("Your return request #%d for order #%d is now %s.", ret.ID, ret.OrderID, target))
	}

	return ret, nil
}

func (s *ReturnsService) ListReturns(ctx context.Context, filter domain.ReturnFilter) ([]domain.Return, error) {
	filter.Status = domain.ReturnStatus(strings.ToUpper(string(filter.Status)))
	return s.returnRepo.FindAll(ctx, filter)
}

func (s *ReturnsService) GetReturn(ctx context.Context, id uint) (domain.Return, error) {
	return s.returnRepo.FindByID(ctx, id)
}

func (s *ReturnsService) publish(ctx context.Context, event domain.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, event); err != nil {
		logger.Warn("Failed to publish event", "type", event.Type, "error", err)
	}
}

func (s *ReturnsService) notify(ctx context.Context, order domain.Order, subject, message string) {
	if s.notifier == nil || order.GuestEmail == "" {
		return
	}

	go func(ctx context.Context) {
		if err := s.notifier.SendEmail(ctx, order.GuestName, order.GuestEmail, subject, message); err != nil {
			logger.Warn("Failed to send return notification", "order_id", order.ID, "error", err)
		}
	}(context.WithoutCancel(ctx))
}

func validateReturn(in domain.CreateReturnInput) error {
	var msgs []string

	if in.OrderID == 0 {
		msgs = append(msgs, "order_id is required")
	}
	if in.ProductID == 0 {
		msgs = append(msgs, "product_id is required")
	}
	if !utils.IsValidPhone(in.CustomerPhone) {
		msgs = append(msgs, "customer_phone must match 05/06/07 followed by 8 digits")
	}
	if !in.Reason.Valid() {
		msgs = append(msgs, "reason must be one of DAMAGED, WRONG_ITEM, NOT_WORKING, WRONG_SIZE, POOR_QUALITY, LATE_DELIVERY, WRONG_ORDER, OTHER")
	}
	if len([]rune(in.DetailedReason)) > domain.MaxDetailedReasonLength {
		msgs = append(msgs, fmt.Sprintf("detailed_reason must be at most %d characters", domain.MaxDetailedReasonLength))
	}

	if len(msgs) > 0 {
		return domain.NewValidationError(msgs...)
	}
	return nil
}
