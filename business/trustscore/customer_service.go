package trustscore

import (
	"context"

	"codMarket/domain"
	"codMarket/pkg/logger"
)

// UserRepository contract interface
type UserRepository interface {
	FindByID(ctx context.Context, id uint) (domain.User, error)
	FindByPhone(ctx context.Context, phone string) (domain.User, error)
	UpdatePhone(ctx context.Context, id uint, phone string) error
}

type CustomerService struct {
	engine   *TrustScoreService
	userRepo UserRepository
}

func NewCustomerService(engine *TrustScoreService, userRepo UserRepository) *CustomerService {
	return &CustomerService{
		engine:   engine,
		userRepo: userRepo,
	}
}

// GetMyScore returns the caller's score and latest history. Users without a
// phone on file are identified by e-mail.
func (s *CustomerService) GetMyScore(ctx context.Context, userID uint) (domain.CustomerScoreView, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		logger.Failure("Failed to load user for score lookup", err, "user_id", userID)
		return domain.CustomerScoreView{}, err
	}

	identity := user.PhoneOrEmpty()
	if identity == "" {
		identity = user.Email
	}

	return s.engine.GetScoreWithHistory(ctx, identity, user.FullName, HistoryPageSize)
}
