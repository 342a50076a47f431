package orders

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"codMarket/business/trustscore"
	"codMarket/domain"
	"codMarket/pkg/logger"
	"codMarket/pkg/metrics"
)

// OrdersRepository contract interface
type OrdersRepository interface {
	CreateOrder(ctx context.Context, order *domain.Order) error
	GetAllOrders(ctx context.Context, userID *uint) ([]domain.Order, error)
	GetOrder(ctx context.Context, orderID uint) (domain.Order, error)
	GetOrderForUpdate(ctx context.Context, orderID uint) (domain.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID uint, status domain.OrderStatus) error
}

// ProductRepository contract interface
type ProductRepository interface {
	FindByID(ctx context.Context, id uint64) (domain.Product, error)
	FindByIDForUpdate(ctx context.Context, id uint64) (domain.Product, error)
	DecrementStock(ctx context.Context, id uint64, qty int) (bool, error)
	IncrementStock(ctx context.Context, id uint64, qty int) error
}

// TrustScorer is the part of the trust score engine orders depend on.
type TrustScorer interface {
	GetScore(ctx context.Context, phone string) (domain.CustomerScore, error)
	ApplyScoreDelta(ctx context.Context, phone string, action domain.ScoreAction, delta int, notes string) (domain.CustomerScore, error)
}

type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type EventPublisher interface {
	Publish(ctx context.Context, event domain.Event) error
}

var orderTransitions = map[domain.OrderStatus][]domain.OrderStatus{
	domain.OrderStatusPending:   {domain.OrderStatusConfirmed, domain.OrderStatusCancelled},
	domain.OrderStatusConfirmed: {domain.OrderStatusShipped, domain.OrderStatusCancelled},
	domain.OrderStatusShipped:   {domain.OrderStatusDelivered},
}

type OrdersService struct {
	orderRepo   OrdersRepository
	productRepo ProductRepository
	scorer      TrustScorer
	tx          Transactor
	events      EventPublisher
}

func NewOrdersService(
	orderRepo OrdersRepository,
	productRepo ProductRepository,
	scorer TrustScorer,
	tx Transactor,
	events EventPublisher,
) *OrdersService {
	return &OrdersService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		scorer:      scorer,
		tx:          tx,
		events:      events,
	}
}

// PlaceOrder prices the cart, applies the blacklist gate and commits the order
// with its stock decrements atomically.
func (s *OrdersService) PlaceOrder(ctx context.Context, in domain.PlaceOrderInput) (domain.Order, error) {
	in.Guest.Name = strings.TrimSpace(in.Guest.Name)
	in.Guest.Phone = strings.TrimSpace(in.Guest.Phone)

	if err := validateOrder(in); err != nil {
		metrics.OrdersRejected.WithLabelValues("validation").Inc()
		return domain.Order{}, err
	}

	// Existence pass before the gate. Prices and stock are read again under lock.
	for _, item := range in.Items {
		if _, err := s.productRepo.FindByID(ctx, item.ProductID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				metrics.OrdersRejected.WithLabelValues("product_not_found").Inc()
				return domain.Order{}, domain.NewValidationError(fmt.Sprintf("product %d not found", item.ProductID))
			}
			return domain.Order{}, err
		}
	}

	trustFlag, err := s.checkCustomer(ctx, in.Guest.Phone)
	if err != nil {
		return domain.Order{}, err
	}

	order := domain.Order{
		UserID:       in.UserID,
		GuestName:    in.Guest.Name,
		GuestPhone:   in.Guest.Phone,
		GuestEmail:   strings.TrimSpace(in.Guest.Email),
		GuestAddress: in.Guest.Address,
		GuestWilaya:  in.Guest.Wilaya,
		GuestCommune: in.Guest.Commune,
		Status:       domain.OrderStatusPending,
		TrustFlag:    trustFlag,
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		locked := make(map[uint64]domain.Product, len(in.Items))
		for _, line := range lockOrder(in.Items) {
			product, err := s.productRepo.FindByIDForUpdate(ctx, line.ProductID)
			if err != nil {
				return err
			}

			if product.StockQuantity < line.Quantity {
				return insufficientStock(product)
			}

			ok, err := s.productRepo.DecrementStock(ctx, product.ID, line.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				return insufficientStock(product)
			}
			locked[product.ID] = product
		}

		priceOrder(&order, in.Items, locked)

		return s.orderRepo.CreateOrder(ctx, &order)
	})
	if err != nil {
		if errors.Is(err, domain.ErrValidation) {
			metrics.OrdersRejected.WithLabelValues("stock").Inc()
		}
		logger.Failure("Failed to place order", err, "phone", in.Guest.Phone)
		return domain.Order{}, err
	}

	metrics.OrdersPlaced.Inc()
	logger.Info("Order placed", "order_id", order.ID, "total", order.TotalAmount)

	s.publish(ctx, domain.NewEvent(domain.EventOrderPlaced, order.GuestPhone, map[string]interface{}{
		"order_id":     order.ID,
		"total_amount": order.TotalAmount,
		"trust_flag":   order.TrustFlag,
	}))

	return order, nil
}

// checkCustomer applies the blacklist gate. Unknown customers pass.
func (s *OrdersService) checkCustomer(ctx context.Context, phone string) (string, error) {
	score, err := s.scorer.GetScore(ctx, phone)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", nil
		}
		return "", err
	}

	switch score.Status {
	case domain.ScoreStatusBlacklisted:
		metrics.OrdersRejected.WithLabelValues("blacklisted").Inc()
		logger.Warn("Blacklisted customer tried to order", "phone", phone)
		return "", &domain.PolicyError{Status: score.Status}
	case domain.ScoreStatusWatch, domain.ScoreStatusWarning:
		metrics.OrdersFlagged.WithLabelValues(string(score.Status)).Inc()
		logger.Warn("Order from flagged customer", "phone", phone, "status", score.Status)
		return string(score.Status), nil
	}

	return "", nil
}

// UpdateOrderStatus moves an order along its lifecycle. Cancelling restores
// stock. Delivery awards trust points once the status change is committed.
func (s *OrdersService) UpdateOrderStatus(ctx context.Context, orderID uint, status domain.OrderStatus) (domain.Order, error) {
	status = domain.OrderStatus(strings.ToUpper(string(status)))
	if !status.Valid() {
		return domain.Order{}, domain.NewValidationError(fmt.Sprintf("invalid order status %q", status))
	}

	var order domain.Order
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		order, err = s.orderRepo.GetOrderForUpdate(ctx, orderID)
		if err != nil {
			return err
		}

		if !canTransition(order.Status, status) {
			return domain.Conflict(fmt.Sprintf("cannot move order from %s to %s", order.Status, status))
		}

		if status == domain.OrderStatusCancelled {
			for _, item := range order.Items {
				if err := s.productRepo.IncrementStock(ctx, item.ProductID, item.Quantity); err != nil {
					return err
				}
			}
		}

		if err := s.orderRepo.UpdateOrderStatus(ctx, order.ID, status); err != nil {
			return err
		}

		order.Status = status
		return nil
	})
	if err != nil {
		logger.Failure("Failed to update order status", err, "order_id", orderID, "status", status)
		return domain.Order{}, err
	}

	if status == domain.OrderStatusDelivered {
		s.awardDelivery(ctx, order)
	}

	s.publish(ctx, domain.NewEvent(domain.EventOrderStatusChanged, order.GuestPhone, map[string]interface{}{
		"order_id": order.ID,
		"status":   order.Status,
	}))

	return order, nil
}

// awardDelivery never fails the caller; the order is already delivered.
func (s *OrdersService) awardDelivery(ctx context.Context, order domain.Order) {
	_, err := s.scorer.ApplyScoreDelta(ctx, order.GuestPhone, domain.ActionOrderCompleted,
		trustscore.OrderCompletedAward, fmt.Sprintf("order #%d delivered", order.ID))
	if err != nil {
		metrics.ScoreAwardFailures.Inc()
		logger.Error("Failed to award delivered order", "order_id", order.ID, "error", err)
	}
}

func (s *OrdersService) GetOrder(ctx context.Context, orderID uint) (domain.Order, error) {
	return s.orderRepo.GetOrder(ctx, orderID)
}

// ListOrders returns every order, or only userID's when set.
func (s *OrdersService) ListOrders(ctx context.Context, userID *uint) ([]domain.Order, error) {
	return s.orderRepo.GetAllOrders(ctx, userID)
}

func (s *OrdersService) publish(ctx context.Context, event domain.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, event); err != nil {
		logger.Warn("Failed to publish event", "type", event.Type, "error", err)
	}
}

func validateOrder(in domain.PlaceOrderInput) error {
	var msgs []string

	if len(in.Items) == 0 {
		msgs = append(msgs, "cart is empty")
	}
	if in.Guest.Name == "" {
		msgs = append(msgs, "guest name is required")
	}
	if in.Guest.Phone == "" {
		msgs = append(msgs, "guest phone is required")
	}
	for i, item := range in.Items {
		if item.ProductID == 0 {
			msgs = append(msgs, fmt.Sprintf("items[%d]: product_id is required", i))
		}
		if item.Quantity < 1 {
			msgs = append(msgs, fmt.Sprintf("items[%d]: quantity must be at least 1", i))
		}
	}

	if len(msgs) > 0 {
		return domain.NewValidationError(msgs...)
	}
	return nil
}

// lockOrder sums quantities per product and sorts by id so concurrent
// placements take row locks in the same order.
func lockOrder(items []domain.CartItem) []domain.CartItem {
	totals := make(map[uint64]int, len(items))
	for _, item := range items {
		totals[item.ProductID] += item.Quantity
	}

	lines := make([]domain.CartItem, 0, len(totals))
	for id, qty := range totals {
		lines = append(lines, domain.CartItem{ProductID: id, Quantity: qty})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ProductID < lines[j].ProductID })

	return lines
}

// priceOrder snapshots line prices and totals from the locked product rows.
// The delivery fee is charged once per distinct product.
func priceOrder(order *domain.Order, items []domain.CartItem, products map[uint64]domain.Product) {
	var itemsTotal, deliveryTotal float64
	charged := make(map[uint64]bool, len(products))

	order.Items = order.Items[:0]
	for _, item := range items {
		product := products[item.ProductID]
		if !charged[product.ID] {
			deliveryTotal += product.DeliveryFee
			charged[product.ID] = true
		}

		price := product.EffectivePrice()
		itemsTotal += price * float64(item.Quantity)
		order.Items = append(order.Items, domain.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     price,
		})
	}

	order.ItemsTotal = itemsTotal
	order.DeliveryTotal = deliveryTotal
	order.TotalAmount = itemsTotal + deliveryTotal
}

func canTransition(from, to domain.OrderStatus) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func insufficientStock(p domain.Product) error {
	return domain.NewValidationError(fmt.Sprintf("insufficient stock for %s", p.ProductName))
}
