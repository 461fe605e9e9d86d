package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/harborworks/chandlery/internal/clock"
	orderdomain "github.com/harborworks/chandlery/internal/order/domain"
	quotadomain "github.com/harborworks/chandlery/internal/quota/domain"
	userdomain "github.com/harborworks/chandlery/internal/user/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID   *snowflake.Node
	clock   clock.Clock
	repo    orderdomain.Repository
	usersvc userdomain.Service
	quota   quotadomain.Service
}

type ServiceParam struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Repo    orderdomain.Repository
	UserSvc userdomain.Service
	Quota   quotadomain.Service
}

func NewService(p ServiceParam) orderdomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("order.service"),

		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		usersvc: p.UserSvc,
		quota:   p.Quota,
	}
}

func (s *Service) Create(ctx context.Context, req orderdomain.CreateOrderRequest) (orderdomain.OrderView, error) {
	buyerID, err := parseID(req.BuyerID, orderdomain.ErrInvalidOrder)
	if err != nil {
		return orderdomain.OrderView{}, err
	}
	if err := validateItems(req.Items); err != nil {
		return orderdomain.OrderView{}, err
	}
	if err := s.usersvc.RequireRole(ctx, buyerID, userdomain.RoleBuyer); err != nil {
		return orderdomain.OrderView{}, err
	}

	now := s.clock.Now()
	order := orderdomain.Order{
		ID:        s.genID.Generate(),
		BuyerID:   buyerID,
		Status:    orderdomain.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	items := make([]orderdomain.OrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, orderdomain.OrderItem{
			ID:         s.genID.Generate(),
			OrderID:    order.ID,
			IMPACode:   item.IMPACode,
			Quantity:   item.Quantity,
			PortLocode: strings.ToUpper(item.PortLocode),
		})
	}

	// Guard and insert share one transaction: the quota guard's row lock
	// on the ledger entry must cover the order insert, or two concurrent
	// submissions could both pass the count and overrun the cap.
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.quota.Authorize(ctx, tx, buyerID, now); err != nil {
			return err
		}
		if err := s.repo.Insert(ctx, tx, &order); err != nil {
			return err
		}
		return s.repo.InsertItems(ctx, tx, items)
	})
	if err != nil {
		return orderdomain.OrderView{}, err
	}

	s.log.Info("order created",
		zap.String("order_id", order.ID.String()),
		zap.String("buyer_id", buyerID.String()),
		zap.Int("items", len(items)),
	)

	return toView(order, items, nil), nil
}

func (s *Service) GetByID(ctx context.Context, id string) (orderdomain.OrderView, error) {
	orderID, err := parseID(id, orderdomain.ErrOrderNotFound)
	if err != nil {
		return orderdomain.OrderView{}, err
	}

	order, err := s.repo.FindByID(ctx, s.db, orderID)
	if err != nil {
		return orderdomain.OrderView{}, err
	}
	if order == nil {
		return orderdomain.OrderView{}, orderdomain.ErrOrderNotFound
	}

	items, err := s.repo.ListItems(ctx, s.db, orderID)
	if err != nil {
		return orderdomain.OrderView{}, err
	}
	responses, err := s.repo.ListResponses(ctx, s.db, orderID)
	if err != nil {
		return orderdomain.OrderView{}, err
	}
	return toView(*order, items, responses), nil
}

func (s *Service) ListByBuyer(ctx context.Context, buyerID string) ([]orderdomain.OrderView, error) {
	id, err := parseID(buyerID, orderdomain.ErrInvalidOrder)
	if err != nil {
		return nil, err
	}
	if _, err := s.usersvc.GetByID(ctx, buyerID); err != nil {
		return nil, err
	}

	orders, err := s.repo.ListByBuyer(ctx, s.db, id)
	if err != nil {
		return nil, err
	}

	views := make([]orderdomain.OrderView, 0, len(orders))
	for _, order := range orders {
		items, err := s.repo.ListItems(ctx, s.db, order.ID)
		if err != nil {
			return nil, err
		}
		views = append(views, toView(order, items, nil))
	}
	return views, nil
}

func (s *Service) RespondToOrder(ctx context.Context, req orderdomain.RespondRequest) (orderdomain.SellerResponseView, error) {
	orderID, err := parseID(req.OrderID, orderdomain.ErrOrderNotFound)
	if err != nil {
		return orderdomain.SellerResponseView{}, err
	}
	sellerID, err := parseID(req.SellerID, userdomain.ErrUserNotFound)
	if err != nil {
		return orderdomain.SellerResponseView{}, err
	}
	if req.PriceCents < 0 {
		return orderdomain.SellerResponseView{}, orderdomain.ErrInvalidOrder
	}

	if err := s.usersvc.RequireRole(ctx, sellerID, userdomain.RoleSeller); err != nil {
		return orderdomain.SellerResponseView{}, err
	}

	order, err := s.repo.FindByID(ctx, s.db, orderID)
	if err != nil {
		return orderdomain.SellerResponseView{}, err
	}
	if order == nil {
		return orderdomain.SellerResponseView{}, orderdomain.ErrOrderNotFound
	}

	resp := orderdomain.OrderResponse{
		ID:         s.genID.Generate(),
		OrderID:    orderID,
		SellerID:   sellerID,
		Message:    strings.TrimSpace(req.Message),
		PriceCents: req.PriceCents,
		CreatedAt:  s.clock.Now(),
	}
	if err := s.repo.InsertResponse(ctx, s.db, &resp); err != nil {
		return orderdomain.SellerResponseView{}, err
	}

	s.log.Info("seller responded to order",
		zap.String("order_id", orderID.String()),
		zap.String("seller_id", sellerID.String()),
	)

	return toResponseView(resp), nil
}

func (s *Service) Transition(ctx context.Context, req orderdomain.TransitionRequest) (orderdomain.OrderView, error) {
	orderID, err := parseID(req.OrderID, orderdomain.ErrOrderNotFound)
	if err != nil {
		return orderdomain.OrderView{}, err
	}
	status := orderdomain.OrderStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	if !status.Valid() {
		return orderdomain.OrderView{}, orderdomain.ErrInvalidStatus
	}

	order, err := s.repo.FindByID(ctx, s.db, orderID)
	if err != nil {
		return orderdomain.OrderView{}, err
	}
	if order == nil {
		return orderdomain.OrderView{}, orderdomain.ErrOrderNotFound
	}

	now := s.clock.Now()
	if err := s.repo.UpdateStatus(ctx, s.db, orderID, status, now); err != nil {
		return orderdomain.OrderView{}, err
	}
	order.Status = status
	order.UpdatedAt = now

	items, err := s.repo.ListItems(ctx, s.db, orderID)
	if err != nil {
		return orderdomain.OrderView{}, err
	}
	return toView(*order, items, nil), nil
}

func validateItems(items []orderdomain.CreateOrderItem) error {
	if len(items) == 0 {
		return orderdomain.ErrInvalidItems
	}
	for _, item := range items {
		if !orderdomain.ValidIMPACode(item.IMPACode) {
			return orderdomain.ErrInvalidItems
		}
		if item.Quantity <= 0 {
			return orderdomain.ErrInvalidItems
		}
		if !orderdomain.ValidPortLocode(strings.ToUpper(item.PortLocode)) {
			return orderdomain.ErrInvalidItems
		}
	}
	return nil
}

func toView(order orderdomain.Order, items []orderdomain.OrderItem, responses []orderdomain.OrderResponse) orderdomain.OrderView {
	view := orderdomain.OrderView{
		ID:        order.ID.String(),
		BuyerID:   order.BuyerID.String(),
		Status:    order.Status,
		CreatedAt: order.CreatedAt,
	}
	for _, item := range items {
		view.Items = append(view.Items, orderdomain.OrderItemView{
			ID:         item.ID.String(),
			IMPACode:   item.IMPACode,
			Quantity:   item.Quantity,
			PortLocode: item.PortLocode,
		})
	}
	for _, resp := range responses {
		view.Responses = append(view.Responses, toResponseView(resp))
	}
	return view
}

func toResponseView(resp orderdomain.OrderResponse) orderdomain.SellerResponseView {
	return orderdomain.SellerResponseView{
		ID:         resp.ID.String(),
		SellerID:   resp.SellerID.String(),
		Message:    resp.Message,
		PriceCents: resp.PriceCents,
		CreatedAt:  resp.CreatedAt,
	}
}

func parseID(value string, invalidErr error) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, invalidErr
	}
	return id, nil
}
