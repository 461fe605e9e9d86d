package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/harborworks/chandlery/internal/actorcontext"
	orderdomain "github.com/harborworks/chandlery/internal/order/domain"
)

type createOrderItemRequest struct {
	IMPACode   string `json:"impa_code"`
	Quantity   int    `json:"quantity"`
	PortLocode string `json:"port_locode"`
}

type createOrderRequest struct {
	Items []createOrderItemRequest `json:"items"`
}

type respondToOrderRequest struct {
	Message    string `json:"message"`
	PriceCents int64  `json:"price_cents"`
}

type transitionOrderRequest struct {
	Status string `json:"status"`
}

// CreateOrder submits an order for the acting buyer. The quota guard runs
// inside the submission transaction.
func (s *Server) CreateOrder(c *gin.Context) {
	actorID, ok := actorcontext.ActorIDFromContext(c.Request.Context())
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	items := make([]orderdomain.CreateOrderItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, orderdomain.CreateOrderItem{
			IMPACode:   strings.TrimSpace(item.IMPACode),
			Quantity:   item.Quantity,
			PortLocode: strings.TrimSpace(item.PortLocode),
		})
	}

	resp, err := s.orderSvc.Create(c.Request.Context(), orderdomain.CreateOrderRequest{
		BuyerID: actorID.String(),
		Items:   items,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListOrders(c *gin.Context) {
	actorID, ok := actorcontext.ActorIDFromContext(c.Request.Context())
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	resp, err := s.orderSvc.ListByBuyer(c.Request.Context(), actorID.String())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetOrder(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	resp, err := s.orderSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// RespondToOrder records the acting seller's reply to an order.
func (s *Server) RespondToOrder(c *gin.Context) {
	actorID, ok := actorcontext.ActorIDFromContext(c.Request.Context())
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	orderID := strings.TrimSpace(c.Param("id"))

	var req respondToOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.orderSvc.RespondToOrder(c.Request.Context(), orderdomain.RespondRequest{
		OrderID:    orderID,
		SellerID:   actorID.String(),
		Message:    req.Message,
		PriceCents: req.PriceCents,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) TransitionOrder(c *gin.Context) {
	orderID := strings.TrimSpace(c.Param("id"))

	var req transitionOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.orderSvc.Transition(c.Request.Context(), orderdomain.TransitionRequest{
		OrderID: orderID,
		Status:  req.Status,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
