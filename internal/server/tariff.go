package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	tariffdomain "github.com/harborworks/chandlery/internal/tariff/domain"
)

type createTariffRequest struct {
	Name                string `json:"name"`
	MaxOrdersPerMonth   int    `json:"max_orders_per_month"`
	PriceCents          int64  `json:"price_cents"`
	BillingPeriodMonths int    `json:"billing_period_months"`
}

func (s *Server) CreateTariff(c *gin.Context) {
	var req createTariffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.tariffSvc.Create(c.Request.Context(), tariffdomain.CreateTariffRequest{
		Name:                strings.TrimSpace(req.Name),
		MaxOrdersPerMonth:   req.MaxOrdersPerMonth,
		PriceCents:          req.PriceCents,
		BillingPeriodMonths: req.BillingPeriodMonths,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListTariffs(c *gin.Context) {
	resp, err := s.tariffSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetTariff(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))

	resp, err := s.tariffSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
