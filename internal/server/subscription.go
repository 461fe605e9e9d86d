package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/harborworks/chandlery/internal/actorcontext"
	quotadomain "github.com/harborworks/chandlery/internal/quota/domain"
)

type subscribeRequest struct {
	TariffID string     `json:"tariff_id"`
	Anchor   *time.Time `json:"anchor,omitempty"`
}

// Subscribe activates the acting buyer's tariff subscription. Any existing
// active entry is deactivated in the same transaction.
func (s *Server) Subscribe(c *gin.Context) {
	actorID, ok := actorcontext.ActorIDFromContext(c.Request.Context())
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req subscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.quotaSvc.Subscribe(c.Request.Context(), quotadomain.SubscribeRequest{
		BuyerID:  actorID.String(),
		TariffID: strings.TrimSpace(req.TariffID),
		Anchor:   req.Anchor,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ActiveSubscription(c *gin.Context) {
	actorID, ok := actorcontext.ActorIDFromContext(c.Request.Context())
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	resp, err := s.quotaSvc.ActiveSubscription(c.Request.Context(), actorID.String())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
