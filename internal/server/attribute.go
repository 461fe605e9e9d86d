package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	attributedomain "github.com/harborworks/chandlery/internal/attribute/domain"
)

type appendSnapshotRequest struct {
	Fields map[string]any `json:"fields"`
}

func (s *Server) AppendSnapshot(c *gin.Context) {
	userID := strings.TrimSpace(c.Param("id"))

	var req appendSnapshotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.attributeSvc.Append(c.Request.Context(), attributedomain.AppendSnapshotRequest{
		UserID: userID,
		Fields: req.Fields,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListSnapshots(c *gin.Context) {
	userID := strings.TrimSpace(c.Param("id"))

	resp, err := s.attributeSvc.List(c.Request.Context(), userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListPendingSnapshots(c *gin.Context) {
	userID := strings.TrimSpace(c.Param("id"))

	resp, err := s.attributeSvc.ListPending(c.Request.Context(), userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ApproveSnapshot(c *gin.Context) {
	userID := strings.TrimSpace(c.Param("id"))
	snapshotID := strings.TrimSpace(c.Param("snapshot_id"))

	resp, err := s.attributeSvc.Approve(c.Request.Context(), attributedomain.ApproveSnapshotRequest{
		UserID:     userID,
		SnapshotID: snapshotID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
