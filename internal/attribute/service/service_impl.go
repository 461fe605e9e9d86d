package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	attributedomain "github.com/harborworks/chandlery/internal/attribute/domain"
	"github.com/harborworks/chandlery/internal/clock"
	userdomain "github.com/harborworks/chandlery/internal/user/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID    *snowflake.Node
	clock    clock.Clock
	repo     attributedomain.Repository
	userRepo userdomain.Repository
}

type ServiceParam struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Repo     attributedomain.Repository
	UserRepo userdomain.Repository
}

func NewService(p ServiceParam) attributedomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("attribute.service"),

		genID:    p.GenID,
		clock:    p.Clock,
		repo:     p.Repo,
		userRepo: p.UserRepo,
	}
}

// Append implements the snapshot log's only write path: a pure insert.
// Older snapshots are never touched.
func (s *Service) Append(ctx context.Context, req attributedomain.AppendSnapshotRequest) (attributedomain.SnapshotResponse, error) {
	userID, err := s.parseID(req.UserID, attributedomain.ErrInvalidUser)
	if err != nil {
		return attributedomain.SnapshotResponse{}, err
	}

	if len(req.Fields) == 0 {
		return attributedomain.SnapshotResponse{}, attributedomain.ErrMissingFields
	}

	user, err := s.userRepo.FindByID(ctx, s.db, userID)
	if err != nil {
		return attributedomain.SnapshotResponse{}, err
	}
	if user == nil {
		return attributedomain.SnapshotResponse{}, attributedomain.ErrUserNotFound
	}

	snapshot := attributedomain.AttributeSnapshot{
		ID:        s.genID.Generate(),
		UserID:    userID,
		Fields:    datatypes.JSONMap(req.Fields),
		CreatedAt: s.clock.Now(),
	}

	if err := s.repo.Insert(ctx, s.db, &snapshot); err != nil {
		return attributedomain.SnapshotResponse{}, err
	}

	s.log.Info("attribute snapshot appended",
		zap.String("user_id", userID.String()),
		zap.String("snapshot_id", snapshot.ID.String()),
	)

	// A fresh snapshot postdates any approval pointer, so it is pending
	// by definition.
	resp := s.toResponse(snapshot, nil, nil)
	resp.Status = attributedomain.StatusPending
	return resp, nil
}

func (s *Service) List(ctx context.Context, userID string) ([]attributedomain.SnapshotResponse, error) {
	id, err := s.parseID(userID, attributedomain.ErrInvalidUser)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, attributedomain.ErrUserNotFound
	}

	snapshots, err := s.repo.ListByUser(ctx, s.db, id)
	if err != nil {
		return nil, err
	}

	pointer, err := s.loadPointer(ctx, user.ApprovedSnapshotID, snapshots)
	if err != nil {
		return nil, err
	}

	out := make([]attributedomain.SnapshotResponse, 0, len(snapshots))
	for _, snapshot := range snapshots {
		out = append(out, s.toResponse(snapshot, user.ApprovedSnapshotID, pointer))
	}
	return out, nil
}

func (s *Service) ListPending(ctx context.Context, userID string) ([]attributedomain.SnapshotResponse, error) {
	all, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	pending := make([]attributedomain.SnapshotResponse, 0, len(all))
	for _, snapshot := range all {
		if snapshot.Status == attributedomain.StatusPending {
			pending = append(pending, snapshot)
		}
	}
	return pending, nil
}

// Approve moves the approval pointer and stamps the snapshot inside one
// transaction. The user row lock serializes concurrent approvals for the
// same user.
func (s *Service) Approve(ctx context.Context, req attributedomain.ApproveSnapshotRequest) (attributedomain.SnapshotResponse, error) {
	userID, err := s.parseID(req.UserID, attributedomain.ErrInvalidUser)
	if err != nil {
		return attributedomain.SnapshotResponse{}, err
	}
	snapshotID, err := s.parseID(req.SnapshotID, attributedomain.ErrInvalidSnapshot)
	if err != nil {
		return attributedomain.SnapshotResponse{}, err
	}

	var approved attributedomain.AttributeSnapshot
	err = s.db.Transaction(func(tx *gorm.DB) error {
		user, err := s.userRepo.FindByIDForUpdate(ctx, tx, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return attributedomain.ErrUserNotFound
		}

		snapshot, err := s.repo.FindByID(ctx, tx, snapshotID)
		if err != nil {
			return err
		}
		if snapshot == nil || snapshot.UserID != userID {
			return attributedomain.ErrSnapshotNotFound
		}

		now := s.clock.Now()
		if err := s.repo.StampApproved(ctx, tx, snapshotID, now); err != nil {
			return err
		}
		if err := s.userRepo.SetApprovedSnapshotID(ctx, tx, userID, snapshotID); err != nil {
			return err
		}

		snapshot.ApprovedAt = &now
		approved = *snapshot
		return nil
	})
	if err != nil {
		return attributedomain.SnapshotResponse{}, err
	}

	s.log.Info("attribute snapshot approved",
		zap.String("user_id", userID.String()),
		zap.String("snapshot_id", snapshotID.String()),
	)

	pointerID := approved.ID
	return s.toResponse(approved, &pointerID, &approved), nil
}

func (s *Service) loadPointer(
	ctx context.Context,
	approvedID *snowflake.ID,
	snapshots []attributedomain.AttributeSnapshot,
) (*attributedomain.AttributeSnapshot, error) {
	if approvedID == nil {
		return nil, nil
	}
	for i := range snapshots {
		if snapshots[i].ID == *approvedID {
			return &snapshots[i], nil
		}
	}
	// Pointer references a snapshot outside the listed set; resolve directly.
	return s.repo.FindByID(ctx, s.db, *approvedID)
}

func (s *Service) toResponse(
	snapshot attributedomain.AttributeSnapshot,
	approvedID *snowflake.ID,
	pointer *attributedomain.AttributeSnapshot,
) attributedomain.SnapshotResponse {
	return attributedomain.SnapshotResponse{
		ID:         snapshot.ID.String(),
		UserID:     snapshot.UserID.String(),
		Fields:     map[string]any(snapshot.Fields),
		Status:     attributedomain.Classify(snapshot, approvedID, pointer),
		CreatedAt:  snapshot.CreatedAt,
		ApprovedAt: snapshot.ApprovedAt,
	}
}

func (s *Service) parseID(value string, invalidErr error) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, invalidErr
	}
	return id, nil
}
