package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/harborworks/chandlery/internal/clock"
	userdomain "github.com/harborworks/chandlery/internal/user/domain"
	"github.com/harborworks/chandlery/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID *snowflake.Node
	clock clock.Clock
	repo  userdomain.Repository
}

type ServiceParam struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  userdomain.Repository
}

func NewService(p ServiceParam) userdomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("user.service"),

		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req userdomain.CreateUserRequest) (userdomain.UserResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return userdomain.UserResponse{}, userdomain.ErrInvalidEmail
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return userdomain.UserResponse{}, userdomain.ErrInvalidName
	}

	role, err := userdomain.ParseRole(req.Role)
	if err != nil {
		return userdomain.UserResponse{}, err
	}

	now := s.clock.Now()
	user := userdomain.User{
		ID:        s.genID.Generate(),
		Email:     email,
		Name:      name,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Insert(ctx, s.db, &user); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return userdomain.UserResponse{}, userdomain.ErrUserExists
		}
		return userdomain.UserResponse{}, err
	}

	s.log.Info("user created",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)),
	)

	return toResponse(user), nil
}

func (s *Service) GetByID(ctx context.Context, id string) (userdomain.UserResponse, error) {
	userID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || userID == 0 {
		return userdomain.UserResponse{}, userdomain.ErrInvalidUser
	}

	user, err := s.repo.FindByID(ctx, s.db, userID)
	if err != nil {
		return userdomain.UserResponse{}, err
	}
	if user == nil {
		return userdomain.UserResponse{}, userdomain.ErrUserNotFound
	}

	return toResponse(*user), nil
}

// RequireRole implements the shared role guard in front of role-scoped writes.
func (s *Service) RequireRole(ctx context.Context, userID snowflake.ID, role userdomain.Role) error {
	user, err := s.repo.FindByID(ctx, s.db, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return userdomain.ErrUserNotFound
	}
	if user.Role == role {
		return nil
	}

	switch role {
	case userdomain.RoleBuyer:
		return userdomain.ErrUserNotBuyer
	case userdomain.RoleSeller:
		return userdomain.ErrUserNotSeller
	case userdomain.RoleAdmin:
		return userdomain.ErrUserNotAdmin
	default:
		return userdomain.ErrInvalidRole
	}
}

func toResponse(user userdomain.User) userdomain.UserResponse {
	resp := userdomain.UserResponse{
		ID:    user.ID.String(),
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role,
	}
	if user.ApprovedSnapshotID != nil {
		id := user.ApprovedSnapshotID.String()
		resp.ApprovedSnapshotID = &id
	}
	return resp
}
