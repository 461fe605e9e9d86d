package user

import (
	"github.com/harborworks/chandlery/internal/user/repository"
	"github.com/harborworks/chandlery/internal/user/service"
	"go.uber.org/fx"
)

var Module = fx.Module("user.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
