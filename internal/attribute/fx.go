package attribute

import (
	"github.com/harborworks/chandlery/internal/attribute/repository"
	"github.com/harborworks/chandlery/internal/attribute/service"
	"go.uber.org/fx"
)

var Module = fx.Module("attribute.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
