package order

import (
	orderdomain "github.com/harborworks/chandlery/internal/order/domain"
	"github.com/harborworks/chandlery/internal/order/repository"
	"github.com/harborworks/chandlery/internal/order/service"
	quotadomain "github.com/harborworks/chandlery/internal/quota/domain"
	"go.uber.org/fx"
)

var Module = fx.Module("order.service",
	fx.Provide(repository.Provide),
	// The quota guard counts orders through this slice of the repository.
	fx.Provide(func(repo orderdomain.Repository) quotadomain.OrderCounter { return repo }),
	fx.Provide(service.NewService),
)
