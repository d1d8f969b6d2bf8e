package charge

import (
	"go.uber.org/fx"

	"github.com/condovialabs/condovia/internal/charge/repository"
	"github.com/condovialabs/condovia/internal/charge/service"
)

var Module = fx.Module("charge.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
