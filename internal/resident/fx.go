package resident

import (
	"go.uber.org/fx"

	"github.com/condovialabs/condovia/internal/resident/domain"
	"github.com/condovialabs/condovia/internal/resident/repository"
	"github.com/condovialabs/condovia/internal/resident/service"
)

var Module = fx.Module("resident.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
	fx.Provide(func(s domain.Service) domain.Directory { return s }),
)
