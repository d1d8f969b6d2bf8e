package batch

import (
	"go.uber.org/fx"

	"github.com/condovialabs/condovia/internal/batch/service"
)

var Module = fx.Module("batch.service",
	fx.Provide(service.New),
)
