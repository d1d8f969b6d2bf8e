package reporting

import (
	"go.uber.org/fx"

	"github.com/condovialabs/condovia/internal/reporting/service"
)

var Module = fx.Module("reporting.service",
	fx.Provide(service.New),
)
