package feetemplate

import (
	"go.uber.org/fx"

	"github.com/condovialabs/condovia/internal/feetemplate/repository"
	"github.com/condovialabs/condovia/internal/feetemplate/service"
)

var Module = fx.Module("feetemplate.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
