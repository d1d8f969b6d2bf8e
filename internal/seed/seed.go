// Package seed loads demo data for local development.
package seed

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"

	feetemplatedomain "github.com/condovialabs/condovia/internal/feetemplate/domain"
	residentdomain "github.com/condovialabs/condovia/internal/resident/domain"
)

type Params struct {
	fx.In

	Log         *zap.Logger
	ResidentSvc residentdomain.Service
	TemplateSvc feetemplatedomain.Service
}

// Run inserts demo residents and fee templates. It is meant for empty local
// databases and does nothing when residents already exist.
func Run(p Params) error {
	ctx := context.Background()
	log := p.Log.Named("seed")

	existing, err := p.ResidentSvc.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		log.Info("database already seeded, skipping")
		return nil
	}

	residents := []residentdomain.CreateRequest{
		{Name: "Ana Souza", Unit: "101", Block: "A", Email: "ana.souza@example.com"},
		{Name: "Bruno Lima", Unit: "102", Block: "A", Email: "bruno.lima@example.com"},
		{Name: "Carla Mendes", Unit: "201", Block: "B", Email: "carla.mendes@example.com"},
		{Name: "Diego Ferreira", Unit: "202", Block: "B", Email: "diego.ferreira@example.com"},
	}
	for _, req := range residents {
		if _, err := p.ResidentSvc.Create(ctx, req); err != nil {
			return fmt.Errorf("seed resident %q: %w", req.Name, err)
		}
	}

	templates := []feetemplatedomain.CreateRequest{
		{
			Name:          "Taxa Ordinária",
			Description:   "Monthly condominium maintenance fee",
			Category:      feetemplatedomain.CategoryOrdinary,
			DefaultAmount: decimal.NewFromFloat(350.00),
			DueDay:        10,
			Recurring:     true,
		},
		{
			Name:          "Fundo de Reserva",
			Description:   "Reserve fund contribution",
			Category:      feetemplatedomain.CategoryReserveFund,
			DefaultAmount: decimal.NewFromFloat(50.00),
			DueDay:        10,
			Recurring:     true,
		},
		{
			Name:          "Água",
			Description:   "Shared water billing",
			Category:      feetemplatedomain.CategoryWater,
			DefaultAmount: decimal.NewFromFloat(80.00),
			DueDay:        15,
			Recurring:     true,
		},
	}
	for _, req := range templates {
		if _, err := p.TemplateSvc.Create(ctx, req); err != nil {
			return fmt.Errorf("seed template %q: %w", req.Name, err)
		}
	}

	log.Info("seed completed",
		zap.Int("residents", len(residents)),
		zap.Int("templates", len(templates)))
	return nil
}
