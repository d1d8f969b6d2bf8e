package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/condovialabs/condovia/internal/clock"
	feetemplatedomain "github.com/condovialabs/condovia/internal/feetemplate/domain"
)

// Due day is capped at 28 so every competency month has the day. Batch
// generation still clamps defensively.
const maxDueDay = 28

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  feetemplatedomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  feetemplatedomain.Repository
}

func New(p Params) feetemplatedomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("feetemplate.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req feetemplatedomain.CreateRequest) (*feetemplatedomain.FeeTemplate, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, feetemplatedomain.ErrInvalidName
	}
	if !req.Category.Valid() {
		return nil, feetemplatedomain.ErrInvalidCategory
	}
	if !req.DefaultAmount.IsPositive() {
		return nil, feetemplatedomain.ErrInvalidAmount
	}
	if req.DueDay < 1 || req.DueDay > maxDueDay {
		return nil, feetemplatedomain.ErrInvalidDueDay
	}

	now := s.clock.Now(ctx)
	template := &feetemplatedomain.FeeTemplate{
		ID:            s.genID.Generate(),
		Name:          name,
		Description:   strings.TrimSpace(req.Description),
		Category:      req.Category,
		DefaultAmount: req.DefaultAmount,
		DueDay:        req.DueDay,
		Recurring:     req.Recurring,
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Insert(ctx, s.db, template); err != nil {
		return nil, err
	}
	return template, nil
}

func (s *Service) Update(ctx context.Context, id snowflake.ID, req feetemplatedomain.UpdateRequest) (*feetemplatedomain.FeeTemplate, error) {
	template, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, feetemplatedomain.ErrInvalidName
		}
		template.Name = name
	}
	if req.Description != nil {
		template.Description = strings.TrimSpace(*req.Description)
	}
	if req.Category != nil {
		if !req.Category.Valid() {
			return nil, feetemplatedomain.ErrInvalidCategory
		}
		template.Category = *req.Category
	}
	if req.DefaultAmount != nil {
		if !req.DefaultAmount.IsPositive() {
			return nil, feetemplatedomain.ErrInvalidAmount
		}
		template.DefaultAmount = *req.DefaultAmount
	}
	if req.DueDay != nil {
		if *req.DueDay < 1 || *req.DueDay > maxDueDay {
			return nil, feetemplatedomain.ErrInvalidDueDay
		}
		template.DueDay = *req.DueDay
	}
	if req.Recurring != nil {
		template.Recurring = *req.Recurring
	}

	template.UpdatedAt = s.clock.Now(ctx)
	if err := s.repo.Update(ctx, s.db, template); err != nil {
		return nil, err
	}
	return template, nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*feetemplatedomain.FeeTemplate, error) {
	template, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if template == nil {
		return nil, feetemplatedomain.ErrTemplateNotFound
	}
	return template, nil
}

func (s *Service) List(ctx context.Context, onlyActive bool) ([]feetemplatedomain.FeeTemplate, error) {
	return s.repo.List(ctx, s.db, onlyActive)
}

// Deactivate is idempotent and never mutates charges already generated from
// the template.
func (s *Service) Deactivate(ctx context.Context, id snowflake.ID) (*feetemplatedomain.FeeTemplate, error) {
	template, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !template.Active {
		return template, nil
	}

	template.Active = false
	template.UpdatedAt = s.clock.Now(ctx)
	if err := s.repo.Update(ctx, s.db, template); err != nil {
		return nil, err
	}
	return template, nil
}

func (s *Service) Delete(ctx context.Context, id snowflake.ID) error {
	template, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	referencing, err := s.repo.CountCharges(ctx, s.db, template.ID)
	if err != nil {
		return err
	}
	if referencing > 0 {
		return feetemplatedomain.ErrConflict
	}

	return s.repo.Delete(ctx, s.db, template.ID)
}
