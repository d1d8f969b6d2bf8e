package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/condovialabs/condovia/internal/clock"
	residentdomain "github.com/condovialabs/condovia/internal/resident/domain"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  residentdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  residentdomain.Repository
}

func New(p Params) residentdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("resident.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req residentdomain.CreateRequest) (*residentdomain.Resident, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, residentdomain.ErrInvalidName
	}
	unit := strings.TrimSpace(req.Unit)
	if unit == "" {
		return nil, residentdomain.ErrInvalidUnit
	}

	now := s.clock.Now(ctx)
	resident := &residentdomain.Resident{
		ID:        s.genID.Generate(),
		Name:      name,
		Unit:      unit,
		Block:     strings.TrimSpace(req.Block),
		Email:     strings.TrimSpace(req.Email),
		Status:    residentdomain.ResidentStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Insert(ctx, s.db, resident); err != nil {
		return nil, err
	}
	return resident, nil
}

func (s *Service) List(ctx context.Context) ([]residentdomain.Resident, error) {
	return s.repo.List(ctx, s.db, nil)
}

func (s *Service) ListActive(ctx context.Context) ([]residentdomain.Resident, error) {
	active := residentdomain.ResidentStatusActive
	return s.repo.List(ctx, s.db, &active)
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*residentdomain.Resident, error) {
	resident, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if resident == nil {
		return nil, residentdomain.ErrResidentNotFound
	}
	return resident, nil
}

func (s *Service) Deactivate(ctx context.Context, id snowflake.ID) (*residentdomain.Resident, error) {
	resident, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if resident.Status == residentdomain.ResidentStatusInactive {
		return resident, nil
	}
	if err := s.repo.UpdateStatus(ctx, s.db, id, residentdomain.ResidentStatusInactive); err != nil {
		return nil, err
	}
	resident.Status = residentdomain.ResidentStatusInactive
	return resident, nil
}
