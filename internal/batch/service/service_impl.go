package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	batchdomain "github.com/condovialabs/condovia/internal/batch/domain"
	chargedomain "github.com/condovialabs/condovia/internal/charge/domain"
	"github.com/condovialabs/condovia/internal/clock"
	feetemplatedomain "github.com/condovialabs/condovia/internal/feetemplate/domain"
	"github.com/condovialabs/condovia/internal/observability"
	residentdomain "github.com/condovialabs/condovia/internal/resident/domain"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Clock        clock.Clock
	Metrics      *observability.Metrics
	ChargeRepo   chargedomain.Repository
	TemplateRepo feetemplatedomain.Repository
	Directory    residentdomain.Directory
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	clock        clock.Clock
	metrics      *observability.Metrics
	chargeRepo   chargedomain.Repository
	templateRepo feetemplatedomain.Repository
	directory    residentdomain.Directory
}

func New(p Params) batchdomain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("batch.service"),
		genID:        p.GenID,
		clock:        p.Clock,
		metrics:      p.Metrics,
		chargeRepo:   p.ChargeRepo,
		templateRepo: p.TemplateRepo,
		directory:    p.Directory,
	}
}

// GenerateBatch expands a template into one pending charge per target
// resident for the competency period. Re-running for the same inputs is safe:
// residents already holding a live charge for the slot come back as skipped.
// Per-resident failures never abort the rest of the batch.
func (s *Service) GenerateBatch(ctx context.Context, req batchdomain.GenerateRequest) (*batchdomain.GenerateResult, error) {
	template, err := s.templateRepo.FindByID(ctx, s.db, req.TemplateID)
	if err != nil {
		return nil, err
	}
	if template == nil {
		return nil, feetemplatedomain.ErrTemplateNotFound
	}
	if !template.Active {
		return nil, feetemplatedomain.ErrTemplateInactive
	}

	period, err := parseCompetencyPeriod(req.CompetencyPeriod)
	if err != nil {
		return nil, err
	}

	dueDate := resolveDueDate(req.DueDate, template.DueDay, period)

	population, preSkipped, err := s.resolvePopulation(ctx, req.ResidentIDs)
	if err != nil {
		return nil, err
	}
	if len(population)+len(preSkipped) == 0 {
		return nil, batchdomain.ErrEmptyPopulation
	}

	result := &batchdomain.GenerateResult{
		Created: []snowflake.ID{},
		Skipped: preSkipped,
	}

	periodToken := req.CompetencyPeriod
	for _, resident := range population {
		chargeID, reason, err := s.generateForResident(ctx, template, resident, periodToken, dueDate)
		if err != nil {
			// One bad resident must not sink the batch for everyone else.
			s.log.Warn("charge generation failed for resident",
				zap.String("resident_id", resident.ID.String()),
				zap.Error(err))
			result.Skipped = append(result.Skipped, batchdomain.SkippedResident{
				ResidentID: resident.ID,
				Reason:     batchdomain.SkipReasonInsertFailed,
			})
			continue
		}
		if reason != "" {
			result.Skipped = append(result.Skipped, batchdomain.SkippedResident{
				ResidentID: resident.ID,
				Reason:     reason,
			})
			continue
		}
		result.Created = append(result.Created, chargeID)
	}

	s.metrics.ChargesCreated.WithLabelValues("batch").Add(float64(len(result.Created)))
	s.log.Info("batch generation finished",
		zap.String("template_id", template.ID.String()),
		zap.String("competency_period", periodToken),
		zap.Int("created", len(result.Created)),
		zap.Int("skipped", len(result.Skipped)))
	return result, nil
}

// generateForResident attempts the insert-or-skip for one resident. The
// pre-check gives a clean skip reason; the uniqueness index on
// (source_template_id, resident_id, competency_period) for non-cancelled rows
// closes the race when two batch runs interleave.
func (s *Service) generateForResident(
	ctx context.Context,
	template *feetemplatedomain.FeeTemplate,
	resident residentdomain.Resident,
	period string,
	dueDate time.Time,
) (snowflake.ID, string, error) {
	exists, err := s.chargeRepo.ExistsNonCancelled(ctx, s.db, template.ID, resident.ID, period)
	if err != nil {
		return 0, "", err
	}
	if exists {
		return 0, batchdomain.SkipReasonAlreadyBilled, nil
	}

	now := s.clock.Now(ctx)
	templateID := template.ID
	charge := &chargedomain.Charge{
		ID:               s.genID.Generate(),
		SourceTemplateID: &templateID,
		ResidentID:       resident.ID,
		Unit:             resident.Unit,
		Block:            resident.Block,
		Description:      fmt.Sprintf("%s (%s)", template.Name, period),
		Amount:           template.DefaultAmount,
		DueDate:          dueDate,
		CompetencyPeriod: &period,
		Status:           chargedomain.StatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.chargeRepo.Insert(ctx, s.db, charge); err != nil {
		if isDuplicateKey(err) {
			return 0, batchdomain.SkipReasonAlreadyBilled, nil
		}
		return 0, "", err
	}
	return charge.ID, "", nil
}

// isDuplicateKey recognizes a lost insert race on the uniqueness index. The
// postgres dialector translates these to gorm.ErrDuplicatedKey; the sqlite
// dialector does not implement gorm's ErrorTranslator, so its raw constraint
// error has to be matched as well.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func (s *Service) resolvePopulation(ctx context.Context, subset []snowflake.ID) ([]residentdomain.Resident, []batchdomain.SkippedResident, error) {
	if len(subset) == 0 {
		residents, err := s.directory.ListActive(ctx)
		if err != nil {
			return nil, nil, err
		}
		return residents, nil, nil
	}

	population := make([]residentdomain.Resident, 0, len(subset))
	var skipped []batchdomain.SkippedResident
	for _, id := range subset {
		resident, err := s.directory.Get(ctx, id)
		if err != nil {
			if errors.Is(err, residentdomain.ErrResidentNotFound) {
				skipped = append(skipped, batchdomain.SkippedResident{
					ResidentID: id,
					Reason:     batchdomain.SkipReasonResidentNotFound,
				})
				continue
			}
			return nil, nil, err
		}
		if resident.Status != residentdomain.ResidentStatusActive {
			skipped = append(skipped, batchdomain.SkippedResident{
				ResidentID: id,
				Reason:     batchdomain.SkipReasonResidentInactive,
			})
			continue
		}
		population = append(population, *resident)
	}
	return population, skipped, nil
}

func parseCompetencyPeriod(token string) (time.Time, error) {
	period, err := time.Parse("2006-01", token)
	if err != nil {
		return time.Time{}, batchdomain.ErrInvalidPeriod
	}
	return period, nil
}

// resolveDueDate applies the template's due day to the competency month,
// clamping to the month's last day. Templates cap due day at 28, so the clamp
// only matters for legacy rows.
func resolveDueDate(override *time.Time, dueDay int, period time.Time) time.Time {
	if override != nil && !override.IsZero() {
		return *override
	}

	lastDay := time.Date(period.Year(), period.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if dueDay > lastDay {
		dueDay = lastDay
	}
	if dueDay < 1 {
		dueDay = 1
	}
	return time.Date(period.Year(), period.Month(), dueDay, 0, 0, 0, 0, time.UTC)
}
