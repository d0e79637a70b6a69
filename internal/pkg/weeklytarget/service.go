// Package weeklytarget computes driver remittance targets on Sunday-anchored
// weeks, carrying any unmet shortfall from the previous week into the current
// week's total.
package weeklytarget

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/manyinyire/fleetbackend/app/models"
	"github.com/manyinyire/fleetbackend/internal/pkg/apperr"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service implements the weekly target business rules over an injected
// repository.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates a weekly target service from an injected repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// NewServiceFromDB creates a weekly target service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(NewRepository(db))
}

// GetOrCreateWeeklyTarget returns the driver's target for the current week,
// creating it lazily on first touch. Creation is idempotent per
// (driver, week start): an existing record is returned unchanged. A new
// record picks up the previous week's closing shortfall as carried debt.
func (s *Service) GetOrCreateWeeklyTarget(ctx context.Context, driverID, vehicleID uint, baseTarget decimal.Decimal) (*models.WeeklyTarget, error) {
	if baseTarget.IsNegative() {
		return nil, apperr.Validation("base target must not be negative, got %s", baseTarget)
	}

	driver, err := s.getDriver(driverID, "get or create weekly target")
	if err != nil {
		return nil, err
	}
	if _, err := s.getVehicle(vehicleID); err != nil {
		return nil, err
	}

	now := s.now()
	weekStart := WeekStartFor(now)

	existing, err := s.repo.GetTargetByDriverAndWeek(driverID, weekStart)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Errorw("weekly target lookup failed", "driver_id", driverID, "week_start", weekStart, "error", err)
		return nil, apperr.Internal(err, "loading weekly target for driver %d", driverID)
	}

	// No record this week: carry the previous week's closing shortfall.
	carriedDebt := decimal.Zero
	prev, perr := s.repo.GetTargetByDriverAndWeek(driverID, weekStart.AddDate(0, 0, -7))
	if perr == nil {
		carriedDebt = prev.Shortfall
	} else if !errors.Is(perr, gorm.ErrRecordNotFound) {
		log.Errorw("previous week lookup failed", "driver_id", driverID, "week_start", weekStart, "error", perr)
		return nil, apperr.Internal(perr, "loading previous week for driver %d", driverID)
	}

	totalTarget := baseTarget.Add(carriedDebt)
	target := &models.WeeklyTarget{
		DriverID:      driverID,
		VehicleID:     vehicleID,
		WeekStart:     weekStart,
		WeekEnd:       WeekEndFor(now),
		BaseTarget:    baseTarget.Round(2),
		CarriedDebt:   carriedDebt.Round(2),
		TotalTarget:   totalTarget.Round(2),
		TotalRemitted: decimal.Zero,
		Shortfall:     totalTarget.Round(2),
		Status:        models.WeeklyTargetStatusActive,
	}

	if err := s.repo.CreateTarget(target); err != nil {
		log.Errorw("weekly target creation failed", "driver_id", driverID, "week_start", weekStart, "error", err)
		return nil, apperr.Internal(err, "creating weekly target for driver %d", driverID)
	}

	log.Infow("weekly target created",
		"driver_id", driverID, "driver", driver.FullName, "week_start", weekStart,
		"base_target", baseTarget.String(), "carried_debt", carriedDebt.String())
	return target, nil
}

// UpdateTargetWithRemittance posts a remittance amount against the target of
// the week containing date. The target must already exist. Shortfall never
// goes below zero; overpayment is not tracked as credit.
func (s *Service) UpdateTargetWithRemittance(ctx context.Context, driverID uint, amount decimal.Decimal, date time.Time) (*models.WeeklyTarget, error) {
	if !amount.IsPositive() {
		return nil, apperr.Validation("remittance amount must be positive, got %s", amount)
	}

	weekStart := WeekStartFor(date)
	target, err := s.repo.GetTargetByDriverAndWeek(driverID, weekStart)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("no weekly target for driver %d in week of %s", driverID, weekStart.Format("2006-01-02"))
		}
		log.Errorw("weekly target lookup failed", "driver_id", driverID, "week_start", weekStart, "error", err)
		return nil, apperr.Internal(err, "loading weekly target for driver %d", driverID)
	}

	target.TotalRemitted = target.TotalRemitted.Add(amount).Round(2)
	shortfall := target.TotalTarget.Sub(target.TotalRemitted)
	if shortfall.IsNegative() {
		shortfall = decimal.Zero
	}
	target.Shortfall = shortfall.Round(2)

	if err := s.repo.UpdateTarget(target); err != nil {
		log.Errorw("weekly target update failed", "driver_id", driverID, "target_id", target.ID, "error", err)
		return nil, apperr.Internal(err, "updating weekly target %d", target.ID)
	}

	log.Infow("remittance posted to weekly target",
		"driver_id", driverID, "target_id", target.ID,
		"amount", amount.String(), "total_remitted", target.TotalRemitted.String(),
		"shortfall", target.Shortfall.String())
	return target, nil
}

// RecordRemittance persists the remittance row and posts it against the
// week's target in one transaction.
func (s *Service) RecordRemittance(ctx context.Context, in RemittanceInput) (*models.WeeklyTarget, error) {
	if !in.Amount.IsPositive() {
		return nil, apperr.Validation("remittance amount must be positive, got %s", in.Amount)
	}
	if in.RemittedAt.IsZero() {
		in.RemittedAt = s.now()
	}

	var updated *models.WeeklyTarget
	err := s.repo.Transaction(func(tx Repository) error {
		if cerr := tx.CreateRemittance(&models.Remittance{
			TenantID:   in.TenantID,
			DriverID:   in.DriverID,
			VehicleID:  in.VehicleID,
			Amount:     in.Amount.Round(2),
			RemittedAt: in.RemittedAt,
			Status:     models.RemittanceStatusApproved,
			Notes:      in.Notes,
		}); cerr != nil {
			return cerr
		}

		svc := &Service{repo: tx, now: s.now}
		t, uerr := svc.UpdateTargetWithRemittance(ctx, in.DriverID, in.Amount, in.RemittedAt)
		if uerr != nil {
			return uerr
		}
		updated = t
		return nil
	})
	if err != nil {
		if apperr.IsNotFound(err) || apperr.IsValidation(err) || apperr.IsInternal(err) {
			return nil, err
		}
		log.Errorw("remittance recording failed", "driver_id", in.DriverID, "error", err)
		return nil, apperr.Internal(err, "recording remittance for driver %d", in.DriverID)
	}
	return updated, nil
}

// CloseLastWeek finalizes all still-active targets of the previous week so
// their shortfall becomes available as next week's carried debt. Intended to
// be invoked once per week by an external trigger; the service owns no timer.
func (s *Service) CloseLastWeek(ctx context.Context) ([]models.WeeklyTarget, error) {
	now := s.now()
	lastWeekStart := PreviousWeekStart(now)

	targets, err := s.repo.ListActiveTargetsByWeek(lastWeekStart)
	if err != nil {
		log.Errorw("week close scan failed", "week_start", lastWeekStart, "error", err)
		return nil, apperr.Internal(err, "listing active targets for week of %s", lastWeekStart.Format("2006-01-02"))
	}

	closed := make([]models.WeeklyTarget, 0, len(targets))
	for i := range targets {
		t := &targets[i]
		t.Status = models.WeeklyTargetStatusClosed
		closedAt := now
		t.ClosedAt = &closedAt
		if err := s.repo.UpdateTarget(t); err != nil {
			log.Errorw("week close failed", "target_id", t.ID, "driver_id", t.DriverID, "error", err)
			return nil, apperr.Internal(err, "closing weekly target %d", t.ID)
		}
		closed = append(closed, *t)
	}

	log.Infow("weekly targets closed", "week_start", lastWeekStart, "count", len(closed))
	return closed, nil
}

// GetDriverWeekSummary returns the display summary for the driver's week
// containing date.
func (s *Service) GetDriverWeekSummary(ctx context.Context, driverID uint, date time.Time) (*WeekSummary, error) {
	driver, err := s.getDriver(driverID, "get driver week summary")
	if err != nil {
		return nil, err
	}

	weekStart := WeekStartFor(date)
	target, err := s.repo.GetTargetByDriverAndWeek(driverID, weekStart)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("no weekly target for driver %d in week of %s", driverID, weekStart.Format("2006-01-02"))
		}
		log.Errorw("weekly target lookup failed", "driver_id", driverID, "week_start", weekStart, "error", err)
		return nil, apperr.Internal(err, "loading weekly target for driver %d", driverID)
	}

	summary := summarize(target)
	summary.DriverName = driver.FullName
	return summary, nil
}

// GetAllDriversWeekSummary returns summaries for every target in the week
// containing date.
func (s *Service) GetAllDriversWeekSummary(ctx context.Context, date time.Time) ([]WeekSummary, error) {
	weekStart := WeekStartFor(date)
	targets, err := s.repo.ListTargetsByWeek(weekStart)
	if err != nil {
		log.Errorw("weekly summary listing failed", "week_start", weekStart, "error", err)
		return nil, apperr.Internal(err, "listing targets for week of %s", weekStart.Format("2006-01-02"))
	}

	summaries := make([]WeekSummary, 0, len(targets))
	for i := range targets {
		sum := summarize(&targets[i])
		if targets[i].Driver != nil {
			sum.DriverName = targets[i].Driver.FullName
		}
		summaries = append(summaries, *sum)
	}
	return summaries, nil
}

// GetDriverHistory returns the driver's most recent weekly targets, newest
// first.
func (s *Service) GetDriverHistory(ctx context.Context, driverID uint, limit int) ([]models.WeeklyTarget, error) {
	if _, err := s.getDriver(driverID, "get driver history"); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 12
	}
	targets, err := s.repo.ListTargetsByDriver(driverID, limit)
	if err != nil {
		log.Errorw("driver history listing failed", "driver_id", driverID, "error", err)
		return nil, apperr.Internal(err, "listing target history for driver %d", driverID)
	}
	return targets, nil
}

func (s *Service) getDriver(driverID uint, op string) (*models.Driver, error) {
	driver, err := s.repo.GetDriver(driverID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("driver %d not found", driverID)
		}
		log.Errorw("driver lookup failed", "driver_id", driverID, "operation", op, "error", err)
		return nil, apperr.Internal(err, "loading driver %d", driverID)
	}
	return driver, nil
}

func (s *Service) getVehicle(vehicleID uint) (*models.Vehicle, error) {
	vehicle, err := s.repo.GetVehicle(vehicleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("vehicle %d not found", vehicleID)
		}
		log.Errorw("vehicle lookup failed", "vehicle_id", vehicleID, "error", err)
		return nil, apperr.Internal(err, "loading vehicle %d", vehicleID)
	}
	return vehicle, nil
}

func summarize(t *models.WeeklyTarget) *WeekSummary {
	return &WeekSummary{
		DriverID:          t.DriverID,
		VehicleID:         t.VehicleID,
		WeekStart:         t.WeekStart,
		WeekEnd:           t.WeekEnd,
		BaseTarget:        t.BaseTarget,
		CarriedDebt:       t.CarriedDebt,
		TotalTarget:       t.TotalTarget,
		TotalRemitted:     t.TotalRemitted,
		Shortfall:         t.Shortfall,
		CompletionPercent: t.CompletionPercent(),
		Status:            t.Status,
	}
}
