// Package statistics caches fleet-wide headline numbers in Redis for the
// dashboard so every page view does not hit the database.
package statistics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"

	"github.com/manyinyire/fleetbackend/app/models"
	"github.com/manyinyire/fleetbackend/internal/pkg/cache"
	"github.com/manyinyire/fleetbackend/internal/pkg/database"
	"github.com/manyinyire/fleetbackend/internal/pkg/weeklytarget"
)

const (
	CacheKeyTenants         = "statistics:tenants:total"
	CacheKeyActiveDrivers   = "statistics:drivers:active"
	CacheKeyVehicles        = "statistics:vehicles:total"
	CacheKeyWeekRemittances = "statistics:remittances:week"
	CacheKeyWeekTargetsOpen = "statistics:targets:week:open"
	CacheExpiration         = 30 * time.Minute
)

// StatisticsData holds the dashboard headline numbers.
type StatisticsData struct {
	TotalTenants      int `json:"total_tenants"`
	ActiveDrivers     int `json:"active_drivers"`
	TotalVehicles     int `json:"total_vehicles"`
	WeekRemittances   int `json:"week_remittances"`
	OpenWeeklyTargets int `json:"open_weekly_targets"`
}

var (
	lastCacheUpdate     time.Time
	cacheUpdateMutex    sync.Mutex
	cacheUpdateInterval = 5 * time.Minute
)

// UpdateCacheIfNeeded refreshes the cached numbers at most once per interval.
func UpdateCacheIfNeeded() {
	cacheUpdateMutex.Lock()
	defer cacheUpdateMutex.Unlock()

	if time.Since(lastCacheUpdate) <= cacheUpdateInterval {
		return
	}
	if err := UpdateStatisticsCache(); err != nil {
		log.Errorw("statistics cache refresh failed", "error", err)
		return
	}
	lastCacheUpdate = time.Now()
}

// UpdateStatisticsCache recomputes every statistic from the database and
// writes it to Redis.
func UpdateStatisticsCache() error {
	db := database.GetDB()
	now := time.Now()
	weekStart := weeklytarget.WeekStartFor(now)

	counts := []struct {
		key   string
		count func() (int64, error)
	}{
		{CacheKeyTenants, func() (int64, error) {
			var n int64
			err := db.Model(&models.Tenant{}).Count(&n).Error
			return n, err
		}},
		{CacheKeyActiveDrivers, func() (int64, error) {
			var n int64
			err := db.Model(&models.Driver{}).Where("status = ?", models.DriverStatusActive).Count(&n).Error
			return n, err
		}},
		{CacheKeyVehicles, func() (int64, error) {
			var n int64
			err := db.Model(&models.Vehicle{}).Count(&n).Error
			return n, err
		}},
		{CacheKeyWeekRemittances, func() (int64, error) {
			var n int64
			err := db.Model(&models.Remittance{}).Where("remitted_at >= ?", weekStart).Count(&n).Error
			return n, err
		}},
		{CacheKeyWeekTargetsOpen, func() (int64, error) {
			var n int64
			err := db.Model(&models.WeeklyTarget{}).
				Where("week_start = ? AND status = ?", weekStart, models.WeeklyTargetStatusActive).
				Count(&n).Error
			return n, err
		}},
	}

	for _, c := range counts {
		n, err := c.count()
		if err != nil {
			return err
		}
		if err := cache.Set(c.key, strconv.FormatInt(n, 10), CacheExpiration); err != nil {
			return err
		}
	}
	return nil
}

// GetStatistics returns the cached dashboard numbers, refreshing the cache
// when it is stale or empty.
func GetStatistics() StatisticsData {
	UpdateCacheIfNeeded()

	return StatisticsData{
		TotalTenants:      cachedInt(CacheKeyTenants),
		ActiveDrivers:     cachedInt(CacheKeyActiveDrivers),
		TotalVehicles:     cachedInt(CacheKeyVehicles),
		WeekRemittances:   cachedInt(CacheKeyWeekRemittances),
		OpenWeeklyTargets: cachedInt(CacheKeyWeekTargetsOpen),
	}
}

func cachedInt(key string) int {
	val, err := cache.Get(key)
	if err != nil {
		return 0
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return n
}
