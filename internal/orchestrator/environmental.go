package orchestrator

import (
	"context"
	"fmt"
	"time"

	"shorewatch/internal/risk"
)

// envLoop refreshes sensor data at a fixed cadence, independent of polling
// mode, until stop closes.
func (o *Orchestrator) envLoop(stop chan struct{}) {
	defer o.wg.Done()

	ticker := time.NewTicker(o.polling.EnvironmentalInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			o.runEnvironmentalCycle(context.Background())
		}
	}
}

// runEnvironmentalCycle fetches NOAA data for every enabled zone, stores the
// snapshot, and folds derived factors into each zone's score. Per-zone
// failures are logged and isolated: one dead station never blocks the rest,
// and a failed fetch leaves the zone's last-known snapshot and factors
// untouched.
func (o *Orchestrator) runEnvironmentalCycle(ctx context.Context) {
	for _, zone := range o.store.EnabledZones() {
		data, err := o.env.FetchEnvironmental(ctx, zone.Config)
		if err != nil {
			o.logger.ErrorContext(ctx, "environmental fetch failed",
				"zone_id", zone.Config.ID,
				"error", err.Error(),
			)
			o.store.AddError(fmt.Sprintf("environmental fetch failed for %s: %v", zone.Config.ID, err))
			continue
		}

		o.store.UpdateZoneEnvironmental(zone.Config.ID, *data)
		o.applyPartialFactors(zone.Config.ID, risk.DeriveEnvironmentalFactors(*data))
	}
}
