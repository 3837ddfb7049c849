package orchestrator

import (
	"context"
	"fmt"
	"time"

	"shorewatch/internal/config"
	"shorewatch/internal/risk"
	"shorewatch/internal/types"
)

// pollLoop runs condition cycles at the given cadence until stop closes.
func (o *Orchestrator) pollLoop(stop chan struct{}, interval time.Duration) {
	defer o.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			start := time.Now()
			o.runConditionCycle(context.Background())
			o.metrics.RecordCycleDuration(context.Background(), time.Since(start))
		}
	}
}

// runConditionCycle performs one round of single-shot vision checks. The
// polled condition rotates between crowd and swimmer detection so both
// factors refresh over consecutive cycles. Demo mode sweeps every online
// zone with an inter-call delay; conservative mode checks exactly one zone
// round-robin and backs off entirely near the daily quota.
func (o *Orchestrator) runConditionCycle(ctx context.Context) {
	o.mu.Lock()
	condition, factor := config.ConditionCrowd, types.FactorCrowd
	if o.rotation%2 == 1 {
		condition, factor = config.ConditionSwimmers, types.FactorSwimmers
	}
	o.rotation++
	o.mu.Unlock()

	var online []types.ZoneState
	for _, z := range o.store.EnabledZones() {
		if z.StreamOnline {
			online = append(online, z)
		}
	}
	if len(online) == 0 {
		return
	}

	budget := o.store.Budget()
	checks, triggers := 0, 0

	if budget.Mode == types.ModeDemo {
		for i, zone := range online {
			if i > 0 {
				o.sleepFn(o.polling.InterCallDelay)
			}
			c, t := o.checkZone(ctx, zone, condition, factor)
			checks += c
			triggers += t
		}
	} else {
		if budget.CheckOnceUsed >= o.budget.DailyCheckBudget-o.budget.CheckSafetyMargin {
			o.logger.InfoContext(ctx, "check budget near limit, skipping cycle",
				"checks_used", budget.CheckOnceUsed,
				"daily_budget", o.budget.DailyCheckBudget,
				"safety_margin", o.budget.CheckSafetyMargin,
			)
			return
		}
		o.mu.Lock()
		idx := o.rrIndex % len(online)
		o.rrIndex++
		o.mu.Unlock()

		c, t := o.checkZone(ctx, online[idx], condition, factor)
		checks += c
		triggers += t
	}

	o.metrics.CountChecks(ctx, checks)
	o.metrics.CountTriggers(ctx, triggers)
	b := o.store.Budget()
	o.metrics.RecordBudgetUsage(ctx, b.CheckOnceUsed, b.LiveMinutesUsed)
}

// checkZone runs one single-shot check against a zone and applies the
// observation. Returns (checks performed, triggers fired); a failed call
// counts as neither and does not consume budget.
func (o *Orchestrator) checkZone(ctx context.Context, zone types.ZoneState, condition string, factor types.FactorKey) (int, int) {
	result, err := o.vision.CheckOnce(ctx, zone.Config.StreamURL, condition)
	if err != nil {
		o.logger.ErrorContext(ctx, "vision check failed",
			"zone_id", zone.Config.ID,
			"error", err.Error(),
		)
		o.store.AddError(fmt.Sprintf("vision check failed for %s: %v", zone.Config.ID, err))
		return 0, 0
	}

	o.store.IncrementCheckUsed()
	o.store.SetLastCheck(zone.Config.ID)
	o.applyFactorObservation(zone.Config.ID, factor, result.Triggered, result.Explanation, "")

	if result.Triggered {
		return 1, 1
	}
	return 1, 0
}

// applyFactorObservation records one boolean factor observation: a trigger
// alert fires only on the false-to-true transition, then the factor is set
// and the score recomputed.
func (o *Orchestrator) applyFactorObservation(zoneID string, factor types.FactorKey, observed bool, explanation, frameB64 string) {
	zone, ok := o.store.Zone(zoneID)
	if !ok {
		return
	}

	if observed && !factorValue(zone.Risk.Factors, factor) {
		alert := newAlert(zoneID, types.AlertVisionTrigger, zone.Risk.Level,
			factorAlertTitle(factor), explanation)
		alert.FrameB64 = frameB64
		o.store.AddAlert(zoneID, alert)
	}

	o.applyPartialFactors(zoneID, partialForKey(factor, observed))
}

// applyPartialFactors merges a partial factor update, recomputes the score,
// and appends a risk-change alert when the level tier moves.
func (o *Orchestrator) applyPartialFactors(zoneID string, partial types.PartialFactors) {
	zone, ok := o.store.Zone(zoneID)
	if !ok {
		return
	}

	score := risk.UpdateAndCompute(zone.Risk.Factors, partial, zone.Risk.Total)
	o.store.UpdateZoneRisk(zoneID, score)

	if score.Level != zone.Risk.Level {
		o.store.AddAlert(zoneID, newAlert(zoneID, types.AlertRiskChange, score.Level,
			fmt.Sprintf("Risk level now %s", score.Level),
			fmt.Sprintf("%s moved from %s to %s (score %d)",
				zone.Config.Name, zone.Risk.Level, score.Level, score.Total)))
	}
}

// factorValue reads one factor from a complete set by key.
func factorValue(factors types.RiskFactors, key types.FactorKey) bool {
	switch key {
	case types.FactorSwimmers:
		return factors.SwimmersDetected
	case types.FactorCrowd:
		return factors.HighCrowdNearWaterline
	case types.FactorEmergency:
		return factors.EmergencyVehiclesVisible
	case types.FactorHighWaves:
		return factors.HighWaveHeight
	case types.FactorStrongWind:
		return factors.StrongWind
	case types.FactorExtremeTid:
		return factors.ExtremeTide
	case types.FactorPoorVis:
		return factors.PoorVisibility
	}
	return false
}

// partialForKey builds a single-key partial factor set.
func partialForKey(key types.FactorKey, value bool) types.PartialFactors {
	v := value
	var partial types.PartialFactors
	switch key {
	case types.FactorSwimmers:
		partial.SwimmersDetected = &v
	case types.FactorCrowd:
		partial.HighCrowdNearWaterline = &v
	case types.FactorEmergency:
		partial.EmergencyVehiclesVisible = &v
	case types.FactorHighWaves:
		partial.HighWaveHeight = &v
	case types.FactorStrongWind:
		partial.StrongWind = &v
	case types.FactorExtremeTid:
		partial.ExtremeTide = &v
	case types.FactorPoorVis:
		partial.PoorVisibility = &v
	}
	return partial
}

// factorAlertTitle is the alert feed headline for a vision trigger on the
// given factor.
func factorAlertTitle(key types.FactorKey) string {
	switch key {
	case types.FactorSwimmers:
		return "Swimmers detected"
	case types.FactorCrowd:
		return "Beach activity detected"
	case types.FactorEmergency:
		return "Emergency activity detected"
	}
	return "Condition detected"
}
