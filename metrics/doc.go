// Package metrics provides the stateful instruments applications update on
// hot paths: Counter, Meter, Histogram and Timer.
//
// Histograms and timers delegate sampling to a reservoir.Reservoir chosen
// once, when the instrument is built. Meters and timers keep exponentially
// weighted moving averages that advance on every Tick; a Scheduler drives
// those ticks in the background.
//
// Instruments are usually created through a Builder, which carries the
// shared clock, logger, units and reservoir configuration:
//
//	b, err := metrics.NewBuilder(metrics.WithReservoirKind(reservoir.KindHdrHistogram))
//	if err != nil {
//		return err
//	}
//	requests := b.Timer()
//	b.Scheduler().Start(ctx)
//	defer b.Scheduler().Stop()
//
//	ctx := requests.StartRecording()
//	defer ctx.Stop()
//
// Every GetValue method returns a plain value struct that is safe to keep,
// marshal or print.
package metrics
