package recorder

import (
	"context"
	"reflect"

	"marketmaker/internal/codec"
	"marketmaker/internal/core"
	"marketmaker/internal/model"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
)

// Mismatch is a product whose replayed orders differ from the tape.
type Mismatch struct {
	Timestamp int64
	Product   model.Product
	Recorded  []model.Order
	Replayed  []model.Order
}

// Report summarizes a replay.
type Report struct {
	Ticks                int
	ConversionMismatches int
	Mismatches           []Mismatch
}

// Replay feeds every recorded snapshot through trader and compares the
// answers with the recorded ones.
func Replay(ctx context.Context, pb *Playback, trader *core.Trader, st *core.StrategyState) (Report, error) {
	var report Report
	err := pb.Run(ctx, func(e Entry) error {
		snap, err := e.Snapshot()
		if err != nil {
			return err
		}
		got, err := trader.Run(snap, st)
		if err != nil {
			return errors.Wrapf(err, "replay tick %d", snap.Timestamp)
		}

		report.Ticks++
		want := e.Output()
		if want.Conversions != got.Conversions {
			report.ConversionMismatches++
		}
		for _, p := range unionProducts(want, got) {
			if !reflect.DeepEqual(want.Orders[p], got.Orders[p]) {
				report.Mismatches = append(report.Mismatches, Mismatch{
					Timestamp: snap.Timestamp,
					Product:   p,
					Recorded:  want.Orders[p],
					Replayed:  got.Orders[p],
				})
			}
		}
		return nil
	})
	if err != nil {
		return report, err
	}

	logs.Infof("replayed %d ticks, %d order mismatches, %d conversion mismatches",
		report.Ticks, len(report.Mismatches), report.ConversionMismatches)
	return report, nil
}

func unionProducts(a, b core.Output) []model.Product {
	merged := core.Output{Orders: make(map[model.Product][]model.Order, len(a.Orders)+len(b.Orders))}
	for p := range a.Orders {
		merged.Orders[p] = nil
	}
	for p := range b.Orders {
		merged.Orders[p] = nil
	}
	return codec.Products(merged)
}
