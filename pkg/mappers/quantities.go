package mappers

import (
	"math"

	"github.com/gridframe/gridframe/pkg/network"
	"github.com/gridframe/gridframe/pkg/perunit"
)

// Adapters from plain field accessors to per-unit aware series functions.

type getter[T any] func(T, perunit.Context) (float64, error)
type setter[T any] func(T, float64, perunit.Context) error

func power[T any](get func(T) float64) getter[T] {
	return func(x T, ctx perunit.Context) (float64, error) {
		return perunit.ToPerUnitP(ctx, get(x)), nil
	}
}

func setPower[T any](set func(T, float64)) setter[T] {
	return func(x T, v float64, ctx perunit.Context) error {
		set(x, perunit.FromPerUnitP(ctx, v))
		return nil
	}
}

func voltage[T any](get func(T) float64, at func(T) *network.Bus) getter[T] {
	return func(x T, ctx perunit.Context) (float64, error) {
		return perunit.ToPerUnitV(ctx, get(x), at(x))
	}
}

func setVoltage[T any](set func(T, float64), at func(T) *network.Bus) setter[T] {
	return func(x T, v float64, ctx perunit.Context) error {
		raw, err := perunit.FromPerUnitV(ctx, v, at(x))
		if err != nil {
			return err
		}
		set(x, raw)
		return nil
	}
}

func angle[T any](get func(T) float64) getter[T] {
	return func(x T, ctx perunit.Context) (float64, error) {
		return perunit.ToPerUnitAngle(ctx, get(x)), nil
	}
}

func setAngle[T any](set func(T, float64)) setter[T] {
	return func(x T, v float64, ctx perunit.Context) error {
		set(x, perunit.FromPerUnitAngle(ctx, v))
		return nil
	}
}

// current derives the current at bus from the flows p, q and the bus
// voltage. It is NaN when the bus has no voltage.
func current[T any](p, q func(T) float64, at func(T) *network.Bus) getter[T] {
	return func(x T, ctx perunit.Context) (float64, error) {
		b := at(x)
		v := math.NaN()
		if b != nil {
			v = b.V
		}
		return perunit.ToPerUnitI(ctx, network.Current(p(x), q(x), v), b)
	}
}

func raw[T any](get func(T) float64) getter[T] {
	return func(x T, _ perunit.Context) (float64, error) { return get(x), nil }
}

func busID(b *network.Bus) string {
	if b == nil {
		return ""
	}
	return b.ID
}

func voltageLevelID(b *network.Bus) string {
	if b == nil || b.VoltageLevel == nil {
		return ""
	}
	return b.VoltageLevel.ID
}
