package services

import (
	"driver-route-planner/internal/domain"
	"encoding/binary"
	"math"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint identifies a planning problem: parameters, engine settings
// and the load list in input order. Two calls with equal inputs produce the
// same key.
func Fingerprint(params domain.Params, opts Options, loads []domain.Load) string {
	d := xxhash.New()
	var buf [8]byte

	putFloat := func(f float64) {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(f))
		_, _ = d.Write(buf[:])
	}
	putInt := func(i int64) {
		binary.LittleEndian.PutUint64(buf[:], uint64(i))
		_, _ = d.Write(buf[:])
	}
	putBool := func(b bool) {
		if b {
			putInt(1)
			return
		}
		putInt(0)
	}

	putFloat(params.DriverCost)
	putFloat(params.MaxTime)
	putFloat(params.Depot.X)
	putFloat(params.Depot.Y)

	_, _ = d.WriteString(opts.engine())
	putInt(int64(opts.maxExactLoads()))
	putBool(opts.StrictBudget)
	putBool(opts.SkipUnroutable)

	putInt(int64(len(loads)))
	for _, l := range loads {
		putInt(int64(l.ID))
		putFloat(l.Pickup.X)
		putFloat(l.Pickup.Y)
		putFloat(l.Dropoff.X)
		putFloat(l.Dropoff.Y)
	}

	return "plan:" + strconv.FormatUint(d.Sum64(), 16)
}
