package vm

import "math"

// Float-to-integer conversions truncate toward zero and saturate at the
// destination type's bounds rather than wrapping; a NaN source converts to
// zero. None of this is exercised by the reference engine this VM is
// modeled on — it has no CVT family at all — so these bounds follow the
// widened contract most fixed-width VMs settle on for float narrowing.

func cvtF32ToI32(v float32) int32 {
	if math.IsNaN(float64(v)) {
		return 0
	}
	if v >= math.MaxInt32 {
		return math.MaxInt32
	}
	if v <= math.MinInt32 {
		return math.MinInt32
	}
	return int32(v)
}

func cvtF64ToI64(v float64) int64 {
	if math.IsNaN(v) {
		return 0
	}
	if v >= math.MaxInt64 {
		return math.MaxInt64
	}
	if v <= math.MinInt64 {
		return math.MinInt64
	}
	return int64(v)
}

func cvtF32ToU32(v float32) uint32 {
	if math.IsNaN(float64(v)) {
		return 0
	}
	if v >= math.MaxUint32 {
		return math.MaxUint32
	}
	if v <= 0 {
		return 0
	}
	return uint32(v)
}

func cvtF64ToU64(v float64) uint64 {
	if math.IsNaN(v) {
		return 0
	}
	if v >= math.MaxUint64 {
		return math.MaxUint64
	}
	if v <= 0 {
		return 0
	}
	return uint64(v)
}
