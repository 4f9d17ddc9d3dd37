package tracer

import "math"

// The BlockScheduler interface is implemented by all block scheduling algorithms.
type BlockScheduler interface {
	// Split frame into blocks of variable height and assign to the pool
	// of tracers using feedback collected from previous frames.
	//
	// This function returns the block height assignment for each tracer
	// in the input list. Assignments always add up to frameH.
	Schedule(tracers []Tracer, frameH uint32) []uint32
}

// The naive scheduler splits the frame using the speed estimate reported by
// each tracer.
type naiveScheduler struct{}

// Create a new naive scheduler instance.
func NaiveScheduler() BlockScheduler {
	return &naiveScheduler{}
}

func (sch *naiveScheduler) Schedule(tracers []Tracer, frameH uint32) []uint32 {
	return speedBasedAssignment(tracers, frameH)
}

// The perfect scheduler assumes that the volume of tracing work between two
// subsequent frames is approximately the same.
type perfectScheduler struct {
	blockAssignment []uint32
}

// Create a new perfect scheduler instance
func PerfectScheduler() BlockScheduler {
	return &perfectScheduler{}
}

// Split frame into blocks of variable height and assign to the pool
// of tracers using feedback collected from previous frames.
//
// When previous frame information is available the scheduler
// uses the following formula for estimating the workload for tracer w and frame i+1:
// w_i, f_i+1 = (blockH,w_i / time,w_i) / Σ(blockH_i-1 / time,i-1)
func (sch *perfectScheduler) Schedule(tracers []Tracer, frameH uint32) []uint32 {
	// If this is the first time we try to schedule or the number of tracers
	// has changed we need to reset the block assignments
	if len(sch.blockAssignment) != len(tracers) {
		sch.blockAssignment = speedBasedAssignment(tracers, frameH)
		return sch.blockAssignment
	}

	// Use last frame statistics. If any tracer has not reported timing
	// info yet fall back to speed estimates.
	var total float64
	var stats *Stats
	for _, tr := range tracers {
		stats = tr.Stats()
		if stats.RenderTime <= 0 || stats.BlockH == 0 {
			sch.blockAssignment = speedBasedAssignment(tracers, frameH)
			return sch.blockAssignment
		}
		total += float64(stats.BlockH) / float64(stats.RenderTime)
	}

	scaler := float64(frameH) / total
	for idx, tr := range tracers {
		stats = tr.Stats()
		sch.blockAssignment[idx] = uint32(math.Max(1.0, math.Floor(float64(stats.BlockH)/float64(stats.RenderTime)*scaler)))
	}

	balanceRows(sch.blockAssignment, frameH)
	return sch.blockAssignment
}

// Distribute rows proportionally to each tracer's speed estimate.
func speedBasedAssignment(tracers []Tracer, frameH uint32) []uint32 {
	blockAssignment := make([]uint32, len(tracers))
	if len(tracers) == 0 {
		return blockAssignment
	}

	var total float64
	for _, tr := range tracers {
		total += float64(tr.SpeedEstimate())
	}
	scaler := float64(frameH) / total

	for idx, tr := range tracers {
		blockAssignment[idx] = uint32(math.Max(1.0, math.Floor(float64(tr.SpeedEstimate())*scaler)))
	}

	balanceRows(blockAssignment, frameH)
	return blockAssignment
}

// Adjust block assignments so they add up to frameH. Missing rows are
// appended to the first tracer; excess rows are removed starting from the
// last tracer.
func balanceRows(blockAssignment []uint32, frameH uint32) {
	var scheduledRows uint32
	for _, rows := range blockAssignment {
		scheduledRows += rows
	}

	if scheduledRows <= frameH {
		blockAssignment[0] += frameH - scheduledRows
		return
	}

	excess := scheduledRows - frameH
	for idx := len(blockAssignment) - 1; idx >= 0 && excess > 0; idx-- {
		trim := blockAssignment[idx]
		if trim > excess {
			trim = excess
		}
		blockAssignment[idx] -= trim
		excess -= trim
	}
}
