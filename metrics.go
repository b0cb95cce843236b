package vtx

import "sync/atomic"

// Counters for monitoring MSR access and adjustments
var (
	msrReads          uint64
	msrReadErrors     uint64
	adjustments       uint64
	unknownErrorCodes uint64
)

// Metrics provides access to the counters
type Metrics struct {
	MSRReads          uint64 `json:"msr_reads" yaml:"msr_reads"`
	MSRReadErrors     uint64 `json:"msr_read_errors" yaml:"msr_read_errors"`
	Adjustments       uint64 `json:"adjustments" yaml:"adjustments"`
	UnknownErrorCodes uint64 `json:"unknown_error_codes" yaml:"unknown_error_codes"`
}

// GetMetrics returns current metrics
func GetMetrics() Metrics {
	return Metrics{
		MSRReads:          atomic.LoadUint64(&msrReads),
		MSRReadErrors:     atomic.LoadUint64(&msrReadErrors),
		Adjustments:       atomic.LoadUint64(&adjustments),
		UnknownErrorCodes: atomic.LoadUint64(&unknownErrorCodes),
	}
}

// ResetMetrics clears all metrics
func ResetMetrics() {
	atomic.StoreUint64(&msrReads, 0)
	atomic.StoreUint64(&msrReadErrors, 0)
	atomic.StoreUint64(&adjustments, 0)
	atomic.StoreUint64(&unknownErrorCodes, 0)
}

func recordMSRRead() {
	atomic.AddUint64(&msrReads, 1)
}

func recordMSRError() {
	atomic.AddUint64(&msrReadErrors, 1)
}

func recordAdjustment() {
	atomic.AddUint64(&adjustments, 1)
}

func recordUnknownError() {
	atomic.AddUint64(&unknownErrorCodes, 1)
}
