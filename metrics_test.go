package vtx

import "testing"

func TestMetrics(t *testing.T) {
	ResetMetrics()

	if m := GetMetrics(); m != (Metrics{}) {
		t.Fatalf("metrics after reset = %+v", m)
	}

	msrs := sampleMSRs()
	if _, err := AdjustEntry(msrs, EntryIA32eModeGuest); err != nil {
		t.Fatal(err)
	}
	caps, err := ReadCapabilities(msrs)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := caps.Adjust(Exit, 0); err != nil {
		t.Fatal(err)
	}
	MessageFor(14)
	MessageFor(4)

	want := Metrics{Adjustments: 2, UnknownErrorCodes: 1}
	if got := GetMetrics(); got != want {
		t.Errorf("GetMetrics() = %+v, want %+v", got, want)
	}

	ResetMetrics()
	if m := GetMetrics(); m != (Metrics{}) {
		t.Errorf("metrics after second reset = %+v", m)
	}
}
