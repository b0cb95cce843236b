package vtx

import "os"

// isCI returns true if running in GitHub Actions
func isCI() bool {
	return os.Getenv("CI") == "true" || os.Getenv("GITHUB_ACTIONS") == "true"
}

// sampleMSRs are representative capability MSRs of a processor with TRUE
// controls, revision 4 and a 1 KB VMCS region.
func sampleMSRs() MSRValues {
	return MSRValues{
		IA32FeatureControl:       0x5,
		IA32VMXBasic:             0x00DA0400_00000004,
		IA32VMXPinBasedCtls:      0x0000007F_00000016,
		IA32VMXTruePinBasedCtls:  0x0000007F_00000006,
		IA32VMXProcBasedCtls:     0xFFF9FFFE_0401E172,
		IA32VMXTrueProcBasedCtls: 0xFFF9FFFE_04006172,
		IA32VMXProcBasedCtls2:    0x000000FF_00000000,
		IA32VMXExitCtls:          0x01FFFFFF_00036DFF,
		IA32VMXTrueExitCtls:      0x01FFFFFF_00036DFB,
		IA32VMXEntryCtls:         0x0003FFFF_000011FF,
		IA32VMXTrueEntryCtls:     0x0003FFFF_000011FB,
		IA32VMXCR0Fixed0:         0x80000021,
		IA32VMXCR0Fixed1:         0xFFFFFFFF,
		IA32VMXCR4Fixed0:         0x00002000,
		IA32VMXCR4Fixed1:         0x003727FF,
	}
}
