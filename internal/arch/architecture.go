package arch

// Architecture is an instruction set plus ABI used by device firmware.
//
// An SoC may be able to run several of these in principle; only the one the
// kernel and libc were built for works in practice.
type Architecture string

const (
	Aarch64 Architecture = "aarch64"
	// Armv5tej is ARMv5 with Thumb, enhanced DSP and Jazelle, little endian, GNU EABI.
	Armv5tej Architecture = "armv5tej"
	Armv6    Architecture = "armv6"
	Armv7    Architecture = "armv7"
	// Armv7hf is ARMv7 with hardware floating point.
	Armv7hf Architecture = "armv7hf"
	// CrisV0 covers CRIS v0 through v10, up to ETRAX 100LX and ARTPEC-2.
	CrisV0 Architecture = "crisv0"
	// CrisV32 is used by ETRAX FS and ARTPEC-3.
	CrisV32 Architecture = "crisv32"
	// Mips is MIPS32 release 2, little endian.
	Mips Architecture = "mips"
)

// All lists every known architecture.
func All() []Architecture {
	return []Architecture{Aarch64, Armv5tej, Armv6, Armv7, Armv7hf, CrisV0, CrisV32, Mips}
}

// DisplayName returns the conventional spelling, e.g. "ARMv7-HF".
func (a Architecture) DisplayName() string {
	switch a {
	case Aarch64:
		return "AArch64"
	case Armv5tej:
		return "ARMv5TEJ"
	case Armv6:
		return "ARMv6"
	case Armv7:
		return "ARMv7"
	case Armv7hf:
		return "ARMv7-HF"
	case CrisV0:
		return "CRISv0"
	case CrisV32:
		return "CRISv32"
	case Mips:
		return "MIPS"
	default:
		return string(a)
	}
}

func (a Architecture) String() string {
	return a.DisplayName()
}

// Valid reports whether a is one of the known architectures.
func (a Architecture) Valid() bool {
	for _, known := range All() {
		if a == known {
			return true
		}
	}
	return false
}

// FromParam maps a Properties.System.Architecture parameter value.
func FromParam(value string) (Architecture, bool) {
	switch value {
	case "aarch64":
		return Aarch64, true
	case "armv5tejl":
		return Armv5tej, true
	case "armv6l":
		return Armv6, true
	case "armv7l":
		return Armv7, true
	case "armv7hf":
		return Armv7hf, true
	case "crisv0":
		return CrisV0, true
	case "crisv32":
		return CrisV32, true
	case "mips":
		return Mips, true
	}
	return "", false
}
