package arch

import "strings"

// SOC is a system-on-chip found in devices.
type SOC string

const (
	Artpec1     SOC = "artpec1"
	Artpec2     SOC = "artpec2"
	Artpec3     SOC = "artpec3"
	Artpec4     SOC = "artpec4"
	Artpec5     SOC = "artpec5"
	Artpec6     SOC = "artpec6"
	Artpec7     SOC = "artpec7"
	A5S         SOC = "a5s"
	Hi3516cV300 SOC = "hi3516cv300"
	Hi3719cV100 SOC = "hi3719cv100"
	MX8QP       SOC = "mx8qp"
	S2          SOC = "s2"
	S2E         SOC = "s2e"
	S2L         SOC = "s2l"
	S3L         SOC = "s3l"
	S5          SOC = "s5"
	S5L         SOC = "s5l"
)

type socInfo struct {
	display string
	year    int
	arch    Architecture
}

var socs = map[SOC]socInfo{
	Artpec1:     {"Axis ARTPEC-1", 1999, CrisV32},
	Artpec2:     {"Axis ARTPEC-2", 2003, CrisV32},
	Artpec3:     {"Axis ARTPEC-3", 2007, CrisV32},
	Artpec4:     {"Axis ARTPEC-4", 2011, Mips},
	Artpec5:     {"Axis ARTPEC-5", 2013, Mips},
	Artpec6:     {"Axis ARTPEC-6", 2017, Armv7hf},
	Artpec7:     {"Axis ARTPEC-7", 2019, Armv7hf},
	A5S:         {"Ambarella A5S", 2010, Armv6},
	Hi3516cV300: {"Hi3516C V300", 2016, Armv5tej},
	Hi3719cV100: {"Hi3719C V100", 2016, Armv7hf},
	MX8QP:       {"NXP i.MX 8 QP", 2013, Aarch64},
	S2:          {"Ambarella S2", 2012, Armv7},
	S2E:         {"Ambarella S2E", 2012, Armv7hf},
	S2L:         {"Ambarella S2L", 2012, Armv7hf},
	S3L:         {"Ambarella S3L", 2014, Armv7hf},
	S5:          {"Ambarella S5", 2016, Aarch64},
	S5L:         {"Ambarella S5L", 2016, Aarch64},
}

// AllSOCs lists every known SoC.
func AllSOCs() []SOC {
	return []SOC{
		Artpec1, Artpec2, Artpec3, Artpec4, Artpec5, Artpec6, Artpec7,
		A5S, Hi3516cV300, Hi3719cV100, MX8QP,
		S2, S2E, S2L, S3L, S5, S5L,
	}
}

// DisplayName returns the vendor's name for the SoC.
func (s SOC) DisplayName() string {
	if info, ok := socs[s]; ok {
		return info.display
	}
	return string(s)
}

func (s SOC) String() string {
	return s.DisplayName()
}

// Year is the approximate year of introduction, 0 when unknown.
func (s SOC) Year() int {
	return socs[s].year
}

// Architecture is the architecture firmware for this SoC is built for.
func (s SOC) Architecture() Architecture {
	return socs[s].arch
}

// SOCFromParam maps a Properties.System.Soc parameter value such as
// "Axis Artpec-5". Vendor prefixes, case and punctuation are ignored.
func SOCFromParam(value string) (SOC, bool) {
	key := strings.ToLower(strings.TrimSpace(value))
	for _, prefix := range []string{"axis ", "ambarella ", "nxp ", "hisilicon "} {
		key = strings.TrimPrefix(key, prefix)
	}
	key = strings.NewReplacer("-", "", " ", "", ".", "", "_", "").Replace(key)
	if key == "imx8qp" {
		key = string(MX8QP)
	}

	if _, ok := socs[SOC(key)]; ok {
		return SOC(key), true
	}
	return "", false
}
