// Package target constructs compilation target strings for the
// microcontroller profile of the external compiler.
package target

import "fmt"

// microCPUs maps a target-model token to the -mcpu attribute the compiler's
// micro profile attaches for that model. Models absent from the table (e.g.
// "host") carry no -mcpu attribute.
var microCPUs = map[string]string{
	"atsamd51":    "cortex-m4",
	"cxd5602gg":   "cortex-m4",
	"imxrt1060":   "cortex-m7",
	"imxrt10xx":   "cortex-m7",
	"mps2_an521":  "cortex-m33",
	"mps3_an547":  "cortex-m55",
	"nrf52840":    "cortex-m4",
	"nrf5340dk":   "cortex-m33",
	"rp2040":      "cortex-m0",
	"sam3x8e":     "cortex-m3",
	"stm32f746xx": "cortex-m7",
	"stm32h7xx":   "cortex-m7",
	"stm32l4r5zi": "cortex-m4",
	"stm32u5xx":   "cortex-m33",
	"zynq_mp_r5":  "cortex-r5",
}

// Micro returns the C codegen target string for a target-model token,
// matching the compiler's own micro target builder. The result is stable
// for a given model.
func Micro(model string) string {
	if cpu, ok := microCPUs[model]; ok {
		return fmt.Sprintf("c -keys=cpu -mcpu=%s -model=%s", cpu, model)
	}
	return fmt.Sprintf("c -keys=cpu -model=%s", model)
}
