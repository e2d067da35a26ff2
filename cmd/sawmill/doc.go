// Sawmill is a CLI for triaging build logs from EDA tools.
//
// It splits a log into messages, classifies them by severity, and gates CI
// on the result with waiver files that record why each accepted message is
// acceptable. Exit codes are deterministic: 0 pass, 1 check failed, 2 usage
// or configuration error, 4 runtime error.
//
// Usage:
//
//	sawmill show synth.log                      # list messages
//	sawmill show synth.log --severity warning   # warnings and above
//	sawmill show synth.log --group-by module    # counts per RTL module
//	sawmill check synth.log impl.log            # gate on severity
//	sawmill check synth.log --waivers waivers.toml --format sarif
//	sawmill waivers generate synth.log -o waivers.toml
//	sawmill plugins info vivado
package main
