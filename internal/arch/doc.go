// Package arch identifies the CPU architecture of device firmware and of
// application executables built for it.
//
// Devices report their architecture and SoC as parameters
// (Properties.System.Architecture and Properties.System.Soc); FromParam and
// SOCFromParam map those values. Sniff reads an ELF executable's header, and
// for soft-float ARM its build attributes, to find which architecture it
// targets, so a package can be checked against a device before upload.
package arch
