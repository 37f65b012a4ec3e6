// File: cmd/xskfw/config.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/xskframe/xskframe/api"
)

// parseIface parses the "-i name[:c|z]" flag argument spec.md §6
// documents: an optional ":c"/":z" suffix selects the bind mode,
// absence leaves it BindUnspecified for Init's resolution rules.
func parseIface(arg string) (api.InterfaceConfig, error) {
	name, suffix, hasSuffix := strings.Cut(arg, ":")
	if name == "" {
		return api.InterfaceConfig{}, fmt.Errorf("empty interface name in %q", arg)
	}
	cfg := api.InterfaceConfig{Name: name, BindMode: api.BindUnspecified}
	if !hasSuffix {
		return cfg, nil
	}
	switch suffix {
	case "c":
		cfg.BindMode = api.BindCopy
	case "z":
		cfg.BindMode = api.BindZeroCopy
	default:
		return api.InterfaceConfig{}, fmt.Errorf("unknown bind-mode suffix %q in %q (want :c or :z)", suffix, arg)
	}
	return cfg, nil
}

// parseMode maps the -M/--mode string onto api.WorkingMode.
func parseMode(s string) (api.WorkingMode, error) {
	switch strings.ToUpper(s) {
	case "AF_XDP", "AFXDP":
		return api.ModeAFXDP, nil
	case "XDP":
		return api.ModeXDP, nil
	case "COMBINED":
		return api.ModeCombined, nil
	default:
		return 0, fmt.Errorf("unknown mode %q (want AF_XDP, XDP, or COMBINED)", s)
	}
}

// buildConfig assembles an api.Config from the bound viper values,
// applying the original's argv[0]+"_kern.o" eBPF object default when
// none was supplied on the command line.
func buildConfig() (api.Config, error) {
	ifaceArgs := viper.GetStringSlice("iface")
	if len(ifaceArgs) == 0 {
		return api.Config{}, fmt.Errorf("at least one -i/--iface is required")
	}
	ifaces := make([]api.InterfaceConfig, len(ifaceArgs))
	for i, arg := range ifaceArgs {
		ifc, err := parseIface(arg)
		if err != nil {
			return api.Config{}, err
		}
		ifaces[i] = ifc
	}

	mode, err := parseMode(viper.GetString("mode"))
	if err != nil {
		return api.Config{}, err
	}

	ebpfObject := viper.GetString("ebpf-object")
	if ebpfObject == "" {
		ebpfObject = defaultEBPFObjectPath()
	}

	return api.Config{
		Interfaces:     ifaces,
		Workers:        viper.GetInt("workers"),
		FrameSize:      viper.GetInt("frame-size"),
		BatchSize:      viper.GetInt("batch-size"),
		Unaligned:      viper.GetBool("unaligned"),
		SKBMode:        viper.GetBool("xdp-skb"),
		BusyPoll:       viper.GetBool("busy-poll"),
		Poll:           viper.GetBool("poll"),
		Mode:           mode,
		EBPFObjectPath: ebpfObject,
		XDPProgramName: viper.GetString("xdp-prog"),
		TCProgramName:  viper.GetString("tc-prog"),
		PollTimeout:    time.Second,
	}, nil
}

// defaultEBPFObjectPath mirrors original_source/src/xsknf.c's
// argv[0]+"_kern.o" convention.
func defaultEBPFObjectPath() string {
	return os.Args[0] + "_kern.o"
}
