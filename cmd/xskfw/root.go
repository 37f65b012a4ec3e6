// File: cmd/xskfw/root.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// CLI surface, one-to-one with the flag table the library's CLI
// collaborator is expected to implement. Flags are registered on
// cobra and bound through viper so every one of them can also come
// from a config file (--config) or environment variables prefixed
// XSKFW_, matching viper's standard BindPFlag/BindEnv idiom.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "xskfw",
	Short: "Kernel-bypass AF_XDP packet-processing datapath",
	Long: "xskfw runs a user-space, kernel-bypass packet-processing datapath\n" +
		"on top of zero-copy AF_XDP packet sockets: per-worker frame pools,\n" +
		"per-interface socket sets, and a pinned-thread worker loop.",
	RunE: runRoot,
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.Flags()
	flags.StringSliceP("iface", "i", nil, `add interface, "name[:c|z]" (c=copy, z=zero-copy); repeatable`)
	flags.BoolP("poll", "p", false, "enable bounded poll() wait per iteration")
	flags.BoolP("xdp-skb", "S", false, "use skb-mode kernel hook; forces all sockets to copy mode")
	flags.IntP("frame-size", "f", 2048, "frame size in bytes (power of two unless --unaligned)")
	flags.BoolP("unaligned", "u", false, "enable unaligned chunk placement")
	flags.IntP("batch-size", "b", 64, "per-iteration batch size, <= 255")
	flags.BoolP("busy-poll", "B", false, "enable kernel busy-poll on zero-copy sockets")
	flags.StringP("mode", "M", "AF_XDP", `datapath mode: "AF_XDP", "XDP", or "COMBINED"`)
	flags.IntP("workers", "w", 1, "number of worker threads")
	flags.String("ebpf-object", "", `eBPF object file path (default: argv[0]+"_kern.o")`)
	flags.String("xdp-prog", "handle_xdp", "XDP program name within the eBPF object")
	flags.String("tc-prog", "", "optional egress TC classifier program name")
	flags.String("log-level", "info", "debug, info, warn, or error")

	flags.StringVar(&cfgFile, "config", "", "config file (default: none, flags/env only)")

	for _, name := range []string{
		"iface", "poll", "xdp-skb", "frame-size", "unaligned", "batch-size",
		"busy-poll", "mode", "workers", "ebpf-object", "xdp-prog", "tc-prog", "log-level",
	} {
		if err := viper.BindPFlag(name, flags.Lookup(name)); err != nil {
			panic(fmt.Sprintf("xskfw: bind flag %q: %v", name, err))
		}
	}
	viper.SetEnvPrefix("XSKFW")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func initConfig() {
	if cfgFile == "" {
		return
	}
	viper.SetConfigFile(cfgFile)
	if err := viper.ReadInConfig(); err != nil {
		cobra.CheckErr(fmt.Errorf("xskfw: reading config %s: %w", cfgFile, err))
	}
}

// Execute runs the root command; errors are already printed by cobra.
func Execute() error {
	return rootCmd.Execute()
}
