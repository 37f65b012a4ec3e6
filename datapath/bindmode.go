// File: datapath/bindmode.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// resolveBindModes applies spec.md §6's bind-mode resolution rules,
// translated from original_source/src/xsknf.c's xsknf_init bind_flags
// loop: SKB mode forces every interface to copy mode; an interface
// with no explicit mode defaults to zero-copy.

package datapath

import "github.com/xskframe/xskframe/api"

// resolveBindModes returns the effective bind mode for each of
// cfg.Interfaces, in the same order.
func resolveBindModes(cfg api.Config) []api.BindMode {
	out := make([]api.BindMode, len(cfg.Interfaces))
	for i, ifc := range cfg.Interfaces {
		switch {
		case cfg.SKBMode:
			out[i] = api.BindCopy
		case ifc.BindMode == api.BindUnspecified:
			out[i] = api.BindZeroCopy
		default:
			out[i] = ifc.BindMode
		}
	}
	return out
}
