// Package kernel loads, attaches, and detaches the optional kernel-side
// XDP filter program named in spec.md §4.7 and §6, and publishes
// worker socket file descriptors into its "xsks" BPF map. This
// package is the only place the module touches github.com/cilium/ebpf
// or github.com/vishvananda/netlink; the datapath package only calls
// through the api.FilterLoader interface.
//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
package kernel
