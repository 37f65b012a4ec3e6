// File: api/types.go
// Package api defines the shared contracts of xskframe: the bind-mode
// and working-mode enums, the Config and Stats data model (spec.md
// §3), and the PacketProcessor contract (spec.md §4.8). These are the
// types every other package (umem, xsk, worker, datapath, kernel)
// imports so none of them depend on each other directly.
//
// Generalized from the teacher's server/types.go Config shape and
// api/interfaces.go contract style (github.com/momentics/hioload-ws).
//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

import "time"

// BindMode selects whether a socket's kernel path copies payload
// between its skb representation and the pool (Copy) or transmits /
// receives directly from pool memory (ZeroCopy).
type BindMode int

const (
	// BindUnspecified means "let Init's bind-mode resolution rules
	// pick a default" (spec.md §6: defaults to ZeroCopy unless
	// SKB-mode is forced globally).
	BindUnspecified BindMode = iota
	BindCopy
	BindZeroCopy
)

func (m BindMode) String() string {
	switch m {
	case BindCopy:
		return "copy"
	case BindZeroCopy:
		return "zero-copy"
	default:
		return "unspecified"
	}
}

// WorkingMode selects which halves of the framework are active:
// the AF_XDP datapath (pools/sockets/workers), the kernel-side XDP
// filter program, or both. Mirrors the original's MODE_AF_XDP /
// MODE_XDP / MODE_COMBINED bitmask (original_source/src/xsknf.c).
type WorkingMode int

const (
	ModeAFXDP WorkingMode = 1 << iota
	ModeXDP
)

const ModeCombined = ModeAFXDP | ModeXDP

func (m WorkingMode) HasAFXDP() bool { return m&ModeAFXDP != 0 }
func (m WorkingMode) HasXDP() bool   { return m&ModeXDP != 0 }

// PollMode selects the worker's idle/suspension strategy (spec.md §4.5).
type PollMode int

const (
	PollNone PollMode = iota
	PollSyscall
	PollBusyPoll
)

// InterfaceConfig describes one configured network interface and its
// requested bind-mode, from the "-i/--iface name[:c|z]" CLI flag.
type InterfaceConfig struct {
	Name     string
	BindMode BindMode
}

// Config holds every process-wide parameter named in spec.md §3 and
// §6. It is immutable for the lifetime of a Datapath (no dynamic
// reconfiguration, per spec.md's Non-goals).
type Config struct {
	Interfaces []InterfaceConfig
	Workers    int
	FrameSize  int
	BatchSize  int // 1..255, enforced by 8-bit scratch counters (spec.md §9)

	Unaligned bool
	SKBMode   bool // -S/--xdp-skb: forces all sockets to copy mode
	BusyPoll  bool
	Poll      bool
	Mode      WorkingMode

	EBPFObjectPath string // default: argv[0]+"_kern.o"
	XDPProgramName string // default: "handle_xdp"
	TCProgramName  string // optional egress classifier program name

	PollTimeout time.Duration // bounded poll() wait, spec.md §4.5 (1s default)
}

// FramesPerSocket is fixed by the specification (spec.md §3): every
// socket's slab within a worker's pool is exactly this many frames.
const FramesPerSocket = 4096

// MaxBatchSize bounds Config.BatchSize: the datapath loop buckets
// descriptors into fixed uint8 counters (spec.md §9 "Stack-sized
// scratch buckets"), same limit as the original's 8-bit nfill/ndrop/ntx
// counters (255, one less than the original_source/src/xsknf.c comment
// claims support for 511 — that comment refers to uint8 headroom before
// the *next* batch starts, not a safe upper bound for a single counter).
const MaxBatchSize = 255

// MaxInterfaces bounds the number of interfaces a single worker may
// own. Used to compose the (workerIdx, ifaceIdx) key published into
// the kernel's "xsks" BPF map (Decided Open Question 2, DESIGN.md):
// key = workerIdx*MaxInterfaces + ifaceIdx.
const MaxInterfaces = 64

// Stats holds the per-socket counters from spec.md §3. All fields are
// written only by the owning worker (relaxed atomics) except the
// kernel-fetched fields (RxDroppedNpkts..TxEmptyNpkts), which are
// refreshed on demand by GetSocketStats.
type Stats struct {
	RxNpkts uint64 `json:"rx_npkts"`
	TxNpkts uint64 `json:"tx_npkts"`

	RxDroppedNpkts   uint64 `json:"rx_dropped_npkts"`    // kernel: xdp_stats.rx_dropped
	RxInvalidNpkts   uint64 `json:"rx_invalid_npkts"`    // kernel: rx_invalid_descs
	TxInvalidNpkts   uint64 `json:"tx_invalid_npkts"`    // kernel: tx_invalid_descs
	RxFullNpkts      uint64 `json:"rx_full_npkts"`       // kernel: rx_ring_full
	RxFillEmptyNpkts uint64 `json:"rx_fill_empty_npkts"` // kernel: rx_fill_ring_empty_descs
	TxEmptyNpkts     uint64 `json:"tx_empty_npkts"`      // kernel: tx_ring_empty_descs

	OptPolls         uint64 `json:"opt_polls"`
	RxEmptyPolls     uint64 `json:"rx_empty_polls"`
	TxTriggerSendtos uint64 `json:"tx_trigger_sendtos"`
	TxWakeupSendtos  uint64 `json:"tx_wakeup_sendtos"`
}

// PacketProcessor is the user-supplied per-packet decision function
// (spec.md §4.8). It is invoked from the worker thread with exclusive
// ownership of the frame for the call's duration; it may mutate pkt in
// place but must not retain the slice, and must not block
// indefinitely. Return -1 to drop, or an interface index in [0, I) to
// forward.
type PacketProcessor func(pkt []byte, rxIface int) int

// Affinity pins the calling goroutine's OS thread to a CPU core. Only
// Linux is supported; spec.md's Non-goals exclude portability beyond
// a kernel with a zero-copy packet-socket facility.
type Affinity interface {
	Pin(cpuID int) error
	Unpin() error
}

// FilterLoader loads and attaches the kernel-side XDP filter program
// requested by Config.Mode&ModeXDP, and publishes worker socket file
// descriptors into the shared "xsks" map (spec.md §4.7, §6). It is an
// external collaborator per spec.md §1: this interface only describes
// the calls the orchestrator makes into it, not how BPF bytecode is
// built or how a netlink classifier is installed.
type FilterLoader interface {
	// Load parses objPath, loads xdpProgName as an XDP program, and
	// attaches it to every interface in ifaceNames.
	Load(objPath string, xdpProgName string, ifaceNames []string, skbMode bool) error
	// PublishSocket stores fd in the "xsks" map under the given
	// (workerIdx, ifaceIdx) key.
	PublishSocket(workerIdx, ifaceIdx int, fd int) error
	// AttachEgress installs tcProgName on the clsact egress hook of
	// iface. Implementations may return ErrNotSupported — netlink-based
	// classifier installation is an external collaborator per spec.md §1.
	AttachEgress(iface string, tcProgName string) error
	DetachEgress(iface string) error
	// Detach removes the XDP program from every attached interface.
	Detach(ifaceNames []string) error
	// Close releases any BPF object handles.
	Close() error
}
