// File: datapath/datapath.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Datapath is the process-wide orchestrator: it owns every pool,
// socket, and worker, and drives their lifecycle through Init ->
// StartWorkers -> StopWorkers -> Cleanup, exactly the four calls
// spec.md §2 names for the Datapath Orchestrator component.
//
// Grounded on original_source/src/xsknf.c's xsknf_init (bind-mode
// resolution, per-worker pool allocation shared across interfaces
// with the same bind mode, per-socket creation) and
// xsknf_start_workers/xsknf_stop_workers (CPU-count check against the
// calling thread's affinity mask, one worker pinned per available
// CPU), translated into the teacher's facade/hioload.go
// New/Start/Stop one-call orchestrator shape.

package datapath

import (
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/xskframe/xskframe/api"
	"github.com/xskframe/xskframe/control"
	"github.com/xskframe/xskframe/internal/affinity"
	"github.com/xskframe/xskframe/internal/taskqueue"
	"github.com/xskframe/xskframe/umem"
	"github.com/xskframe/xskframe/worker"
	"github.com/xskframe/xskframe/xsk"
)

// Params configures a single Datapath. Loader and Poller are optional
// external collaborators; nil disables the kernel-filter stage /
// selects the real syscall poller respectively.
type Params struct {
	Config        api.Config
	Processor     api.PacketProcessor
	Loader        api.FilterLoader
	Poller        worker.Poller
	socketFactory SocketFactory // test-only override
}

type workerSockets struct {
	sockets []xsk.Handle // indexed by interface position
}

// Datapath owns every pool, socket, and worker for one running
// configuration.
type Datapath struct {
	mu      sync.Mutex
	running bool

	cfg        api.Config
	ifaceNames []string
	bindModes  []api.BindMode

	pools    [][2]*umem.Pool // [workerIdx][bindMode-1]; nil when unused
	sockets  []workerSockets // [workerIdx]
	workers  []*worker.Worker
	pinners  []*affinity.CPUSet
	stopFlag *atomic.Bool
	wg       sync.WaitGroup

	loader   api.FilterLoader
	poller   worker.Poller
	factory  SocketFactory
	Config   *control.ConfigStore
	Metrics  *control.MetricsRegistry
	tasks    *taskqueue.Queue
}

// Init validates p.Config, resolves bind modes and interface
// indices, allocates pools and sockets, and (if p.Loader is set and
// p.Config.Mode includes ModeXDP) loads the kernel filter program and
// publishes every socket into its map. It does not start any worker
// goroutine -- call StartWorkers for that.
func Init(p Params) (*Datapath, error) {
	cfg := p.Config
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	factory := p.socketFactory
	if factory == nil {
		factory = defaultSocketFactory
	}

	ifaceNames := make([]string, len(cfg.Interfaces))
	ifaceIndexes := make([]int, len(cfg.Interfaces))
	for i, ifc := range cfg.Interfaces {
		ifaceNames[i] = ifc.Name
		idx, err := resolveIfaceIndex(ifc.Name)
		if err != nil {
			return nil, api.NewError(api.ErrCodeConfiguration, api.ErrUnknownInterface).
				WithContext("iface", ifc.Name).WithContext("err", err)
		}
		ifaceIndexes[i] = idx
	}

	bindModes := resolveBindModes(cfg)

	d := &Datapath{
		cfg:        cfg,
		ifaceNames: ifaceNames,
		bindModes:  bindModes,
		pools:      make([][2]*umem.Pool, cfg.Workers),
		sockets:    make([]workerSockets, cfg.Workers),
		workers:    make([]*worker.Worker, cfg.Workers),
		pinners:    make([]*affinity.CPUSet, cfg.Workers),
		stopFlag:   &atomic.Bool{},
		loader:     p.Loader,
		poller:     p.Poller,
		factory:    factory,
		Config:     control.NewConfigStore(cfg),
		Metrics:    control.NewMetricsRegistry(),
		tasks:      taskqueue.New(1),
	}
	if d.poller == nil {
		d.poller = worker.NewDefaultPoller()
	}

	nPerMode := [2]int{} // [BindCopy-1], [BindZeroCopy-1]
	for _, m := range bindModes {
		nPerMode[m-1]++
	}

	for w := 0; w < cfg.Workers; w++ {
		var pools [2]*umem.Pool
		for _, m := range []api.BindMode{api.BindCopy, api.BindZeroCopy} {
			if nPerMode[m-1] == 0 {
				continue
			}
			pool, err := umem.NewPool(cfg.FrameSize, len(cfg.Interfaces), cfg.Unaligned, m)
			if err != nil {
				d.Cleanup()
				return nil, api.NewError(api.ErrCodeResourceAllocation, api.ErrFailedAlloc).
					WithContext("worker", w).WithContext("mode", m.String()).WithContext("err", err)
			}
			pools[m-1] = pool
		}
		d.pools[w] = pools

		sockets := make([]xsk.Handle, len(cfg.Interfaces))
		var ownerFd [2]int
		var haveOwner [2]bool
		for i, ifc := range cfg.Interfaces {
			mode := bindModes[i]
			pool := pools[mode-1]

			isOwner := !haveOwner[mode-1]
			sock, err := factory(xsk.Config{
				IfaceName:  ifc.Name,
				IfaceIndex: ifaceIndexes[i],
				QueueID:    uint32(w),
				BindMode:   mode,
				Pool:       pool,
				SocketIdx:  i,
				BusyPoll:   cfg.BusyPoll,
				UmemOwner:  isOwner,
				SharedFd:   ownerFd[mode-1],
			})
			if err != nil {
				d.Cleanup()
				return nil, api.NewError(api.ErrCodeResourceAllocation, api.ErrSocketCreate).
					WithContext("worker", w).WithContext("iface", ifc.Name).WithContext("err", err)
			}
			if isOwner {
				ownerFd[mode-1] = sock.Fd()
				haveOwner[mode-1] = true
			}
			sockets[i] = sock
		}
		d.sockets[w] = workerSockets{sockets: sockets}
		d.workers[w] = worker.New(w, sockets, p.Processor, uint32(cfg.BatchSize))
		d.workers[w].PollEnabled = cfg.Poll
		d.workers[w].BusyPoll = cfg.BusyPoll
	}

	if cfg.Mode.HasXDP() && d.loader != nil {
		if err := d.loader.Load(cfg.EBPFObjectPath, cfg.XDPProgramName, ifaceNames, cfg.SKBMode); err != nil {
			d.Cleanup()
			return nil, fmt.Errorf("datapath: kernel filter load: %w", err)
		}
		if cfg.Mode.HasAFXDP() {
			for w := 0; w < cfg.Workers; w++ {
				for i, sock := range d.sockets[w].sockets {
					if err := d.loader.PublishSocket(w, i, sock.Fd()); err != nil {
						d.Cleanup()
						return nil, fmt.Errorf("datapath: publish socket (worker=%d iface=%d): %w", w, i, err)
					}
				}
			}
		}
	}

	return d, nil
}

func validateConfig(cfg api.Config) error {
	if cfg.Workers < 1 {
		return api.NewError(api.ErrCodeConfiguration, api.ErrBadWorkerCount)
	}
	if cfg.BatchSize < 1 || cfg.BatchSize > api.MaxBatchSize {
		return api.NewError(api.ErrCodeConfiguration, api.ErrBadBatchSize)
	}
	if !cfg.Unaligned && !umem.IsPowerOfTwo(cfg.FrameSize) {
		return api.NewError(api.ErrCodeConfiguration, api.ErrBadFrameSize)
	}
	if len(cfg.Interfaces) == 0 {
		return api.NewError(api.ErrCodeConfiguration, api.ErrUnknownInterface).WithContext("reason", "no interfaces configured")
	}
	return nil
}

func resolveIfaceIndex(name string) (int, error) {
	ifc, err := net.InterfaceByName(name)
	if err != nil {
		return 0, err
	}
	return ifc.Index, nil
}

// StartWorkers checks that the calling thread's CPU affinity mask has
// at least cfg.Workers eligible CPUs (spec.md §6, ErrInsufficientCPUs
// otherwise), then launches each worker's Run loop pinned to one CPU
// per worker, mirroring xsknf_start_workers's cpu_set enumeration.
func (d *Datapath) StartWorkers() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running {
		return api.ErrAlreadyRunning
	}

	cpus, err := affinity.EligibleCPUs()
	if err != nil {
		return fmt.Errorf("datapath: %w", err)
	}
	if len(cpus) < d.cfg.Workers {
		return api.ErrInsufficientCPUs
	}

	d.stopFlag.Store(false)
	for w := 0; w < d.cfg.Workers; w++ {
		pin := affinity.New()
		d.pinners[w] = pin
		wk := d.workers[w]
		cpu := cpus[w]
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			_ = wk.Run(d.stopFlag, pin, cpu, d.poller, d.cfg.PollTimeout)
		}()
	}
	d.running = true
	return nil
}

// StopWorkers signals every worker loop to exit and waits for them to
// return, mirroring xsknf_stop_workers's pthread_join loop.
func (d *Datapath) StopWorkers() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.running {
		return api.ErrNotRunning
	}
	d.stopFlag.Store(true)
	d.wg.Wait()
	d.running = false
	return nil
}

// GetSocketStats fetches and returns the current stats for one
// (worker, interface) socket, and asynchronously publishes the
// snapshot into d.Metrics via the background task queue -- never
// blocking the caller on the registry's lock.
func (d *Datapath) GetSocketStats(workerIdx, ifaceIdx int) (api.Stats, error) {
	d.mu.Lock()
	if workerIdx < 0 || workerIdx >= len(d.sockets) {
		d.mu.Unlock()
		return api.Stats{}, fmt.Errorf("datapath: worker index %d out of range", workerIdx)
	}
	socks := d.sockets[workerIdx].sockets
	if ifaceIdx < 0 || ifaceIdx >= len(socks) {
		d.mu.Unlock()
		return api.Stats{}, fmt.Errorf("datapath: interface index %d out of range", ifaceIdx)
	}
	sock := socks[ifaceIdx]
	d.mu.Unlock()

	stats, err := sock.Stats()
	if err != nil {
		return api.Stats{}, fmt.Errorf("datapath: stats (worker=%d iface=%d): %w", workerIdx, ifaceIdx, err)
	}

	key := control.SocketKey{WorkerIdx: workerIdx, IfaceIdx: ifaceIdx}
	now := time.Now()
	_ = d.tasks.Submit(func() { d.Metrics.Update(key, stats, now) })

	return stats, nil
}

// Cleanup stops any running workers, closes every socket and pool,
// detaches the kernel filter if one was loaded, and drains the
// background task queue. Safe to call multiple times and safe to call
// after a partially-failed Init.
func (d *Datapath) Cleanup() error {
	d.mu.Lock()
	running := d.running
	d.mu.Unlock()
	if running {
		_ = d.StopWorkers()
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	var firstErr error
	for _, ws := range d.sockets {
		for _, sock := range ws.sockets {
			if sock == nil {
				continue
			}
			if err := sock.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	d.sockets = nil

	for _, pair := range d.pools {
		for _, pool := range pair {
			if pool == nil {
				continue
			}
			if err := pool.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	d.pools = nil

	if d.loader != nil {
		if err := d.loader.Detach(d.ifaceNames); err != nil && firstErr == nil {
			firstErr = err
		}
		if err := d.loader.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if d.tasks != nil {
		d.tasks.Close()
	}
	return firstErr
}
