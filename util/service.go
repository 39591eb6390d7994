package util

import (
	"ixichain/util/log"

	"fmt"
	"sync"
	"sync/atomic"
)

// Service defines a service lifecycle: Start, Stop, Reset, with status
// checks and a wait-for-stop primitive. Long-running components such
// as node.Node implement it by embedding BaseService.
type Service interface {
	Start() error
	OnStart() error

	Stop() error
	OnStop()

	Reset() error
	OnReset() error

	IsRunning() bool

	SetLogger(logger log.Logger)

	String() string

	WaitForStop()
}

// BaseService is the embeddable boilerplate for Service: it tracks the
// running/stopped bit, guards double Start/Stop, and fans out OnStart/
// OnStop/OnReset to the embedding type (the "impl"). Implementations
// only need to define those three methods; Start/Stop/Reset here take
// care of the state machine around them.
type BaseService struct {
	Logger log.Logger
	name   string

	quit    chan struct{}
	started uint32
	stopped uint32

	mx   sync.Mutex
	impl Service
}

// Init must be called before Start. logger may be nil, in which case a
// no-op logger is used. impl is the embedding type; its OnStart/OnStop/
// OnReset methods are what Start/Stop/Reset call through to.
func (bs *BaseService) Init(logger log.Logger, name string, impl Service) {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	bs.Logger = logger
	bs.name = name
	bs.quit = make(chan struct{})
	bs.impl = impl
}

// SetLogger sets the service's logger.
func (bs *BaseService) SetLogger(logger log.Logger) {
	bs.Logger = logger
}

// Start sets the started flag and calls the embedding type's OnStart.
// It errors if the service was already started or has been stopped.
func (bs *BaseService) Start() error {
	if atomic.CompareAndSwapUint32(&bs.started, 0, 1) {
		if atomic.LoadUint32(&bs.stopped) == 1 {
			bs.Logger.Error(fmt.Sprintf("Not starting %v -- already stopped", bs.name), "impl", bs.impl)
			atomic.StoreUint32(&bs.started, 0)
			return ErrAlreadyStopped
		}
		bs.Logger.Info(fmt.Sprintf("Starting %v", bs.name), "impl", bs.impl)
		err := bs.impl.OnStart()
		if err != nil {
			atomic.StoreUint32(&bs.started, 0)
			return err
		}
		return nil
	}
	bs.Logger.Debug(fmt.Sprintf("Not starting %v -- already started", bs.name), "impl", bs.impl)
	return ErrAlreadyStarted
}

// OnStart is a no-op default; embedding types override it.
func (bs *BaseService) OnStart() error { return nil }

// Stop sets the stopped flag and calls the embedding type's OnStop.
// It errors if the service is already stopped; a service that was
// never started can still be stopped.
func (bs *BaseService) Stop() error {
	if atomic.CompareAndSwapUint32(&bs.stopped, 0, 1) {
		bs.Logger.Info(fmt.Sprintf("Stopping %v", bs.name), "impl", bs.impl)
		bs.impl.OnStop()
		close(bs.quit)
		return nil
	}
	bs.Logger.Debug(fmt.Sprintf("Stopping %v (already stopped)", bs.name), "impl", bs.impl)
	return ErrAlreadyStopped
}

// OnStop is a no-op default; embedding types override it.
func (bs *BaseService) OnStop() {}

// Reset is only valid on a stopped service; it clears the started/
// stopped bits and a fresh quit channel so Start can be called again.
func (bs *BaseService) Reset() error {
	if !atomic.CompareAndSwapUint32(&bs.stopped, 1, 0) {
		bs.Logger.Debug(fmt.Sprintf("Can't reset %v -- not stopped", bs.name), "impl", bs.impl)
		return ErrNotStopped
	}

	bs.mx.Lock()
	defer bs.mx.Unlock()
	atomic.CompareAndSwapUint32(&bs.started, 1, 0)
	bs.quit = make(chan struct{})
	return bs.impl.OnReset()
}

// OnReset must be overridden by embedding types that support Reset.
func (bs *BaseService) OnReset() error {
	return ErrNotResettable
}

// IsRunning reports whether the service has been started and not yet
// stopped.
func (bs *BaseService) IsRunning() bool {
	return atomic.LoadUint32(&bs.started) == 1 && atomic.LoadUint32(&bs.stopped) == 0
}

// Quit returns a channel that is closed when the service stops.
func (bs *BaseService) Quit() <-chan struct{} {
	return bs.quit
}

// WaitForStop blocks until the service's quit channel is closed.
func (bs *BaseService) WaitForStop() {
	<-bs.quit
}

// String returns the service's name.
func (bs *BaseService) String() string {
	return bs.name
}

var (
	ErrAlreadyStarted = fmt.Errorf("already started")
	ErrAlreadyStopped = fmt.Errorf("already stopped")
	ErrNotStopped     = fmt.Errorf("not stopped")
	ErrNotResettable  = fmt.Errorf("cannot reset this service, OnReset not overridden")
)
