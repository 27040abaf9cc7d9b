// Package runtime is the capability-oriented task scheduler: it maps a
// task's declared capability requirements onto registered providers and
// executes task plans in deterministic FIFO order, emitting an ordered
// trace of runtime events.
//
// Thread-safety: Runtime guards its provider registry and task queue with
// their own mutexes, so Spawn/RegisterProvider/Run may be called from
// different goroutines; a single Run (or RunWithTelemetry) call drains the
// queue to completion before returning, matching the single-threaded,
// cooperative execution model described for the scheduler — there is no
// concurrent task execution to synchronize beyond the registry and queue
// themselves.
package runtime

import (
	"fmt"
	"sync"
)

// Runtime is the capability scheduler. Use NewRuntime for an empty runtime
// or NewRuntimeWithDefaultShims to pre-register the stock io/time/fs/env
// providers.
type Runtime struct {
	mu        sync.RWMutex
	providers map[string]CapabilityProvider

	queueMu sync.Mutex
	queue   []taskEntry
}

type taskEntry struct {
	spec TaskSpec
	plan TaskPlan
}

// NewRuntime creates an empty runtime with no registered providers.
func NewRuntime() *Runtime {
	return &Runtime{providers: make(map[string]CapabilityProvider)}
}

// NewRuntimeWithDefaultShims creates a runtime with the stock io, time, fs,
// and env providers registered, ready to execute capability-driven task
// plans out of the box.
func NewRuntimeWithDefaultShims() (*Runtime, error) {
	rt := NewRuntime()
	for _, p := range []CapabilityProvider{
		ConsoleProvider{},
		TimeProvider{},
		FilesystemProvider{},
		EnvProvider{},
	} {
		if err := rt.RegisterProvider(p); err != nil {
			return nil, err
		}
	}
	return rt, nil
}

// RegisterProvider registers p under its own name. A duplicate name is an
// error.
func (rt *Runtime) RegisterProvider(p CapabilityProvider) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	name := p.Name()
	if _, exists := rt.providers[name]; exists {
		return &Error{Kind: ErrDuplicateProvider, Name: name}
	}
	rt.providers[name] = p
	return nil
}

// Spawn enqueues a task for execution. Tasks execute in the FIFO order they
// were spawned, relative to when Run/RunWithTelemetry drains the queue.
func (rt *Runtime) Spawn(spec TaskSpec, plan TaskPlan) {
	rt.queueMu.Lock()
	rt.queue = append(rt.queue, taskEntry{spec: spec, plan: plan})
	rt.queueMu.Unlock()
}

func (rt *Runtime) dequeue() (taskEntry, bool) {
	rt.queueMu.Lock()
	defer rt.queueMu.Unlock()
	if len(rt.queue) == 0 {
		return taskEntry{}, false
	}
	entry := rt.queue[0]
	rt.queue = rt.queue[1:]
	return entry, true
}

// EnsureCapabilities verifies every capability named in spec is registered
// with the runtime, returning an UnknownCapability error for the first one
// that is not.
func (rt *Runtime) EnsureCapabilities(spec TaskSpec) error {
	for _, cap := range spec.Capabilities {
		if _, err := rt.lookupProvider(cap); err != nil {
			return err
		}
	}
	return nil
}

func (rt *Runtime) lookupProvider(name string) (CapabilityProvider, error) {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	p, ok := rt.providers[name]
	if !ok {
		return nil, &Error{Kind: ErrUnknownCapability, Name: name}
	}
	return p, nil
}

// Run drains the task queue and returns the flat ordered event list. A task
// error aborts the whole run; events already emitted (by this task and any
// earlier ones) are not rolled back, but remaining queued tasks never run.
func (rt *Runtime) Run() ([]RuntimeEvent, error) {
	trace, err := rt.RunWithTelemetry()
	return trace.Events, err
}

// RunWithTelemetry drains the task queue like Run, additionally returning a
// RuntimeTrace: the same events paired with contiguous, zero-based
// telemetry sequence numbers and coarse wall-clock timestamps, plus
// per-task metrics, all stamped with a single RunID identifying this run.
func (rt *Runtime) RunWithTelemetry() (RuntimeTrace, error) {
	var events []RuntimeEvent
	var telemetry []TelemetryEvent
	sequence := 0
	for {
		entry, ok := rt.dequeue()
		if !ok {
			break
		}
		taskEvents, err := rt.executeTask(entry.spec, entry.plan)
		for _, ev := range taskEvents {
			// Stamped as each task's events become known, not once at the
			// very end, so wall-clock order tracks sequence order even
			// across a long-running run.
			ts := nowMicros()
			telemetry = append(telemetry, TelemetryEvent{Sequence: sequence, TimestampMicros: &ts, Event: ev})
			sequence++
		}
		events = append(events, taskEvents...)
		if err != nil {
			return finishTrace(events, telemetry), err
		}
	}
	return finishTrace(events, telemetry), nil
}

func (rt *Runtime) executeTask(spec TaskSpec, plan TaskPlan) ([]RuntimeEvent, error) {
	events := []RuntimeEvent{EventTaskStarted{Task: spec.Name}}

	for _, op := range plan.Ops {
		switch o := op.(type) {
		case TaskOpInvoke:
			if !spec.HasCapability(o.Capability) {
				return events, &Error{Kind: ErrMissingCapability, Task: spec.Name, Name: o.Capability}
			}
			provider, err := rt.lookupProvider(o.Capability)
			if err != nil {
				return events, err
			}
			events = append(events, EventCapabilityInvoked{
				Task: spec.Name, Capability: o.Capability, Operation: o.Operation,
			})
			resp, err := provider.Handle(CapabilityInvocation{
				Capability: o.Capability, Operation: o.Operation, Payload: o.Payload,
			})
			if err != nil {
				return events, err
			}
			for _, ev := range resp.Events {
				events = append(events, EventCapabilityEvent{
					Task: spec.Name, Capability: o.Capability, Event: ev,
				})
			}

		case TaskOpSpawn:
			rt.Spawn(o.ChildSpec, o.ChildPlan)
			events = append(events, EventTaskScheduled{Parent: spec.Name, Child: o.ChildSpec.Name})
		}
	}

	events = append(events, EventTaskCompleted{Task: spec.Name})
	return events, nil
}

// ErrorKind tags the four ways a Runtime operation can fail.
type ErrorKind int

const (
	ErrDuplicateProvider ErrorKind = iota
	ErrUnknownCapability
	ErrMissingCapability
	ErrProviderFailure
)

// Error is the uniform error type returned by Runtime and CapabilityProvider
// operations.
type Error struct {
	Kind    ErrorKind
	Task    string
	Name    string
	Message string
}

// ProviderFailure builds the error a CapabilityProvider.Handle returns when
// it cannot service an invocation (malformed payload, unsupported operation,
// a failed host syscall, ...).
func ProviderFailure(capability, format string, args ...any) *Error {
	return &Error{Kind: ErrProviderFailure, Name: capability, Message: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	switch e.Kind {
	case ErrDuplicateProvider:
		return fmt.Sprintf("capability provider %q already registered", e.Name)
	case ErrUnknownCapability:
		return fmt.Sprintf("capability %q is not registered with the runtime", e.Name)
	case ErrMissingCapability:
		return fmt.Sprintf("task %q attempted to use capability %q but it is not declared", e.Task, e.Name)
	case ErrProviderFailure:
		return fmt.Sprintf("capability provider %q reported an error: %s", e.Name, e.Message)
	default:
		return "runtime error"
	}
}
