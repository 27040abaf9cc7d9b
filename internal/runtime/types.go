package runtime

// TaskSpec is a task's name plus the ordered, de-duplicated set of
// capability names it is allowed to invoke.
type TaskSpec struct {
	Name         string
	Capabilities []string
}

// NewTaskSpec creates a TaskSpec with no required capabilities.
func NewTaskSpec(name string) TaskSpec {
	return TaskSpec{Name: name}
}

// WithCapabilities returns a copy of spec with each of the given capability
// names required, skipping any already present.
func (spec TaskSpec) WithCapabilities(capabilities ...string) TaskSpec {
	for _, c := range capabilities {
		spec.Require(c)
	}
	return spec
}

// Require adds capability to spec's requirement list if it isn't already
// present.
func (spec *TaskSpec) Require(capability string) {
	for _, c := range spec.Capabilities {
		if c == capability {
			return
		}
	}
	spec.Capabilities = append(spec.Capabilities, capability)
}

// HasCapability reports whether name is among spec's required capabilities.
func (spec TaskSpec) HasCapability(name string) bool {
	for _, c := range spec.Capabilities {
		if c == name {
			return true
		}
	}
	return false
}

// TaskOp is one step of a TaskPlan: either an Invoke of a capability
// operation or a Spawn of a child task.
type TaskOp interface{ taskOp() }

// TaskOpInvoke calls Operation on Capability with an optional payload.
type TaskOpInvoke struct {
	Capability string
	Operation  string
	Payload    *RuntimeValue
}

func (TaskOpInvoke) taskOp() {}

// TaskOpSpawn enqueues ChildSpec/ChildPlan as a new task at the tail of the
// scheduler's queue.
type TaskOpSpawn struct {
	ChildSpec TaskSpec
	ChildPlan TaskPlan
}

func (TaskOpSpawn) taskOp() {}

// TaskPlan is the ordered list of operations a task executes.
type TaskPlan struct {
	Ops []TaskOp
}

// Invoke appends a TaskOpInvoke and returns the plan, for chained
// construction.
func (p TaskPlan) Invoke(capability, operation string, payload *RuntimeValue) TaskPlan {
	p.Ops = append(p.Ops, TaskOpInvoke{Capability: capability, Operation: operation, Payload: payload})
	return p
}

// Spawn appends a TaskOpSpawn and returns the plan, for chained
// construction.
func (p TaskPlan) Spawn(spec TaskSpec, plan TaskPlan) TaskPlan {
	p.Ops = append(p.Ops, TaskOpSpawn{ChildSpec: spec, ChildPlan: plan})
	return p
}

// RuntimeValueKind tags the kind of a RuntimeValue.
type RuntimeValueKind int

const (
	RVUnit RuntimeValueKind = iota
	RVInt
	RVFloat
	RVBool
	RVString
)

// RuntimeValue is a primitive value exchanged between capability providers
// and tasks.
type RuntimeValue struct {
	Kind  RuntimeValueKind
	Int   int64
	Float float64
	Bool  bool
	Str   string
}

func UnitValue() RuntimeValue           { return RuntimeValue{Kind: RVUnit} }
func IntValue(v int64) RuntimeValue     { return RuntimeValue{Kind: RVInt, Int: v} }
func FloatValue(v float64) RuntimeValue { return RuntimeValue{Kind: RVFloat, Float: v} }
func BoolValue(v bool) RuntimeValue     { return RuntimeValue{Kind: RVBool, Bool: v} }
func StringValue(v string) RuntimeValue { return RuntimeValue{Kind: RVString, Str: v} }

// CapabilityProvider services capability invocations. Implementations must
// be safe for concurrent Handle calls; the stock providers are stateless.
type CapabilityProvider interface {
	Name() string
	Handle(invocation CapabilityInvocation) (ProviderResponse, error)
}

// CapabilityInvocation is the request delivered to a CapabilityProvider.
type CapabilityInvocation struct {
	Capability string
	Operation  string
	Payload    *RuntimeValue
}

// ProviderResponse is a provider's return value plus any events it emitted
// while servicing the invocation.
type ProviderResponse struct {
	Value  RuntimeValue
	Events []CapabilityEvent
}

// WithEvent appends ev to the response's event list and returns it, for
// chained construction.
func (r ProviderResponse) WithEvent(ev CapabilityEvent) ProviderResponse {
	r.Events = append(r.Events, ev)
	return r
}

// CapabilityEvent is a provider-emitted event: either a human-readable
// Message or a structured Data value.
type CapabilityEvent interface{ capabilityEvent() }

type EventMessage struct{ Text string }

func (EventMessage) capabilityEvent() {}

type EventData struct{ Value RuntimeValue }

func (EventData) capabilityEvent() {}

// RuntimeEvent is a scheduler-observed event, ordered in the sequence the
// scheduler observes it.
type RuntimeEvent interface{ runtimeEvent() }

type EventTaskStarted struct{ Task string }

func (EventTaskStarted) runtimeEvent() {}

type EventCapabilityInvoked struct {
	Task       string
	Capability string
	Operation  string
}

func (EventCapabilityInvoked) runtimeEvent() {}

type EventCapabilityEvent struct {
	Task       string
	Capability string
	Event      CapabilityEvent
}

func (EventCapabilityEvent) runtimeEvent() {}

type EventTaskScheduled struct{ Parent, Child string }

func (EventTaskScheduled) runtimeEvent() {}

type EventTaskCompleted struct{ Task string }

func (EventTaskCompleted) runtimeEvent() {}
