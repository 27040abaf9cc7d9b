package runtime_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sir-Teo/mica/internal/runtime"
)

// TestRegisterDefaultShimsWriteLine grounds scenario S6: registering the
// default shims, spawning a single io.write_line task, and running it
// produces exactly the four events TaskStarted/CapabilityInvoked/
// CapabilityEvent(Message)/TaskCompleted, in that order.
func TestRegisterDefaultShimsWriteLine(t *testing.T) {
	rt, err := runtime.NewRuntimeWithDefaultShims()
	require.NoError(t, err)

	payload := runtime.StringValue("hello")
	spec := runtime.NewTaskSpec("main").WithCapabilities("io")
	plan := runtime.TaskPlan{}.Invoke("io", "write_line", &payload)
	rt.Spawn(spec, plan)

	events, err := rt.Run()
	require.NoError(t, err)
	require.Len(t, events, 4)

	started, ok := events[0].(runtime.EventTaskStarted)
	require.True(t, ok)
	assert.Equal(t, "main", started.Task)

	invoked, ok := events[1].(runtime.EventCapabilityInvoked)
	require.True(t, ok)
	assert.Equal(t, "main", invoked.Task)
	assert.Equal(t, "io", invoked.Capability)
	assert.Equal(t, "write_line", invoked.Operation)

	capEvent, ok := events[2].(runtime.EventCapabilityEvent)
	require.True(t, ok)
	msg, ok := capEvent.Event.(runtime.EventMessage)
	require.True(t, ok)
	assert.Equal(t, "hello", msg.Text)

	completed, ok := events[3].(runtime.EventTaskCompleted)
	require.True(t, ok)
	assert.Equal(t, "main", completed.Task)
}

// TestSpawnOrderingParentCompletesBeforeChildStarts grounds P10: a parent
// that writes a line and then spawns a child finishes all of its own
// events (including TaskCompleted) before the child's TaskStarted appears.
func TestSpawnOrderingParentCompletesBeforeChildStarts(t *testing.T) {
	rt, err := runtime.NewRuntimeWithDefaultShims()
	require.NoError(t, err)

	payload := runtime.StringValue("parent")
	child := runtime.NewTaskSpec("child")
	parentPlan := runtime.TaskPlan{}.
		Invoke("io", "write_line", &payload).
		Spawn(child, runtime.TaskPlan{})
	rt.Spawn(runtime.NewTaskSpec("parent").WithCapabilities("io"), parentPlan)

	events, err := rt.Run()
	require.NoError(t, err)

	kinds := make([]string, len(events))
	tasks := make([]string, len(events))
	for i, ev := range events {
		switch e := ev.(type) {
		case runtime.EventTaskStarted:
			kinds[i], tasks[i] = "started", e.Task
		case runtime.EventCapabilityInvoked:
			kinds[i], tasks[i] = "invoked", e.Task
		case runtime.EventCapabilityEvent:
			kinds[i], tasks[i] = "cap_event", e.Task
		case runtime.EventTaskScheduled:
			kinds[i], tasks[i] = "scheduled", e.Parent
		case runtime.EventTaskCompleted:
			kinds[i], tasks[i] = "completed", e.Task
		}
	}

	require.Len(t, events, 7)
	assert.Equal(t, []string{"started", "invoked", "cap_event", "scheduled", "completed", "started", "completed"}, kinds)
	assert.Equal(t, []string{"parent", "parent", "parent", "parent", "parent", "child", "child"}, tasks)
}

// TestMissingCapabilityStopsTaskWithNoCapabilityEvent grounds P11: a task
// that declares only "time" but invokes "io" fails with MissingCapability
// and never reaches the provider, so no CapabilityEvent for "io" is
// observed.
func TestMissingCapabilityStopsTaskWithNoCapabilityEvent(t *testing.T) {
	rt, err := runtime.NewRuntimeWithDefaultShims()
	require.NoError(t, err)

	payload := runtime.StringValue("hello")
	spec := runtime.NewTaskSpec("main").WithCapabilities("time")
	plan := runtime.TaskPlan{}.Invoke("io", "write_line", &payload)
	rt.Spawn(spec, plan)

	_, err = rt.Run()
	require.Error(t, err)
	var rerr *runtime.Error
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, runtime.ErrMissingCapability, rerr.Kind)
	assert.Equal(t, "main", rerr.Task)
	assert.Equal(t, "io", rerr.Name)
}

// TestTelemetrySequenceIsContiguousAndMatchesEvents grounds P12: sequence
// numbers start at 0, increment by 1, and telemetry[i].Event equals
// events[i] for every i.
func TestTelemetrySequenceIsContiguousAndMatchesEvents(t *testing.T) {
	rt, err := runtime.NewRuntimeWithDefaultShims()
	require.NoError(t, err)

	payload := runtime.StringValue("hello")
	rt.Spawn(runtime.NewTaskSpec("main").WithCapabilities("io"),
		runtime.TaskPlan{}.Invoke("io", "write_line", &payload))

	trace, err := rt.RunWithTelemetry()
	require.NoError(t, err)
	require.Len(t, trace.Telemetry, len(trace.Events))
	for i, te := range trace.Telemetry {
		assert.Equal(t, i, te.Sequence)
		assert.Equal(t, trace.Events[i], te.Event)
		require.NotNil(t, te.TimestampMicros)
	}
}

// TestEnsureCapabilitiesRejectsUnregisteredCapability grounds the
// ensure_capabilities contract: a spec naming a capability with no
// registered provider is rejected before any task runs.
func TestEnsureCapabilitiesRejectsUnregisteredCapability(t *testing.T) {
	rt := runtime.NewRuntime()
	spec := runtime.NewTaskSpec("main").WithCapabilities("io")
	err := rt.EnsureCapabilities(spec)
	require.Error(t, err)
	var rerr *runtime.Error
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, runtime.ErrUnknownCapability, rerr.Kind)
}

// TestRegisterProviderRejectsDuplicateName grounds the duplicate-provider
// contract.
func TestRegisterProviderRejectsDuplicateName(t *testing.T) {
	rt := runtime.NewRuntime()
	require.NoError(t, rt.RegisterProvider(runtime.ConsoleProvider{}))
	err := rt.RegisterProvider(runtime.ConsoleProvider{})
	require.Error(t, err)
	var rerr *runtime.Error
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, runtime.ErrDuplicateProvider, rerr.Kind)
}

// TestTaskMetricsAggregatesCapabilityCountsAndSpawns grounds the JSON-facing
// TaskMetrics derivation: one task invoking "io" twice and spawning one
// child reports event_count, capability_counts, and spawned_tasks
// consistently.
func TestTaskMetricsAggregatesCapabilityCountsAndSpawns(t *testing.T) {
	rt, err := runtime.NewRuntimeWithDefaultShims()
	require.NoError(t, err)

	first := runtime.StringValue("one")
	second := runtime.StringValue("two")
	plan := runtime.TaskPlan{}.
		Invoke("io", "write_line", &first).
		Invoke("io", "write_line", &second).
		Spawn(runtime.NewTaskSpec("child"), runtime.TaskPlan{})
	rt.Spawn(runtime.NewTaskSpec("main").WithCapabilities("io"), plan)

	trace, err := rt.RunWithTelemetry()
	require.NoError(t, err)

	require.Len(t, trace.Tasks, 2)
	main := trace.Tasks[0]
	assert.Equal(t, "main", main.Task)
	assert.Equal(t, 2, main.CapabilityCounts["io"])
	assert.Equal(t, []string{"child"}, main.SpawnedTasks)
	require.NotNil(t, main.StartTimestampMicros)

	child := trace.Tasks[1]
	assert.Equal(t, "child", child.Task)
	assert.Equal(t, 2, child.EventCount)
}

// TestToJSONProducesTaggedEnvelope grounds the external trace format: a
// top-level object with events/telemetry/tasks arrays, each event carrying
// a "type" discriminator.
func TestToJSONProducesTaggedEnvelope(t *testing.T) {
	rt, err := runtime.NewRuntimeWithDefaultShims()
	require.NoError(t, err)

	payload := runtime.StringValue("hello")
	rt.Spawn(runtime.NewTaskSpec("main").WithCapabilities("io"),
		runtime.TaskPlan{}.Invoke("io", "write_line", &payload))

	trace, err := rt.RunWithTelemetry()
	require.NoError(t, err)

	raw, err := trace.ToJSON()
	require.NoError(t, err)
	body := string(raw)
	assert.Contains(t, body, `"type":"task_started"`)
	assert.Contains(t, body, `"type":"capability_invoked"`)
	assert.Contains(t, body, `"type":"capability_event"`)
	assert.Contains(t, body, `"type":"task_completed"`)
	assert.Contains(t, body, `"events"`)
	assert.Contains(t, body, `"telemetry"`)
	assert.Contains(t, body, `"tasks"`)
}
