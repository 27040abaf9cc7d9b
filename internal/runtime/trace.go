package runtime

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// TelemetryEvent pairs one RuntimeEvent with its position in the observed
// sequence and a coarse wall-clock timestamp.
type TelemetryEvent struct {
	Sequence        int
	TimestampMicros *int64
	Event           RuntimeEvent
}

// TaskMetrics summarizes one task's participation in a run: how many events
// it produced, which children it spawned, when it started, and how many
// times each capability was invoked.
type TaskMetrics struct {
	Task                 string
	EventCount           int
	SpawnedTasks         []string
	StartTimestampMicros *int64
	CapabilityCounts     map[string]int
}

// RuntimeTrace is the complete record of one Runtime.RunWithTelemetry call:
// a RunID identifying the run, the flat ordered event list, the same events
// wrapped with telemetry metadata, and per-task metrics derived from them.
type RuntimeTrace struct {
	RunID     uuid.UUID
	Events    []RuntimeEvent
	Telemetry []TelemetryEvent
	Tasks     []TaskMetrics
}

func nowMicros() int64 { return time.Now().UnixMicro() }

func finishTrace(events []RuntimeEvent, telemetry []TelemetryEvent) RuntimeTrace {
	return RuntimeTrace{
		RunID:     uuid.New(),
		Events:    events,
		Telemetry: telemetry,
		Tasks:     taskMetrics(events, telemetry),
	}
}

// taskMetrics derives per-task summaries from an event/telemetry pair in a
// single pass, preserving first-seen task order.
func taskMetrics(events []RuntimeEvent, telemetry []TelemetryEvent) []TaskMetrics {
	order := []string{}
	byTask := map[string]*TaskMetrics{}

	ensure := func(task string) *TaskMetrics {
		m, ok := byTask[task]
		if !ok {
			m = &TaskMetrics{Task: task, CapabilityCounts: map[string]int{}}
			byTask[task] = m
			order = append(order, task)
		}
		return m
	}

	for i, ev := range events {
		switch e := ev.(type) {
		case EventTaskStarted:
			m := ensure(e.Task)
			m.EventCount++
			m.StartTimestampMicros = telemetry[i].TimestampMicros
		case EventCapabilityInvoked:
			m := ensure(e.Task)
			m.EventCount++
			m.CapabilityCounts[e.Capability]++
		case EventCapabilityEvent:
			m := ensure(e.Task)
			m.EventCount++
		case EventTaskScheduled:
			m := ensure(e.Parent)
			m.EventCount++
			m.SpawnedTasks = append(m.SpawnedTasks, e.Child)
		case EventTaskCompleted:
			m := ensure(e.Task)
			m.EventCount++
		}
	}

	result := make([]TaskMetrics, len(order))
	for i, task := range order {
		result[i] = *byTask[task]
	}
	return result
}

// jsonEnvelope is the tagged-object wire shape for a RuntimeTrace.
type jsonEnvelope struct {
	Events    []json.RawMessage `json:"events"`
	Telemetry []jsonTelemetry   `json:"telemetry"`
	Tasks     []jsonTaskMetrics `json:"tasks"`
}

type jsonTelemetry struct {
	Sequence        int             `json:"sequence"`
	TimestampMicros *int64          `json:"timestamp_micros,omitempty"`
	Event           json.RawMessage `json:"event"`
}

type jsonTaskMetrics struct {
	Task                 string         `json:"task"`
	EventCount           int            `json:"event_count"`
	SpawnedTasks         []string       `json:"spawned_tasks"`
	StartTimestampMicros *int64         `json:"start_timestamp_micros,omitempty"`
	CapabilityCounts     map[string]int `json:"capability_counts"`
}

// ToJSON renders the trace as the tagged-object envelope described for
// runtime traces: a top-level object with "events", "telemetry", and
// "tasks" arrays, each event tagged by a "type" discriminator.
func (t RuntimeTrace) ToJSON() ([]byte, error) {
	events := make([]json.RawMessage, len(t.Events))
	for i, ev := range t.Events {
		raw, err := eventToJSON(ev)
		if err != nil {
			return nil, err
		}
		events[i] = raw
	}

	telemetry := make([]jsonTelemetry, len(t.Telemetry))
	for i, te := range t.Telemetry {
		raw, err := eventToJSON(te.Event)
		if err != nil {
			return nil, err
		}
		telemetry[i] = jsonTelemetry{Sequence: te.Sequence, TimestampMicros: te.TimestampMicros, Event: raw}
	}

	tasks := make([]jsonTaskMetrics, len(t.Tasks))
	for i, tm := range t.Tasks {
		spawned := tm.SpawnedTasks
		if spawned == nil {
			spawned = []string{}
		}
		tasks[i] = jsonTaskMetrics{
			Task:                 tm.Task,
			EventCount:           tm.EventCount,
			SpawnedTasks:         spawned,
			StartTimestampMicros: tm.StartTimestampMicros,
			CapabilityCounts:     tm.CapabilityCounts,
		}
	}

	return json.Marshal(jsonEnvelope{Events: events, Telemetry: telemetry, Tasks: tasks})
}

// eventToJSON tags each RuntimeEvent variant with the "type" discriminator
// named in the external trace format (e.g. "task_started",
// "capability_invoked").
func eventToJSON(ev RuntimeEvent) (json.RawMessage, error) {
	switch e := ev.(type) {
	case EventTaskStarted:
		return json.Marshal(struct {
			Type string `json:"type"`
			Task string `json:"task"`
		}{"task_started", e.Task})

	case EventCapabilityInvoked:
		return json.Marshal(struct {
			Type       string `json:"type"`
			Task       string `json:"task"`
			Capability string `json:"capability"`
			Operation  string `json:"operation"`
		}{"capability_invoked", e.Task, e.Capability, e.Operation})

	case EventCapabilityEvent:
		payload, err := capabilityEventToJSON(e.Event)
		if err != nil {
			return nil, err
		}
		return json.Marshal(struct {
			Type       string          `json:"type"`
			Task       string          `json:"task"`
			Capability string          `json:"capability"`
			Event      json.RawMessage `json:"event"`
		}{"capability_event", e.Task, e.Capability, payload})

	case EventTaskScheduled:
		return json.Marshal(struct {
			Type   string `json:"type"`
			Parent string `json:"parent"`
			Child  string `json:"child"`
		}{"task_scheduled", e.Parent, e.Child})

	case EventTaskCompleted:
		return json.Marshal(struct {
			Type string `json:"type"`
			Task string `json:"task"`
		}{"task_completed", e.Task})

	default:
		return json.Marshal(struct {
			Type string `json:"type"`
		}{"unknown"})
	}
}

func capabilityEventToJSON(ev CapabilityEvent) (json.RawMessage, error) {
	switch e := ev.(type) {
	case EventMessage:
		return json.Marshal(struct {
			Type string `json:"type"`
			Text string `json:"text"`
		}{"message", e.Text})
	case EventData:
		return json.Marshal(struct {
			Type  string       `json:"type"`
			Value RuntimeValue `json:"value"`
		}{"data", e.Value})
	default:
		return json.Marshal(struct {
			Type string `json:"type"`
		}{"unknown"})
	}
}

// MarshalJSON renders a RuntimeValue as its kind tag plus the one field that
// applies, so Unit serializes as {"kind":"unit"} rather than exposing the
// unused numeric/string fields of the other kinds.
func (v RuntimeValue) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case RVInt:
		return json.Marshal(struct {
			Kind string `json:"kind"`
			Int  int64  `json:"int"`
		}{"int", v.Int})
	case RVFloat:
		return json.Marshal(struct {
			Kind  string  `json:"kind"`
			Float float64 `json:"float"`
		}{"float", v.Float})
	case RVBool:
		return json.Marshal(struct {
			Kind string `json:"kind"`
			Bool bool   `json:"bool"`
		}{"bool", v.Bool})
	case RVString:
		return json.Marshal(struct {
			Kind string `json:"kind"`
			Str  string `json:"string"`
		}{"string", v.Str})
	default:
		return json.Marshal(struct {
			Kind string `json:"kind"`
		}{"unit"})
	}
}
