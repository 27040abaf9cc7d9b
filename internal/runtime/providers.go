package runtime

import (
	"os"
	"time"
)

func nowMillis() int64 { return time.Now().UnixMilli() }

// payloadString extracts the string argument an operation expects, failing
// with a ProviderFailure naming the offending operation when the payload is
// absent or the wrong kind.
func payloadString(capability, operation string, payload *RuntimeValue) (string, error) {
	if payload == nil || payload.Kind != RVString {
		return "", ProviderFailure(capability, "%s expects a string payload", operation)
	}
	return payload.Str, nil
}

// ConsoleProvider is the stock "io" capability: console output.
type ConsoleProvider struct{}

func (ConsoleProvider) Name() string { return "io" }

func (p ConsoleProvider) Handle(inv CapabilityInvocation) (ProviderResponse, error) {
	switch inv.Operation {
	case "write_line":
		message, err := payloadString(p.Name(), inv.Operation, inv.Payload)
		if err != nil {
			return ProviderResponse{}, err
		}
		return ProviderResponse{Value: UnitValue()}.WithEvent(EventMessage{Text: message}), nil
	default:
		return ProviderResponse{}, ProviderFailure(p.Name(), "unsupported operation %q", inv.Operation)
	}
}

// TimeProvider is the stock "time" capability: wall-clock queries.
type TimeProvider struct{}

func (TimeProvider) Name() string { return "time" }

func (p TimeProvider) Handle(inv CapabilityInvocation) (ProviderResponse, error) {
	switch inv.Operation {
	case "now_millis":
		millis := nowMillis()
		return ProviderResponse{Value: IntValue(millis)}.WithEvent(EventData{Value: IntValue(millis)}), nil
	default:
		return ProviderResponse{}, ProviderFailure(p.Name(), "unsupported operation %q", inv.Operation)
	}
}

// FilesystemProvider is the stock "fs" capability: reading and, optionally,
// writing files on the host.
type FilesystemProvider struct{}

func (FilesystemProvider) Name() string { return "fs" }

func (p FilesystemProvider) Handle(inv CapabilityInvocation) (ProviderResponse, error) {
	switch inv.Operation {
	case "read_to_string":
		path, err := payloadString(p.Name(), inv.Operation, inv.Payload)
		if err != nil {
			return ProviderResponse{}, err
		}
		contents, readErr := os.ReadFile(path)
		if readErr != nil {
			return ProviderResponse{}, ProviderFailure(p.Name(), "failed to read %q: %s", path, readErr)
		}
		value := StringValue(string(contents))
		return ProviderResponse{Value: value}.WithEvent(EventData{Value: value}), nil

	case "write_string":
		// Payload is "path=data"; splitting on the first '=' keeps '=' legal
		// inside the written data itself.
		raw, err := payloadString(p.Name(), inv.Operation, inv.Payload)
		if err != nil {
			return ProviderResponse{}, err
		}
		path, data, ok := splitOnce(raw, '=')
		if !ok {
			return ProviderResponse{}, ProviderFailure(p.Name(), "write_string payload must be \"path=data\"")
		}
		if writeErr := os.WriteFile(path, []byte(data), 0o644); writeErr != nil {
			return ProviderResponse{}, ProviderFailure(p.Name(), "failed to write %q: %s", path, writeErr)
		}
		return ProviderResponse{Value: UnitValue()}.WithEvent(EventMessage{Text: path}), nil

	default:
		return ProviderResponse{}, ProviderFailure(p.Name(), "unsupported operation %q", inv.Operation)
	}
}

func splitOnce(s string, sep byte) (before, after string, ok bool) {
	for i := 0; i < len(s); i++ {
		if s[i] == sep {
			return s[:i], s[i+1:], true
		}
	}
	return "", "", false
}

// EnvProvider is the stock "env" capability: process environment variable
// access, named as a fourth stock provider beyond the original's
// io/time/fs set.
type EnvProvider struct{}

func (EnvProvider) Name() string { return "env" }

func (p EnvProvider) Handle(inv CapabilityInvocation) (ProviderResponse, error) {
	switch inv.Operation {
	case "get":
		name, err := payloadString(p.Name(), inv.Operation, inv.Payload)
		if err != nil {
			return ProviderResponse{}, err
		}
		value, found := os.LookupEnv(name)
		if !found {
			return ProviderResponse{Value: UnitValue()}.WithEvent(EventMessage{Text: name + " unset"}), nil
		}
		result := StringValue(value)
		return ProviderResponse{Value: result}.WithEvent(EventData{Value: result}), nil

	case "set":
		raw, err := payloadString(p.Name(), inv.Operation, inv.Payload)
		if err != nil {
			return ProviderResponse{}, err
		}
		name, value, ok := splitOnce(raw, '=')
		if !ok {
			return ProviderResponse{}, ProviderFailure(p.Name(), "set payload must be \"name=value\"")
		}
		if setErr := os.Setenv(name, value); setErr != nil {
			return ProviderResponse{}, ProviderFailure(p.Name(), "failed to set %q: %s", name, setErr)
		}
		return ProviderResponse{Value: UnitValue()}.WithEvent(EventMessage{Text: name}), nil

	case "unset":
		name, err := payloadString(p.Name(), inv.Operation, inv.Payload)
		if err != nil {
			return ProviderResponse{}, err
		}
		if unsetErr := os.Unsetenv(name); unsetErr != nil {
			return ProviderResponse{}, ProviderFailure(p.Name(), "failed to unset %q: %s", name, unsetErr)
		}
		return ProviderResponse{Value: UnitValue()}.WithEvent(EventMessage{Text: name}), nil

	default:
		return ProviderResponse{}, ProviderFailure(p.Name(), "unsupported operation %q", inv.Operation)
	}
}
