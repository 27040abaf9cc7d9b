package runtime_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sir-Teo/mica/internal/runtime"
)

func TestConsoleProviderWriteLine(t *testing.T) {
	payload := runtime.StringValue("hi there")
	resp, err := runtime.ConsoleProvider{}.Handle(runtime.CapabilityInvocation{
		Capability: "io", Operation: "write_line", Payload: &payload,
	})
	require.NoError(t, err)
	require.Len(t, resp.Events, 1)
	msg, ok := resp.Events[0].(runtime.EventMessage)
	require.True(t, ok)
	assert.Equal(t, "hi there", msg.Text)
}

func TestConsoleProviderRejectsNonStringPayload(t *testing.T) {
	payload := runtime.IntValue(1)
	_, err := runtime.ConsoleProvider{}.Handle(runtime.CapabilityInvocation{
		Capability: "io", Operation: "write_line", Payload: &payload,
	})
	require.Error(t, err)
}

func TestConsoleProviderRejectsUnsupportedOperation(t *testing.T) {
	_, err := runtime.ConsoleProvider{}.Handle(runtime.CapabilityInvocation{
		Capability: "io", Operation: "read_line",
	})
	require.Error(t, err)
	var rerr *runtime.Error
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, runtime.ErrProviderFailure, rerr.Kind)
}

func TestTimeProviderNowMillis(t *testing.T) {
	resp, err := runtime.TimeProvider{}.Handle(runtime.CapabilityInvocation{
		Capability: "time", Operation: "now_millis",
	})
	require.NoError(t, err)
	assert.Equal(t, runtime.RVInt, resp.Value.Kind)
	require.Len(t, resp.Events, 1)
	data, ok := resp.Events[0].(runtime.EventData)
	require.True(t, ok)
	assert.Equal(t, resp.Value.Int, data.Value.Int)
}

func TestFilesystemProviderReadAndWriteString(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")

	writePayload := runtime.StringValue(path + "=hello=world")
	_, err := runtime.FilesystemProvider{}.Handle(runtime.CapabilityInvocation{
		Capability: "fs", Operation: "write_string", Payload: &writePayload,
	})
	require.NoError(t, err)

	contents, readErr := os.ReadFile(path)
	require.NoError(t, readErr)
	assert.Equal(t, "hello=world", string(contents))

	readPayload := runtime.StringValue(path)
	resp, err := runtime.FilesystemProvider{}.Handle(runtime.CapabilityInvocation{
		Capability: "fs", Operation: "read_to_string", Payload: &readPayload,
	})
	require.NoError(t, err)
	assert.Equal(t, "hello=world", resp.Value.Str)
}

func TestFilesystemProviderReadMissingFileFails(t *testing.T) {
	payload := runtime.StringValue(filepath.Join(t.TempDir(), "nope.txt"))
	_, err := runtime.FilesystemProvider{}.Handle(runtime.CapabilityInvocation{
		Capability: "fs", Operation: "read_to_string", Payload: &payload,
	})
	require.Error(t, err)
}

func TestFilesystemProviderWriteStringRejectsMalformedPayload(t *testing.T) {
	payload := runtime.StringValue("no-equals-sign")
	_, err := runtime.FilesystemProvider{}.Handle(runtime.CapabilityInvocation{
		Capability: "fs", Operation: "write_string", Payload: &payload,
	})
	require.Error(t, err)
}

func TestEnvProviderGetSetUnset(t *testing.T) {
	const key = "MICA_RUNTIME_TEST_VAR"
	_ = os.Unsetenv(key)

	missing := runtime.StringValue(key)
	resp, err := runtime.EnvProvider{}.Handle(runtime.CapabilityInvocation{
		Capability: "env", Operation: "get", Payload: &missing,
	})
	require.NoError(t, err)
	msg, ok := resp.Events[0].(runtime.EventMessage)
	require.True(t, ok)
	assert.Equal(t, key+" unset", msg.Text)

	setPayload := runtime.StringValue(key + "=present")
	_, err = runtime.EnvProvider{}.Handle(runtime.CapabilityInvocation{
		Capability: "env", Operation: "set", Payload: &setPayload,
	})
	require.NoError(t, err)
	assert.Equal(t, "present", os.Getenv(key))

	getPayload := runtime.StringValue(key)
	resp, err = runtime.EnvProvider{}.Handle(runtime.CapabilityInvocation{
		Capability: "env", Operation: "get", Payload: &getPayload,
	})
	require.NoError(t, err)
	data, ok := resp.Events[0].(runtime.EventData)
	require.True(t, ok)
	assert.Equal(t, "present", data.Value.Str)

	unsetPayload := runtime.StringValue(key)
	_, err = runtime.EnvProvider{}.Handle(runtime.CapabilityInvocation{
		Capability: "env", Operation: "unset", Payload: &unsetPayload,
	})
	require.NoError(t, err)
	_, found := os.LookupEnv(key)
	assert.False(t, found)
}

func TestEnvProviderSetRejectsMalformedPayload(t *testing.T) {
	payload := runtime.StringValue("no-equals-sign")
	_, err := runtime.EnvProvider{}.Handle(runtime.CapabilityInvocation{
		Capability: "env", Operation: "set", Payload: &payload,
	})
	require.Error(t, err)
}

func TestTaskSpecWithCapabilitiesDeduplicates(t *testing.T) {
	spec := runtime.NewTaskSpec("main").WithCapabilities("io", "io", "time")
	assert.Equal(t, []string{"io", "time"}, spec.Capabilities)
	assert.True(t, spec.HasCapability("io"))
	assert.False(t, spec.HasCapability("fs"))
}
