package buildx

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cruciblehq/buildship/internal/command"
	"github.com/cruciblehq/buildship/internal/orchestrator"
	"github.com/cruciblehq/buildship/internal/platform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Records invocations and replies with canned output keyed by the first
// buildx argument.
type fakeRunner struct {
	calls   [][]string
	replies map[string]*command.Output
	err     error
	onRun   func(args []string)
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) (*command.Output, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	if f.err != nil {
		return nil, f.err
	}
	if f.onRun != nil {
		f.onRun(args)
	}
	if out, ok := f.replies[args[1]]; ok {
		return out, nil
	}
	return &command.Output{}, nil
}

func (f *fakeRunner) last() string {
	return strings.Join(f.calls[len(f.calls)-1], " ")
}

func notFound(name string) *command.Output {
	return &command.Output{ExitCode: 1, Stderr: `ERROR: no builder "` + name + `" found`}
}

func newTestClient(t *testing.T, runner *fakeRunner) *Client {
	t.Helper()
	cache := t.TempDir()
	return New(Config{
		Runner:   runner,
		Context:  "/src",
		CacheDir: func(builder string) string { return cache + "/" + builder },
	})
}

func TestExists(t *testing.T) {
	tests := []struct {
		name    string
		reply   *command.Output
		want    bool
		wantErr bool
	}{
		{name: "present", reply: &command.Output{}, want: true},
		{name: "absent", reply: notFound("multiarch"), want: false},
		{name: "daemon down", reply: &command.Output{ExitCode: 1, Stderr: "Cannot connect to the Docker daemon"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &fakeRunner{replies: map[string]*command.Output{"inspect": tt.reply}}
			c := newTestClient(t, r)

			got, err := c.Exists(context.Background(), "multiarch")
			if tt.wantErr {
				require.ErrorIs(t, err, ErrCommandFailed)
				assert.Contains(t, err.Error(), "Cannot connect to the Docker daemon")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, "docker buildx inspect multiarch", r.last())
		})
	}
}

func TestExistsRunnerError(t *testing.T) {
	boom := errors.New("exec: \"docker\": executable file not found in $PATH")
	c := newTestClient(t, &fakeRunner{err: boom})

	_, err := c.Exists(context.Background(), "multiarch")
	require.ErrorIs(t, err, boom)
}

func TestCreate(t *testing.T) {
	r := &fakeRunner{}
	c := newTestClient(t, r)

	set, err := platform.ParseSet([]string{"linux/amd64", "linux/arm64"})
	require.NoError(t, err)

	res, err := c.Create(context.Background(), "multiarch", set)
	require.NoError(t, err)

	assert.Equal(t, "multiarch", res.Name)
	assert.Equal(t, set, res.Platforms)
	assert.Equal(t,
		"docker buildx create --name multiarch --driver docker-container --platform linux/amd64,linux/arm64 --use",
		r.last(),
	)
}

func TestCreateFailure(t *testing.T) {
	r := &fakeRunner{replies: map[string]*command.Output{
		"create": {ExitCode: 1, Stderr: "ERROR: existing instance for \"multiarch\" but no append mode"},
	}}
	c := newTestClient(t, r)

	set, err := platform.ParseSet([]string{"linux/amd64"})
	require.NoError(t, err)

	_, err = c.Create(context.Background(), "multiarch", set)
	require.ErrorIs(t, err, ErrCommandFailed)
	assert.Contains(t, err.Error(), "existing instance")
}

func TestUse(t *testing.T) {
	r := &fakeRunner{}
	c := newTestClient(t, r)

	require.NoError(t, c.Use(context.Background(), "multiarch"))
	assert.Equal(t, "docker buildx use multiarch", r.last())
}

func TestBootstrap(t *testing.T) {
	r := &fakeRunner{}
	c := newTestClient(t, r)

	err := c.Bootstrap(context.Background(), orchestrator.Resource{Name: "multiarch"})
	require.NoError(t, err)
	assert.Equal(t, "docker buildx inspect --bootstrap multiarch", r.last())
}

func TestBootstrapFailure(t *testing.T) {
	r := &fakeRunner{replies: map[string]*command.Output{
		"inspect": {ExitCode: 1, Stderr: "ERROR: failed to initialize builder multiarch"},
	}}
	c := newTestClient(t, r)

	err := c.Bootstrap(context.Background(), orchestrator.Resource{Name: "multiarch"})
	require.ErrorIs(t, err, ErrCommandFailed)
	assert.Contains(t, err.Error(), "failed to initialize builder")
}

func TestRemove(t *testing.T) {
	tests := []struct {
		name  string
		reply *command.Output
		want  error
	}{
		{name: "removed", reply: &command.Output{}},
		{name: "absent", reply: notFound("multiarch"), want: orchestrator.ErrResourceNotFound},
		{name: "failure", reply: &command.Output{ExitCode: 1, Stderr: "permission denied"}, want: ErrCommandFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &fakeRunner{replies: map[string]*command.Output{"rm": tt.reply}}
			c := newTestClient(t, r)

			err := c.Remove(context.Background(), "multiarch")
			if tt.want == nil {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, tt.want)
			}
			assert.Equal(t, "docker buildx rm multiarch", r.last())
		})
	}
}

func TestRemoveTwiceIsIdempotent(t *testing.T) {
	removed := false
	r := &fakeRunner{}
	r.onRun = func(args []string) {
		if removed {
			r.replies = map[string]*command.Output{"rm": notFound("multiarch")}
		}
		removed = true
	}
	c := newTestClient(t, r)

	require.NoError(t, c.Remove(context.Background(), "multiarch"))
	require.ErrorIs(t, c.Remove(context.Background(), "multiarch"), orchestrator.ErrResourceNotFound)
}

func TestTail(t *testing.T) {
	assert.Equal(t, "a\nb", tail("a\nb", 3))
	assert.Equal(t, "c\nd", tail("a\nb\nc\nd", 2))
}

func TestCommandErrorFallsBackToStdout(t *testing.T) {
	err := commandError("docker", []string{"use", "x"}, &command.Output{ExitCode: 2, Stdout: "something odd"})
	require.ErrorIs(t, err, ErrCommandFailed)
	assert.Contains(t, err.Error(), "exit code 2: something odd")
}

func TestNewDefaults(t *testing.T) {
	c := New(Config{})

	assert.Equal(t, defaultBinary, c.binary)
	assert.Equal(t, ".", c.context)
	assert.IsType(t, &command.ExecRunner{}, c.runner)
	assert.NotNil(t, c.cacheDir)
}
