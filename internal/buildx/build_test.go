package buildx

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/cruciblehq/buildship/internal/command"
	"github.com/cruciblehq/buildship/internal/orchestrator"
	"github.com/cruciblehq/buildship/internal/platform"
	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDigest = "sha256:e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

// Returns the value following flag in args, or "".
func flagValue(args []string, flag string) string {
	i := slices.Index(args, flag)
	if i < 0 || i+1 >= len(args) {
		return ""
	}
	return args[i+1]
}

// Writes the given metadata to the file buildx was asked to produce.
func writeMetadata(t *testing.T, body string) func(args []string) {
	return func(args []string) {
		path := flagValue(args, "--metadata-file")
		require.NotEmpty(t, path)
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}
}

func publishRequest(t *testing.T) orchestrator.BuildRequest {
	t.Helper()
	set, err := platform.ParseSet([]string{"linux/amd64", "linux/arm64"})
	require.NoError(t, err)
	return orchestrator.BuildRequest{
		Builder:   "multiarch",
		Image:     "example.com/app:latest",
		Platforms: set,
		Push:      true,
	}
}

func TestBuildPublish(t *testing.T) {
	r := &fakeRunner{}
	r.onRun = writeMetadata(t, `{"containerimage.digest": "`+testDigest+`"}`)
	c := newTestClient(t, r)

	res, err := c.Build(context.Background(), publishRequest(t))
	require.NoError(t, err)

	assert.Equal(t, "example.com/app:latest", res.Image)
	assert.Equal(t, digest.Digest(testDigest), res.Digest)

	args := r.calls[0]
	assert.Equal(t, []string{"docker", "buildx", "build"}, args[:3])
	assert.Equal(t, "multiarch", flagValue(args, "--builder"))
	assert.Equal(t, "linux/amd64,linux/arm64", flagValue(args, "--platform"))
	assert.Equal(t, "example.com/app:latest", flagValue(args, "--tag"))
	assert.Contains(t, args, "--push")
	assert.NotContains(t, args, "--load")
	assert.NotContains(t, args, "--no-cache")
	assert.Equal(t, "/src", args[len(args)-1])

	cacheFrom := flagValue(args, "--cache-from")
	assert.Contains(t, cacheFrom, "type=local,src=")
	assert.Contains(t, flagValue(args, "--cache-to"), "mode=max")

	dir := cacheFrom[len("type=local,src="):]
	assert.Equal(t, "multiarch", filepath.Base(dir))
	assert.DirExists(t, dir)

	_, err = os.Stat(flagValue(args, "--metadata-file"))
	assert.True(t, os.IsNotExist(err), "metadata file should be removed")
}

func TestBuildNoCache(t *testing.T) {
	r := &fakeRunner{}
	c := newTestClient(t, r)

	req := publishRequest(t)
	req.NoCache = true

	_, err := c.Build(context.Background(), req)
	require.NoError(t, err)

	args := r.calls[0]
	assert.Contains(t, args, "--no-cache")
	assert.NotContains(t, args, "--cache-from")
	assert.NotContains(t, args, "--cache-to")
}

func TestBuildLocalLoad(t *testing.T) {
	r := &fakeRunner{}
	c := newTestClient(t, r)

	res, err := c.Build(context.Background(), orchestrator.BuildRequest{
		Image:     "example.com/app:latest",
		Platforms: platform.Set{platform.Host()},
		Load:      true,
	})
	require.NoError(t, err)
	assert.Empty(t, res.Digest)

	args := r.calls[0]
	assert.Contains(t, args, "--load")
	assert.NotContains(t, args, "--push")
	assert.NotContains(t, args, "--builder")
	assert.NotContains(t, args, "--cache-from")
	assert.Equal(t, platform.Host().String(), flagValue(args, "--platform"))
}

func TestBuildFailure(t *testing.T) {
	r := &fakeRunner{replies: map[string]*command.Output{
		"build": {ExitCode: 1, Stderr: "#12 ERROR: failed to push example.com/app:latest: unauthorized"},
	}}
	c := newTestClient(t, r)

	res, err := c.Build(context.Background(), publishRequest(t))
	require.ErrorIs(t, err, ErrCommandFailed)
	assert.Nil(t, res)
	assert.Contains(t, err.Error(), "unauthorized")
}

func TestBuildBadDigestIsIgnored(t *testing.T) {
	r := &fakeRunner{}
	r.onRun = writeMetadata(t, `{"containerimage.digest": "not-a-digest"}`)
	c := newTestClient(t, r)

	res, err := c.Build(context.Background(), publishRequest(t))
	require.NoError(t, err)
	assert.Empty(t, res.Digest)
}

func TestReadDigest(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    digest.Digest
		wantErr bool
	}{
		{name: "valid", body: `{"containerimage.digest": "` + testDigest + `"}`, want: testDigest},
		{name: "empty file", body: "", wantErr: true},
		{name: "not json", body: "{", wantErr: true},
		{name: "missing key", body: `{"buildx.build.ref": "multiarch/multiarch0/abc"}`, wantErr: true},
		{name: "wrong type", body: `{"containerimage.digest": 42}`, wantErr: true},
		{name: "bad digest", body: `{"containerimage.digest": "sha256:xyz"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "metadata.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.body), 0o644))

			got, err := readDigest(path)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrMetadata)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
