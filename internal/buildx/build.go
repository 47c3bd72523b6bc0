package buildx

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/cruciblehq/buildship/internal/orchestrator"
	"github.com/cruciblehq/buildship/internal/paths"
	"github.com/opencontainers/go-digest"
)

// Key of the manifest digest in the buildx metadata file.
const metadataDigestKey = "containerimage.digest"

// Builds the image and pushes or loads it as requested.
//
// Builds on a named builder import and export the layer cache from a local
// directory, unless caching is disabled. The manifest digest is read from
// the buildx metadata file when available; a missing or malformed digest is
// not an error.
func (c *Client) Build(ctx context.Context, req orchestrator.BuildRequest) (*orchestrator.BuildResult, error) {
	metadata, err := os.CreateTemp("", "buildship-metadata-*.json")
	if err != nil {
		return nil, err
	}
	metadata.Close()
	defer os.Remove(metadata.Name())

	args, err := c.buildArgs(req, metadata.Name())
	if err != nil {
		return nil, err
	}

	if _, err := c.mustBuildx(ctx, args...); err != nil {
		return nil, err
	}

	result := &orchestrator.BuildResult{Image: req.Image}

	dgst, err := readDigest(metadata.Name())
	if err != nil {
		slog.Warn("could not read image digest", "error", err)
	} else {
		result.Digest = dgst
	}

	return result, nil
}

// Assembles the arguments for "docker buildx build".
func (c *Client) buildArgs(req orchestrator.BuildRequest, metadataFile string) ([]string, error) {
	args := []string{"build"}

	if req.Builder != "" {
		args = append(args, "--builder", req.Builder)
	}

	args = append(args,
		"--platform", req.Platforms.String(),
		"--tag", req.Image,
		"--metadata-file", metadataFile,
	)

	if req.NoCache {
		args = append(args, "--no-cache")
	} else if req.Builder != "" {
		cacheArgs, err := c.cacheArgs(req.Builder)
		if err != nil {
			return nil, err
		}
		args = append(args, cacheArgs...)
	}

	if req.Push {
		args = append(args, "--push")
	}
	if req.Load {
		args = append(args, "--load")
	}

	return append(args, c.context), nil
}

// Returns cache import and export arguments for a named builder.
//
// The default docker driver cannot export a cache, so these are only used
// with builders created by [Client.Create].
func (c *Client) cacheArgs(builder string) ([]string, error) {
	dir := c.cacheDir(builder)
	if err := os.MkdirAll(dir, paths.DefaultDirMode); err != nil {
		return nil, err
	}

	return []string{
		"--cache-from", "type=local,src=" + dir,
		"--cache-to", "type=local,dest=" + dir + ",mode=max",
	}, nil
}

// Reads the manifest digest from a buildx metadata file.
func readDigest(path string) (digest.Digest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty metadata file", ErrMetadata)
	}

	var metadata map[string]any
	if err := json.Unmarshal(data, &metadata); err != nil {
		return "", fmt.Errorf("%w: %w", ErrMetadata, err)
	}

	raw, ok := metadata[metadataDigestKey].(string)
	if !ok {
		return "", fmt.Errorf("%w: no %s", ErrMetadata, metadataDigestKey)
	}

	dgst, err := digest.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrMetadata, err)
	}

	return dgst, nil
}
