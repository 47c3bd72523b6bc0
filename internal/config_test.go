package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitList(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "two platforms", input: "linux/amd64,linux/arm64", want: []string{"linux/amd64", "linux/arm64"}},
		{name: "whitespace", input: " linux/amd64 , linux/arm64 ", want: []string{"linux/amd64", "linux/arm64"}},
		{name: "blank entries", input: "linux/amd64,,", want: []string{"linux/amd64"}},
		{name: "empty", input: "", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, splitList(tt.input))
		})
	}
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config()

	assert.NotEmpty(t, cfg.Image)
	assert.NotEmpty(t, cfg.Builder)
	assert.NotEmpty(t, cfg.Platforms)
	assert.Equal(t, "docker", cfg.Emulator)
	assert.Equal(t, cfg.Image+":"+cfg.Tag, cfg.Reference())
}

func TestReferenceWithoutTag(t *testing.T) {
	cfg := BuildConfig{Image: "example.com/app"}
	assert.Equal(t, "example.com/app", cfg.Reference())
}

func TestVersionStringLocal(t *testing.T) {
	old := version
	version = ""
	defer func() { version = old }()

	assert.True(t, IsLocal())
	assert.Equal(t, defaultLocalBuild, VersionString())
}
