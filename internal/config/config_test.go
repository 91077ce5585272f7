package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"jpg", "png"}, splitList("jpg, png"))
	assert.Equal(t, []string{"jpg"}, splitList("jpg,,  "))
	assert.Nil(t, splitList(""))
}

func TestParseMapping(t *testing.T) {
	mapping := parseMapping("en:en-US, de:de-DE,fr:none,broken,:x,y:")
	assert.Equal(t, map[string]string{
		"en": "en-US",
		"de": "de-DE",
		"fr": "none",
	}, mapping)
}

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()

	assert.Equal(t, int32(8188), cfg.Port)
	assert.Equal(t, "http://localhost:8188", cfg.BaseURL)
	assert.Equal(t, DefaultStorageSubdir, cfg.Storage.Subdir)
	assert.Equal(t, "en", cfg.Languages.Current)
	assert.Equal(t, []string{"en"}, cfg.Languages.Enabled)
	assert.Equal(t, map[string]string{"en": "en-US"}, cfg.Languages.Mapping)
	assert.Equal(t, AuthModeNone, cfg.Auth.Mode)
	assert.True(t, cfg.Cleanup.Enabled)
}
