package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/docmark/internal/common"
	"github.com/ternarybob/docmark/internal/services/cover"
)

func TestNew_WiresComponents(t *testing.T) {
	cfg := common.NewDefaultConfig()

	application, err := New(cfg, arbor.NewLogger(), []string{"docmark.toml"})
	require.NoError(t, err)
	defer application.Close()

	assert.NotNil(t, application.Engine)
	assert.NotNil(t, application.Sampler)
	assert.NotNil(t, application.AssemblyService)
	assert.NotNil(t, application.APIHandler)
	assert.NotNil(t, application.ConfigHandler)
	assert.NotNil(t, application.DocumentHandler)
	assert.IsType(t, &cover.Client{}, application.CoverService)
	assert.Equal(t, []string{"pdf", "doc", "docx"}, application.UploadValidator.AllowedKinds())
	assert.Equal(t, []string{"docmark.toml"}, application.ConfigService.Sources())
}

func TestNew_InvalidUploadKinds(t *testing.T) {
	cfg := common.NewDefaultConfig()
	cfg.Upload.AllowedKinds = []string{"exe"}

	_, err := New(cfg, arbor.NewLogger(), nil)
	assert.Error(t, err)
}
