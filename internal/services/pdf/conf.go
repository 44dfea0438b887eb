package pdf

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var (
	baseConfOnce sync.Once
	baseConf     *model.Configuration
)

// newConfiguration returns a private copy of the process-wide pdfcpu configuration.
// The base is built once; pdfcpu's config directory is disabled so nothing is
// written to the user's home.
func newConfiguration() *model.Configuration {
	baseConfOnce.Do(func() {
		model.ConfigPath = "disable"
		conf := model.NewDefaultConfiguration()
		conf.ValidationMode = model.ValidationRelaxed
		baseConf = conf
	})
	conf := *baseConf
	return &conf
}

// readContext parses and validates a PDF held in memory
func readContext(data []byte) (*model.Context, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty document")
	}
	pctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), newConfiguration())
	if err != nil {
		return nil, fmt.Errorf("pdfcpu read: %w", err)
	}
	return pctx, nil
}
