// Package ioassay loads assay metadata from assays.yaml.
package ioassay

import (
	"os"

	"github.com/gnames/gn"
	"github.com/gnames/gnoccur/pkg/assay"
	"github.com/gnames/gnoccur/pkg/config"
	"gopkg.in/yaml.v3"
)

type ioassay struct {
	cfg *config.Config
}

// New creates an assays.yaml loader bound to the configured home
// directory.
func New(cfg *config.Config) assay.Assays {
	res := ioassay{cfg: cfg}
	return &res
}

// Load reads and validates assays.yaml. A missing file is not an error:
// assay metadata is optional and the skip policy can be driven entirely
// by configuration.
func (a *ioassay) Load() (*assay.AssaysConfig, error) {
	path := config.AssaysFilePath(a.cfg.HomeDir)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &assay.AssaysConfig{}, nil
		}
		return nil, AssaysConfigError(path, err)
	}

	var res assay.AssaysConfig
	if err = yaml.Unmarshal(data, &res); err != nil {
		return nil, AssaysConfigError(path, err)
	}

	res.Validate()
	for _, w := range res.Warnings {
		gn.Warn("assays.yaml <em>%s</em>: %s", w.AssayName, w.Message)
	}

	return &res, nil
}
