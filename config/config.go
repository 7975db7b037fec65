package config

import (
	"log"

	"github.com/kelseyhightower/envconfig"
	"github.com/mager/jukebox/jukebox"
)

type Config struct {
	Port int `default:"8080"`

	SpotifyID     string
	SpotifySecret string

	// Branch-graph tuning overrides. A zero branch threshold means
	// auto-calibrate.
	MaxBranches                int     `default:"4"`
	MaxBranchThreshold         float64 `default:"80"`
	BranchThreshold            float64 `default:"0"`
	AddLastEdge                bool    `default:"true"`
	RemoveSequentialDuplicates bool    `default:"false"`
}

func ProvideConfig() Config {
	var cfg Config
	err := envconfig.Process("jukebox", &cfg)
	if err != nil {
		log.Fatal(err.Error())
	}
	return cfg
}

// Jukebox maps the environment overrides onto the stock tuning.
func (c Config) Jukebox() jukebox.Config {
	jc := jukebox.DefaultConfig()
	jc.MaxBranches = c.MaxBranches
	jc.MaxBranchThreshold = c.MaxBranchThreshold
	jc.BranchThreshold = c.BranchThreshold
	jc.AddLastEdge = c.AddLastEdge
	jc.RemoveSequentialDuplicates = c.RemoveSequentialDuplicates
	return jc
}

var Options = ProvideConfig
