package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultParams_Valid(t *testing.T) {
	assert.NoError(t, DefaultParams().Validate())
}

func TestParams_Validate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Params)
	}{
		{"unknown hedge method", func(p *Params) { p.HedgeMethod = "magic" }},
		{"ols window too small", func(p *Params) { p.OLSWindow = 1 }},
		{"zero process noise", func(p *Params) { p.KalmanProcessNoise = 0 }},
		{"negative observation noise", func(p *Params) { p.KalmanObservationNoise = -1 }},
		{"zero init variance", func(p *Params) { p.KalmanInitVariance = 0 }},
		{"zscore window too small", func(p *Params) { p.ZScoreWindow = 1 }},
		{"zero entry threshold", func(p *Params) { p.EntryThreshold = 0 }},
		{"negative exit threshold", func(p *Params) { p.ExitThreshold = -0.1 }},
		{"exit not below entry", func(p *Params) { p.ExitThreshold = p.EntryThreshold }},
		{"significance out of range", func(p *Params) { p.ADFSignificance = 1 }},
		{"adf lag below auto", func(p *Params) { p.ADFLag = -2 }},
		{"negative trade cost", func(p *Params) { p.TradeCost = -0.01 }},
		{"zero annualization", func(p *Params) { p.AnnualizationFactor = 0 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := DefaultParams()
			tc.mutate(&p)
			assert.Error(t, p.Validate())
		})
	}
}

func TestParams_ValidateBoundaries(t *testing.T) {
	p := DefaultParams()
	p.ExitThreshold = 0 // inclusive lower bound
	assert.NoError(t, p.Validate())

	p.ADFLag = 0 // fixed zero-lag Dickey-Fuller is allowed
	assert.NoError(t, p.Validate())

	p.TradeCost = 0
	assert.NoError(t, p.Validate())
}
