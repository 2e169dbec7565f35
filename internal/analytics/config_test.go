package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.InDelta(t, 1.0, WeightSum(cfg), 0.001)
	assert.Equal(t, 14, cfg.StaleAfterDays)
	assert.Equal(t, 4, cfg.MaxActions)
	assert.Equal(t, 5, cfg.MaxTimelines)
}

func TestValidateConfig(t *testing.T) {
	t.Run("valid default config", func(t *testing.T) {
		require.NoError(t, ValidateConfig(DefaultConfig()))
	})

	t.Run("negative weight", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.VelocityWeight = -0.2
		err := ValidateConfig(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "velocity_weight must be >= 0")
	})

	t.Run("weights dont sum to one", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.CompletionWeight = 0.5
		err := ValidateConfig(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "weights should sum to 1.0")
	})

	t.Run("zero stale window", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.StaleAfterDays = 0
		err := ValidateConfig(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "stale_after_days must be > 0")
	})

	t.Run("inverted risk ratios", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.HighRiskRatio = 0.05
		err := ValidateConfig(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "high_risk_ratio must be between")
	})

	t.Run("negative caps", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.MaxActions = -1
		cfg.MaxTimelines = -1
		err := ValidateConfig(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max_actions must be >= 0")
		assert.Contains(t, err.Error(), "max_timelines must be >= 0")
	})
}
