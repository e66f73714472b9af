package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/cashplan/internal/config"
)

func TestSetupValuesApply(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.General.Timezone = "UTC"
	v := setupValues{
		cap: "120000", target: "50000", sellRate: "320", buyRate: "",
		fee: "1.5", minSale: "10", minKeep: "0",
		extendable: []string{"BPA"},
		dbPath:     " /data/ledger.db ",
	}
	require.NoError(t, v.apply(&cfg))

	require.NotNil(t, cfg.Limits.DefaultMonthlyCap)
	assert.Equal(t, 120000.0, *cfg.Limits.DefaultMonthlyCap)
	assert.Nil(t, cfg.FX.BuyRate)
	assert.Equal(t, 1.5, cfg.FX.SellFeePct)
	assert.Equal(t, []string{"BPA"}, cfg.Limits.ExtendableBanks)
	assert.Equal(t, "/data/ledger.db", cfg.Ledger.DBPath)

	_, err := cfg.Advisory()
	assert.NoError(t, err)
}

func TestSetupValuesApply_BadNumber(t *testing.T) {
	cfg := config.DefaultConfig()
	v := setupValues{cap: "lots", target: "1", sellRate: "1"}
	assert.Error(t, v.apply(&cfg))
}

func TestSetupValuesApply_RejectsNaNAndInfinity(t *testing.T) {
	for _, bad := range []string{"NaN", "Inf", "+Inf", "-inf"} {
		cfg := config.DefaultConfig()
		v := setupValues{cap: "120000", target: "50000", sellRate: bad}
		assert.Error(t, v.apply(&cfg), "sell rate %q", bad)
		assert.Nil(t, cfg.FX.SellRate)

		v = setupValues{cap: "120000", target: "50000", sellRate: "320", fee: bad}
		assert.Error(t, v.apply(&cfg), "fee %q", bad)
	}
}

func TestNumberValidators(t *testing.T) {
	assert.Error(t, requiredNumber(""))
	assert.NoError(t, requiredNumber("12.5"))
	assert.Error(t, requiredNumber("-1"))
	assert.NoError(t, optionalNumber(""))
	assert.Error(t, optionalNumber("abc"))
	assert.Error(t, requiredNumber("NaN"))
	assert.Error(t, optionalNumber("Inf"))
	assert.Error(t, optionalNumber("+Inf"))
}
