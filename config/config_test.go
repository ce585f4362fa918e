package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.True(t, cfg.Payment.AutoVerify)
	assert.Equal(t, int64(5*1024*1024), cfg.Payment.MaxUploadBytes)
	assert.True(t, cfg.Orders.RestampOnRepeat)

	p := cfg.Checkout.Pricing()
	assert.Equal(t, "500", p.FreeShippingThreshold.String())
	assert.Equal(t, "99", p.FlatShippingFee.String())
	assert.Equal(t, "0.15", p.TaxRate.String())
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("STORE_PAYMENT_AUTO_VERIFY", "false")
	t.Setenv("STORE_DATABASE_DRIVER", "sqlite")

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.Payment.AutoVerify)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "storefront.db", cfg.Database.DSN())
}

func TestValidateRejectsUnknownDriver(t *testing.T) {
	t.Setenv("STORE_DATABASE_DRIVER", "oracle")
	_, err := Load()
	assert.Error(t, err)
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{Driver: "mysql", User: "root", Password: "pw", Host: "db", Port: 3306, DBName: "shop"}
	assert.Equal(t, "root:pw@tcp(db:3306)/shop?charset=utf8mb4&parseTime=True&loc=Local", d.DSN())

	d = DatabaseConfig{Driver: "postgres", User: "u", Password: "p", Host: "h", Port: 5432, DBName: "n", SSLMode: "disable"}
	assert.Equal(t, "host=h user=u password=p dbname=n port=5432 sslmode=disable", d.DSN())
}
