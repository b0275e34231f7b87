package pgdb

import (
	"testing"
	"time"

	"github.com/gdsingh/skybook/config"
	"github.com/stretchr/testify/assert"
)

func TestBuildPoolConfig(t *testing.T) {
	cfg := config.DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "skybook",
		Password: "skybook",
		Name:     "skybookdb",
		SSLMode:  "disable",
		Pool: config.PoolConfig{
			MaxConns:              10,
			MinConns:              5,
			ConnectTimeoutSeconds: 30,
		},
	}

	pc, err := buildPoolConfig(cfg)
	assert.NoError(t, err)
	assert.Equal(t, int32(10), pc.MaxConns)
	assert.Equal(t, int32(5), pc.MinConns)
	assert.Equal(t, 30*time.Second, pc.ConnConfig.ConnectTimeout)
	assert.Equal(t, "skybookdb", pc.ConnConfig.Database)
}

func TestBuildPoolConfig_BadDSN(t *testing.T) {
	cfg := config.DatabaseConfig{Host: "localhost", SSLMode: "not-a-mode"}

	_, err := buildPoolConfig(cfg)
	assert.Error(t, err)
}
