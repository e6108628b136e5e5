package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *Config
		wantErr bool
	}{
		{
			name:    "nil config uses defaults",
			cfg:     nil,
			wantErr: false,
		},
		{
			name: "console output json format",
			cfg: &Config{
				Level:  "debug",
				Format: "json",
				Output: "console",
			},
			wantErr: false,
		},
		{
			name: "invalid level",
			cfg: &Config{
				Level:  "verbose",
				Format: "json",
				Output: "console",
			},
			wantErr: true,
		},
		{
			name: "invalid format",
			cfg: &Config{
				Level:  "info",
				Format: "xml",
				Output: "console",
			},
			wantErr: true,
		},
		{
			name: "file output without filename",
			cfg: &Config{
				Level:  "info",
				Format: "json",
				Output: "file",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := New(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, log)
		})
	}
}

func TestNamedAndWith(t *testing.T) {
	log, err := New(nil)
	require.NoError(t, err)

	named := log.Named("search")
	assert.NotNil(t, named)
	assert.NotSame(t, log, named)
}

func TestGlobalLogger(t *testing.T) {
	assert.NotNil(t, L())

	err := InitGlobal(&Config{Level: "info", Format: "json", Output: "console"})
	require.NoError(t, err)
	assert.NotNil(t, L())
}
