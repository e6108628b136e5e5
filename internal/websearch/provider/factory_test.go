package provider

import (
	"testing"

	"github.com/lk2023060901/ai-search-backend/internal/websearch/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactory_Create(t *testing.T) {
	factory := NewFactory()

	tests := []struct {
		name    string
		config  *types.ProviderConfig
		wantErr bool
	}{
		{
			name: "create searxng provider",
			config: &types.ProviderConfig{
				ID:      types.ProviderSearXNG,
				Name:    "SearXNG",
				APIHost: "http://localhost:8080",
			},
			wantErr: false,
		},
		{
			name: "create google provider",
			config: &types.ProviderConfig{
				ID:       types.ProviderGoogle,
				Name:     "Google",
				APIHost:  "https://www.googleapis.com",
				APIKey:   "key",
				EngineID: "cx",
			},
			wantErr: false,
		},
		{
			name: "create tavily provider",
			config: &types.ProviderConfig{
				ID:      types.ProviderTavily,
				Name:    "Tavily",
				APIHost: "https://api.tavily.com",
				APIKey:  "key",
			},
			wantErr: false,
		},
		{
			name: "unknown provider",
			config: &types.ProviderConfig{
				ID:      "bing",
				Name:    "Bing",
				APIHost: "https://api.bing.com",
				APIKey:  "key",
			},
			wantErr: true,
		},
		{
			name: "invalid config",
			config: &types.ProviderConfig{
				ID: types.ProviderTavily,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := factory.Create(tt.config)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.config.ID, p.GetID())
		})
	}
}

func TestFactory_ListProviders(t *testing.T) {
	factory := NewFactory()
	ids := factory.ListProviders()

	assert.Len(t, ids, 3)
	assert.Contains(t, ids, types.ProviderSearXNG)
	assert.Contains(t, ids, types.ProviderGoogle)
	assert.Contains(t, ids, types.ProviderTavily)
}
