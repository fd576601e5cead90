package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/sysid/internal/arx"
	"github.com/san-kum/sysid/internal/freqresp"
)

func TestScenarioBoundCommands(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"estimate", "--scenario", "tones"}, "estimate runs the arx scenario, not tones"},
		{[]string{"filter", "--scenario", "arx"}, "filter runs the tones scenario, not arx"},
	}
	for _, tt := range tests {
		t.Run(tt.args[0], func(t *testing.T) {
			root := newRootCmd()
			root.SetArgs(tt.args)
			root.SilenceErrors = true
			err := root.Execute()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadConfig_ScenarioEmbedding(t *testing.T) {
	tests := []struct {
		command  string
		scenario string
		want     int
	}{
		{"estimate", "arx", 0},
		{"filter", "tones", 200},
	}
	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			root := newRootCmd()
			cmd, _, err := root.Find([]string{tt.command})
			require.NoError(t, err)
			require.NoError(t, cmd.ParseFlags(nil))

			cfg, err := loadConfig(cmd, tt.scenario)
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.Filter.Embedding)
		})
	}
}

func TestLoadConfig_EmbeddingFlag(t *testing.T) {
	root := newRootCmd()
	cmd, _, err := root.Find([]string{"estimate"})
	require.NoError(t, err)
	require.NoError(t, cmd.ParseFlags([]string{"--embedding", "20"}))

	cfg, err := loadConfig(cmd, "arx")
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.Filter.Embedding)
}

func TestListComponents(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"list", "--components", "--data", t.TempDir()})
	require.NoError(t, root.Execute())
}

func TestDescribeFiltered_EmbeddingTooLarge(t *testing.T) {
	x := []float64{1, 2, 3, 4}
	assert.Error(t, describeFiltered(x, x, 4, 1))
	assert.NoError(t, describeFiltered(x, x, 2, 1))
}

func TestETFEError_MatchesOwnModel(t *testing.T) {
	m := arx.NewARX([]float64{-0.5}, []float64{1}, 1)
	u := make([]float64, 256)
	u[0] = 1
	y := m.Simulate(u)

	etfe, err := freqresp.ETFE(u, y, 1)
	require.NoError(t, err)
	rms, err := etfeError(m, etfe)
	require.NoError(t, err)
	assert.Less(t, rms, 1e-6)
}
