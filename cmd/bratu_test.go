package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gaptooth/model_problems/Bratu1D"
)

var smallDeck = []byte(`
Title: Small Bratu
NTeeth: 3
NPointsPerTooth: 5
GapOverToothRatio: 2
Lambda: 1.
Dt: 1.e-5
DtPI: 4.e-5
K: 2
TPatch: 4.e-4
FinalTime: 1.2e-3
TPsi: 4.e-4
ReuseFactorization: true
`)

func TestRunBratu(t *testing.T) {
	dir := t.TempDir()
	deck := filepath.Join(dir, "bratu.yaml")
	require.NoError(t, os.WriteFile(deck, smallDeck, 0644))

	mb := &ModelBratu{ICFile: deck, OutputDir: filepath.Join(dir, "out")}
	ip := processBratuInput(mb)
	assert.Equal(t, 3, ip.NTeeth)
	assert.Equal(t, 2, ip.GapOverToothRatio)
	assert.Equal(t, 1.2e-3, ip.FinalTime)
	assert.True(t, ip.ReuseFactorization)
	// Keys absent from the deck keep their defaults
	assert.Equal(t, "cubic", ip.RBFKernel)
	assert.Equal(t, 10, ip.ArnoldiEigenvalues)

	{
		mb.Experiment = "sensitivity"
		err := RunBratu(mb, ip)
		assert.ErrorIs(t, err, Bratu1D.ErrUnsupportedExperiment)
		assert.Equal(t, "This experiment is not supported.", userMessage(err))
		assert.Equal(t, "unsupported experiment: \"sensitivity\"", err.Error())
		assert.Equal(t, "output directory: boom", userMessage(fmt.Errorf("output directory: %w", errors.New("boom"))))
	}
	{
		mb.Experiment = Bratu1D.Evolution
		require.NoError(t, RunBratu(mb, ip))
		for _, fn := range []string{"evolution.npy", "evolution.png"} {
			_, err := os.Stat(filepath.Join(mb.OutputDir, fn))
			assert.NoError(t, err, fn)
		}
	}
	{ // Compare against the previous result
		mb.Reference = filepath.Join(mb.OutputDir, "evolution.npy")
		require.NoError(t, RunBratu(mb, ip))
	}
	{
		bad := *ip
		bad.DtPI = bad.Dt
		mb.Reference = ""
		assert.Error(t, RunBratu(mb, &bad))
	}
}
