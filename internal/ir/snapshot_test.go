package ir_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"sable/internal/ir"
	"sable/internal/testkit"
)

func TestSnapshotRoundTrip(t *testing.T) {
	p, tu := testkit.SampleUnit()
	m, err := ir.ConstructModule(tu, p.Types, ir.Options{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, ir.EncodeModule(&buf, m))

	got, err := ir.DecodeModule(&buf)
	require.NoError(t, err)

	require.Equal(t, m.Name, got.Name)
	require.Equal(t, m.HasTopLevel, got.HasTopLevel)
	require.Equal(t, m.Order, got.Order)
	require.Len(t, got.Funcs, len(m.Funcs))

	var want, have bytes.Buffer
	require.NoError(t, ir.DumpModule(&want, m, p.Types))
	require.NoError(t, ir.DumpModule(&have, got, p.Types))
	require.Equal(t, want.String(), have.String())
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := ir.DecodeModule(bytes.NewReader([]byte("not a snapshot")))
	require.Error(t, err)
}

func TestEncodeNilModule(t *testing.T) {
	var buf bytes.Buffer
	require.Error(t, ir.EncodeModule(&buf, nil))
}
