package driver_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"sable/internal/ast"
	"sable/internal/driver"
	"sable/internal/ir"
	"sable/internal/testkit"
)

func TestLowerAllPreservesOrder(t *testing.T) {
	var units []driver.Unit
	names := []string{"alpha", "beta", "gamma", "delta"}
	for _, name := range names {
		p, tu := testkit.SampleUnit()
		tu.Name = name
		units = append(units, driver.Unit{TU: tu, Types: p.Types})
	}

	mods, err := driver.LowerAll(context.Background(), units, ir.Options{}, 2)
	require.NoError(t, err)
	require.Len(t, mods, len(units))
	for i, m := range mods {
		require.NotNil(t, m)
		require.Equal(t, names[i], m.Name)
		require.NotNil(t, m.TopLevel)
	}
}

func TestLowerAllPropagatesErrors(t *testing.T) {
	p := testkit.NewProgram()
	b := p.Types.Builtins()

	// References an unresolved local, which the lowering rejects.
	bad := p.Fn("bad", nil, b.Int, testkit.Body(
		testkit.RetVal(testkit.LocalRef(b.Int, "missing")),
	))
	tu := p.Unit(ast.UnitLibrary, "broken", bad)

	good, goodTU := testkit.SampleUnit()

	_, err := driver.LowerAll(context.Background(), []driver.Unit{
		{TU: goodTU, Types: good.Types},
		{TU: tu, Types: p.Types},
	}, ir.Options{}, 0)
	require.Error(t, err)
	require.Contains(t, err.Error(), "broken")
}

func TestLowerAllEmptyInput(t *testing.T) {
	mods, err := driver.LowerAll(context.Background(), nil, ir.Options{}, 1)
	require.NoError(t, err)
	require.Empty(t, mods)
}
