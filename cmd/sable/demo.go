package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"sable/internal/driver"
	"sable/internal/ir"
	"sable/internal/testkit"
)

var (
	demoVerbose bool
	demoOut     string
	demoUnits   int
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Lower built-in sample units and dump their IR",
	RunE: func(cmd *cobra.Command, _ []string) error {
		mode, _ := cmd.Flags().GetString("color")
		configureColor(mode)

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		opts := ir.Options{
			Verbose:    demoVerbose || cfg.Verbose,
			DumpWriter: os.Stderr,
		}

		if demoUnits < 1 {
			demoUnits = 1
		}
		units := make([]driver.Unit, demoUnits)
		for i := range units {
			p, tu := testkit.SampleUnit()
			if i > 0 {
				tu.Name = fmt.Sprintf("sample%d", i+1)
			}
			units[i] = driver.Unit{TU: tu, Types: p.Types}
		}

		mods, err := driver.LowerAll(cmd.Context(), units, opts, cfg.Jobs)
		if err != nil {
			return err
		}

		for i, m := range mods {
			if err := ir.DumpModule(os.Stdout, m, units[i].Types); err != nil {
				return err
			}
		}

		if demoOut != "" {
			f, err := os.Create(demoOut)
			if err != nil {
				return err
			}
			defer f.Close()
			if err := ir.EncodeModule(f, mods[0]); err != nil {
				return fmt.Errorf("writing snapshot: %w", err)
			}
		}
		return nil
	},
}

func init() {
	demoCmd.Flags().BoolVar(&demoVerbose, "verbose", false, "dump declarations and functions during emission")
	demoCmd.Flags().StringVar(&demoOut, "out", "", "write a msgpack snapshot of the first lowered module")
	demoCmd.Flags().IntVar(&demoUnits, "units", 1, "number of sample units to lower in parallel")
}
