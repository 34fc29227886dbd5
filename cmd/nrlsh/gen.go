package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arthurfeeney/nrlsh/dataset"
	"github.com/arthurfeeney/nrlsh/testutil"
)

func newGenCmd() *cobra.Command {
	var (
		out     string
		n, dim  int
		seed    int64
		unit    bool
		minNorm float32
		maxNorm float32
	)

	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Write a synthetic .fvecs dataset",
		Long: `Generate random vectors and write them in .fvecs format. The extension
of --out selects compression: .zst, .gz, .lz4 or none.

Examples:
  nrlsh gen --out base.fvecs.zst --n 100000 --dim 64
  nrlsh gen --out queries.fvecs --n 1000 --dim 64 --unit --seed 2
  nrlsh gen --out minio://localhost:9000/bench/base.fvecs.lz4`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if n <= 0 || dim <= 0 {
				return errors.New("n and dim must be positive")
			}
			if !unit && (minNorm <= 0 || maxNorm <= minNorm) {
				return fmt.Errorf("need 0 < min-norm < max-norm, got %g and %g", minNorm, maxNorm)
			}

			loc, err := parseLocation(out)
			if err != nil {
				return err
			}
			store, err := loc.open(cmd.Context())
			if err != nil {
				return err
			}

			rng := testutil.NewRNG(seed)
			var vecs [][]float32
			if unit {
				vecs = rng.UnitVectors(n, dim)
			} else {
				vecs = rng.ScaledVectors(n, dim, minNorm, maxNorm)
			}
			if err := dataset.Save(cmd.Context(), store, loc.name, vecs); err != nil {
				return fmt.Errorf("writing %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d vectors of dimension %d to %s (%s)\n",
				n, dim, out, dataset.CompressionFor(loc.name))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&out, "out", "", "Output location (path, s3:// or minio://)")
	f.IntVar(&n, "n", 10000, "Number of vectors")
	f.IntVar(&dim, "dim", 32, "Dimension")
	f.Int64Var(&seed, "seed", 1, "Random seed")
	f.BoolVar(&unit, "unit", false, "Generate unit vectors (for query sets)")
	f.Float32Var(&minNorm, "min-norm", 0.1, "Smallest vector norm")
	f.Float32Var(&maxNorm, "max-norm", 10, "Largest vector norm")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}
