package main

import (
	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "nrlsh",
		Short: "Norm-ranged LSH for maximum inner product search",
		Long: `nrlsh builds norm-ranged LSH indexes and measures how recall trades
against the number of inner products computed per query.

Examples:
  nrlsh gen --n 100000 --dim 64 --out data/base.fvecs.zst
  nrlsh bench --data data/base.fvecs.zst --adj 4 --k 10
  nrlsh bench --config bench.yaml --json`,
		SilenceUsage: true,
	}
	root.AddCommand(newBenchCmd(), newGenCmd(), newVersionCmd())
	return root
}
