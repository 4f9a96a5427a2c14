package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/partmesh/dimm/internal/importer"
)

// cobaltToHumCmd implements §6's `cobaltToHum -i <input> -o <output>
// [-s bufSizeGB] [-L]`. §1 names the ASCII cobalt importer as an external
// MeshImporter collaborator; internal/importer generalizes its role onto
// the teacher's bundled Gambit/Gmsh/SU2 readers (see importer.ImportFile),
// so this command exercises the same store-writing path a real cobalt
// grammar would.
var cobaltToHumCmd = &cobra.Command{
	Use:   "cobalttohum",
	Short: "Convert an ASCII/binary mesh file into a TypedBlockStore container",
	Run: func(cmd *cobra.Command, args []string) {
		in, _ := cmd.Flags().GetString("input")
		out, _ := cmd.Flags().GetString("output")
		bufGB, _ := cmd.Flags().GetFloat64("bufsize")
		wide, _ := cmd.Flags().GetBool("wide")

		if in == "" || out == "" {
			fmt.Fprintln(os.Stderr, "dimm: cobalttohum requires -i <input> and -o <output>")
			os.Exit(1)
		}
		if runParams.BufSizeGB > 0 && !cmd.Flags().Changed("bufsize") {
			bufGB = runParams.BufSizeGB
		}
		if runParams.WideIndex && !cmd.Flags().Changed("wide") {
			wide = true
		}

		opts := importer.Options{BufSizeGB: bufGB, WideIndex: wide}
		if err := importer.ImportFile(in, out, opts); err != nil {
			fmt.Fprintf(os.Stderr, "dimm: cobalttohum: %v\n", err)
			os.Exit(2)
		}
		fmt.Printf("dimm: wrote store %s from %s\n", out, in)
	},
}

func init() {
	rootCmd.AddCommand(cobaltToHumCmd)
	cobaltToHumCmd.Flags().StringP("input", "i", "", "input mesh file (.neu, .msh, or .su2)")
	cobaltToHumCmd.Flags().StringP("output", "o", "", "output TypedBlockStore directory")
	cobaltToHumCmd.Flags().Float64P("bufsize", "s", 1.0, "write-batch buffer size in GB")
	cobaltToHumCmd.Flags().BoolP("wide", "L", false, "use a 64-bit index type instead of 32-bit")
}
