package InputParameters

import (
	"fmt"
	"sort"

	"github.com/ghodss/yaml"
)

// RunParameters is the YAML run-configuration cmd's cobalttohum, orderhum,
// and partmesh subcommands accept via --config (layered under viper
// beneath explicit flags and DIMM_* environment variables, see
// cmd/root.go). Adapted from the teacher's InputParameters2D: same
// Parse/Print shape and the same nested-map BCs pattern, repointed from
// solver parameters (CFL, FluxType, ...) to this repo's own domain
// (buffer sizing, index width, SFC bit depth, and per-patch boundary
// condition parameter tables).
type RunParameters struct {
	Title string `yaml:"Title"`

	// BufSizeGB replaces cobalttohum's `-s bufSizeGB` default when that
	// flag is not given. The importer carries the value but does not read
	// it, and orderhum does not read it at all.
	BufSizeGB float64 `yaml:"BufSizeGB"`
	// WideIndex selects the 64-bit index type, §6's cobalttohum `-L`.
	WideIndex bool `yaml:"WideIndex"`

	// SFCBits selects sfc.Bits10 or sfc.Bits20 for orderhum's Morton key
	// width; zero means "let the CLI default apply".
	SFCBits int `yaml:"SFCBits"`
	// ReorderNodes/ReorderCells are parsed and printed only; orderhum does
	// not read them, and its -n/-c flags alone decide what it reorders.
	ReorderNodes bool `yaml:"ReorderNodes"`
	ReorderCells bool `yaml:"ReorderCells"`
	// Workers bounds the block-range parallelism of the SFC key-compute
	// phase (internal/workerpool). Zero means "run serially".
	Workers int `yaml:"Workers"`

	// BCs holds per-patch boundary-condition parameter tables: outer key
	// is the patch name, inner map key is the integer bcType tag
	// (meshtypes.PatchDescriptor.BCType), innermost map is named
	// numeric parameters for that boundary condition (e.g. a pressure
	// ratio or a wall temperature) that cmd/ can pass through to a
	// downstream solver without this repo needing to understand what
	// they mean.
	BCs map[string]map[int]map[string]float64 `yaml:"BCs"`
}

// Parse decodes YAML run-configuration bytes into rp.
func (rp *RunParameters) Parse(data []byte) error {
	return yaml.Unmarshal(data, rp)
}

// Print writes a human-readable summary of rp to stdout, matching the
// teacher's InputParameters2D.Print: fixed-field lines followed by
// lexically sorted BC entries so output is deterministic across runs.
func (rp *RunParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", rp.Title)
	fmt.Printf("%8.3f\t\t= BufSizeGB\n", rp.BufSizeGB)
	fmt.Printf("[%v]\t\t\t= WideIndex\n", rp.WideIndex)
	fmt.Printf("[%d]\t\t\t\t= SFCBits\n", rp.SFCBits)
	fmt.Printf("[%v]\t\t\t= ReorderNodes\n", rp.ReorderNodes)
	fmt.Printf("[%v]\t\t\t= ReorderCells\n", rp.ReorderCells)
	fmt.Printf("[%d]\t\t\t\t= Workers\n", rp.Workers)

	keys := make([]string, 0, len(rp.BCs))
	for k := range rp.BCs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Printf("BCs[%s] = %v\n", key, rp.BCs[key])
	}
}
