package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"voxelgraph/internal/graph/voxel"
)

// NeighbourCandidateDef is one statically-declared outbound offset
// candidate.
type NeighbourCandidateDef struct {
	Key    string `json:"key"`
	Offset [3]int `json:"offset"`
}

// NeighbourCellDef binds a cell name to its static candidate set, the
// on-disk counterpart of a neighbour-set LUT registration.
type NeighbourCellDef struct {
	Cell       string                  `json:"cell"`
	Candidates []NeighbourCandidateDef `json:"candidates"`
}

// FilterCellDef binds a destination cell name to the set of source
// cell names it accepts a connection from, the on-disk counterpart of
// an inbound-filter LUT registration.
type FilterCellDef struct {
	Cell   string   `json:"cell"`
	Accept []string `json:"accept"`
}

// LoadNeighbourDefs validates dataPath against schemaPath and decodes
// it into typed neighbour-set definitions.
func LoadNeighbourDefs(schemaPath, dataPath string) ([]NeighbourCellDef, error) {
	var defs []NeighbourCellDef
	if err := loadValidated(schemaPath, dataPath, &defs); err != nil {
		return nil, err
	}
	return defs, nil
}

// LoadFilterDefs validates dataPath against schemaPath and decodes it
// into typed inbound-filter definitions.
func LoadFilterDefs(schemaPath, dataPath string) ([]FilterCellDef, error) {
	var defs []FilterCellDef
	if err := loadValidated(schemaPath, dataPath, &defs); err != nil {
		return nil, err
	}
	return defs, nil
}

func loadValidated(schemaPath, dataPath string, out any) error {
	schema, err := jsonschema.Compile(schemaPath)
	if err != nil {
		return fmt.Errorf("config: compile schema %s: %w", schemaPath, err)
	}
	raw, err := os.ReadFile(dataPath)
	if err != nil {
		return err
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("config: %s: %w", dataPath, err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("config: %s failed schema %s: %w", dataPath, schemaPath, err)
	}
	return json.Unmarshal(raw, out)
}

// RegisterNeighbourDefs builds a constant-candidates handler for each
// definition and registers it on lut. The handler ignores the cell
// data it is called with beyond routing on its name; definitions
// loaded this way can only express static, data-independent
// candidate sets, which covers the common "this block kind always
// offers these offsets" registration.
func RegisterNeighbourDefs(lut *voxel.NeighbourSetLUT, defs []NeighbourCellDef) error {
	for _, def := range defs {
		candidates := voxel.Candidates{}
		for _, c := range def.Candidates {
			candidates[voxel.ExtraKey(c.Key)] = voxel.Pos{X: c.Offset[0], Y: c.Offset[1], Z: c.Offset[2]}
		}
		err := lut.AddCustomHook(def.Cell, func(voxel.CellData) (voxel.Candidates, error) {
			return candidates, nil
		})
		if err != nil {
			return fmt.Errorf("config: registering neighbourset def %q: %w", def.Cell, err)
		}
	}
	return nil
}

// RegisterFilterDefs builds an accept-set predicate for each
// definition and registers it on lut.
func RegisterFilterDefs(lut *voxel.FilterLUT, defs []FilterCellDef) error {
	for _, def := range defs {
		accept := map[string]bool{}
		for _, name := range def.Accept {
			accept[name] = true
		}
		err := lut.Register(def.Cell, func(in voxel.FilterInput) (bool, error) {
			return accept[in.Src.Name()], nil
		})
		if err != nil {
			return fmt.Errorf("config: registering filter def %q: %w", def.Cell, err)
		}
	}
	return nil
}
