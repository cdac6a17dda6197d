// Package config loads the hierarchical key-value simulation document with
// viper (YAML via gopkg.in/yaml.v3) and builds every runtime object the
// other packages need from it: topology tables, geometry, the Hamiltonian,
// a populated Space, a Propagator of moves, and an rng.Pair. Every
// malformed or inconsistent entry surfaces as an *mcerr.ConfigError; Build
// aborts on the first one rather than limping along with a partial setup.
package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/molsim/mcengine/internal/mcerr"
)

// Document is the parsed form of the top-level config keys, populated by
// viper.Unmarshal. Field names use viper's default case-insensitive,
// underscore-folding key matching, so the YAML keys from the document can
// stay lower-case as written.
type Document struct {
	Temperature float64 `mapstructure:"temperature"`
	Random      string  `mapstructure:"random"`

	Geometry GeometrySpec `mapstructure:"geometry"`
	MCLoop   MCLoopSpec   `mapstructure:"mcloop"`

	AtomList        []AtomSpec             `mapstructure:"atomlist"`
	MoleculeList    []MoleculeSpec         `mapstructure:"moleculelist"`
	InsertMolecules map[string]InsertSpec  `mapstructure:"insertmolecules"`
	ReactionList    []ReactionSpec         `mapstructure:"reactionlist"`

	Energy []EnergyTermSpec `mapstructure:"energy"`
	Moves  []MoveSpec       `mapstructure:"moves"`

	// Analysis specs are parsed but not dispatched: nothing in this module
	// reads Document.Analysis.
	Analysis []map[string]any `mapstructure:"analysis"`
}

type GeometrySpec struct {
	Type   string  `mapstructure:"type"` // "cuboid" (only shape the core implements)
	Length []float64 `mapstructure:"length"`
	Radius float64 `mapstructure:"radius"` // reserved for a future spherical Geometry
}

type MCLoopSpec struct {
	Macro int `mapstructure:"macro"`
	Micro int `mapstructure:"micro"`
}

type AtomSpec struct {
	Name    string  `mapstructure:"name"`
	Sigma   float64 `mapstructure:"sigma"`
	Epsilon float64 `mapstructure:"epsilon"`
	Mass    float64 `mapstructure:"mass"`
	Charge  float64 `mapstructure:"charge"`
}

type BondSpec struct {
	I    int     `mapstructure:"i"`
	J    int     `mapstructure:"j"`
	K    float64 `mapstructure:"k"`
	Req  float64 `mapstructure:"req"`
}

type ConformationSpec struct {
	RelPos  [][3]float64 `mapstructure:"relpos"`
	Charges []float64    `mapstructure:"charges"`
	Weight  float64      `mapstructure:"weight"`
}

type MoleculeSpec struct {
	Name   string             `mapstructure:"name"`
	Atomic bool               `mapstructure:"atomic"`
	Atoms  []string           `mapstructure:"atoms"`
	Bonds  []BondSpec         `mapstructure:"bonds"`
	Confs  []ConformationSpec `mapstructure:"conformations"`
}

type InsertSpec struct {
	N        int  `mapstructure:"n"`
	Inactive bool `mapstructure:"inactive"`
}

// ReactionSpec's Equation is the "<reactants> = <products>" shorthand,
// e.g. "HA = H+ + A-" or "2 Na+ = Na2". parseEquation splits it.
type ReactionSpec struct {
	Name     string  `mapstructure:"name"`
	Equation string  `mapstructure:"equation"`
	LnK      float64 `mapstructure:"lnk"`
	Canonic  bool    `mapstructure:"canonic"`
	Swap     bool    `mapstructure:"swap"`
	NReservoir int   `mapstructure:"nreservoir"`
}

type EnergyTermSpec struct {
	Type     string  `mapstructure:"type"` // "hardsphere", "debyehuckel", "bonded"
	Bjerrum  float64 `mapstructure:"bjerrum"`
	Kappa    float64 `mapstructure:"kappa"`
	CellSize float64 `mapstructure:"cellsize"` // hardsphere only; 0 disables the broadphase grid
}

type MoveSpec struct {
	Type     string     `mapstructure:"type"`
	Molecule string     `mapstructure:"molecule"`
	Dp       float64    `mapstructure:"dp"`
	Dprot    float64    `mapstructure:"dprot"`
	Dir      [3]float64 `mapstructure:"dir"`
	DV       float64    `mapstructure:"dv"`
	Method   string     `mapstructure:"method"`
	Pressure float64    `mapstructure:"pressure"`
	Repeat   int        `mapstructure:"repeat"`
}

// Load reads path (any extension viper recognizes: yaml, yml, json, toml)
// and unmarshals it into a Document. It does not build runtime objects --
// call Build on the result for that.
func Load(path string) (*Document, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, mcerr.NewConfigError("file", path, err.Error())
	}
	var doc Document
	if err := v.Unmarshal(&doc); err != nil {
		return nil, mcerr.NewConfigError("file", path, err.Error())
	}
	return &doc, nil
}

// parseEquation splits a ReactionSpec.Equation into reactant/product side
// strings, each a "+"-separated list of "<count> <name>" or "<name>" terms.
func parseEquation(eq string) (lhs, rhs []string, err error) {
	sides := strings.SplitN(eq, "=", 2)
	if len(sides) != 2 {
		return nil, nil, fmt.Errorf("equation %q: expected exactly one '='", eq)
	}
	return splitTerms(sides[0]), splitTerms(sides[1]), nil
}

func splitTerms(side string) []string {
	parts := strings.Split(side, "+")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseTerm splits a "<count> <name>" or bare "<name>" term into a
// multiplicity and a species name.
func parseTerm(term string) (count int, name string, err error) {
	fields := strings.Fields(term)
	switch len(fields) {
	case 1:
		return 1, fields[0], nil
	case 2:
		n, convErr := strconv.Atoi(fields[0])
		if convErr != nil {
			return 0, "", fmt.Errorf("term %q: non-integer multiplicity", term)
		}
		return n, fields[1], nil
	default:
		return 0, "", fmt.Errorf("term %q: expected '<name>' or '<count> <name>'", term)
	}
}
