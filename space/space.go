// Package space implements Space: the owner of the particle array and the
// group index. A simulation always keeps exactly two Space instances, one
// "accepted" and one "trial"; Sync is the single entry point that keeps
// them bit-identical outside the window described by a Change.
package space

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/molsim/mcengine/change"
	"github.com/molsim/mcengine/geometry"
	"github.com/molsim/mcengine/group"
	"github.com/molsim/mcengine/particle"
	"github.com/molsim/mcengine/topology"
)

// Space owns the particle vector and the group vector and holds the
// Geometry they live in.
type Space struct {
	Geo       *geometry.Cuboid
	Particles []particle.Particle
	Groups    []group.Group

	Atoms     *topology.AtomTable
	Molecules *topology.MoleculeTable
}

// New builds an empty Space sharing the given (already-loaded) topology
// tables; Particles/Groups are populated by the config loader.
func New(geo *geometry.Cuboid, atoms *topology.AtomTable, mols *topology.MoleculeTable) *Space {
	return &Space{Geo: geo, Atoms: atoms, Molecules: mols}
}

// Clone deep-copies a Space: a fresh particle slice, a fresh group slice,
// and an independent Geometry. Used once at init to build the trial Space
// as a twin of the accepted Space.
func (s *Space) Clone() *Space {
	cp := &Space{
		Geo:       s.Geo.Clone(),
		Particles: append([]particle.Particle(nil), s.Particles...),
		Groups:    append([]group.Group(nil), s.Groups...),
		Atoms:     s.Atoms,
		Molecules: s.Molecules,
	}
	return cp
}

// FindMolecules returns the groups with the given molecule id matching
// filter, in group-array order. It is a slice, not a generator; callers
// must not assume anything beyond "groups with this molecule id".
func (s *Space) FindMolecules(molID topology.MoleculeID, filter group.Filter) []int {
	var out []int
	for i := range s.Groups {
		g := &s.Groups[i]
		if g.Molecule == molID && g.MatchesFilter(filter) {
			out = append(out, i)
		}
	}
	return out
}

// FindAtoms returns the global particle indices of every *active* particle
// with the given atom id, across all groups.
func (s *Space) FindAtoms(atomID particle.AtomID) []int {
	var out []int
	for i := range s.Groups {
		g := &s.Groups[i]
		for j := g.Begin; j < g.ActiveEnd(); j++ {
			if s.Particles[j].ID == atomID {
				out = append(out, j)
			}
		}
	}
	return out
}

// FindGroupContaining returns the index of the group whose window contains
// global particle index i. Groups tile the particle array contiguously
// and are few enough (one per molecule/reservoir, not per atom) that a
// linear scan is fine; callers on a hot path should cache the group index
// themselves rather than re-deriving it every pair.
func (s *Space) FindGroupContaining(i int) int {
	for gi := range s.Groups {
		if s.Groups[gi].Contains(i) {
			return gi
		}
	}
	return -1
}

// RecomputeCM recomputes and returns a group's geometric mass-center from
// its currently active particles, honoring periodic boundaries by
// accumulating relative to the first active particle.
func (s *Space) RecomputeCM(gi int) mgl64.Vec3 {
	g := &s.Groups[gi]
	if g.Size == 0 {
		return mgl64.Vec3{}
	}
	ref := s.Particles[g.Begin].Pos
	var acc mgl64.Vec3
	for i := g.Begin; i < g.ActiveEnd(); i++ {
		acc = acc.Add(s.Geo.Vdist(s.Particles[i].Pos, ref))
	}
	cm := ref.Add(acc.Mul(1.0 / float64(g.Size)))
	s.Geo.Boundary(&cm)
	return cm
}

// ScaleVolume rescales the geometry to Vnew and translates every group
// accordingly: molecular-group mass-centers move by the same factor
// (atoms carried rigidly along), atomic-group atoms are individually
// rescaled about the origin (they have no group-level CM to preserve).
func (s *Space) ScaleVolume(Vnew float64, method geometry.ScaleMethod) {
	scale := s.Geo.ScaleVolume(Vnew, method)
	for gi := range s.Groups {
		g := &s.Groups[gi]
		if g.Size == 0 {
			continue
		}
		if g.Atomic {
			for i := g.Begin; i < g.ActiveEnd(); i++ {
				p := &s.Particles[i]
				p.Pos = mgl64.Vec3{p.Pos.X() * scale.X(), p.Pos.Y() * scale.Y(), p.Pos.Z() * scale.Z()}
				s.Geo.Boundary(&p.Pos)
			}
			continue
		}
		oldCM := g.CM
		newCM := mgl64.Vec3{oldCM.X() * scale.X(), oldCM.Y() * scale.Y(), oldCM.Z() * scale.Z()}
		s.Geo.Boundary(&newCM)
		delta := newCM.Sub(oldCM)
		for i := g.Begin; i < g.ActiveEnd(); i++ {
			s.Particles[i].Pos = s.Particles[i].Pos.Add(delta)
		}
		g.CM = newCM
	}
}

// CountActive returns the current population of molID: the sum of active
// sizes across its atomic reservoir group (there is exactly one), or the
// number of fully-active groups for a molecular species.
func (s *Space) CountActive(molID topology.MoleculeID) int {
	var n int
	for i := range s.Groups {
		g := &s.Groups[i]
		if g.Molecule != molID {
			continue
		}
		if g.Atomic {
			n += g.Size
		} else if g.Size > 0 {
			n++
		}
	}
	return n
}

// Sync copies only the slots described by change from other into s,
// restoring the bit-identical invariant outside the change window in
// O(|change|) instead of O(N). Used by the driver on both accept
// (accepted.Sync(trial, change)) and reject (trial.Sync(accepted, change)).
func (s *Space) Sync(other *Space, c *change.Change) {
	if c.DV {
		s.Geo = other.Geo.Clone()
	}
	if c.All {
		s.Particles = append(s.Particles[:0], other.Particles...)
		s.Groups = append(s.Groups[:0], other.Groups...)
		return
	}
	for _, gc := range c.Groups {
		g := &s.Groups[gc.Index]
		og := &other.Groups[gc.Index]
		*g = *og
		if gc.All {
			copy(s.Particles[g.Begin:g.End()], other.Particles[og.Begin:og.End()])
			continue
		}
		for _, rel := range gc.RelIndex {
			s.Particles[g.Begin+rel] = other.Particles[og.Begin+rel]
		}
	}
}
