package traj

import (
	"fmt"
	"io"

	"github.com/molsim/mcengine/space"
)

// activeParticles walks s's groups and yields (global index, molecule name)
// for every active particle, in group order -- the common iteration every
// textual writer below needs, since only active slots are meaningful
// outside the engine's own reservoir bookkeeping. For an atomic reservoir
// group the displayed name is resolved from the slot's *current* atom id
// (topology.MoleculeTable.ByAtomicSpecies), not the group's original
// species: a speciation swap move changes a slot's atom id in place
// without moving it to a different group, so g.Molecule alone would keep
// reporting the pre-swap species after the identity flip.
func activeParticles(s *space.Space, fn func(idx int, molName string)) {
	for gi := range s.Groups {
		g := &s.Groups[gi]
		if g.Size == 0 {
			continue
		}
		mt := s.Molecules.MustByID(g.Molecule)
		for i := g.Begin; i < g.ActiveEnd(); i++ {
			name := mt.Name
			if g.Atomic {
				if swapped, ok := s.Molecules.ByAtomicSpecies(s.Particles[i].ID); ok {
					name = swapped.Name
				}
			}
			fn(i, name)
		}
	}
}

// WriteXYZ emits a minimal XYZ frame: atom count, a blank comment line, then
// one "<name> x y z" row per active particle.
func WriteXYZ(w io.Writer, s *space.Space) error {
	var n int
	activeParticles(s, func(int, string) { n++ })
	if _, err := fmt.Fprintf(w, "%d\n\n", n); err != nil {
		return err
	}
	var werr error
	activeParticles(s, func(idx int, _ string) {
		if werr != nil {
			return
		}
		at := s.Atoms.MustByID(s.Particles[idx].ID)
		p := s.Particles[idx]
		_, werr = fmt.Fprintf(w, "%-4s %10.5f %10.5f %10.5f\n", at.Name, p.Pos.X(), p.Pos.Y(), p.Pos.Z())
	})
	return werr
}

// WritePQR emits a minimal PQR frame: one ATOM record per active particle
// carrying serial, atom name, residue (molecule) name, position, charge,
// and radius (sigma/2), followed by an END record.
func WritePQR(w io.Writer, s *space.Space) error {
	serial := 1
	var werr error
	activeParticles(s, func(idx int, molName string) {
		if werr != nil {
			return
		}
		at := s.Atoms.MustByID(s.Particles[idx].ID)
		p := s.Particles[idx]
		_, werr = fmt.Fprintf(w, "ATOM  %5d %-4s %-3s %5d    %8.3f%8.3f%8.3f %7.4f %6.3f\n",
			serial, at.Name, molName, serial, p.Pos.X(), p.Pos.Y(), p.Pos.Z(), p.Charge, at.Sigma/2)
		serial++
	})
	if werr != nil {
		return werr
	}
	_, err := fmt.Fprintln(w, "END")
	return err
}

// WriteGRO emits a minimal Gromacs .gro frame: title, atom count, one fixed-
// width coordinate line per active particle (positions in nm, assuming the
// engine's length unit is already nm-compatible -- unit conversion is the
// caller's concern if not), and a trailing box-vector line.
func WriteGRO(w io.Writer, s *space.Space) error {
	var n int
	activeParticles(s, func(int, string) { n++ })
	if _, err := fmt.Fprintf(w, "generated frame\n%5d\n", n); err != nil {
		return err
	}
	serial := 1
	var werr error
	activeParticles(s, func(idx int, molName string) {
		if werr != nil {
			return
		}
		at := s.Atoms.MustByID(s.Particles[idx].ID)
		p := s.Particles[idx]
		_, werr = fmt.Fprintf(w, "%5d%-5s%5s%5d%8.3f%8.3f%8.3f\n",
			serial, molName, at.Name, serial, p.Pos.X(), p.Pos.Y(), p.Pos.Z())
		serial++
	})
	if werr != nil {
		return werr
	}
	l := s.Geo.GetLength()
	_, err := fmt.Fprintf(w, "%10.5f%10.5f%10.5f\n", l.X(), l.Y(), l.Z())
	return err
}

// WriteAAM emits a minimal Faunus-style AAM frame: atom count, then one
// "name x y z charge weight radius" row per active particle.
func WriteAAM(w io.Writer, s *space.Space) error {
	var n int
	activeParticles(s, func(int, string) { n++ })
	if _, err := fmt.Fprintf(w, "%d\n", n); err != nil {
		return err
	}
	var werr error
	activeParticles(s, func(idx int, _ string) {
		if werr != nil {
			return
		}
		at := s.Atoms.MustByID(s.Particles[idx].ID)
		p := s.Particles[idx]
		_, werr = fmt.Fprintf(w, "%-4s %8.3f %8.3f %8.3f %7.4f %7.3f %6.3f\n",
			at.Name, p.Pos.X(), p.Pos.Y(), p.Pos.Z(), p.Charge, at.Mass, at.Sigma/2)
	})
	return werr
}
