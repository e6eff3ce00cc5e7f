package source

// RoutineID identifies one callable body for the lifetime of a Program.
// Identities are interned: two references to the same underlying routine
// always map to the same ID, and IDs index a dense arena.
type RoutineID int

// NoRoutine is returned for lookups that do not match any indexed routine.
const NoRoutine RoutineID = -1

func (p *Program) intern(fn *Func) RoutineID {
	id := RoutineID(len(p.arena))
	fn.ID = id
	p.arena = append(p.arena, fn)
	return id
}

// RoutineByID returns the routine for an interned identity, or nil when the
// identity is out of range.
func (p *Program) RoutineByID(id RoutineID) *Func {
	if id < 0 || int(id) >= len(p.arena) {
		return nil
	}
	return p.arena[id]
}
