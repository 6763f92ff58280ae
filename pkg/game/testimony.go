package game

import "fmt"

// maxStatements caps a testimony so a runaway recorder cannot grow one
// without bound.
const maxStatements = 30

// Statement is one recorded IC message, stored as the final outbound
// field set so playback re-sends it verbatim.
type Statement []string

// Testimony is an ordered, navigable sequence of recorded statements.
type Testimony struct {
	Title      string
	Statements []Statement
	Limit      int
}

// Add appends a statement. It reports false when the statement limit
// has been reached.
func (t *Testimony) Add(st Statement) bool {
	if t.Limit > 0 && len(t.Statements) >= t.Limit {
		return false
	}
	t.Statements = append(t.Statements, st)
	return true
}

// Amend replaces the statement at a zero-based index in place.
func (t *Testimony) Amend(idx int, st Statement) error {
	if idx < 0 || idx >= len(t.Statements) {
		return fmt.Errorf("no statement %d", idx)
	}
	t.Statements[idx] = st
	return nil
}

// Remove deletes the statement at a zero-based index.
func (t *Testimony) Remove(idx int) error {
	if idx < 0 || idx >= len(t.Statements) {
		return fmt.Errorf("no statement %d", idx)
	}
	t.Statements = append(t.Statements[:idx], t.Statements[idx+1:]...)
	return nil
}

// Testifying reports whether the area is recording a testimony.
// Caller holds the area lock.
func (a *Area) Testifying() bool { return a.testifying }

// Examining reports whether the area is playing back a testimony.
// Caller holds the area lock.
func (a *Area) Examining() bool { return a.examining }

// Testimony returns the area's testimony. Caller holds the area lock.
func (a *Area) Testimony() *Testimony { return &a.testimony }

// ExamineIndex returns the playback cursor. Caller holds the area lock.
func (a *Area) ExamineIndex() int { return a.examineIndex }

// SetExamineIndex repositions the playback cursor.
// Caller holds the area lock.
func (a *Area) SetExamineIndex(idx int) { a.examineIndex = idx }

// StartTestimony begins recording a new testimony. Only a CM or the
// judge may start one, and not while a session is already running.
// Caller holds the area lock.
func (a *Area) StartTestimony(c *Client, title string) error {
	if a.testifying || a.examining {
		return fmt.Errorf("a testimony is already in progress")
	}
	if !a.IsOwner(c) && c.Pos() != "jud" && !c.IsMod {
		return fmt.Errorf("you must be a CM or the judge to record a testimony")
	}
	a.testimony = Testimony{Title: title, Limit: maxStatements}
	a.testifying = true
	a.examineIndex = 0
	return nil
}

// StartExamination begins playback of the recorded testimony.
// Caller holds the area lock.
func (a *Area) StartExamination(c *Client) error {
	if a.testifying || a.examining {
		return fmt.Errorf("a testimony is already in progress")
	}
	if !a.IsOwner(c) && c.Pos() != "jud" && !c.IsMod {
		return fmt.Errorf("you must be a CM or the judge to examine a testimony")
	}
	if len(a.testimony.Statements) == 0 {
		return fmt.Errorf("there is no testimony to examine")
	}
	a.examining = true
	a.examineIndex = 0
	return nil
}

// EndTestimony terminates the running recording or examination. The
// recorded statements are kept for a later examination.
// Caller holds the area lock.
func (a *Area) EndTestimony(c *Client) error {
	if !a.testifying && !a.examining {
		return fmt.Errorf("no testimony is in progress")
	}
	a.testifying = false
	a.examining = false
	return nil
}

// AmendTestimony replaces a statement in place. Caller holds the area
// lock.
func (a *Area) AmendTestimony(c *Client, idx int, st Statement) error {
	return a.testimony.Amend(idx, st)
}

// RemoveStatement deletes a statement and clamps the playback cursor.
// Caller holds the area lock.
func (a *Area) RemoveStatement(c *Client, idx int) error {
	if err := a.testimony.Remove(idx); err != nil {
		return err
	}
	if a.examineIndex >= len(a.testimony.Statements) && a.examineIndex > 0 {
		a.examineIndex = len(a.testimony.Statements) - 1
	}
	return nil
}

// NavigateTestimony moves the playback cursor and re-sends the
// statement it lands on. Marker '>' advances (wrapping past the end
// back to the first statement), '<' steps back, '=' jumps; an explicit
// target overrides the step for '>' and '='.
// Caller holds the area lock.
func (a *Area) NavigateTestimony(c *Client, marker byte, target int, hasTarget bool) error {
	n := len(a.testimony.Statements)
	if !a.examining || n == 0 {
		return fmt.Errorf("no examination is in progress")
	}

	idx := a.examineIndex
	switch marker {
	case '>':
		if hasTarget {
			idx = target
		} else {
			idx++
		}
		if idx >= n {
			idx = 0
		}
	case '<':
		if hasTarget {
			idx = target
		} else {
			idx--
		}
		if idx < 0 {
			return fmt.Errorf("there is no previous statement")
		}
	case '=':
		if hasTarget {
			idx = target
		}
	default:
		return fmt.Errorf("unknown navigation marker %q", marker)
	}

	if idx < 0 || idx >= n {
		return fmt.Errorf("no statement %d", idx)
	}
	a.examineIndex = idx
	a.SendCommand("MS", a.testimony.Statements[idx]...)
	return nil
}
