package game

import "testing"

func statement(text string) Statement {
	st := make(Statement, 30)
	st[icFieldText] = text
	return st
}

func TestTestimonyAuthority(t *testing.T) {
	s := newTestServer(t)
	witness, _ := addClient(t, s, 0)
	judge, _ := addClient(t, s, 1)
	judge.SetPos("jud")
	a := s.Areas.Default()

	a.Lock()
	defer a.Unlock()
	if err := a.StartTestimony(witness, "Murder"); err == nil {
		t.Fatal("witness started a testimony")
	}
	if err := a.StartTestimony(judge, "Murder"); err != nil {
		t.Fatalf("judge could not start a testimony: %v", err)
	}
	if err := a.StartTestimony(judge, "Another"); err == nil {
		t.Fatal("started a second testimony while one is running")
	}
}

func TestTestimonyStatementLimit(t *testing.T) {
	tm := Testimony{Limit: 2}
	if !tm.Add(statement("one")) || !tm.Add(statement("two")) {
		t.Fatal("adds under the limit rejected")
	}
	if tm.Add(statement("three")) {
		t.Fatal("add over the limit accepted")
	}
}

func TestExaminationNeedsStatements(t *testing.T) {
	s := newTestServer(t)
	judge, _ := addClient(t, s, 0)
	judge.SetPos("jud")
	a := s.Areas.Default()

	a.Lock()
	defer a.Unlock()
	if err := a.StartExamination(judge); err == nil {
		t.Fatal("examination started with no testimony")
	}

	if err := a.StartTestimony(judge, "Murder"); err != nil {
		t.Fatal(err)
	}
	a.Testimony().Add(statement("one"))
	if err := a.EndTestimony(judge); err != nil {
		t.Fatal(err)
	}
	if err := a.StartExamination(judge); err != nil {
		t.Fatalf("examination rejected: %v", err)
	}
}

func TestTestimonyNavigation(t *testing.T) {
	s := newTestServer(t)
	judge, tr := addClient(t, s, 0)
	judge.SetPos("jud")
	a := s.Areas.Default()

	a.Lock()
	defer a.Unlock()
	if err := a.StartTestimony(judge, "Murder"); err != nil {
		t.Fatal(err)
	}
	a.Testimony().Add(statement("one"))
	a.Testimony().Add(statement("two"))
	a.Testimony().Add(statement("three"))
	if err := a.EndTestimony(judge); err != nil {
		t.Fatal(err)
	}
	if err := a.StartExamination(judge); err != nil {
		t.Fatal(err)
	}

	// Advance, advance, then wrap back to the start.
	if err := a.NavigateTestimony(judge, '>', 0, false); err != nil {
		t.Fatal(err)
	}
	if a.ExamineIndex() != 1 {
		t.Fatalf("index = %d, want 1", a.ExamineIndex())
	}
	if err := a.NavigateTestimony(judge, '>', 0, false); err != nil {
		t.Fatal(err)
	}
	if err := a.NavigateTestimony(judge, '>', 0, false); err != nil {
		t.Fatal(err)
	}
	if a.ExamineIndex() != 0 {
		t.Fatalf("index after wrap = %d, want 0", a.ExamineIndex())
	}

	// Stepping back past the first statement is an error.
	if err := a.NavigateTestimony(judge, '<', 0, false); err == nil {
		t.Fatal("stepped back past the first statement")
	}

	// Jump directly.
	if err := a.NavigateTestimony(judge, '=', 2, true); err != nil {
		t.Fatal(err)
	}
	if a.ExamineIndex() != 2 {
		t.Fatalf("index after jump = %d, want 2", a.ExamineIndex())
	}

	// Navigation re-sends the statement it lands on.
	if ms := tr.find("MS"); ms == nil || ms[1+icFieldText] != "two" {
		t.Fatalf("replayed statement = %v", ms)
	}
}

func TestTestimonyAmendAndRemove(t *testing.T) {
	s := newTestServer(t)
	judge, _ := addClient(t, s, 0)
	judge.SetPos("jud")
	a := s.Areas.Default()

	a.Lock()
	defer a.Unlock()
	if err := a.StartTestimony(judge, "Murder"); err != nil {
		t.Fatal(err)
	}
	a.Testimony().Add(statement("one"))
	a.Testimony().Add(statement("two"))

	if err := a.AmendTestimony(judge, 1, statement("amended")); err != nil {
		t.Fatal(err)
	}
	if got := a.Testimony().Statements[1][icFieldText]; got != "amended" {
		t.Fatalf("statement = %q", got)
	}
	if err := a.AmendTestimony(judge, 5, statement("x")); err == nil {
		t.Fatal("amended out of range")
	}

	if err := a.RemoveStatement(judge, 0); err != nil {
		t.Fatal(err)
	}
	if got := len(a.Testimony().Statements); got != 1 {
		t.Fatalf("statement count = %d, want 1", got)
	}
	if err := a.RemoveStatement(judge, 3); err == nil {
		t.Fatal("removed out of range")
	}
}
