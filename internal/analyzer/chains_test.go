package analyzer

import (
	"testing"

	"github.com/blackwell-systems/tooltime/internal/event"
)

func TestBigrams_PairedConventionHasNoSelfLoop(t *testing.T) {
	// A Claude Code hook pair (PreToolUse then PostToolUse for the same
	// call) must contribute one call, never a Read->Read transition.
	tools := []string{"Read", "Edit", "Bash", "Read", "Edit"}
	var events []event.Event
	for i, tool := range tools {
		pre := callAt("s1", 2*i, tool)
		pre.Kind = event.KindPreToolUse
		post := callAt("s1", 2*i+1, tool)
		post.Kind = event.KindPostToolUse
		events = append(events, pre, post)
	}

	bigrams := Bigrams(GroupSessions(events), 1)
	for _, b := range bigrams {
		if b.From == b.To {
			t.Errorf("self transition %s->%s manufactured from announce/result pairs", b.From, b.To)
		}
	}
	// Four real transitions between five calls.
	total := 0
	for _, b := range bigrams {
		total += b.Count
	}
	if total != 4 {
		t.Errorf("expected 4 transitions from 5 calls, got %d", total)
	}
}

func TestBigrams_MinCountFiltersNoise(t *testing.T) {
	var events []event.Event
	for i := 0; i < 12; i += 2 {
		events = append(events, callAt("s1", i, "Read"), callAt("s1", i+1, "Edit"))
	}
	sessions := GroupSessions(events)

	// Read->Edit occurs 6 times, Edit->Read 5 times.
	got := Bigrams(sessions, 6)
	if len(got) != 1 {
		t.Fatalf("expected 1 bigram above floor 6, got %d", len(got))
	}
	if got[0].From != "Read" || got[0].To != "Edit" || got[0].Count != 6 {
		t.Errorf("unexpected top bigram: %+v", got[0])
	}
}

func TestBigrams_PctOfTotalTransitions(t *testing.T) {
	events := []event.Event{
		callAt("s1", 0, "Read"),
		callAt("s1", 1, "Edit"),
		callAt("s1", 2, "Bash"),
	}
	got := Bigrams(GroupSessions(events), 1)
	if len(got) != 2 {
		t.Fatalf("expected 2 bigrams, got %d", len(got))
	}
	// Each of the two transitions is 50% of the total.
	for _, b := range got {
		if b.Pct != 50.0 {
			t.Errorf("%s->%s pct = %v, want 50.0", b.From, b.To, b.Pct)
		}
	}
}

func TestBigrams_AdaptiveFloor(t *testing.T) {
	// 1000 transitions: the adaptive floor is max(3, 1000/200) = 5, so a
	// transition seen 4 times must be dropped.
	var events []event.Event
	seq := 0
	for i := 0; i < 500; i++ {
		events = append(events, callAt("s1", seq, "Read"), callAt("s1", seq+1, "Edit"))
		seq += 2
	}
	// A rare pair appearing 4 times in separate sessions.
	for i := 0; i < 4; i++ {
		sid := "rare" + string(rune('a'+i))
		events = append(events, callAt(sid, 0, "Glob"), callAt(sid, 1, "Grep"))
	}

	for _, b := range Bigrams(GroupSessions(events), 0) {
		if b.From == "Glob" {
			t.Errorf("transition below the adaptive floor survived: %+v", b)
		}
	}
}

func TestBigrams_NoCrossSessionTransitions(t *testing.T) {
	events := []event.Event{
		callAt("a", 0, "Read"),
		callAt("b", 0, "Edit"),
	}
	if got := Bigrams(GroupSessions(events), 1); len(got) != 0 {
		t.Errorf("transitions must not span sessions, got %+v", got)
	}
}

func TestTrigrams_Basic(t *testing.T) {
	var events []event.Event
	seq := 0
	for i := 0; i < 3; i++ {
		events = append(events,
			callAt("s1", seq, "Read"),
			callAt("s1", seq+1, "Edit"),
			callAt("s1", seq+2, "Bash"),
		)
		seq += 3
	}
	got := Trigrams(GroupSessions(events))
	if len(got) == 0 {
		t.Fatalf("expected at least one trigram")
	}
	top := got[0]
	if top.Count != 3 {
		t.Errorf("expected top trigram count 3, got %d", top.Count)
	}
	want := []string{"Read", "Edit", "Bash"}
	for i, tool := range want {
		if top.Sequence[i] != tool {
			t.Errorf("sequence[%d] = %q, want %q", i, top.Sequence[i], tool)
		}
	}
}

func TestRetryPatterns_SameToolSameFile(t *testing.T) {
	path := "/tmp/main.go"
	fail := failedCallAt("s1", 0, "Edit")
	fail.File = &path
	retry := callAt("s1", 1, "Edit")
	retry.File = &path

	got := RetryPatterns(GroupSessions([]event.Event{fail, retry}))
	if len(got) != 1 {
		t.Fatalf("expected 1 retry pattern, got %d", len(got))
	}
	if got[0].Tool != "Edit" || got[0].SessionsWithRetries != 1 || got[0].MaxRetries != 1 {
		t.Errorf("unexpected retry pattern: %+v", got[0])
	}
	if got[0].TotalRetries != 1 {
		t.Errorf("expected total retries 1, got %d", got[0].TotalRetries)
	}
}

func TestRetryPatterns_TotalAcrossSessions(t *testing.T) {
	path := "/tmp/main.go"
	var events []event.Event
	// Two retries in s1, one in s2.
	for i := 0; i < 2; i++ {
		fail := failedCallAt("s1", i*2, "Edit")
		fail.File = &path
		retry := callAt("s1", i*2+1, "Edit")
		retry.File = &path
		events = append(events, fail, retry)
	}
	fail := failedCallAt("s2", 0, "Edit")
	fail.File = &path
	retry := callAt("s2", 1, "Edit")
	retry.File = &path
	events = append(events, fail, retry)

	got := RetryPatterns(GroupSessions(events))
	if len(got) != 1 {
		t.Fatalf("expected 1 retry pattern, got %d", len(got))
	}
	p := got[0]
	if p.TotalRetries != 3 {
		t.Errorf("expected total retries 3, got %d", p.TotalRetries)
	}
	if p.AvgRetries != 1.5 || p.SessionsWithRetries != 2 || p.MaxRetries != 2 {
		t.Errorf("unexpected retry pattern: %+v", p)
	}
}

func TestRetryPatterns_DifferentFileIsNotARetry(t *testing.T) {
	a, b := "/tmp/a.go", "/tmp/b.go"
	fail := failedCallAt("s1", 0, "Edit")
	fail.File = &a
	next := callAt("s1", 1, "Edit")
	next.File = &b

	if got := RetryPatterns(GroupSessions([]event.Event{fail, next})); len(got) != 0 {
		t.Errorf("different target files must not count as a retry, got %+v", got)
	}
}

func TestRetryPatterns_NonFileToolNeverRegisters(t *testing.T) {
	// Bash carries no file identity, so even an exact-looking repeat after
	// a failure is not a retry.
	fail := failedCallAt("s1", 0, "Bash")
	next := callAt("s1", 1, "Bash")

	if got := RetryPatterns(GroupSessions([]event.Event{fail, next})); len(got) != 0 {
		t.Errorf("non-file tools must never register retries, got %+v", got)
	}
}

func TestRetryPatterns_MissingFileIsNotARetry(t *testing.T) {
	path := "/tmp/a.go"
	fail := failedCallAt("s1", 0, "Read")
	fail.File = &path
	next := callAt("s1", 1, "Read") // no file recorded

	if got := RetryPatterns(GroupSessions([]event.Event{fail, next})); len(got) != 0 {
		t.Errorf("missing file path must not count as a retry, got %+v", got)
	}
}
