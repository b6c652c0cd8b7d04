package identity

import (
	"testing"
	"time"
)

func TestGateReplaysCurrentStateOnSubscribe(t *testing.T) {
	t.Parallel()

	gate := NewGate()
	ch, unsubscribe := gate.Subscribe()
	defer unsubscribe()

	select {
	case state := <-ch:
		if state.Resolved {
			t.Fatal("expected initial state to be unresolved")
		}
	case <-time.After(time.Second):
		t.Fatal("expected immediate replay")
	}

	gate.Publish(&Identity{SubjectID: "s1", Email: "a@b.c", Role: RoleStandard})

	select {
	case state := <-ch:
		if !state.Resolved || state.Identity == nil || state.Identity.SubjectID != "s1" {
			t.Fatalf("unexpected state: %+v", state)
		}
	case <-time.After(time.Second):
		t.Fatal("expected published state")
	}
}

func TestGateUnsubscribeClosesChannel(t *testing.T) {
	t.Parallel()

	gate := NewGate()
	ch, unsubscribe := gate.Subscribe()
	<-ch
	unsubscribe()
	unsubscribe()

	if _, ok := <-ch; ok {
		t.Fatal("expected closed channel after unsubscribe")
	}

	// Publishing after unsubscribe must not panic or block.
	gate.Publish(nil)
}

func TestGateSignOutObservedAsAnonymous(t *testing.T) {
	t.Parallel()

	gate := NewGate()
	gate.Publish(&Identity{SubjectID: "s1", Email: "a@b.c", Role: RoleStandard})
	gate.Publish(nil)

	state := gate.Current()
	if !state.Resolved || state.Identity != nil || state.Role() != RoleAnonymous {
		t.Fatalf("expected resolved anonymous state, got %+v", state)
	}
}

func TestDecide(t *testing.T) {
	t.Parallel()

	standard := &Identity{SubjectID: "s1", Email: "a@b.c", Role: RoleStandard}
	owner := &Identity{SubjectID: "s2", Email: PrivilegedEmail, Role: RolePrivileged}

	if d := Decide(nil, RoleStandard, "/cart"); d.Allowed || d.RedirectTo != "/signin" || d.Destination != "/cart" {
		t.Fatalf("expected redirect preserving destination, got %+v", d)
	}
	if d := Decide(standard, RoleStandard, "/cart"); !d.Allowed {
		t.Fatalf("expected access, got %+v", d)
	}
	if d := Decide(standard, RolePrivileged, "/manage"); d.Allowed || d.RedirectTo != "/" || d.Destination != "" {
		t.Fatalf("expected denial sending the caller home, got %+v", d)
	}
	if d := Decide(owner, RolePrivileged, "/manage"); !d.Allowed {
		t.Fatalf("expected owner access, got %+v", d)
	}
}

func TestClassifyEmail(t *testing.T) {
	t.Parallel()

	if ClassifyEmail(PrivilegedEmail) != RolePrivileged {
		t.Fatal("expected privileged role for owner email")
	}
	if ClassifyEmail(" "+PrivilegedEmail+" ") != RolePrivileged {
		t.Fatal("expected whitespace tolerated")
	}
	if ClassifyEmail("someone@poornima.edu.in") != RoleStandard {
		t.Fatal("expected standard role for other emails")
	}
}

func TestSubjectIDForIsStable(t *testing.T) {
	t.Parallel()

	a := SubjectIDFor("User@Example.com")
	b := SubjectIDFor("user@example.com ")
	if a != b {
		t.Fatalf("expected normalized derivation, got %q vs %q", a, b)
	}
	if a == SubjectIDFor("other@example.com") {
		t.Fatal("expected distinct subjects for distinct emails")
	}
}
