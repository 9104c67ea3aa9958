package session

import (
	"errors"
	"sync"
	"testing"
	"time"

	"nutrigenie/internal/planner"
)

func testPlan() *planner.WeeklyPlan {
	plan := &planner.WeeklyPlan{}
	for i, name := range []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"} {
		plan.Days = append(plan.Days, planner.DayPlan{DayNumber: i + 1, DayName: name})
	}
	return plan
}

func TestLogin(t *testing.T) {
	m := NewManager(0)

	t.Run("AcceptsAnyCredentials", func(t *testing.T) {
		st, err := m.Login("", "alice", "x", "")
		if err != nil {
			t.Fatalf("Login failed: %v", err)
		}
		if st.ID == "" || st.User.ID == "" {
			t.Error("Expected generated ids")
		}
		if st.User.Name != "alice" {
			t.Errorf("Expected display name to default to username, got %q", st.User.Name)
		}
		if st.View != ViewPlan {
			t.Errorf("Expected default view plan, got %q", st.View)
		}
	})

	t.Run("RejectsEmpty", func(t *testing.T) {
		for _, creds := range [][2]string{{"", "pw"}, {"bob", ""}, {"  ", "pw"}} {
			if _, err := m.Login("", creds[0], creds[1], ""); !errors.Is(err, ErrInvalidCredentials) {
				t.Errorf("Expected ErrInvalidCredentials for %v, got %v", creds, err)
			}
		}
	})

	t.Run("RejectsUnusableUsernames", func(t *testing.T) {
		for _, username := range []string{"ann/bob", `ann\bob`, "..", "."} {
			_, err := m.Login("", username, "pw", "")
			if !errors.Is(err, ErrInvalidUsername) || !errors.Is(err, ErrInvalidCredentials) {
				t.Errorf("Expected ErrInvalidUsername for %q, got %v", username, err)
			}
		}
		if m.Len() != 1 {
			t.Errorf("Expected rejected logins to create no session, got %d sessions", m.Len())
		}
	})

	t.Run("FixedSessionID", func(t *testing.T) {
		st, err := m.Login("tg-42", "carol", "pw", "Carol")
		if err != nil || st.ID != "tg-42" || st.User.Name != "Carol" {
			t.Fatalf("Unexpected login result %+v err=%v", st, err)
		}
	})
}

func TestLogout(t *testing.T) {
	m := NewManager(0)
	st, _ := m.Login("", "alice", "pw", "")
	m.Update(st.ID, func(s *State) error {
		s.SetPlan(testPlan())
		return nil
	})

	m.Logout(st.ID)
	if _, err := m.Get(st.ID); !errors.Is(err, ErrNotLoggedIn) {
		t.Errorf("Expected ErrNotLoggedIn after logout, got %v", err)
	}

	// A new login starts from a clean state.
	again, _ := m.Login(st.ID, "alice", "pw", "")
	if again.Plan != nil || again.View != ViewPlan {
		t.Errorf("Expected a clean session, got %+v", again)
	}
}

func TestViewState(t *testing.T) {
	st := newState("s1", User{Username: "alice"})

	t.Run("SwitchClearsExpanded", func(t *testing.T) {
		st.ToggleExpanded("Oats")
		st.SetView(ViewPlan)
		if !st.Expanded["Oats"] {
			t.Error("Expected staying on the same view to keep expanded cards")
		}
		st.SetView(ViewGrocery)
		if len(st.Expanded) != 0 {
			t.Error("Expected switching views to collapse cards")
		}
	})

	t.Run("ToggleExpanded", func(t *testing.T) {
		if !st.ToggleExpanded("Soup") {
			t.Error("Expected Soup to expand")
		}
		if st.ToggleExpanded("Soup") {
			t.Error("Expected Soup to collapse")
		}
	})

	t.Run("SetPlanShowsFirstDay", func(t *testing.T) {
		st.Error = "previous failure"
		st.SetView(ViewTrack)
		st.SetPlan(testPlan())
		if st.ActiveDay != 1 || st.View != ViewPlan || st.Error != "" {
			t.Errorf("Unexpected state after SetPlan: day=%d view=%s err=%q", st.ActiveDay, st.View, st.Error)
		}
	})

	t.Run("SelectDay", func(t *testing.T) {
		if err := st.SelectDay(5); err != nil {
			t.Fatalf("SelectDay failed: %v", err)
		}
		day, ok := st.CurrentDay()
		if !ok || day.DayName != "Friday" {
			t.Errorf("Expected Friday, got %+v", day)
		}
		if err := st.SelectDay(0); !errors.Is(err, ErrNoSuchDay) {
			t.Errorf("Expected ErrNoSuchDay, got %v", err)
		}

		empty := newState("s2", User{})
		if err := empty.SelectDay(1); !errors.Is(err, ErrNoPlan) {
			t.Errorf("Expected ErrNoPlan, got %v", err)
		}
	})

	t.Run("Water", func(t *testing.T) {
		st.AddWater(250)
		st.AddWater(500)
		st.AddWater(-2000)
		if st.Water != 0 {
			t.Errorf("Expected water floored at 0, got %d", st.Water)
		}
		st.AddWater(500)
		st.ResetWater()
		if st.Water != 0 {
			t.Errorf("Expected reset to 0, got %d", st.Water)
		}
	})

	t.Run("UpdateUser", func(t *testing.T) {
		if err := st.UpdateUser("Alice A.", ""); err != nil {
			t.Fatalf("UpdateUser failed: %v", err)
		}
		if st.User.Name != "Alice A." || st.User.Username != "alice" {
			t.Errorf("Unexpected user %+v", st.User)
		}
		for _, username := range []string{"a/b", ".."} {
			if err := st.UpdateUser("Mallory", username); !errors.Is(err, ErrInvalidUsername) {
				t.Errorf("Expected ErrInvalidUsername for %q, got %v", username, err)
			}
		}
		if st.User.Name != "Alice A." || st.User.Username != "alice" {
			t.Errorf("Expected a rejected update to change nothing, got %+v", st.User)
		}
	})
}

func TestParseView(t *testing.T) {
	if v, err := ParseView("saved"); err != nil || v != ViewSaved {
		t.Errorf("ParseView(saved) = %q, %v", v, err)
	}
	if _, err := ParseView("settings"); !errors.Is(err, ErrUnknownView) {
		t.Errorf("Expected ErrUnknownView, got %v", err)
	}
}

func TestSnapshotIsolation(t *testing.T) {
	m := NewManager(0)
	st, _ := m.Login("", "alice", "pw", "")

	snapshot, _ := m.Get(st.ID)
	snapshot.Expanded["Oats"] = true
	snapshot.View = ViewSaved

	fresh, _ := m.Get(st.ID)
	if fresh.Expanded["Oats"] || fresh.View != ViewPlan {
		t.Error("Mutating a snapshot must not change the session")
	}
}

func TestExpiry(t *testing.T) {
	m := NewManager(time.Hour)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	st, _ := m.Login("", "alice", "pw", "")
	other, _ := m.Login("", "bob", "pw", "")

	now = now.Add(30 * time.Minute)
	if _, err := m.Get(st.ID); err != nil {
		t.Fatalf("Expected session to be alive, got %v", err)
	}

	now = now.Add(45 * time.Minute)
	if _, err := m.Get(st.ID); err != nil {
		t.Fatalf("Expected activity to extend the session, got %v", err)
	}
	if removed := m.Sweep(); removed != 1 {
		t.Errorf("Expected bob's idle session to be swept, removed %d", removed)
	}
	if _, err := m.Get(other.ID); !errors.Is(err, ErrNotLoggedIn) {
		t.Errorf("Expected ErrNotLoggedIn, got %v", err)
	}
}

func TestConcurrentUpdates(t *testing.T) {
	m := NewManager(0)
	st, _ := m.Login("", "alice", "pw", "")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Update(st.ID, func(s *State) error {
				s.AddWater(10)
				return nil
			})
		}()
	}
	wg.Wait()

	got, _ := m.Get(st.ID)
	if got.Water != 500 {
		t.Errorf("Expected 500ml, got %d", got.Water)
	}
}

func TestTokenSigner(t *testing.T) {
	signer, err := NewTokenSigner("", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenSigner failed: %v", err)
	}

	st := newState("session-1", User{Username: "alice"})
	token, err := signer.Sign(*st)
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}

	id, err := signer.Parse(token)
	if err != nil || id != "session-1" {
		t.Errorf("Parse() = %q, %v", id, err)
	}

	t.Run("OtherSecret", func(t *testing.T) {
		other, _ := NewTokenSigner("", time.Hour)
		if _, err := other.Parse(token); !errors.Is(err, ErrNotLoggedIn) {
			t.Errorf("Expected ErrNotLoggedIn, got %v", err)
		}
	})

	t.Run("Tampered", func(t *testing.T) {
		if _, err := signer.Parse(token + "x"); err == nil {
			t.Error("Expected an error for a tampered token")
		}
	})

	t.Run("Expired", func(t *testing.T) {
		short, _ := NewTokenSigner("fixed-secret", time.Nanosecond)
		tok, _ := short.Sign(*st)
		time.Sleep(time.Second + 10*time.Millisecond)
		if _, err := short.Parse(tok); err == nil {
			t.Error("Expected an error for an expired token")
		}
	})
}
