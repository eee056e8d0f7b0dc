package featureflags

import "testing"

func TestEnabled_BooleanValues(t *testing.T) {
	m := NewManager("a=on,b=off,c=true,d=false,e=1,f=0")

	if !m.Enabled("a", "ana") || !m.Enabled("c", "ana") || !m.Enabled("e", "ana") {
		t.Fatal("expected enabled boolean values to evaluate true")
	}
	if m.Enabled("b", "ana") || m.Enabled("d", "ana") || m.Enabled("f", "ana") {
		t.Fatal("expected disabled boolean values to evaluate false")
	}
}

func TestEnabled_PercentageValues(t *testing.T) {
	m := NewManager("always=100%,never=0%,canary=25%")

	if !m.Enabled("always", "ana") {
		t.Fatal("100% rollout should always be enabled")
	}
	if m.Enabled("never", "ana") {
		t.Fatal("0% rollout should always be disabled")
	}

	first := m.Enabled("canary", "bo")
	for i := 0; i < 5; i++ {
		if got := m.Enabled("canary", "bo"); got != first {
			t.Fatal("rollout evaluation must be deterministic per subject")
		}
	}

	if m.Enabled("canary", "") {
		t.Fatal("percentage rollout requires a subject")
	}
}

func TestAllowed_DefaultsOn(t *testing.T) {
	m := NewManager("citizen_repost=off")

	if !m.Allowed(CitizenComment, "ana") {
		t.Fatal("unconfigured flag should be allowed")
	}
	if m.Allowed(CitizenRepost, "ana") {
		t.Fatal("flag switched off should not be allowed")
	}

	var nilManager *Manager
	if !nilManager.Allowed(CitizenHeart, "ana") {
		t.Fatal("nil manager should allow everything")
	}
	if nilManager.Enabled(CitizenHeart, "ana") {
		t.Fatal("nil manager enables nothing")
	}
}

func TestParseAndSnapshot(t *testing.T) {
	m := NewManager(" bad ,x=on, y = 20% ,z=off ")

	raw := m.Raw()
	if len(raw) != 3 {
		t.Fatalf("expected 3 parsed flags, got %d", len(raw))
	}
	if raw["x"] != "on" || raw["y"] != "20%" || raw["z"] != "off" {
		t.Fatalf("unexpected raw flags: %#v", raw)
	}

	snap := m.Snapshot("ana")
	if len(snap) != 3 {
		t.Fatalf("expected snapshot size 3, got %d", len(snap))
	}
}
