package http11

import "testing"

func TestHeaderAddPreservesOrder(t *testing.T) {
	h := NewHeader()
	h.Add("Set-Cookie", "a=1")
	h.Add("Content-Type", "text/plain")
	h.Add("Set-Cookie", "b=2")

	var names []string
	h.VisitAll(func(name, value string) bool {
		names = append(names, name+"="+value)
		return true
	})
	want := []string{"Set-Cookie=a=1", "Content-Type=text/plain", "Set-Cookie=b=2"}
	if len(names) != len(want) {
		t.Fatalf("got %d entries, want %d", len(names), len(want))
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("entry %d = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestHeaderCaseInsensitiveLookup(t *testing.T) {
	h := NewHeader()
	h.Add("Content-Type", "application/json")
	if got := h.Get("content-type"); got != "application/json" {
		t.Errorf("Get(content-type) = %q, want application/json", got)
	}
	if !h.Has("CONTENT-TYPE") {
		t.Error("Has(CONTENT-TYPE) = false, want true")
	}
}

func TestHeaderValuesMultiple(t *testing.T) {
	h := NewHeader()
	h.Add("X-Forwarded-For", "1.1.1.1")
	h.Add("X-Forwarded-For", "2.2.2.2")
	vs := h.Values("x-forwarded-for")
	if len(vs) != 2 || vs[0] != "1.1.1.1" || vs[1] != "2.2.2.2" {
		t.Errorf("Values = %v, want [1.1.1.1 2.2.2.2]", vs)
	}
}

func TestHeaderSetReplacesAll(t *testing.T) {
	h := NewHeader()
	h.Add("X-Trace", "a")
	h.Add("X-Trace", "b")
	h.Set("X-Trace", "c")
	if got := h.Values("X-Trace"); len(got) != 1 || got[0] != "c" {
		t.Errorf("Values after Set = %v, want [c]", got)
	}
}

func TestHeaderDelRemovesOnlyMatching(t *testing.T) {
	h := NewHeader()
	h.Add("A", "1")
	h.Add("B", "2")
	h.Add("A", "3")
	h.Del("A")
	if h.Has("A") {
		t.Error("Has(A) = true after Del, want false")
	}
	if got := h.Get("B"); got != "2" {
		t.Errorf("Get(B) = %q, want 2", got)
	}
	if h.Len() != 1 {
		t.Errorf("Len() = %d, want 1", h.Len())
	}
}
