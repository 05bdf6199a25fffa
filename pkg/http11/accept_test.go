package http11

import "testing"

func TestParseQualityListOrdersByQDescendingStable(t *testing.T) {
	items := parseQualityList("deflate, compress, br;q=0.5, gzip;q=0.8, identity;q=1.0")
	want := []string{"deflate", "compress", "identity", "gzip", "br"}
	if len(items) != len(want) {
		t.Fatalf("got %d items, want %d", len(items), len(want))
	}
	for i, w := range want {
		if items[i].Value != w {
			t.Errorf("item %d = %q, want %q", i, items[i].Value, w)
		}
	}
}

func TestParseQualityListEmpty(t *testing.T) {
	if items := parseQualityList(""); items != nil {
		t.Errorf("parseQualityList(\"\") = %v, want nil", items)
	}
}

func TestParseQualityListMalformedQDefaultsToOne(t *testing.T) {
	items := parseQualityList("en-US;q=bogus, fr;q=0.9")
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].Value != "en-US" || items[0].Quality != 1.0 {
		t.Errorf("items[0] = %+v, want en-US/1.0", items[0])
	}
}
