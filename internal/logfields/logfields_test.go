package logfields

import (
	"errors"
	"log/slog"
	"testing"
)

// TestHelperKeyNames verifies string-based helper key/value stability.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    slog.Attr
	}{
		{"RunID", KeyRunID, "r1", RunID("r1")},
		{"Stage", KeyStage, "hash", Stage("hash")},
		{"Path", KeyPath, "css/style.css", Path("css/style.css")},
		{"Target", KeyTarget, "img/a.png", Target("img/a.png")},
		{"Reference", KeyReference, "../img/a.png", Reference("../img/a.png")},
		{"Revisioned", KeyRevisioned, "a.1234abcd.png", Revisioned("a.1234abcd.png")},
		{"Digest", KeyDigest, "1234abcd", Digest("1234abcd")},
		{"Root", KeyRoot, "/srv/site", Root("/srv/site")},
		{"Subject", KeySubject, "assetrev.runs", Subject("assetrev.runs")},
	}

	for _, tc := range cases {
		if tc.attr.Key != tc.attrKey {
			// Key drift would break log ingestion schemas.
			t.Fatalf("%s: expected key %s, got %s", tc.name, tc.attrKey, tc.attr.Key)
		}
		if tc.attr.Value.String() != tc.attrVal {
			t.Fatalf("%s: expected value %s, got %s", tc.name, tc.attrVal, tc.attr.Value.String())
		}
	}
}

func TestNumericAndErrorHelpers(t *testing.T) {
	if a := Count(3); a.Key != KeyCount || a.Value.Int64() != 3 {
		t.Fatalf("unexpected Count attr: %v", a)
	}
	if a := DurationMS(1.5); a.Key != KeyDurationMS || a.Value.Float64() != 1.5 {
		t.Fatalf("unexpected DurationMS attr: %v", a)
	}
	if a := Error(nil); a.Value.String() != "" {
		t.Fatalf("nil error should produce empty value, got %q", a.Value.String())
	}
	if a := Error(errors.New("boom")); a.Key != KeyError || a.Value.String() != "boom" {
		t.Fatalf("unexpected Error attr: %v", a)
	}
}
