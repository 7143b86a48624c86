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
		{"BuildID", KeyBuildID, "b-1", BuildID("b-1")},
		{"Stage", KeyStage, "render", Stage("render")},
		{"File", KeyFile, "posts/a.md", File("posts/a.md")},
		{"Path", KeyPath, "/tmp/x", Path("/tmp/x")},
		{"URL", KeyURL, "/posts/a/", URL("/posts/a/")},
		{"Layout", KeyLayout, "post.html", Layout("post.html")},
		{"Filter", KeyFilter, "dateFr", Filter("dateFr")},
		{"Collection", KeyCollection, "drafts", Collection("drafts")},
		{"Environment", KeyEnvironment, "production", Environment("production")},
		{"Method", KeyMethod, "GET", Method("GET")},
		{"Op", KeyOp, "WRITE", Op("WRITE")},
	}

	for _, tc := range cases {
		if tc.attr.Key != tc.attrKey {
			// Key drift would break log ingestion schemas.
			t.Fatalf("%s: expected key %s, got %s", tc.name, tc.attrKey, tc.attr.Key)
		}
		if got := tc.attr.Value.String(); got != tc.attrVal {
			t.Fatalf("%s: expected value %s, got %v", tc.name, tc.attrVal, got)
		}
	}
}

func TestNumericHelpers(t *testing.T) {
	if v := Count(3); v.Key != KeyCount || v.Value.Int64() != 3 {
		t.Fatalf("Count mismatch: %v", v)
	}
	if v := DurationMS(12.5); v.Key != KeyDurationMS || v.Value.Float64() != 12.5 {
		t.Fatalf("DurationMS mismatch: %v", v)
	}
	if v := Status(404); v.Key != KeyStatus || v.Value.Int64() != 404 {
		t.Fatalf("Status mismatch: %v", v)
	}
}

func TestErrorHelper(t *testing.T) {
	attr := Error(errors.New("err-test"))
	if attr.Key != KeyError || attr.Value.String() != "err-test" {
		t.Fatalf("Error attr mismatch: %v", attr)
	}
	if Error(nil).Value.String() != "" {
		t.Fatalf("nil error should produce empty value")
	}
}
