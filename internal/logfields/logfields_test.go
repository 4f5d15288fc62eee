package logfields

import (
	"errors"
	"testing"
)

func TestErrorAttrNil(t *testing.T) {
	attr := Error(nil)
	if attr.Key != KeyError {
		t.Errorf("expected key %q, got %q", KeyError, attr.Key)
	}
	if attr.Value.String() != "" {
		t.Errorf("nil error should render empty, got %q", attr.Value.String())
	}
}

func TestErrorAttr(t *testing.T) {
	attr := Error(errors.New("boom"))
	if attr.Value.String() != "boom" {
		t.Errorf("expected boom, got %q", attr.Value.String())
	}
}

func TestFieldHelpers(t *testing.T) {
	if ThreadID("t1").Key != KeyThreadID {
		t.Error("ThreadID key mismatch")
	}
	if FieldValue("db.t1.description").Value.String() != "db.t1.description" {
		t.Error("FieldValue value mismatch")
	}
	if Mentions(3).Value.Int64() != 3 {
		t.Error("Mentions value mismatch")
	}
}
