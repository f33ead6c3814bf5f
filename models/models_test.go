package models

import "testing"

func TestActivityKeyNormalizes(t *testing.T) {
	a := Activity{Name: " Last Wish ", Category: "Raids"}
	b := Activity{Name: "last wish", Category: "raids"}
	if a.Key() != b.Key() {
		t.Fatalf("expected equal keys, got %s and %s", a.Key(), b.Key())
	}
}

func TestSignupKindValid(t *testing.T) {
	for _, k := range []SignupKind{SignupSherpa, SignupBackup, SignupBackout} {
		if !k.Valid() {
			t.Fatalf("expected %s to be valid", k)
		}
	}
	if SignupKind("maybe").Valid() {
		t.Fatal("expected unknown kind to be invalid")
	}
}
