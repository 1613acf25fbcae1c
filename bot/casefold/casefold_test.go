package casefold

import "testing"

func TestFoldIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"greet",
		"GREET",
		"Ｈｅｌｌｏ",
		"ﬁnal",
		"Straße",
		"ǅungla",
		"ЖИВОТНОЕ",
		"ᾈ",
		"café",
		"café",
	}
	for _, in := range inputs {
		once := Fold(in)
		twice := Fold(once)
		if once != twice {
			t.Fatalf("Fold not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestFoldCaseVariantsEqual(t *testing.T) {
	pairs := [][2]string{
		{"greet", "GREET"},
		{"greet", "Greet"},
		{"hello", "Ｈｅｌｌｏ"},      // fullwidth
		{"final", "ﬁnal"},        // ligature
		{"strasse", "Straße"},    // sharp s folds to ss
		{"café", "CAFÉ"}, // precomposed vs combining accent
	}
	for _, pair := range pairs {
		if Fold(pair[0]) != Fold(pair[1]) {
			t.Fatalf("expected %q and %q to fold equal: %q vs %q",
				pair[0], pair[1], Fold(pair[0]), Fold(pair[1]))
		}
	}
}

func TestFoldDistinctStaysDistinct(t *testing.T) {
	if Fold("greet") == Fold("great") {
		t.Fatal("distinct names must not fold together")
	}
}
