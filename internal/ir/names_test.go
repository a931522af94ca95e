package ir

import "testing"

func TestAttrName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "name", want: "name"},
		{in: "foo_bar", want: "fooBar"},
		{in: "item_id", want: "itemId"},
		{in: "trailing_", want: "trailing"},
		{in: "a_b_c", want: "aBC"},
		{in: "Already", want: "already"},
	}

	for _, tc := range tests {
		got := AttrName(tc.in)
		if got != tc.want {
			t.Fatalf("AttrName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNamespacedName(t *testing.T) {
	if got := NamespacedName([]string{"Foo", "Bar"}); got != "Foo.Bar" {
		t.Fatalf("NamespacedName = %q, want %q", got, "Foo.Bar")
	}
	if got := NamespacedName([]string{"Foo"}); got != "Foo" {
		t.Fatalf("NamespacedName = %q, want %q", got, "Foo")
	}
}
