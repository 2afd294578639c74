package dialog

import "testing"

func TestTriggerSetMatchesSubstring(t *testing.T) {
	triggers := TriggerSet{"consultar processo", "processo"}

	tests := []struct {
		name string
		text string
		want bool
	}{
		{"exact phrase", "processo", true},
		{"embedded phrase", "quero consultar processo agora", true},
		{"uppercase input", "PROCESSO 123", true},
		{"keyword inside sentence", "qual o andamento do meu processo?", true},
		{"no match", "bom dia", false},
		{"empty input", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := triggers.Matches(tt.text); got != tt.want {
				t.Errorf("Matches(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestExactSetMatchesWholeInputOnly(t *testing.T) {
	affirmatives := ExactSet{"sim", "s", "claro"}

	tests := []struct {
		name string
		text string
		want bool
	}{
		{"exact word", "sim", true},
		{"surrounding whitespace", "  sim  ", true},
		{"uppercase", "SIM", true},
		{"embedded word is not exact", "sim, claro que sim", false},
		{"prefix only", "simples", false},
		{"no match", "talvez", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := affirmatives.Matches(tt.text); got != tt.want {
				t.Errorf("Matches(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}
