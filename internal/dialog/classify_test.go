package dialog

import "testing"

func TestClassifyDefaults(t *testing.T) {
	c := NewClassifier(nil, nil)

	tests := []struct {
		name  string
		reply string
		want  Status
	}{
		{"plain answer", "O horário de atendimento é das 9h às 18h.", StatusNormal},
		{"handoff phrase", "Estou transferindo você para um atendente agora.", StatusHandoff},
		{"ending phrase", "Até logo! Obrigado pelo contato.", StatusEnded},
		{"handoff wins over ending", "Transferindo você para um atendente. Até logo!", StatusHandoff},
		{"case insensitive", "ATENDIMENTO ENCERRADO", StatusEnded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Classify(tt.reply); got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.reply, got, tt.want)
			}
		})
	}
}

func TestClassifyCustomPhrases(t *testing.T) {
	c := NewClassifier([]string{"Encaminhando ao Suporte"}, []string{"Tchau"})

	if got := c.Classify("encaminhando ao suporte humano"); got != StatusHandoff {
		t.Errorf("custom handoff phrase: got %v", got)
	}
	if got := c.Classify("tchau e obrigado"); got != StatusEnded {
		t.Errorf("custom ending phrase: got %v", got)
	}
	// Default vocabularies are replaced, not merged.
	if got := c.Classify("até logo"); got != StatusNormal {
		t.Errorf("default phrase should not match after override: got %v", got)
	}
}
