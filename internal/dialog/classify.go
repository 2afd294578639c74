package dialog

import "strings"

// Classifier assigns a Status to replies produced by the NLP fallback engine,
// which has no native status concept. Handler replies carry their status and
// never pass through here.
type Classifier struct {
	handoff TriggerSet
	ending  TriggerSet
}

// DefaultHandoffPhrases mark a reply as transferring to a human operator.
var DefaultHandoffPhrases = TriggerSet{
	"transferindo você para um atendente",
	"vou conectar você a um atendente",
	"atendimento humano",
	"um atendente entrará",
}

// DefaultEndingPhrases mark a reply as closing the conversation.
var DefaultEndingPhrases = TriggerSet{
	"até logo",
	"obrigado por utilizar nossos serviços",
	"atendimento encerrado",
	"tenha um ótimo dia",
}

// NewClassifier builds a classifier from phrase lists. Empty lists fall back
// to the defaults.
func NewClassifier(handoff, ending []string) *Classifier {
	c := &Classifier{
		handoff: DefaultHandoffPhrases,
		ending:  DefaultEndingPhrases,
	}
	if len(handoff) > 0 {
		c.handoff = lowered(handoff)
	}
	if len(ending) > 0 {
		c.ending = lowered(ending)
	}
	return c
}

// Classify scans the reply for handoff and conversation-ending phrases.
// Handoff wins over ending when both match.
func (c *Classifier) Classify(reply string) Status {
	if c.handoff.Matches(reply) {
		return StatusHandoff
	}
	if c.ending.Matches(reply) {
		return StatusEnded
	}
	return StatusNormal
}

func lowered(phrases []string) TriggerSet {
	out := make(TriggerSet, len(phrases))
	for i, p := range phrases {
		out[i] = strings.ToLower(p)
	}
	return out
}
