// Package handoff implements the human handoff dialog flow:
// Idle → AwaitingTribunalSelection (optional) → AwaitingConfirmation → Idle.
//
// Entry is detected by substring triggers; the yes/no confirmation only
// accepts an exact vocabulary. The two tiers are intentionally different.
package handoff

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/openjus/balcao/internal/dialog"
	"github.com/openjus/balcao/internal/directory"
	"github.com/openjus/balcao/internal/meet"
)

const (
	stateAwaitingTribunal     = "awaiting_tribunal"
	stateAwaitingConfirmation = "awaiting_confirmation"
	stateSubject              = "subject"
	stateUnitName             = "unit_name"
	stateUnitSchedule         = "unit_schedule"
	stateOrgName              = "org_name"
)

// DefaultTriggers enter the flow. Matched as substrings.
var DefaultTriggers = dialog.TriggerSet{
	"falar com atendente",
	"falar com humano",
	"atendente humano",
	"atendente real",
	"pessoa real",
	"transferir para atendente",
	"quero falar com alguém",
	"preciso de ajuda humana",
	"não estou conseguindo",
	"quero falar com uma pessoa",
	"quero falar com uma humano",
	"não entendi",
}

// Affirmatives and Negatives are exact-match confirmation vocabularies.
var (
	Affirmatives = dialog.ExactSet{"sim", "s", "yes", "y", "claro", "por favor", "quero"}
	Negatives    = dialog.ExactSet{"não", "nao", "n", "no", "não quero", "nao quero"}
)

const (
	msgDeclined = "Ok, vou continuar te ajudando. Como posso ser útil?"
	msgAskYesNo = "Desculpe, não entendi. Você gostaria de falar com um atendente? " +
		"Por favor, responda com 'sim' ou 'não'."
	msgProvisionFailed = "Desculpe, tivemos um problema ao criar a sala de atendimento. " +
		"Por favor, tente novamente em alguns minutos."
)

// Handler owns the human handoff flow.
type Handler struct {
	state       *dialog.StateStore
	dir         *directory.Directory
	provisioner meet.Provisioner
	triggers    dialog.TriggerSet
}

// New creates a handoff handler over the organization directory and the
// meeting provisioner.
func New(dir *directory.Directory, provisioner meet.Provisioner) *Handler {
	return &Handler{
		state:       dialog.NewStateStore(),
		dir:         dir,
		provisioner: provisioner,
		triggers:    DefaultTriggers,
	}
}

func (h *Handler) Name() string { return "human-handoff" }

// CanHandle claims the turn when this user is mid-flow or the text contains a
// handoff trigger.
func (h *Handler) CanHandle(userID, text string) bool {
	if h.state.GetBool(userID, stateAwaitingTribunal) || h.state.GetBool(userID, stateAwaitingConfirmation) {
		return true
	}
	return h.triggers.Matches(text)
}

// Handle runs one turn of the flow.
func (h *Handler) Handle(ctx context.Context, userID, text string) dialog.Result {
	switch {
	case h.state.GetBool(userID, stateAwaitingConfirmation):
		return h.handleConfirmation(ctx, userID, text)
	case h.state.GetBool(userID, stateAwaitingTribunal):
		return h.handleTribunalSelection(userID, text)
	}

	if !h.triggers.Matches(text) {
		return dialog.Result{}
	}

	// New request. When the message already names a unit, skip tribunal
	// selection and go straight to confirmation.
	h.state.Set(userID, stateSubject, text)
	if m, ok := h.dir.Match(text); ok {
		return h.toConfirmation(userID, m)
	}

	h.state.Set(userID, stateAwaitingTribunal, true)
	return dialog.Result{Reply: h.listTribunals(), Continue: true, Status: dialog.StatusNormal}
}

func (h *Handler) handleTribunalSelection(userID, text string) dialog.Result {
	m, ok := h.dir.Match(text)
	if !ok {
		// Unbounded on purpose: the user can loop here until a tribunal
		// matches or the session expires.
		return dialog.Result{
			Reply:    "Não reconheci esse tribunal.\n\n" + h.listTribunals(),
			Continue: true,
			Status:   dialog.StatusNormal,
		}
	}
	h.state.Set(userID, stateAwaitingTribunal, false)
	return h.toConfirmation(userID, m)
}

func (h *Handler) toConfirmation(userID string, m directory.Match) dialog.Result {
	h.state.Set(userID, stateAwaitingConfirmation, true)
	h.state.Set(userID, stateOrgName, m.Org.Name)
	h.state.Set(userID, stateUnitName, m.Unit.Name)
	h.state.Set(userID, stateUnitSchedule, m.Unit.Schedule)

	reply := fmt.Sprintf(
		"Encontrei a unidade %s (%s).\nHorário de atendimento: %s.\n\n"+
			"Deseja que eu abra uma sala de atendimento com um atendente? Responda 'sim' ou 'não'.",
		m.Unit.Name, m.Org.Name, m.Unit.Schedule)
	return dialog.Result{Reply: reply, Continue: true, Status: dialog.StatusNormal}
}

func (h *Handler) handleConfirmation(ctx context.Context, userID, text string) dialog.Result {
	switch {
	case Affirmatives.Matches(text):
		subject := h.state.GetString(userID, stateSubject)
		if subject == "" {
			subject = "Atendimento"
		}
		room, err := h.provisioner.CreateRoom(ctx, userID, subject)
		if err != nil {
			slog.Warn("meeting provisioning failed", "user", userID, "error", err)
			// State stays: an affirmative after the outage retries provisioning.
			return dialog.Result{Reply: msgProvisionFailed, Continue: false, Status: dialog.StatusNormal}
		}

		h.state.Clear(userID)
		reply := fmt.Sprintf(
			"Entendi! Vou conectar você a um atendente. Por favor, acesse o link: %s\n"+
				"Um atendente entrará na sala em instantes.\n\n"+
				"Dicas:\n"+
				"- Use fones de ouvido para melhor qualidade de áudio\n"+
				"- Verifique se sua câmera e microfone estão funcionando\n"+
				"- Aguarde o atendente entrar na sala",
			room.URL)
		return dialog.Result{Reply: reply, Continue: true, Status: dialog.StatusHandoff}

	case Negatives.Matches(text):
		h.state.Clear(userID)
		return dialog.Result{Reply: msgDeclined, Continue: false, Status: dialog.StatusNormal}

	default:
		return dialog.Result{Reply: msgAskYesNo, Continue: true, Status: dialog.StatusNormal}
	}
}

// Reset clears the flow state for the user.
func (h *Handler) Reset(userID string) {
	h.state.Clear(userID)
}

func (h *Handler) listTribunals() string {
	var b strings.Builder
	b.WriteString("Para qual tribunal você precisa de atendimento?\n")
	for _, name := range h.dir.Names() {
		b.WriteString("- ")
		b.WriteString(name)
		b.WriteString("\n")
	}
	b.WriteString("\nResponda com o nome do tribunal.")
	return b.String()
}
