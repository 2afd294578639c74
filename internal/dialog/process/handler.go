// Package process implements the judicial process lookup dialog flow:
// Idle → AwaitingProcessNumber → Idle.
package process

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/openjus/balcao/internal/dialog"
	"github.com/openjus/balcao/internal/lookup"
)

const stateWaiting = "waiting_for_process"

// The extraction is deliberately permissive: the first run of 20 consecutive
// digits anywhere in the text is taken, without boundary anchoring. Tightening
// it is a product decision, not a bug fix.
var processPattern = regexp.MustCompile(`\d{20}`)
var processExact = regexp.MustCompile(`^\d{20}$`)

// DefaultTriggers enter the flow. Matched as substrings.
var DefaultTriggers = dialog.TriggerSet{
	"consultar processo",
	"processo número",
	"processo n°",
	"processo nº",
	"processo numero",
	"processo",
	"consulta processo",
}

// DefaultCancels abort the flow while a number is awaited. Matched as
// substrings, like the entry triggers.
var DefaultCancels = dialog.TriggerSet{
	"cancelar",
	"sair",
	"não quero mais",
	"não quero",
	"quero sair",
}

const (
	msgAskNumber = "Por favor, informe o número do processo que deseja consultar. " +
		"Digite 'cancelar' ou 'sair' para sair da consulta."
	msgCancelled = "Consulta de processo cancelada. Como posso ajudar?"
	msgBadNumber = "Desculpe, não consegui identificar um número de processo válido. " +
		"Por favor, informe o número do processo no formato: 0000000-00.0000.0.00.0000\n" +
		"Ou digite 'cancelar' ou 'sair' para sair da consulta."
	msgLookupDown = "Desculpe, a consulta de processos está indisponível no momento. " +
		"Por favor, tente novamente em alguns minutos."
)

// Handler owns the process lookup flow.
type Handler struct {
	state    *dialog.StateStore
	resolver lookup.Resolver
	triggers dialog.TriggerSet
	cancels  dialog.TriggerSet
}

// New creates a process lookup handler over the given resolver.
func New(resolver lookup.Resolver) *Handler {
	return &Handler{
		state:    dialog.NewStateStore(),
		resolver: resolver,
		triggers: DefaultTriggers,
		cancels:  DefaultCancels,
	}
}

func (h *Handler) Name() string { return "process-lookup" }

// CanHandle claims the turn when this user is already mid-flow, or when the
// text contains an entry keyword.
func (h *Handler) CanHandle(userID, text string) bool {
	if h.state.GetBool(userID, stateWaiting) {
		return true
	}
	return h.triggers.Matches(text)
}

// Handle runs one turn of the flow.
func (h *Handler) Handle(ctx context.Context, userID, text string) dialog.Result {
	if h.state.GetBool(userID, stateWaiting) {
		return h.handleAwaitingNumber(ctx, userID, text)
	}

	if h.triggers.Matches(text) {
		h.state.Set(userID, stateWaiting, true)
		return dialog.Result{Reply: msgAskNumber, Continue: true, Status: dialog.StatusNormal}
	}

	return dialog.Result{}
}

func (h *Handler) handleAwaitingNumber(ctx context.Context, userID, text string) dialog.Result {
	if h.cancels.Matches(text) {
		h.state.Clear(userID)
		return dialog.Result{Reply: msgCancelled, Continue: false, Status: dialog.StatusNormal}
	}

	number := processPattern.FindString(text)
	if number == "" || !processExact.MatchString(number) {
		// Stay in the flow and re-prompt. The loop is unbounded on purpose:
		// only cancel or a valid number exits.
		return dialog.Result{Reply: msgBadNumber, Continue: true, Status: dialog.StatusNormal}
	}

	info, err := h.resolver.Resolve(ctx, number)
	if err != nil {
		slog.Warn("process lookup failed", "user", userID, "error", err)
		// Keep the waiting state so the user can resend the number once the
		// registry recovers.
		return dialog.Result{Reply: msgLookupDown, Continue: false, Status: dialog.StatusNormal}
	}

	h.state.Clear(userID)
	return dialog.Result{
		Reply:    formatCase(info),
		Continue: false,
		Status:   dialog.StatusNormal,
	}
}

// Reset clears the flow state for the user.
func (h *Handler) Reset(userID string) {
	h.state.Clear(userID)
}

func formatCase(c *lookup.Case) string {
	return fmt.Sprintf(
		"Processo encontrado!\n"+
			"Número: %s\n"+
			"Classe: %s\n"+
			"Assunto: %s\n"+
			"Status: %s\n"+
			"Última movimentação: %s\n"+
			"Tribunal: %s",
		c.Number, c.Class, c.Subject, c.Status, c.LastMovement, c.Tribunal)
}
