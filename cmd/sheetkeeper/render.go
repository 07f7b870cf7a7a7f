package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ersonp/sheetkeeper/internal/domain/dice"
	"github.com/ersonp/sheetkeeper/internal/domain/entities"
	"github.com/ersonp/sheetkeeper/internal/domain/services"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#B48EAD")).
			Bold(true).
			Underline(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#AAAAAA"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)

	goodStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#2ECC71")).
			Bold(true)

	badStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E74C3C")).
			Bold(true)

	activeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EEEEEE")).
			Background(lipgloss.Color("#5F5F87")).
			Bold(true).
			PaddingLeft(1).
			PaddingRight(1)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("#3C3C3C")).
			PaddingLeft(2)
)

// displayName title-cases a folded name for output.
func displayName(name string) string {
	return cases.Title(language.Und).String(name)
}

func formatMoney(amount float64) string {
	return strconv.FormatFloat(amount, 'f', 2, 64)
}

func renderSheet(sheet *entities.Sheet) string {
	c := sheet.Character

	lines := []string{
		titleStyle.Render("Sheet: " + c.Name),
		labelStyle.Render(fmt.Sprintf("%s / %s", displayName(c.System), displayName(c.Campaign))),
		"",
	}

	width := 0
	for _, a := range sheet.Attributes {
		width = max(width, len([]rune(a.Name)))
	}
	for _, a := range sheet.Attributes {
		value := a.Value
		if value == "" {
			value = "N/A"
		}
		label := displayName(a.Name) + strings.Repeat(" ", width-len([]rune(a.Name)))
		lines = append(lines, labelStyle.Render(label)+"  "+valueStyle.Render(value))
	}

	lines = append(lines, "", labelStyle.Render("Money: ")+valueStyle.Render(formatMoney(c.Money)))
	lines = append(lines, helpStyle.Render("Owner: "+c.OwnerID))

	return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func renderCharacters(system string, characters []entities.Character) string {
	if len(characters) == 0 {
		return helpStyle.Render(fmt.Sprintf("No sheets found for %s.", system))
	}

	lines := []string{titleStyle.Render("Sheets: " + displayName(system))}
	for _, c := range characters {
		lines = append(lines, fmt.Sprintf("- %s %s", valueStyle.Render(c.Name), labelStyle.Render("("+displayName(c.Campaign)+")")))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderInventory(name string, items []entities.InventoryItem) string {
	if len(items) == 0 {
		return helpStyle.Render(name + " carries nothing.")
	}

	lines := []string{titleStyle.Render("Inventory: " + name)}
	for _, item := range items {
		line := fmt.Sprintf("%s x%d", valueStyle.Render(displayName(item.Name)), item.Quantity)
		if item.Description != "" {
			line += "  " + labelStyle.Render(item.Description)
		}
		lines = append(lines, line)
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderEffects(name string, effects []entities.StatusEffect) string {
	if len(effects) == 0 {
		return helpStyle.Render(name + " has no active effects.")
	}

	lines := []string{titleStyle.Render("Effects: " + name)}
	for _, e := range effects {
		turns := "turns"
		if e.Duration == 1 {
			turns = "turn"
		}
		lines = append(lines, fmt.Sprintf("%s  %s", valueStyle.Render(e.Name), labelStyle.Render(fmt.Sprintf("%d %s left", e.Duration, turns))))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderExpired(name string, expired []string) string {
	if len(expired) == 0 {
		return labelStyle.Render(name + ": nothing expired.")
	}
	return badStyle.Render(name+": ") + strings.Join(expired, ", ") + " expired."
}

// renderRoll shows a roll in green when it beat the average and red otherwise.
func renderRoll(result dice.Result) string {
	style := badStyle
	if result.AboveAverage() {
		style = goodStyle
	}

	lines := []string{
		titleStyle.Render("Roll " + result.Notation),
		labelStyle.Render("Rolls: ") + fmt.Sprint(result.Rolls),
	}
	if result.Modifier != 0 {
		sum := result.Total - result.Modifier
		lines = append(lines, labelStyle.Render("Modifier: ")+fmt.Sprintf("%+d", result.Modifier))
		lines = append(lines, labelStyle.Render("Subtotal: ")+strconv.Itoa(sum))
	}
	lines = append(lines, labelStyle.Render("Total: ")+style.Render(strconv.Itoa(result.Total)))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderOrder(order services.Order) string {
	header := "Initiative"
	if order.Round > 0 {
		header = fmt.Sprintf("Initiative - round %d", order.Round)
	}

	lines := []string{titleStyle.Render(header)}
	for i, c := range order.Combatants {
		line := fmt.Sprintf("%2d. %-20s %3d", i+1, c.Name, c.Initiative)
		if c.PlayerID != "" {
			line += "  " + labelStyle.Render("("+c.PlayerID+")")
		}
		if i == order.Active {
			line = activeStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		lines = append(lines, line)
	}
	if order.Active < 0 {
		lines = append(lines, helpStyle.Render("Combat has not started. Use 'initiative next'."))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderTurn(turn services.Turn) string {
	return fmt.Sprintf("%s %s", labelStyle.Render(fmt.Sprintf("Round %d:", turn.Round)), activeStyle.Render(turn.Combatant.Name+"'s turn"))
}

func renderHistory(name string, entries []entities.AuditEntry) string {
	if len(entries) == 0 {
		return helpStyle.Render("No history for " + name + ".")
	}

	lines := []string{titleStyle.Render("History: " + name)}
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("%s  %-16s %s",
			labelStyle.Render(e.CreatedAt.Format("2006-01-02 15:04")),
			e.Action,
			formatDetails(e.Details),
		))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderNPC(npc *entities.NPC) string {
	lines := []string{titleStyle.Render("NPC: " + npc.Name)}
	for _, key := range sortedKeys(npc.Stats) {
		lines = append(lines, labelStyle.Render(displayName(key)+": ")+valueStyle.Render(fmt.Sprint(npc.Stats[key])))
	}
	return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func renderNPCs(npcs []entities.NPC) string {
	if len(npcs) == 0 {
		return helpStyle.Render("No NPCs saved.")
	}

	lines := []string{titleStyle.Render("NPCs")}
	for _, npc := range npcs {
		lines = append(lines, fmt.Sprintf("- %s %s", valueStyle.Render(npc.Name), labelStyle.Render(fmt.Sprintf("(%d stats)", len(npc.Stats)))))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// formatDetails renders a detail map as sorted key=value pairs.
func formatDetails(details map[string]any) string {
	parts := make([]string, 0, len(details))
	for _, key := range sortedKeys(details) {
		parts = append(parts, fmt.Sprintf("%s=%v", key, details[key]))
	}
	return strings.Join(parts, " ")
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
