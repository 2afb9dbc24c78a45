// Package tui is the terminal front end. It only drives the engine's public
// surfaces: imports, category and filter edits, search and cash-flow
// queries.
package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/cashfolio/cashfolio/internal/config"
	"github.com/cashfolio/cashfolio/internal/ledger"
	"github.com/cashfolio/cashfolio/internal/model"
	"github.com/cashfolio/cashfolio/internal/service"
)

// App ties together views.
type App struct {
	ctx context.Context
	app *service.App
	cfg config.Config

	state        appState
	transactions []model.AssignedTransaction
	batches      ledger.Info
	similar      []ledger.SimilarPair
	categories   []string

	txCursor       int
	batchCursor    int
	categoryCursor int
	pickerCursor   int

	modal       modalState
	inputBuffer string
	importPath  string
	status      string

	currency   string
	dateFormat string
}

type appState string

const (
	viewDashboard    appState = "dashboard"
	viewTransactions appState = "transactions"
	viewBatches      appState = "batches"
	viewCategories   appState = "categories"
	viewImport       appState = "import"
)

type modalState string

const (
	modalNone           modalState = ""
	modalCategoryPicker modalState = "categoryPicker"
	modalNewCategory    modalState = "newCategory"
	modalRenameCategory modalState = "renameCategory"
)

func New(ctx context.Context, cfg config.Config, app *service.App) *App {
	a := &App{
		ctx:        ctx,
		app:        app,
		cfg:        cfg,
		currency:   cfg.UI.CurrencySymbol,
		dateFormat: cfg.UI.DateFormat,
	}
	a.refresh()
	return a
}

func (a *App) Init() tea.Cmd { return nil }

func (a *App) refresh() {
	a.transactions = a.app.Searcher.Search(model.SearchQuery{})
	a.batches = a.app.Ledger.BatchInfos()
	a.categories = a.app.Categories.Names()
	if a.txCursor >= len(a.transactions) {
		a.txCursor = 0
	}
	if a.batchCursor >= len(a.batches.Batches) {
		a.batchCursor = 0
	}
	if a.categoryCursor >= len(a.categories) {
		a.categoryCursor = 0
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m, ok := msg.(tea.KeyMsg)
	if !ok {
		return a, nil
	}
	if a.modal != modalNone {
		return a.handleModalKey(m)
	}
	if a.state == viewImport {
		return a.handleImportKey(m)
	}
	switch m.String() {
	case "q", "ctrl+c":
		return a, tea.Quit
	case "d":
		a.state = viewDashboard
	case "t":
		a.state = viewTransactions
	case "b":
		a.state = viewBatches
	case "g":
		a.state = viewCategories
	case "i":
		a.state = viewImport
		a.status = ""
	case "up", "k":
		a.moveCursor(-1)
	case "down", "j":
		a.moveCursor(1)
	case "c":
		if a.state == viewTransactions && len(a.transactions) > 0 {
			a.modal = modalCategoryPicker
			a.pickerCursor = 0
		}
	case "n":
		if a.state == viewCategories {
			a.modal = modalNewCategory
			a.inputBuffer = ""
		}
	case "enter":
		if a.state == viewCategories && len(a.categories) > 0 {
			a.modal = modalRenameCategory
			a.inputBuffer = a.categories[a.categoryCursor]
		}
	case "s":
		if a.state == viewBatches {
			a.similar = a.app.Ledger.SimilarPairs()
			a.status = fmt.Sprintf("%d near-duplicate pair(s) found", len(a.similar))
		}
	case "backspace", "delete":
		switch a.state {
		case viewBatches:
			if len(a.batches.Batches) > 0 {
				name := a.batches.Batches[a.batchCursor].Name
				if err := a.app.RemoveBatch(a.ctx, name); err != nil {
					a.status = "error: " + err.Error()
				} else {
					a.status = fmt.Sprintf("removed %s", name)
				}
				a.refresh()
			}
		case viewCategories:
			if len(a.categories) > 0 {
				name := a.categories[a.categoryCursor]
				if err := a.app.Categories.Remove(name); err != nil {
					a.status = "error: " + err.Error()
				} else {
					a.saveCategories()
					a.status = fmt.Sprintf("removed %s", name)
				}
				a.refresh()
			}
		}
	}
	return a, nil
}

func (a *App) moveCursor(delta int) {
	switch a.state {
	case viewTransactions:
		a.txCursor = clamp(a.txCursor+delta, len(a.transactions))
	case viewBatches:
		a.batchCursor = clamp(a.batchCursor+delta, len(a.batches.Batches))
	case viewCategories:
		a.categoryCursor = clamp(a.categoryCursor+delta, len(a.categories))
	}
}

func clamp(v, n int) int {
	if v < 0 {
		return 0
	}
	if v >= n {
		if n == 0 {
			return 0
		}
		return n - 1
	}
	return v
}

func (a *App) handleImportKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "q", "ctrl+c":
		return a, tea.Quit
	}
	switch m.Type {
	case tea.KeyEsc:
		a.state = viewDashboard
		a.status = ""
	case tea.KeyEnter:
		path := strings.TrimSpace(a.importPath)
		if path == "" {
			a.status = "enter a CSV path"
			return a, nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			a.status = "error: " + err.Error()
			return a, nil
		}
		stored, err := a.app.Import(a.ctx, filepath.Base(path), string(data))
		if err != nil {
			a.status = "error: " + err.Error()
			return a, nil
		}
		a.status = fmt.Sprintf("imported %s", stored)
		a.state = viewTransactions
		a.refresh()
	case tea.KeyBackspace, tea.KeyCtrlH, tea.KeyDelete:
		if len(a.importPath) > 0 {
			a.importPath = a.importPath[:len(a.importPath)-1]
		}
	case tea.KeySpace:
		a.importPath += " "
	case tea.KeyRunes:
		a.importPath += string(m.Runes)
	}
	return a, nil
}

func (a *App) handleModalKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch a.modal {
	case modalCategoryPicker:
		switch m.String() {
		case "esc":
			a.modal = modalNone
		case "up", "k":
			a.pickerCursor = clamp(a.pickerCursor-1, len(a.categories))
		case "down", "j":
			a.pickerCursor = clamp(a.pickerCursor+1, len(a.categories))
		case "enter":
			a.modal = modalNone
			if len(a.categories) == 0 || len(a.transactions) == 0 {
				return a, nil
			}
			a.pinTransaction(a.categories[a.pickerCursor], a.transactions[a.txCursor])
			a.refresh()
		}
	case modalNewCategory, modalRenameCategory:
		switch m.Type {
		case tea.KeyEsc:
			a.modal = modalNone
			a.inputBuffer = ""
		case tea.KeyEnter:
			text := strings.TrimSpace(a.inputBuffer)
			if text == "" {
				a.status = "enter a value"
				return a, nil
			}
			mode := a.modal
			a.modal = modalNone
			a.inputBuffer = ""
			switch mode {
			case modalNewCategory:
				stored := a.app.Categories.Add(text)
				a.status = fmt.Sprintf("added %s", stored)
			case modalRenameCategory:
				if err := a.app.Categories.Rename(a.categories[a.categoryCursor], text); err != nil {
					a.status = "error: " + err.Error()
				} else {
					a.status = fmt.Sprintf("renamed to %s", text)
				}
			}
			a.saveCategories()
			a.refresh()
		case tea.KeyBackspace, tea.KeyCtrlH, tea.KeyDelete:
			if len(a.inputBuffer) > 0 {
				a.inputBuffer = a.inputBuffer[:len(a.inputBuffer)-1]
			}
		case tea.KeySpace:
			a.inputBuffer += " "
		case tea.KeyRunes:
			a.inputBuffer += string(m.Runes)
		}
	}
	return a, nil
}

// pinTransaction attaches a manual filter for the transaction to the
// category, using the next free filter id.
func (a *App) pinTransaction(categoryName string, tx model.AssignedTransaction) {
	nextID := 1
	for _, c := range a.app.Categories.All() {
		if c.Name != categoryName {
			continue
		}
		for _, f := range c.Filters {
			if f.FilterID() >= nextID {
				nextID = f.FilterID() + 1
			}
		}
	}
	err := a.app.Categories.PutFilter(categoryName, model.ManualFilter{
		ID:          nextID,
		Transaction: tx.Identity(),
	})
	if err != nil {
		a.status = "error: " + err.Error()
		return
	}
	a.saveCategories()
	a.status = fmt.Sprintf("pinned to %s", categoryName)
}

func (a *App) saveCategories() {
	if err := a.app.SaveCategories(a.ctx); err != nil {
		a.status = "error: " + err.Error()
	}
}

func (a *App) View() string {
	var body string
	switch a.state {
	case viewTransactions:
		body = a.renderTransactions()
	case viewBatches:
		body = a.renderBatches()
	case viewCategories:
		body = a.renderCategories()
	case viewImport:
		body = a.renderImport()
	default:
		body = a.renderDashboard()
	}
	if a.modal != modalNone {
		body += "\n\n" + a.renderModal()
	}
	return body
}

// styles
var titleStyle = lipgloss.NewStyle().Bold(true).Underline(true)

func (a *App) renderDashboard() string {
	now := time.Now()
	month := model.Period{Type: model.PeriodMonth, Year: now.Year(), Number: int(now.Month())}
	flow := a.app.CashFlow.Calculate(model.SearchQuery{Period: &month})

	title := titleStyle.Render("Cashfolio - " + now.Format("January 2006"))
	body := fmt.Sprintf("Income: %s%.2f  Expenses: %s%.2f",
		a.currency, float64(flow.Income)/100, a.currency, float64(flow.Expenses)/100)
	body += fmt.Sprintf("\nBatches: %d  Accounts: %d  Transactions: %d",
		len(a.batches.Batches), a.batches.TotalAccounts, a.batches.TotalTransactions)

	if len(a.categories) > 0 {
		body += "\nPer category this month:"
		for _, name := range a.categories {
			q := model.SearchQuery{CategoryName: &name, Period: &month}
			f := a.app.CashFlow.Calculate(q)
			body += fmt.Sprintf("\n- %-24s +%s%.2f  -%s%.2f",
				name, a.currency, float64(f.Income)/100, a.currency, float64(f.Expenses)/100)
		}
	}
	body += "\n[t] Transactions  [b] Batches  [g] Categories  [i] Import  [q] Quit"
	if a.status != "" {
		body += "\n" + a.status
	}
	return fmt.Sprintf("%s\n%s", title, body)
}

func (a *App) renderTransactions() string {
	title := titleStyle.Render("Transactions")
	out := title + "\n"
	for i, t := range a.transactions {
		marker := " "
		if i == a.txCursor {
			marker = "▶"
		}
		var names []string
		for _, as := range t.Assignments {
			names = append(names, as.CategoryName)
		}
		label := ""
		if len(names) > 0 {
			label = " [" + strings.Join(names, ", ") + "]"
		}
		out += fmt.Sprintf("%s %s  %-40s  %8.2f%s\n",
			marker, t.Date.Format(a.dateFormat), t.Description, float64(t.Amount)/100, label)
	}
	out += "[c] Pin to category  [d] Dashboard  [b] Batches  [g] Categories  [i] Import  [q] Quit"
	if a.status != "" {
		out += "\n" + a.status
	}
	return out
}

func (a *App) renderBatches() string {
	title := titleStyle.Render("Source Batches")
	out := title + "\n"
	if len(a.batches.Batches) == 0 {
		out += "  (no batches yet)\n"
	}
	for i, b := range a.batches.Batches {
		marker := " "
		if i == a.batchCursor {
			marker = "▶"
		}
		out += fmt.Sprintf("%s %-24s %s - %s  %d account(s), %d transaction(s)\n",
			marker, b.Name, b.StartDate.Format(a.dateFormat), b.EndDate.Format(a.dateFormat),
			b.Accounts, b.Transactions)
	}
	for _, p := range a.similar {
		out += fmt.Sprintf("  ~ %s / %s: %q vs %q (%.0f%%)\n",
			p.BatchA, p.BatchB, p.A.Description, p.B.Description, p.Similarity*100)
	}
	out += "[s] Scan near-duplicates  [del] Remove  [d] Dashboard  [t] Transactions  [q] Quit"
	if a.status != "" {
		out += "\n" + a.status
	}
	return out
}

func (a *App) renderCategories() string {
	title := titleStyle.Render("Categories")
	out := title + "\n"
	if len(a.categories) == 0 {
		out += "  (no categories yet)\n"
	}
	for i, name := range a.categories {
		marker := " "
		if i == a.categoryCursor {
			marker = "▶"
		}
		out += fmt.Sprintf("%s %s\n", marker, name)
	}
	out += "[n] New  [enter] Rename  [del] Delete  [d] Dashboard  [q] Quit"
	if a.status != "" {
		out += "\n" + a.status
	}
	return out
}

func (a *App) renderImport() string {
	title := titleStyle.Render("Import CSV")
	body := fmt.Sprintf("CSV path: %s\nType a path to a bank CSV export (ING or SNS) and press Enter to ingest.\n[enter] Import  [esc] Back  [q] Quit", a.importPath)
	if a.status != "" {
		body += "\n" + a.status
	}
	return fmt.Sprintf("%s\n%s", title, body)
}

func (a *App) renderModal() string {
	switch a.modal {
	case modalCategoryPicker:
		out := titleStyle.Render("Pin to Category") + "\n"
		if len(a.categories) == 0 {
			out += "(no categories; create one first)\n"
		}
		for i, name := range a.categories {
			marker := " "
			if i == a.pickerCursor {
				marker = "▶"
			}
			out += fmt.Sprintf("%s %s\n", marker, name)
		}
		out += "[enter] Select  [esc] Cancel"
		return out
	case modalNewCategory:
		return titleStyle.Render("New category") + fmt.Sprintf("\n%s\n[enter] Save  [esc] Cancel", a.inputBuffer)
	case modalRenameCategory:
		return titleStyle.Render("Rename category") + fmt.Sprintf("\n%s\n[enter] Save  [esc] Cancel", a.inputBuffer)
	default:
		return ""
	}
}
