package reconcile

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/insightdelivered/payment-advice-converter/internal/models"
	"github.com/insightdelivered/payment-advice-converter/internal/reference"
)

// Required reference-table columns.
const (
	LedgerInvoiceColumn = "Invoice Number"
	LedgerStateColumn   = "Ship To (State)"
	StateNameColumn     = "STATE NAME"
	ImportNameColumn    = "IMPORT NAME"
)

// ErrMissingColumns is wrapped by MissingColumnsError.
var ErrMissingColumns = errors.New("reference table is missing required columns")

// Reference table roles, used as keys of MissingColumnsError.Missing.
const (
	RoleLedger   = "ledger"
	RoleStateMap = "state map"
)

// MissingColumnsError lists the absent columns per reference table, keyed by
// role. Files holds the table names for the message.
type MissingColumnsError struct {
	Missing map[string][]string
	Files   map[string]string
}

func (e *MissingColumnsError) Error() string {
	roles := make([]string, 0, len(e.Missing))
	for role := range e.Missing {
		roles = append(roles, role)
	}
	sort.Strings(roles)

	parts := make([]string, 0, len(roles))
	for _, role := range roles {
		label := role
		if file := e.Files[role]; file != "" {
			label = fmt.Sprintf("%s %s", role, file)
		}
		parts = append(parts, fmt.Sprintf("%s: %s", label, strings.Join(e.Missing[role], ", ")))
	}
	return fmt.Sprintf("%v (%s)", ErrMissingColumns, strings.Join(parts, "; "))
}

func (e *MissingColumnsError) Unwrap() error {
	return ErrMissingColumns
}

// EnrichResult carries the enriched rows and the match diagnostic.
type EnrichResult struct {
	Rows    []models.SummaryRow
	Matched int
	Total   int
}

// NormalizeInvoiceNumber uppercases, trims and drops interior whitespace.
func NormalizeInvoiceNumber(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), ""))
}

// NormalizeState uppercases, trims and collapses whitespace runs to one space.
func NormalizeState(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), " "))
}

// Enrich left-joins rows to the ledger on invoice number, then to the state
// map on state, filling State and ImportName. Duplicate keys in either table
// keep their first row. Unmatched rows keep a nil ImportName. rows is not
// modified.
func Enrich(rows []models.SummaryRow, ledger, states *reference.Table) (*EnrichResult, error) {
	mce := &MissingColumnsError{Missing: make(map[string][]string), Files: make(map[string]string)}
	if cols := ledger.Missing(LedgerInvoiceColumn, LedgerStateColumn); len(cols) > 0 {
		mce.Missing[RoleLedger] = cols
		mce.Files[RoleLedger] = tableName(ledger)
	}
	if cols := states.Missing(StateNameColumn, ImportNameColumn); len(cols) > 0 {
		mce.Missing[RoleStateMap] = cols
		mce.Files[RoleStateMap] = tableName(states)
	}
	if len(mce.Missing) > 0 {
		return nil, mce
	}

	stateByInvoice := firstWins(ledger, LedgerInvoiceColumn, LedgerStateColumn, NormalizeInvoiceNumber)
	importByState := firstWins(states, StateNameColumn, ImportNameColumn, NormalizeState)

	result := &EnrichResult{
		Rows:  make([]models.SummaryRow, len(rows)),
		Total: len(rows),
	}
	for i, row := range rows {
		row.State, row.ImportName = nil, nil

		if state, ok := stateByInvoice[NormalizeInvoiceNumber(row.InvoiceNumber)]; ok && state != "" {
			row.State = strPtr(state)
			if name, ok := importByState[NormalizeState(state)]; ok && name != "" {
				row.ImportName = strPtr(name)
				result.Matched++
			}
		}
		result.Rows[i] = row
	}
	return result, nil
}

// firstWins indexes table by the normalized key column, keeping the first
// occurrence of each key.
func firstWins(t *reference.Table, keyCol, valueCol string, normalize func(string) string) map[string]string {
	index := make(map[string]string, len(t.Rows))
	for _, r := range t.Rows {
		key := normalize(t.Value(r, keyCol))
		if key == "" {
			continue
		}
		if _, ok := index[key]; ok {
			continue
		}
		index[key] = strings.TrimSpace(t.Value(r, valueCol))
	}
	return index
}

func tableName(t *reference.Table) string {
	if t == nil {
		return ""
	}
	return t.Name
}

func strPtr(s string) *string {
	return &s
}
