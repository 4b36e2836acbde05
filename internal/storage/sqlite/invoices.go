package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/clubportal/internal/billing"
	"github.com/mmynk/clubportal/internal/models"
)

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const invoiceColumns = `i.id, i.invoice_no, i.user_id, i.month, i.total, i.paid_total, i.status,
	i.due_date, i.issued_at, i.document_url, i.proof_url, i.created_at`

// CreateInvoice persists a new invoice with its non-empty slots.
func (s *SQLiteStore) CreateInvoice(ctx context.Context, inv *models.Invoice) error {
	if inv.ID == "" {
		inv.ID = uuid.New().String()
	}
	if inv.CreatedAt == 0 {
		inv.CreatedAt = time.Now().Unix()
	}
	if inv.InvoiceNo == "" {
		inv.InvoiceNo = generateInvoiceNo(inv)
	}
	if inv.Total.IsZero() {
		inv.Total = billing.ItemsTotal(inv.Items)
	}
	inv.Status = string(billing.DeriveStatus(inv.Total, inv.PaidTotal))

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO invoices (id, invoice_no, user_id, month, total, paid_total, status,
				due_date, issued_at, document_url, proof_url, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			inv.ID, inv.InvoiceNo, inv.UserID, inv.Month, inv.Total, inv.PaidTotal, inv.Status,
			inv.DueDate, inv.IssuedAt, inv.DocumentURL, inv.ProofURL, inv.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert invoice: %w", err)
		}

		for slot, item := range inv.Items {
			if item.IsEmpty() {
				continue
			}
			_, err = tx.ExecContext(ctx,
				"INSERT INTO invoice_items (invoice_id, slot, description, amount) VALUES (?, ?, ?, ?)",
				inv.ID, slot, item.Description, item.Amount,
			)
			if err != nil {
				return fmt.Errorf("failed to insert invoice item: %w", err)
			}
		}
		return nil
	})
}

// GetInvoice retrieves an invoice by ID, including its slots.
func (s *SQLiteStore) GetInvoice(ctx context.Context, id string) (*models.Invoice, error) {
	return getInvoice(ctx, s.db, id)
}

func getInvoice(ctx context.Context, q queryer, id string) (*models.Invoice, error) {
	row := q.QueryRowContext(ctx, "SELECT "+invoiceColumns+" FROM invoices i WHERE i.id = ?", id)

	inv := &models.Invoice{}
	err := scanInvoice(row, inv)
	if isNoRows(err) {
		return nil, notFound("invoice", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}

	items, err := loadItems(ctx, q, []string{id})
	if err != nil {
		return nil, err
	}
	inv.Items = items[id]
	return inv, nil
}

// ListInvoiceRows returns every invoice with its owner's name and the name of
// the owner's parent, newest first.
func (s *SQLiteStore) ListInvoiceRows(ctx context.Context) ([]billing.Row, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+invoiceColumns+`,
			COALESCE(u.name, ''), COALESCE(u.parent_id, ''), COALESCE(p.name, '')
		FROM invoices i
		LEFT JOIN users u ON u.id = i.user_id
		LEFT JOIN users p ON p.id = u.parent_id
		ORDER BY i.created_at DESC, i.invoice_no DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}

	var out []billing.Row
	for rows.Next() {
		var r billing.Row
		if err := scanInvoice(rows, &r.Invoice, &r.OwnerName, &r.ParentID, &r.ParentName); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan invoice: %w", err)
		}
		out = append(out, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invoices: %w", err)
	}

	ids := make([]string, len(out))
	for i := range out {
		ids[i] = out[i].Invoice.ID
	}
	items, err := loadItems(ctx, s.db, ids)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Invoice.Items = items[out[i].Invoice.ID]
	}
	return out, nil
}

// RevertLineItem clears one slot and updates total and status.
func (s *SQLiteStore) RevertLineItem(ctx context.Context, invoiceID string, slot int) (*models.Invoice, error) {
	if err := billing.CheckSlot(slot); err != nil {
		return nil, err
	}

	var inv *models.Invoice
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		inv, err = getInvoice(ctx, tx, invoiceID)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx,
			"DELETE FROM invoice_items WHERE invoice_id = ? AND slot = ?", invoiceID, slot,
		); err != nil {
			return fmt.Errorf("failed to clear invoice item: %w", err)
		}

		// The stored total may carry a discount the slots do not show, so
		// only the reverted amount is taken off. It never goes below zero.
		removed := inv.Items[slot].Amount
		inv.Items[slot] = models.LineItem{Amount: decimal.Zero}
		inv.Total = decimal.Max(inv.Total.Sub(removed), decimal.Zero)
		inv.Status = string(billing.DeriveStatus(inv.Total, inv.PaidTotal))

		if _, err := tx.ExecContext(ctx,
			"UPDATE invoices SET total = ?, status = ? WHERE id = ?",
			inv.Total, inv.Status, invoiceID,
		); err != nil {
			return fmt.Errorf("failed to update invoice total: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// loadItems returns the slots of each invoice in ids.
func loadItems(ctx context.Context, q queryer, ids []string) (map[string][models.MaxLineItems]models.LineItem, error) {
	out := make(map[string][models.MaxLineItems]models.LineItem, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := q.QueryContext(ctx,
		"SELECT invoice_id, slot, description, amount FROM invoice_items WHERE invoice_id IN (?"+
			repeatPlaceholder(len(ids)-1)+") ORDER BY invoice_id, slot",
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			invoiceID string
			slot      int
			item      models.LineItem
		)
		if err := rows.Scan(&invoiceID, &slot, &item.Description, &item.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan invoice item: %w", err)
		}
		if slot < 0 || slot >= models.MaxLineItems {
			continue
		}
		items := out[invoiceID]
		items[slot] = item
		out[invoiceID] = items
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating invoice items: %w", err)
	}
	return out, nil
}

// scanInvoice scans invoiceColumns into inv, followed by any extra columns.
func scanInvoice(sc scanner, inv *models.Invoice, extra ...any) error {
	dest := []any{
		&inv.ID, &inv.InvoiceNo, &inv.UserID, &inv.Month, &inv.Total, &inv.PaidTotal, &inv.Status,
		&inv.DueDate, &inv.IssuedAt, &inv.DocumentURL, &inv.ProofURL, &inv.CreatedAt,
	}
	return sc.Scan(append(dest, extra...)...)
}

// generateInvoiceNo builds a readable number from the billing month and the ID.
func generateInvoiceNo(inv *models.Invoice) string {
	prefix := "F"
	if !inv.Month.IsZero() {
		prefix += "-" + strings.ReplaceAll(inv.Month.Key(), "-", "")
	}
	suffix := strings.ReplaceAll(inv.ID, "-", "")
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}
	return prefix + "-" + strings.ToUpper(suffix)
}
