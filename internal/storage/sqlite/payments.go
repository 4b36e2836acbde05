package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/clubportal/internal/billing"
	"github.com/mmynk/clubportal/internal/models"
)

const paymentColumns = "id, invoice_id, amount, method, approved, approved_by, paid_at, note, proof_url"

// CreatePayment persists a payment. An approved payment is applied to the
// invoice in the same transaction.
func (s *SQLiteStore) CreatePayment(ctx context.Context, p *models.Payment) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.PaidAt == 0 {
		p.PaidAt = time.Now().Unix()
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		// The invoice must exist before anything is written.
		if _, err := getInvoice(ctx, tx, p.InvoiceID); err != nil {
			return err
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO payments (`+paymentColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.InvoiceID, p.Amount, p.Method, p.Approved, p.ApprovedBy, p.PaidAt, p.Note, p.ProofURL,
		)
		if err != nil {
			return fmt.Errorf("failed to insert payment: %w", err)
		}

		if p.Approved {
			if _, err := applyPayment(ctx, tx, p.InvoiceID, p.Amount); err != nil {
				return err
			}
		}
		return nil
	})
}

// ListPayments returns an invoice's payments, oldest first.
func (s *SQLiteStore) ListPayments(ctx context.Context, invoiceID string) ([]models.Payment, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+paymentColumns+" FROM payments WHERE invoice_id = ? ORDER BY paid_at, id",
		invoiceID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var payments []models.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating payments: %w", err)
	}
	return payments, nil
}

// ApprovePayment marks a payment approved and applies it to its invoice.
// An already approved payment leaves everything untouched.
func (s *SQLiteStore) ApprovePayment(ctx context.Context, paymentID, approvedBy string) (*models.Invoice, error) {
	var inv *models.Invoice
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, "SELECT "+paymentColumns+" FROM payments WHERE id = ?", paymentID)
		p, err := scanPayment(row)
		if isNoRows(err) {
			return notFound("payment", paymentID)
		}
		if err != nil {
			return fmt.Errorf("failed to get payment: %w", err)
		}

		if p.Approved {
			inv, err = getInvoice(ctx, tx, p.InvoiceID)
			return err
		}

		if _, err := tx.ExecContext(ctx,
			"UPDATE payments SET approved = 1, approved_by = ? WHERE id = ?", approvedBy, paymentID,
		); err != nil {
			return fmt.Errorf("failed to approve payment: %w", err)
		}

		inv, err = applyPayment(ctx, tx, p.InvoiceID, p.Amount)
		return err
	})
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// applyPayment adds amount to the invoice's paid total and rewrites its status.
func applyPayment(ctx context.Context, tx *sql.Tx, invoiceID string, amount decimal.Decimal) (*models.Invoice, error) {
	inv, err := getInvoice(ctx, tx, invoiceID)
	if err != nil {
		return nil, err
	}

	inv.PaidTotal = inv.PaidTotal.Add(amount)
	inv.Status = string(billing.DeriveStatus(inv.Total, inv.PaidTotal))

	if _, err := tx.ExecContext(ctx,
		"UPDATE invoices SET paid_total = ?, status = ? WHERE id = ?",
		inv.PaidTotal, inv.Status, invoiceID,
	); err != nil {
		return nil, fmt.Errorf("failed to update paid total: %w", err)
	}
	return inv, nil
}

func scanPayment(sc scanner) (*models.Payment, error) {
	p := &models.Payment{}
	err := sc.Scan(
		&p.ID,
		&p.InvoiceID,
		&p.Amount,
		&p.Method,
		&p.Approved,
		&p.ApprovedBy,
		&p.PaidAt,
		&p.Note,
		&p.ProofURL,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}
