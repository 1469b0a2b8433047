package queries

import (
	"context"
	"strings"
	"time"

	"ordermgmt/internal/adapters/out/postgres/pgerr"
	"ordermgmt/internal/core/domain/model/kernel"
	"ordermgmt/internal/core/domain/model/order"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ListOrdersQueryHandler reads order summaries straight from PostgreSQL,
// newest first, optionally filtered by customer and status.
//
// Example:
//
//	handler := NewListOrdersQueryHandler(db, 5*time.Second)
//	query, _ := NewListOrdersQuery(&customerID, nil, 20, 0)
//
//	page, err := handler.Handle(ctx, query)
//	if err != nil {
//	    return err
//	}
type ListOrdersQueryHandler struct {
	db      *gorm.DB
	timeout time.Duration
}

// NewListOrdersQueryHandler bounds every query by timeout; zero or less means
// only the caller's context applies.
func NewListOrdersQueryHandler(db *gorm.DB, timeout time.Duration) ListOrdersQueryHandler {
	return ListOrdersQueryHandler{db: db, timeout: timeout}
}

// Handle returns one page of summaries. A query cut short by the timeout is a
// transient StorageError.
//
// Example:
//
//	query, _ := NewListOrdersQuery(nil, nil, 0, 0)
//	page, err := handler.Handle(ctx, query)
//	// len(page) <= DefaultListLimit, newest first
func (h ListOrdersQueryHandler) Handle(ctx context.Context, query ListOrdersQuery) ([]ListOrdersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := withTimeout(ctx, h.timeout)
	defer cancel()

	var (
		where []string
		args  []any
	)
	if id := query.CustomerID(); id != nil {
		where = append(where, "o.customer_id = ?")
		args = append(args, id.String())
	}
	if status := query.Status(); status != nil {
		where = append(where, "o.status = ?")
		args = append(args, status.String())
	}

	sql := `
		SELECT
			o.id,
			o.customer_id,
			o.status,
			o.payment_status,
			o.total_amount,
			o.currency,
			(SELECT count(*) FROM order_items i WHERE i.order_id = o.id) AS item_count,
			o.created_at,
			o.updated_at
		FROM orders o`
	if len(where) > 0 {
		sql += "\n\t\tWHERE " + strings.Join(where, " AND ")
	}
	sql += "\n\t\tORDER BY o.created_at DESC, o.id\n\t\tLIMIT ? OFFSET ?"
	args = append(args, query.Limit(), query.Offset())

	rows, err := h.db.WithContext(ctx).Raw(sql, args...).Rows()
	if err != nil {
		return nil, pgerr.Classify("list orders", err)
	}
	defer rows.Close()

	result := make([]ListOrdersQueryResponse, 0, query.Limit())
	for rows.Next() {
		var (
			resp                  ListOrdersQueryResponse
			id, customerID        uuid.UUID
			status, paymentStatus string
			total                 decimal.Decimal
		)
		if err = rows.Scan(
			&id,
			&customerID,
			&status,
			&paymentStatus,
			&total,
			&resp.Currency,
			&resp.ItemCount,
			&resp.CreatedAt,
			&resp.UpdatedAt,
		); err != nil {
			return nil, pgerr.Classify("list orders", err)
		}

		if resp.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
			return nil, err
		}
		if resp.CustomerID, err = kernel.UUIDFromBytes(customerID[:]); err != nil {
			return nil, err
		}
		if resp.Status, err = order.ParseStatus(status); err != nil {
			return nil, err
		}
		if resp.PaymentStatus, err = order.ParsePaymentStatus(paymentStatus); err != nil {
			return nil, err
		}
		resp.Total = total
		resp.CreatedAt = resp.CreatedAt.UTC()
		resp.UpdatedAt = resp.UpdatedAt.UTC()
		result = append(result, resp)
	}

	if err = rows.Err(); err != nil {
		return nil, pgerr.Classify("list orders", err)
	}
	return result, nil
}
