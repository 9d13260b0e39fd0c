package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/groblegark/dockhand/internal/model"
	"github.com/groblegark/dockhand/internal/store"
)

// batchColumns is the column list used for SELECT statements on batches.
const batchColumns = `number, customer, warehouse, door, status, quick_receive,
	dynamic, outbound_batch, carrier, scan_started, scan_finished`

// palletColumns is the column list used for SELECT statements on pallets.
const palletColumns = `id, customer_pallet, batch_number, product_code, lot,
	customer_lot, qty, weight, code_date, best_before, establishment,
	slaughter_date, reference, temperature, consignee, platform, put_away,
	blast_hold, hpp_hold, received_by, received_at`

// executor is the interface satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func queryGetBatch(ctx context.Context, db executor, number string) (*model.Batch, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+batchColumns+` FROM batches WHERE number = $1`, number)
	return scanBatch(row)
}

func queryUpdateBatchStatus(ctx context.Context, db executor, number string, status model.BatchStatus) error {
	res, err := db.ExecContext(ctx,
		`UPDATE batches SET status = $2 WHERE number = $1`, number, string(status))
	if err != nil {
		return err
	}
	return requireRow(res)
}

func queryUpdateLoadFinish(ctx context.Context, db executor, number string, finished time.Time, scanStatus string) error {
	res, err := db.ExecContext(ctx, `
		UPDATE batches SET scan_finished = $2, scan_status = $3, status = $4
		WHERE number = $1`,
		number, finished, scanStatus, string(model.BatchClosed))
	if err != nil {
		return err
	}
	return requireRow(res)
}

func queryGetProduct(ctx context.Context, db executor, code, customer string) (*model.Product, error) {
	row := db.QueryRowContext(ctx, `
		SELECT code, customer, owner, supplier_product, description, tie, high,
			shelf_life_days, date_type, pick_code, catch_weight, blast_freeze,
			hpp, rotation_restrict, net_weight
		FROM products WHERE code = $1 AND customer = $2`, code, customer)
	return scanProduct(row)
}

func queryGetScanProfile(ctx context.Context, db executor, customer string) (*model.ScanProfile, error) {
	row := db.QueryRowContext(ctx, `
		SELECT customer, require_lot, require_customer_lot, require_establishment,
			require_reference, require_temperature, best_before_type,
			consignee_cross_dock, use_customer_pallet
		FROM scan_profiles WHERE customer = $1`, customer)

	var p model.ScanProfile
	var bbt sql.NullString
	err := row.Scan(
		&p.Customer,
		&p.RequireLot,
		&p.RequireCustomerLot,
		&p.RequireEstablishment,
		&p.RequireReference,
		&p.RequireTemperature,
		&bbt,
		&p.ConsigneeCrossDock,
		&p.UseCustomerPallet,
	)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	p.BestBeforeType = model.BestBeforeType(bbt.String)
	return &p, nil
}

func queryGetASN(ctx context.Context, db executor, batchNumber, productCode string) (*model.ASN, error) {
	row := db.QueryRowContext(ctx, `
		SELECT batch_number, product_code, lot, code_date, qty
		FROM asns WHERE batch_number = $1 AND product_code = $2`,
		batchNumber, productCode)

	var a model.ASN
	var lot, codeDate sql.NullString
	var qty sql.NullInt64
	err := row.Scan(&a.BatchNumber, &a.ProductCode, &lot, &codeDate, &qty)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	a.Lot = lot.String
	a.CodeDate = codeDate.String
	a.Qty = int(qty.Int64)
	return &a, nil
}

func queryCreatePallet(ctx context.Context, db executor, p *model.Pallet) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO pallets (
			id, customer_pallet, batch_number, product_code, lot, customer_lot,
			qty, weight, code_date, best_before, establishment, slaughter_date,
			reference, temperature, consignee, platform, put_away,
			blast_hold, hpp_hold, received_by, received_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11, $12,
			$13, $14, $15, $16, $17,
			$18, $19, $20, $21
		)`,
		p.ID,
		nullString(p.CustomerPallet),
		p.BatchNumber,
		p.ProductCode,
		nullString(p.Lot),
		nullString(p.CustomerLot),
		p.Qty,
		p.Weight,
		nullString(p.CodeDate),
		nullString(p.BestBefore),
		nullString(p.Establishment),
		nullString(p.SlaughterDate),
		nullString(p.Reference),
		nullString(p.Temperature),
		nullString(p.Consignee),
		nullString(p.Platform),
		nullString(p.PutAway),
		p.BlastHold,
		p.HPPHold,
		p.ReceivedBy,
		p.ReceivedAt,
	)
	return err
}

func querySetPalletPlatform(ctx context.Context, db executor, id, platform string) error {
	res, err := db.ExecContext(ctx,
		`UPDATE pallets SET platform = $2 WHERE id = $1`, id, platform)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func querySetPalletPutAway(ctx context.Context, db executor, id, location string) error {
	res, err := db.ExecContext(ctx,
		`UPDATE pallets SET put_away = $2 WHERE id = $1`, id, location)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func queryDeletePallet(ctx context.Context, db executor, id string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM pallets WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func queryListPallets(ctx context.Context, db executor, batchNumber string) ([]*model.Pallet, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+palletColumns+` FROM pallets WHERE batch_number = $1 ORDER BY received_at`,
		batchNumber)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pallets []*model.Pallet
	for rows.Next() {
		p, err := scanPallet(rows)
		if err != nil {
			return nil, err
		}
		pallets = append(pallets, p)
	}
	return pallets, rows.Err()
}

func queryUpsertLot(ctx context.Context, db executor, lot *model.Lot) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO lots (number, batch_number, product_code, qty, weight, code_date, best_before)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (number, batch_number, product_code)
		DO UPDATE SET qty = lots.qty + $4, weight = lots.weight + $5`,
		lot.Number,
		lot.BatchNumber,
		lot.ProductCode,
		lot.Qty,
		lot.Weight,
		nullString(lot.CodeDate),
		nullString(lot.BestBefore),
	)
	return err
}

func queryUpdateLotTotals(ctx context.Context, db executor, lot *model.Lot) error {
	_, err := db.ExecContext(ctx, `
		UPDATE lots SET qty = $4, weight = $5
		WHERE number = $1 AND batch_number = $2 AND product_code = $3`,
		lot.Number, lot.BatchNumber, lot.ProductCode, lot.Qty, lot.Weight)
	return err
}

func queryDeleteEmptyLots(ctx context.Context, db executor, batchNumber string) (int, error) {
	res, err := db.ExecContext(ctx,
		`DELETE FROM lots WHERE batch_number = $1 AND qty <= 0`, batchNumber)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func queryAggregateLotTotals(ctx context.Context, db executor, batchNumber string) ([]*model.Lot, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT lot, batch_number, product_code,
			COALESCE(SUM(qty), 0), COALESCE(SUM(weight), 0)
		FROM pallets
		WHERE batch_number = $1 AND lot IS NOT NULL
		GROUP BY lot, batch_number, product_code`,
		batchNumber)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lots []*model.Lot
	for rows.Next() {
		var l model.Lot
		if err := rows.Scan(&l.Number, &l.BatchNumber, &l.ProductCode, &l.Qty, &l.Weight); err != nil {
			return nil, err
		}
		lots = append(lots, &l)
	}
	return lots, rows.Err()
}

func queryLatestReceivedDate(ctx context.Context, db executor, productCode, customer, owner, supplierProduct string) (time.Time, error) {
	row := db.QueryRowContext(ctx, `
		SELECT MAX(code_date_at) FROM receipt_dates
		WHERE product_code = $1 AND customer = $2 AND owner = $3 AND supplier_product = $4`,
		productCode, customer, owner, supplierProduct)

	var latest sql.NullTime
	if err := row.Scan(&latest); err != nil {
		return time.Time{}, err
	}
	if !latest.Valid {
		return time.Time{}, nil
	}
	return latest.Time, nil
}

func queryRecordReceivedDate(ctx context.Context, db executor, p *model.Product, date time.Time) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO receipt_dates (product_code, customer, owner, supplier_product, code_date_at)
		VALUES ($1, $2, $3, $4, $5)`,
		p.Code, p.Customer, p.Owner, p.SupplierProduct, date)
	return err
}

func queryRecordProblem(ctx context.Context, db executor, p *model.Problem) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO problems (id, operator, batch_number, pallet_id, product_code,
			code, explanation, resolved, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		p.ID,
		p.Operator,
		p.BatchNumber,
		nullString(p.PalletID),
		nullString(p.ProductCode),
		string(p.Code),
		p.Explanation,
		p.Resolved,
		p.CreatedAt,
	)
	return err
}

func queryCreateHold(ctx context.Context, db executor, h *model.Hold) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO holds (id, batch_number, lot, product_code, kind, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		h.ID, h.BatchNumber, nullString(h.Lot), h.ProductCode,
		string(h.Kind), string(h.Status), h.CreatedAt)
	return err
}

func queryResolveHolds(ctx context.Context, db executor, batchNumber string) (int, error) {
	res, err := db.ExecContext(ctx, `
		UPDATE holds SET status = $2, released_at = $3
		WHERE batch_number = $1 AND status = $4`,
		batchNumber, string(model.HoldReleased), time.Now().UTC(), string(model.HoldHeld))
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func queryBookCrossDock(ctx context.Context, db executor, p *model.Pallet, outboundBatch, glCode string, proratedWeight float64) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO crossdock_bookings (pallet_id, outbound_batch, gl_code, weight, booked_at)
		VALUES ($1, $2, $3, $4, $5)`,
		p.ID, outboundBatch, glCode, proratedWeight, time.Now().UTC())
	return err
}

func queryOpenShipmentConfirmation(ctx context.Context, db executor, batchNumber string) (*model.ShipmentConfirmation, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, batch_number, open FROM shipment_confirmations
		WHERE batch_number = $1 AND open`, batchNumber)

	var c model.ShipmentConfirmation
	err := row.Scan(&c.ID, &c.BatchNumber, &c.Open)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func queryAutoReceive(ctx context.Context, db executor, confirmationID string) error {
	res, err := db.ExecContext(ctx, `
		UPDATE shipment_confirmations SET open = FALSE, received_at = $2
		WHERE id = $1 AND open`,
		confirmationID, time.Now().UTC())
	if err != nil {
		return err
	}
	// Already-received confirmations are fine; auto-receive is idempotent.
	_, err = res.RowsAffected()
	return err
}

// requireRow converts a zero-rows-affected result into ErrNotFound.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
