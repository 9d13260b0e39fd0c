package postgres

import (
	"database/sql"

	"github.com/groblegark/dockhand/internal/model"
	"github.com/groblegark/dockhand/internal/store"
)

// scannable is the interface satisfied by both *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

// scanBatch scans a single row into a model.Batch.
// The row must contain columns in the order defined by batchColumns.
func scanBatch(row scannable) (*model.Batch, error) {
	var b model.Batch
	var (
		door          sql.NullString
		outboundBatch sql.NullString
		carrier       sql.NullString
		scanStarted   sql.NullTime
		scanFinished  sql.NullTime
	)

	err := row.Scan(
		&b.Number,
		&b.Customer,
		&b.Warehouse,
		&door,
		&b.Status,
		&b.QuickReceive,
		&b.Dynamic,
		&outboundBatch,
		&carrier,
		&scanStarted,
		&scanFinished,
	)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	b.Door = door.String
	b.OutboundBatch = outboundBatch.String
	b.Carrier = carrier.String
	if scanStarted.Valid {
		b.ScanStarted = &scanStarted.Time
	}
	if scanFinished.Valid {
		b.ScanFinished = &scanFinished.Time
	}
	return &b, nil
}

// scanProduct scans a single product-master row.
func scanProduct(row scannable) (*model.Product, error) {
	var p model.Product
	var (
		owner           sql.NullString
		supplierProduct sql.NullString
		description     sql.NullString
		pickCode        sql.NullString
		netWeight       sql.NullFloat64
	)

	err := row.Scan(
		&p.Code,
		&p.Customer,
		&owner,
		&supplierProduct,
		&description,
		&p.Tie,
		&p.High,
		&p.ShelfLifeDays,
		&p.DateType,
		&pickCode,
		&p.CatchWeight,
		&p.BlastFreeze,
		&p.HPP,
		&p.RotationRestrict,
		&netWeight,
	)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	p.Owner = owner.String
	p.SupplierProduct = supplierProduct.String
	p.Description = description.String
	p.PickCode = model.PickCode(pickCode.String)
	p.NetWeight = netWeight.Float64
	return &p, nil
}

// scanPallet scans a single row into a model.Pallet.
// The row must contain columns in the order defined by palletColumns.
func scanPallet(row scannable) (*model.Pallet, error) {
	var p model.Pallet
	var (
		customerPallet sql.NullString
		lot            sql.NullString
		customerLot    sql.NullString
		codeDate       sql.NullString
		bestBefore     sql.NullString
		establishment  sql.NullString
		slaughterDate  sql.NullString
		reference      sql.NullString
		temperature    sql.NullString
		consignee      sql.NullString
		platform       sql.NullString
		putAway        sql.NullString
	)

	err := row.Scan(
		&p.ID,
		&customerPallet,
		&p.BatchNumber,
		&p.ProductCode,
		&lot,
		&customerLot,
		&p.Qty,
		&p.Weight,
		&codeDate,
		&bestBefore,
		&establishment,
		&slaughterDate,
		&reference,
		&temperature,
		&consignee,
		&platform,
		&putAway,
		&p.BlastHold,
		&p.HPPHold,
		&p.ReceivedBy,
		&p.ReceivedAt,
	)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	p.CustomerPallet = customerPallet.String
	p.Lot = lot.String
	p.CustomerLot = customerLot.String
	p.CodeDate = codeDate.String
	p.BestBefore = bestBefore.String
	p.Establishment = establishment.String
	p.SlaughterDate = slaughterDate.String
	p.Reference = reference.String
	p.Temperature = temperature.String
	p.Consignee = consignee.String
	p.Platform = platform.String
	p.PutAway = putAway.String
	return &p, nil
}

// nullString converts an empty string to a NULL value.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
