// Package postgres implements the store.Store interface backed by PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"

	"github.com/groblegark/dockhand/internal/model"
	"github.com/groblegark/dockhand/internal/store"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresStore implements store.Store backed by a PostgreSQL database.
type PostgresStore struct {
	db *sql.DB
}

// Compile-time check that PostgresStore implements store.Store.
var _ store.Store = (*PostgresStore)(nil)

// New opens a connection to the PostgreSQL database at the given URL,
// configures the connection pool, and runs any pending migrations.
func New(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

func runMigrations(db *sql.DB) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	dbDriver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration db driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", dbDriver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}

// DB exposes the underlying handle so the session store can share it.
func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

// Close closes the underlying database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) GetBatch(ctx context.Context, number string) (*model.Batch, error) {
	return queryGetBatch(ctx, s.db, number)
}

func (s *PostgresStore) UpdateBatchStatus(ctx context.Context, number string, status model.BatchStatus) error {
	return queryUpdateBatchStatus(ctx, s.db, number, status)
}

func (s *PostgresStore) UpdateLoadFinish(ctx context.Context, number string, finished time.Time, scanStatus string) error {
	return queryUpdateLoadFinish(ctx, s.db, number, finished, scanStatus)
}

func (s *PostgresStore) GetProduct(ctx context.Context, code, customer string) (*model.Product, error) {
	return queryGetProduct(ctx, s.db, code, customer)
}

func (s *PostgresStore) GetScanProfile(ctx context.Context, customer string) (*model.ScanProfile, error) {
	return queryGetScanProfile(ctx, s.db, customer)
}

func (s *PostgresStore) GetASN(ctx context.Context, batchNumber, productCode string) (*model.ASN, error) {
	return queryGetASN(ctx, s.db, batchNumber, productCode)
}

func (s *PostgresStore) CreatePallet(ctx context.Context, p *model.Pallet) error {
	return queryCreatePallet(ctx, s.db, p)
}

func (s *PostgresStore) DeletePallet(ctx context.Context, id string) error {
	return queryDeletePallet(ctx, s.db, id)
}

func (s *PostgresStore) SetPalletPlatform(ctx context.Context, id, platform string) error {
	return querySetPalletPlatform(ctx, s.db, id, platform)
}

func (s *PostgresStore) SetPalletPutAway(ctx context.Context, id, location string) error {
	return querySetPalletPutAway(ctx, s.db, id, location)
}

func (s *PostgresStore) ListPallets(ctx context.Context, batchNumber string) ([]*model.Pallet, error) {
	return queryListPallets(ctx, s.db, batchNumber)
}

func (s *PostgresStore) UpsertLot(ctx context.Context, lot *model.Lot) error {
	return queryUpsertLot(ctx, s.db, lot)
}

func (s *PostgresStore) UpdateLotTotals(ctx context.Context, lot *model.Lot) error {
	return queryUpdateLotTotals(ctx, s.db, lot)
}

func (s *PostgresStore) DeleteEmptyLots(ctx context.Context, batchNumber string) (int, error) {
	return queryDeleteEmptyLots(ctx, s.db, batchNumber)
}

func (s *PostgresStore) AggregateLotTotals(ctx context.Context, batchNumber string) ([]*model.Lot, error) {
	return queryAggregateLotTotals(ctx, s.db, batchNumber)
}

func (s *PostgresStore) LatestReceivedDate(ctx context.Context, productCode, customer, owner, supplierProduct string) (time.Time, error) {
	return queryLatestReceivedDate(ctx, s.db, productCode, customer, owner, supplierProduct)
}

func (s *PostgresStore) RecordReceivedDate(ctx context.Context, p *model.Product, date time.Time) error {
	return queryRecordReceivedDate(ctx, s.db, p, date)
}

func (s *PostgresStore) RecordProblem(ctx context.Context, p *model.Problem) error {
	return queryRecordProblem(ctx, s.db, p)
}

func (s *PostgresStore) CreateHold(ctx context.Context, h *model.Hold) error {
	return queryCreateHold(ctx, s.db, h)
}

func (s *PostgresStore) ResolveHolds(ctx context.Context, batchNumber string) (int, error) {
	return queryResolveHolds(ctx, s.db, batchNumber)
}

func (s *PostgresStore) GetOutboundLoad(ctx context.Context, number string) (*model.Batch, error) {
	return queryGetBatch(ctx, s.db, number)
}

func (s *PostgresStore) BookCrossDock(ctx context.Context, p *model.Pallet, outboundBatch, glCode string, proratedWeight float64) error {
	return queryBookCrossDock(ctx, s.db, p, outboundBatch, glCode, proratedWeight)
}

func (s *PostgresStore) OpenShipmentConfirmation(ctx context.Context, batchNumber string) (*model.ShipmentConfirmation, error) {
	return queryOpenShipmentConfirmation(ctx, s.db, batchNumber)
}

func (s *PostgresStore) AutoReceive(ctx context.Context, confirmationID string) error {
	return queryAutoReceive(ctx, s.db, confirmationID)
}

// RunInTransaction begins a database transaction, creates a txStore that
// delegates to it, calls fn, and commits on success or rolls back on error.
func (s *PostgresStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	txS := &txStore{tx: tx}
	if err := fn(txS); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// txStore implements store.Store using a *sql.Tx.
type txStore struct {
	tx *sql.Tx
}

// Compile-time check that txStore implements store.Store.
var _ store.Store = (*txStore)(nil)

func (s *txStore) GetBatch(ctx context.Context, number string) (*model.Batch, error) {
	return queryGetBatch(ctx, s.tx, number)
}

func (s *txStore) UpdateBatchStatus(ctx context.Context, number string, status model.BatchStatus) error {
	return queryUpdateBatchStatus(ctx, s.tx, number, status)
}

func (s *txStore) UpdateLoadFinish(ctx context.Context, number string, finished time.Time, scanStatus string) error {
	return queryUpdateLoadFinish(ctx, s.tx, number, finished, scanStatus)
}

func (s *txStore) GetProduct(ctx context.Context, code, customer string) (*model.Product, error) {
	return queryGetProduct(ctx, s.tx, code, customer)
}

func (s *txStore) GetScanProfile(ctx context.Context, customer string) (*model.ScanProfile, error) {
	return queryGetScanProfile(ctx, s.tx, customer)
}

func (s *txStore) GetASN(ctx context.Context, batchNumber, productCode string) (*model.ASN, error) {
	return queryGetASN(ctx, s.tx, batchNumber, productCode)
}

func (s *txStore) CreatePallet(ctx context.Context, p *model.Pallet) error {
	return queryCreatePallet(ctx, s.tx, p)
}

func (s *txStore) DeletePallet(ctx context.Context, id string) error {
	return queryDeletePallet(ctx, s.tx, id)
}

func (s *txStore) SetPalletPlatform(ctx context.Context, id, platform string) error {
	return querySetPalletPlatform(ctx, s.tx, id, platform)
}

func (s *txStore) SetPalletPutAway(ctx context.Context, id, location string) error {
	return querySetPalletPutAway(ctx, s.tx, id, location)
}

func (s *txStore) ListPallets(ctx context.Context, batchNumber string) ([]*model.Pallet, error) {
	return queryListPallets(ctx, s.tx, batchNumber)
}

func (s *txStore) UpsertLot(ctx context.Context, lot *model.Lot) error {
	return queryUpsertLot(ctx, s.tx, lot)
}

func (s *txStore) UpdateLotTotals(ctx context.Context, lot *model.Lot) error {
	return queryUpdateLotTotals(ctx, s.tx, lot)
}

func (s *txStore) DeleteEmptyLots(ctx context.Context, batchNumber string) (int, error) {
	return queryDeleteEmptyLots(ctx, s.tx, batchNumber)
}

func (s *txStore) AggregateLotTotals(ctx context.Context, batchNumber string) ([]*model.Lot, error) {
	return queryAggregateLotTotals(ctx, s.tx, batchNumber)
}

func (s *txStore) LatestReceivedDate(ctx context.Context, productCode, customer, owner, supplierProduct string) (time.Time, error) {
	return queryLatestReceivedDate(ctx, s.tx, productCode, customer, owner, supplierProduct)
}

func (s *txStore) RecordReceivedDate(ctx context.Context, p *model.Product, date time.Time) error {
	return queryRecordReceivedDate(ctx, s.tx, p, date)
}

func (s *txStore) RecordProblem(ctx context.Context, p *model.Problem) error {
	return queryRecordProblem(ctx, s.tx, p)
}

func (s *txStore) CreateHold(ctx context.Context, h *model.Hold) error {
	return queryCreateHold(ctx, s.tx, h)
}

func (s *txStore) ResolveHolds(ctx context.Context, batchNumber string) (int, error) {
	return queryResolveHolds(ctx, s.tx, batchNumber)
}

func (s *txStore) GetOutboundLoad(ctx context.Context, number string) (*model.Batch, error) {
	return queryGetBatch(ctx, s.tx, number)
}

func (s *txStore) BookCrossDock(ctx context.Context, p *model.Pallet, outboundBatch, glCode string, proratedWeight float64) error {
	return queryBookCrossDock(ctx, s.tx, p, outboundBatch, glCode, proratedWeight)
}

func (s *txStore) OpenShipmentConfirmation(ctx context.Context, batchNumber string) (*model.ShipmentConfirmation, error) {
	return queryOpenShipmentConfirmation(ctx, s.tx, batchNumber)
}

func (s *txStore) AutoReceive(ctx context.Context, confirmationID string) error {
	return queryAutoReceive(ctx, s.tx, confirmationID)
}

// RunInTransaction on a txStore reuses the already-open transaction.
func (s *txStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	return fn(s)
}

func (s *txStore) Close() error {
	return nil
}
