package backend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"jizhang/internal/amqp"
	"jizhang/internal/core"
	"jizhang/internal/ledger"
	applog "jizhang/internal/log"
	"jizhang/internal/sheets"
	gsheet "jizhang/internal/sheets/google"
	"jizhang/internal/sheets/memory"
	"jizhang/internal/storage"
)

const memorySpreadsheetID = "memory"

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *applog.Logger
	now    func() time.Time
}

// NewFactory creates a new backend factory
func NewFactory(logger *applog.Logger) *DefaultFactory {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &DefaultFactory{
		logger: logger.WithComponent(applog.ComponentBackend),
		now:    time.Now,
	}
}

// CreateBackend opens the spreadsheet on the selected store, makes sure the
// ledger tables exist and returns a Book bound to them.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*Result, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var cleanups []func() error
	cleanup := func() error {
		var errs []error
		for i := len(cleanups) - 1; i >= 0; i-- {
			errs = append(errs, cleanups[i]())
		}
		return errors.Join(errs...)
	}

	client, closeStore, err := f.createClient(ctx, config)
	if err != nil {
		return nil, err
	}
	if closeStore != nil {
		cleanups = append(cleanups, closeStore)
	}

	var notifier ledger.Notifier
	if c := f.createNotifier(config); c != nil {
		cleanups = append(cleanups, c.Close)
		notifier = c
	}

	book, ss, err := f.openBook(ctx, client, notifier, config)
	if err != nil {
		_ = cleanup()
		return nil, err
	}

	f.logger.Info("Backend ready",
		applog.FieldBackend, config.Type.String(),
		applog.FieldSpreadsheet, ss.Title(),
		"stock_enabled", book.StockEnabled(),
		"reference_list", book.HasReferenceList())

	return &Result{
		Book:        book,
		Spreadsheet: ss,
		Cleanup:     cleanup,
	}, nil
}

func (f *DefaultFactory) createClient(ctx context.Context, config Config) (sheets.Client, func() error, error) {
	switch config.Type {
	case SQLiteBackend:
		store, err := storage.Open(config.SQLiteDBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize SQLite store: %w", err)
		}
		id := config.SpreadsheetID
		if id == "" {
			id = config.SpreadsheetName
		}
		if err := store.EnsureSpreadsheet(ctx, id, config.SpreadsheetName); err != nil {
			store.Close()
			return nil, nil, err
		}
		f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
		return store, store.Close, nil

	case SheetsBackend:
		cli, err := gsheet.Connect(ctx, config.Credentials)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
		}
		f.logger.Info("Initialized Google Sheets backend")
		return cli, nil, nil

	case MemoryBackend:
		store := memory.New()
		id := config.SpreadsheetID
		if id == "" {
			id = memorySpreadsheetID
		}
		store.Create(id, config.SpreadsheetName)
		f.logger.Info("Initialized memory backend")
		return store, nil, nil
	}
	return nil, nil, fmt.Errorf("unsupported backend type: %s", config.Type)
}

func (f *DefaultFactory) openBook(ctx context.Context, client sheets.Client, notifier ledger.Notifier, config Config) (*ledger.Book, sheets.Spreadsheet, error) {
	ss, err := sheets.Open(ctx, client, config.SpreadsheetID, config.SpreadsheetName)
	if err != nil {
		return nil, nil, err
	}

	bc := ledger.BookConfig{Notifier: notifier, Now: f.now, Logger: f.logger}

	bc.Data, err = sheets.EnsureTable(ctx, ss, core.TableExpenses, core.ExpenseHeader)
	if err != nil {
		return nil, nil, fmt.Errorf("prepare %s table: %w", core.TableExpenses, err)
	}
	if config.StockEnabled {
		bc.Stock, err = sheets.EnsureTable(ctx, ss, core.TableStock, core.StockHeader)
		if err != nil {
			return nil, nil, fmt.Errorf("prepare %s table: %w", core.TableStock, err)
		}
	}

	// The reference list is maintained by hand and never created here.
	list, ok, err := ss.Table(ctx, core.TableReference)
	if err != nil {
		return nil, nil, fmt.Errorf("look up %s table: %w", core.TableReference, err)
	}
	if ok {
		bc.List = list
	}

	book, err := ledger.NewBook(bc)
	if err != nil {
		return nil, nil, err
	}
	return book, ss, nil
}

// createNotifier connects to the broker when configured. A broker that
// cannot be reached leaves the book without notifications.
func (f *DefaultFactory) createNotifier(config Config) *amqp.Client {
	if config.AMQPURL == "" {
		return nil
	}
	client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
	if err != nil {
		f.logger.Warn("Failed to initialize AMQP client, continuing without notifications", applog.FieldError, err)
		return nil
	}
	f.logger.Info("Initialized AMQP client",
		"exchange", config.AMQPExchange,
		"queue", config.AMQPQueue)
	return client
}
