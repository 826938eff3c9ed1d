package backend

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"jizhang/internal/config"
	"jizhang/internal/core"
	applog "jizhang/internal/log"
	"jizhang/internal/sheets"
	gsheet "jizhang/internal/sheets/google"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func expense() core.ExpenseRecord {
	return core.ExpenseRecord{
		Date:          core.NewDate(2024, 5, 1),
		Amount:        decimal.NewFromInt(250),
		Category:      "餐飲",
		PaymentMethod: "現金",
		User:          "Rick",
	}
}

func TestFromAppConfig(t *testing.T) {
	_, err := FromAppConfig(nil)
	assert.Error(t, err)

	app := &config.Config{
		DataBackend:           "sheets",
		GoogleSpreadsheetID:   "abc",
		GoogleSpreadsheetName: "Family_Expenses",
		GoogleCredentialsFile: "credentials.json",
		SecretsFile:           "secrets.yaml",
		StockEnabled:          true,
	}
	cfg, err := FromAppConfig(app)
	require.NoError(t, err)
	assert.Equal(t, SheetsBackend, cfg.Type)
	assert.Equal(t, gsheet.CredentialSource{File: "credentials.json", SecretsFile: "secrets.yaml"}, cfg.Credentials)
	assert.True(t, cfg.StockEnabled)

	app.DataBackend = "excel"
	_, err = FromAppConfig(app)
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"memory", Config{Type: MemoryBackend}, false},
		{"unknown", Config{Type: "excel"}, true},
		{"sqlite without path", Config{Type: SQLiteBackend}, true},
		{"sqlite", Config{Type: SQLiteBackend, SQLiteDBPath: "x.db"}, false},
		{"sheets without spreadsheet", Config{Type: SheetsBackend, Credentials: gsheet.CredentialSource{File: "c.json"}}, true},
		{"sheets without credentials", Config{Type: SheetsBackend, SpreadsheetID: "abc"}, true},
		{"sheets by name", Config{Type: SheetsBackend, SpreadsheetName: "n", Credentials: gsheet.CredentialSource{JSON: "{}"}}, false},
		{"amqp without queue", Config{Type: MemoryBackend, AMQPURL: "amqp://localhost", AMQPExchange: "x"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
	assert.Equal(t, []string{"sqlite", "sheets", "memory"}, GetBackendTypeStrings())
}

func TestCreateBackend_Memory(t *testing.T) {
	ctx := context.Background()
	f := NewFactory(applog.Discard())

	res, err := f.CreateBackend(ctx, Config{
		Type:            MemoryBackend,
		SpreadsheetID:   config.DefaultSpreadsheetID,
		SpreadsheetName: config.DefaultSpreadsheetName,
		StockEnabled:    true,
	})
	require.NoError(t, err)
	defer res.Close()

	assert.Equal(t, config.DefaultSpreadsheetName, res.Spreadsheet.Title())
	assert.True(t, res.Book.StockEnabled())
	assert.False(t, res.Book.HasReferenceList())

	for _, name := range []string{core.TableExpenses, core.TableStock} {
		tbl, ok, err := res.Spreadsheet.Table(ctx, name)
		require.NoError(t, err)
		require.True(t, ok, name)
		rows, err := tbl.Values(ctx)
		require.NoError(t, err)
		require.Len(t, rows, 1, "fresh tables only hold the header")
	}

	_, err = res.Book.AddExpense(ctx, expense())
	require.NoError(t, err)
	recent, err := res.Book.Recent(ctx, 30)
	require.NoError(t, err)
	assert.Equal(t, 1, recent.Len())
}

func TestCreateBackend_StockDisabled(t *testing.T) {
	ctx := context.Background()
	res, err := NewFactory(applog.Discard()).CreateBackend(ctx, Config{Type: MemoryBackend, SpreadsheetName: "ledger"})
	require.NoError(t, err)

	assert.False(t, res.Book.StockEnabled())
	_, ok, err := res.Spreadsheet.Table(ctx, core.TableStock)
	require.NoError(t, err)
	assert.False(t, ok, "stock table is only created when trades are enabled")
}

func TestCreateBackend_SQLitePersists(t *testing.T) {
	ctx := context.Background()
	cfg := Config{
		Type:            SQLiteBackend,
		SQLiteDBPath:    filepath.Join(t.TempDir(), "ledger.db"),
		SpreadsheetID:   "local",
		SpreadsheetName: "Family_Expenses",
	}
	f := NewFactory(applog.Discard())

	res, err := f.CreateBackend(ctx, cfg)
	require.NoError(t, err)
	_, err = res.Book.AddExpense(ctx, expense())
	require.NoError(t, err)
	require.NoError(t, res.Close())

	res, err = f.CreateBackend(ctx, cfg)
	require.NoError(t, err)
	defer res.Close()
	recent, err := res.Book.Recent(ctx, 30)
	require.NoError(t, err)
	require.Equal(t, 1, recent.Len())
	c, _ := recent.Cell(0, core.ColUser)
	assert.Equal(t, "Rick", c.Raw)
}

func TestCreateBackend_SheetsWithoutCredentials(t *testing.T) {
	cfg := Config{
		Type:          SheetsBackend,
		SpreadsheetID: "abc",
		Credentials:   gsheet.CredentialSource{File: filepath.Join(t.TempDir(), "missing.json")},
	}
	_, err := NewFactory(applog.Discard()).CreateBackend(context.Background(), cfg)
	var authErr *sheets.AuthenticationError
	assert.True(t, errors.As(err, &authErr))
}
