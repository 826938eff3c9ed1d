package google

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	gsheet "google.golang.org/api/sheets/v4"
	"gopkg.in/yaml.v3"
)

// SecretsKey is the entry of the secrets file holding the service account.
const SecretsKey = "gcp_service_account"

// Scopes requested for the service account.
var Scopes = []string{gsheet.SpreadsheetsScope, drive.DriveScope}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CredentialSource lists the places a service-account key may come from, in
// the order they are tried. Empty fields are skipped.
type CredentialSource struct {
	// File is a service-account JSON key file. A UTF-8 byte order mark is tolerated.
	File string
	// SecretsFile is a YAML document whose gcp_service_account entry holds
	// the key fields.
	SecretsFile string
	// JSON is an inline service-account key.
	JSON string
}

// Credentials returns the first usable credentials. When no source yields
// one, the error lists why each configured source was rejected.
func (s CredentialSource) Credentials(ctx context.Context) (*google.Credentials, error) {
	var errs []error

	if s.File != "" {
		data, err := os.ReadFile(s.File)
		switch {
		case errors.Is(err, os.ErrNotExist):
			slog.DebugContext(ctx, "credentials file not present", "path", s.File)
		case err != nil:
			errs = append(errs, fmt.Errorf("read %s: %w", s.File, err))
		default:
			creds, err := google.CredentialsFromJSON(ctx, bytes.TrimPrefix(data, utf8BOM), Scopes...)
			if err == nil {
				slog.InfoContext(ctx, "using credentials file", "path", s.File)
				return creds, nil
			}
			errs = append(errs, fmt.Errorf("parse %s: %w", s.File, err))
		}
	}

	if s.SecretsFile != "" {
		data, err := secretsKey(s.SecretsFile)
		switch {
		case errors.Is(err, os.ErrNotExist):
			slog.DebugContext(ctx, "secrets file not present", "path", s.SecretsFile)
		case err != nil:
			errs = append(errs, err)
		default:
			creds, err := google.CredentialsFromJSON(ctx, data, Scopes...)
			if err == nil {
				slog.InfoContext(ctx, "using credentials from secrets file", "path", s.SecretsFile)
				return creds, nil
			}
			errs = append(errs, fmt.Errorf("parse %s %s: %w", s.SecretsFile, SecretsKey, err))
		}
	}

	if js := strings.TrimSpace(s.JSON); js != "" {
		creds, err := google.CredentialsFromJSON(ctx, []byte(js), Scopes...)
		if err == nil {
			slog.InfoContext(ctx, "using inline service account credentials")
			return creds, nil
		}
		errs = append(errs, fmt.Errorf("parse inline credentials: %w", err))
	}

	if len(errs) == 0 {
		return nil, errors.New("no credential source available")
	}
	return nil, errors.Join(errs...)
}

// secretsKey extracts the service account entry of a YAML secrets file and
// re-encodes it as a JSON key.
func secretsKey(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	// Other secrets share the file, so only our entry is decoded.
	var doc map[string]yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	node, ok := doc[SecretsKey]
	if !ok {
		return nil, fmt.Errorf("%s: missing %s entry", path, SecretsKey)
	}
	var entry map[string]any
	if err := node.Decode(&entry); err != nil || entry == nil {
		return nil, fmt.Errorf("%s: %s must be a mapping", path, SecretsKey)
	}
	for _, field := range []string{"client_email", "private_key"} {
		if v, _ := entry[field].(string); strings.TrimSpace(v) == "" {
			return nil, fmt.Errorf("%s: %s.%s is required", path, SecretsKey, field)
		}
	}
	if _, ok := entry["type"]; !ok {
		entry["type"] = "service_account"
	}
	return json.Marshal(entry)
}
