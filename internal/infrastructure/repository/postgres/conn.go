package postgres

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	"go.opentelemetry.io/otel/attribute"
)

const (
	binaryResultParam = "disable_prepared_binary_result"
	maxTracedQueryLen = 512
	pingTimeout       = 5 * time.Second
)

// Open connects through lib/pq with every query traced, and pings once
// before returning.
func Open(ctx context.Context, dsn string, disableBinaryResults bool) (*sqlx.DB, error) {
	db, err := otelsqlx.Open("postgres", PrepareDSN(dsn, disableBinaryResults),
		otelsql.WithAttributes(attribute.String("db.system", "postgresql")),
		otelsql.WithDBName(DatabaseName(dsn)),
		otelsql.WithQueryFormatter(compactQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// PrepareDSN adds disable_prepared_binary_result=yes to URL-style DSNs when
// asked, for poolers that cannot relay binary results. An explicit value in
// the DSN wins.
func PrepareDSN(dsn string, disableBinaryResults bool) string {
	if !disableBinaryResults {
		return dsn
	}
	u, err := url.Parse(dsn)
	if err != nil || u.Scheme == "" {
		return dsn
	}
	q := u.Query()
	if q.Has(binaryResultParam) {
		return dsn
	}
	q.Set(binaryResultParam, "yes")
	u.RawQuery = q.Encode()
	return u.String()
}

// DatabaseName reads the database from a URL or key=value DSN.
func DatabaseName(dsn string) string {
	dsn = strings.TrimSpace(dsn)
	if u, err := url.Parse(dsn); err == nil && u.Scheme != "" {
		return strings.Trim(u.Path, "/ ")
	}
	for _, kv := range strings.Fields(dsn) {
		if name, ok := strings.CutPrefix(kv, "dbname="); ok {
			return strings.Trim(name, `"'`)
		}
	}
	return ""
}

// compactQuery folds whitespace and caps the statement recorded on spans.
func compactQuery(query string) string {
	query = strings.Join(strings.Fields(query), " ")
	if len(query) > maxTracedQueryLen {
		return query[:maxTracedQueryLen] + "..."
	}
	return query
}
