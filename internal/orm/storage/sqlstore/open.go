package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
)

// ConnectionConfig describes a connection to open
type ConnectionConfig struct {
	Driver string
	URL    string
	Schema string
}

// Open opens and pings every configured connection and activates def. On
// failure the connections opened so far are closed.
func Open(ctx context.Context, conns map[string]ConnectionConfig, def string, opts ...Option) (*Store, error) {
	s := New(opts...)

	names := make([]string, 0, len(conns))
	for name := range conns {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		cfg := conns[name]
		dialect, err := DialectFor(cfg.Driver)
		if err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("connection %s: %w", name, err)
		}
		db, err := sql.Open(cfg.Driver, cfg.URL)
		if err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("connection %s: %w", name, err)
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			_ = s.Close()
			return nil, fmt.Errorf("connection %s: ping: %w", name, err)
		}
		s.Add(&Connection{Name: name, DB: db, Dialect: dialect, Schema: cfg.Schema})
	}

	if def != "" {
		if err := s.UseConnection(def); err != nil {
			_ = s.Close()
			return nil, err
		}
	}
	return s, nil
}
