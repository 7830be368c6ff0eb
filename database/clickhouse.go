// api/database/clickhouse.go
package database

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/sirupsen/logrus"

	"brightside/api/migrations"
)

// ClickHouseClient wraps the native connection holding the append-only fact
// tables: page_views and analytics_events.
type ClickHouseClient struct {
	Conn clickhouse.Conn
	log  *logrus.Logger
}

func NewClickHouseDB(log *logrus.Logger) (*ClickHouseClient, error) {
	host := os.Getenv("CLICKHOUSE_HOST")
	nativePortStr := os.Getenv("CLICKHOUSE_NATIVE_PORT")
	dbName := os.Getenv("CLICKHOUSE_DB_NAME")
	username := os.Getenv("CLICKHOUSE_USERNAME")
	password := os.Getenv("CLICKHOUSE_PASSWORD")

	if host == "" || nativePortStr == "" || dbName == "" {
		return nil, fmt.Errorf("CLICKHOUSE_HOST, CLICKHOUSE_NATIVE_PORT, or CLICKHOUSE_DB_NAME environment variables are not set")
	}

	nativePort, err := strconv.Atoi(nativePortStr)
	if err != nil {
		return nil, fmt.Errorf("invalid CLICKHOUSE_NATIVE_PORT: %w", err)
	}

	options := &clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", host, nativePort)},
		Auth: clickhouse.Auth{
			Database: dbName,
			Username: username,
			Password: password,
		},
		ClientInfo: clickhouse.ClientInfo{
			Products: []struct {
				Name    string
				Version string
			}{{Name: "brightside-api", Version: "1.0.0"}},
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
		DialTimeout: time.Second * 5,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	conn, err := clickhouse.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse via native TCP: %w", err)
	}

	if err := conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	if err := ensureSchema(ctx, conn); err != nil {
		return nil, fmt.Errorf("failed to ensure ClickHouse schema: %w", err)
	}

	log.Info("Connected to ClickHouse and ensured fact tables")
	return &ClickHouseClient{Conn: conn, log: log}, nil
}

// ensureSchema executes the embedded DDL files in filename order. Each file
// holds exactly one statement; all of them are CREATE TABLE IF NOT EXISTS,
// so re-running at every startup is safe.
func ensureSchema(ctx context.Context, conn clickhouse.Conn) error {
	entries, err := fs.ReadDir(migrations.FS, "clickhouse")
	if err != nil {
		return fmt.Errorf("failed to read embedded DDL: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		ddl, err := fs.ReadFile(migrations.FS, "clickhouse/"+entry.Name())
		if err != nil {
			return fmt.Errorf("failed to read DDL %s: %w", entry.Name(), err)
		}
		if err := conn.Exec(ctx, string(ddl)); err != nil {
			return fmt.Errorf("failed to execute DDL %s: %w", entry.Name(), err)
		}
	}
	return nil
}

func (c *ClickHouseClient) Close() {
	if c.Conn != nil {
		c.Conn.Close()
		c.log.Info("ClickHouse connection closed")
	}
}
