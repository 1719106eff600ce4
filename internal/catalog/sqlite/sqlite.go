// Package sqlite persists the operator catalog in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"flowcanvas/internal/catalog"
	"flowcanvas/internal/domain"
)

// Store keeps operator schemas in SQLite
type Store struct {
	db *sql.DB
}

// New opens (or creates) the database at dbPath and migrates it
func New(dbPath string) (*Store, error) {
	dsn := dbPath
	if dbPath != ":memory:" {
		dsn = "file:" + dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// a single connection keeps :memory: databases alive across calls
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS operator_schemas (
		operator_type TEXT PRIMARY KEY,
		user_friendly_name TEXT NOT NULL,
		group_name TEXT,
		description TEXT,
		num_input_ports INTEGER NOT NULL DEFAULT 0,
		num_output_ports INTEGER NOT NULL DEFAULT 0,
		position INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_operator_schemas_position ON operator_schemas(position);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// ListSchemas returns every stored schema in palette order
func (s *Store) ListSchemas(ctx context.Context) ([]catalog.OperatorSchema, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+schemaColumns+`
		FROM operator_schemas
		ORDER BY position, operator_type
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query operator schemas: %w", err)
	}
	defer rows.Close()

	var schemas []catalog.OperatorSchema
	for rows.Next() {
		sc, err := scanSchema(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan operator schema: %w", err)
		}
		schemas = append(schemas, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating operator schemas: %w", err)
	}
	return schemas, nil
}

// GetSchema returns one schema
func (s *Store) GetSchema(ctx context.Context, operatorType string) (catalog.OperatorSchema, error) {
	sc, err := scanSchema(s.db.QueryRowContext(ctx,
		`SELECT `+schemaColumns+` FROM operator_schemas WHERE operator_type = ?`, operatorType))
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.OperatorSchema{}, fmt.Errorf("operator schema %s: %w", operatorType, domain.ErrNotFound)
	}
	if err != nil {
		return catalog.OperatorSchema{}, fmt.Errorf("failed to get operator schema: %w", err)
	}
	return sc, nil
}

// UpsertSchema inserts or replaces a schema. New types go to the end of the palette.
func (s *Store) UpsertSchema(ctx context.Context, sc catalog.OperatorSchema) error {
	if err := sc.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO operator_schemas (operator_type, user_friendly_name, group_name, description,
			num_input_ports, num_output_ports, position)
		VALUES (?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(position), 0) + 1 FROM operator_schemas))
		ON CONFLICT(operator_type) DO UPDATE SET
			user_friendly_name = excluded.user_friendly_name,
			group_name = excluded.group_name,
			description = excluded.description,
			num_input_ports = excluded.num_input_ports,
			num_output_ports = excluded.num_output_ports,
			updated_at = CURRENT_TIMESTAMP
	`, sc.OperatorType, sc.UserFriendlyName, stringToNull(sc.OperatorGroupName), stringToNull(sc.Description),
		sc.NumInputPorts, sc.NumOutputPorts)
	if err != nil {
		return fmt.Errorf("failed to upsert operator schema: %w", err)
	}
	return nil
}

// ImportSchemas upserts a batch of schemas in one transaction
func (s *Store) ImportSchemas(ctx context.Context, schemas []catalog.OperatorSchema) error {
	for _, sc := range schemas {
		if err := sc.Validate(); err != nil {
			return err
		}
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO operator_schemas (operator_type, user_friendly_name, group_name, description,
			num_input_ports, num_output_ports, position)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(operator_type) DO UPDATE SET
			user_friendly_name = excluded.user_friendly_name,
			group_name = excluded.group_name,
			description = excluded.description,
			num_input_ports = excluded.num_input_ports,
			num_output_ports = excluded.num_output_ports,
			position = excluded.position,
			updated_at = CURRENT_TIMESTAMP
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare import: %w", err)
	}
	defer stmt.Close()

	for i, sc := range schemas {
		if _, err := stmt.ExecContext(ctx, sc.OperatorType, sc.UserFriendlyName,
			stringToNull(sc.OperatorGroupName), stringToNull(sc.Description),
			sc.NumInputPorts, sc.NumOutputPorts, i+1); err != nil {
			return fmt.Errorf("failed to import %s: %w", sc.OperatorType, err)
		}
	}
	return tx.Commit()
}

// DeleteSchema removes a schema
func (s *Store) DeleteSchema(ctx context.Context, operatorType string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM operator_schemas WHERE operator_type = ?`, operatorType)
	if err != nil {
		return fmt.Errorf("failed to delete operator schema: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("operator schema %s: %w", operatorType, domain.ErrNotFound)
	}
	return nil
}

// Load replaces the catalog snapshot with the stored schemas. An empty
// database leaves the catalog untouched.
func (s *Store) Load(ctx context.Context, c *catalog.Catalog) (int, error) {
	schemas, err := s.ListSchemas(ctx)
	if err != nil {
		return 0, err
	}
	if len(schemas) == 0 {
		return 0, nil
	}
	if err := c.Replace(schemas); err != nil {
		return 0, err
	}
	return len(schemas), nil
}
