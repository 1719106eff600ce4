package sqlite

import (
	"database/sql"

	"flowcanvas/internal/catalog"
)

// schemaColumns is the column order scanSchema expects
const schemaColumns = `operator_type, user_friendly_name, group_name, description, num_input_ports, num_output_ports`

// rowScanner is satisfied by *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSchema(row rowScanner) (catalog.OperatorSchema, error) {
	var (
		sc                 catalog.OperatorSchema
		group, description sql.NullString
	)
	if err := row.Scan(&sc.OperatorType, &sc.UserFriendlyName, &group, &description,
		&sc.NumInputPorts, &sc.NumOutputPorts); err != nil {
		return catalog.OperatorSchema{}, err
	}
	sc.OperatorGroupName = group.String
	sc.Description = description.String
	return sc, nil
}

// stringToNull stores empty strings as NULL
func stringToNull(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
