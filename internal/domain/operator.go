package domain

import "strings"

// Operator is the field technician assigned to perform an appointment
// (operatori table).
type Operator struct {
	ID        string `db:"operatore_id"` // UUID, PRIMARY KEY
	FirstName string `db:"nome"`         // VARCHAR(100), NOT NULL
	LastName  string `db:"cognome"`      // VARCHAR(100), NOT NULL
	Phone     string `db:"telefono"`     // VARCHAR(30), NOT NULL
}

// DisplayName renders "First Last" as stored in denormalized appointment rows.
func (o Operator) DisplayName() string {
	return strings.TrimSpace(o.FirstName + " " + o.LastName)
}

// OperatorRefKind tags how an appointment references its operator. Historical
// rows carry either a foreign key or a denormalized display name; both forms
// stay supported behind one resolution interface.
type OperatorRefKind int

const (
	OperatorRefNone OperatorRefKind = iota
	OperatorRefByID
	OperatorRefByDisplayName
)

// OperatorRef is the tagged operator reference on an appointment.
type OperatorRef struct {
	Kind        OperatorRefKind
	ID          string
	DisplayName string
}

// OperatorByID builds a foreign-key reference.
func OperatorByID(id string) OperatorRef {
	return OperatorRef{Kind: OperatorRefByID, ID: id}
}

// OperatorByDisplayName builds a denormalized "First Last" reference.
func OperatorByDisplayName(name string) OperatorRef {
	return OperatorRef{Kind: OperatorRefByDisplayName, DisplayName: name}
}
