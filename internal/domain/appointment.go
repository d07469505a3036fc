package domain

import "time"

// Appointment status lifecycle. Transitions are triggered by the scheduling
// service; no transition is disallowed (a confirmed appointment can still be
// rescheduled). "cancellato" is never set by any operation but is honoured
// by capacity filters.
const (
	StatusScheduled   = "programmato"
	StatusConfirmed   = "confermato"
	StatusRescheduled = "riprogrammato"
	StatusCancelled   = "cancellato"
)

// Appointment is the meter-replacement appointment record (appuntamenti table).
// Matricola is the customer-facing meter serial; it is not guaranteed unique
// across history, lookups take the most recent by scheduled date.
type Appointment struct {
	ID            string     `db:"appointment_id"` // UUID, PRIMARY KEY
	Matricola     string     `db:"matricola"`      // VARCHAR(50), NOT NULL
	CustomerName  string     `db:"nominativo"`     // VARCHAR(200), NOT NULL
	Address       string     `db:"indirizzo"`      // VARCHAR(300), NOT NULL
	Municipality  string     `db:"comune"`         // VARCHAR(100), NOT NULL
	MeterSerial   string     `db:"matricola_contatore"` // VARCHAR(50), nullable
	PDR           string     `db:"pdr"`            // VARCHAR(50), nullable, secondary point id
	Date          time.Time  `db:"data_appuntamento"`   // DATE
	TimeSlot      string     `db:"fascia_oraria"`  // VARCHAR(20), one of the fixed catalog
	Phone         string     `db:"telefono"`       // VARCHAR(30), nullable
	ActivityType  string     `db:"tipo_attivita"`  // VARCHAR(100), from the work order
	Committente   string     `db:"committente"`    // VARCHAR(100), from the work order
	Operator      OperatorRef `db:"-"`             // see operator.go
	Status        string     `db:"stato"`          // VARCHAR(30), NOT NULL, DEFAULT 'programmato'
	Notes         string     `db:"note_riprogrammazione"` // TEXT, nullable
	ConfirmedAt   *time.Time `db:"confermato_il"`  // TIMESTAMPTZ, nullable
	ModifiedAt    *time.Time `db:"modificato_il"`  // TIMESTAMPTZ, nullable
}

// WorkOrder (commessa) metadata joined read-only into appointment lookups.
type WorkOrder struct {
	ID           string `db:"commessa_id"`
	ActivityType string `db:"tipo_attivita"`
	Committente  string `db:"committente"`
}

// CallLog is the best-effort audit trail of voice-assistant actions
// (log_chiamate table). Append-only; insertion failure is swallowed.
type CallLog struct {
	ID        string    `db:"log_id"`
	Matricola string    `db:"matricola"`
	Action    string    `db:"azione"`
	Details   string    `db:"dettagli"`
	CreatedAt time.Time `db:"creato_il"`
}
