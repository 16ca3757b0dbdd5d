package identity

// Medico maps to the medico table.
type Medico struct {
	ID           int64  `db:"id" json:"id"`
	DNI          string `db:"dni" json:"dni"`
	Nombre       string `db:"nombre" json:"nombre"`
	Especialidad string `db:"especialidad" json:"especialidad"`
}

// Paciente maps to the paciente table. The owning doctor is stored as
// MedicoID; Medico is resolved at read time and only its id is read on
// write.
type Paciente struct {
	ID       int64   `db:"id" json:"id"`
	Nombre   string  `db:"nombre" json:"nombre"`
	Edad     int     `db:"edad" json:"edad"`
	Cita     *string `db:"cita" json:"cita,omitempty"`
	Motivo   string  `db:"motivo" json:"motivo"`
	DNI      string  `db:"dni" json:"dni"`
	MedicoID int64   `db:"medico_id" json:"-"`
	Medico   *Medico `json:"medico"`
}

// MedicoRef returns the doctor id the client referenced, preferring the
// nested object over MedicoID.
func (p *Paciente) MedicoRef() int64 {
	if p.Medico != nil && p.Medico.ID != 0 {
		return p.Medico.ID
	}
	return p.MedicoID
}
