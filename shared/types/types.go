package types

import "time"

// ConnectionProfile holds the address and credentials of one target database.
type ConnectionProfile struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"size:100;uniqueIndex;not null"`
	Kind      string    `json:"kind" gorm:"size:20;not null"`
	Host      string    `json:"host" gorm:"size:255"`
	Port      int       `json:"port"`
	Username  string    `json:"username" gorm:"size:100"`
	Password  string    `json:"-" gorm:"size:255"`
	Database  string    `json:"database" gorm:"size:255"`
	Timeout   int       `json:"timeout" gorm:"not null;default:30"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Parameter is a named expression evaluated when a query template is rendered.
type Parameter struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"size:100;not null"`
	Description string    `json:"description"`
	Expression  string    `json:"expression" gorm:"not null"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// QueryTemplate is a named SQL string with {{name}} placeholders bound to
// a set of parameters and a connection profile.
type QueryTemplate struct {
	ID           uint              `json:"id" gorm:"primaryKey"`
	Name         string            `json:"name" gorm:"size:100;uniqueIndex;not null"`
	ConnectionID uint              `json:"connection_id" gorm:"not null;index"`
	Connection   ConnectionProfile `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	SQLTemplate  string            `json:"sql_template" gorm:"not null"`
	Parameters   []Parameter       `json:"parameters" gorm:"many2many:query_template_parameters"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// ExecutionResult is the outcome of one execution attempt. Rows are only
// ever inserted.
type ExecutionResult struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	QueryTemplateID uint      `json:"query_template_id" gorm:"not null;index"`
	QueryName       string    `json:"query_name" gorm:"size:100"`
	Status          string    `json:"status" gorm:"size:20;not null;index"`
	ResultData      *string   `json:"result_data"`
	RenderedSQL     string    `json:"rendered_sql"`
	ExecutionTime   float64   `json:"execution_time"`
	ErrorMessage    string    `json:"error_message"`
	Attempt         int       `json:"attempt"`
	CreatedAt       time.Time `json:"created_at" gorm:"index"`
}

// ParameterIDs returns the ids of the parameters bound to the template.
func (q QueryTemplate) ParameterIDs() []uint {
	ids := make([]uint, 0, len(q.Parameters))
	for _, p := range q.Parameters {
		ids = append(ids, p.ID)
	}
	return ids
}
