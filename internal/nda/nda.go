// Package nda produces the plain-text employee nondisclosure agreement from form input.
package nda

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// Form is the user input for an employee NDA.
type Form struct {
	EmployerName  string   `json:"employer_name" form:"employer_name"`
	EmployeeName  string   `json:"employee_name" form:"employee_name"`
	Designation   string   `json:"designation" form:"designation"`
	EffectiveDate string   `json:"effective_date" form:"effective_date"`
	Jurisdiction  string   `json:"jurisdiction" form:"jurisdiction"`
	StateLaw      string   `json:"state_law" form:"state_law"`
	Confidential  []string `json:"confidential" form:"confidential"`
}

// ValidationError lists the form fields that are missing.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

// Normalize trims every field and drops empty confidential items.
func (f Form) Normalize() Form {
	out := Form{
		EmployerName:  strings.TrimSpace(f.EmployerName),
		EmployeeName:  strings.TrimSpace(f.EmployeeName),
		Designation:   strings.TrimSpace(f.Designation),
		EffectiveDate: strings.TrimSpace(f.EffectiveDate),
		Jurisdiction:  strings.TrimSpace(f.Jurisdiction),
		StateLaw:      strings.TrimSpace(f.StateLaw),
	}
	for _, item := range f.Confidential {
		if item = strings.TrimSpace(item); item != "" {
			out.Confidential = append(out.Confidential, item)
		}
	}
	return out
}

// Validate reports every missing required field at once.
func (f Form) Validate() error {
	var missing []string
	check := func(name, v string) {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, name)
		}
	}
	check("employer_name", f.EmployerName)
	check("employee_name", f.EmployeeName)
	check("designation", f.Designation)
	check("effective_date", f.EffectiveDate)
	check("jurisdiction", f.Jurisdiction)
	check("state_law", f.StateLaw)
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}

var agreement = template.Must(template.New("emp_nda").Funcs(template.FuncMap{
	"join": strings.Join,
}).Parse(agreementText))

// Generate renders the agreement text for f.
func Generate(f Form) (string, error) {
	f = f.Normalize()
	if err := f.Validate(); err != nil {
		return "", err
	}
	if len(f.Confidential) == 0 {
		f.Confidential = []string{"business plans", "customer lists", "pricing", "technical data"}
	}

	var buf bytes.Buffer
	if err := agreement.Execute(&buf, f); err != nil {
		return "", fmt.Errorf("render agreement: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}
