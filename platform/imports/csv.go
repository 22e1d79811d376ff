package imports

import (
	"encoding/csv"
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// DefaultRole is assigned to imported employees that carry no role of their own
const DefaultRole = "employee"

var emailPattern = regexp.MustCompile(`^[\w\.-]+@[\w\.-]+\.\w+$`)

// Employee is the structured shape every import row is mapped into
type Employee struct {
	Name        string `json:"name"`
	Role        string `json:"role,omitempty"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

var nameSynonyms = map[string]bool{
	"firstname":  true,
	"first_name": true,
	"f_name":     true,
	"lastname":   true,
	"last_name":  true,
	"surname":    true,
}

var emailSynonyms = map[string]bool{
	"email":         true,
	"mail":          true,
	"email_address": true,
}

/*
ParseEmployeeCSV reads CSV content with a header row and maps every data row
to an Employee using column name heuristics. Rows the heuristics cannot
place are returned raw so a model fallback can have a try
*/
func ParseEmployeeCSV(content string) ([]Employee, []map[string]string, error) {
	reader := csv.NewReader(strings.NewReader(content))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("Failed to parse CSV content: %w", err)
	}

	structured := make([]Employee, 0)
	failed := make([]map[string]string, 0)
	if len(records) < 2 {
		return structured, failed, nil
	}

	header := records[0]
	for _, record := range records[1:] {
		row := make(map[string]string, len(header))
		for i, column := range header {
			if i < len(record) {
				row[column] = record[i]
			}
		}

		if employee, ok := mapEmployeeRow(header, row); ok {
			structured = append(structured, employee)
		} else {
			failed = append(failed, row)
		}
	}
	return structured, failed, nil
}

/*
mapEmployeeRow attempts to map one CSV row to an Employee. Columns are
scanned in header order. Returns false when no name or no email could be
found
*/
func mapEmployeeRow(header []string, row map[string]string) (Employee, bool) {
	// Normalized copy of the row, skipping empty cells
	keys := make([]string, 0, len(header))
	cells := make(map[string]string, len(header))
	for _, column := range header {
		value := strings.TrimSpace(row[column])
		if value == "" {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(column))
		if _, seen := cells[key]; !seen {
			keys = append(keys, key)
		}
		cells[key] = value
	}

	// Name parts from dedicated columns, a synonym column, or a single
	// combined column
	var firstName, lastName string
	for _, key := range keys {
		value := cells[key]
		if strings.Contains(key, "first") {
			firstName = value
		} else if strings.Contains(key, "last") {
			lastName = value
		} else if nameSynonyms[key] {
			if strings.Contains(key, "f") {
				firstName = value
			}
			if strings.Contains(key, "l") || strings.Contains(key, "s") {
				lastName = value
			}
		}
	}
	if firstName == "" && lastName == "" {
		firstName = cells["name"]
	}
	name := strings.TrimSpace(firstName + " " + lastName)

	var email string
	for _, key := range keys {
		if emailSynonyms[key] || strings.Contains(key, "email") {
			email = cells[key]
			break
		}
	}

	var phone string
	for _, key := range keys {
		if strings.Contains(key, "phone") || strings.Contains(key, "mobile") {
			phone = cells[key]
			break
		}
	}

	employee := Employee{
		Name:        name,
		Email:       email,
		PhoneNumber: phone,
	}
	return employee, name != "" && email != ""
}

func isAlphabetic(word string) bool {
	for _, r := range word {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return len(word) > 0
}

/*
validateEmployee checks a mapped employee before it becomes an invite:
name and email present, email well formed, every name part alphabetic
*/
func validateEmployee(employee Employee) bool {
	if employee.Name == "" || employee.Email == "" {
		return false
	}
	if !emailPattern.MatchString(employee.Email) {
		return false
	}
	for _, part := range strings.Fields(employee.Name) {
		if !isAlphabetic(part) {
			return false
		}
	}
	return true
}
