package report

import (
	"os"
	"regexp"
	"strconv"
	"time"
)

// Default mail templates
const (
	DefaultSubjectTemplate = "Informe asistencia ${month_name} ${year}"
	DefaultBodyTemplate    = "${summary}"
)

// $$, $name or ${name}
var placeholder = regexp.MustCompile(`\$(?:(\$)|([_a-zA-Z][_a-zA-Z0-9]*)|\{([_a-zA-Z][_a-zA-Z0-9]*)\})`)

// Vars are the values available to mail templates
type Vars struct {
	UserName  string
	UserEmail string
	Year      int
	Month     time.Month
	FileName  string
	Summary   string
	CSVTable  string
}

// Map returns the placeholder names and their values
func (v Vars) Map() map[string]string {
	return map[string]string{
		"user_name":  v.UserName,
		"user_email": v.UserEmail,
		"year":       strconv.Itoa(v.Year),
		"month":      strconv.Itoa(int(v.Month)),
		"month_name": MonthName(v.Month),
		"filename":   v.FileName,
		"summary":    v.Summary,
		"csv_table":  v.CSVTable,
	}
}

// Expand substitutes $name and ${name} placeholders. Unknown placeholders are
// left as written and $$ yields a literal $.
func Expand(tmpl string, vars map[string]string) string {
	return placeholder.ReplaceAllStringFunc(tmpl, func(match string) string {
		groups := placeholder.FindStringSubmatch(match)
		if groups[1] != "" {
			return "$"
		}
		name := groups[2]
		if name == "" {
			name = groups[3]
		}
		if value, ok := vars[name]; ok {
			return value
		}
		return match
	})
}

// LoadTemplate returns the content of path, or fallback when path is empty
func LoadTemplate(path, fallback string) (string, error) {
	if path == "" {
		return fallback, nil
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(content), nil
}
