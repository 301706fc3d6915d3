// Package seeds reads the bootstrap data file and writes it to the database.
// Rows that already exist are left untouched, so a seed can be re-run.
package seeds

import (
	"os"
	"strings"

	"github.com/WaveLink/WL-Backend/internal/utils"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"
	"github.com/pkg/errors"
)

var validate = validator.New()

type Terminal struct {
	Name      string   `yaml:"name"`
	Code      string   `yaml:"code"`
	Latitude  *float64 `yaml:"latitude"`
	Longitude *float64 `yaml:"longitude"`
}

// Route joins two terminals by code.
type Route struct {
	Name      string  `yaml:"name"`
	From      string  `yaml:"from"`
	To        string  `yaml:"to"`
	BasePrice float64 `yaml:"base_price"`
}

// Admin is a bootstrap administrator. Admins cannot register themselves.
type Admin struct {
	Email    string `yaml:"email" validate:"required,email,max=254"`
	FullName string `yaml:"full_name" validate:"required,max=120"`
	Phone    string `yaml:"phone" validate:"max=32"`
	Password string `yaml:"password" validate:"required,min=6,max=72"`
}

type File struct {
	Terminals []Terminal `yaml:"terminals"`
	Routes    []Route    `yaml:"routes"`
	Admins    []Admin    `yaml:"admins"`
}

// Load reads and validates the seed file at path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "could not read %s", path)
	}
	return Parse(data)
}

// Parse decodes a seed file. Unknown keys are an error.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.UnmarshalWithOptions(data, &f, yaml.Strict()); err != nil {
		return nil, errors.Wrap(err, "failed to parse seed file")
	}
	f.normalize()
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *File) normalize() {
	for i := range f.Terminals {
		f.Terminals[i].Name = utils.NormalizeName(f.Terminals[i].Name)
		f.Terminals[i].Code = strings.ToUpper(strings.TrimSpace(f.Terminals[i].Code))
	}
	for i := range f.Routes {
		f.Routes[i].Name = utils.NormalizeName(f.Routes[i].Name)
		f.Routes[i].From = strings.ToUpper(strings.TrimSpace(f.Routes[i].From))
		f.Routes[i].To = strings.ToUpper(strings.TrimSpace(f.Routes[i].To))
	}
	for i := range f.Admins {
		f.Admins[i].Email = utils.NormalizeEmail(f.Admins[i].Email)
		f.Admins[i].FullName = utils.NormalizeName(f.Admins[i].FullName)
	}
}

// Validate checks the file is complete and self-consistent.
func (f *File) Validate() error {
	if len(f.Terminals) == 0 && len(f.Routes) == 0 && len(f.Admins) == 0 {
		return errors.New("seed file has no data")
	}

	codes := make(map[string]bool, len(f.Terminals))
	for i, t := range f.Terminals {
		if t.Name == "" || t.Code == "" {
			return errors.Errorf("terminal %d: name and code are required", i+1)
		}
		if codes[t.Code] {
			return errors.Errorf("terminal %d: duplicate code %q", i+1, t.Code)
		}
		codes[t.Code] = true
		if (t.Latitude == nil) != (t.Longitude == nil) {
			return errors.Errorf("terminal %s: latitude and longitude go together", t.Code)
		}
		if t.Latitude != nil && (*t.Latitude < -90 || *t.Latitude > 90 || *t.Longitude < -180 || *t.Longitude > 180) {
			return errors.Errorf("terminal %s: coordinates out of range", t.Code)
		}
	}

	ends := make(map[string]bool, len(f.Routes))
	for i, r := range f.Routes {
		if r.Name == "" {
			return errors.Errorf("route %d: name is required", i+1)
		}
		if !codes[r.From] || !codes[r.To] {
			return errors.Errorf("route %s: unknown terminal %s or %s", r.Name, r.From, r.To)
		}
		if r.From == r.To {
			return errors.Errorf("route %s: from and to are the same terminal", r.Name)
		}
		if r.BasePrice < 0 {
			return errors.Errorf("route %s: base_price is negative", r.Name)
		}
		key := r.From + ">" + r.To
		if ends[key] {
			return errors.Errorf("route %s: %s is listed twice", r.Name, key)
		}
		ends[key] = true
	}

	emails := make(map[string]bool, len(f.Admins))
	for i, a := range f.Admins {
		if err := validate.Struct(a); err != nil {
			return errors.Wrapf(err, "admin %d", i+1)
		}
		if emails[a.Email] {
			return errors.Errorf("admin %d: duplicate email %s", i+1, a.Email)
		}
		emails[a.Email] = true
	}
	return nil
}
