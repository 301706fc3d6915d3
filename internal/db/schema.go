package db

import "github.com/pkg/errors"

// Schema holds every table of the service.
const Schema = "transit"

func (s *Service) EnsureSchema(schema string) error {
	err := s.gdb.Exec(`CREATE SCHEMA IF NOT EXISTS "` + schema + `"`).Error
	return errors.Wrapf(err, "failed to ensure schema %s", schema)
}

// Migrate ensures schema exists and auto-migrates models into it.
func (s *Service) Migrate(schema string, models ...interface{}) error {
	if err := s.EnsureSchema(schema); err != nil {
		return err
	}
	return errors.Wrap(s.gdb.AutoMigrate(models...), "failed to auto-migrate tables")
}
