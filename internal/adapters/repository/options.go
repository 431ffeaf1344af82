package repository

import "time"

// Option applies a configuration option to the FileStore.
type Option func(*FileStore)

// WithInputDir sets the directory input snapshots are read from.
func WithInputDir(dir string) Option {
	return func(s *FileStore) {
		if dir != "" {
			s.inDir = dir
		}
	}
}

// WithOutputDir sets the directory artifacts are committed to.
func WithOutputDir(dir string) Option {
	return func(s *FileStore) {
		if dir != "" {
			s.outDir = dir
		}
	}
}

// WithInputs overrides the input file names. Empty names keep the default.
func WithInputs(in Inputs) Option {
	return func(s *FileStore) {
		s.inputs = s.inputs.merge(in)
	}
}

// WithRunID sets the id stamped into every artifact.
func WithRunID(id string) Option {
	return func(s *FileStore) {
		if id != "" {
			s.runID = id
		}
	}
}

// WithClock sets the time source used for artifact timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *FileStore) {
		if now != nil {
			s.now = now
		}
	}
}
