package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/c2h5oh/datasize"
	"gopkg.in/yaml.v3"
)

// Workload describes a stress run. Sizes accept human units ("4KB").
type Workload struct {
	Workers    int               `yaml:"workers" json:"workers"`
	Iterations int               `yaml:"iterations" json:"iterations"`
	MinSize    datasize.ByteSize `yaml:"min_size" json:"min_size"`
	MaxSize    datasize.ByteSize `yaml:"max_size" json:"max_size"`
	Held       int               `yaml:"held" json:"held"`             // raw blocks each worker keeps live
	ArrayLen   int               `yaml:"array_len" json:"array_len"`   // appends per array round
	TableKeys  int               `yaml:"table_keys" json:"table_keys"` // key space of the per-worker table
	Seed       uint64            `yaml:"seed" json:"seed"`
	Mmap       bool              `yaml:"mmap" json:"mmap"`
}

func defaultWorkload() Workload {
	return Workload{
		Workers:    4,
		Iterations: 10000,
		MinSize:    8 * datasize.B,
		MaxSize:    16 * datasize.KB,
		Held:       32,
		ArrayLen:   64,
		TableKeys:  256,
		Seed:       1,
	}
}

// loadWorkload reads a YAML workload on top of the defaults.
func loadWorkload(path string) (Workload, error) {
	w := defaultWorkload()
	if path == "" {
		return w, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return w, fmt.Errorf("read workload: %w", err)
	}
	if err := yaml.Unmarshal(data, &w); err != nil {
		return w, fmt.Errorf("parse workload %s: %w", path, err)
	}
	return w, nil
}

func (w Workload) validate() error {
	switch {
	case w.Workers <= 0:
		return errors.New("workers must be positive")
	case w.Iterations < 0:
		return errors.New("iterations must not be negative")
	case w.MinSize > w.MaxSize:
		return fmt.Errorf("min_size %s exceeds max_size %s", w.MinSize.HumanReadable(), w.MaxSize.HumanReadable())
	case w.MaxSize > 64*datasize.MB:
		return fmt.Errorf("max_size %s above 64MB", w.MaxSize.HumanReadable())
	case w.Held < 0 || w.ArrayLen < 0 || w.TableKeys < 0:
		return errors.New("held, array_len and table_keys must not be negative")
	}
	return nil
}
