package cache

import (
	"errors"

	"bale/internal/project"
)

// Store is the interface shared by every cache layer.
type Store interface {
	Get(key project.Digest) (string, bool, error)
	Put(key project.Digest, source string) error
}

// Tiered looks layers up in order and backfills the faster ones on a hit.
type Tiered []Store

func (t Tiered) Get(key project.Digest) (string, bool, error) {
	var errs []error
	for i, layer := range t {
		s, ok, err := layer.Get(key)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if !ok {
			continue
		}
		for _, faster := range t[:i] {
			errs = append(errs, faster.Put(key, s))
		}
		return s, true, errors.Join(errs...)
	}
	return "", false, errors.Join(errs...)
}

func (t Tiered) Put(key project.Digest, source string) error {
	var errs []error
	for _, layer := range t {
		errs = append(errs, layer.Put(key, source))
	}
	return errors.Join(errs...)
}
