package camera

import (
	"context"
	"errors"
	"fmt"
)

// Multi merges several providers. Device IDs already carry a provider prefix, so
// Acquire tries each provider until one recognises the ID.
type Multi []Provider

func (m Multi) Devices(ctx context.Context) ([]Device, error) {
	var (
		all  []Device
		errs []error
	)
	for _, p := range m {
		devices, err := p.Devices(ctx)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		all = append(all, devices...)
	}
	if len(all) == 0 && len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return all, nil
}

func (m Multi) Acquire(ctx context.Context, deviceID string) (Stream, error) {
	for _, p := range m {
		s, err := p.Acquire(ctx, deviceID)
		if errors.Is(err, ErrUnknownDevice) {
			continue
		}
		return s, err
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownDevice, deviceID)
}
