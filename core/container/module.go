package container

import "fmt"

// Module groups related registrations. Bootstrap code enumerates the
// implementations it wants to expose and installs them in one call.
type Module func(r Registrar) error

// Install runs every module against r, stopping at the first failure.
//
// Example:
//
//	err := container.Install(c,
//	    orders.Module,
//	    billing.Module,
//	)
func Install(r Registrar, modules ...Module) error {
	for i, m := range modules {
		if m == nil {
			continue
		}
		if err := m(r); err != nil {
			return fmt.Errorf("install module %d: %w", i, err)
		}
	}
	return nil
}
