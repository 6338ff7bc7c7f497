package vmwizard

import (
	"context"
	"fmt"
	"slices"

	"github.com/imamik/kconsole/internal/wizard"
)

// Process runs the whole wizard the way a user would: it fills every step
// from data, advances after each one and creates the VM from the review
// step. Non-PXE machines without NICs are created anyway; that warning is
// ignored.
func (w *Wizard) Process(ctx context.Context, data VMBuilderData) (*wizard.SubmissionResult, error) {
	if data.Name == "" {
		return nil, errNameRequired
	}
	if data.Flavor == nil {
		return nil, errNoFlavor
	}
	skipped := slices.Contains(w.ctrl.Skipped(), StepSource)

	// General
	if err := w.FillName(data.Name); err != nil {
		return nil, err
	}
	if data.Description != "" {
		if err := w.FillDescription(data.Description); err != nil {
			return nil, err
		}
	}
	if !skipped && data.Template != "" {
		if err := w.SelectTemplate(data.Template); err != nil {
			return nil, err
		}
	}
	if err := w.SelectFlavor(*data.Flavor); err != nil {
		return nil, err
	}
	if err := w.next(StepGeneral, false); err != nil {
		return nil, err
	}

	// Source
	if !skipped {
		if data.Template == "" {
			if data.ProvisionSource == nil {
				return nil, errNoProvision
			}
			if data.OS == "" {
				return nil, errNoOS
			}
			if data.Workload == "" {
				return nil, errNoWorkload
			}
			if err := w.SelectProvisionSource(*data.ProvisionSource); err != nil {
				return nil, err
			}
			if err := w.SelectOperatingSystem(data.OS); err != nil {
				return nil, err
			}
			if err := w.SelectWorkloadProfile(data.Workload); err != nil {
				return nil, err
			}
		}
		if err := w.next(StepSource, false); err != nil {
			return nil, err
		}
	}

	// Networking
	for _, nic := range data.Networks {
		if err := w.AddNIC(nic); err != nil {
			return nil, err
		}
	}
	if err := w.next(StepNetworking, true); err != nil {
		return nil, err
	}

	// Storage
	var cds []Disk
	for _, d := range data.Disks {
		if d.Drive == DriveCDROM {
			cds = append(cds, d)
			continue
		}
		var err error
		if slices.ContainsFunc(disks(w.ctrl.State()), func(x Disk) bool { return x.Name == d.Name }) {
			err = w.EditDisk(d.Name, d)
		} else {
			err = w.AddDisk(d)
		}
		if err != nil {
			return nil, err
		}
	}
	if err := w.next(StepStorage, false); err != nil {
		return nil, err
	}

	// Advanced
	if data.CloudInit != nil {
		if err := w.ConfigureCloudInit(*data.CloudInit); err != nil {
			return nil, err
		}
	}
	if err := w.next(StepAdvanced, false); err != nil {
		return nil, err
	}

	// Virtual hardware
	for _, cd := range cds {
		if err := w.AddCD(cd); err != nil {
			return nil, err
		}
	}
	if err := w.next(StepHardware, false); err != nil {
		return nil, err
	}

	// Review
	if data.StartOnCreation {
		if err := w.StartOnCreation(true); err != nil {
			return nil, err
		}
	}
	return w.Create(ctx)
}

func (w *Wizard) next(step string, ignoreWarnings bool) error {
	if cur := w.Current().ID; cur != step {
		return fmt.Errorf("expected step %s, wizard is at %s", step, cur)
	}
	if err := w.Next(ignoreWarnings); err != nil {
		return fmt.Errorf("%s: %w", step, err)
	}
	return nil
}
