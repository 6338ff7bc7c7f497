package vmwizard

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"

	"k8s.io/apimachinery/pkg/api/resource"

	"github.com/imamik/kconsole/internal/form"
	"github.com/imamik/kconsole/internal/wizard"
)

// Name identifies the VM wizard in events and metrics.
const Name = "vm"

// ErrCustomFlavor is returned by SelectFlavor for a Custom flavor without
// memory and CPU.
var ErrCustomFlavor = errors.New("custom flavor requires memory and cpu values")

var (
	errNameRequired = errors.New("VM name not defined")
	errNoProvision  = errors.New("VM provision source not defined")
	errNoOS         = errors.New("VM OS not defined")
	errNoWorkload   = errors.New("VM workload not defined")
	errNoFlavor     = errors.New("VM flavor not defined")
)

// Wizard is the VM creation wizard. Every action mutates the form state
// through the controller, so actions fail with wizard.ErrBusy while the
// create request is in flight.
type Wizard struct {
	ctrl      *wizard.Controller
	namespace string
}

// New starts a VM wizard in namespace. A "template" key in initial marks the
// wizard as opened from a template: the source step is skipped.
func New(namespace string, initial map[string]any, opts ...wizard.Option) (*Wizard, error) {
	opts = append([]wizard.Option{wizard.WithBuilder(Builder(namespace))}, opts...)
	ctrl, err := wizard.New(Name, Steps(), initial, opts...)
	if err != nil {
		return nil, err
	}
	return &Wizard{ctrl: ctrl, namespace: namespace}, nil
}

// Controller exposes the underlying controller.
func (w *Wizard) Controller() *wizard.Controller {
	return w.ctrl
}

// FillName sets the VM name.
func (w *Wizard) FillName(name string) error {
	return w.set(FieldName, name)
}

// FillDescription sets the description annotation.
func (w *Wizard) FillDescription(description string) error {
	return w.set(FieldDescription, description)
}

// SelectTemplate creates the VM from a template. Provision source, OS and
// workload come from the template.
func (w *Wizard) SelectTemplate(template string) error {
	return w.set(FieldTemplate, template)
}

// SelectOperatingSystem sets the guest OS.
func (w *Wizard) SelectOperatingSystem(os string) error {
	return w.set(FieldOS, os)
}

// SelectWorkloadProfile sets the workload profile.
func (w *Wizard) SelectWorkloadProfile(profile string) error {
	return w.set(FieldWorkload, profile)
}

// SelectProvisionSource sets the provision method and, for URL and
// Container, its source.
func (w *Wizard) SelectProvisionSource(p ProvisionSource) error {
	if !slices.Contains(provisionMethods(), p.Method) {
		return fmt.Errorf("unknown provision source %q", p.Method)
	}
	return w.ctrl.Update(func(s *form.State) error {
		if err := s.Set(FieldProvisionMethod, p.Method); err != nil {
			return err
		}
		var src any
		if p.Source != "" {
			src = p.Source
		}
		return s.Set(FieldProvisionSource, src)
	})
}

// SelectFlavor sets the flavor. A Custom flavor without both memory and CPU
// is refused before any field changes.
func (w *Wizard) SelectFlavor(f FlavorConfig) error {
	if _, ok := flavor(f.Flavor); !ok {
		return fmt.Errorf("unknown flavor %q", f.Flavor)
	}
	if f.Flavor == FlavorCustom {
		if f.Memory == "" || f.CPU == "" {
			return ErrCustomFlavor
		}
		if _, err := resource.ParseQuantity(f.Memory); err != nil {
			return fmt.Errorf("invalid memory %q: %w", f.Memory, err)
		}
		if n, err := strconv.Atoi(f.CPU); err != nil || n <= 0 {
			return fmt.Errorf("invalid CPU count %q", f.CPU)
		}
	}
	return w.ctrl.Update(func(s *form.State) error {
		if err := s.Set(FieldFlavor, f.Flavor); err != nil {
			return err
		}
		if f.Flavor != FlavorCustom {
			s.Clear(FieldMemory, FieldCPU)
			return nil
		}
		if err := s.Set(FieldMemory, f.Memory); err != nil {
			return err
		}
		return s.Set(FieldCPU, f.CPU)
	})
}

// AddNIC appends a network interface. With PXE provisioning the newest NIC
// becomes the boot source unless the user chose one.
func (w *Wizard) AddNIC(nic NIC) error {
	nic = withNICDefaults(nic)
	return w.ctrl.Update(func(s *form.State) error {
		list := nics(s)
		if slices.ContainsFunc(list, func(n NIC) bool { return n.Name == nic.Name }) {
			return fmt.Errorf("network interface %q already exists", nic.Name)
		}
		if err := s.Set(FieldNetworks, append(slices.Clone(list), nic)); err != nil {
			return err
		}
		if isPXE(s) && !s.Touched(FieldBootSource) {
			return s.SetUntouched(FieldBootSource, nic.Name)
		}
		return nil
	})
}

// EditNIC replaces the interface called name.
func (w *Wizard) EditNIC(name string, nic NIC) error {
	nic = withNICDefaults(nic)
	return w.ctrl.Update(func(s *form.State) error {
		list := slices.Clone(nics(s))
		idx := slices.IndexFunc(list, func(n NIC) bool { return n.Name == name })
		if idx < 0 {
			return fmt.Errorf("network interface %q not found", name)
		}
		if nic.Name != name && slices.ContainsFunc(list, func(n NIC) bool { return n.Name == nic.Name }) {
			return fmt.Errorf("network interface %q already exists", nic.Name)
		}
		list[idx] = nic
		if err := s.Set(FieldNetworks, list); err != nil {
			return err
		}
		if s.String(FieldBootSource) == name && nic.Name != name {
			return s.SetUntouched(FieldBootSource, nic.Name)
		}
		return nil
	})
}

// RemoveNIC deletes the interface called name.
func (w *Wizard) RemoveNIC(name string) error {
	return w.ctrl.Update(func(s *form.State) error {
		list := slices.Clone(nics(s))
		idx := slices.IndexFunc(list, func(n NIC) bool { return n.Name == name })
		if idx < 0 {
			return fmt.Errorf("network interface %q not found", name)
		}
		list = slices.Delete(list, idx, idx+1)
		if err := s.Set(FieldNetworks, nicValue(list)); err != nil {
			return err
		}
		if s.String(FieldBootSource) != name {
			return nil
		}
		var next any
		if isPXE(s) && len(list) > 0 && !s.Touched(FieldBootSource) {
			next = list[len(list)-1].Name
		}
		return s.SetUntouched(FieldBootSource, next)
	})
}

// SelectBootableNIC chooses the interface to PXE boot from.
func (w *Wizard) SelectBootableNIC(name string) error {
	return w.ctrl.Update(func(s *form.State) error {
		if !slices.ContainsFunc(nics(s), func(n NIC) bool { return n.Name == name }) {
			return fmt.Errorf("network interface %q not found", name)
		}
		return s.Set(FieldBootSource, name)
	})
}

// AddDisk appends a disk. With Disk provisioning a bootable disk becomes the
// boot disk.
func (w *Wizard) AddDisk(d Disk) error {
	d = withDiskDefaults(d, DriveDisk)
	return w.ctrl.Update(func(s *form.State) error {
		list := disks(s)
		if slices.ContainsFunc(list, func(x Disk) bool { return x.Name == d.Name }) {
			return fmt.Errorf("disk %q already exists", d.Name)
		}
		if err := s.Set(FieldDisks, append(slices.Clone(list), d)); err != nil {
			return err
		}
		return selectBootDisk(s, d)
	})
}

// EditDisk replaces the disk called name.
func (w *Wizard) EditDisk(name string, d Disk) error {
	d = withDiskDefaults(d, DriveDisk)
	return w.ctrl.Update(func(s *form.State) error {
		list := slices.Clone(disks(s))
		idx := slices.IndexFunc(list, func(x Disk) bool { return x.Name == name })
		if idx < 0 {
			return fmt.Errorf("disk %q not found", name)
		}
		if d.Name != name && slices.ContainsFunc(list, func(x Disk) bool { return x.Name == d.Name }) {
			return fmt.Errorf("disk %q already exists", d.Name)
		}
		list[idx] = d
		if err := s.Set(FieldDisks, list); err != nil {
			return err
		}
		if s.String(FieldBootDisk) == name && d.Name != name {
			if err := s.Set(FieldBootDisk, d.Name); err != nil {
				return err
			}
		}
		return selectBootDisk(s, d)
	})
}

func selectBootDisk(s *form.State, d Disk) error {
	if d.Bootable && s.String(FieldProvisionMethod) == ProvisionDisk && !s.Has(FieldTemplate) {
		return s.Set(FieldBootDisk, d.Name)
	}
	return nil
}

// SelectBootableDisk chooses the disk to boot from.
func (w *Wizard) SelectBootableDisk(name string) error {
	return w.ctrl.Update(func(s *form.State) error {
		if !slices.ContainsFunc(disks(s), func(d Disk) bool { return d.Name == name }) {
			return fmt.Errorf("disk %q not found", name)
		}
		return s.Set(FieldBootDisk, name)
	})
}

// AddCD attaches a CD-ROM drive.
func (w *Wizard) AddCD(cd Disk) error {
	cd = withDiskDefaults(cd, DriveCDROM)
	return w.ctrl.Update(func(s *form.State) error {
		list := cdroms(s)
		if slices.ContainsFunc(list, func(x Disk) bool { return x.Name == cd.Name }) {
			return fmt.Errorf("CD-ROM %q already exists", cd.Name)
		}
		return s.Set(FieldCDROMs, append(slices.Clone(list), cd))
	})
}

// ConfigureCloudInit enables cloud-init with either a custom script or a
// hostname and SSH keys.
func (w *Wizard) ConfigureCloudInit(c CloudInitConfig) error {
	return w.ctrl.Update(func(s *form.State) error {
		s.Clear(FieldCloudInitScript, FieldCloudInitHostname, FieldCloudInitSSHKeys)
		values := map[string]any{
			FieldCloudInitEnabled: true,
			FieldCloudInitCustom:  c.UseCustomScript,
		}
		if c.UseCustomScript {
			values[FieldCloudInitScript] = c.CustomScript
		} else {
			values[FieldCloudInitHostname] = c.Hostname
			if len(c.SSHKeys) > 0 {
				values[FieldCloudInitSSHKeys] = slices.Clone(c.SSHKeys)
			}
		}
		for path, v := range values {
			if err := s.Set(path, v); err != nil {
				return err
			}
		}
		return nil
	})
}

// StartOnCreation toggles starting the VM once it is created.
func (w *Wizard) StartOnCreation(start bool) error {
	return w.set(FieldStartOnCreation, start)
}

// Next validates the current step and moves on.
func (w *Wizard) Next(ignoreWarnings bool) error {
	return w.ctrl.Advance(ignoreWarnings)
}

// Back returns to the previous step.
func (w *Wizard) Back() error {
	return w.ctrl.Retreat()
}

// Cancel closes the wizard.
func (w *Wizard) Cancel() {
	w.ctrl.Cancel()
}

// Create submits the VM from the review step.
func (w *Wizard) Create(ctx context.Context) (*wizard.SubmissionResult, error) {
	return w.ctrl.Submit(ctx)
}

// Current returns the active step.
func (w *Wizard) Current() wizard.StepInfo {
	return w.ctrl.Current()
}

func (w *Wizard) set(path string, value any) error {
	return w.ctrl.Update(func(s *form.State) error {
		return s.Set(path, value)
	})
}

func withNICDefaults(n NIC) NIC {
	if n.Model == "" {
		n.Model = "virtio"
	}
	if n.Network == "" {
		n.Network = PodNetwork
	}
	if n.Binding == "" {
		n.Binding = BindingBridge
		if n.Network == PodNetwork {
			n.Binding = BindingMasquerade
		}
	}
	return n
}

func withDiskDefaults(d Disk, drive string) Disk {
	if d.Drive == "" {
		d.Drive = drive
	}
	if d.Source == "" {
		d.Source = DiskSourceBlank
		if d.Drive == DriveCDROM {
			d.Source = DiskSourceContainer
		}
	}
	if d.Source == DiskSourceBlank && d.Size == "" {
		d.Size = "1Gi"
	}
	if d.Interface == "" {
		d.Interface = "virtio"
		if d.Drive == DriveCDROM {
			d.Interface = "sata"
		}
	}
	return d
}
