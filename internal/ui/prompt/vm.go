package prompt

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/imamik/kconsole/internal/util/keygen"
	"github.com/imamik/kconsole/internal/vmwizard"
	"github.com/imamik/kconsole/internal/wizard"
)

// RunVM walks the VM wizard. sshDir is searched for public keys to offer
// for cloud-init and receives generated key pairs; empty means ~/.ssh.
func (s *Session) RunVM(ctx context.Context, w *vmwizard.Wizard, sshDir string) (*wizard.SubmissionResult, error) {
	if sshDir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			sshDir = filepath.Join(home, ".ssh")
		}
	}
	return s.run(ctx, &vmFlow{w: w, sshDir: sshDir, notify: s.ok})
}

type vmFlow struct {
	w      *vmwizard.Wizard
	sshDir string
	notify func(string)
}

func (f *vmFlow) controller() *wizard.Controller { return f.w.Controller() }
func (f *vmFlow) next(ignore bool) error         { return f.w.Next(ignore) }
func (f *vmFlow) back() error                    { return f.w.Back() }
func (f *vmFlow) cancel()                        { f.w.Cancel() }

func (f *vmFlow) create(ctx context.Context) (*wizard.SubmissionResult, error) {
	return f.w.Create(ctx)
}

func (f *vmFlow) panel(step string) panel {
	state := f.w.Controller().State()
	switch step {
	case vmwizard.StepGeneral:
		return &generalPanel{
			w:           f.w,
			presetTmpl:  state.InitialString(vmwizard.FieldTemplate) != "",
			name:        state.String(vmwizard.FieldName),
			description: state.String(vmwizard.FieldDescription),
			template:    state.String(vmwizard.FieldTemplate),
			flavor:      orDefault(state.String(vmwizard.FieldFlavor), vmwizard.FlavorSmall),
			memory:      state.String(vmwizard.FieldMemory),
			cpu:         state.String(vmwizard.FieldCPU),
		}
	case vmwizard.StepSource:
		return &sourcePanel{
			w:        f.w,
			method:   orDefault(state.String(vmwizard.FieldProvisionMethod), vmwizard.ProvisionPXE),
			source:   state.String(vmwizard.FieldProvisionSource),
			os:       orDefault(state.String(vmwizard.FieldOS), vmwizard.OperatingSystems[0].Value),
			workload: orDefault(state.String(vmwizard.FieldWorkload), "server"),
		}
	case vmwizard.StepNetworking:
		return &nicPanel{w: f.w, model: vmwizard.NICModels[0], network: vmwizard.PodNetwork, binding: vmwizard.BindingMasquerade}
	case vmwizard.StepStorage:
		return &diskPanel{w: f.w, drive: vmwizard.DriveDisk, source: vmwizard.DiskSourceBlank, iface: vmwizard.DiskInterfaces[0], size: "10Gi"}
	case vmwizard.StepAdvanced:
		keys, _ := keygen.LocalPublicKeys(f.sshDir)
		return &cloudInitPanel{
			w:        f.w,
			vmName:   state.String(vmwizard.FieldName),
			sshDir:   f.sshDir,
			notify:   f.notify,
			hostname: state.String(vmwizard.FieldName),
			keys:     strings.Join(keys, "\n"),
		}
	case vmwizard.StepHardware:
		return &diskPanel{w: f.w, drive: vmwizard.DriveCDROM, source: vmwizard.DiskSourceContainer, iface: "sata"}
	case vmwizard.StepReview:
		return &vmReviewPanel{w: f.w, start: state.Bool(vmwizard.FieldStartOnCreation)}
	}
	return nil
}

type generalPanel struct {
	w          *vmwizard.Wizard
	presetTmpl bool

	name, description, template string
	flavor, memory, cpu         string
}

func (p *generalPanel) form() *huh.Form {
	fields := []huh.Field{
		huh.NewInput().Title("Name").Placeholder("my-vm").Value(&p.name),
		huh.NewText().Title("Description").Lines(2).Value(&p.description),
	}
	if !p.presetTmpl {
		fields = append(fields, huh.NewInput().
			Title("Template").
			Description("Leave empty to choose a provision source").
			Value(&p.template))
	}
	fields = append(fields, huh.NewSelect[string]().Title("Flavor").Options(flavorOptions()...).Value(&p.flavor))

	return huh.NewForm(
		huh.NewGroup(fields...).Title("General"),
		huh.NewGroup(
			huh.NewInput().Title("Memory").Placeholder("2Gi").Value(&p.memory),
			huh.NewInput().Title("CPUs").Placeholder("1").Value(&p.cpu),
		).Title("Custom flavor").WithHideFunc(func() bool { return p.flavor != vmwizard.FlavorCustom }),
	)
}

func (p *generalPanel) apply() (bool, error) {
	if err := p.w.FillName(strings.TrimSpace(p.name)); err != nil {
		return false, err
	}
	if err := p.w.FillDescription(p.description); err != nil {
		return false, err
	}
	if !p.presetTmpl {
		if err := p.w.SelectTemplate(strings.TrimSpace(p.template)); err != nil {
			return false, err
		}
	}
	return false, p.w.SelectFlavor(vmwizard.FlavorConfig{Flavor: p.flavor, Memory: p.memory, CPU: p.cpu})
}

type sourcePanel struct {
	w *vmwizard.Wizard

	method, source, os, workload string
}

func (p *sourcePanel) form() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().Title("Provision source").Options(choiceOptions(vmwizard.ProvisionSources)...).Value(&p.method),
		),
		huh.NewGroup(
			huh.NewInput().TitleFunc(func() string {
				if p.method == vmwizard.ProvisionURL {
					return "Image URL"
				}
				return "Container image"
			}, &p.method).Value(&p.source),
		).WithHideFunc(func() bool {
			return p.method != vmwizard.ProvisionURL && p.method != vmwizard.ProvisionContainer
		}),
		huh.NewGroup(
			huh.NewSelect[string]().Title("Operating system").Options(choiceOptions(vmwizard.OperatingSystems)...).Value(&p.os),
			huh.NewSelect[string]().Title("Workload profile").Options(choiceOptions(vmwizard.WorkloadProfiles)...).Value(&p.workload),
		),
	)
}

func (p *sourcePanel) apply() (bool, error) {
	src := vmwizard.ProvisionSource{Method: p.method}
	if p.method == vmwizard.ProvisionURL || p.method == vmwizard.ProvisionContainer {
		src.Source = strings.TrimSpace(p.source)
	}
	if err := p.w.SelectProvisionSource(src); err != nil {
		return false, err
	}
	if err := p.w.SelectOperatingSystem(p.os); err != nil {
		return false, err
	}
	return false, p.w.SelectWorkloadProfile(p.workload)
}

type nicPanel struct {
	w *vmwizard.Wizard

	add                                bool
	name, model, network, binding, mac string
}

func (p *nicPanel) form() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().Title("Add a network interface?").Value(&p.add),
		),
		huh.NewGroup(
			huh.NewInput().Title("Name").Placeholder("nic0").Value(&p.name),
			huh.NewSelect[string]().Title("Model").Options(stringOptions(vmwizard.NICModels...)...).Value(&p.model),
			huh.NewInput().Title("Network").Description("Pod Networking or a NetworkAttachmentDefinition name").Value(&p.network),
			huh.NewSelect[string]().Title("Binding").Options(stringOptions(vmwizard.BindingMasquerade, vmwizard.BindingBridge)...).Value(&p.binding),
			huh.NewInput().Title("MAC address").Description("Optional").Value(&p.mac),
		).WithHideFunc(func() bool { return !p.add }),
	)
}

func (p *nicPanel) apply() (bool, error) {
	if !p.add {
		return false, nil
	}
	nic := vmwizard.NIC{
		Name:       strings.TrimSpace(p.name),
		Model:      p.model,
		Network:    strings.TrimSpace(p.network),
		Binding:    p.binding,
		MACAddress: strings.TrimSpace(p.mac),
	}
	return true, p.w.AddNIC(nic)
}

// diskPanel adds disks on the storage step and CD-ROMs on the hardware
// step.
type diskPanel struct {
	w     *vmwizard.Wizard
	drive string

	add                                 bool
	name, source, location, size, iface string
	storageClass                        string
	bootable                            bool
}

func (p *diskPanel) noun() string {
	if p.drive == vmwizard.DriveCDROM {
		return "CD-ROM"
	}
	return "disk"
}

func (p *diskPanel) form() *huh.Form {
	sources := []string{vmwizard.DiskSourceBlank, vmwizard.DiskSourceURL, vmwizard.DiskSourceContainer, vmwizard.DiskSourcePVC}
	if p.drive == vmwizard.DriveCDROM {
		sources = sources[1:]
	}
	hidden := func() bool { return !p.add }
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().Title(fmt.Sprintf("Add a %s?", p.noun())).Value(&p.add),
		),
		huh.NewGroup(
			huh.NewInput().Title("Name").Value(&p.name),
			huh.NewSelect[string]().Title("Source").Options(stringOptions(sources...)...).Value(&p.source),
			huh.NewSelect[string]().Title("Interface").Options(stringOptions(vmwizard.DiskInterfaces...)...).Value(&p.iface),
		).WithHideFunc(hidden),
		huh.NewGroup(
			huh.NewInput().TitleFunc(func() string {
				switch p.source {
				case vmwizard.DiskSourceURL:
					return "URL"
				case vmwizard.DiskSourceContainer:
					return "Container image"
				default:
					return "Persistent volume claim"
				}
			}, &p.source).Value(&p.location),
		).WithHideFunc(func() bool { return hidden() || p.source == vmwizard.DiskSourceBlank }),
		huh.NewGroup(
			huh.NewInput().Title("Size").Value(&p.size),
			huh.NewInput().Title("Storage class").Description("Optional").Value(&p.storageClass),
		).WithHideFunc(func() bool {
			return hidden() || (p.source != vmwizard.DiskSourceBlank && p.source != vmwizard.DiskSourceURL)
		}),
		huh.NewGroup(
			huh.NewConfirm().Title("Boot from this disk?").Value(&p.bootable),
		).WithHideFunc(func() bool { return hidden() || p.drive == vmwizard.DriveCDROM }),
	)
}

func (p *diskPanel) apply() (bool, error) {
	if !p.add {
		return false, nil
	}
	d := vmwizard.Disk{
		Name:         strings.TrimSpace(p.name),
		Source:       p.source,
		Interface:    p.iface,
		StorageClass: strings.TrimSpace(p.storageClass),
		Drive:        p.drive,
		Bootable:     p.bootable,
	}
	loc := strings.TrimSpace(p.location)
	switch p.source {
	case vmwizard.DiskSourceURL:
		d.URL, d.Size = loc, p.size
	case vmwizard.DiskSourceContainer:
		d.Image = loc
	case vmwizard.DiskSourcePVC:
		d.ClaimName = loc
	default:
		d.Size = p.size
	}
	if p.drive == vmwizard.DriveCDROM {
		return true, p.w.AddCD(d)
	}
	return true, p.w.AddDisk(d)
}

type cloudInitPanel struct {
	w      *vmwizard.Wizard
	vmName string
	sshDir string
	notify func(string)

	enabled, custom  bool
	script, hostname string
	keys             string
	generate         bool
}

func (p *cloudInitPanel) form() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().Title("Use cloud-init?").Value(&p.enabled),
		),
		huh.NewGroup(
			huh.NewConfirm().Title("Provide a custom script?").Value(&p.custom),
		).WithHideFunc(func() bool { return !p.enabled }),
		huh.NewGroup(
			huh.NewText().Title("Custom script").Lines(8).Value(&p.script),
		).WithHideFunc(func() bool { return !p.enabled || !p.custom }),
		huh.NewGroup(
			huh.NewInput().Title("Hostname").Value(&p.hostname),
			huh.NewText().Title("Authorized SSH keys").Description("One key per line").Lines(4).Value(&p.keys),
		).WithHideFunc(func() bool { return !p.enabled || p.custom }),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Generate a new SSH key pair?").
				Description("The private key is written to "+p.sshDir).
				Value(&p.generate),
		).WithHideFunc(func() bool { return !p.enabled || p.custom || strings.TrimSpace(p.keys) != "" }),
	)
}

func (p *cloudInitPanel) apply() (bool, error) {
	if !p.enabled {
		return false, nil
	}
	if p.custom {
		return false, p.w.ConfigureCloudInit(vmwizard.CloudInitConfig{UseCustomScript: true, CustomScript: p.script})
	}
	keys := splitLines(p.keys)
	if len(keys) == 0 && p.generate {
		kp, err := keygen.Generate(keygen.DefaultBits, p.vmName+"@kconsole")
		if err != nil {
			return false, err
		}
		path, err := kp.WriteFiles(p.sshDir, "kconsole_"+p.vmName)
		if err != nil {
			return false, err
		}
		if p.notify != nil {
			p.notify("private key written to " + path)
		}
		keys = []string{kp.AuthorizedKey()}
	}
	return false, p.w.ConfigureCloudInit(vmwizard.CloudInitConfig{Hostname: strings.TrimSpace(p.hostname), SSHKeys: keys})
}

type vmReviewPanel struct {
	w     *vmwizard.Wizard
	start bool
}

func (p *vmReviewPanel) form() *huh.Form {
	payload, _ := p.w.Controller().Payload()
	return huh.NewForm(huh.NewGroup(
		huh.NewNote().Title("Review").Description(summary(payload)),
		huh.NewConfirm().Title("Start virtual machine on creation?").Value(&p.start),
	))
}

func (p *vmReviewPanel) apply() (bool, error) {
	return false, p.w.StartOnCreation(p.start)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
