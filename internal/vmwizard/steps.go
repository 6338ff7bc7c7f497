package vmwizard

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/crypto/ssh"
	"k8s.io/apimachinery/pkg/api/resource"
	"k8s.io/apimachinery/pkg/util/validation"
	"k8s.io/apimachinery/pkg/util/validation/field"

	"github.com/imamik/kconsole/internal/form"
	"github.com/imamik/kconsole/internal/wizard"
)

// Step IDs.
const (
	StepGeneral    = "general"
	StepSource     = "source"
	StepNetworking = "networking"
	StepStorage    = "storage"
	StepAdvanced   = "advanced"
	StepHardware   = "hardware"
	StepReview     = "review"
)

// Steps returns the VM wizard steps in order.
func Steps() []wizard.Step {
	return []wizard.Step{
		{
			ID:       StepGeneral,
			Title:    "General",
			Fields:   []string{FieldName, FieldDescription, FieldTemplate, FieldFlavor, FieldMemory, FieldCPU},
			Validate: validateGeneral,
		},
		{
			ID:     StepSource,
			Title:  "Source",
			Fields: []string{FieldProvisionMethod, FieldProvisionSource, FieldOS, FieldWorkload},
			// A template preset by the caller fixes source, OS and workload.
			Skip: func(initial *form.State) bool {
				return initial.Has(FieldTemplate)
			},
			Validate: validateSource,
		},
		{
			ID:       StepNetworking,
			Title:    "Networking",
			Fields:   []string{FieldNetworks, FieldBootSource},
			Validate: validateNetworking,
		},
		{
			ID:       StepStorage,
			Title:    "Storage",
			Fields:   []string{FieldDisks, FieldBootDisk},
			Validate: validateStorage,
			OnEnter:  syncRootDisk,
		},
		{
			ID:       StepAdvanced,
			Title:    "Advanced",
			Fields:   []string{FieldCloudInitEnabled, FieldCloudInitCustom, FieldCloudInitScript, FieldCloudInitHostname, FieldCloudInitSSHKeys},
			Validate: validateCloudInit,
		},
		{
			ID:       StepHardware,
			Title:    "Virtual Hardware",
			Fields:   []string{FieldCDROMs},
			Validate: validateHardware,
		},
		{
			ID:     StepReview,
			Title:  "Review",
			Fields: []string{FieldStartOnCreation},
		},
	}
}

func validateGeneral(s *form.State) wizard.Result {
	var errs field.ErrorList
	if err := wizard.Required(s, FieldName, "VM name is required"); err != nil {
		errs = append(errs, err)
	} else {
		for _, msg := range validation.IsDNS1123Label(s.String(FieldName)) {
			errs = append(errs, wizard.Invalid(FieldName, s.String(FieldName), msg))
		}
	}
	errs = wizard.Append(errs, wizard.Required(s, FieldFlavor, "flavor is required"))
	if s.Has(FieldFlavor) {
		errs = append(errs, validateFlavor(s.String(FieldFlavor), s.String(FieldMemory), s.String(FieldCPU))...)
	}
	return wizard.Result{Errors: errs}
}

func validateFlavor(name, memory, cpu string) field.ErrorList {
	if _, ok := flavor(name); !ok {
		return field.ErrorList{field.NotSupported(field.NewPath(FieldFlavor), name, flavorNames())}
	}
	if name != FlavorCustom {
		return nil
	}
	var errs field.ErrorList
	if memory == "" || cpu == "" {
		path := FieldCPU
		if memory == "" {
			path = FieldMemory
		}
		errs = append(errs, wizard.Invalid(path, "", ErrCustomFlavor.Error()))
		return errs
	}
	if q, err := resource.ParseQuantity(memory); err != nil {
		errs = append(errs, wizard.Invalid(FieldMemory, memory, "memory must be a quantity such as 2Gi"))
	} else if q.Sign() <= 0 {
		errs = append(errs, wizard.Invalid(FieldMemory, memory, "memory must be positive"))
	}
	if n, err := strconv.Atoi(cpu); err != nil || n <= 0 {
		errs = append(errs, wizard.Invalid(FieldCPU, cpu, "CPU count must be a positive integer"))
	}
	return errs
}

func validateSource(s *form.State) wizard.Result {
	if s.Has(FieldTemplate) {
		return wizard.Result{}
	}
	var errs field.ErrorList
	method := s.String(FieldProvisionMethod)
	switch {
	case method == "":
		errs = append(errs, field.Required(field.NewPath(FieldProvisionMethod), "provision source is required"))
	case !slices.Contains(provisionMethods(), method):
		errs = append(errs, field.NotSupported(field.NewPath(FieldProvisionMethod), method, provisionMethods()))
	case method == ProvisionURL:
		src := s.String(FieldProvisionSource)
		if src == "" {
			errs = append(errs, field.Required(field.NewPath(FieldProvisionSource), "URL is required"))
		} else if u, err := url.Parse(src); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, wizard.Invalid(FieldProvisionSource, src, "must be an absolute URL"))
		}
	case method == ProvisionContainer:
		errs = wizard.Append(errs, wizard.Required(s, FieldProvisionSource, "container image is required"))
	}
	errs = wizard.Append(errs,
		wizard.Required(s, FieldOS, "operating system is required"),
		wizard.Required(s, FieldWorkload, "workload profile is required"),
	)
	return wizard.Result{Errors: errs}
}

func isPXE(s *form.State) bool {
	return s.String(FieldProvisionMethod) == ProvisionPXE && !s.Has(FieldTemplate)
}

func validateNetworking(s *form.State) wizard.Result {
	list := nics(s)
	var res wizard.Result
	names := make([]string, 0, len(list))
	for i, n := range list {
		p := field.NewPath(FieldNetworks).Index(i).Child("name")
		for _, msg := range validation.IsDNS1123Label(n.Name) {
			res.Errors = append(res.Errors, field.Invalid(p, n.Name, msg))
		}
		if slices.Contains(names, n.Name) {
			res.Errors = append(res.Errors, field.Duplicate(p, n.Name))
		}
		names = append(names, n.Name)
	}

	switch {
	case isPXE(s) && len(list) == 0:
		res.Errors = append(res.Errors, field.Invalid(field.NewPath(FieldNetworks), "", "PXE provisioning requires a network interface"))
	case isPXE(s):
		boot := s.String(FieldBootSource)
		if boot == "" {
			res.Errors = append(res.Errors, field.Required(field.NewPath(FieldBootSource), "select the network interface to boot from"))
		} else if !slices.Contains(names, boot) {
			res.Errors = append(res.Errors, field.NotFound(field.NewPath(FieldBootSource), boot))
		}
	case len(list) == 0:
		res.Warnings = append(res.Warnings, "The virtual machine has no network interfaces and will not be reachable.")
	}
	return res
}

func validateStorage(s *form.State) wizard.Result {
	list := disks(s)
	errs := validateDisks(FieldDisks, list, nil)
	if s.String(FieldProvisionMethod) == ProvisionDisk && !s.Has(FieldTemplate) {
		boot := s.String(FieldBootDisk)
		switch {
		case boot == "":
			errs = append(errs, field.Required(field.NewPath(FieldBootDisk), "select the disk to boot from"))
		case !slices.ContainsFunc(list, func(d Disk) bool { return d.Name == boot }):
			errs = append(errs, field.NotFound(field.NewPath(FieldBootDisk), boot))
		}
	}
	return wizard.Result{Errors: errs}
}

func validateHardware(s *form.State) wizard.Result {
	taken := make([]string, 0)
	for _, d := range disks(s) {
		taken = append(taken, d.Name)
	}
	return wizard.Result{Errors: validateDisks(FieldCDROMs, cdroms(s), taken)}
}

func validateDisks(path string, list []Disk, taken []string) field.ErrorList {
	var errs field.ErrorList
	names := append([]string(nil), taken...)
	for i, d := range list {
		p := field.NewPath(path).Index(i)
		for _, msg := range validation.IsDNS1123Label(d.Name) {
			errs = append(errs, field.Invalid(p.Child("name"), d.Name, msg))
		}
		if slices.Contains(names, d.Name) {
			errs = append(errs, field.Duplicate(p.Child("name"), d.Name))
		}
		names = append(names, d.Name)
		errs = append(errs, validateDiskSource(p, d)...)
	}
	return errs
}

func validateDiskSource(p *field.Path, d Disk) field.ErrorList {
	var errs field.ErrorList
	switch d.Source {
	case DiskSourceBlank, "":
		if d.Drive != DriveCDROM && d.Size == "" {
			errs = append(errs, field.Required(p.Child("size"), "size is required for a blank disk"))
		}
	case DiskSourceURL:
		if d.URL == "" {
			errs = append(errs, field.Required(p.Child("url"), "URL is required"))
		}
	case DiskSourceContainer:
		if d.Image == "" {
			errs = append(errs, field.Required(p.Child("image"), "container image is required"))
		}
	case DiskSourcePVC:
		if d.ClaimName == "" {
			errs = append(errs, field.Required(p.Child("claimName"), "persistent volume claim is required"))
		}
	default:
		errs = append(errs, field.NotSupported(p.Child("source"), d.Source,
			[]string{DiskSourceBlank, DiskSourceURL, DiskSourceContainer, DiskSourcePVC}))
	}
	if d.Size != "" {
		if _, err := resource.ParseQuantity(d.Size); err != nil {
			errs = append(errs, field.Invalid(p.Child("size"), d.Size, "size must be a quantity such as 10Gi"))
		}
	}
	if d.Interface != "" && !slices.Contains(DiskInterfaces, d.Interface) {
		errs = append(errs, field.NotSupported(p.Child("interface"), d.Interface, DiskInterfaces))
	}
	return errs
}

func validateCloudInit(s *form.State) wizard.Result {
	if !s.Bool(FieldCloudInitEnabled) {
		return wizard.Result{}
	}
	var errs field.ErrorList
	if s.Bool(FieldCloudInitCustom) {
		errs = wizard.Append(errs, wizard.Required(s, FieldCloudInitScript, "custom cloud-init script is required"))
		return wizard.Result{Errors: errs}
	}
	if h := s.String(FieldCloudInitHostname); h != "" {
		for _, msg := range validation.IsDNS1123Label(h) {
			errs = append(errs, wizard.Invalid(FieldCloudInitHostname, h, msg))
		}
	}
	for i, key := range sshKeys(s) {
		if _, _, _, _, err := ssh.ParseAuthorizedKey([]byte(key)); err != nil {
			errs = append(errs, field.Invalid(field.NewPath(FieldCloudInitSSHKeys).Index(i), truncate(key, 24),
				fmt.Sprintf("not a valid SSH public key: %v", err)))
		}
	}
	return wizard.Result{Errors: errs}
}

// syncRootDisk keeps the root disk in line with a URL or Container provision
// source. A root disk the user never edited is removed when the method
// changes to one that does not need it.
func syncRootDisk(s *form.State) {
	if s.Has(FieldTemplate) {
		return
	}
	list := disks(s)
	idx := slices.IndexFunc(list, func(d Disk) bool { return d.Name == RootDisk })
	method := s.String(FieldProvisionMethod)
	src := s.String(FieldProvisionSource)

	var root Disk
	switch method {
	case ProvisionURL:
		root = Disk{Name: RootDisk, Source: DiskSourceURL, URL: src, Size: "10Gi", Interface: "virtio", Drive: DriveDisk, Bootable: true}
	case ProvisionContainer:
		root = Disk{Name: RootDisk, Source: DiskSourceContainer, Image: src, Interface: "virtio", Drive: DriveDisk, Bootable: true}
	default:
		if idx >= 0 && !s.Touched(FieldDisks) {
			_ = s.SetUntouched(FieldDisks, diskValue(slices.Delete(slices.Clone(list), idx, idx+1)))
		}
		return
	}

	list = slices.Clone(list)
	if idx >= 0 {
		existing := list[idx]
		existing.Source, existing.URL, existing.Image = root.Source, root.URL, root.Image
		if existing.Size == "" {
			existing.Size = root.Size
		}
		existing.Bootable = true
		list[idx] = existing
	} else {
		list = append([]Disk{root}, list...)
	}
	_ = s.SetUntouched(FieldDisks, diskValue(list))
}

func nics(s *form.State) []NIC {
	v, _ := s.Get(FieldNetworks)
	out, _ := v.([]NIC)
	return out
}

func disks(s *form.State) []Disk {
	v, _ := s.Get(FieldDisks)
	out, _ := v.([]Disk)
	return out
}

func cdroms(s *form.State) []Disk {
	v, _ := s.Get(FieldCDROMs)
	out, _ := v.([]Disk)
	return out
}

func sshKeys(s *form.State) []string {
	v, _ := s.Get(FieldCloudInitSSHKeys)
	out, _ := v.([]string)
	return out
}

// nicValue and diskValue store empty lists as unset.
func nicValue(list []NIC) any {
	if len(list) == 0 {
		return nil
	}
	return list
}

func diskValue(list []Disk) any {
	if len(list) == 0 {
		return nil
	}
	return list
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
