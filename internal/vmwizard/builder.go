package vmwizard

import (
	"fmt"
	"strconv"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/utils/ptr"
	"sigs.k8s.io/yaml"

	"github.com/imamik/kconsole/api/v1alpha1"
	"github.com/imamik/kconsole/internal/util/labels"
	"github.com/imamik/kconsole/internal/util/naming"
	"github.com/imamik/kconsole/internal/wizard"
)

const (
	vmLabel       = "kubevirt.io/vm"
	cloudInitDisk = "cloudinitdisk"
)

// Builder converts a VM wizard payload into a kubevirt VirtualMachine.
func Builder(namespace string) wizard.Builder {
	return func(p wizard.Payload) (*unstructured.Unstructured, error) {
		vm, err := BuildVirtualMachine(namespace, p)
		if err != nil {
			return nil, err
		}
		obj, err := runtime.DefaultUnstructuredConverter.ToUnstructured(vm)
		if err != nil {
			return nil, fmt.Errorf("failed to convert virtual machine: %w", err)
		}
		u := &unstructured.Unstructured{Object: obj}
		u.SetGroupVersionKind(v1alpha1.VirtualMachineGVK)
		return u, nil
	}
}

// BuildVirtualMachine builds the typed VirtualMachine for a payload.
func BuildVirtualMachine(namespace string, p wizard.Payload) (*v1alpha1.VirtualMachine, error) {
	name := p.String(FieldName)
	vm := &v1alpha1.VirtualMachine{}
	vm.SetGroupVersionKind(v1alpha1.VirtualMachineGVK)
	vm.Name = name
	vm.Namespace = namespace
	vm.Labels = labels.NewLabelBuilder().
		WithTemplate(p.String(FieldTemplate)).
		WithFlag(labels.PrefixOS, p.String(FieldOS)).
		WithFlag(labels.PrefixWorkload, p.String(FieldWorkload)).
		WithFlag(labels.PrefixFlavor, p.String(FieldFlavor)).
		Build()
	vm.Annotations = map[string]string{}

	if d := p.String(FieldDescription); d != "" {
		vm.Annotations[v1alpha1.DescriptionAnnotation] = d
	}
	vm.Spec.Running = ptr.To(p.Bool(FieldStartOnCreation))

	cpu, memory, err := resolveFlavor(p)
	if err != nil {
		return nil, err
	}
	tmpl := &vm.Spec.Template
	tmpl.ObjectMeta.Labels = map[string]string{vmLabel: name}
	domain := &tmpl.Spec.Domain
	domain.CPU = &v1alpha1.CPU{Cores: cpu}
	domain.Resources.Requests = corev1.ResourceList{corev1.ResourceMemory: memory}

	method := p.String(FieldProvisionMethod)
	fromTemplate := p.String(FieldTemplate) != ""

	networks, err := wizard.List[NIC](p, FieldNetworks)
	if err != nil {
		return nil, err
	}
	for _, n := range networks {
		iface := v1alpha1.Interface{Name: n.Name, Model: n.Model, MacAddress: n.MACAddress}
		if n.Binding == BindingMasquerade {
			iface.Masquerade = &v1alpha1.InterfaceMasquerade{}
		} else {
			iface.Bridge = &v1alpha1.InterfaceBridge{}
		}
		if !fromTemplate && method == ProvisionPXE && n.Name == p.String(FieldBootSource) {
			iface.BootOrder = ptr.To[uint](1)
		}
		domain.Devices.Interfaces = append(domain.Devices.Interfaces, iface)

		net := v1alpha1.Network{Name: n.Name}
		if n.Network == "" || n.Network == PodNetwork {
			net.Pod = &v1alpha1.PodNetwork{}
		} else {
			net.Multus = &v1alpha1.MultusNetwork{NetworkName: n.Network}
		}
		tmpl.Spec.Networks = append(tmpl.Spec.Networks, net)
	}

	diskList, err := wizard.List[Disk](p, FieldDisks)
	if err != nil {
		return nil, err
	}
	bootDisk := p.String(FieldBootDisk)
	if method == ProvisionURL || method == ProvisionContainer {
		bootDisk = RootDisk
	}
	for _, d := range diskList {
		disk := v1alpha1.Disk{Name: d.Name, Disk: &v1alpha1.DiskTarget{Bus: d.Interface}}
		if !fromTemplate && method != ProvisionPXE && d.Name == bootDisk {
			disk.BootOrder = ptr.To[uint](1)
		}
		domain.Devices.Disks = append(domain.Devices.Disks, disk)
		if err := addVolume(vm, d); err != nil {
			return nil, err
		}
	}

	cds, err := wizard.List[Disk](p, FieldCDROMs)
	if err != nil {
		return nil, err
	}
	for _, cd := range cds {
		domain.Devices.Disks = append(domain.Devices.Disks, v1alpha1.Disk{Name: cd.Name, CDRom: &v1alpha1.CDRomTarget{Bus: cd.Interface}})
		if err := addVolume(vm, cd); err != nil {
			return nil, err
		}
	}

	if p.Bool(FieldCloudInitEnabled) {
		userData, err := cloudInitUserData(p)
		if err != nil {
			return nil, err
		}
		domain.Devices.Disks = append(domain.Devices.Disks, v1alpha1.Disk{Name: cloudInitDisk, Disk: &v1alpha1.DiskTarget{Bus: "virtio"}})
		tmpl.Spec.Volumes = append(tmpl.Spec.Volumes, v1alpha1.Volume{
			Name:             cloudInitDisk,
			CloudInitNoCloud: &v1alpha1.CloudInitNoCloudSource{UserData: userData},
		})
	}
	return vm, nil
}

func resolveFlavor(p wizard.Payload) (uint32, resource.Quantity, error) {
	name := p.String(FieldFlavor)
	if name != FlavorCustom {
		f, ok := flavor(name)
		if !ok {
			return 0, resource.Quantity{}, fmt.Errorf("unknown flavor %q", name)
		}
		return f.CPU, resource.MustParse(f.Memory), nil
	}
	mem, err := resource.ParseQuantity(p.String(FieldMemory))
	if err != nil {
		return 0, resource.Quantity{}, fmt.Errorf("invalid memory %q: %w", p.String(FieldMemory), err)
	}
	cpu, err := strconv.ParseUint(p.String(FieldCPU), 10, 32)
	if err != nil {
		return 0, resource.Quantity{}, fmt.Errorf("invalid CPU count %q: %w", p.String(FieldCPU), err)
	}
	return uint32(cpu), mem, nil
}

func addVolume(vm *v1alpha1.VirtualMachine, d Disk) error {
	vol := v1alpha1.Volume{Name: d.Name}
	switch d.Source {
	case DiskSourceContainer:
		vol.ContainerDisk = &v1alpha1.ContainerDiskSource{Image: d.Image}
	case DiskSourcePVC:
		vol.PersistentVolumeClaim = &v1alpha1.PersistentVolumeClaimSource{ClaimName: d.ClaimName}
	case DiskSourceURL, DiskSourceBlank, "":
		size, err := resource.ParseQuantity(d.Size)
		if err != nil {
			return fmt.Errorf("disk %s: invalid size %q: %w", d.Name, d.Size, err)
		}
		dvName := naming.DataVolume(vm.Name, d.Name)
		dv := v1alpha1.DataVolumeTemplateSpec{}
		dv.ObjectMeta.Name = dvName
		if d.Source == DiskSourceURL {
			dv.Spec.Source.HTTP = &v1alpha1.HTTPImportSource{URL: d.URL}
		} else {
			dv.Spec.Source.Blank = &v1alpha1.BlankSource{}
		}
		if d.StorageClass != "" {
			dv.Spec.Storage.StorageClassName = ptr.To(d.StorageClass)
		}
		dv.Spec.Storage.Resources.Requests = corev1.ResourceList{corev1.ResourceStorage: size}
		vm.Spec.DataVolumeTemplates = append(vm.Spec.DataVolumeTemplates, dv)
		vol.DataVolume = &v1alpha1.DataVolumeSource{Name: dvName}
	default:
		return fmt.Errorf("disk %s: unsupported source %q", d.Name, d.Source)
	}
	vm.Spec.Template.Spec.Volumes = append(vm.Spec.Template.Spec.Volumes, vol)
	return nil
}

// cloudInitUserData renders the #cloud-config document, or returns the
// custom script unchanged.
func cloudInitUserData(p wizard.Payload) (string, error) {
	if p.Bool(FieldCloudInitCustom) {
		return p.String(FieldCloudInitScript), nil
	}
	cfg := map[string]any{}
	if h := p.String(FieldCloudInitHostname); h != "" {
		cfg["hostname"] = h
	}
	keys, err := wizard.List[string](p, FieldCloudInitSSHKeys)
	if err != nil {
		return "", err
	}
	if len(keys) > 0 {
		cfg["ssh_authorized_keys"] = keys
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("failed to render cloud-init: %w", err)
	}
	return "#cloud-config\n" + string(data), nil
}
