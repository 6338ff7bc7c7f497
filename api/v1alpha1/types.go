package v1alpha1

import (
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// VirtualMachine is the object submitted by the VM creation wizard.
type VirtualMachine struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec VirtualMachineSpec `json:"spec"`
}

// VirtualMachineSpec describes the desired virtual machine.
type VirtualMachineSpec struct {
	// Running starts the machine as soon as it is created.
	Running *bool `json:"running,omitempty"`

	Template VirtualMachineInstanceTemplateSpec `json:"template"`

	// DataVolumeTemplates import disks from URLs before the machine boots.
	// +optional
	DataVolumeTemplates []DataVolumeTemplateSpec `json:"dataVolumeTemplates,omitempty"`
}

// VirtualMachineInstanceTemplateSpec is the template of the running instance.
type VirtualMachineInstanceTemplateSpec struct {
	ObjectMeta metav1.ObjectMeta          `json:"metadata,omitempty"`
	Spec       VirtualMachineInstanceSpec `json:"spec"`
}

// VirtualMachineInstanceSpec holds the domain, networks and volumes.
type VirtualMachineInstanceSpec struct {
	Domain   DomainSpec `json:"domain"`
	Networks []Network  `json:"networks,omitempty"`
	Volumes  []Volume   `json:"volumes,omitempty"`
}

// DomainSpec is the virtual hardware.
type DomainSpec struct {
	CPU       *CPU                 `json:"cpu,omitempty"`
	Resources ResourceRequirements `json:"resources,omitempty"`
	Devices   Devices              `json:"devices"`
}

// CPU sets the number of cores.
type CPU struct {
	Cores uint32 `json:"cores,omitempty"`
}

// ResourceRequirements holds memory requests.
type ResourceRequirements struct {
	Requests corev1.ResourceList `json:"requests,omitempty"`
}

// Devices lists disks and network interfaces.
type Devices struct {
	Disks      []Disk      `json:"disks,omitempty"`
	Interfaces []Interface `json:"interfaces,omitempty"`
}

// Disk attaches a volume as a disk or CD-ROM.
type Disk struct {
	Name      string       `json:"name"`
	BootOrder *uint        `json:"bootOrder,omitempty"`
	Disk      *DiskTarget  `json:"disk,omitempty"`
	CDRom     *CDRomTarget `json:"cdrom,omitempty"`
}

// DiskTarget sets the bus of a disk.
type DiskTarget struct {
	Bus string `json:"bus,omitempty"`
}

// CDRomTarget sets the bus of a CD-ROM drive.
type CDRomTarget struct {
	Bus string `json:"bus,omitempty"`
}

// Interface is a network interface card.
type Interface struct {
	Name       string               `json:"name"`
	Model      string               `json:"model,omitempty"`
	MacAddress string               `json:"macAddress,omitempty"`
	BootOrder  *uint                `json:"bootOrder,omitempty"`
	Bridge     *InterfaceBridge     `json:"bridge,omitempty"`
	Masquerade *InterfaceMasquerade `json:"masquerade,omitempty"`
}

// InterfaceBridge selects bridge binding.
type InterfaceBridge struct{}

// InterfaceMasquerade selects masquerade binding.
type InterfaceMasquerade struct{}

// Network connects an interface to the pod network or a multus network.
type Network struct {
	Name   string         `json:"name"`
	Pod    *PodNetwork    `json:"pod,omitempty"`
	Multus *MultusNetwork `json:"multus,omitempty"`
}

// PodNetwork is the default pod network.
type PodNetwork struct{}

// MultusNetwork references a network attachment definition.
type MultusNetwork struct {
	NetworkName string `json:"networkName"`
}

// Volume backs a disk.
type Volume struct {
	Name                  string                       `json:"name"`
	ContainerDisk         *ContainerDiskSource         `json:"containerDisk,omitempty"`
	DataVolume            *DataVolumeSource            `json:"dataVolume,omitempty"`
	PersistentVolumeClaim *PersistentVolumeClaimSource `json:"persistentVolumeClaim,omitempty"`
	CloudInitNoCloud      *CloudInitNoCloudSource      `json:"cloudInitNoCloud,omitempty"`
	EmptyDisk             *EmptyDiskSource             `json:"emptyDisk,omitempty"`
}

// ContainerDiskSource boots from a container image.
type ContainerDiskSource struct {
	Image string `json:"image"`
}

// DataVolumeSource references a data volume template by name.
type DataVolumeSource struct {
	Name string `json:"name"`
}

// PersistentVolumeClaimSource attaches an existing claim.
type PersistentVolumeClaimSource struct {
	ClaimName string `json:"claimName"`
}

// CloudInitNoCloudSource carries cloud-init user data.
type CloudInitNoCloudSource struct {
	UserData string `json:"userData"`
}

// EmptyDiskSource creates a blank ephemeral disk.
type EmptyDiskSource struct {
	Capacity string `json:"capacity"`
}

// DataVolumeTemplateSpec imports a disk image into a new claim.
type DataVolumeTemplateSpec struct {
	ObjectMeta metav1.ObjectMeta `json:"metadata,omitempty"`
	Spec       DataVolumeSpec    `json:"spec"`
}

// DataVolumeSpec is the import source and requested storage.
type DataVolumeSpec struct {
	Source  DataVolumeImportSource `json:"source"`
	Storage StorageSpec            `json:"storage"`
}

// DataVolumeImportSource is one of HTTP or Blank.
type DataVolumeImportSource struct {
	HTTP  *HTTPImportSource `json:"http,omitempty"`
	Blank *BlankSource      `json:"blank,omitempty"`
}

// HTTPImportSource downloads the image from a URL.
type HTTPImportSource struct {
	URL string `json:"url"`
}

// BlankSource creates an empty volume.
type BlankSource struct{}

// StorageSpec requests capacity from a storage class.
type StorageSpec struct {
	StorageClassName *string                           `json:"storageClassName,omitempty"`
	Resources        corev1.VolumeResourceRequirements `json:"resources,omitempty"`
}
