package vmwizard

// Form fields of the VM wizard.
const (
	FieldName        = "name"
	FieldDescription = "description"
	FieldTemplate    = "template"
	FieldFlavor      = "flavor.name"
	FieldMemory      = "flavor.memory"
	FieldCPU         = "flavor.cpu"

	FieldProvisionMethod = "provisionSource.method"
	FieldProvisionSource = "provisionSource.source"
	FieldOS              = "os"
	FieldWorkload        = "workloadProfile"

	FieldNetworks   = "networks"
	FieldBootSource = "bootSource"

	FieldDisks    = "disks"
	FieldBootDisk = "bootDisk"

	FieldCloudInitEnabled  = "cloudInit.enabled"
	FieldCloudInitCustom   = "cloudInit.useCustomScript"
	FieldCloudInitScript   = "cloudInit.customScript"
	FieldCloudInitHostname = "cloudInit.hostname"
	FieldCloudInitSSHKeys  = "cloudInit.sshKeys"

	FieldCDROMs = "cdroms"

	FieldStartOnCreation = "startOnCreation"
)

// Flavor names.
const (
	FlavorTiny   = "tiny"
	FlavorSmall  = "small"
	FlavorMedium = "medium"
	FlavorLarge  = "large"
	FlavorCustom = "Custom"
)

// Provision methods.
const (
	ProvisionPXE       = "PXE"
	ProvisionURL       = "URL"
	ProvisionContainer = "Container"
	ProvisionDisk      = "Disk"
)

// Disk sources.
const (
	DiskSourceBlank     = "blank"
	DiskSourceURL       = "url"
	DiskSourceContainer = "container"
	DiskSourcePVC       = "pvc"
)

// Drives.
const (
	DriveDisk  = "disk"
	DriveCDROM = "cdrom"
)

// NIC bindings.
const (
	BindingMasquerade = "masquerade"
	BindingBridge     = "bridge"
)

// PodNetwork is the network name of the default pod network.
const PodNetwork = "Pod Networking"

// RootDisk is the disk created for URL and Container provisioning.
const RootDisk = "rootdisk"

// FlavorConfig selects a flavor. Memory and CPU are only read for Custom.
type FlavorConfig struct {
	Flavor string
	Memory string
	CPU    string
}

// ProvisionSource selects how the VM gets its boot image. Source is the URL
// or container image for the URL and Container methods.
type ProvisionSource struct {
	Method string
	Source string
}

// NIC is a network interface.
type NIC struct {
	Name       string `json:"name"`
	Model      string `json:"model,omitempty"`
	Network    string `json:"network,omitempty"`
	Binding    string `json:"binding,omitempty"`
	MACAddress string `json:"macAddress,omitempty"`
}

// Disk is a disk or CD-ROM.
type Disk struct {
	Name         string `json:"name"`
	Source       string `json:"source,omitempty"`
	URL          string `json:"url,omitempty"`
	Image        string `json:"image,omitempty"`
	ClaimName    string `json:"claimName,omitempty"`
	Size         string `json:"size,omitempty"`
	Interface    string `json:"interface,omitempty"`
	StorageClass string `json:"storageClass,omitempty"`
	Drive        string `json:"drive,omitempty"`
	Bootable     bool   `json:"bootable,omitempty"`
}

// CloudInitConfig configures cloud-init. A custom script replaces the
// hostname and SSH key form.
type CloudInitConfig struct {
	UseCustomScript bool
	CustomScript    string
	Hostname        string
	SSHKeys         []string
}

// VMBuilderData describes a complete wizard run.
type VMBuilderData struct {
	Name            string
	Description     string
	Template        string
	ProvisionSource *ProvisionSource
	OS              string
	Flavor          *FlavorConfig
	Workload        string
	StartOnCreation bool
	CloudInit       *CloudInitConfig
	Disks           []Disk
	Networks        []NIC
}
