package vmwizard

// FlavorOption is a predefined CPU and memory combination.
type FlavorOption struct {
	Value       string
	Label       string
	Description string
	CPU         uint32
	Memory      string
}

// ChoiceOption is an operating system, workload profile or template.
type ChoiceOption struct {
	Value       string
	Label       string
	Description string
}

// Flavors contains the predefined flavors followed by Custom.
var Flavors = []FlavorOption{
	{Value: FlavorTiny, Label: "tiny", Description: "1 CPU, 1 GiB Memory", CPU: 1, Memory: "1Gi"},
	{Value: FlavorSmall, Label: "small", Description: "1 CPU, 2 GiB Memory", CPU: 1, Memory: "2Gi"},
	{Value: FlavorMedium, Label: "medium", Description: "1 CPU, 4 GiB Memory", CPU: 1, Memory: "4Gi"},
	{Value: FlavorLarge, Label: "large", Description: "2 CPU, 8 GiB Memory", CPU: 2, Memory: "8Gi"},
	{Value: FlavorCustom, Label: "Custom", Description: "Enter memory and CPU"},
}

// ProvisionSources contains the supported provision methods.
var ProvisionSources = []ChoiceOption{
	{Value: ProvisionPXE, Label: "PXE", Description: "Boot from the network"},
	{Value: ProvisionURL, Label: "URL", Description: "Import a disk image from a URL"},
	{Value: ProvisionContainer, Label: "Container", Description: "Boot a container disk image"},
	{Value: ProvisionDisk, Label: "Disk", Description: "Boot from an attached disk"},
}

// OperatingSystems contains the operating systems offered without a template.
var OperatingSystems = []ChoiceOption{
	{Value: "fedora31", Label: "Fedora 31"},
	{Value: "fedora32", Label: "Fedora 32"},
	{Value: "centos8", Label: "CentOS 8"},
	{Value: "rhel8.2", Label: "Red Hat Enterprise Linux 8.2"},
	{Value: "ubuntu20.04", Label: "Ubuntu 20.04 LTS"},
	{Value: "win2k19", Label: "Microsoft Windows Server 2019"},
}

// WorkloadProfiles contains the supported workload profiles.
var WorkloadProfiles = []ChoiceOption{
	{Value: "desktop", Label: "desktop", Description: "Small scale consumption"},
	{Value: "server", Label: "server", Description: "Balanced for general purpose"},
	{Value: "highperformance", Label: "highperformance", Description: "Optimized for high performance loads"},
}

// NICModels contains the supported interface models.
var NICModels = []string{"virtio", "e1000e"}

// DiskInterfaces contains the supported disk buses.
var DiskInterfaces = []string{"virtio", "sata", "scsi"}

func flavor(name string) (FlavorOption, bool) {
	for _, f := range Flavors {
		if f.Value == name {
			return f, true
		}
	}
	return FlavorOption{}, false
}

func flavorNames() []string {
	out := make([]string, len(Flavors))
	for i, f := range Flavors {
		out[i] = f.Value
	}
	return out
}

func provisionMethods() []string {
	out := make([]string, len(ProvisionSources))
	for i, p := range ProvisionSources {
		out[i] = p.Value
	}
	return out
}
