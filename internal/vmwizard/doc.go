// Package vmwizard implements the virtual machine creation wizard on top of
// the generic wizard controller.
//
// The steps are general, source, networking, storage, advanced, virtual
// hardware and review. The source step is skipped when the wizard is opened
// from a template. Each action of [Wizard] mirrors one input of the form and
// goes through the controller, and [Builder] turns the review payload into a
// kubevirt.io/v1 VirtualMachine.
package vmwizard
