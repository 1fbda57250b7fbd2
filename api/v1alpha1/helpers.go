package v1alpha1

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// GroupName is the API group for collection-ganeti resources.
	GroupName = "ganeti.rrey.dev"

	// Version is the API version.
	Version = "v1alpha1"

	// InstanceKind is the kind string for Instance resources.
	InstanceKind = "GanetiInstance"
)

// Cluster-level defaults applied to instance specs.
// The disk template list mirrors the RAPI documentation (Ganeti 2.16).
const (
	DefaultDiskTemplate = "plain"
	DefaultHypervisor   = "kvm"
	DefaultIAllocator   = "hail"
	DefaultOSType       = "debootstrap+default"
)

// DiskTemplates lists the disk templates accepted by the controller.
func DiskTemplates() []string {
	return []string{"sharedfile", "diskless", "plain", "gluster", "blockdev", "drbd", "ext", "file", "rbd"}
}

// Hypervisors lists the hypervisors accepted by the controller.
func Hypervisors() []string {
	return []string{"chroot", "xen-pvm", "kvm", "xen-hvm", "lxc", "fake"}
}

// NewInstance creates a new Instance with TypeMeta and ObjectMeta defaults.
func NewInstance(name string) *Instance {
	now := Time{Time: time.Now()}

	return &Instance{
		TypeMeta: TypeMeta{
			APIVersion: GroupName + "/" + Version,
			Kind:       InstanceKind,
		},
		ObjectMeta: ObjectMeta{
			Name:              name,
			UID:               uuid.New().String(),
			CreationTimestamp: now,
		},
		Spec: InstanceSpec{
			State:        StatePresent,
			DiskTemplate: DefaultDiskTemplate,
			Hypervisor:   DefaultHypervisor,
			IAllocator:   DefaultIAllocator,
			OSType:       DefaultOSType,
		},
	}
}

// SetDefaultAPIVersion ensures the instance has the correct apiVersion and kind.
// Useful when loading from files that might be missing these fields.
func SetDefaultAPIVersion(inst *Instance) {
	if inst.APIVersion == "" {
		inst.APIVersion = GroupName + "/" + Version
	}
	if inst.Kind == "" {
		inst.Kind = InstanceKind
	}
}

// GetName returns the instance name from metadata.
func (inst *Instance) GetName() string {
	return inst.Name
}

// GetState returns the desired state with default fallback.
func (inst *Instance) GetState() DesiredState {
	if inst.Spec.State == "" {
		return StatePresent
	}
	return inst.Spec.State
}

// GetDiskTemplate returns the disk template with default fallback.
func (inst *Instance) GetDiskTemplate() string {
	if inst.Spec.DiskTemplate == "" {
		return DefaultDiskTemplate
	}
	return inst.Spec.DiskTemplate
}

// GetHypervisor returns the hypervisor with default fallback.
func (inst *Instance) GetHypervisor() string {
	if inst.Spec.Hypervisor == "" {
		return DefaultHypervisor
	}
	return inst.Spec.Hypervisor
}

// GetIAllocator returns the instance allocator with default fallback.
func (inst *Instance) GetIAllocator() string {
	if inst.Spec.IAllocator == "" {
		return DefaultIAllocator
	}
	return inst.Spec.IAllocator
}

// GetOSType returns the OS type with default fallback.
func (inst *Instance) GetOSType() string {
	if inst.Spec.OSType == "" {
		return DefaultOSType
	}
	return inst.Spec.OSType
}

// Normalize sanitizes user input to consistent formats.
// This is called automatically before validation.
func (inst *Instance) Normalize() {
	// Ganeti instance names are hostnames; keep them lowercase
	inst.Name = strings.ToLower(strings.TrimSpace(inst.Name))

	inst.Spec.PNode = strings.TrimSpace(inst.Spec.PNode)
	inst.Spec.SNode = strings.TrimSpace(inst.Spec.SNode)

	if inst.Spec.State == "" {
		inst.Spec.State = StatePresent
	}
	if inst.Spec.DiskTemplate == "" {
		inst.Spec.DiskTemplate = DefaultDiskTemplate
	}
	if inst.Spec.Hypervisor == "" {
		inst.Spec.Hypervisor = DefaultHypervisor
	}
	if inst.Spec.IAllocator == "" {
		inst.Spec.IAllocator = DefaultIAllocator
	}
	if inst.Spec.OSType == "" {
		inst.Spec.OSType = DefaultOSType
	}
}
