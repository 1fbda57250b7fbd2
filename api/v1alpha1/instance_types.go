package v1alpha1

// Instance represents a Ganeti-managed virtual machine instance.
//
// This resource describes the desired state only: the observed state lives in
// the cluster and is fetched fresh at the start of every reconciliation, so
// there is no Status block to go stale between runs.
type Instance struct {
	// TypeMeta contains the API version and kind.
	TypeMeta `json:",inline" yaml:",inline"`

	// ObjectMeta contains metadata like name, labels, annotations.
	// +optional
	ObjectMeta `json:"metadata,omitempty" yaml:"metadata,omitempty"`

	// Spec defines the desired state of the Instance.
	Spec InstanceSpec `json:"spec" yaml:"spec"`
}

// InstanceSpec defines the desired state of a Ganeti instance.
//
// The creation-time fields (memory, disks, nics, ...) are only consulted when
// State is "present" and the instance does not exist yet; lifecycle states
// operate on the instance name alone.
type InstanceSpec struct {
	// State is the desired lifecycle state.
	// Valid values: "present", "absent", "started", "stopped", "restarted".
	// Defaults to "present".
	// +optional
	State DesiredState `json:"state,omitempty" yaml:"state,omitempty"`

	// MemoryMB is the amount of memory in megabytes to allocate.
	// If zero, the cluster defaults are used.
	// +optional
	MemoryMB int `json:"memoryMB,omitempty" yaml:"memoryMB,omitempty"`

	// VCPUs is the number of virtual CPUs to allocate.
	// If zero, the cluster defaults are used.
	// +optional
	VCPUs int `json:"vcpus,omitempty" yaml:"vcpus,omitempty"`

	// DiskTemplate is the storage backend kind used for the instance disks.
	// Valid values: sharedfile, diskless, plain, gluster, blockdev, drbd,
	// ext, file, rbd. Defaults to "plain". With "ext", every disk must name
	// its extstorage provider.
	// +optional
	DiskTemplate string `json:"diskTemplate,omitempty" yaml:"diskTemplate,omitempty"`

	// Disks is the ordered list of disks to create.
	// +optional
	Disks []DiskSpec `json:"disks,omitempty" yaml:"disks,omitempty"`

	// Nics is the ordered list of network interfaces to create.
	// +optional
	Nics []NicSpec `json:"nics,omitempty" yaml:"nics,omitempty"`

	// Hypervisor overrides the cluster default hypervisor.
	// Valid values: chroot, xen-pvm, kvm, xen-hvm, lxc, fake. Defaults to "kvm".
	// +optional
	Hypervisor string `json:"hypervisor,omitempty" yaml:"hypervisor,omitempty"`

	// IAllocator is the instance allocator to use when no primary node is
	// pinned. Defaults to "hail".
	// +optional
	IAllocator string `json:"iallocator,omitempty" yaml:"iallocator,omitempty"`

	// OSType is the OS create script and variant to deploy, for example
	// "debootstrap+default". Availability depends on the cluster setup.
	// +optional
	OSType string `json:"osType,omitempty" yaml:"osType,omitempty"`

	// OSParams are parameters passed to the OS create script.
	// Values must be flat scalars; nested structures are rejected.
	// +optional
	OSParams map[string]interface{} `json:"osParams,omitempty" yaml:"osParams,omitempty"`

	// PNode is the name of the primary node. If empty, the allocator picks one.
	// +optional
	PNode string `json:"pnode,omitempty" yaml:"pnode,omitempty"`

	// SNode is the name of the optional secondary node (drbd).
	// Requires PNode to be set.
	// +optional
	SNode string `json:"snode,omitempty" yaml:"snode,omitempty"`
}

// DiskSpec defines a single instance disk.
type DiskSpec struct {
	// SizeMB is the size of the disk in megabytes. Required.
	SizeMB int `json:"size" yaml:"size"`

	// Mode is the disk access mode, such as "rw".
	// +optional
	Mode string `json:"mode,omitempty" yaml:"mode,omitempty"`

	// Name is the disk name. Optional for most templates, but may be used by
	// the OS creation script.
	// +optional
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Provider is the extstorage provider. Required when the instance disk
	// template is "ext".
	// +optional
	Provider string `json:"provider,omitempty" yaml:"provider,omitempty"`

	// Extra collects every key not in the fixed set above. These are
	// provider-specific kwargs, forwarded verbatim to the controller, and are
	// only legal when Provider is "ext". YAML-inline only: manifests are YAML,
	// and a JSON rendering of the spec has no inline equivalent.
	// +optional
	Extra map[string]interface{} `json:"-" yaml:",inline"`
}

// NIC operation modes accepted by the controller.
const (
	NicModeRouted      = "routed"
	NicModeBridged     = "bridged"
	NicModeOpenvswitch = "openvswitch"
)

// NicSpec defines a single instance network interface.
//
// Mode determines which of the optional fields the controller requires; refer
// to the Ganeti instance creation documentation.
type NicSpec struct {
	// Mode is the NIC operation mode. Required.
	// Valid values: "routed", "bridged", "openvswitch".
	Mode string `json:"mode" yaml:"mode"`

	// Bridge is the name of the bridge to use (mode "bridged").
	// +optional
	Bridge string `json:"bridge,omitempty" yaml:"bridge,omitempty"`

	// Name is the interface name. Optional but helps when working with
	// gnt-instance and may be used by the OS creation script.
	// +optional
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// IP is the address assigned to the interface.
	// +optional
	IP string `json:"ip,omitempty" yaml:"ip,omitempty"`

	// VLAN is the VLAN ID to use.
	// +optional
	VLAN int `json:"vlan,omitempty" yaml:"vlan,omitempty"`

	// MAC overrides the cluster-computed MAC address of this interface.
	// +optional
	MAC string `json:"mac,omitempty" yaml:"mac,omitempty"`

	// Link is the host interface this virtual interface is connected to,
	// for example the bridge the tap device is attached to.
	// +optional
	Link string `json:"link,omitempty" yaml:"link,omitempty"`

	// Network is the Ganeti network this interface is connected to.
	// +optional
	Network string `json:"network,omitempty" yaml:"network,omitempty"`

	// Extra collects every key not in the fixed set above. NICs have no
	// extensible schema, so any entry here is a validation error.
	// +optional
	Extra map[string]interface{} `json:"-" yaml:",inline"`
}

// DesiredState is the target lifecycle state of an instance for one
// reconciliation run.
type DesiredState string

const (
	// StatePresent means the instance must exist; it is created if missing.
	StatePresent DesiredState = "present"

	// StateAbsent means the instance must not exist; it is destroyed if found.
	StateAbsent DesiredState = "absent"

	// StateStarted means the instance must exist and be running.
	StateStarted DesiredState = "started"

	// StateStopped means the instance must exist and be shut down.
	StateStopped DesiredState = "stopped"

	// StateRestarted means the instance must exist and be rebooted.
	StateRestarted DesiredState = "restarted"
)

// ValidStates lists every accepted desired state, in documentation order.
func ValidStates() []DesiredState {
	return []DesiredState{StatePresent, StateAbsent, StateStarted, StateStopped, StateRestarted}
}

// Valid reports whether s is one of the accepted desired states.
func (s DesiredState) Valid() bool {
	switch s {
	case StatePresent, StateAbsent, StateStarted, StateStopped, StateRestarted:
		return true
	}
	return false
}

// DeepCopy creates a deep copy of Instance.
func (in *Instance) DeepCopy() *Instance {
	if in == nil {
		return nil
	}
	out := new(Instance)
	out.TypeMeta = in.TypeMeta
	out.ObjectMeta = *in.ObjectMeta.DeepCopy()
	out.Spec = *in.Spec.DeepCopy()
	return out
}

// DeepCopy creates a deep copy of ObjectMeta.
func (in *ObjectMeta) DeepCopy() *ObjectMeta {
	if in == nil {
		return nil
	}
	out := new(ObjectMeta)
	*out = *in
	if in.Labels != nil {
		out.Labels = make(map[string]string, len(in.Labels))
		for k, v := range in.Labels {
			out.Labels[k] = v
		}
	}
	if in.Annotations != nil {
		out.Annotations = make(map[string]string, len(in.Annotations))
		for k, v := range in.Annotations {
			out.Annotations[k] = v
		}
	}
	return out
}

// DeepCopy creates a deep copy of InstanceSpec.
func (in *InstanceSpec) DeepCopy() *InstanceSpec {
	if in == nil {
		return nil
	}
	out := new(InstanceSpec)
	*out = *in

	if in.Disks != nil {
		out.Disks = make([]DiskSpec, len(in.Disks))
		for i := range in.Disks {
			out.Disks[i] = *in.Disks[i].DeepCopy()
		}
	}
	if in.Nics != nil {
		out.Nics = make([]NicSpec, len(in.Nics))
		for i := range in.Nics {
			out.Nics[i] = *in.Nics[i].DeepCopy()
		}
	}
	if in.OSParams != nil {
		out.OSParams = make(map[string]interface{}, len(in.OSParams))
		for k, v := range in.OSParams {
			out.OSParams[k] = v
		}
	}
	return out
}

// DeepCopy creates a deep copy of DiskSpec.
func (in *DiskSpec) DeepCopy() *DiskSpec {
	if in == nil {
		return nil
	}
	out := new(DiskSpec)
	*out = *in
	if in.Extra != nil {
		out.Extra = make(map[string]interface{}, len(in.Extra))
		for k, v := range in.Extra {
			out.Extra[k] = v
		}
	}
	return out
}

// DeepCopy creates a deep copy of NicSpec.
func (in *NicSpec) DeepCopy() *NicSpec {
	if in == nil {
		return nil
	}
	out := new(NicSpec)
	*out = *in
	if in.Extra != nil {
		out.Extra = make(map[string]interface{}, len(in.Extra))
		for k, v := range in.Extra {
			out.Extra[k] = v
		}
	}
	return out
}
